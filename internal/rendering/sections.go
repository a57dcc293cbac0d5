package rendering

import (
	"fmt"
	"strings"

	"github.com/jonathan/resume-builder/internal/types"
)

// Section is one titled block of the document body. Title and Body are already markup.
type Section struct {
	Title string
	Body  string
}

const lineBreak = " \\\\\n"

// textBreak ends a line whose successor starts with user text. The empty group stops
// \\ from reading a leading * as its starred form.
const textBreak = "\\\\{}\n"

// buildSections formats every non-empty optional section in the fixed document order.
func (s style) buildSections(rec *types.ResumeRecord) []Section {
	var sections []Section
	add := func(title, body string) {
		if body != "" {
			sections = append(sections, Section{Title: title, Body: body})
		}
	}

	if rec.Objective != "" {
		add(s.titles.Objective, fmt.Sprintf(s.objective, EscapeLaTeX(rec.Objective)))
	}
	add(s.titles.Summary, s.summary(rec.Summary))
	add(s.titles.Education, s.education(rec.Education))
	add(s.titles.Experience, s.experience(rec.Experience))
	add(s.titles.Projects, s.projects(rec.Projects))
	add(s.titles.Skills, s.skills(rec.Skills))
	add(s.titles.Certificates, s.certificates(rec.Certificates))
	add(s.titles.Languages, EscapeLaTeX(rec.Languages))

	return sections
}

// contact builds the header line below the name. Empty parts are dropped.
func (s style) contact(rec *types.ResumeRecord) string {
	var parts []string
	if rec.Location != "" {
		parts = append(parts, EscapeLaTeX(rec.Location))
	}
	if rec.Phone != "" {
		parts = append(parts, EscapeLaTeX(rec.Phone))
	}
	if rec.Email != "" {
		parts = append(parts, s.href("mailto:"+rec.Email, EscapeLaTeX(rec.Email)))
	}
	if rec.LinkedIn != "" {
		parts = append(parts, s.href(rec.LinkedIn, "LinkedIn"))
	}
	if rec.Portfolio != "" {
		parts = append(parts, s.href(rec.Portfolio, "Portfolio"))
	}
	return strings.Join(parts, ` $\bullet$ `)
}

// href links text to url when hyperref is available. Without it the URL itself is
// printed, except for mailto links whose text already is the address.
func (s style) href(url, text string) string {
	if s.links {
		return fmt.Sprintf(`\href{%s}{%s}`, EscapeURL(url), text)
	}
	if strings.HasPrefix(url, "mailto:") {
		return text
	}
	return EscapeLaTeX(url)
}

func itemize(options string, items []string) string {
	var b strings.Builder
	b.WriteString(`\begin{itemize}`)
	b.WriteString(options)
	for _, item := range items {
		b.WriteString("\n\\item ")
		b.WriteString(EscapeLaTeX(item))
	}
	b.WriteString("\n\\end{itemize}")
	return b.String()
}

func (s style) summary(points []string) string {
	if len(points) == 0 {
		return ""
	}
	return itemize(s.summaryItemize, points)
}

func (s style) education(entries []types.EducationEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		var b strings.Builder
		fmt.Fprintf(&b, `\textbf{%s}%s%s`, EscapeLaTeX(e.Degree), s.sep, fmt.Sprintf(s.org, EscapeLaTeX(e.University)))
		if e.Location != "" {
			b.WriteString(", " + EscapeLaTeX(e.Location))
		}
		if e.Duration != "" {
			b.WriteString(` \hfill ` + EscapeLaTeX(e.Duration))
		}
		switch {
		case e.CGPA != "":
			fmt.Fprintf(&b, s.gpa, EscapeLaTeX(e.CGPA))
		case e.Percentage != "":
			fmt.Fprintf(&b, s.percent, EscapeLaTeX(strings.TrimSuffix(e.Percentage, "%")))
		}
		if len(e.RelevantCoursework) > 0 {
			b.WriteString(`\\\textit{Relevant Coursework:} ` + EscapeLaTeX(strings.Join(e.RelevantCoursework, ", ")))
		}
		if len(e.HonorsAndQualifications) > 0 {
			b.WriteString(`\\\textit{` + EscapeLaTeX(strings.Join(e.HonorsAndQualifications, ", ")) + `}`)
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, lineBreak)
}

func (s style) experience(entries []types.ExperienceEntry) string {
	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		var b strings.Builder
		fmt.Fprintf(&b, `\textbf{%s}%s%s`, EscapeLaTeX(e.JobRole), s.sep, fmt.Sprintf(s.org, EscapeLaTeX(e.CompanyName)))
		if e.Duration != "" {
			b.WriteString(` \hfill ` + EscapeLaTeX(e.Duration))
		}
		if e.Location != "" && s.location != "" {
			fmt.Fprintf(&b, s.location, EscapeLaTeX(e.Location))
		}
		// An itemize with no \item does not compile, so an entry without
		// achievements keeps only its heading line.
		if bullets := e.Achievements(); len(bullets) > 0 {
			b.WriteString("\n")
			b.WriteString(itemize(s.expItemize, bullets))
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

func (s style) projects(entries []types.ProjectEntry) string {
	blocks := make([]string, 0, len(entries))
	for _, p := range entries {
		title := fmt.Sprintf(s.projectTitle, EscapeLaTeX(p.Title))
		if p.Link != "" && s.projectLink != nil {
			title += s.projectLink(p.Link)
		}

		tools := ""
		if len(p.Tools) > 0 {
			tools = s.toolsLabel + " " + EscapeLaTeX(strings.Join(p.Tools, ", "))
		}

		if s.inlineProjects {
			lines := []string{title}
			if p.Description != "" {
				lines = append(lines, EscapeLaTeX(p.Description))
			}
			if tools != "" {
				lines = append(lines, tools)
			}
			blocks = append(blocks, strings.Join(lines, textBreak))
			continue
		}

		var items []string
		if p.Description != "" {
			items = append(items, "\\item "+EscapeLaTeX(p.Description))
		}
		if tools != "" {
			items = append(items, "\\item "+tools)
		}
		if len(items) == 0 {
			blocks = append(blocks, title)
			continue
		}
		blocks = append(blocks, fmt.Sprintf("%s\n\\begin{itemize}%s\n%s\n\\end{itemize}", title, s.itemize, strings.Join(items, "\n")))
	}
	return strings.Join(blocks, "\n\n")
}

func (s style) skills(set types.SkillSet) string {
	lines := make([]string, 0, len(set))
	for _, c := range set {
		line := fmt.Sprintf(s.skillCategory, EscapeLaTeX(c.Category))
		if len(c.Values) > 0 {
			line += " " + EscapeLaTeX(strings.Join(c.Values, ", "))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, lineBreak)
}

func (s style) certificates(entries []types.CertificateEntry) string {
	lines := make([]string, 0, len(entries))
	for _, c := range entries {
		var b strings.Builder
		fmt.Fprintf(&b, `\textbf{%s} - %s`, EscapeLaTeX(c.Name), EscapeLaTeX(c.IssuingOrganization))
		if c.Date != "" {
			b.WriteString(" (" + EscapeLaTeX(c.Date) + ")")
		}
		if c.ExpiryDate != "" {
			b.WriteString(" - Expires: " + EscapeLaTeX(c.ExpiryDate))
		}
		if c.CertificateNumber != "" {
			b.WriteString(`\\Certificate ID: ` + EscapeLaTeX(c.CertificateNumber))
		}
		if c.VerificationURL != "" {
			b.WriteString(`\\Verification: ` + s.href(c.VerificationURL, EscapeLaTeX(c.VerificationURL)))
		}
		if c.AdditionalDetails != "" {
			b.WriteString(`\\{}` + EscapeLaTeX(c.AdditionalDetails))
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, lineBreak)
}
