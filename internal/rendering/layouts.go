package rendering

import (
	"fmt"
	"strings"
)

// Layout identifies one document style.
type Layout string

const (
	Professional Layout = "professional"
	Modern       Layout = "modern"
	Compact      Layout = "compact"
	// Simplified is the fallback rendering used when a primary layout fails to compile
	// everywhere. It loads only geometry and leaves links as plain text.
	Simplified Layout = "simplified"
)

// PrimaryLayouts lists the user-facing layouts in their numbered order.
var PrimaryLayouts = []Layout{Professional, Modern, Compact}

var allLayouts = []Layout{Professional, Modern, Compact, Simplified}

// Number returns the legacy template number ("1", "2", "3"), or "" for the simplified layout.
func (l Layout) Number() string {
	for i, p := range PrimaryLayouts {
		if p == l {
			return fmt.Sprintf("%d", i+1)
		}
	}
	return ""
}

// DisplayName returns the human-readable layout name.
func (l Layout) DisplayName() string {
	switch l {
	case Professional:
		return "Professional Blue"
	case Modern:
		return "Modern Green"
	case Compact:
		return "Compact Classic"
	case Simplified:
		return "Simplified"
	default:
		return string(l)
	}
}

// ParseLayout accepts a layout name (case-insensitive) or its legacy number.
func ParseLayout(s string) (Layout, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, l := range allLayouts {
		if key == string(l) || (key != "" && key == l.Number()) {
			return l, nil
		}
	}
	return "", &RenderError{Layout: Layout(s), Err: ErrUnknownLayout}
}

// ParseLayouts parses a list of identifiers, dropping duplicates while keeping order.
// An empty list selects every primary layout.
func ParseLayouts(ids []string) ([]Layout, error) {
	if len(ids) == 0 {
		return append([]Layout(nil), PrimaryLayouts...), nil
	}
	seen := make(map[Layout]bool, len(ids))
	out := make([]Layout, 0, len(ids))
	for _, id := range ids {
		l, err := ParseLayout(id)
		if err != nil {
			return nil, err
		}
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out, nil
}

// sectionTitles holds the heading for each optional section in render order.
type sectionTitles struct {
	Objective, Summary, Education, Experience, Projects, Skills, Certificates, Languages string
}

// style carries the per-layout decoration applied by the shared section formatters.
type style struct {
	titles sectionTitles

	// sep goes between a role and its company, or a degree and its university.
	sep string
	// org wraps the company or university name; "%s" leaves it plain.
	org string
	// location wraps an experience location; "" hides it.
	location  string
	objective string

	itemize        string
	expItemize     string
	summaryItemize string

	gpa     string
	percent string

	projectTitle string
	projectLink  func(url string) string
	toolsLabel   string
	// inlineProjects renders description and tools as lines instead of bullets.
	inlineProjects bool

	skillCategory string

	// links is false when hyperref is not loaded.
	links bool
}

var styles = map[Layout]style{
	Professional: {
		titles: sectionTitles{
			Objective: "Objective", Summary: "Professional Summary", Education: "Education",
			Experience: "Professional Experience", Projects: "Projects", Skills: "Technical Skills",
			Certificates: "Certifications", Languages: "Languages",
		},
		sep:            " - ",
		org:            "%s",
		location:       `\\ \textit{%s}`,
		objective:      "%s",
		itemize:        "[leftmargin=*,topsep=2pt,itemsep=1pt]",
		expItemize:     "[leftmargin=*,topsep=2pt,itemsep=1pt]",
		summaryItemize: "[leftmargin=*,topsep=2pt,itemsep=1pt]",
		gpa:            " - GPA: %s",
		percent:        ` - %s\%%`,
		projectTitle:   `\textbf{%s}`,
		projectLink: func(url string) string {
			return fmt.Sprintf(` - \href{%s}{%s}`, EscapeURL(url), EscapeLaTeX(url))
		},
		toolsLabel:    `\textbf{Tools:}`,
		skillCategory: `\textbf{%s:}`,
		links:         true,
	},
	Modern: {
		titles: sectionTitles{
			Objective: "Career Objective", Summary: "Professional Summary", Education: "Education",
			Experience: "Professional Experience", Projects: "Key Projects", Skills: "Core Competencies",
			Certificates: "Certifications", Languages: "Languages",
		},
		sep:            " | ",
		org:            `\textit{%s}`,
		location:       `\\ \textcolor{gray}{%s}`,
		objective:      `\textit{%s}`,
		itemize:        "[leftmargin=*,topsep=2pt,itemsep=1pt]",
		expItemize:     "[leftmargin=*,topsep=2pt,itemsep=1pt]",
		summaryItemize: "[leftmargin=*,topsep=2pt,itemsep=1pt]",
		gpa:            " | GPA: %s",
		percent:        ` | %s\%%`,
		projectTitle:   `\textbf{\textcolor{primarygreen}{%s}}`,
		projectLink: func(url string) string {
			return fmt.Sprintf(` | \href{%s}{\textcolor{gray}{View Project}}`, EscapeURL(url))
		},
		toolsLabel:    `\textbf{Technologies:}`,
		skillCategory: `\textbf{\textcolor{primarygreen}{%s:}}`,
		links:         true,
	},
	Compact: {
		titles: sectionTitles{
			Objective: "Objective", Summary: "Summary", Education: "Education",
			Experience: "Experience", Projects: "Projects", Skills: "Skills",
			Certificates: "Certifications", Languages: "Languages",
		},
		sep:            " - ",
		org:            "%s",
		objective:      "%s",
		itemize:        "[noitemsep,topsep=0pt]",
		expItemize:     "[noitemsep,topsep=0pt]",
		summaryItemize: "[leftmargin=*,topsep=0pt,itemsep=0pt]",
		gpa:            ", GPA: %s",
		percent:        `, %s\%%`,
		projectTitle:   `\textbf{%s}`,
		toolsLabel:     `\textit{Technologies:}`,
		inlineProjects: true,
		skillCategory:  `\textbf{%s:}`,
		links:          true,
	},
	Simplified: {
		titles: sectionTitles{
			Objective: "Objective", Summary: "Summary", Education: "Education",
			Experience: "Experience", Projects: "Projects", Skills: "Skills",
			Certificates: "Certifications", Languages: "Languages",
		},
		sep:            " - ",
		org:            "%s",
		location:       `\\ %s`,
		objective:      "%s",
		gpa:            ", GPA: %s",
		percent:        `, %s\%%`,
		projectTitle:   `\textbf{%s}`,
		projectLink:    func(url string) string { return " - " + EscapeLaTeX(url) },
		toolsLabel:     "Tools:",
		inlineProjects: true,
		skillCategory:  `\textbf{%s:}`,
	},
}

func styleFor(l Layout) (style, bool) {
	s, ok := styles[l]
	return s, ok
}
