package rendering

import (
	"embed"
	"strings"
	"sync"
	"text/template"

	"github.com/jonathan/resume-builder/internal/types"
)

//go:embed templates/*.tex
var templateFS embed.FS

// TemplateData represents the data structure passed to the LaTeX templates.
// Every field is already escaped markup.
type TemplateData struct {
	Name     string
	Contact  string
	Sections []Section
	// Unnumbered switches to \section* for documents that do not load titlesec.
	Unnumbered bool
}

var loadTemplates = sync.OnceValues(func() (*template.Template, error) {
	// LaTeX is full of braces, so the default {{ }} delimiters are replaced.
	tmpl, err := template.New("resume").Delims("<<", ">>").ParseFS(templateFS, "templates/*.tex")
	if err != nil {
		return nil, &TemplateError{Template: "templates/*.tex", Cause: err}
	}
	return tmpl, nil
})

// RenderLaTeX renders a complete LaTeX document for rec in the given layout.
// Output is a pure function of its inputs.
func RenderLaTeX(rec *types.ResumeRecord, layout Layout) (string, error) {
	if rec == nil {
		return "", &RenderError{Layout: layout, Err: ErrNilRecord}
	}

	s, ok := styleFor(layout)
	if !ok {
		return "", &RenderError{Layout: layout, Err: ErrUnknownLayout}
	}

	tmpl, err := loadTemplates()
	if err != nil {
		return "", err
	}

	data := buildTemplateData(rec, layout, s)

	var result strings.Builder
	if err := tmpl.ExecuteTemplate(&result, string(layout), data); err != nil {
		return "", &RenderError{Layout: layout, Err: &TemplateError{Template: string(layout), Cause: err}}
	}

	return result.String(), nil
}

// buildTemplateData constructs the template data structure from the record
func buildTemplateData(rec *types.ResumeRecord, layout Layout, s style) *TemplateData {
	return &TemplateData{
		Name:       EscapeLaTeX(rec.Name),
		Contact:    s.contact(rec),
		Sections:   s.buildSections(rec),
		Unnumbered: layout == Simplified,
	}
}
