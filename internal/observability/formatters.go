// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-builder/internal/compile"
	"github.com/jonathan/resume-builder/internal/pipeline"
	"github.com/jonathan/resume-builder/internal/record"
	"github.com/jonathan/resume-builder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line))
	}
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad truncates or right-pads line to the inner box width, counting runes.
func pad(line string) string {
	width := boxWidth - 4
	n := utf8.RuneCountInString(line)
	if n > width {
		runes := []rune(line)
		return string(runes[:width-3]) + "..."
	}
	return line + strings.Repeat(" ", width-n)
}

// PrintRecordSummary outputs the normalized record and the defaults that filled it.
func (p *Printer) PrintRecordSummary(rec *types.ResumeRecord, defaults []record.Substitution) {
	if rec == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Name:     %s\n", rec.Name)
	fmt.Fprintf(&sb, "Email:    %s\n", rec.Email)
	fmt.Fprintf(&sb, "Sections: %d education, %d experience, %d projects, %d certificates\n",
		len(rec.Education), len(rec.Experience), len(rec.Projects), len(rec.Certificates))

	if len(defaults) > 0 {
		sb.WriteString("\nDefaults substituted:\n")
		count := min(len(defaults), maxItemsToShow)
		for _, d := range defaults[:count] {
			fmt.Fprintf(&sb, "  • %s = %q\n", d.Path, d.Default)
		}
		if len(defaults) > maxItemsToShow {
			fmt.Fprintf(&sb, "  ... and %d more\n", len(defaults)-maxItemsToShow)
		}
	}

	p.printBox("NORMALIZED RECORD", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintLayoutResults outputs one line per layout plus the service attempts of
// layouts that did not compile on the first try.
func (p *Printer) PrintLayoutResults(res *pipeline.Result) {
	if res == nil || len(res.Layouts) == 0 {
		return
	}

	var sb strings.Builder
	for i, lr := range res.Layouts {
		marker := "✓"
		switch {
		case lr.Err != nil:
			marker = "✗"
		case lr.Outcome == compile.OutcomePlaceholder || lr.Outcome == compile.OutcomeSucceededSimplified:
			marker = "⚠"
		}
		fmt.Fprintf(&sb, "%s %-12s %s", marker, lr.Layout, lr.Status())
		if lr.Service != "" {
			fmt.Fprintf(&sb, " via %s", lr.Service)
		}
		sb.WriteString("\n")

		if len(lr.Attempts) > 1 {
			for _, a := range lr.Attempts {
				switch {
				case a.Skipped:
					fmt.Fprintf(&sb, "    %s/%s: skipped\n", a.Pass, a.Service)
				case a.Err != nil:
					fmt.Fprintf(&sb, "    %s/%s: %v\n", a.Pass, a.Service, a.Err)
				default:
					fmt.Fprintf(&sb, "    %s/%s: ok\n", a.Pass, a.Service)
				}
			}
		}
		if lr.Err != nil {
			fmt.Fprintf(&sb, "    %v\n", lr.Err)
		}
		if i < len(res.Layouts)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox(fmt.Sprintf("LAYOUTS (run %s)", res.RunID), strings.TrimSuffix(sb.String(), "\n"))
}
