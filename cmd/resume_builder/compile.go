package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/compile"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/metrics"
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/pipeline"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Render and compile each layout to PDF",
	Long: "Renders every layout and compiles it through the configured services, falling back to the " +
		"simplified layout and then to a placeholder document. Writes one .pdf and .tex per layout " +
		"plus a JSON report.",
	RunE: runCompile,
}

var (
	compileInput   string
	compileOutDir  string
	compileLayouts []string
	compileReport  string
)

func init() {
	compileCmd.Flags().StringVarP(&compileInput, "in", "i", "", "Path to the resume record JSON (\"-\" for stdin)")
	compileCmd.Flags().StringVarP(&compileOutDir, "out-dir", "o", "out", "Directory for the generated files")
	compileCmd.Flags().StringSliceVarP(&compileLayouts, "layouts", "l", nil, "Layouts by name or number (default: configured layouts)")
	compileCmd.Flags().StringVar(&compileReport, "report", "", "Report path (default: <out-dir>/report.json)")
	_ = compileCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(compileCmd)
}

// CompileReport summarizes one compile run.
type CompileReport struct {
	RunID      uuid.UUID      `json:"run_id"`
	DurationMs int64          `json:"duration_ms"`
	Defaults   []string       `json:"defaults,omitempty"`
	Layouts    []LayoutReport `json:"layouts"`
}

// LayoutReport is one layout in a CompileReport.
type LayoutReport struct {
	Layout  string `json:"layout"`
	Status  string `json:"status"`
	Service string `json:"service,omitempty"`
	Pages   int    `json:"pages,omitempty"`
	PDF     string `json:"pdf,omitempty"`
	// Placeholder marks a PDF file that holds the fallback document.
	Placeholder bool            `json:"placeholder,omitempty"`
	TeX         string          `json:"tex,omitempty"`
	DurationMs  int64           `json:"duration_ms"`
	Attempts    []AttemptReport `json:"attempts,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// AttemptReport is one service attempt.
type AttemptReport struct {
	Pass    string `json:"pass"`
	Service string `json:"service"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

func runCompile(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	obj, err := readRecord(compileInput, cmd.InOrStdin())
	if err != nil {
		return err
	}
	layouts, err := selectLayouts(cfg, compileLayouts)
	if err != nil {
		return err
	}

	ledger, closeLedger, err := openLedger(ctx, cfg, db.DefaultCLIOptions())
	if err != nil {
		return err
	}
	defer closeLedger()

	gen, err := newGenerator(cfg, metrics.NewRegistry(), ledger)
	if err != nil {
		return err
	}
	res, err := gen.Generate(ctx, obj, pipeline.Request{Layouts: layouts, Source: "cli"})
	if err != nil {
		return err
	}

	report, err := writeCompileOutputs(res, compileOutDir)
	if err != nil {
		return err
	}
	reportPath := compileReport
	if reportPath == "" {
		reportPath = filepath.Join(compileOutDir, "report.json")
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := writeFile(reportPath, append(data, '\n')); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if verbose {
		printer := observability.NewPrinter(out)
		printer.PrintRecordSummary(res.Record, res.Substitutions)
		printer.PrintLayoutResults(res)
	}
	for _, l := range report.Layouts {
		_, _ = fmt.Fprintf(out, "%-12s %-22s %s\n", l.Layout, l.Status, l.PDF)
	}
	_, _ = fmt.Fprintf(out, "report: %s\n", reportPath)

	if failed := res.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d of %d layout(s) failed", len(failed), len(res.Layouts))
	}
	return nil
}

// writeCompileOutputs writes the markup and document of every layout and builds the report.
func writeCompileOutputs(res *pipeline.Result, outDir string) (*CompileReport, error) {
	report := &CompileReport{RunID: res.RunID, DurationMs: res.Duration.Milliseconds()}
	for _, sub := range res.Substitutions {
		report.Defaults = append(report.Defaults, sub.Path)
	}

	for _, lr := range res.Layouts {
		lrep := LayoutReport{
			Layout:     string(lr.Layout),
			Status:     lr.Status(),
			Service:    lr.Service,
			DurationMs: lr.Duration.Milliseconds(),
		}
		for _, a := range lr.Attempts {
			ar := AttemptReport{Pass: string(a.Pass), Service: a.Service, Skipped: a.Skipped}
			if a.Err != nil {
				ar.Error = a.Err.Error()
			}
			lrep.Attempts = append(lrep.Attempts, ar)
		}
		if lr.Err != nil {
			lrep.Error = lr.Err.Error()
		}

		if lr.Markup != "" {
			lrep.TeX = filepath.Join(outDir, string(lr.Layout)+".tex")
			if err := writeFile(lrep.TeX, []byte(lr.Markup)); err != nil {
				return nil, err
			}
		}
		if len(lr.PDF) > 0 {
			lrep.PDF = filepath.Join(outDir, string(lr.Layout)+".pdf")
			if err := writeFile(lrep.PDF, lr.PDF); err != nil {
				return nil, err
			}
			lrep.Placeholder = compile.IsPlaceholder(lr.PDF)
			if pages, err := compile.PageCount(lr.PDF); err == nil {
				lrep.Pages = pages
			} else {
				logger.Debug("page count unavailable", "layout", lr.Layout, "error", err)
			}
		}
		report.Layouts = append(report.Layouts, lrep)
	}
	return report, nil
}
