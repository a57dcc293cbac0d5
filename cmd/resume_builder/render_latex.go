package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/pipeline"
)

var renderLaTeXCmd = &cobra.Command{
	Use:   "render-latex",
	Short: "Render LaTeX markup for each layout",
	Long:  "Validates and normalizes a resume record and writes one .tex file per layout without compiling.",
	RunE:  runRenderLaTeX,
}

var (
	renderLaTeXInput   string
	renderLaTeXOutDir  string
	renderLaTeXLayouts []string
)

func init() {
	renderLaTeXCmd.Flags().StringVarP(&renderLaTeXInput, "in", "i", "", "Path to the resume record JSON (\"-\" for stdin)")
	renderLaTeXCmd.Flags().StringVarP(&renderLaTeXOutDir, "out-dir", "o", "out", "Directory for the .tex files")
	renderLaTeXCmd.Flags().StringSliceVarP(&renderLaTeXLayouts, "layouts", "l", nil, "Layouts by name or number (default: configured layouts)")
	_ = renderLaTeXCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(renderLaTeXCmd)
}

func runRenderLaTeX(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	obj, err := readRecord(renderLaTeXInput, cmd.InOrStdin())
	if err != nil {
		return err
	}
	layouts, err := selectLayouts(cfg, renderLaTeXLayouts)
	if err != nil {
		return err
	}

	gen := pipeline.New(pipeline.Options{Logger: logger})
	res, err := gen.Render(cmd.Context(), obj, pipeline.Request{Layouts: layouts, Source: "cli"})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, sub := range res.Substitutions {
		_, _ = fmt.Fprintf(out, "default: %s = %q\n", sub.Path, sub.Default)
	}
	for _, lr := range res.Layouts {
		if lr.Err != nil {
			_, _ = fmt.Fprintf(out, "%-12s failed: %v\n", lr.Layout, lr.Err)
			continue
		}
		path := filepath.Join(renderLaTeXOutDir, string(lr.Layout)+".tex")
		if err := writeFile(path, []byte(lr.Markup)); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "%-12s %s\n", lr.Layout, path)
	}

	if failed := res.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d of %d layout(s) failed", len(failed), len(res.Layouts))
	}
	return nil
}
