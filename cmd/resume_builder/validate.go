package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/record"
	"github.com/jonathan/resume-builder/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a resume record",
	Long:  "Checks a resume record against the embedded schema and the normalizer, listing any defaults that would be substituted.",
	RunE:  runValidate,
}

var (
	validateInput  string
	validateSchema string
)

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "in", "i", "", "Path to the resume record JSON (\"-\" for stdin)")
	validateCmd.Flags().StringVar(&validateSchema, "schema", "", "Validate against this JSON Schema file instead of the built-in one")
	_ = validateCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}
	obj, err := readRecord(validateInput, cmd.InOrStdin())
	if err != nil {
		return err
	}
	raw, err := obj.MarshalJSON()
	if err != nil {
		return err
	}
	if validateSchema != "" {
		err = schemas.ValidateRecordAgainst(validateSchema, raw)
	} else {
		err = schemas.ValidateRecord(raw)
	}
	if err != nil {
		return err
	}

	var defaults []record.Substitution
	n := record.Normalizer{OnDefault: func(s record.Substitution) { defaults = append(defaults, s) }}
	rec, err := n.Normalize(obj)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if verbose {
		observability.NewPrinter(out).PrintRecordSummary(rec, defaults)
		return nil
	}
	_, _ = fmt.Fprintf(out, "valid: %s (%d experience, %d education, %d project entries)\n",
		rec.Name, len(rec.Experience), len(rec.Education), len(rec.Projects))
	for _, d := range defaults {
		_, _ = fmt.Fprintf(out, "default: %s = %q\n", d.Path, d.Default)
	}
	return nil
}
