package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/llm"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract a resume record from a PDF or text document",
	Long:  "Sends a .pdf or .txt resume to Gemini and writes the extracted record as JSON. Requires GEMINI_API_KEY.",
	RunE:  runExtract,
}

var (
	extractInput  string
	extractOutput string
)

func init() {
	extractCmd.Flags().StringVarP(&extractInput, "in", "i", "", "Path to the .pdf or .txt resume")
	extractCmd.Flags().StringVarP(&extractOutput, "out", "o", "", "Path for the record JSON (default: stdout)")
	_ = extractCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	mimeType, ok := llm.MIMETypeFor(extractInput)
	if !ok {
		return fmt.Errorf("unsupported document type %q: only .pdf and .txt are allowed", filepath.Ext(extractInput))
	}
	data, err := os.ReadFile(extractInput)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	extractor, closeExtractor, err := newExtractor(ctx, cfg)
	if err != nil {
		return err
	}
	if extractor == nil {
		return fmt.Errorf("GEMINI_API_KEY is required for extraction")
	}
	defer closeExtractor()

	obj, err := extractor.Extract(ctx, llm.Document{Name: filepath.Base(extractInput), MIMEType: mimeType, Data: data})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	out = append(out, '\n')
	if extractOutput == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := writeFile(extractOutput, out); err != nil {
		return err
	}
	logger.Info("record extracted", "document", extractInput, "out", extractOutput, "fields", obj.Len())
	return nil
}
