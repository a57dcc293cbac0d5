package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/resume-builder/internal/compile"
	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/metrics"
	"github.com/jonathan/resume-builder/internal/pipeline"
	"github.com/jonathan/resume-builder/internal/record"
	"github.com/jonathan/resume-builder/internal/rendering"
)

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q (want text or json)", format)
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// readRecord reads a JSON record from path, or from stdin when path is "-".
func readRecord(path string, stdin io.Reader) (*record.Object, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}
	return record.Parse(data)
}

// selectLayouts parses --layouts, falling back to the configured layouts.
func selectLayouts(cfg *config.Config, ids []string) ([]rendering.Layout, error) {
	if len(ids) == 0 {
		return cfg.DefaultLayouts()
	}
	return rendering.ParseLayouts(ids)
}

func newOrchestrator(cfg *config.Config, reg *metrics.Registry) (*compile.Orchestrator, error) {
	serviceCfgs, err := cfg.ServiceConfigs()
	if err != nil {
		return nil, err
	}
	services, err := compile.NewServices(serviceCfgs, nil)
	if err != nil {
		return nil, err
	}
	orch := compile.NewOrchestrator(services, compile.Observers(compile.LogObserver(logger), reg.Observer()))
	logger.Debug("compile services configured", "order", orch.ServiceNames())
	return orch, nil
}

// openLedger connects to the run ledger when a database is configured. The returned
// close function is never nil.
func openLedger(ctx context.Context, cfg *config.Config, opts db.Options) (*db.DB, func(), error) {
	if cfg.DatabaseURL == "" {
		return nil, func() {}, nil
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return database, func() { _ = database.Close() }, nil
}

func newGenerator(cfg *config.Config, reg *metrics.Registry, ledger *db.DB) (*pipeline.Generator, error) {
	orch, err := newOrchestrator(cfg, reg)
	if err != nil {
		return nil, err
	}
	opts := pipeline.Options{
		Orchestrator: orch,
		Policy:       cfg.PlaceholderPolicy,
		Metrics:      reg,
		Logger:       logger,
	}
	if ledger != nil {
		opts.Ledger = ledger
	}
	return pipeline.New(opts), nil
}

// newExtractor returns nil when no API key is configured.
func newExtractor(ctx context.Context, cfg *config.Config) (llm.Extractor, func(), error) {
	if cfg.Gemini.APIKey == "" {
		return nil, func() {}, nil
	}
	client, err := llm.NewGeminiClient(ctx, llm.DefaultConfig().WithModel(cfg.Gemini.Model), cfg.Gemini.APIKey)
	if err != nil {
		return nil, nil, err
	}
	return llm.NewGeminiExtractor(client), func() { _ = client.Close() }, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
