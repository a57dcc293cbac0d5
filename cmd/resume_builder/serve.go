package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/metrics"
	"github.com/jonathan/resume-builder/internal/server"
	"github.com/jonathan/resume-builder/internal/server/ratelimit"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: "Starts an HTTP server exposing POST /api/render, POST /api/upload (when GEMINI_API_KEY is set), " +
		"GET /metrics and, when DATABASE_URL is set, the run ledger under /api/runs.",
	RunE: runServe,
}

var (
	servePort    int
	serveMigrate bool
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config and PORT)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply ledger migrations before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}

	ledger, closeLedger, err := openLedger(ctx, cfg, db.DefaultServerOptions())
	if err != nil {
		return err
	}
	defer closeLedger()
	if ledger != nil && serveMigrate {
		if err := db.RunMigrations(ctx, ledger.Conn()); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	extractor, closeExtractor, err := newExtractor(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeExtractor()
	if extractor == nil {
		logger.Warn("GEMINI_API_KEY not set; POST /api/upload is disabled")
	}

	gen, err := newGenerator(cfg, metrics.Default, ledger)
	if err != nil {
		return err
	}

	deps := server.Deps{
		Config:    cfg,
		Generator: gen,
		Extractor: extractor,
		Metrics:   metrics.Default,
		RateLimit: ratelimit.LoadConfig(os.Getenv),
		Logger:    logger,
	}
	if ledger != nil {
		deps.Runs = ledger
	}

	srv, err := server.New(deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Run(ctx)
}
