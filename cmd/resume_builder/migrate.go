package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|status]",
	Short:     "Apply or inspect run ledger migrations",
	Long:      "Applies the embedded goose migrations to DATABASE_URL (up, the default) or prints their status.",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "status"},
	RunE:      runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for migrate")
	}

	database, closeDB, err := openLedger(ctx, cfg, db.DefaultCLIOptions())
	if err != nil {
		return err
	}
	defer closeDB()

	if len(args) == 1 && args[0] == "status" {
		return db.MigrationStatus(ctx, database.Conn())
	}
	if err := db.RunMigrations(ctx, database.Conn()); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}
