// Package main provides the resume_builder CLI: rendering, compiling, extraction and
// the HTTP API server.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

var (
	configPath string
	logLevel   string
	logFormat  string
	verbose    bool
	logger     = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "resume_builder",
	Short: "Resume Builder renders resume records into typeset PDF documents",
	Long: "Resume Builder turns a structured resume record into LaTeX markup for several layouts and " +
		"compiles each one through a chain of remote compilation services.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		l, err := newLogger(cmd.ErrOrStderr(), logLevel, logFormat)
		if err != nil {
			return err
		}
		logger = l
		slog.SetDefault(l)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML or JSON config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print record and layout summaries")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		slog.Debug(fmt.Sprintf(format, args...))
	}))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
