// Package main provides the contact-engine CLI entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/spherical-ai/contact-engine/internal/config"
	"github.com/spherical-ai/contact-engine/internal/observability"
	"github.com/spherical-ai/contact-engine/pkg/engine"
)

var (
	// Global flags
	cfgFile    string
	outputJSON bool
	noColor    bool

	// Configuration and logger
	cfg    *config.Config
	logger *observability.Logger
	eng    *engine.Engine
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "contact-engine-cli",
	Short: "Contact Engine CLI for canonicalization, matching, and comparison",
	Long: `Contact Engine CLI provides commands for working with contact records.

Use this tool to:
- Canonicalize raw job titles and department names
- Inspect candidate matches and their scores
- Compare two contact records field by field
- Process CSV files of records in batch

All commands support --json for automation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logFormat := "console"
		if outputJSON {
			logFormat = "json"
		}

		logger = observability.NewLogger(observability.LogConfig{
			Level:       cfg.Observability.LogLevel,
			Format:      logFormat,
			ServiceName: "contact-engine-cli",
		})

		eng, err = engine.New(cfg, logger)
		if err != nil {
			return fmt.Errorf("initialize engine: %w", err)
		}

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if eng != nil {
			return eng.Close()
		}
		return nil
	},
}

func init() {
	godotenv.Load()

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newMatchCmd())
	rootCmd.AddCommand(newCompareCmd())
	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Version is set at build time via -ldflags.
var Version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("contact-engine-cli %s\n", Version)
		},
	}
}
