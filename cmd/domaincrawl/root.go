package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/domaincrawl/internal/config"
	"github.com/nao1215/domaincrawl/internal/log"
)

// NewRootCmd creates the root command for domaincrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domaincrawl",
		Short: "Polite domain-restricted web crawler with duplicate detection",
		Long: `domaincrawl crawls a fixed set of allowed domains with a pool of polite
workers. Pages are deduplicated by exact text and by token overlap, and
corpus statistics are written to a report when the crawl ends.

Crawl state is kept in a SQLite database in the XDG data directory, so an
interrupted crawl resumes where it stopped. Use --restart to start over.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: "+config.DefaultConfigFile+" or the XDG config directory)")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getBoolFlag retrieves a boolean flag from the command or the root's
// persistent flags.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// getConfigFlag retrieves the --config path.
func getConfigFlag(cmd *cobra.Command) string {
	v, err := cmd.Flags().GetString("config")
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetString("config")
		if err != nil {
			return ""
		}
	}
	return v
}

// setupLogger creates the secure logger selected by the global flags and
// installs it as the slog default.
func setupLogger(cmd *cobra.Command) *slog.Logger {
	logger := log.New(cmd.ErrOrStderr(), log.Options{
		Verbose: getBoolFlag(cmd, "verbose"),
		JSON:    getBoolFlag(cmd, "log-json"),
	})
	slog.SetDefault(logger)
	return logger
}
