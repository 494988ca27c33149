package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"jirascraper/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	quiet      bool
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jirascraper",
	Short: "A resumable scraper for Jira issue trackers",
	Long: `Jira Scraper pages through a Jira project's issues and writes them,
comments included, to a JSONL file suitable for building datasets.

Features:
  - Resumable scrapes with atomic checkpoints
  - Automatic retry with exponential backoff and Retry-After support
  - Append-only output that survives interruption
  - Secure API token storage using the system keychain

Works against any Jira with the v2 REST API, including the public
Apache tracker at https://issues.apache.org/jira.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose && logLevel == "info" {
			logLevel = "debug"
		}
		if quiet || logLevel == "error" {
			ui.SetQuietMode(true)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is $HOME/.jirascraper.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show all output including debug logs")

	rootCmd.SetVersionTemplate(`Jira Scraper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
