package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"jirascraper/pkg/auth"
	"jirascraper/pkg/config"
	"jirascraper/pkg/logger"
	"jirascraper/pkg/scraper"
	"jirascraper/pkg/ui"
)

var (
	// Scrape command flags
	outPath      string
	jqlQuery     string
	baseURL      string
	accountEmail string
	pageSize     int
	pageDelay    time.Duration
	maxRetries   int
	resumeScrape bool
	forceRestart bool
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape <PROJECT>",
	Short: "Scrape all issues of a Jira project to a JSONL file",
	Long: `Scrape every issue of a Jira project, including comments, and write
one JSON record per line to the output file.

Progress is checkpointed after each page. An interrupted run can be
continued with --resume; already emitted issues are skipped.

Public Jira instances like issues.apache.org need no credentials.
For instances requiring authentication, store an API token with
'jirascraper auth login' or set JIRASCRAPER_EMAIL and
JIRASCRAPER_API_TOKEN.`,
	Example: `  # Scrape the Apache Kafka project
  jirascraper scrape KAFKA

  # Custom output path and query
  jirascraper scrape KAFKA --out kafka.jsonl --jql "project = KAFKA AND created > -30d ORDER BY created ASC"

  # Resume an interrupted scrape
  jirascraper scrape KAFKA --resume

  # Start over, discarding the checkpoint
  jirascraper scrape KAFKA --force-restart`,
	Args: cobra.ExactArgs(1),
	Run:  runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringVarP(&outPath, "out", "o", "", "output JSONL path (default: <project>_issues.jsonl)")
	scrapeCmd.Flags().StringVar(&jqlQuery, "jql", "", "JQL query (default: all project issues, oldest first)")
	scrapeCmd.Flags().StringVar(&baseURL, "base-url", "", "Jira base URL")
	scrapeCmd.Flags().StringVarP(&accountEmail, "account", "a", "", "use specific stored account")
	scrapeCmd.Flags().IntVar(&pageSize, "page-size", 0, "issues per page (max 1000)")
	scrapeCmd.Flags().DurationVar(&pageDelay, "page-delay", -1, "pause between page fetches")
	scrapeCmd.Flags().IntVar(&maxRetries, "max-attempts", 0, "maximum attempts per request")
	scrapeCmd.Flags().BoolVar(&resumeScrape, "resume", false, "resume from last checkpoint")
	scrapeCmd.Flags().BoolVar(&forceRestart, "force-restart", false, "force restart, ignoring existing checkpoint")
}

func runScrape(cmd *cobra.Command, args []string) {
	project := strings.TrimSpace(args[0])
	ui.PrintInfo("Target project", project)

	flags := make(map[string]interface{})
	if baseURL != "" {
		flags["base-url"] = baseURL
	}
	if pageSize > 0 {
		flags["page-size"] = pageSize
	}
	if pageDelay >= 0 {
		flags["page-delay"] = pageDelay
	}
	if maxRetries > 0 {
		flags["max-attempts"] = maxRetries
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}
	logger.WithField("version", version).Info("Jira Scraper starting")

	applyStoredCredentials(cfg)

	s, err := scraper.New(cfg)
	if err != nil {
		ui.PrintError("Failed to initialize scraper", err.Error())
		os.Exit(1)
	}

	// Ctrl-C cancels the run; completed pages are already checkpointed
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = s.Run(ctx, project, scraper.Options{
		JQL:          jqlQuery,
		OutPath:      outPath,
		Resume:       resumeScrape,
		ForceRestart: forceRestart,
	})
	if err != nil {
		logger.WithError(err).WithField("project", project).Error("Scrape failed")
		ui.PrintError("Scrape failed", err.Error())
		os.Exit(1)
	}

	logger.WithField("project", project).Info("Scrape completed successfully")
}

// applyStoredCredentials fills in Jira credentials from the credential
// manager when the config does not already carry them. Missing
// credentials are not fatal: public Jira instances allow anonymous
// search.
func applyStoredCredentials(cfg *config.Config) {
	if cfg.Jira.Email != "" && cfg.Jira.APIToken != "" {
		logger.Info("Using credentials from configuration")
		return
	}

	credManager, err := auth.NewManager()
	if err != nil {
		logger.WithError(err).Warn("Credential manager unavailable, continuing anonymously")
		return
	}

	var account *auth.Account
	if accountEmail != "" {
		account, err = credManager.Retrieve(accountEmail)
		if err != nil {
			ui.PrintError("Account not found", accountEmail)
			fmt.Println("\nUse 'jirascraper auth list' to see stored accounts")
			os.Exit(1)
		}
	} else {
		account, err = credManager.RetrieveDefault()
		if err != nil {
			logger.Info("No stored credentials, scraping anonymously")
			return
		}
	}

	cfg.Jira.Email = account.Email
	cfg.Jira.APIToken = account.APIToken
	if account.BaseURL != "" && baseURL == "" {
		cfg.Jira.BaseURL = account.BaseURL
	}
	logger.WithField("account", account.Email).Info("Using stored credentials")
	ui.PrintInfo("Using account", account.Email)
}
