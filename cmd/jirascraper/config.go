package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"jirascraper/pkg/config"
	"jirascraper/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage Jira Scraper configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (JIRASCRAPER_*)
  - Configuration file
  - Default values (lowest priority)`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is created as 'jirascraper.yaml' in the current directory
unless a different path is given with the --config flag.`,
	Run: runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging all sources.

The API token is masked.`,
	Run: runConfigShow,
}

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Run:   runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

const exampleConfig = `# Jira Scraper Configuration File
#
# All options can also be set with environment variables prefixed
# with JIRASCRAPER_, for example JIRASCRAPER_BASE_URL.

jira:
  # Base URL of the Jira instance
  base_url: "https://issues.apache.org/jira"

  # Account email and API token. Leave empty for anonymous access
  # to public instances, or store them with 'jirascraper auth login'.
  email: ""
  api_token: ""

  # Per-request timeout
  request_timeout: 30s

retry:
  # Attempts per request before giving up
  max_attempts: 6

  # Exponential backoff bounds
  base_delay: 1s
  max_delay: 60s

scrape:
  # Issues fetched per search page (max 1000)
  page_size: 100

  # Politeness pause between page fetches
  page_delay: 500ms

output:
  # Directory for checkpoints. Empty selects the platform data dir.
  data_directory: ""

logging:
  # debug, info, warn, error
  level: "info"

  # Log file path. Empty logs to stderr only.
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = "jirascraper.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0600); err != nil {
		ui.PrintError("Failed to write configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Never print the token itself
	masked := *cfg
	if masked.Jira.APIToken != "" {
		masked.Jira.APIToken = "********"
	}

	data, err := yaml.Marshal(&masked)
	if err != nil {
		ui.PrintError("Failed to render configuration", err.Error())
		os.Exit(1)
	}

	fmt.Print(string(data))
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration is invalid", err.Error())
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		ui.PrintError("Configuration is invalid", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration is valid")
}
