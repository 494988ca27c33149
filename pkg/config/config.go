package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the Jira scraper
type Config struct {
	// Jira endpoint and credentials
	Jira JiraConfig `yaml:"jira" json:"jira"`

	// Retry/backoff configuration
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Scrape loop settings
	Scrape ScrapeConfig `yaml:"scrape" json:"scrape"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// JiraConfig holds Jira-specific configuration
type JiraConfig struct {
	BaseURL        string        `yaml:"base_url" json:"base_url"`
	Email          string        `yaml:"email" json:"email"`
	APIToken       string        `yaml:"api_token" json:"api_token"`
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// RetryConfig holds retry and backoff configuration
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay" json:"max_delay"`
}

// ScrapeConfig holds pagination loop configuration
type ScrapeConfig struct {
	PageSize int `yaml:"page_size" json:"page_size"`
	// PageDelay is the fixed politeness pause between page fetches
	PageDelay time.Duration `yaml:"page_delay" json:"page_delay"`
}

// OutputConfig holds output and state directory configuration
type OutputConfig struct {
	// DataDirectory is where checkpoints live; empty means the
	// platform data directory
	DataDirectory string `yaml:"data_directory" json:"data_directory"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Jira: JiraConfig{
			BaseURL:        "https://issues.apache.org/jira",
			UserAgent:      "jirascraper/1.0 (+https://github.com/yourname/jirascraper)",
			RequestTimeout: 30 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts: 6,
			BaseDelay:   1 * time.Second,
			MaxDelay:    60 * time.Second,
		},
		Scrape: ScrapeConfig{
			PageSize:  100,
			PageDelay: 500 * time.Millisecond,
		},
		Output: OutputConfig{
			DataDirectory: "",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if baseURL := os.Getenv("JIRASCRAPER_BASE_URL"); baseURL != "" {
		c.Jira.BaseURL = baseURL
	}
	if email := os.Getenv("JIRASCRAPER_EMAIL"); email != "" {
		c.Jira.Email = email
	}
	if token := os.Getenv("JIRASCRAPER_API_TOKEN"); token != "" {
		c.Jira.APIToken = token
	}
	if userAgent := os.Getenv("JIRASCRAPER_USER_AGENT"); userAgent != "" {
		c.Jira.UserAgent = userAgent
	}

	if attempts := os.Getenv("JIRASCRAPER_MAX_ATTEMPTS"); attempts != "" {
		var val int
		fmt.Sscanf(attempts, "%d", &val)
		if val > 0 {
			c.Retry.MaxAttempts = val
		}
	}

	if pageSize := os.Getenv("JIRASCRAPER_PAGE_SIZE"); pageSize != "" {
		var val int
		fmt.Sscanf(pageSize, "%d", &val)
		if val > 0 {
			c.Scrape.PageSize = val
		}
	}

	if dataDir := os.Getenv("JIRASCRAPER_DATA_DIR"); dataDir != "" {
		c.Output.DataDirectory = dataDir
	}

	if logLevel := os.Getenv("JIRASCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".jirascraper.yaml",
		".jirascraper.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "jirascraper", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "jirascraper", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".jirascraper.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Jira.BaseURL == "" {
		errs = append(errs, errors.New("jira base URL is required"))
	}
	if !strings.HasPrefix(c.Jira.BaseURL, "http://") && !strings.HasPrefix(c.Jira.BaseURL, "https://") {
		errs = append(errs, errors.New("jira base URL must be an http(s) URL"))
	}
	if c.Jira.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if c.Retry.MaxAttempts <= 0 {
		errs = append(errs, errors.New("max attempts must be positive"))
	}
	if c.Retry.BaseDelay <= 0 {
		errs = append(errs, errors.New("base delay must be positive"))
	}
	if c.Retry.MaxDelay < c.Retry.BaseDelay {
		errs = append(errs, errors.New("max delay must be at least the base delay"))
	}

	if c.Scrape.PageSize <= 0 {
		errs = append(errs, errors.New("page size must be positive"))
	}
	if c.Scrape.PageSize > 1000 {
		errs = append(errs, errors.New("page size should not exceed 1000"))
	}
	if c.Scrape.PageDelay < 0 {
		errs = append(errs, errors.New("page delay cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if baseURL, ok := flags["base-url"].(string); ok && baseURL != "" {
		c.Jira.BaseURL = baseURL
	}
	if email, ok := flags["email"].(string); ok && email != "" {
		c.Jira.Email = email
	}
	if token, ok := flags["api-token"].(string); ok && token != "" {
		c.Jira.APIToken = token
	}
	if attempts, ok := flags["max-attempts"].(int); ok && attempts > 0 {
		c.Retry.MaxAttempts = attempts
	}
	if pageSize, ok := flags["page-size"].(int); ok && pageSize > 0 {
		c.Scrape.PageSize = pageSize
	}
	if pageDelay, ok := flags["page-delay"].(time.Duration); ok && pageDelay >= 0 {
		c.Scrape.PageDelay = pageDelay
	}
	if dataDir, ok := flags["data-dir"].(string); ok && dataDir != "" {
		c.Output.DataDirectory = dataDir
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".jirascraper.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
