package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"jirascraper/pkg/auth"
	"jirascraper/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Jira credentials",
	Long: `Manage stored Jira credentials securely.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (JIRASCRAPER_EMAIL, JIRASCRAPER_API_TOKEN)

Never share your API tokens or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Store Jira credentials securely",
	Long: `Store a Jira account email and API token in the system keychain or an
encrypted file.

To create an API token for Atlassian Cloud:
1. Visit https://id.atlassian.com/manage-profile/security/api-tokens
2. Create a token and copy it
3. Run this command and paste the token when prompted`,
	Example: `  # Interactive login
  jirascraper auth login

  # Login with email
  jirascraper auth login dev@example.com`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [email]",
	Short: "Remove stored credentials",
	Args:  cobra.MaximumNArgs(1),
	Run:   runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored accounts",
	Long:  `List all stored Jira accounts with their API tokens masked.`,
	Run:   runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)

	var email string
	if len(args) > 0 {
		email = args[0]
	}
	if email == "" {
		fmt.Print("Jira account email: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			ui.PrintError("Failed to read email", err.Error())
			os.Exit(1)
		}
		email = strings.TrimSpace(input)
	}
	if email == "" {
		ui.PrintError("Email is required")
		os.Exit(1)
	}

	if existing, _ := manager.Retrieve(email); existing != nil {
		fmt.Printf("Account '%s' already exists. Update credentials? (y/N): ", email)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	fmt.Print("API token (input hidden): ")
	token, err := readPassword()
	if err != nil {
		ui.PrintError("Failed to read API token", err.Error())
		os.Exit(1)
	}
	fmt.Println()
	if token == "" {
		ui.PrintError("API token is required")
		os.Exit(1)
	}

	fmt.Print("Jira base URL (press Enter for default): ")
	jiraURL, _ := reader.ReadString('\n')
	jiraURL = strings.TrimSpace(jiraURL)

	account := &auth.Account{
		Email:        email,
		APIToken:     token,
		BaseURL:      jiraURL,
		LastModified: time.Now(),
	}

	if err := manager.Store(account); err != nil {
		ui.PrintError("Failed to store credentials", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess(fmt.Sprintf("Account saved: %s", email))
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	if len(args) > 0 {
		email := args[0]
		if err := manager.Delete(email); err != nil {
			ui.PrintError("Failed to remove account", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Account removed: " + email)
		return
	}

	accounts, err := manager.List()
	if err != nil || len(accounts) == 0 {
		ui.PrintError("No stored accounts found")
		return
	}

	reader := bufio.NewReader(os.Stdin)
	if len(accounts) == 1 {
		account := accounts[0]
		fmt.Printf("Remove account '%s'? (y/N): ", account.Email)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
		if err := manager.Delete(account.Email); err != nil {
			ui.PrintError("Failed to remove account", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Account removed: " + account.Email)
		return
	}

	fmt.Println("Select account to remove:")
	for i, account := range accounts {
		fmt.Printf("  %d. %s\n", i+1, account.Email)
	}
	fmt.Printf("  0. Cancel\n\n")
	fmt.Print("Choice: ")
	input, _ := reader.ReadString('\n')

	var choice int
	fmt.Sscanf(strings.TrimSpace(input), "%d", &choice)
	if choice < 1 || choice > len(accounts) {
		return
	}

	email := accounts[choice-1].Email
	if err := manager.Delete(email); err != nil {
		ui.PrintError("Failed to remove account", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess("Account removed: " + email)
}

func runList(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	accounts, err := manager.List()
	if err != nil {
		ui.PrintError("Failed to list accounts", err.Error())
		os.Exit(1)
	}
	if len(accounts) == 0 {
		fmt.Println("No stored accounts.")
		fmt.Println("\nUse 'jirascraper auth login' to store credentials.")
		return
	}

	fmt.Println("Stored accounts:")
	for _, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		fmt.Printf("  %s  token: %s", sanitized.Email, sanitized.APIToken)
		if sanitized.BaseURL != "" {
			fmt.Printf("  url: %s", sanitized.BaseURL)
		}
		fmt.Println()
	}
}

// readPassword reads a line from stdin without echoing it
func readPassword() (string, error) {
	data, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
