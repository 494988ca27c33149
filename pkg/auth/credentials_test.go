package auth

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCredentialManager(t *testing.T) {
	manager, mockStore := NewMockManager()

	account := &Account{
		Email:        "dev@example.com",
		APIToken:     "test_api_token_12345",
		BaseURL:      "https://issues.apache.org/jira",
		LastModified: time.Now(),
	}

	err := manager.Store(account)
	if err != nil {
		t.Errorf("Failed to store account: %v", err)
	}

	retrieved, err := manager.Retrieve("dev@example.com")
	if err != nil {
		t.Errorf("Failed to retrieve account: %v", err)
	}

	if retrieved.Email != account.Email {
		t.Errorf("Email mismatch: got %s, want %s", retrieved.Email, account.Email)
	}
	if retrieved.APIToken != account.APIToken {
		t.Errorf("APIToken mismatch: got %s, want %s", retrieved.APIToken, account.APIToken)
	}

	accounts, err := manager.List()
	if err != nil {
		t.Errorf("Failed to list accounts: %v", err)
	}
	if len(accounts) == 0 {
		t.Error("Expected at least one account in list")
	}

	sanitized := SanitizeAccount(account)
	if sanitized.APIToken == account.APIToken {
		t.Error("APIToken should be masked")
	}
	if sanitized.Email != account.Email {
		t.Error("Email should not be masked")
	}

	err = manager.Delete("dev@example.com")
	if err != nil {
		t.Errorf("Failed to delete account: %v", err)
	}

	_, err = manager.Retrieve("dev@example.com")
	if err == nil {
		t.Error("Expected error retrieving deleted account")
	}

	if mockStore.Count() != 0 {
		t.Errorf("Expected 0 accounts after deletion, got %d", mockStore.Count())
	}
}

func TestManagerRejectsIncompleteAccount(t *testing.T) {
	manager, _ := NewMockManager()

	if err := manager.Store(&Account{Email: "x@example.com"}); err == nil {
		t.Error("Expected error for missing API token")
	}
	if err := manager.Store(&Account{APIToken: "tok"}); err == nil {
		t.Error("Expected error for missing email")
	}
}

func TestEncryptedFileStore(t *testing.T) {
	tempFile := filepath.Join(t.TempDir(), "test_creds.enc")

	os.Setenv("JIRASCRAPER_PASSPHRASE", "test_passphrase_123")
	defer os.Unsetenv("JIRASCRAPER_PASSPHRASE")

	store, err := NewEncryptedFileStore(tempFile)
	if err != nil {
		t.Fatalf("Failed to create encrypted store: %v", err)
	}

	account := &Account{
		Email:    "enc@example.com",
		APIToken: "encrypted_api_token",
	}

	err = store.Store(account)
	if err != nil {
		t.Errorf("Failed to store in encrypted file: %v", err)
	}

	retrieved, err := store.Retrieve("enc@example.com")
	if err != nil {
		t.Errorf("Failed to retrieve from encrypted file: %v", err)
	}

	if retrieved.APIToken != account.APIToken {
		t.Errorf("APIToken mismatch after encryption/decryption")
	}

	// Verify file is actually encrypted
	fileContent, err := os.ReadFile(tempFile)
	if err != nil {
		t.Fatal(err)
	}

	if bytes.Contains(fileContent, []byte("encrypted_api_token")) {
		t.Error("File contains plaintext API token")
	}
}

func TestEnvironmentStore(t *testing.T) {
	os.Setenv("JIRASCRAPER_EMAIL", "env@example.com")
	os.Setenv("JIRASCRAPER_API_TOKEN", "env_token")
	defer os.Unsetenv("JIRASCRAPER_EMAIL")
	defer os.Unsetenv("JIRASCRAPER_API_TOKEN")

	store := NewEnvironmentStore()

	account, err := store.Retrieve("")
	if err != nil {
		t.Errorf("Failed to retrieve from environment: %v", err)
	}

	if account.Email != "env@example.com" {
		t.Errorf("Email mismatch: got %s, want env@example.com", account.Email)
	}
	if account.APIToken != "env_token" {
		t.Errorf("APIToken mismatch: got %s, want env_token", account.APIToken)
	}

	// Retrieving a different email should not match
	if _, err := store.Retrieve("other@example.com"); err == nil {
		t.Error("Expected error retrieving mismatched email")
	}

	err = store.Store(&Account{})
	if err != ErrStoreUnavailable {
		t.Error("Expected ErrStoreUnavailable for environment store")
	}
}

func TestRealManagerWithEncryptedStore(t *testing.T) {
	tempDir := t.TempDir()

	os.Setenv("JIRASCRAPER_PASSPHRASE", "test_passphrase_real_manager")
	defer os.Unsetenv("JIRASCRAPER_PASSPHRASE")

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(tempDir, "credentials.enc"))
	if err != nil {
		t.Fatalf("Failed to create encrypted store: %v", err)
	}

	manager := NewMockManagerWithStores(encryptedStore)

	account := &Account{
		Email:        "real@example.com",
		APIToken:     "real_api_token",
		LastModified: time.Now(),
	}

	err = manager.Store(account)
	if err != nil {
		t.Fatalf("Failed to store account: %v", err)
	}

	accounts, err := manager.List()
	if err != nil {
		t.Fatalf("Failed to list accounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Errorf("Expected 1 account in list, got %d", len(accounts))
	}

	retrieved, err := manager.Retrieve("real@example.com")
	if err != nil {
		t.Fatalf("Failed to retrieve account: %v", err)
	}

	if retrieved.Email != account.Email {
		t.Errorf("Email mismatch: got %s, want %s", retrieved.Email, account.Email)
	}
	if retrieved.APIToken != account.APIToken {
		t.Errorf("APIToken mismatch: got %s, want %s", retrieved.APIToken, account.APIToken)
	}
}

func TestMockStore(t *testing.T) {
	store := NewMockStore()

	accounts, err := store.List()
	if err != nil {
		t.Errorf("Failed to list empty store: %v", err)
	}
	if len(accounts) != 0 {
		t.Errorf("Expected 0 accounts, got %d", len(accounts))
	}

	account := &Account{
		Email:    "mock@example.com",
		APIToken: "mock_token",
	}

	err = store.Store(account)
	if err != nil {
		t.Errorf("Failed to store account: %v", err)
	}

	if store.Count() != 1 {
		t.Errorf("Expected 1 account, got %d", store.Count())
	}

	if !store.Exists("mock@example.com") {
		t.Error("Account should exist")
	}

	store.ListError = fmt.Errorf("injected error")
	_, err = store.List()
	if err == nil || err.Error() != "injected error" {
		t.Error("Expected injected error")
	}
}
