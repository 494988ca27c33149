package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore using environment variables.
// It lets CI jobs run without touching the keychain or disk.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve gets credentials from environment variables
func (e *EnvironmentStore) Retrieve(email string) (*Account, error) {
	envEmail := os.Getenv("JIRASCRAPER_EMAIL")
	apiToken := os.Getenv("JIRASCRAPER_API_TOKEN")
	baseURL := os.Getenv("JIRASCRAPER_BASE_URL")

	if envEmail == "" || apiToken == "" {
		return nil, ErrCredentialsNotFound
	}

	if email != "" && email != envEmail {
		return nil, ErrCredentialsNotFound
	}

	return &Account{
		Email:        envEmail,
		APIToken:     apiToken,
		BaseURL:      baseURL,
		LastModified: time.Now(),
	}, nil
}

// List returns a single account if environment variables are set
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(email string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(email string) bool {
	envEmail := os.Getenv("JIRASCRAPER_EMAIL")
	apiToken := os.Getenv("JIRASCRAPER_API_TOKEN")
	if envEmail == "" || apiToken == "" {
		return false
	}
	return email == "" || email == envEmail
}
