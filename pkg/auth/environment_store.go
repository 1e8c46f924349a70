package auth

import (
	"os"
	"time"
)

const (
	envSessionID = "IGSAVED_SESSION_ID"
	envUsername  = "IGSAVED_USERNAME"
)

// EnvironmentStore reads a session from IGSAVED_SESSION_ID. It is read-only.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(*Account) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment session under whatever profile is asked
func (e *EnvironmentStore) Retrieve(profile string) (*Account, error) {
	sessionID := os.Getenv(envSessionID)
	if sessionID == "" {
		return nil, ErrCredentialsNotFound
	}
	if profile == "" {
		profile = DefaultProfile
	}

	return &Account{
		Profile:      profile,
		Username:     os.Getenv(envUsername),
		SessionID:    sessionID,
		LastModified: time.Now(),
	}, nil
}

// List returns a single account if the environment carries a session
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve(DefaultProfile)
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(string) error {
	return ErrStoreUnavailable
}

// Exists checks if an environment session is set
func (e *EnvironmentStore) Exists(string) bool {
	return os.Getenv(envSessionID) != ""
}
