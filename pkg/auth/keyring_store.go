package auth

import (
	"errors"
	"fmt"
	"sort"

	json "github.com/goccy/go-json"
	"github.com/zalando/go-keyring"
)

const (
	keyringService  = "igsaved"
	keyringPrefix   = "session_"
	keyringIndexKey = "profiles"
	keyringCheckKey = "availability"
)

// KeyringStore keeps sessions in the system keychain. The keychain cannot
// enumerate entries, so the stored profile names are kept under an index key.
type KeyringStore struct{}

// NewKeyringStore returns an error when the keychain does not answer
func NewKeyringStore() (*KeyringStore, error) {
	if err := keyring.Set(keyringService, keyringCheckKey, "ok"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, keyringCheckKey)
	return &KeyringStore{}, nil
}

func (k *KeyringStore) Store(account *Account) error {
	if account == nil || account.Profile == "" {
		return ErrInvalidCredentials
	}

	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}
	if err := keyring.Set(keyringService, keyringPrefix+account.Profile, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	return k.updateIndex(func(profiles map[string]bool) { profiles[account.Profile] = true })
}

func (k *KeyringStore) Retrieve(profile string) (*Account, error) {
	if profile == "" {
		return nil, ErrInvalidCredentials
	}

	data, err := keyring.Get(keyringService, keyringPrefix+profile)
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return nil, ErrCredentialsNotFound
	case err != nil:
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var account Account
	if err := json.Unmarshal([]byte(data), &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	return &account, nil
}

// List returns the indexed profiles that still resolve, sorted by name.
// Entries written before the index existed are found only under the default profile.
func (k *KeyringStore) List() ([]*Account, error) {
	profiles, err := k.readIndex()
	if err != nil {
		return nil, err
	}
	profiles[DefaultProfile] = true

	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	accounts := []*Account{}
	for _, name := range names {
		if account, err := k.Retrieve(name); err == nil {
			accounts = append(accounts, account)
		}
	}
	return accounts, nil
}

func (k *KeyringStore) Delete(profile string) error {
	if profile == "" {
		return ErrInvalidCredentials
	}

	err := keyring.Delete(keyringService, keyringPrefix+profile)
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return ErrCredentialsNotFound
	case err != nil:
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}

	return k.updateIndex(func(profiles map[string]bool) { delete(profiles, profile) })
}

func (k *KeyringStore) Exists(profile string) bool {
	if profile == "" {
		return false
	}
	_, err := keyring.Get(keyringService, keyringPrefix+profile)
	return err == nil
}

func (k *KeyringStore) readIndex() (map[string]bool, error) {
	profiles := map[string]bool{}

	data, err := keyring.Get(keyringService, keyringIndexKey)
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return profiles, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read keyring index: %w", err)
	}

	var names []string
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		// a corrupt index only hides profiles from List
		return profiles, nil
	}
	for _, name := range names {
		profiles[name] = true
	}
	return profiles, nil
}

func (k *KeyringStore) updateIndex(fn func(map[string]bool)) error {
	profiles, err := k.readIndex()
	if err != nil {
		return err
	}
	fn(profiles)

	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	data, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("failed to marshal keyring index: %w", err)
	}
	if err := keyring.Set(keyringService, keyringIndexKey, string(data)); err != nil {
		return fmt.Errorf("failed to update keyring index: %w", err)
	}
	return nil
}
