package auth

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

// memStore is an in-memory CredentialStore with error injection
type memStore struct {
	mu       sync.Mutex
	accounts map[string]Account
	storeErr error
}

func newMemStore() *memStore {
	return &memStore{accounts: make(map[string]Account)}
}

func (m *memStore) Store(a *Account) error {
	if m.storeErr != nil {
		return m.storeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.Profile] = *a
	return nil
}

func (m *memStore) Retrieve(profile string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[profile]
	if !ok {
		return nil, ErrCredentialsNotFound
	}
	return &a, nil
}

func (m *memStore) List() ([]*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		acc := a
		out = append(out, &acc)
	}
	return out, nil
}

func (m *memStore) Delete(profile string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[profile]; !ok {
		return ErrCredentialsNotFound
	}
	delete(m.accounts, profile)
	return nil
}

func (m *memStore) Exists(profile string) bool {
	_, err := m.Retrieve(profile)
	return err == nil
}

func TestManagerStoreRetrieveDelete(t *testing.T) {
	t.Setenv(envSessionID, "")
	store := newMemStore()
	m := NewManagerWithStores(store)

	require.NoError(t, m.Store(&Account{Username: "alice", SessionID: "123%3Aabc%3A28"}))

	got, err := m.Retrieve("")
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile, got.Profile)
	assert.Equal(t, "123%3Aabc%3A28", got.SessionID)
	assert.False(t, got.LastModified.IsZero())

	require.NoError(t, m.Delete(DefaultProfile))
	_, err = m.Retrieve(DefaultProfile)
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	err = m.Delete(DefaultProfile)
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestManagerRequiresSession(t *testing.T) {
	m := NewManagerWithStores(newMemStore())
	assert.ErrorIs(t, m.Store(&Account{Username: "alice"}), ErrInvalidCredentials)
	assert.ErrorIs(t, m.Store(nil), ErrInvalidCredentials)
}

func TestManagerFallsBackToNextStore(t *testing.T) {
	broken := newMemStore()
	broken.storeErr = errors.New("keychain locked")
	backup := newMemStore()
	m := NewManagerWithStores(broken, backup)

	require.NoError(t, m.Store(&Account{Profile: "work", SessionID: "sess-work-0001"}))
	assert.True(t, backup.Exists("work"))
	assert.False(t, broken.Exists("work"))

	got, err := m.Retrieve("work")
	require.NoError(t, err)
	assert.Equal(t, "sess-work-0001", got.SessionID)
}

func TestManagerAllStoresFail(t *testing.T) {
	broken := newMemStore()
	broken.storeErr = errors.New("disk full")
	m := NewManagerWithStores(broken)

	err := m.Store(&Account{SessionID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	assert.ErrorIs(t, NewManagerWithStores().Store(&Account{SessionID: "x"}), ErrStoreUnavailable)
}

func TestManagerRetrieveDefaultPrefersEnvironment(t *testing.T) {
	store := newMemStore()
	m := NewManagerWithStores(store, NewEnvironmentStore())
	require.NoError(t, m.Store(&Account{SessionID: "stored-session"}))

	t.Setenv(envSessionID, "")
	got, err := m.RetrieveDefault()
	require.NoError(t, err)
	assert.Equal(t, "stored-session", got.SessionID)

	t.Setenv(envSessionID, "env-session")
	got, err = m.RetrieveDefault()
	require.NoError(t, err)
	assert.Equal(t, "env-session", got.SessionID)
}

func TestManagerRetrieveDefaultFallsBackToAnyProfile(t *testing.T) {
	t.Setenv(envSessionID, "")
	store := newMemStore()
	m := NewManagerWithStores(store)

	_, err := m.RetrieveDefault()
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	require.NoError(t, m.Store(&Account{Profile: "work", SessionID: "work-session"}))
	got, err := m.RetrieveDefault()
	require.NoError(t, err)
	assert.Equal(t, "work", got.Profile)
}

func TestManagerListKeepsNewest(t *testing.T) {
	a, b := newMemStore(), newMemStore()
	m := NewManagerWithStores(a, b)

	require.NoError(t, m.Store(&Account{SessionID: "old"}))
	require.NoError(t, b.Store(&Account{Profile: DefaultProfile, SessionID: "new", LastModified: a.accounts[DefaultProfile].LastModified.Add(1)}))

	accounts, err := m.List()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "new", accounts[0].SessionID)
}

func TestEncryptedFileStore(t *testing.T) {
	t.Setenv(envPassphrase, "correct horse battery staple")
	path := filepath.Join(t.TempDir(), "creds", "credentials.enc")

	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Store(&Account{Profile: DefaultProfile, Username: "alice", SessionID: "secret-session-id"}))
	require.NoError(t, store.Store(&Account{Profile: "work", SessionID: "work-session-id"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-session-id")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := store.Retrieve(DefaultProfile)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.True(t, store.Exists("work"))

	accounts, err := store.List()
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	require.NoError(t, store.Delete("work"))
	require.NoError(t, store.Delete(DefaultProfile))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	_, err = store.Retrieve(DefaultProfile)
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestEncryptedFileStoreWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.enc")

	t.Setenv(envPassphrase, "first")
	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Store(&Account{Profile: DefaultProfile, SessionID: "s"}))

	t.Setenv(envPassphrase, "second")
	other, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	_, err = other.Retrieve(DefaultProfile)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCredentialsNotFound)
}

func TestEncryptedFileStoreGeneratesPassphrase(t *testing.T) {
	t.Setenv(envPassphrase, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.enc")

	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Store(&Account{Profile: DefaultProfile, SessionID: "s"}))

	pass, err := os.ReadFile(filepath.Join(dir, ".passphrase"))
	require.NoError(t, err)
	assert.NotEmpty(t, pass)

	reopened, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	got, err := reopened.Retrieve(DefaultProfile)
	require.NoError(t, err)
	assert.Equal(t, "s", got.SessionID)
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore()
	require.NoError(t, err)

	_, err = store.Retrieve(DefaultProfile)
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	require.NoError(t, store.Store(&Account{Profile: DefaultProfile, SessionID: "kc-session"}))
	assert.True(t, store.Exists(DefaultProfile))

	require.NoError(t, store.Store(&Account{Profile: "work", SessionID: "kc-work"}))

	accounts, err := store.List()
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, DefaultProfile, accounts[0].Profile)
	assert.Equal(t, "kc-work", accounts[1].SessionID)

	require.NoError(t, store.Delete("work"))
	accounts, err = store.List()
	require.NoError(t, err)
	assert.Len(t, accounts, 1)

	require.NoError(t, store.Delete(DefaultProfile))
	assert.ErrorIs(t, store.Delete(DefaultProfile), ErrCredentialsNotFound)
	assert.ErrorIs(t, store.Store(&Account{}), ErrInvalidCredentials)
}

func TestEnvironmentStore(t *testing.T) {
	store := NewEnvironmentStore()

	t.Setenv(envSessionID, "")
	assert.False(t, store.Exists(""))
	_, err := store.Retrieve("")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	t.Setenv(envSessionID, "env-session")
	t.Setenv(envUsername, "alice")
	got, err := store.Retrieve("")
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile, got.Profile)
	assert.Equal(t, "alice", got.Username)

	assert.ErrorIs(t, store.Store(got), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Delete(""), ErrStoreUnavailable)
}

func TestSanitizeAccount(t *testing.T) {
	a := &Account{Profile: DefaultProfile, Username: "alice", SessionID: "1234567890abcdef"}
	s := SanitizeAccount(a)
	assert.Equal(t, "1234...cdef", s.SessionID)
	assert.Equal(t, "alice", s.Username)
	assert.Equal(t, "1234567890abcdef", a.SessionID)

	assert.Equal(t, "********", MaskString("short"))
	assert.Nil(t, SanitizeAccount(nil))
}

func TestShowSessionGuide(t *testing.T) {
	var buf bytes.Buffer
	ShowSessionGuide(&buf)
	assert.Contains(t, buf.String(), "sessionid")

	buf.Reset()
	ShowQuickGuide(&buf)
	assert.Contains(t, buf.String(), "sessionid")
}
