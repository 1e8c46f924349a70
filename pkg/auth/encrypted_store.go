package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/crypto/pbkdf2"
)

const (
	envPassphrase  = "IGSAVED_PASSPHRASE"
	passphraseFile = ".passphrase"

	vaultVersion = 1
	saltSize     = 32
	keySize      = 32
	iterations   = 100000
)

// vault is the on-disk form of the encrypted store. Sessions holds the
// AES-GCM sealed JSON of the profile map, nonce first.
type vault struct {
	Version  int       `json:"version"`
	Salt     []byte    `json:"salt"`
	Sessions []byte    `json:"sessions"`
	Modified time.Time `json:"modified"`
}

// EncryptedFileStore keeps sessions in an AES-GCM encrypted file. The key is
// derived with PBKDF2 from IGSAVED_PASSPHRASE, or from a random passphrase
// kept in a .passphrase file beside the store.
type EncryptedFileStore struct {
	path       string
	passphrase string
	mu         sync.RWMutex
}

// NewEncryptedFileStore opens the store at path, creating its directory and
// passphrase on first use
func NewEncryptedFileStore(path string) (*EncryptedFileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	passphrase, err := loadPassphrase(filepath.Join(filepath.Dir(path), passphraseFile))
	if err != nil {
		return nil, fmt.Errorf("failed to get passphrase: %w", err)
	}
	return &EncryptedFileStore{path: path, passphrase: passphrase}, nil
}

// Store adds or replaces the session of account.Profile
func (e *EncryptedFileStore) Store(account *Account) error {
	if account == nil || account.Profile == "" {
		return ErrInvalidCredentials
	}
	return e.update(func(sessions map[string]Account) error {
		sessions[account.Profile] = *account
		return nil
	})
}

// Retrieve returns the session stored for profile
func (e *EncryptedFileStore) Retrieve(profile string) (*Account, error) {
	if profile == "" {
		return nil, ErrInvalidCredentials
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	sessions, err := e.read()
	if err != nil {
		return nil, err
	}
	account, ok := sessions[profile]
	if !ok {
		return nil, ErrCredentialsNotFound
	}
	return &account, nil
}

// List returns every stored session
func (e *EncryptedFileStore) List() ([]*Account, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	sessions, err := e.read()
	if err != nil {
		return nil, err
	}
	accounts := make([]*Account, 0, len(sessions))
	for _, account := range sessions {
		account := account
		accounts = append(accounts, &account)
	}
	return accounts, nil
}

// Delete removes profile. The file is removed with the last profile.
func (e *EncryptedFileStore) Delete(profile string) error {
	if profile == "" {
		return ErrInvalidCredentials
	}
	return e.update(func(sessions map[string]Account) error {
		if _, ok := sessions[profile]; !ok {
			return ErrCredentialsNotFound
		}
		delete(sessions, profile)
		return nil
	})
}

// Exists reports whether profile has a stored session
func (e *EncryptedFileStore) Exists(profile string) bool {
	account, err := e.Retrieve(profile)
	return err == nil && account != nil
}

// update applies fn to the decrypted sessions and writes them back
func (e *EncryptedFileStore) update(fn func(map[string]Account) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sessions, err := e.read()
	if err != nil {
		return err
	}
	if err := fn(sessions); err != nil {
		return err
	}
	if len(sessions) == 0 {
		if err := os.Remove(e.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove credentials file: %w", err)
		}
		return nil
	}
	return e.write(sessions)
}

// read decrypts the store. A missing file is an empty store.
func (e *EncryptedFileStore) read() (map[string]Account, error) {
	content, err := os.ReadFile(e.path)
	if os.IsNotExist(err) {
		return make(map[string]Account), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var v vault
	if err := json.Unmarshal(content, &v); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	if v.Version != vaultVersion {
		return nil, fmt.Errorf("unsupported credentials file version %d", v.Version)
	}

	plain, err := open(e.key(v.Salt), v.Sessions)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials (wrong %s?): %w", envPassphrase, err)
	}

	sessions := make(map[string]Account)
	if err := json.Unmarshal(plain, &sessions); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return sessions, nil
}

// write seals sessions under a fresh salt and replaces the file atomically
func (e *EncryptedFileStore) write(sessions map[string]Account) error {
	plain, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	salt, err := randomBytes(saltSize)
	if err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	sealed, err := seal(e.key(salt), plain)
	if err != nil {
		return fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	content, err := json.MarshalIndent(vault{
		Version:  vaultVersion,
		Salt:     salt,
		Sessions: sealed,
		Modified: time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(e.path), ".credentials.*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to protect credentials file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return os.Rename(tmp.Name(), e.path)
}

func (e *EncryptedFileStore) key(salt []byte) []byte {
	return pbkdf2.Key([]byte(e.passphrase), salt, iterations, keySize, sha256.New)
}

// loadPassphrase returns IGSAVED_PASSPHRASE, else the passphrase in path,
// generating and saving one on first use
func loadPassphrase(path string) (string, error) {
	if pass := os.Getenv(envPassphrase); pass != "" {
		return pass, nil
	}
	if content, err := os.ReadFile(path); err == nil && len(content) > 0 {
		return string(content), nil
	}

	b, err := randomBytes(32)
	if err != nil {
		return "", err
	}
	passphrase := fmt.Sprintf("%x", b)
	if err := os.WriteFile(path, []byte(passphrase), 0600); err != nil {
		return "", fmt.Errorf("failed to save passphrase: %w", err)
	}
	return passphrase, nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// seal encrypts plaintext and prefixes the random nonce
func seal(key, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce, err := randomBytes(gcm.NonceSize())
	if err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// open reverses seal
func open(key, sealed []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
