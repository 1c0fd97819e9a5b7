package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kerrors "github.com/PolarWolf314/gitenc/internal/errors"
)

// KeyFileName is the name of the key file inside the secrets directory.
const KeyFileName = "key"

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(message string, defaultYes bool) (bool, error)
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(message string, defaultYes bool) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(message string, defaultYes bool) (bool, error) {
	return f(message, defaultYes)
}

// Ask asks c the question. A nil Confirmer declines.
func Ask(c Confirmer, message string, defaultYes bool) (bool, error) {
	if c == nil {
		return false, nil
	}
	return c.Confirm(message, defaultYes)
}

// KeyStore persists the repository key in a directory that is never committed.
type KeyStore struct {
	dir string
}

// NewKeyStore returns a KeyStore rooted at dir, normally <git-dir>/secrets.
func NewKeyStore(dir string) *KeyStore {
	return &KeyStore{dir: dir}
}

// Path returns the location of the key file.
func (s *KeyStore) Path() string {
	return filepath.Join(s.dir, KeyFileName)
}

// Exists reports whether a key file is present.
func (s *KeyStore) Exists() bool {
	info, err := os.Stat(s.Path())
	return err == nil && !info.IsDir()
}

// Load returns the stored key. It returns ErrKeyNotFound when no key is stored.
func (s *KeyStore) Load() (string, error) {
	data, err := os.ReadFile(s.Path())
	if os.IsNotExist(err) {
		return "", kerrors.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read key at %s: %w", s.Path(), err)
	}

	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("%w: %s is empty", kerrors.ErrKeyNotFound, s.Path())
	}
	return key, nil
}

// Store writes key, creating the secrets directory if needed.
func (s *KeyStore) Store(key string) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.dir, err)
	}
	if err := os.WriteFile(s.Path(), []byte(key), 0600); err != nil {
		return fmt.Errorf("failed to write key to %s: %w", s.Path(), err)
	}
	return nil
}

// StoreResult describes what SafeStore did.
type StoreResult struct {
	// Stored is true when key was written.
	Stored bool

	// Replaced is true when a different key existed and was overwritten.
	Replaced bool

	// Declined is true when the user chose to keep the existing key.
	Declined bool

	// Existing is the key that was stored before the call, if any.
	Existing string
}

// SafeStore stores key, asking for confirmation before replacing a different
// existing key. On decline the existing key is left in place.
func (s *KeyStore) SafeStore(key string, c Confirmer) (*StoreResult, error) {
	if !s.Exists() {
		if err := s.Store(key); err != nil {
			return nil, err
		}
		return &StoreResult{Stored: true}, nil
	}

	existing, err := s.Load()
	if err != nil && !errors.Is(err, kerrors.ErrKeyNotFound) {
		return nil, err
	}
	result := &StoreResult{Existing: existing}

	if existing == key {
		return result, nil
	}

	replace, err := Ask(c, "Found existing key, replace?", false)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm key replacement: %w", err)
	}
	if !replace {
		result.Declined = true
		return result, nil
	}

	if err := s.Store(key); err != nil {
		return nil, err
	}
	result.Stored = true
	result.Replaced = existing != ""
	return result, nil
}
