package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/PolarWolf314/gitenc/internal/audit"
	"github.com/PolarWolf314/gitenc/internal/configs"
	kerrors "github.com/PolarWolf314/gitenc/internal/errors"
	"github.com/PolarWolf314/gitenc/internal/secrets"
)

// GeneratePrompt is asked before a key is generated for a repository without one.
const GeneratePrompt = "No existing key, want to generate one?"

// KeyOptions configures the key workflow.
type KeyOptions struct {
	// Key stores this key when set. Otherwise the stored key is shown.
	Key string

	// Confirmer is asked before replacing a different stored key.
	Confirmer secrets.Confirmer
}

// KeyResult contains the outcome of a key operation.
type KeyResult struct {
	// Key is the key now in effect.
	Key string

	// Fingerprint identifies Key without revealing it.
	Fingerprint string

	// Path is the location of the key file.
	Path string

	// Store is set when a key was supplied.
	Store *secrets.StoreResult
}

// Key shows the stored key or stores a supplied one.
//
// Returns ErrInvalidKeyLength if the supplied key is not a base64 256-bit value.
// Returns ErrKeyNotFound if no key is supplied and none is stored.
func Key(ctx context.Context, settings *configs.Settings, opts KeyOptions) (*KeyResult, error) {
	store := settings.KeyStore()
	result := &KeyResult{Path: store.Path()}

	if opts.Key == "" {
		key, err := loadStoredKey(store)
		if err != nil {
			return nil, err
		}
		result.Key = key
		result.Fingerprint = secrets.KeyFingerprint(key)
		return result, nil
	}

	if err := secrets.ValidateKey(opts.Key); err != nil {
		return nil, err
	}

	stored, err := store.SafeStore(opts.Key, opts.Confirmer)
	if err != nil {
		return nil, err
	}
	result.Store = stored
	result.Key = opts.Key
	if stored.Declined {
		result.Key = stored.Existing
	}
	result.Fingerprint = secrets.KeyFingerprint(result.Key)

	if stored.Stored {
		entry := audit.NewEntry("key")
		entry.KeyFingerprint = result.Fingerprint
		audit.Log(settings.AuditPath, entry)
	}

	return result, nil
}

// GenerateOptions configures the generate workflow.
type GenerateOptions struct {
	// Store saves the generated key in the repository.
	Store bool

	// Confirmer is asked before replacing a stored key.
	Confirmer secrets.Confirmer
}

// GenerateResult contains the outcome of a generate operation.
type GenerateResult struct {
	// Key is the generated key.
	Key string

	// Fingerprint identifies Key without revealing it.
	Fingerprint string

	// Store is set when Store was requested.
	Store *secrets.StoreResult
}

// Generate creates a new random key and optionally stores it. settings may be
// nil when the key is not stored.
//
// Returns ErrNotGitRepository if Store is set without a repository.
func Generate(ctx context.Context, settings *configs.Settings, opts GenerateOptions) (*GenerateResult, error) {
	key, err := secrets.GenerateKey()
	if err != nil {
		return nil, err
	}
	result := &GenerateResult{Key: key, Fingerprint: secrets.KeyFingerprint(key)}

	if !opts.Store {
		return result, nil
	}
	if settings == nil {
		return nil, kerrors.ErrNotGitRepository
	}

	stored, err := settings.KeyStore().SafeStore(key, opts.Confirmer)
	if err != nil {
		return nil, err
	}
	result.Store = stored

	if stored.Stored {
		entry := audit.NewEntry("generate")
		entry.KeyFingerprint = result.Fingerprint
		audit.Log(settings.AuditPath, entry)
	}

	return result, nil
}

// resolveKey returns the key for a batch: the supplied key wins over the stored
// one. When generate is set and no key exists, the confirmer is asked whether
// to create one. It reports whether a key was generated.
func resolveKey(settings *configs.Settings, supplied string, confirmer secrets.Confirmer, generate bool) (string, bool, error) {
	if supplied != "" {
		if err := secrets.ValidateKey(supplied); err != nil {
			return "", false, err
		}
		return supplied, false, nil
	}

	store := settings.KeyStore()
	key, err := loadStoredKey(store)
	if err == nil {
		return key, false, nil
	}
	if !errors.Is(err, kerrors.ErrKeyNotFound) || !generate {
		return "", false, err
	}

	ok, err := secrets.Ask(confirmer, GeneratePrompt, true)
	if err != nil {
		return "", false, fmt.Errorf("failed to confirm key generation: %w", err)
	}
	if !ok {
		return "", false, kerrors.ErrKeyNotFound
	}

	key, err = secrets.GenerateKey()
	if err != nil {
		return "", false, err
	}
	if _, err := store.SafeStore(key, confirmer); err != nil {
		return "", false, err
	}
	return key, true, nil
}

// loadStoredKey loads and validates the stored key.
func loadStoredKey(store *secrets.KeyStore) (string, error) {
	key, err := store.Load()
	if err != nil {
		return "", err
	}
	if err := secrets.ValidateKey(key); err != nil {
		return "", fmt.Errorf("stored key at %s: %w", store.Path(), err)
	}
	return key, nil
}
