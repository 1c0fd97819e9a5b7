package workflows

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/PolarWolf314/gitenc/internal/audit"
	"github.com/PolarWolf314/gitenc/internal/configs"
	kerrors "github.com/PolarWolf314/gitenc/internal/errors"
	"github.com/PolarWolf314/gitenc/internal/gitrepo"
	"github.com/PolarWolf314/gitenc/internal/secrets"
)

// InitOptions configures the init workflow.
type InitOptions struct {
	// Key is stored as the repository key when set.
	Key string

	// Confirmer is asked before replacing a stored key, or before generating
	// one when none exists.
	Confirmer secrets.Confirmer
}

// InitResult contains the outcome of an init operation.
type InitResult struct {
	// Hooks lists the installed hook scripts.
	Hooks []string

	// ConfigWritten is true when a default .gitenc.toml was created.
	ConfigWritten bool

	// Store is set when a supplied or generated key was offered to the key store.
	Store *secrets.StoreResult

	// KeyGenerated is true when a new key was generated.
	KeyGenerated bool

	// HasKey is true when the repository has a key after init.
	HasKey bool

	// Decrypt is the result of decrypting existing envelopes. It is nil when
	// decryption did not run.
	Decrypt *DecryptResult

	// DecryptErr explains why decryption did not run or did not complete.
	DecryptErr error
}

// Init prepares a repository: it installs the git hooks, writes the default
// configuration when missing, stores or generates the key and decrypts any
// envelopes already present.
//
// Returns ErrInvalidKeyLength if the supplied key is not a base64 256-bit value.
func Init(ctx context.Context, settings *configs.Settings, opts InitOptions) (*InitResult, error) {
	if opts.Key != "" {
		if err := secrets.ValidateKey(opts.Key); err != nil {
			return nil, err
		}
	}

	result := &InitResult{}

	hooks, err := gitrepo.InstallHooks(settings.GitDir)
	if err != nil {
		return nil, err
	}
	result.Hooks = hooks

	if _, err := os.Stat(settings.ConfigPath); os.IsNotExist(err) {
		if err := configs.SaveConfig(settings.ConfigPath, settings.Config); err != nil {
			return nil, err
		}
		result.ConfigWritten = true
	}

	if err := initKey(settings, opts, result); err != nil {
		return nil, err
	}

	entry := audit.NewEntry("init")
	entry.Hooks = relPaths(settings, result.Hooks)
	if result.HasKey {
		key, err := loadStoredKey(settings.KeyStore())
		if err != nil {
			return nil, err
		}
		entry.KeyFingerprint = secrets.KeyFingerprint(key)
	}
	audit.Log(settings.AuditPath, entry)

	if !result.HasKey {
		result.DecryptErr = kerrors.ErrKeyNotFound
		return result, nil
	}

	result.Decrypt, result.DecryptErr = Decrypt(ctx, settings, DecryptOptions{})
	return result, nil
}

func initKey(settings *configs.Settings, opts InitOptions, result *InitResult) error {
	store := settings.KeyStore()

	if opts.Key != "" {
		stored, err := store.SafeStore(opts.Key, opts.Confirmer)
		if err != nil {
			return err
		}
		result.Store = stored
		result.HasKey = true
		return nil
	}

	if store.Exists() {
		result.HasKey = true
		return nil
	}

	ok, err := secrets.Ask(opts.Confirmer, GeneratePrompt, true)
	if err != nil {
		return fmt.Errorf("failed to confirm key generation: %w", err)
	}
	if !ok {
		return nil
	}

	key, err := secrets.GenerateKey()
	if err != nil {
		return err
	}
	stored, err := store.SafeStore(key, opts.Confirmer)
	if err != nil {
		return err
	}
	result.Store = stored
	result.KeyGenerated = true
	result.HasKey = true
	return nil
}

// IsPreconditionError reports whether err is a missing global precondition
// (no key, no ignore file, no files) rather than a real failure.
func IsPreconditionError(err error) bool {
	return errors.Is(err, kerrors.ErrKeyNotFound) ||
		errors.Is(err, kerrors.ErrNoIgnoreFile) ||
		errors.Is(err, kerrors.ErrNoFilesFound)
}
