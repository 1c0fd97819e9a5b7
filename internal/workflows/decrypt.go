package workflows

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/PolarWolf314/gitenc/internal/audit"
	"github.com/PolarWolf314/gitenc/internal/configs"
	kerrors "github.com/PolarWolf314/gitenc/internal/errors"
	"github.com/PolarWolf314/gitenc/internal/secrets"
)

// DecryptOptions configures the decrypt workflow.
type DecryptOptions struct {
	// Key overrides the stored key.
	Key string

	// DryRun lists the files that would be decrypted without reading a key
	// or writing anything.
	DryRun bool

	// Progress, when set, is called with each file as it enters FileProcessing.
	Progress func(FileResult)
}

// DecryptResult contains the outcome of a decrypt operation.
type DecryptResult struct {
	// Files holds one result per envelope, in resolution order.
	Files FileResults

	// Written lists the plaintext files that were created or updated.
	Written []string

	// WouldOverwrite lists, for a dry-run, plaintext files that already exist.
	WouldOverwrite []string

	// SkippedDirectories lists directory entries that were not expanded.
	SkippedDirectories []string

	// Unmatched lists marker entries that matched no envelope.
	Unmatched []string

	// KeyFingerprint identifies the key used.
	KeyFingerprint string

	// DryRun indicates whether this was a dry-run (no files modified).
	DryRun bool
}

// Decrypt restores the plaintext of every declared file that has an envelope.
//
// Each envelope's tag is verified before decrypting. Malformed and tampered
// envelopes are skipped and their plaintext is left untouched. A failed
// decryption only fails that file.
//
// Returns ErrKeyNotFound if no key is supplied and none is stored.
// Returns ErrNoIgnoreFile if the repository has no ignore file.
// Returns ErrNoFilesFound if no marker entry matches an envelope.
func Decrypt(ctx context.Context, settings *configs.Settings, opts DecryptOptions) (*DecryptResult, error) {
	result := &DecryptResult{DryRun: opts.DryRun}

	var key string
	if !opts.DryRun {
		k, _, err := resolveKey(settings, opts.Key, nil, false)
		if err != nil {
			return nil, err
		}
		key = k
		result.KeyFingerprint = secrets.KeyFingerprint(key)
	}

	res, err := resolveTargets(settings, false)
	if res != nil {
		result.SkippedDirectories = res.SkippedDirectories
		result.Unmatched = res.Unmatched
	}
	if err != nil {
		return result, err
	}

	for _, target := range res.Paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		file := FileResult{
			Path:          target.Path,
			EncryptedPath: settings.EncryptedPath(target.Path),
			State:         FilePending,
		}

		if opts.DryRun {
			if _, err := os.Stat(file.Path); err == nil {
				result.WouldOverwrite = append(result.WouldOverwrite, file.Path)
			}
		} else {
			file.State = FileProcessing
			if opts.Progress != nil {
				opts.Progress(file)
			}
			file.State, file.Err = decryptFile(file.Path, file.EncryptedPath, key)
			if file.State == FileDone {
				result.Written = append(result.Written, file.Path)
			}
		}
		result.Files = append(result.Files, file)
	}

	if opts.DryRun {
		return result, nil
	}

	entry := audit.NewEntry("decrypt")
	entry.Files = relPaths(settings, result.Written)
	entry.SkippedCount = result.Files.Count(FileSkipped)
	entry.FailedCount = result.Files.Count(FileFailed)
	entry.KeyFingerprint = result.KeyFingerprint
	audit.Log(settings.AuditPath, entry)

	return result, nil
}

// decryptFile verifies and decrypts encryptedPath into path.
func decryptFile(path, encryptedPath, key string) (FileState, error) {
	data, err := os.ReadFile(encryptedPath)
	if err != nil {
		return FileFailed, fmt.Errorf("%w: %v", kerrors.ErrFileAccess, err)
	}

	envelope, err := secrets.ParseEnvelope(string(data), key)
	if err != nil {
		return FileSkipped, err
	}
	if !envelope.Valid {
		return FileSkipped, kerrors.ErrEnvelopeTampered
	}

	plaintext, err := secrets.Decrypt(envelope.Ciphertext, key, envelope.IV)
	if err != nil {
		if !errors.Is(err, kerrors.ErrDecryptFailed) {
			err = fmt.Errorf("%w: %w", kerrors.ErrDecryptFailed, err)
		}
		return FileFailed, err
	}

	if current, err := os.ReadFile(path); err == nil && bytes.Equal(current, plaintext) {
		return FileUnchanged, nil
	}

	// New plaintext files are private to the owner; existing files keep their mode.
	if err := os.WriteFile(path, plaintext, 0600); err != nil {
		return FileFailed, fmt.Errorf("%w: %v", kerrors.ErrFileAccess, err)
	}
	return FileDone, nil
}
