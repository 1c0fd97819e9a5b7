package workflows

import (
	"context"
	"fmt"
	"os"

	"github.com/PolarWolf314/gitenc/internal/audit"
	"github.com/PolarWolf314/gitenc/internal/configs"
	kerrors "github.com/PolarWolf314/gitenc/internal/errors"
	"github.com/PolarWolf314/gitenc/internal/secrets"
)

// EncryptOptions configures the encrypt workflow.
type EncryptOptions struct {
	// Key overrides the stored key. It is not persisted.
	Key string

	// Confirmer is asked whether to generate a key when none exists.
	// A nil Confirmer declines.
	Confirmer secrets.Confirmer

	// Stage adds the envelopes to the git index after writing them.
	Stage bool

	// DryRun lists the files that would be encrypted without reading a key
	// or writing anything.
	DryRun bool

	// Progress, when set, is called with each file as it enters FileProcessing.
	Progress func(FileResult)
}

// EncryptResult contains the outcome of an encrypt operation.
type EncryptResult struct {
	// Files holds one result per resolved plaintext path, in resolution order.
	Files FileResults

	// Written lists the envelopes that were created or updated.
	Written []string

	// Staged lists the envelopes added to the git index.
	Staged []string

	// SkippedDirectories lists directory entries that were not expanded.
	SkippedDirectories []string

	// Unmatched lists marker entries that matched no file.
	Unmatched []string

	// KeyGenerated is true when a new key was created for this run.
	KeyGenerated bool

	// KeyFingerprint identifies the key used.
	KeyFingerprint string

	// DryRun indicates whether this was a dry-run (no files modified).
	DryRun bool
}

// Encrypt encrypts every file declared in a marker region and writes its
// envelope next to it.
//
// When an envelope already exists its IV is reused so that unchanged content
// produces a byte-identical envelope, which is then not rewritten. The IV is
// taken from the envelope even if its tag does not verify.
//
// Per-file problems are recorded in the result and never stop the batch.
//
// Returns ErrKeyNotFound if no key is available and none was generated.
// Returns ErrNoIgnoreFile if the repository has no ignore file.
// Returns ErrNoFilesFound if no marker entry matches a file.
func Encrypt(ctx context.Context, settings *configs.Settings, opts EncryptOptions) (*EncryptResult, error) {
	result := &EncryptResult{DryRun: opts.DryRun}

	// Targets are resolved before a key can be generated.
	res, err := resolveTargets(settings, true)
	if res != nil {
		result.SkippedDirectories = res.SkippedDirectories
		result.Unmatched = res.Unmatched
	}
	if err != nil {
		return result, err
	}

	var key string
	if !opts.DryRun {
		k, generated, err := resolveKey(settings, opts.Key, opts.Confirmer, true)
		if err != nil {
			return nil, err
		}
		key = k
		result.KeyGenerated = generated
		result.KeyFingerprint = secrets.KeyFingerprint(key)
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
		if !opts.DryRun {
			file.State = FileProcessing
			if opts.Progress != nil {
				opts.Progress(file)
			}
			file.State, file.Err = encryptFile(file.Path, file.EncryptedPath, key)
			if file.State == FileDone {
				result.Written = append(result.Written, file.EncryptedPath)
			}
		}
		result.Files = append(result.Files, file)
	}

	if opts.DryRun {
		return result, nil
	}

	if opts.Stage {
		var toStage []string
		for _, f := range result.Files {
			if f.State == FileDone || f.State == FileUnchanged {
				toStage = append(toStage, f.EncryptedPath)
			}
		}
		if len(toStage) > 0 {
			if err := settings.Repository().Stage(toStage); err != nil {
				return result, err
			}
			result.Staged = toStage
		}
	}

	entry := audit.NewEntry("encrypt")
	entry.Files = relPaths(settings, result.Written)
	entry.SkippedCount = result.Files.Count(FileSkipped)
	entry.FailedCount = result.Files.Count(FileFailed)
	entry.KeyFingerprint = result.KeyFingerprint
	audit.Log(settings.AuditPath, entry)

	return result, nil
}

// encryptFile encrypts path into encryptedPath.
func encryptFile(path, encryptedPath, key string) (FileState, error) {
	plaintext, err := os.ReadFile(path)
	if err != nil {
		return FileFailed, fmt.Errorf("%w: %v", kerrors.ErrFileAccess, err)
	}

	existing, err := os.ReadFile(encryptedPath)
	if err != nil && !os.IsNotExist(err) {
		return FileFailed, fmt.Errorf("%w: %v", kerrors.ErrFileAccess, err)
	}

	iv := reusableIV(existing, key)
	if iv == "" {
		if iv, err = secrets.GenerateIV(); err != nil {
			return FileFailed, fmt.Errorf("%w: %v", kerrors.ErrEncryptFailed, err)
		}
	}

	ciphertext, err := secrets.Encrypt(plaintext, key, iv)
	if err != nil {
		return FileFailed, fmt.Errorf("%w: %v", kerrors.ErrEncryptFailed, err)
	}

	envelope := secrets.CombineEnvelope(ciphertext, iv, key)
	if existing != nil && string(existing) == envelope {
		return FileUnchanged, nil
	}

	// #nosec G306 -- envelopes are committed to the repository
	if err := os.WriteFile(encryptedPath, []byte(envelope), 0644); err != nil {
		return FileFailed, fmt.Errorf("%w: %v", kerrors.ErrFileAccess, err)
	}
	return FileDone, nil
}

// reusableIV returns the IV of an existing envelope, or "" when there is none
// or it cannot be used.
func reusableIV(existing []byte, key string) string {
	if len(existing) == 0 {
		return ""
	}
	parsed, err := secrets.ParseEnvelope(string(existing), key)
	if err != nil {
		return ""
	}
	if secrets.ValidateIV(parsed.IV) != nil {
		return ""
	}
	return parsed.IV
}
