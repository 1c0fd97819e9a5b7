// Package errors provides typed error values for gitenc.
//
// Using sentinel errors allows callers to handle specific error conditions
// with errors.Is() rather than string matching.
//
// # Error Categories
//
//   - Configuration errors: a global precondition is missing (ErrNotGitRepository,
//     ErrNoIgnoreFile, ErrKeyNotFound). These abort the whole command.
//   - Integrity errors: a stored envelope cannot be trusted (ErrEnvelopeTampered,
//     ErrMalformedEnvelope). These skip a single file.
//   - Crypto errors: encryption or decryption failed (ErrDecryptFailed). These
//     fail a single file.
//   - File errors: discovery or I/O problems (ErrNoFilesFound, ErrFileAccess).
//
// # Usage
//
// Per-file errors are wrapped so the CLI can pick a message for each class:
//
//	return fmt.Errorf("%w: reading %s: %v", kerrors.ErrFileAccess, path, err)
//
//	if errors.Is(res.Err, kerrors.ErrEnvelopeTampered) {
//	    // warn and move on
//	}
package errors
