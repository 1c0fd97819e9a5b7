package workflows

import (
	"context"
	"errors"
	"os"
	"sort"

	"github.com/PolarWolf314/gitenc/internal/configs"
	kerrors "github.com/PolarWolf314/gitenc/internal/errors"
	"github.com/PolarWolf314/gitenc/internal/secrets"
)

// FileStatus represents the encryption status of a declared file.
type FileStatus string

const (
	// StatusCurrent means the envelope holds the current plaintext.
	StatusCurrent FileStatus = "current"
	// StatusStale means the plaintext changed since it was encrypted.
	StatusStale FileStatus = "stale"
	// StatusUnencrypted means plaintext exists with no envelope.
	StatusUnencrypted FileStatus = "unencrypted"
	// StatusEncryptedOnly means an envelope exists with no plaintext.
	StatusEncryptedOnly FileStatus = "encrypted_only"
	// StatusTampered means the envelope tag does not verify.
	StatusTampered FileStatus = "tampered"
	// StatusMalformed means the envelope is not ciphertext#iv#tag.
	StatusMalformed FileStatus = "malformed"
)

// FileStatusInfo holds information about a file's encryption status.
type FileStatusInfo struct {
	// Path is the path of the plaintext file relative to the repository root.
	Path string `json:"path"`

	// Status is the encryption status of the file.
	Status FileStatus `json:"status"`

	// PlaintextMtime is the modification time of the plaintext file (if any).
	PlaintextMtime string `json:"plaintext_mtime,omitempty"`

	// EncryptedMtime is the modification time of the envelope (if any).
	EncryptedMtime string `json:"encrypted_mtime,omitempty"`
}

// StatusSummary holds counts of files by status.
type StatusSummary struct {
	Current       int `json:"current"`
	Stale         int `json:"stale"`
	Unencrypted   int `json:"unencrypted"`
	EncryptedOnly int `json:"encrypted_only"`
	Tampered      int `json:"tampered"`
	Malformed     int `json:"malformed"`
}

// StatusOptions configures the status workflow.
type StatusOptions struct {
	// Key overrides the stored key.
	Key string
}

// StatusResult contains the outcome of a status operation.
type StatusResult struct {
	// Files contains the status of each declared file, sorted by path.
	Files []FileStatusInfo `json:"files"`

	// Summary contains counts of files by status.
	Summary StatusSummary `json:"summary"`

	// KeyAvailable reports whether content comparison was possible. Without a
	// key, staleness falls back to modification times and tampering cannot
	// be detected.
	KeyAvailable bool `json:"key_available"`

	// Unmatched lists marker entries that matched neither a file nor an envelope.
	Unmatched []string `json:"unmatched,omitempty"`
}

// Status reports, for every declared file, whether its envelope is up to date.
//
// With a key the plaintext is re-encrypted with the envelope's IV and compared
// to the stored ciphertext. Without one, modification times are compared.
//
// Returns ErrNoIgnoreFile if the repository has no ignore file.
func Status(ctx context.Context, settings *configs.Settings, opts StatusOptions) (*StatusResult, error) {
	key, _, err := resolveKey(settings, opts.Key, nil, false)
	if err != nil && !errors.Is(err, kerrors.ErrKeyNotFound) {
		return nil, err
	}

	plain, err := resolveTargets(settings, true)
	if err != nil && !errors.Is(err, kerrors.ErrNoFilesFound) {
		return nil, err
	}
	encrypted, err := resolveTargets(settings, false)
	if err != nil && !errors.Is(err, kerrors.ErrNoFilesFound) {
		return nil, err
	}

	paths := make(map[string]bool)
	for _, p := range plain.Paths {
		paths[p.Path] = true
	}
	for _, p := range encrypted.Paths {
		paths[p.Path] = true
	}

	result := &StatusResult{
		Files:        []FileStatusInfo{},
		KeyAvailable: key != "",
		Unmatched:    bothUnmatched(plain.Unmatched, encrypted.Unmatched),
	}

	for path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info := determineFileStatus(path, settings.EncryptedPath(path), key)
		info.Path = settings.Rel(path)
		result.Files = append(result.Files, info)
	}

	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].Path < result.Files[j].Path
	})
	result.Summary = calculateStatusSummary(result.Files)

	return result, nil
}

// determineFileStatus determines the encryption status of one file.
func determineFileStatus(path, encryptedPath, key string) FileStatusInfo {
	var info FileStatusInfo

	plainInfo, plainErr := os.Stat(path)
	encInfo, encErr := os.Stat(encryptedPath)
	plainExists := plainErr == nil
	encExists := encErr == nil

	if plainExists {
		info.PlaintextMtime = plainInfo.ModTime().Format("2006-01-02T15:04:05Z07:00")
	}
	if encExists {
		info.EncryptedMtime = encInfo.ModTime().Format("2006-01-02T15:04:05Z07:00")
	}

	if !encExists {
		info.Status = StatusUnencrypted
		return info
	}

	data, err := os.ReadFile(encryptedPath)
	if err != nil {
		info.Status = StatusMalformed
		return info
	}
	envelope, err := secrets.ParseEnvelope(string(data), key)
	if err != nil {
		info.Status = StatusMalformed
		return info
	}
	if key != "" && !envelope.Valid {
		info.Status = StatusTampered
		return info
	}

	if !plainExists {
		info.Status = StatusEncryptedOnly
		return info
	}

	if key == "" {
		if encInfo.ModTime().Before(plainInfo.ModTime()) {
			info.Status = StatusStale
		} else {
			info.Status = StatusCurrent
		}
		return info
	}

	plaintext, err := os.ReadFile(path)
	if err != nil {
		info.Status = StatusStale
		return info
	}
	ciphertext, err := secrets.Encrypt(plaintext, key, envelope.IV)
	switch {
	case errors.Is(err, kerrors.ErrInvalidIVLength):
		info.Status = StatusMalformed
	case err != nil || ciphertext != envelope.Ciphertext:
		info.Status = StatusStale
	default:
		info.Status = StatusCurrent
	}
	return info
}

// bothUnmatched returns entries that matched nothing in either direction.
func bothUnmatched(plain, encrypted []string) []string {
	inEncrypted := make(map[string]bool, len(encrypted))
	for _, e := range encrypted {
		inEncrypted[e] = true
	}
	var out []string
	for _, p := range plain {
		if inEncrypted[p] {
			out = append(out, p)
		}
	}
	return out
}

// calculateStatusSummary calculates the counts of files by status.
func calculateStatusSummary(files []FileStatusInfo) StatusSummary {
	var summary StatusSummary
	for _, file := range files {
		switch file.Status {
		case StatusCurrent:
			summary.Current++
		case StatusStale:
			summary.Stale++
		case StatusUnencrypted:
			summary.Unencrypted++
		case StatusEncryptedOnly:
			summary.EncryptedOnly++
		case StatusTampered:
			summary.Tampered++
		case StatusMalformed:
			summary.Malformed++
		}
	}
	return summary
}
