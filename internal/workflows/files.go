package workflows

import (
	"github.com/PolarWolf314/gitenc/internal/configs"
	kerrors "github.com/PolarWolf314/gitenc/internal/errors"
	"github.com/PolarWolf314/gitenc/internal/secrets"
)

// FileState is the lifecycle of one file inside an encrypt or decrypt batch.
type FileState int

const (
	// FilePending means the file has been resolved but not processed.
	FilePending FileState = iota
	// FileProcessing means the file is being read, transformed or written.
	FileProcessing
	// FileDone means the output file was written.
	FileDone
	// FileUnchanged means the output already had the expected content.
	FileUnchanged
	// FileFailed means an error prevented processing. The batch continued.
	FileFailed
	// FileSkipped means the input could not be trusted and was left alone.
	FileSkipped
)

func (s FileState) String() string {
	switch s {
	case FilePending:
		return "pending"
	case FileProcessing:
		return "processing"
	case FileDone:
		return "done"
	case FileUnchanged:
		return "unchanged"
	case FileFailed:
		return "failed"
	case FileSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// FileResult is the outcome for a single resolved path.
type FileResult struct {
	// Path is the absolute plaintext path.
	Path string

	// EncryptedPath is the absolute path of the envelope.
	EncryptedPath string

	// State is the final state of the file.
	State FileState

	// Err explains FileFailed and FileSkipped. It wraps a sentinel from
	// internal/errors so callers can tell the reason class apart.
	Err error
}

// FileResults is the ordered outcome of a batch.
type FileResults []FileResult

// Count returns how many files ended in state.
func (r FileResults) Count(state FileState) int {
	n := 0
	for _, f := range r {
		if f.State == state {
			n++
		}
	}
	return n
}

// Problems returns the failed and skipped files.
func (r FileResults) Problems() FileResults {
	var out FileResults
	for _, f := range r {
		if f.State == FileFailed || f.State == FileSkipped {
			out = append(out, f)
		}
	}
	return out
}

// resolveTargets finds every ignore file in the repository and resolves its
// marker entries in one direction.
//
// Returns ErrNoIgnoreFile if the repository has no ignore file.
// Returns ErrNoFilesFound if no entry matched a file. Entries pointing outside
// the repository are reported as unmatched.
func resolveTargets(settings *configs.Settings, forEncryption bool) (*secrets.Resolution, error) {
	ignoreFiles, err := settings.IgnoreFiles()
	if err != nil {
		return nil, err
	}
	if len(ignoreFiles) == 0 {
		return nil, kerrors.ErrNoIgnoreFile
	}

	opts := settings.Config.ResolveOptions(forEncryption)
	opts.Root = settings.RepoRoot

	res, err := secrets.ResolveIgnoreFiles(ignoreFiles, opts)
	if err != nil {
		return nil, err
	}
	if len(res.Paths) == 0 {
		return res, kerrors.ErrNoFilesFound
	}
	return res, nil
}

func relPaths(settings *configs.Settings, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = settings.Rel(p)
	}
	return out
}
