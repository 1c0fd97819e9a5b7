package workflows

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/PolarWolf314/gitenc/internal/audit"
	"github.com/PolarWolf314/gitenc/internal/configs"
	kerrors "github.com/PolarWolf314/gitenc/internal/errors"
	"github.com/PolarWolf314/gitenc/internal/secrets"
)

// AddOptions configures the add workflow.
type AddOptions struct {
	// Path is the file, directory or wildcard to declare, relative to the
	// working directory or absolute.
	Path string
}

// AddResult contains the outcome of an add operation.
type AddResult struct {
	// Entry is the marker entry, relative to the repository root.
	Entry string

	// IgnoreFile is the ignore file that was edited.
	IgnoreFile string

	// Added is false when the entry was already declared.
	Added bool
}

// Add declares a path for encryption in the repository's root ignore file.
//
// Returns ErrOutsideRepository if the path is not inside the repository.
func Add(ctx context.Context, settings *configs.Settings, opts AddOptions) (*AddResult, error) {
	if strings.TrimSpace(opts.Path) == "" {
		return nil, fmt.Errorf("no path given")
	}

	abs, err := filepath.Abs(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", opts.Path, err)
	}

	rel, err := filepath.Rel(settings.RepoRoot, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrOutsideRepository, opts.Path)
	}

	result := &AddResult{
		Entry:      filepath.ToSlash(rel),
		IgnoreFile: settings.RootIgnoreFile(),
	}

	result.Added, err = secrets.AddMarkerEntry(result.IgnoreFile, result.Entry)
	if err != nil {
		return nil, err
	}

	if result.Added {
		entry := audit.NewEntry("add")
		entry.Entry = result.Entry
		audit.Log(settings.AuditPath, entry)
	}

	return result, nil
}
