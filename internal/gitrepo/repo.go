package gitrepo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	kerrors "github.com/PolarWolf314/gitenc/internal/errors"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/index"
)

// IndexFileEnvVar is set by git while hooks run. It names the index the
// commit is built from, which is not .git/index for "git commit -a".
const IndexFileEnvVar = "GIT_INDEX_FILE"

// Repository locates the working tree and git directory of a repository.
type Repository struct {
	// Root is the absolute path of the working tree.
	Root string

	// GitDir is the absolute path of the .git directory.
	GitDir string

	repo *git.Repository
}

// Discover finds the repository containing start, walking up parent directories.
// It returns ErrNotGitRepository when there is none.
func Discover(start string) (*Repository, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", start, err)
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, kerrors.ErrNotGitRepository
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", abs, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrNotGitRepository, err)
	}
	root := wt.Filesystem.Root()

	gitDir := filepath.Join(root, ".git")
	if info, err := os.Stat(gitDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", kerrors.ErrNotGitRepository, gitDir)
	}

	return &Repository{Root: root, GitDir: gitDir, repo: repo}, nil
}

// Stage adds the given absolute paths to the index. Inside a git hook the
// index named by GIT_INDEX_FILE is updated instead of .git/index.
func (r *Repository) Stage(paths []string) error {
	if indexFile := os.Getenv(IndexFileEnvVar); indexFile != "" {
		return r.stageInto(indexFile, paths)
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open worktree: %w", err)
	}

	for _, p := range paths {
		rel, err := filepath.Rel(r.Root, p)
		if err != nil {
			return fmt.Errorf("failed to relativize %s: %w", p, err)
		}
		if _, err := wt.Add(filepath.ToSlash(rel)); err != nil {
			return fmt.Errorf("failed to stage %s: %w", rel, err)
		}
	}
	return nil
}

// stageInto writes blobs for paths and records them in the index file at
// indexFile. A relative indexFile is resolved against the working directory.
func (r *Repository) stageInto(indexFile string, paths []string) error {
	indexFile, err := filepath.Abs(indexFile)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", IndexFileEnvVar, err)
	}

	idx, err := readIndex(indexFile)
	if err != nil {
		return err
	}

	for _, p := range paths {
		rel, err := filepath.Rel(r.Root, p)
		if err != nil {
			return fmt.Errorf("failed to relativize %s: %w", p, err)
		}
		if err := r.addToIndex(idx, p, filepath.ToSlash(rel)); err != nil {
			return fmt.Errorf("failed to stage %s: %w", rel, err)
		}
	}

	// The cached tree no longer matches the entries.
	idx.Cache = nil

	f, err := os.Create(indexFile)
	if err != nil {
		return fmt.Errorf("failed to write index %s: %w", indexFile, err)
	}
	if err := index.NewEncoder(f).Encode(idx); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode index %s: %w", indexFile, err)
	}
	return f.Close()
}

func readIndex(path string) (*index.Index, error) {
	idx := &index.Index{Version: 2}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open index %s: %w", path, err)
	}
	defer f.Close()

	if err := index.NewDecoder(f).Decode(idx); err != nil {
		return nil, fmt.Errorf("failed to decode index %s: %w", path, err)
	}
	return idx, nil
}

// addToIndex stores the content of path as a blob and points the entry for
// name at it.
func (r *Repository) addToIndex(idx *index.Index, path, name string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	obj := r.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))
	w, err := obj.Writer()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	hash, err := r.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return err
	}

	entry, err := idx.Entry(name)
	if errors.Is(err, index.ErrEntryNotFound) {
		entry = idx.Add(name)
	} else if err != nil {
		return err
	}

	entry.Hash = hash
	entry.Mode = filemode.Regular
	if info.Mode()&0111 != 0 {
		entry.Mode = filemode.Executable
	}
	entry.ModifiedAt = info.ModTime()
	entry.Size = uint32(info.Size())
	return nil
}
