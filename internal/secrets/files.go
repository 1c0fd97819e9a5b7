package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// EntryKind is how a marker entry was interpreted during resolution.
type EntryKind int

const (
	EntryMissing EntryKind = iota
	EntryFile
	EntryDirectory
	EntryWildcard
	EntryGlob
)

func (k EntryKind) String() string {
	switch k {
	case EntryFile:
		return "file"
	case EntryDirectory:
		return "directory"
	case EntryWildcard:
		return "wildcard"
	case EntryGlob:
		return "glob"
	default:
		return "missing"
	}
}

// ResolveOptions controls how marker entries become file paths.
type ResolveOptions struct {
	// ForEncryption resolves plaintext files. When false, entries are matched
	// against their encrypted counterparts and the plaintext paths are returned.
	ForEncryption bool

	// Suffix names encrypted counterparts. Defaults to DefaultSuffix.
	Suffix string

	// ExpandDirectories enumerates directory entries recursively. When false
	// directory entries are skipped and reported.
	ExpandDirectories bool

	// GlobPatterns enables doublestar matching for entries with glob
	// metacharacters other than a single trailing '*'.
	GlobPatterns bool

	// Root confines resolved paths. Entries resolving outside it are reported
	// in Resolution.Outside. Empty disables the check.
	Root string
}

// ResolvedPath is a concrete plaintext file declared by a marker entry.
type ResolvedPath struct {
	// Path is the absolute plaintext path.
	Path string

	// BaseDir is the directory of the declaring ignore file.
	BaseDir string

	// Entry is the raw marker entry.
	Entry string
}

// Resolution is the outcome of resolving every ignore file in a repository.
type Resolution struct {
	// Paths is deduplicated by absolute path, in first-seen order.
	Paths []ResolvedPath

	// SkippedDirectories lists directory entries ignored because
	// ExpandDirectories is off.
	SkippedDirectories []string

	// Unmatched lists entries (joined with their base directory) that matched nothing.
	// Entries that resolved outside Root are listed here too.
	Unmatched []string

	// Outside lists entries (joined with their base directory) that resolved
	// to paths outside Root. Their paths are dropped.
	Outside []string
}

// ResolveIgnoreFiles parses each ignore file and resolves its entries relative
// to the file's own directory.
func ResolveIgnoreFiles(ignoreFiles []string, opts ResolveOptions) (*Resolution, error) {
	res := &Resolution{}
	seen := make(map[string]bool)

	for _, ignoreFile := range ignoreFiles {
		entries, err := ParseMarkerFile(ignoreFile)
		if err != nil {
			return nil, err
		}

		baseDir, err := filepath.Abs(filepath.Dir(ignoreFile))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve directory of %s: %w", ignoreFile, err)
		}

		for _, entry := range entries {
			declared := filepath.Join(baseDir, cleanEntry(entry))
			if !withinRoot(opts.Root, declared) {
				res.Outside = append(res.Outside, declared)
				res.Unmatched = append(res.Unmatched, declared)
				continue
			}

			paths, kind, err := ResolveEntry(entry, baseDir, opts)
			if err != nil {
				return nil, err
			}

			switch {
			case kind == EntryDirectory && !opts.ExpandDirectories:
				res.SkippedDirectories = append(res.SkippedDirectories, declared)
				continue
			case len(paths) == 0:
				res.Unmatched = append(res.Unmatched, declared)
				continue
			}

			var escaped bool
			for _, p := range paths {
				if !withinRoot(opts.Root, p) {
					escaped = true
					continue
				}
				if seen[p] {
					continue
				}
				seen[p] = true
				res.Paths = append(res.Paths, ResolvedPath{Path: p, BaseDir: baseDir, Entry: entry})
			}
			if escaped {
				res.Outside = append(res.Outside, declared)
				res.Unmatched = append(res.Unmatched, declared)
			}
		}
	}

	return res, nil
}

// withinRoot reports whether path is root or below it.
func withinRoot(root, path string) bool {
	if root == "" {
		return true
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ResolveEntry expands a single marker entry relative to baseDir. It returns
// absolute plaintext paths and the kind the entry was treated as.
func ResolveEntry(entry, baseDir string, opts ResolveOptions) ([]string, EntryKind, error) {
	suffix := NormalizeSuffix(opts.Suffix)
	clean := cleanEntry(entry)
	if clean == "" || strings.HasPrefix(clean, "!") {
		return nil, EntryMissing, nil
	}
	abs := filepath.Join(baseDir, filepath.FromSlash(clean))

	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		if !opts.ExpandDirectories {
			return nil, EntryDirectory, nil
		}
		files, err := findFilesInDir(abs, suffix, opts.ForEncryption)
		return files, EntryDirectory, err
	}

	if opts.ForEncryption {
		if info, err := os.Stat(abs); err == nil && info.Mode().IsRegular() && !strings.HasSuffix(abs, suffix) {
			return []string{abs}, EntryFile, nil
		}
	} else {
		if info, err := os.Stat(abs + suffix); err == nil && info.Mode().IsRegular() {
			return []string{abs}, EntryFile, nil
		}
	}

	if isTrailingWildcard(clean) {
		files, err := matchPrefix(strings.TrimSuffix(abs, "*"), suffix, opts.ForEncryption)
		return files, EntryWildcard, err
	}

	if opts.GlobPatterns && hasGlobMeta(clean) {
		files, err := expandGlob(abs, suffix, opts.ForEncryption)
		if errors.Is(err, doublestar.ErrBadPattern) {
			return nil, EntryMissing, nil
		}
		return files, EntryGlob, err
	}

	return nil, EntryMissing, nil
}

// cleanEntry normalizes gitignore-style spelling: "/a/b/" and "./a/b" both become "a/b".
func cleanEntry(entry string) string {
	e := strings.TrimSpace(filepath.ToSlash(entry))
	e = strings.TrimPrefix(e, "./")
	e = strings.TrimLeft(e, "/")
	return strings.TrimRight(e, "/")
}

func hasGlobMeta(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

func isTrailingWildcard(s string) bool {
	return strings.HasSuffix(s, "*") && !hasGlobMeta(strings.TrimSuffix(s, "*"))
}

// matchPrefix lists the immediate siblings of absPrefix whose name starts with
// its base name. It does not recurse and never returns directories.
func matchPrefix(absPrefix, suffix string, forEncryption bool) ([]string, error) {
	dir, prefix := filepath.Split(absPrefix)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		if target, ok := targetName(name, suffix, forEncryption); ok && strings.HasPrefix(target, prefix) {
			files = append(files, filepath.Join(dir, target))
		}
	}
	return files, nil
}

func expandGlob(absPattern, suffix string, forEncryption bool) ([]string, error) {
	pattern := absPattern
	if !forEncryption {
		pattern += suffix
	}

	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", absPattern, err)
	}

	var files []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() || isInGitDir(m) {
			continue
		}
		dir, name := filepath.Split(m)
		if target, ok := targetName(name, suffix, forEncryption); ok {
			files = append(files, filepath.Join(dir, target))
		}
	}
	return files, nil
}

func findFilesInDir(dir, suffix string, forEncryption bool) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		parent, name := filepath.Split(path)
		if target, ok := targetName(name, suffix, forEncryption); ok {
			files = append(files, filepath.Join(parent, target))
		}
		return nil
	})

	return files, err
}

// targetName maps a directory entry to the plaintext name it stands for. When
// encrypting, counterparts are excluded; when decrypting, only counterparts count.
func targetName(name, suffix string, forEncryption bool) (string, bool) {
	isCounterpart := strings.HasSuffix(name, suffix) && len(name) > len(suffix)
	if forEncryption {
		return name, !isCounterpart
	}
	if !isCounterpart {
		return "", false
	}
	return strings.TrimSuffix(name, suffix), true
}

func isInGitDir(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".git" {
			return true
		}
	}
	return false
}
