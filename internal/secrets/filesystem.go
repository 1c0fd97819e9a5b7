package secrets

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// DefaultSuffix is appended to a plaintext path to name its encrypted counterpart.
const DefaultSuffix = ".enc"

// NormalizeSuffix makes sure the suffix starts with a dot.
func NormalizeSuffix(suffix string) string {
	suffix = strings.TrimSpace(suffix)
	if suffix == "" {
		return DefaultSuffix
	}
	if !strings.HasPrefix(suffix, ".") {
		return "." + suffix
	}
	return suffix
}

// EncryptedPath returns the counterpart path holding the envelope for path.
func EncryptedPath(path, suffix string) string {
	return path + NormalizeSuffix(suffix)
}

// PlaintextPath is the inverse of EncryptedPath.
func PlaintextPath(encryptedPath, suffix string) string {
	return strings.TrimSuffix(encryptedPath, NormalizeSuffix(suffix))
}

// FindIgnoreFiles walks root and returns every file called name, skipping .git
// and any directory whose base name is in skipDirs.
func FindIgnoreFiles(root, name string, skipDirs []string) ([]string, error) {
	var result []string

	skip := map[string]bool{".git": true}
	for _, dir := range skipDirs {
		skip[dir] = true
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed while walking directory: %w", err)
		}

		if d.IsDir() {
			if path != root && skip[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type().IsRegular() && d.Name() == name {
			result = append(result, path)
		}
		return nil
	})

	return result, err
}
