package utils

import (
	"path/filepath"
	"strings"

	"github.com/PolarWolf314/gitenc/internal/ui"
)

// FormatPaths formats a slice of paths into a readable bullet list.
func FormatPaths(paths []string) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, path := range paths {
		b.WriteString("    - ")
		b.WriteString(ui.Path.Sprint(path))
		b.WriteString("\n")
	}
	return b.String()
}

// RelativePaths returns paths relative to base, leaving paths outside base untouched.
func RelativePaths(base string, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		rel, err := filepath.Rel(base, p)
		if err != nil || strings.HasPrefix(rel, "..") {
			out[i] = p
			continue
		}
		out[i] = rel
	}
	return out
}
