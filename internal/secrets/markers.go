package secrets

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

var (
	startMarkers = []string{"#start:enc", "#begin:enc"}
	stopMarkers  = []string{"#end:enc", "#stop:enc"}
)

// MarkerRegion is the parser state for one ignore file.
type MarkerRegion int

const (
	RegionOutside MarkerRegion = iota
	RegionInside
)

// IsStartMarker reports whether the trimmed line opens a marker region.
func IsStartMarker(line string) bool {
	return hasAnyPrefix(strings.TrimSpace(line), startMarkers)
}

// IsStopMarker reports whether the trimmed line closes a marker region.
func IsStopMarker(line string) bool {
	return hasAnyPrefix(strings.TrimSpace(line), stopMarkers)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// ParseMarkerLines returns the entries found inside marker regions, in order.
// Comments and blank lines are never entries. Unmatched markers are not an
// error: an unterminated region runs to the end of input.
func ParseMarkerLines(lines []string) []string {
	var entries []string
	region := RegionOutside

	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		switch {
		case IsStopMarker(line):
			region = RegionOutside
		case IsStartMarker(line):
			region = RegionInside
		case line == "" || strings.HasPrefix(line, "#"):
		case region == RegionInside:
			entries = append(entries, line)
		}
	}

	return entries
}

// ParseMarkerFile reads path and returns its marker entries. A missing file has no entries.
func ParseMarkerFile(path string) ([]string, error) {
	lines, err := readLines(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseMarkerLines(lines), nil
}

// AddMarkerEntry declares entry in the first marker region of the ignore file at path.
// The entry is inserted before the region's stop marker, appended when the region
// is unterminated, or wrapped in a new region at the top of the file when there is
// none. The file is created if missing. It returns false if entry was already declared.
func AddMarkerEntry(path, entry string) (bool, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return false, fmt.Errorf("cannot add an empty entry")
	}

	lines, err := readLines(path)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	for _, existing := range ParseMarkerLines(lines) {
		if existing == entry {
			return false, nil
		}
	}

	if err := writeLines(path, insertEntry(lines, entry)); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

func insertEntry(lines []string, entry string) []string {
	inside := false
	for i, line := range lines {
		if IsStartMarker(line) {
			inside = true
			continue
		}
		if inside && IsStopMarker(line) {
			updated := make([]string, 0, len(lines)+1)
			updated = append(updated, lines[:i]...)
			updated = append(updated, entry)
			return append(updated, lines[i:]...)
		}
	}

	if inside {
		return append(lines, entry)
	}

	block := []string{startMarkers[0], entry, stopMarkers[0]}
	if len(lines) > 0 {
		block = append(block, "")
	}
	return append(block, lines...)
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

func writeLines(path string, lines []string) error {
	// #nosec G306 -- ignore files are committed and meant to be world readable
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644)
}
