package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMarkerLines(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		expected []string
	}{
		{
			name:     "SingleRegion",
			lines:    []string{"#start:enc", "a.txt", "b.txt", "#end:enc", "c.txt"},
			expected: []string{"a.txt", "b.txt"},
		},
		{
			name:     "AlternateMarkers",
			lines:    []string{"#begin:enc", "a.txt", "#stop:enc"},
			expected: []string{"a.txt"},
		},
		{
			name:     "MultipleRegions",
			lines:    []string{"#start:enc", "a", "#end:enc", "node_modules", "#begin:enc", "b", "#stop:enc"},
			expected: []string{"a", "b"},
		},
		{
			name:     "UnterminatedRegion",
			lines:    []string{"x", "#start:enc", "a", "b"},
			expected: []string{"a", "b"},
		},
		{
			name:     "CommentsAndBlanksSkipped",
			lines:    []string{"#start:enc", "", "# credentials", "  .env  ", "\t", "#end:enc"},
			expected: []string{".env"},
		},
		{
			name:     "IndentedMarkers",
			lines:    []string{"   #start:enc", "a", "  #end:enc   "},
			expected: []string{"a"},
		},
		{
			name:     "StopWithoutStart",
			lines:    []string{"#end:enc", "a"},
			expected: nil,
		},
		{
			name:     "NoMarkers",
			lines:    []string{"node_modules", "dist/"},
			expected: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseMarkerLines(tc.lines))
		})
	}
}

func TestParseMarkerFileMissing(t *testing.T) {
	entries, err := ParseMarkerFile(filepath.Join(t.TempDir(), ".gitignore"))
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestParseMarkerFileCRLF(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".gitignore")
	require.NoError(t, os.WriteFile(path, []byte("#start:enc\r\n.env\r\n#end:enc\r\n"), 0644))

	entries, err := ParseMarkerFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{".env"}, entries)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestAddMarkerEntryCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".gitignore")

	added, err := AddMarkerEntry(path, ".env")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, "#start:enc\n.env\n#end:enc\n", readFile(t, path))
}

func TestAddMarkerEntryPrependsRegion(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".gitignore")
	require.NoError(t, os.WriteFile(path, []byte("node_modules\ndist/\n"), 0644))

	added, err := AddMarkerEntry(path, "config/db.json")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, "#start:enc\nconfig/db.json\n#end:enc\n\nnode_modules\ndist/\n", readFile(t, path))
}

func TestAddMarkerEntryInsertsBeforeStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".gitignore")
	require.NoError(t, os.WriteFile(path, []byte("node_modules\n#start:enc\n.env\n#end:enc\n#begin:enc\nother\n#stop:enc\n"), 0644))

	added, err := AddMarkerEntry(path, "secrets.json")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, "node_modules\n#start:enc\n.env\nsecrets.json\n#end:enc\n#begin:enc\nother\n#stop:enc\n", readFile(t, path))
}

func TestAddMarkerEntryUnterminatedRegion(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".gitignore")
	require.NoError(t, os.WriteFile(path, []byte("#start:enc\n.env\n"), 0644))

	added, err := AddMarkerEntry(path, "b.txt")
	require.NoError(t, err)
	assert.True(t, added)

	entries, err := ParseMarkerFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{".env", "b.txt"}, entries)
}

func TestAddMarkerEntryIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".gitignore")

	_, err := AddMarkerEntry(path, ".env")
	require.NoError(t, err)
	before := readFile(t, path)

	added, err := AddMarkerEntry(path, "  .env ")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, before, readFile(t, path))
	assert.Equal(t, 1, strings.Count(before, ".env"))
}

func TestAddMarkerEntryRejectsEmpty(t *testing.T) {
	_, err := AddMarkerEntry(filepath.Join(t.TempDir(), ".gitignore"), "  ")
	assert.Error(t, err)
}
