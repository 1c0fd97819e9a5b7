package secrets

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// writeTestFile is a helper to write test files with 0644 permissions.
// #nosec G306 -- Test files are temporary and don't contain sensitive data.
func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create test directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil { // #nosec G306
		t.Fatalf("Failed to create test file: %v", err)
	}
}

func encryptOpts() ResolveOptions {
	return ResolveOptions{ForEncryption: true, ExpandDirectories: true, GlobPatterns: true}
}

func decryptOpts() ResolveOptions {
	return ResolveOptions{ForEncryption: false, ExpandDirectories: true, GlobPatterns: true}
}

func resolvedPaths(res *Resolution) []string {
	var paths []string
	for _, p := range res.Paths {
		paths = append(paths, p.Path)
	}
	return paths
}

func TestResolveEntry_LiteralFile(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")
	writeTestFile(t, envFile, "TEST=value")

	files, kind, err := ResolveEntry(".env", tmpDir, encryptOpts())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if kind != EntryFile {
		t.Errorf("Expected kind file, got: %s", kind)
	}
	if !reflect.DeepEqual(files, []string{envFile}) {
		t.Errorf("Expected [%s], got: %v", envFile, files)
	}
}

func TestResolveEntry_GitignoreSpelling(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "config", "db.json")
	writeTestFile(t, target, "{}")

	for _, entry := range []string{"config/db.json", "./config/db.json", "/config/db.json"} {
		files, _, err := ResolveEntry(entry, tmpDir, encryptOpts())
		if err != nil {
			t.Fatalf("Expected no error for %q, got: %v", entry, err)
		}
		if !reflect.DeepEqual(files, []string{target}) {
			t.Errorf("Entry %q: expected [%s], got: %v", entry, target, files)
		}
	}
}

func TestResolveEntry_TrailingWildcard(t *testing.T) {
	tmpDir := t.TempDir()
	writeTestFile(t, filepath.Join(tmpDir, "secret.env"), "a")
	writeTestFile(t, filepath.Join(tmpDir, "secret.env.bak"), "b")
	writeTestFile(t, filepath.Join(tmpDir, "other.txt"), "c")

	files, kind, err := ResolveEntry("secret.env*", tmpDir, encryptOpts())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if kind != EntryWildcard {
		t.Errorf("Expected kind wildcard, got: %s", kind)
	}

	expected := []string{filepath.Join(tmpDir, "secret.env"), filepath.Join(tmpDir, "secret.env.bak")}
	if !reflect.DeepEqual(files, expected) {
		t.Errorf("Expected %v, got: %v", expected, files)
	}
}

func TestResolveEntry_WildcardIsNotRecursive(t *testing.T) {
	tmpDir := t.TempDir()
	writeTestFile(t, filepath.Join(tmpDir, "secret-a"), "a")
	writeTestFile(t, filepath.Join(tmpDir, "secret-dir", "nested"), "b")

	files, _, err := ResolveEntry("secret*", tmpDir, encryptOpts())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	expected := []string{filepath.Join(tmpDir, "secret-a")}
	if !reflect.DeepEqual(files, expected) {
		t.Errorf("Expected %v, got: %v", expected, files)
	}
}

func TestResolveEntry_WildcardExcludesCounterparts(t *testing.T) {
	tmpDir := t.TempDir()
	writeTestFile(t, filepath.Join(tmpDir, "secret.env"), "a")
	writeTestFile(t, filepath.Join(tmpDir, "secret.env.enc"), "envelope")

	files, _, err := ResolveEntry("secret*", tmpDir, encryptOpts())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	expected := []string{filepath.Join(tmpDir, "secret.env")}
	if !reflect.DeepEqual(files, expected) {
		t.Errorf("Expected %v, got: %v", expected, files)
	}
}

func TestResolveEntry_Directory(t *testing.T) {
	tmpDir := t.TempDir()
	writeTestFile(t, filepath.Join(tmpDir, "config", "a.json"), "{}")
	writeTestFile(t, filepath.Join(tmpDir, "config", "nested", "b.json"), "{}")
	writeTestFile(t, filepath.Join(tmpDir, "config", "nested", "b.json.enc"), "envelope")

	files, kind, err := ResolveEntry("config/", tmpDir, encryptOpts())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if kind != EntryDirectory {
		t.Errorf("Expected kind directory, got: %s", kind)
	}

	expected := []string{
		filepath.Join(tmpDir, "config", "a.json"),
		filepath.Join(tmpDir, "config", "nested", "b.json"),
	}
	if !reflect.DeepEqual(files, expected) {
		t.Errorf("Expected %v, got: %v", expected, files)
	}
}

func TestResolveEntry_DirectoryNotExpanded(t *testing.T) {
	tmpDir := t.TempDir()
	writeTestFile(t, filepath.Join(tmpDir, "config", "a.json"), "{}")

	opts := encryptOpts()
	opts.ExpandDirectories = false

	files, kind, err := ResolveEntry("config", tmpDir, opts)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if kind != EntryDirectory || files != nil {
		t.Errorf("Expected unexpanded directory, got kind %s and %v", kind, files)
	}
}

func TestResolveEntry_DoubleStarGlob(t *testing.T) {
	tmpDir := t.TempDir()
	writeTestFile(t, filepath.Join(tmpDir, "services", "api", "app.key"), "k")
	writeTestFile(t, filepath.Join(tmpDir, "services", "web", "deep", "tls.key"), "k")
	writeTestFile(t, filepath.Join(tmpDir, "services", "web", "readme.md"), "r")

	files, kind, err := ResolveEntry("services/**/*.key", tmpDir, encryptOpts())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if kind != EntryGlob {
		t.Errorf("Expected kind glob, got: %s", kind)
	}
	if len(files) != 2 {
		t.Fatalf("Expected 2 files, got: %v", files)
	}
}

func TestResolveEntry_GlobDisabled(t *testing.T) {
	tmpDir := t.TempDir()
	writeTestFile(t, filepath.Join(tmpDir, "a.key"), "k")

	opts := encryptOpts()
	opts.GlobPatterns = false

	files, kind, err := ResolveEntry("*.k?y", tmpDir, opts)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if kind != EntryMissing || len(files) != 0 {
		t.Errorf("Expected no match with globbing disabled, got kind %s and %v", kind, files)
	}
}

func TestResolveEntry_Missing(t *testing.T) {
	tmpDir := t.TempDir()

	for _, entry := range []string{"nope.env", "!negated", ""} {
		files, kind, err := ResolveEntry(entry, tmpDir, encryptOpts())
		if err != nil {
			t.Fatalf("Expected no error for %q, got: %v", entry, err)
		}
		if kind != EntryMissing || len(files) != 0 {
			t.Errorf("Entry %q: expected missing, got kind %s and %v", entry, kind, files)
		}
	}
}

func TestResolveEntry_ForDecryption(t *testing.T) {
	tmpDir := t.TempDir()
	// Fresh clone: only counterparts exist.
	writeTestFile(t, filepath.Join(tmpDir, ".env.enc"), "envelope")
	writeTestFile(t, filepath.Join(tmpDir, "secret.a.enc"), "envelope")
	writeTestFile(t, filepath.Join(tmpDir, "config", "db.json.enc"), "envelope")

	files, kind, err := ResolveEntry(".env", tmpDir, decryptOpts())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if kind != EntryFile || !reflect.DeepEqual(files, []string{filepath.Join(tmpDir, ".env")}) {
		t.Errorf("Expected plaintext path for literal entry, got kind %s and %v", kind, files)
	}

	files, _, err = ResolveEntry("secret*", tmpDir, decryptOpts())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !reflect.DeepEqual(files, []string{filepath.Join(tmpDir, "secret.a")}) {
		t.Errorf("Expected wildcard to map counterparts, got: %v", files)
	}

	files, _, err = ResolveEntry("config", tmpDir, decryptOpts())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !reflect.DeepEqual(files, []string{filepath.Join(tmpDir, "config", "db.json")}) {
		t.Errorf("Expected directory to map counterparts, got: %v", files)
	}

	files, _, err = ResolveEntry("config/*.json", tmpDir, decryptOpts())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !reflect.DeepEqual(files, []string{filepath.Join(tmpDir, "config", "db.json")}) {
		t.Errorf("Expected glob to map counterparts, got: %v", files)
	}
}

func TestResolveEntry_CustomSuffix(t *testing.T) {
	tmpDir := t.TempDir()
	writeTestFile(t, filepath.Join(tmpDir, ".env.secret"), "envelope")

	opts := decryptOpts()
	opts.Suffix = "secret"

	files, _, err := ResolveEntry(".env", tmpDir, opts)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !reflect.DeepEqual(files, []string{filepath.Join(tmpDir, ".env")}) {
		t.Errorf("Expected custom suffix to resolve, got: %v", files)
	}
}

func TestResolveIgnoreFiles_RelativeToDeclaringFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeTestFile(t, filepath.Join(tmpDir, ".gitignore"), "#start:enc\n.env\n#end:enc\n")
	writeTestFile(t, filepath.Join(tmpDir, "api", ".gitignore"), "#start:enc\n.env\n#end:enc\n")
	writeTestFile(t, filepath.Join(tmpDir, ".env"), "ROOT=1")
	writeTestFile(t, filepath.Join(tmpDir, "api", ".env"), "API=1")

	res, err := ResolveIgnoreFiles([]string{
		filepath.Join(tmpDir, ".gitignore"),
		filepath.Join(tmpDir, "api", ".gitignore"),
	}, encryptOpts())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := []string{filepath.Join(tmpDir, ".env"), filepath.Join(tmpDir, "api", ".env")}
	if !reflect.DeepEqual(resolvedPaths(res), expected) {
		t.Errorf("Expected %v, got: %v", expected, resolvedPaths(res))
	}
	if res.Paths[1].BaseDir != filepath.Join(tmpDir, "api") {
		t.Errorf("Expected base dir %s, got: %s", filepath.Join(tmpDir, "api"), res.Paths[1].BaseDir)
	}
}

func TestResolveIgnoreFiles_Deduplication(t *testing.T) {
	tmpDir := t.TempDir()
	writeTestFile(t, filepath.Join(tmpDir, ".gitignore"), "#start:enc\napi/.env\napi/\n#end:enc\n")
	writeTestFile(t, filepath.Join(tmpDir, "api", ".gitignore"), "#start:enc\n.env\n#end:enc\n")
	writeTestFile(t, filepath.Join(tmpDir, "api", ".env"), "API=1")

	res, err := ResolveIgnoreFiles([]string{
		filepath.Join(tmpDir, ".gitignore"),
		filepath.Join(tmpDir, "api", ".gitignore"),
	}, encryptOpts())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// api/ expands to api/.env and api/.gitignore; api/.env must appear once.
	count := 0
	for _, p := range resolvedPaths(res) {
		if p == filepath.Join(tmpDir, "api", ".env") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Expected api/.env exactly once, got %d in %v", count, resolvedPaths(res))
	}
	if res.Paths[0].Entry != "api/.env" {
		t.Errorf("Expected first-seen entry to win, got: %s", res.Paths[0].Entry)
	}
}

func TestResolveIgnoreFiles_ReportsSkippedAndUnmatched(t *testing.T) {
	tmpDir := t.TempDir()
	writeTestFile(t, filepath.Join(tmpDir, ".gitignore"), "#start:enc\nconfig\nmissing.env\n#end:enc\n")
	writeTestFile(t, filepath.Join(tmpDir, "config", "a.json"), "{}")

	opts := encryptOpts()
	opts.ExpandDirectories = false

	res, err := ResolveIgnoreFiles([]string{filepath.Join(tmpDir, ".gitignore")}, opts)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(res.Paths) != 0 {
		t.Errorf("Expected no paths, got: %v", resolvedPaths(res))
	}
	if !reflect.DeepEqual(res.SkippedDirectories, []string{filepath.Join(tmpDir, "config")}) {
		t.Errorf("Expected config to be skipped, got: %v", res.SkippedDirectories)
	}
	if !reflect.DeepEqual(res.Unmatched, []string{filepath.Join(tmpDir, "missing.env")}) {
		t.Errorf("Expected missing.env to be unmatched, got: %v", res.Unmatched)
	}
}

func TestFindIgnoreFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeTestFile(t, filepath.Join(tmpDir, ".gitignore"), "")
	writeTestFile(t, filepath.Join(tmpDir, "api", ".gitignore"), "")
	writeTestFile(t, filepath.Join(tmpDir, "node_modules", "pkg", ".gitignore"), "")
	writeTestFile(t, filepath.Join(tmpDir, ".git", "info", ".gitignore"), "")

	files, err := FindIgnoreFiles(tmpDir, ".gitignore", []string{"node_modules"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := []string{filepath.Join(tmpDir, ".gitignore"), filepath.Join(tmpDir, "api", ".gitignore")}
	if !reflect.DeepEqual(files, expected) {
		t.Errorf("Expected %v, got: %v", expected, files)
	}
}

func TestSuffixHelpers(t *testing.T) {
	if NormalizeSuffix("") != DefaultSuffix {
		t.Errorf("Expected empty suffix to default to %s", DefaultSuffix)
	}
	if NormalizeSuffix("crypt") != ".crypt" {
		t.Errorf("Expected suffix to gain a leading dot, got %s", NormalizeSuffix("crypt"))
	}
	if got := EncryptedPath("/repo/.env", ""); got != "/repo/.env.enc" {
		t.Errorf("Expected /repo/.env.enc, got %s", got)
	}
	if got := PlaintextPath("/repo/.env.enc", ".enc"); got != "/repo/.env" {
		t.Errorf("Expected /repo/.env, got %s", got)
	}
}

func TestResolveIgnoreFiles_BadEntriesDoNotAbort(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")
	writeTestFile(t, envFile, "A=1")
	writeTestFile(t, filepath.Join(tmpDir, "README"), "readme")
	writeTestFile(t, filepath.Join(tmpDir, ".gitignore"), "#start:enc\n.env\ncreds[\nREADME/secret*\n#end:enc\n")

	for _, opts := range []ResolveOptions{encryptOpts(), decryptOpts()} {
		res, err := ResolveIgnoreFiles([]string{filepath.Join(tmpDir, ".gitignore")}, opts)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if opts.ForEncryption && !reflect.DeepEqual(resolvedPaths(res), []string{envFile}) {
			t.Errorf("Expected [%s], got: %v", envFile, resolvedPaths(res))
		}
		expected := []string{filepath.Join(tmpDir, "creds["), filepath.Join(tmpDir, "README", "secret*")}
		if opts.ForEncryption {
			if !reflect.DeepEqual(res.Unmatched, expected) {
				t.Errorf("Expected %v to be unmatched, got: %v", expected, res.Unmatched)
			}
		} else {
			expected = append([]string{envFile}, expected...)
			if !reflect.DeepEqual(res.Unmatched, expected) {
				t.Errorf("Expected %v to be unmatched, got: %v", expected, res.Unmatched)
			}
		}
	}
}

func TestResolveEntry_InvalidGlob(t *testing.T) {
	files, kind, err := ResolveEntry("creds[", t.TempDir(), encryptOpts())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if kind != EntryMissing || len(files) != 0 {
		t.Errorf("Expected a missing entry, got %s with %v", kind, files)
	}
}

func TestResolveIgnoreFiles_RejectsEntriesOutsideRoot(t *testing.T) {
	tmpDir := t.TempDir()
	root := filepath.Join(tmpDir, "repo")
	outside := filepath.Join(tmpDir, "outside.txt")
	writeTestFile(t, outside, "not ours")
	writeTestFile(t, outside+".enc", "a#b#c")
	writeTestFile(t, filepath.Join(tmpDir, "other", "x.env"), "not ours")
	envFile := filepath.Join(root, ".env")
	writeTestFile(t, envFile, "A=1")
	writeTestFile(t, envFile+".enc", "a#b#c")
	writeTestFile(t, filepath.Join(root, ".gitignore"), "#start:enc\n.env\n../outside.txt\n../other/\n../*.txt\n#end:enc\n")

	for _, opts := range []ResolveOptions{encryptOpts(), decryptOpts()} {
		opts.Root = root
		res, err := ResolveIgnoreFiles([]string{filepath.Join(root, ".gitignore")}, opts)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if !reflect.DeepEqual(resolvedPaths(res), []string{envFile}) {
			t.Errorf("Expected only [%s], got: %v", envFile, resolvedPaths(res))
		}
		expected := []string{outside, filepath.Join(tmpDir, "other"), filepath.Join(tmpDir, "*.txt")}
		if !reflect.DeepEqual(res.Outside, expected) {
			t.Errorf("Expected %v outside the root, got: %v", expected, res.Outside)
		}
		if !reflect.DeepEqual(res.Unmatched, expected) {
			t.Errorf("Expected %v to be unmatched, got: %v", expected, res.Unmatched)
		}
	}
}
