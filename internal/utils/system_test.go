package utils

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetUsername(t *testing.T) {
	username, err := GetUsername()
	if err != nil {
		t.Fatalf("GetUsername failed: %v", err)
	}
	if username == "" {
		t.Fatal("Expected non-empty username")
	}
}

func TestPromptConfirm(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		defaultYes bool
		expected   bool
	}{
		{"EmptyUsesDefaultYes", "\n", true, true},
		{"EmptyUsesDefaultNo", "\n", false, false},
		{"EOFUsesDefault", "", true, true},
		{"ShortYes", "y\n", false, true},
		{"LongYesMixedCase", "  YeS \n", false, true},
		{"ExplicitNo", "n\n", true, false},
		{"GarbageDeclines", "maybe\n", true, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := PromptConfirm(strings.NewReader(tc.input), &out, "Replace key?", tc.defaultYes)
			if err != nil {
				t.Fatalf("PromptConfirm failed: %v", err)
			}
			if got != tc.expected {
				t.Errorf("PromptConfirm(%q, default=%t) = %t, expected %t", tc.input, tc.defaultYes, got, tc.expected)
			}
			if !strings.HasPrefix(out.String(), "Replace key? ") {
				t.Errorf("Expected prompt to be written, got %q", out.String())
			}
		})
	}
}

func TestPromptConfirmHint(t *testing.T) {
	var out bytes.Buffer
	_, _ = PromptConfirm(strings.NewReader("\n"), &out, "Generate?", true)
	if !strings.Contains(out.String(), "[Y/n]") {
		t.Errorf("Expected [Y/n] hint, got %q", out.String())
	}

	out.Reset()
	_, _ = PromptConfirm(strings.NewReader("\n"), &out, "Replace?", false)
	if !strings.Contains(out.String(), "[y/N]") {
		t.Errorf("Expected [y/N] hint, got %q", out.String())
	}
}

func TestRelativePaths(t *testing.T) {
	base := filepath.Join("/", "repo")
	got := RelativePaths(base, []string{
		filepath.Join(base, ".env"),
		filepath.Join(base, "config", "db.json"),
		filepath.Join("/", "elsewhere", "x"),
	})

	expected := []string{".env", filepath.Join("config", "db.json"), filepath.Join("/", "elsewhere", "x")}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("RelativePaths[%d] = %q, expected %q", i, got[i], expected[i])
		}
	}
}

func TestFormatPaths(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	got := FormatPaths([]string{".env", "config/db.json"})
	expected := "\n    - .env\n    - config/db.json\n"
	if got != expected {
		t.Errorf("FormatPaths = %q, expected %q", got, expected)
	}
}
