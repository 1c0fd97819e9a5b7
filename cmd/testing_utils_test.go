package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	logger "github.com/PolarWolf314/gitenc/internal/logging"
	"github.com/PolarWolf314/gitenc/internal/secrets"
	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"
)

// setupRepo creates an empty git repository, makes it the working directory
// and restores the previous one when the test ends.
func setupRepo(t *testing.T) string {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	t.Setenv(KeyEnvVar, "")

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	_, err = git.PlainInit(dir, false)
	require.NoError(t, err)

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))

	// Prompts decline when stdin is not a terminal.
	originalStdin := os.Stdin
	devNull, err := os.Open(os.DevNull)
	require.NoError(t, err)
	os.Stdin = devNull

	t.Cleanup(func() {
		os.Stdin = originalStdin
		devNull.Close()
		if err := os.Chdir(originalWd); err != nil {
			t.Fatalf("Failed to change to original directory: %v", err)
		}
		ResetGlobalState()
	})

	ResetGlobalState()
	return dir
}

// runCommand executes the root command with args and returns everything
// written to stdout and stderr.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	ResetGlobalState()
	SetLogger(logger.Logger{})
	RootCmd.SetArgs(args)
	return captureOutput(RootCmd.Execute)
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()
	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	outputChan := make(chan string, 2)
	collect := func(r io.Reader) {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outputChan <- buf.String()
	}
	go collect(stdoutReader)
	go collect(stderrReader)

	err := fn()

	stdoutWriter.Close()
	stderrWriter.Close()
	os.Stdout = originalStdout
	os.Stderr = originalStderr

	stdout := <-outputChan
	stderr := <-outputChan
	return stdout + stderr, err
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644)) // #nosec G306
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func newKey(t *testing.T) string {
	t.Helper()
	key, err := secrets.GenerateKey()
	require.NoError(t, err)
	return key
}
