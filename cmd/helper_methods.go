package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PolarWolf314/gitenc/internal/configs"
	kerrors "github.com/PolarWolf314/gitenc/internal/errors"
	"github.com/PolarWolf314/gitenc/internal/ui"
	"github.com/PolarWolf314/gitenc/internal/utils"
	"github.com/PolarWolf314/gitenc/internal/workflows"
	"github.com/briandowns/spinner"
	"github.com/spf13/pflag"
)

// KeyEnvVar supplies the key when --key is not given.
const KeyEnvVar = "GITENC_KEY"

var keyFlag string

// addKeyFlag registers --key on a command.
func addKeyFlag(fs *pflag.FlagSet, usage string) {
	fs.StringVarP(&keyFlag, "key", "k", "", usage+" (default $"+KeyEnvVar+")")
}

// suppliedKey returns the --key value, falling back to $GITENC_KEY.
func suppliedKey() string {
	if key := strings.TrimSpace(keyFlag); key != "" {
		return key
	}
	if key := strings.TrimSpace(os.Getenv(KeyEnvVar)); key != "" {
		Logger.Debugf("Using key from $%s", KeyEnvVar)
		return key
	}
	return ""
}

func resetKeyFlags() {
	keyFlag = ""
}

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// IMPORTANT: spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// automatically calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	if !verbose && !debug {
		s.Start()
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if !verbose && !debug {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if s.Active() {
			s.Stop()
		}

		// Print final message to stdout (for tests to capture).
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// pauseSpinner stops an active spinner and returns a function restarting it.
func pauseSpinner(s *spinner.Spinner) func() {
	if s == nil || !s.Active() {
		return func() {}
	}
	s.Stop()
	return s.Start
}

// terminalConfirmer asks questions on the terminal. It declines when stdin is
// not a terminal, and accepts everything when --yes is set.
type terminalConfirmer struct {
	spinner *spinner.Spinner
}

func (c terminalConfirmer) Confirm(message string, defaultYes bool) (bool, error) {
	if assumeYes {
		Logger.Infof("Answering yes to: %s", message)
		return true, nil
	}
	if !utils.IsTerminal() {
		Logger.Warnf("Not a terminal, answering no to: %s", message)
		return false, nil
	}

	defer pauseSpinner(c.spinner)()
	return utils.PromptConfirm(os.Stdin, os.Stderr, message, defaultYes)
}

// loadSettings loads the settings of the repository containing the working directory.
func loadSettings() (*configs.Settings, error) {
	settings, err := configs.LoadSettings(".")
	if err != nil {
		return nil, err
	}
	Logger.Debugf("Repository root: %s, git dir: %s", settings.RepoRoot, settings.GitDir)
	Logger.Debugf("Config: suffix=%s ignore_file=%s", settings.Config.Encryption.Suffix, settings.Config.Encryption.IgnoreFile)
	return settings, nil
}

// formatExpectedError returns a message for errors that are a missing
// precondition rather than a failure. ok is false for unexpected errors.
func formatExpectedError(err error, ignoreFile string) (msg string, ok bool) {
	switch {
	case errors.Is(err, kerrors.ErrNotGitRepository):
		return ui.Cross() + " Not inside a git repository\n" +
			ui.Arrow() + " Run " + ui.Code.Sprint("git init") + " first", true

	case errors.Is(err, kerrors.ErrKeyNotFound):
		return ui.Cross() + " No key found\n" +
			ui.Arrow() + " Run " + ui.Code.Sprint("gitenc key --key <key>") + " to store the shared key, or " +
			ui.Code.Sprint("gitenc generate --store") + " to create one", true

	case errors.Is(err, kerrors.ErrNoIgnoreFile):
		return ui.Cross() + " No " + ui.Path.Sprint(ignoreFile) + " file found\n" +
			ui.Arrow() + " Run " + ui.Code.Sprint("gitenc add <file>") + " to declare a file for encryption", true

	case errors.Is(err, kerrors.ErrNoFilesFound):
		return ui.Cross() + " No declared files found\n" +
			ui.Arrow() + " Declare files between " + ui.Code.Sprint("#start:enc") + " and " + ui.Code.Sprint("#end:enc") +
			" in " + ui.Path.Sprint(ignoreFile) + ", or run " + ui.Code.Sprint("gitenc add <file>"), true

	case errors.Is(err, kerrors.ErrInvalidKeyLength):
		return ui.Cross() + " " + err.Error() + "\n" +
			ui.Arrow() + " Run " + ui.Code.Sprint("gitenc generate") + " to create a valid key", true

	case errors.Is(err, kerrors.ErrInvalidProjectConfig):
		return ui.Cross() + " " + err.Error(), true

	default:
		return "", false
	}
}

// handleError sets the final message for err. Expected errors exit cleanly,
// anything else is returned so the command fails.
func handleError(s *spinner.Spinner, err error, ignoreFile string) error {
	if msg, ok := formatExpectedError(err, ignoreFile); ok {
		Logger.Debugf("Command stopped: %v", err)
		s.FinalMSG = msg
		return nil
	}
	s.FinalMSG = ui.Cross() + " " + ui.Error.Sprint("Error: ") + err.Error()
	return Logger.ErrorfAndReturn("%v", err)
}

// ignoreFileName returns the configured ignore file name for messages.
func ignoreFileName(settings *configs.Settings) string {
	if settings == nil || settings.Config == nil {
		return configs.DefaultConfig().Encryption.IgnoreFile
	}
	return settings.Config.Encryption.IgnoreFile
}

// reportProblems prints one warning per failed or skipped file, naming the reason class.
func reportProblems(s *spinner.Spinner, settings *configs.Settings, files workflows.FileResults) {
	problems := files.Problems()
	if len(problems) == 0 {
		return
	}

	defer pauseSpinner(s)()
	for _, f := range problems {
		path := settings.Rel(f.Path)
		switch {
		case errors.Is(f.Err, kerrors.ErrEnvelopeTampered):
			Logger.WarnfAlways("Skipped %s: integrity check failed, the envelope was modified or encrypted with another key", path)
		case errors.Is(f.Err, kerrors.ErrMalformedEnvelope):
			Logger.WarnfAlways("Skipped %s: malformed envelope in %s (%v)", path, settings.Rel(f.EncryptedPath), f.Err)
		case errors.Is(f.Err, kerrors.ErrDecryptFailed):
			Logger.WarnfAlways("Failed %s: could not decrypt, wrong key or corrupted ciphertext (%v)", path, f.Err)
		case errors.Is(f.Err, kerrors.ErrEncryptFailed):
			Logger.WarnfAlways("Failed %s: could not encrypt (%v)", path, f.Err)
		case errors.Is(f.Err, kerrors.ErrFileAccess):
			Logger.WarnfAlways("Failed %s: file access error (%v)", path, f.Err)
		default:
			Logger.WarnfAlways("Failed %s: %v", path, f.Err)
		}
	}
}

// reportResolution logs marker entries that could not be used.
func reportResolution(settings *configs.Settings, skippedDirs, unmatched []string) {
	for _, d := range skippedDirs {
		Logger.Warnf("Skipped directory %s: expand_directories is disabled", settings.Rel(d))
	}
	for _, u := range unmatched {
		rel := settings.Rel(u)
		if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			Logger.WarnfAlways("Ignored %s: outside the repository", rel)
			continue
		}
		Logger.Warnf("No file matches %s", rel)
	}
}

// batchError fails the command when files failed, so git hooks stop.
func batchError(files workflows.FileResults) error {
	if n := files.Count(workflows.FileFailed); n > 0 {
		return fmt.Errorf("%d file(s) failed", n)
	}
	return nil
}
