package cmd

import (
	"context"
	"strings"

	"github.com/PolarWolf314/gitenc/internal/ui"
	"github.com/PolarWolf314/gitenc/internal/utils"
	"github.com/PolarWolf314/gitenc/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	encryptStage  bool
	encryptDryRun bool
)

func init() {
	addKeyFlag(encryptCmd.Flags(), "key to encrypt with instead of the stored key")
	encryptCmd.Flags().BoolVar(&encryptStage, "git", false, "stage the encrypted files with git")
	encryptCmd.Flags().BoolVar(&encryptDryRun, "dry-run", false, "list the files that would be encrypted")
}

func resetEncryptCommandState() {
	encryptStage = false
	encryptDryRun = false
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Encrypt every declared file",
	Long: `Encrypts every file declared in a marker region and writes it next to the
original with the .enc suffix.

An existing encrypted file keeps its IV, so unchanged files are not rewritten
and diffs stay small. Use --git to stage the encrypted files, as the
pre-commit hook does.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting encrypt command")
		spinner, cleanup := startSpinner("Encrypting files...", verbose)
		defer cleanup()

		settings, err := loadSettings()
		if err != nil {
			return handleError(spinner, err, ignoreFileName(nil))
		}

		opts := workflows.EncryptOptions{
			Key:       suppliedKey(),
			Confirmer: terminalConfirmer{spinner: spinner},
			Stage:     encryptStage,
			DryRun:    encryptDryRun,
			Progress: func(f workflows.FileResult) {
				Logger.Debugf("Encrypting %s", settings.Rel(f.Path))
				spinner.Suffix = " Encrypting " + settings.Rel(f.Path) + "..."
			},
		}

		result, err := workflows.Encrypt(context.Background(), settings, opts)
		if result != nil {
			reportResolution(settings, result.SkippedDirectories, result.Unmatched)
		}
		if err != nil {
			return handleError(spinner, err, ignoreFileName(settings))
		}

		if result.KeyGenerated {
			Logger.Infof("Generated and stored a new key (%s)", result.KeyFingerprint)
		}

		if result.DryRun {
			var targets []string
			for _, f := range result.Files {
				targets = append(targets, settings.Rel(f.EncryptedPath))
			}
			spinner.FinalMSG = ui.Warning.Sprint("[dry-run]") + " Would encrypt " + ui.Highlight.Sprintf("%d", len(targets)) + " file(s):" +
				utils.FormatPaths(targets) +
				ui.Muted.Sprint("no files were modified")
			return nil
		}

		reportProblems(spinner, settings, result.Files)

		headline := ui.Tick() + " Encryption finished"
		if n := len(result.Files.Problems()); n > 0 {
			headline = ui.Bang() + " Encryption finished with " + ui.Warning.Sprintf("%d", n) + " problem(s)"
		}
		lines := []string{headline}
		if result.KeyGenerated {
			lines = append(lines, ui.Bang()+" Generated a new key "+ui.Muted.Sprint(result.KeyFingerprint)+
				", share it with "+ui.Code.Sprint("gitenc key"))
		}
		if len(result.Written) > 0 {
			lines = append(lines, "The following files were written:"+
				strings.TrimSuffix(utils.FormatPaths(utils.RelativePaths(settings.RepoRoot, result.Written)), "\n"))
		} else {
			lines = append(lines, ui.Arrow()+" All encrypted files are up to date")
		}
		if len(result.Staged) > 0 {
			lines = append(lines, ui.Arrow()+" Staged "+ui.Highlight.Sprintf("%d", len(result.Staged))+" file(s) with git")
		} else if len(result.Written) > 0 {
			lines = append(lines, ui.Arrow()+" You can now safely commit the "+ui.Path.Sprint(settings.Config.Encryption.Suffix)+" files")
		}
		msg := strings.Join(lines, "\n")
		spinner.FinalMSG = msg

		return batchError(result.Files)
	},
}
