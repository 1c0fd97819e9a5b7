package cmd

import (
	"context"

	"github.com/PolarWolf314/gitenc/internal/ui"
	"github.com/PolarWolf314/gitenc/internal/utils"
	"github.com/PolarWolf314/gitenc/internal/workflows"
	"github.com/spf13/cobra"
)

var decryptDryRun bool

func init() {
	addKeyFlag(decryptCmd.Flags(), "key to decrypt with instead of the stored key")
	decryptCmd.Flags().BoolVar(&decryptDryRun, "dry-run", false, "list the files that would be decrypted")
}

func resetDecryptCommandState() {
	decryptDryRun = false
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt every declared file",
	Long: `Decrypts the encrypted copy of every declared file back to plaintext.

Encrypted files whose integrity check fails are skipped and the plaintext is
left untouched. Runs automatically after a checkout or merge once the hooks
are installed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting decrypt command")
		spinner, cleanup := startSpinner("Decrypting files...", verbose)
		defer cleanup()

		settings, err := loadSettings()
		if err != nil {
			return handleError(spinner, err, ignoreFileName(nil))
		}

		opts := workflows.DecryptOptions{
			Key:    suppliedKey(),
			DryRun: decryptDryRun,
			Progress: func(f workflows.FileResult) {
				Logger.Debugf("Decrypting %s", settings.Rel(f.EncryptedPath))
				spinner.Suffix = " Decrypting " + settings.Rel(f.Path) + "..."
			},
		}

		result, err := workflows.Decrypt(context.Background(), settings, opts)
		if result != nil {
			reportResolution(settings, result.SkippedDirectories, result.Unmatched)
		}
		if err != nil {
			return handleError(spinner, err, ignoreFileName(settings))
		}

		if result.DryRun {
			var targets []string
			for _, f := range result.Files {
				targets = append(targets, settings.Rel(f.Path))
			}
			msg := ui.Warning.Sprint("[dry-run]") + " Would decrypt " + ui.Highlight.Sprintf("%d", len(targets)) + " file(s):" +
				utils.FormatPaths(targets)
			if len(result.WouldOverwrite) > 0 {
				msg += ui.Bang() + " These files exist and would be overwritten:" +
					utils.FormatPaths(utils.RelativePaths(settings.RepoRoot, result.WouldOverwrite))
			}
			spinner.FinalMSG = msg + ui.Muted.Sprint("no files were modified")
			return nil
		}

		spinner.FinalMSG = formatDecryptSummary(settings.RepoRoot, result)
		reportProblems(spinner, settings, result.Files)
		return batchError(result.Files)
	},
}

// formatDecryptSummary describes a finished decrypt batch.
func formatDecryptSummary(root string, result *workflows.DecryptResult) string {
	msg := ui.Tick() + " Decryption finished"
	if n := len(result.Files.Problems()); n > 0 {
		msg = ui.Bang() + " Decryption finished with " + ui.Warning.Sprintf("%d", n) + " problem(s)"
	}
	if len(result.Written) > 0 {
		msg += "\nThe following files were written:" + utils.FormatPaths(utils.RelativePaths(root, result.Written))
	} else {
		msg += "\n" + ui.Arrow() + " All plaintext files are up to date"
	}
	return msg
}
