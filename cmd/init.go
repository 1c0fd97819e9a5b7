package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/PolarWolf314/gitenc/internal/configs"
	"github.com/PolarWolf314/gitenc/internal/ui"
	"github.com/PolarWolf314/gitenc/internal/utils"
	"github.com/PolarWolf314/gitenc/internal/workflows"
	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

func init() {
	addKeyFlag(initCmd.Flags(), "shared key to store for this repository")
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Install the git hooks, set up the key and decrypt existing files",
	Long: `Prepares a clone for gitenc:

  - installs pre-commit, post-merge and post-checkout hooks
  - writes a default .gitenc.toml if there is none
  - stores the key given with --key, or offers to generate one
  - decrypts every encrypted file already in the repository`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting init command")

		if utils.IsStdoutTerminal() && !verbose && !debug {
			fmt.Println()
			figure.NewColorFigure("gitenc", "standard", "green", true).Print()
			fmt.Println()
		}

		spinner, cleanup := startSpinner("Initializing gitenc...", verbose)
		defer cleanup()

		settings, err := loadSettings()
		if err != nil {
			return handleError(spinner, err, ignoreFileName(nil))
		}

		result, err := workflows.Init(context.Background(), settings, workflows.InitOptions{
			Key:       suppliedKey(),
			Confirmer: terminalConfirmer{spinner: spinner},
		})
		if err != nil {
			return handleError(spinner, err, ignoreFileName(settings))
		}

		lines := []string{ui.Tick() + " Installed git hooks:" +
			strings.TrimSuffix(utils.FormatPaths(utils.RelativePaths(settings.RepoRoot, result.Hooks)), "\n")}
		if result.ConfigWritten {
			lines = append(lines, ui.Tick()+" Wrote "+ui.Path.Sprint(configs.ConfigFileName))
		}
		lines = append(lines, formatInitKey(result))

		switch {
		case result.Decrypt != nil:
			reportResolution(settings, result.Decrypt.SkippedDirectories, result.Decrypt.Unmatched)
			reportProblems(spinner, settings, result.Decrypt.Files)
			lines = append(lines, formatDecryptSummary(settings.RepoRoot, result.Decrypt))
		case result.DecryptErr != nil && workflows.IsPreconditionError(result.DecryptErr):
			Logger.Infof("Skipping decryption: %v", result.DecryptErr)
		case result.DecryptErr != nil:
			lines = append(lines, ui.Cross()+" Decryption failed: "+result.DecryptErr.Error())
		}

		spinner.FinalMSG = strings.Join(lines, "\n")
		if result.Decrypt != nil {
			return batchError(result.Decrypt.Files)
		}
		return nil
	},
}

func formatInitKey(result *workflows.InitResult) string {
	switch {
	case result.KeyGenerated:
		return ui.Tick() + " Generated a new key\n" +
			ui.Arrow() + " Share it with your team using " + ui.Code.Sprint("gitenc key")
	case result.Store != nil && result.Store.Declined:
		return ui.Bang() + " Kept the existing key"
	case result.Store != nil && result.Store.Replaced:
		return ui.Tick() + " Replaced the stored key"
	case result.Store != nil:
		return ui.Tick() + " Stored the key"
	case result.HasKey:
		return ui.Tick() + " Using the stored key"
	default:
		return ui.Bang() + " No key set up\n" +
			ui.Arrow() + " Run " + ui.Code.Sprint("gitenc key --key <key>") + " to store the shared key"
	}
}
