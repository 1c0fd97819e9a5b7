package cmd

import (
	"context"

	"github.com/PolarWolf314/gitenc/internal/ui"
	"github.com/PolarWolf314/gitenc/internal/workflows"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Declare a file for encryption",
	Long: `Adds a path to the first marker region of the repository's root .gitignore,
creating the region when there is none. Directories and trailing wildcards
such as 'secret.env*' are accepted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting add command")
		spinner, cleanup := startSpinner("Declaring file...", verbose)
		defer cleanup()

		settings, err := loadSettings()
		if err != nil {
			return handleError(spinner, err, ignoreFileName(nil))
		}

		result, err := workflows.Add(context.Background(), settings, workflows.AddOptions{Path: args[0]})
		if err != nil {
			return handleError(spinner, err, ignoreFileName(settings))
		}

		ignoreFile := ui.Path.Sprint(settings.Rel(result.IgnoreFile))
		if !result.Added {
			spinner.FinalMSG = ui.Arrow() + " " + ui.Path.Sprint(result.Entry) + " is already declared in " + ignoreFile
			return nil
		}
		spinner.FinalMSG = ui.Tick() + " Declared " + ui.Path.Sprint(result.Entry) + " in " + ignoreFile + "\n" +
			ui.Arrow() + " Run " + ui.Code.Sprint("gitenc encrypt") + " to encrypt it"
		return nil
	},
}
