package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/gitenc/internal/ui"
	"github.com/PolarWolf314/gitenc/internal/workflows"
	"github.com/spf13/cobra"
)

func init() {
	addKeyFlag(keyCmd.Flags(), "key to store for this repository")
}

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Show the stored key, or store a key",
	Long: `Without --key, prints the stored key so it can be shared with the team.
With --key, stores the given key, asking before replacing a different one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting key command")

		settings, err := loadSettings()
		if err != nil {
			return printExpectedError(err, ignoreFileName(nil))
		}

		result, err := workflows.Key(context.Background(), settings, workflows.KeyOptions{
			Key:       suppliedKey(),
			Confirmer: terminalConfirmer{},
		})
		if err != nil {
			return printExpectedError(err, ignoreFileName(settings))
		}

		switch {
		case result.Store == nil:
			Logger.Debugf("Key loaded from %s", result.Path)
			fmt.Println(result.Key)
		case result.Store.Declined:
			fmt.Println(ui.Bang() + " Kept the existing key " + ui.Muted.Sprint(result.Fingerprint))
		case result.Store.Stored:
			fmt.Println(ui.Tick() + " Stored key " + ui.Muted.Sprint(result.Fingerprint) + " in " + ui.Path.Sprint(settings.Rel(result.Path)))
		default:
			fmt.Println(ui.Arrow() + " This key is already stored")
		}
		return nil
	},
}

// printExpectedError prints expected errors and returns nil, or returns err.
func printExpectedError(err error, ignoreFile string) error {
	if msg, ok := formatExpectedError(err, ignoreFile); ok {
		fmt.Println(msg)
		return nil
	}
	return Logger.ErrorfAndReturn("%v", err)
}
