package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/PolarWolf314/gitenc/internal/configs"
	kerrors "github.com/PolarWolf314/gitenc/internal/errors"
	"github.com/PolarWolf314/gitenc/internal/ui"
	"github.com/PolarWolf314/gitenc/internal/workflows"
	"github.com/spf13/cobra"
)

var generateStore bool

func init() {
	generateCmd.Flags().BoolVar(&generateStore, "store", false, "store the generated key in this repository")
}

func resetGenerateCommandState() {
	generateStore = false
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new random key",
	Long: `Prints a new random 256-bit key. With --store the key also becomes the
repository key, asking before replacing an existing one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting generate command")

		var settings *configs.Settings
		if generateStore {
			s, err := loadSettings()
			if err != nil {
				return printExpectedError(err, ignoreFileName(nil))
			}
			settings = s
		}

		result, err := workflows.Generate(context.Background(), settings, workflows.GenerateOptions{
			Store:     generateStore,
			Confirmer: terminalConfirmer{},
		})
		if errors.Is(err, kerrors.ErrNotGitRepository) {
			return printExpectedError(err, ignoreFileName(nil))
		}
		if err != nil {
			return Logger.ErrorfAndReturn("failed to generate key: %v", err)
		}

		fmt.Println(result.Key)
		if result.Store == nil {
			return nil
		}
		switch {
		case result.Store.Declined:
			fmt.Println(ui.Bang() + " Kept the existing key, the generated key was not stored")
		case result.Store.Stored:
			fmt.Println(ui.Tick() + " Stored key " + ui.Muted.Sprint(result.Fingerprint))
		}
		return nil
	},
}
