package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/PolarWolf314/gitenc/internal/configs"
	"github.com/PolarWolf314/gitenc/internal/ui"
	"github.com/PolarWolf314/gitenc/internal/workflows"
	"github.com/spf13/cobra"
)

var statusJSONOutput bool

func init() {
	addKeyFlag(statusCmd.Flags(), "key to compare with instead of the stored key")
	statusCmd.Flags().BoolVar(&statusJSONOutput, "json", false, "output in JSON format")
}

func resetStatusCommandState() {
	statusJSONOutput = false
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the encryption status of every declared file",
	Long: `Shows the encryption status of every declared file.

Each file has one of these statuses:
  - current:        the encrypted file holds the current plaintext
  - stale:          the plaintext changed since it was encrypted
  - unencrypted:    plaintext exists with no encrypted file (run encrypt)
  - encrypted_only: an encrypted file exists with no plaintext (run decrypt)
  - tampered:       the encrypted file fails its integrity check
  - malformed:      the encrypted file is not a valid envelope

Without a key, staleness is judged by modification times and tampering is
not detected. Use --json for machine-readable output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting status command")

		settings, err := loadSettings()
		if err != nil {
			return statusError(err, nil)
		}

		result, err := workflows.Status(context.Background(), settings, workflows.StatusOptions{Key: suppliedKey()})
		if err != nil {
			return statusError(err, settings)
		}
		Logger.Debugf("Found %d declared files", len(result.Files))

		if statusJSONOutput {
			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return Logger.ErrorfAndReturn("failed to marshal status to JSON: %v", err)
			}
			fmt.Println(string(data))
			return nil
		}

		printStatusTable(result)
		return nil
	},
}

func statusError(err error, settings *configs.Settings) error {
	if statusJSONOutput {
		if _, ok := formatExpectedError(err, ignoreFileName(settings)); ok {
			data, _ := json.Marshal(map[string]string{"error": err.Error()})
			fmt.Println(string(data))
			return nil
		}
		return Logger.ErrorfAndReturn("%v", err)
	}
	return printExpectedError(err, ignoreFileName(settings))
}

func printStatusTable(result *workflows.StatusResult) {
	if len(result.Files) == 0 {
		fmt.Println(ui.Arrow() + " No declared files found")
		return
	}
	if !result.KeyAvailable {
		fmt.Println(ui.Bang() + " No key available, comparing modification times")
	}

	fmt.Printf("%-40s  %s\n", "FILE", "STATUS")
	for _, f := range result.Files {
		fmt.Printf("%-40s  %s\n", f.Path, formatStatus(f.Status))
	}

	s := result.Summary
	fmt.Println()
	fmt.Printf("%d current, %d stale, %d unencrypted, %d encrypted only, %d tampered, %d malformed\n",
		s.Current, s.Stale, s.Unencrypted, s.EncryptedOnly, s.Tampered, s.Malformed)

	if s.Stale > 0 || s.Unencrypted > 0 {
		fmt.Println(ui.Arrow() + " Run " + ui.Code.Sprint("gitenc encrypt") + " to update the encrypted files")
	}
	if s.EncryptedOnly > 0 {
		fmt.Println(ui.Arrow() + " Run " + ui.Code.Sprint("gitenc decrypt") + " to restore the plaintext files")
	}
}

func formatStatus(status workflows.FileStatus) string {
	switch status {
	case workflows.StatusCurrent:
		return ui.Success.Sprint(string(status))
	case workflows.StatusStale, workflows.StatusUnencrypted:
		return ui.Warning.Sprint(string(status))
	case workflows.StatusTampered, workflows.StatusMalformed:
		return ui.Error.Sprint(string(status))
	default:
		return ui.Info.Sprint(string(status))
	}
}
