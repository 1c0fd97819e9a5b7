package cmd

import (
	logger "github.com/PolarWolf314/gitenc/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose   bool
	debug     bool
	assumeYes bool
	Logger    logger.Logger

	RootCmd = &cobra.Command{
		Use:   "gitenc",
		Short: "Encrypt selected files of a git repository",
		Long: `gitenc keeps secrets in a git repository encrypted.

Files are declared between marker comments in .gitignore:

  #start:enc
  .env
  config/credentials/
  secret.env*
  #end:enc

The plaintext stays ignored while an encrypted copy (.env.enc) is committed.
Run 'gitenc init' once per clone to install the git hooks and set up the key.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing %s command with verbose=%t, debug=%t, yes=%t", cmd.Name(), verbose, debug, assumeYes)
		},
	}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	RootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to every confirmation prompt")

	RootCmd.AddCommand(initCmd)
	RootCmd.AddCommand(addCmd)
	RootCmd.AddCommand(keyCmd)
	RootCmd.AddCommand(generateCmd)
	RootCmd.AddCommand(encryptCmd)
	RootCmd.AddCommand(decryptCmd)
	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(logCmd)
}

// Helper functions for testing

// GetRootCmd returns the RootCmd for testing.
func GetRootCmd() *cobra.Command {
	return RootCmd
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	assumeYes = false
	resetKeyFlags()
	resetEncryptCommandState()
	resetDecryptCommandState()
	resetGenerateCommandState()
	resetStatusCommandState()
	resetLogCommandState()
}

// SetVerbose sets the verbose flag for testing.
func SetVerbose(v bool) {
	verbose = v
}

// SetDebug sets the debug flag for testing.
func SetDebug(d bool) {
	debug = d
}

// SetLogger sets the logger for testing.
func SetLogger(l logger.Logger) {
	Logger = l
}
