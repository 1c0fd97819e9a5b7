// Package utils provides shared helpers for gitenc.
//
// # System Utilities
//
//   - GetUsername: returns the current system username (recorded in the audit log)
//
// # String Utilities
//
//   - FormatPaths: formats file paths as a bullet list
//   - RelativePaths: shortens absolute paths for display
//
// # Terminal Utilities
//
//   - IsTerminal, IsStdoutTerminal: terminal detection via golang.org/x/term
//   - PromptConfirm: yes/no prompt used before replacing or generating keys
package utils
