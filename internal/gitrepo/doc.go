// Package gitrepo wraps the git operations gitenc needs: finding the
// repository root, installing hooks and staging encrypted files.
//
// Repository discovery and staging use go-git, so no git binary is required.
// Hooks are shell scripts bundled into the binary and call back into gitenc:
//
//   - pre-commit: gitenc encrypt --git
//   - post-merge, post-checkout: gitenc decrypt
package gitrepo
