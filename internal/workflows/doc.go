// Package workflows provides high-level orchestration for gitenc commands.
//
// Workflows coordinate the secrets, configs, gitrepo and audit packages to
// implement complete user-facing features. Each workflow handles a single
// command's business logic, independent of CLI concerns like flag parsing,
// spinners, and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Loads configs.Settings for the current repository
//   - Calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else. They never read process-wide state: the
// repository, its configuration and the confirmation prompt are passed in.
//
// # Available Workflows
//
//   - Init: Installs hooks, stores or generates the key, decrypts envelopes
//   - Add: Declares a path inside a marker region of the root ignore file
//   - Key, Generate: Show, store or create the repository key
//   - Encrypt: Encrypts declared files, reusing each envelope's IV
//   - Decrypt: Verifies and decrypts envelopes back to plaintext
//   - Status: Reports whether each envelope matches its plaintext
//   - Log: Reads the audit trail
//
// # Error Handling
//
// Global preconditions (no key, no ignore file, nothing declared) are
// returned as errors from internal/errors. Problems with a single file never
// abort a batch: they are recorded in FileResult.Err, wrapping the sentinel for
// their class, and the file ends in FileFailed or FileSkipped.
//
//	result, err := workflows.Decrypt(ctx, settings, opts)
//	for _, f := range result.Files.Problems() {
//	    if errors.Is(f.Err, kerrors.ErrEnvelopeTampered) {
//	        // warn and move on
//	    }
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// Batches check it between files; files already processed stay processed.
package workflows
