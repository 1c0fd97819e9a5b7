// Package configs loads the per-repository settings every gitenc command runs with.
//
// Settings are derived from the git repository that contains the working
// directory:
//
//   - RepoRoot: the working tree root
//   - SecretsDir: .git/secrets, holding the key (never committed)
//   - AuditPath: .git/gitenc/audit.jsonl
//   - Config: .gitenc.toml at the root, or DefaultConfig when absent
//
// There is no package level state. Commands call LoadSettings once and pass
// the result to the workflows.
//
// # Project Configuration
//
//	[encryption]
//	suffix = ".enc"
//	ignore_file = ".gitignore"
//	expand_directories = true
//	glob_patterns = true
//
//	[discovery]
//	skip_dirs = ["node_modules"]
package configs
