package configs

import (
	"fmt"
	"os"
	"path/filepath"

	kerrors "github.com/PolarWolf314/gitenc/internal/errors"
	"github.com/PolarWolf314/gitenc/internal/secrets"
)

// ConfigFileName is the optional project configuration file at the repository root.
const ConfigFileName = ".gitenc.toml"

// Config is the project configuration stored in .gitenc.toml.
type Config struct {
	Encryption Encryption `toml:"encryption"`
	Discovery  Discovery  `toml:"discovery"`
}

// Encryption configures how files are declared and where envelopes are written.
type Encryption struct {
	// Suffix is appended to plaintext paths to name envelopes.
	Suffix string `toml:"suffix"`

	// IgnoreFile is the name of the files holding marker regions.
	IgnoreFile string `toml:"ignore_file"`

	// ExpandDirectories makes directory entries cover every file below them.
	ExpandDirectories bool `toml:"expand_directories"`

	// GlobPatterns enables full glob matching for entries.
	GlobPatterns bool `toml:"glob_patterns"`
}

// Discovery configures the search for ignore files.
type Discovery struct {
	// SkipDirs are directory names never searched for ignore files.
	SkipDirs []string `toml:"skip_dirs"`
}

// DefaultConfig returns the configuration used when .gitenc.toml is absent.
func DefaultConfig() *Config {
	return &Config{
		Encryption: Encryption{
			Suffix:            secrets.DefaultSuffix,
			IgnoreFile:        ".gitignore",
			ExpandDirectories: true,
			GlobPatterns:      true,
		},
		Discovery: Discovery{
			SkipDirs: []string{"node_modules"},
		},
	}
}

// LoadConfig reads path over the defaults. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	if err := LoadTOML(path, config); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", kerrors.ErrInvalidProjectConfig, filepath.Base(path), err)
	}

	config.Encryption.Suffix = secrets.NormalizeSuffix(config.Encryption.Suffix)
	if config.Encryption.IgnoreFile == "" {
		config.Encryption.IgnoreFile = DefaultConfig().Encryption.IgnoreFile
	}
	if filepath.Base(config.Encryption.IgnoreFile) != config.Encryption.IgnoreFile {
		return nil, fmt.Errorf("%w: ignore_file must be a file name, got %q", kerrors.ErrInvalidProjectConfig, config.Encryption.IgnoreFile)
	}

	return config, nil
}

// SaveConfig writes config to path.
func SaveConfig(path string, config *Config) error {
	if err := SaveTOML(path, config); err != nil {
		return fmt.Errorf("failed to save project config: %w", err)
	}
	return nil
}

// ResolveOptions returns the path resolution options for one direction.
func (c *Config) ResolveOptions(forEncryption bool) secrets.ResolveOptions {
	return secrets.ResolveOptions{
		ForEncryption:     forEncryption,
		Suffix:            c.Encryption.Suffix,
		ExpandDirectories: c.Encryption.ExpandDirectories,
		GlobPatterns:      c.Encryption.GlobPatterns,
	}
}
