package configs

import (
	"fmt"
	"path/filepath"

	"github.com/PolarWolf314/gitenc/internal/gitrepo"
	"github.com/PolarWolf314/gitenc/internal/secrets"
)

// Settings describes one repository. It is built once per command and passed
// to every workflow.
type Settings struct {
	RepoRoot   string
	GitDir     string
	SecretsDir string
	AuditPath  string
	ConfigPath string
	Config     *Config

	repo *gitrepo.Repository
}

// LoadSettings discovers the repository containing dir and loads its configuration.
// It returns ErrNotGitRepository when dir is not inside a repository.
func LoadSettings(dir string) (*Settings, error) {
	repo, err := gitrepo.Discover(dir)
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(repo.Root, ConfigFileName)
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	return &Settings{
		RepoRoot:   repo.Root,
		GitDir:     repo.GitDir,
		SecretsDir: filepath.Join(repo.GitDir, "secrets"),
		AuditPath:  filepath.Join(repo.GitDir, "gitenc", "audit.jsonl"),
		ConfigPath: configPath,
		Config:     config,
		repo:       repo,
	}, nil
}

// KeyStore returns the key store of the repository.
func (s *Settings) KeyStore() *secrets.KeyStore {
	return secrets.NewKeyStore(s.SecretsDir)
}

// RootIgnoreFile returns the ignore file at the repository root.
func (s *Settings) RootIgnoreFile() string {
	return filepath.Join(s.RepoRoot, s.Config.Encryption.IgnoreFile)
}

// IgnoreFiles returns every ignore file in the repository.
func (s *Settings) IgnoreFiles() ([]string, error) {
	files, err := secrets.FindIgnoreFiles(s.RepoRoot, s.Config.Encryption.IgnoreFile, s.Config.Discovery.SkipDirs)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s files: %w", s.Config.Encryption.IgnoreFile, err)
	}
	return files, nil
}

// EncryptedPath returns the envelope path for a plaintext path.
func (s *Settings) EncryptedPath(path string) string {
	return secrets.EncryptedPath(path, s.Config.Encryption.Suffix)
}

// Repository returns the git repository.
func (s *Settings) Repository() *gitrepo.Repository {
	return s.repo
}

// Rel returns path relative to the repository root for display.
func (s *Settings) Rel(path string) string {
	rel, err := filepath.Rel(s.RepoRoot, path)
	if err != nil {
		return path
	}
	return rel
}
