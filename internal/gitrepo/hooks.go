package gitrepo

import (
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
)

//go:embed hooks
var hookScripts embed.FS

// HookNames lists the hooks installed by InstallHooks.
func HookNames() ([]string, error) {
	entries, err := hookScripts.ReadDir("hooks")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// InstallHooks writes the bundled hook scripts into <gitDir>/hooks, replacing
// hooks with the same name. It returns the installed paths.
func InstallHooks(gitDir string) ([]string, error) {
	hooksDir := filepath.Join(gitDir, "hooks")
	if err := os.MkdirAll(hooksDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", hooksDir, err)
	}

	names, err := HookNames()
	if err != nil {
		return nil, fmt.Errorf("failed to list bundled hooks: %w", err)
	}

	var installed []string
	for _, name := range names {
		script, err := hookScripts.ReadFile(path.Join("hooks", name))
		if err != nil {
			return installed, fmt.Errorf("failed to read bundled hook %s: %w", name, err)
		}

		dest := filepath.Join(hooksDir, name)
		// #nosec G306 -- hooks must be executable
		if err := os.WriteFile(dest, script, 0755); err != nil {
			return installed, fmt.Errorf("failed to install %s hook: %w", name, err)
		}
		// WriteFile keeps the mode of an existing file.
		if err := os.Chmod(dest, 0755); err != nil {
			return installed, fmt.Errorf("failed to make %s executable: %w", name, err)
		}
		installed = append(installed, dest)
	}
	return installed, nil
}
