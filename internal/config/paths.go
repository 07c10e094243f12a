// Package config resolves BiTE's configuration and history file paths,
// loads the TOML configuration file, and watches it for live changes.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Dir returns the bite config directory under the user config base. On
// Linux this typically resolves to $XDG_CONFIG_HOME/bite; on macOS to
// ~/Library/Application Support/bite; falls back to $HOME when
// UserConfigDir is unavailable.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil || strings.TrimSpace(base) == "" {
		if home, herr := os.UserHomeDir(); herr == nil {
			base = home
		} else {
			return "", errors.New("cannot determine config directory")
		}
	}
	return filepath.Join(base, "bite"), nil
}

// FilePath returns the path to the TOML config file.
func FilePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// HistoryPath returns $HOME/.bitehistory, the persisted-state path named
// in spec.md §6.
func HistoryPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".bitehistory"), nil
}
