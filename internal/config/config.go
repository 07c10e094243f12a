package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is BiTE's TOML-backed configuration, per SPEC_FULL.md §4.6.
type Config struct {
	Screen struct {
		ScrollbackLines int `toml:"scrollback_lines"`
	} `toml:"screen"`
	Shell struct {
		Default  string `toml:"default"`
		Pipefail bool   `toml:"pipefail"`
	} `toml:"shell"`
	Presenter struct {
		Font          string `toml:"font"`
		ComposeVariant string `toml:"compose_variant"`
	} `toml:"presenter"`
}

// Default returns the configuration used when no config file is present.
func Default() Config {
	var c Config
	c.Screen.ScrollbackLines = 10000
	c.Shell.Default = os.Getenv("SHELL")
	if c.Shell.Default == "" {
		c.Shell.Default = "/bin/sh"
	}
	c.Shell.Pipefail = false
	c.Presenter.Font = os.Getenv("BITE_FONT")
	c.Presenter.ComposeVariant = os.Getenv("BITE_FEAT_COMPOSE")
	return c
}

// Load reads and parses the TOML config file, falling back to Default if
// the file does not exist.
func Load() (Config, error) {
	cfg := Default()
	path, err := FilePath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
