package config

import (
	"testing"

	"bite/internal/testutil"
)

func TestDefaultConfig(t *testing.T) {
	defer testutil.WithEnv(t, "SHELL", "/bin/zsh")()
	cfg := Default()
	if cfg.Shell.Default != "/bin/zsh" {
		t.Fatalf("shell = %q, want /bin/zsh", cfg.Shell.Default)
	}
	if cfg.Screen.ScrollbackLines != 10000 {
		t.Fatalf("scrollback = %d, want 10000", cfg.Screen.ScrollbackLines)
	}
	if cfg.Shell.Pipefail {
		t.Fatal("pipefail should default to false")
	}
}

func TestLoadFallsBackToDefaultWhenFileMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Screen.ScrollbackLines != 10000 {
		t.Fatalf("scrollback = %d, want default 10000", cfg.Screen.ScrollbackLines)
	}
}
