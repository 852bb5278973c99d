package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.FrameMillis != 33 {
		t.Fatalf("Default().FrameMillis = %d, want 33", cfg.FrameMillis)
	}
	if !cfg.Persist {
		t.Fatalf("Default().Persist = false, want true")
	}
}

func TestLoad_MissingFile_UsesDefaults(t *testing.T) {
	t.Setenv("CONSOLE_CLI_STATE", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source != path {
		t.Fatalf("cfg.Source = %q, want %q", cfg.Source, path)
	}
	if cfg.ProcessTimeoutSecs != 30 {
		t.Fatalf("cfg.ProcessTimeoutSecs = %d, want 30", cfg.ProcessTimeoutSecs)
	}
}

func TestLoad_FromTOML(t *testing.T) {
	t.Setenv("CONSOLE_CLI_STATE", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`
state_path = "/tmp/console.db"
frame_ms = 0
persist = false
process_timeout_seconds = 5
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StatePath != "/tmp/console.db" {
		t.Fatalf("cfg.StatePath = %q", cfg.StatePath)
	}
	if cfg.FrameMillis != 33 {
		t.Fatalf("cfg.FrameMillis = %d, want default 33 for invalid value", cfg.FrameMillis)
	}
	if cfg.Persist {
		t.Fatalf("cfg.Persist = true, want false")
	}
	if cfg.ProcessTimeoutSecs != 5 {
		t.Fatalf("cfg.ProcessTimeoutSecs = %d, want 5", cfg.ProcessTimeoutSecs)
	}
}

func TestLoad_EnvOverridesStatePath(t *testing.T) {
	t.Setenv("CONSOLE_CLI_STATE", "/env/state.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StatePath != "/env/state.db" {
		t.Fatalf("cfg.StatePath = %q, want env value", cfg.StatePath)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("frame_ms = ["), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSaveThenLoad(t *testing.T) {
	t.Setenv("CONSOLE_CLI_STATE", "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.FrameMillis = 16
	cfg.LogLevel = "debug"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.FrameMillis != 16 || got.LogLevel != "debug" {
		t.Fatalf("Load after Save = %+v", got)
	}
}

func TestApplyKVOverrides(t *testing.T) {
	cfg := Default()
	got := ApplyKVOverrides(cfg, []string{
		"frame_ms=50",
		"persist=false",
		"timeout=0",
		"state=/x.db",
		"frame_ms=-3",
		"garbage",
	})
	if got.FrameMillis != 50 {
		t.Fatalf("FrameMillis = %d, want 50", got.FrameMillis)
	}
	if got.Persist {
		t.Fatalf("Persist = true, want false")
	}
	if got.ProcessTimeoutSecs != 0 {
		t.Fatalf("ProcessTimeoutSecs = %d, want 0", got.ProcessTimeoutSecs)
	}
	if got.StatePath != "/x.db" {
		t.Fatalf("StatePath = %q", got.StatePath)
	}
}
