package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the only persisted config file schema.
type Config struct {
	StatePath          string `toml:"state_path"`
	LogPath            string `toml:"log_path"`
	LogLevel           string `toml:"log_level"`
	FrameMillis        int    `toml:"frame_ms"`
	Persist            bool   `toml:"persist"`
	ProcessTimeoutSecs int    `toml:"process_timeout_seconds"`
	Source             string `toml:"-"`
}

const (
	defaultFrameMillis    = 33
	defaultProcessTimeout = 30
)

func Default() Config {
	return Config{
		StatePath:          DefaultStatePath(),
		LogPath:            "logs/console-cli.log",
		LogLevel:           "info",
		FrameMillis:        defaultFrameMillis,
		Persist:            true,
		ProcessTimeoutSecs: defaultProcessTimeout,
	}
}

func baseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".console-cli")
}

func DefaultPath() string {
	dir := baseDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

func DefaultStatePath() string {
	dir := baseDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "state.db")
}

func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, errors.New("config path is empty and $HOME is not set")
	}
	cfg.Source = path

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg).normalized(), nil
		}
		return cfg, err
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return cfg, err
	}
	return applyEnv(cfg).normalized(), nil
}

func applyEnv(cfg Config) Config {
	if env := strings.TrimSpace(os.Getenv("CONSOLE_CLI_STATE")); env != "" {
		cfg.StatePath = env
	}
	return cfg
}

// normalized 把非法数值恢复为默认值。
func (c Config) normalized() Config {
	if c.FrameMillis <= 0 {
		c.FrameMillis = defaultFrameMillis
	}
	if c.ProcessTimeoutSecs < 0 {
		c.ProcessTimeoutSecs = defaultProcessTimeout
	}
	return c
}
