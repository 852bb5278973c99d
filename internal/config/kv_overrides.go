package config

import (
	"strconv"
	"strings"
)

// ApplyKVOverrides applies free-form -c key=value overrides.
func ApplyKVOverrides(cfg Config, overrides []string) Config {
	if len(overrides) == 0 {
		return cfg
	}
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		switch key {
		case "state_path", "state":
			cfg.StatePath = val
		case "log_path":
			cfg.LogPath = val
		case "log_level":
			cfg.LogLevel = val
		case "frame_ms", "frame-ms":
			if n, err := strconv.Atoi(val); err == nil && n > 0 {
				cfg.FrameMillis = n
			}
		case "persist":
			if b, err := strconv.ParseBool(val); err == nil {
				cfg.Persist = b
			}
		case "process_timeout_seconds", "timeout":
			if n, err := strconv.Atoi(val); err == nil && n >= 0 {
				cfg.ProcessTimeoutSecs = n
			}
		}
	}
	return cfg
}
