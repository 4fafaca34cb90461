package config

import "fmt"

var (
	validLevels  = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	validFormats = map[string]bool{"console": true, "json": true}
)

// validateConfig checks value ranges after normalization.
func validateConfig(config *Config) error {
	if !validLevels[config.Logging.Level] {
		return fmt.Errorf("logging.level %q is not one of trace, debug, info, warn, error", config.Logging.Level)
	}
	if !validFormats[config.Logging.Format] {
		return fmt.Errorf("logging.format %q is not one of console, json", config.Logging.Format)
	}

	if config.Playback.Volume < 0 || config.Playback.Volume > 1 {
		return fmt.Errorf("playback.volume %v is outside 0.0-1.0", config.Playback.Volume)
	}

	if config.Window.Width <= 0 || config.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d is not positive", config.Window.Width, config.Window.Height)
	}

	if config.History.MaxEntries <= 0 {
		return fmt.Errorf("history.max_entries %d must be positive", config.History.MaxEntries)
	}

	return nil
}
