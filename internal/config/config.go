package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

const (
	dirPerm  = 0755 // Standard directory permissions (rwxr-xr-x)
	filePerm = 0644 // Standard file permissions (rw-r--r--)
)

// Config represents the complete configuration for lumiere.
type Config struct {
	Window     WindowConfig     `mapstructure:"window" yaml:"window" json:"window"`
	Playback   PlaybackConfig   `mapstructure:"playback" yaml:"playback" json:"playback"`
	History    HistoryConfig    `mapstructure:"history" yaml:"history" json:"history"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging" json:"logging"`
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database" json:"database"`
	Appearance AppearanceConfig `mapstructure:"appearance" yaml:"appearance" json:"appearance"`
}

// WindowConfig holds window presentation preferences.
type WindowConfig struct {
	Fullscreen bool `mapstructure:"fullscreen" yaml:"fullscreen" json:"fullscreen"`
	Width      int  `mapstructure:"width" yaml:"width" json:"width"`
	Height     int  `mapstructure:"height" yaml:"height" json:"height"`
}

// PlaybackConfig holds pipeline preferences.
type PlaybackConfig struct {
	// Subtitles enables the subtitle overlay when the stream carries text.
	Subtitles bool `mapstructure:"subtitles" yaml:"subtitles" json:"subtitles"`
	// Volume is the initial playback volume, 0.0 to 1.0.
	Volume float64 `mapstructure:"volume" yaml:"volume" json:"volume"`
}

// HistoryConfig holds playback history configuration.
type HistoryConfig struct {
	Enabled    bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	MaxEntries int  `mapstructure:"max_entries" yaml:"max_entries" json:"max_entries"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path" json:"path"`
}

// AppearanceConfig holds terminal UI appearance settings.
type AppearanceConfig struct {
	DarkPalette ColorPalette `mapstructure:"dark_palette" yaml:"dark_palette" json:"dark_palette"`
}

// ColorPalette defines the colors used by the CLI output. An empty palette
// falls back to the built-in dark theme.
type ColorPalette struct {
	Background     string `mapstructure:"background" yaml:"background" json:"background"`
	Surface        string `mapstructure:"surface" yaml:"surface" json:"surface"`
	SurfaceVariant string `mapstructure:"surface_variant" yaml:"surface_variant" json:"surface_variant"`
	Text           string `mapstructure:"text" yaml:"text" json:"text"`
	Muted          string `mapstructure:"muted" yaml:"muted" json:"muted"`
	Accent         string `mapstructure:"accent" yaml:"accent" json:"accent"`
	Border         string `mapstructure:"border" yaml:"border" json:"border"`
}

// DefaultConfig returns the configuration used when no file exists yet.
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Fullscreen: false,
			Width:      1280,
			Height:     720,
		},
		Playback: PlaybackConfig{
			Subtitles: false,
			Volume:    1.0,
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: 1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Manager handles configuration loading, watching, and reloading.
type Manager struct {
	config    *Config
	viper     *viper.Viper
	mu        sync.RWMutex
	callbacks []func(*Config)
	watching  bool
}

// NewManager creates a new configuration manager.
func NewManager() (*Manager, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")

	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine config directory: %w\nCheck XDG_CONFIG_HOME environment variable or HOME directory", err)
	}
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Current directory for development

	v.SetEnvPrefix("LUMIERE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Short forms for the logging env vars, matching what the logger
	// bootstrap reads before config is available.
	if err := v.BindEnv("logging.level", "LUMIERE_LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("failed to bind LUMIERE_LOG_LEVEL: %w", err)
	}
	if err := v.BindEnv("logging.format", "LUMIERE_LOG_FORMAT"); err != nil {
		return nil, fmt.Errorf("failed to bind LUMIERE_LOG_FORMAT: %w", err)
	}

	return &Manager{
		viper:     v,
		callbacks: make([]func(*Config), 0),
	}, nil
}

// Load loads the configuration from file and environment variables.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to ensure directories: %w", err)
	}

	m.setDefaults()

	if err := m.readConfigFile(); err != nil {
		return err
	}

	config, err := m.unmarshalConfig()
	if err != nil {
		return err
	}
	if err := ensureDatabasePath(config); err != nil {
		return err
	}
	normalizeConfig(config)

	if err := validateConfig(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	m.config = config
	return nil
}

func (m *Manager) readConfigFile() error {
	if err := m.viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			if createErr := m.createDefaultConfig(); createErr != nil {
				configDir, _ := GetConfigDir()
				return fmt.Errorf(
					"failed to create default config at %s: %w\nTry creating the directory manually or check permissions",
					configDir,
					createErr,
				)
			}
			if rereadErr := m.viper.ReadInConfig(); rereadErr != nil {
				return fmt.Errorf(
					"failed to read newly created config file: %w",
					rereadErr,
				)
			}
		} else {
			configFile := m.viper.ConfigFileUsed()
			if configFile == "" {
				configDir, _ := GetConfigDir()
				configFile = filepath.Join(configDir, "config.toml")
			}
			return fmt.Errorf("failed to read config file at %s: %w\nCheck the file format (must be valid TOML) and permissions", configFile, err)
		}
	}
	return nil
}

func (m *Manager) unmarshalConfig() (*Config, error) {
	config := &Config{}
	if err := m.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf(
			"failed to parse config file at %s: %w\nCheck for syntax errors, invalid values, or type mismatches",
			m.viper.ConfigFileUsed(),
			err,
		)
	}
	return config, nil
}

func ensureDatabasePath(config *Config) error {
	if config.Database.Path != "" {
		return nil
	}
	dbPath, err := GetDatabaseFile()
	if err != nil {
		return fmt.Errorf("failed to get database path: %w", err)
	}
	config.Database.Path = dbPath
	return nil
}

func normalizeConfig(config *Config) {
	config.Logging.Level = strings.ToLower(strings.TrimSpace(config.Logging.Level))
	config.Logging.Format = strings.ToLower(strings.TrimSpace(config.Logging.Format))
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.Format == "" {
		config.Logging.Format = "console"
	}
}

// setDefaults sets default configuration values in Viper.
func (m *Manager) setDefaults() {
	defaults := DefaultConfig()

	m.viper.SetDefault("window.fullscreen", defaults.Window.Fullscreen)
	m.viper.SetDefault("window.width", defaults.Window.Width)
	m.viper.SetDefault("window.height", defaults.Window.Height)

	m.viper.SetDefault("playback.subtitles", defaults.Playback.Subtitles)
	m.viper.SetDefault("playback.volume", defaults.Playback.Volume)

	m.viper.SetDefault("history.enabled", defaults.History.Enabled)
	m.viper.SetDefault("history.max_entries", defaults.History.MaxEntries)

	m.viper.SetDefault("logging.level", defaults.Logging.Level)
	m.viper.SetDefault("logging.format", defaults.Logging.Format)
}

// Get returns the current configuration (thread-safe).
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	configCopy := *m.config
	return &configCopy
}

// GetConfigFile returns the path to the configuration file being used.
func (m *Manager) GetConfigFile() string {
	return m.viper.ConfigFileUsed()
}

// createDefaultConfig creates a default configuration file along with its
// JSON schema.
func (m *Manager) createDefaultConfig() error {
	configFile, err := GetConfigFile()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configFile), dirPerm); err != nil {
		return err
	}

	m.viper.SetConfigType("toml")
	if err := m.viper.SafeWriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Created default configuration file: %s\n", configFile)

	if err := GenerateSchemaFile(); err != nil {
		// The schema is a convenience for editors; its absence is not fatal.
		fmt.Fprintf(os.Stderr, "warning: could not write config schema: %v\n", err)
	}

	return nil
}

// Global configuration manager instance
var globalManager *Manager
var globalManagerOnce sync.Once

// Init initializes the global configuration manager.
func Init() error {
	var err error
	globalManagerOnce.Do(func() {
		globalManager, err = NewManager()
		if err != nil {
			return
		}
		err = globalManager.Load()
	})
	return err
}

// Get returns the global configuration.
func Get() *Config {
	if globalManager == nil {
		// Return defaults if not initialized
		return DefaultConfig()
	}
	return globalManager.Get()
}

// GetManager returns the global configuration manager.
// This is useful for accessing watcher functionality.
func GetManager() *Manager {
	return globalManager
}
