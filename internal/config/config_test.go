package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestDirs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("ENV", "")
	t.Setenv("HOME", dir)
	return dir
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	normalizeConfig(cfg)
	require.NoError(t, validateConfig(cfg))
}

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"badLevel", func(c *Config) { c.Logging.Level = "loud" }},
		{"badFormat", func(c *Config) { c.Logging.Format = "xml" }},
		{"volumeTooHigh", func(c *Config) { c.Playback.Volume = 1.5 }},
		{"volumeNegative", func(c *Config) { c.Playback.Volume = -0.1 }},
		{"zeroWidth", func(c *Config) { c.Window.Width = 0 }},
		{"zeroHistory", func(c *Config) { c.History.MaxEntries = 0 }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, validateConfig(cfg))
		})
	}
}

func TestNormalizeConfig(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	cfg.Logging.Level = "  DEBUG "
	cfg.Logging.Format = "JSON"
	normalizeConfig(cfg)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	empty := &Config{}
	normalizeConfig(empty)
	assert.Equal(t, "info", empty.Logging.Level)
	assert.Equal(t, "console", empty.Logging.Format)
}

func TestManagerLoad_CreatesDefaultConfig(t *testing.T) {
	setTestDirs(t)

	m, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, m.Load())

	cfg := m.Get()
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 1.0, cfg.Playback.Volume)
	assert.True(t, cfg.History.Enabled)
	assert.NotEmpty(t, cfg.Database.Path)

	configFile, err := GetConfigFile()
	require.NoError(t, err)
	_, err = os.Stat(configFile)
	require.NoError(t, err, "default config file must be written")

	schemaFile := filepath.Join(filepath.Dir(configFile), "config.schema.json")
	_, err = os.Stat(schemaFile)
	require.NoError(t, err, "schema file must be written alongside the config")
}

func TestManagerLoad_EnvOverride(t *testing.T) {
	setTestDirs(t)
	t.Setenv("LUMIERE_LOG_LEVEL", "debug")
	t.Setenv("LUMIERE_WINDOW_FULLSCREEN", "true")

	m, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, m.Load())

	cfg := m.Get()
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Window.Fullscreen)
}

func TestManagerLoad_ReadsExistingFile(t *testing.T) {
	setTestDirs(t)

	configDir, err := GetConfigDir()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(configDir, 0o755))

	content := "[playback]\nsubtitles = true\nvolume = 0.5\n\n[window]\nwidth = 640\nheight = 480\n"
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(content), 0o644))

	m, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, m.Load())

	cfg := m.Get()
	assert.True(t, cfg.Playback.Subtitles)
	assert.Equal(t, 0.5, cfg.Playback.Volume)
	assert.Equal(t, 640, cfg.Window.Width)
	// Unspecified sections keep defaults.
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestManagerLoad_RejectsInvalidValues(t *testing.T) {
	setTestDirs(t)

	configDir, err := GetConfigDir()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(configDir, "config.toml"),
		[]byte("[playback]\nvolume = 4.0\n"),
		0o644,
	))

	m, err := NewManager()
	require.NoError(t, err)
	require.Error(t, m.Load())
}

func TestSchemaJSON(t *testing.T) {
	data, err := SchemaJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), "Lumiere Player Configuration")
	assert.Contains(t, string(data), "playback")
}

func TestXDGDirs(t *testing.T) {
	dir := setTestDirs(t)

	dirs, err := GetXDGDirs()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config", "lumiere"), dirs.ConfigHome)
	assert.Equal(t, filepath.Join(dir, "data", "lumiere"), dirs.DataHome)
	assert.Equal(t, filepath.Join(dir, "state", "lumiere"), dirs.StateHome)

	require.NoError(t, EnsureDirectories())
	for _, d := range []string{dirs.ConfigHome, dirs.DataHome, dirs.StateHome} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestXDGDirs_DevMode(t *testing.T) {
	t.Setenv("ENV", "dev")

	wd, err := os.Getwd()
	require.NoError(t, err)

	dirs, err := GetXDGDirs()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, ".dev", "lumiere"), dirs.ConfigHome)
	assert.Equal(t, dirs.ConfigHome, dirs.DataHome)
}
