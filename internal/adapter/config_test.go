package adapter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, SourceTypeSteam, cfg.Source.Type)
	assert.Equal(t, "https://api.steampowered.com", cfg.Source.BaseURL)
	assert.Equal(t, 100, cfg.Source.BatchSize)
	assert.Equal(t, 60*time.Second, cfg.Source.Timeout)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.False(t, cfg.IsConfigured())
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
source:
  api_key: abc123
  user_id: "76561198000000000"
  batch_size: 25
  timeout: 15s
store:
  path: /tmp/backlog
launcher:
  command: steam
  args: ["-silent"]
ui:
  default_sort: 3
  default_filter: 2
`), 0644))

	cfg, err := loadConfig(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "abc123", cfg.Source.APIKey)
	assert.Equal(t, "76561198000000000", cfg.Source.UserID)
	assert.Equal(t, 25, cfg.Source.BatchSize)
	assert.Equal(t, 15*time.Second, cfg.Source.Timeout)
	assert.Equal(t, "/tmp/backlog", cfg.Store.Path)
	assert.Equal(t, "steam", cfg.Launcher.Command)
	assert.Equal(t, []string{"-silent"}, cfg.Launcher.Args)
	assert.Equal(t, 3, cfg.UI.DefaultSort)
	assert.Equal(t, 2, cfg.UI.DefaultFilter)
	assert.True(t, cfg.IsConfigured())

	// Unset keys keep their defaults
	assert.Equal(t, "https://api.steampowered.com", cfg.Source.BaseURL)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("BACKLOG_SOURCE_API_KEY", "from-env")
	t.Setenv("BACKLOG_SOURCE_BATCH_SIZE", "7")

	cfg, err := loadConfig(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Source.APIKey)
	assert.Equal(t, 7, cfg.Source.BatchSize)
}

func TestLoadConfigInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source: [unterminated"), 0644))

	_, err := loadConfig(viper.New(), path)
	assert.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Source.APIKey = "k"
	cfg.Source.UserID = "42"
	cfg.Source.Timeout = 90 * time.Second
	cfg.Launcher.Command = "steam"
	cfg.Launcher.Args = []string{"-applaunch"}
	cfg.UI.DefaultSort = 1

	require.NoError(t, writeConfig(viper.New(), cfg, cfg.Source.APIKey, path))

	loaded, err := loadConfig(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestSaveConfigKeepsEnvironmentKeyOutOfFile(t *testing.T) {
	t.Setenv("STEAM_API_KEY", "ENVSECRET123")
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := loadConfig(viper.New(), path)
	require.NoError(t, err)
	require.Equal(t, "ENVSECRET123", cfg.Source.APIKey)

	cfg.Source.UserID = "76561198000000000"
	require.NoError(t, saveConfig(viper.New(), cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "ENVSECRET123")
	assert.Contains(t, string(data), "76561198000000000")
}

func TestSaveConfigKeepsStoredKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	require.NoError(t, writeConfig(viper.New(), cfg, "FILEKEY", path))

	// A key from elsewhere does not replace the saved one
	cfg.Source.APIKey = "OTHERKEY"
	cfg.Source.UserID = "42"
	require.NoError(t, saveConfig(viper.New(), cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "FILEKEY")
	assert.NotContains(t, string(data), "OTHERKEY")
}

func TestLoadConfigSteamKeyAlias(t *testing.T) {
	t.Setenv("BACKLOG_SOURCE_API_KEY", "")
	os.Unsetenv("BACKLOG_SOURCE_API_KEY")
	t.Setenv("STEAM_API_KEY", "steam-key")

	cfg, err := loadConfig(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "steam-key", cfg.Source.APIKey)
}

func TestLoadConfigDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BACKLOG_SOURCE_USER_ID=76561198000000001\n"), 0644))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// Register cleanup for the variable godotenv is about to set
	t.Setenv("BACKLOG_SOURCE_USER_ID", "")
	os.Unsetenv("BACKLOG_SOURCE_USER_ID")

	cfg, err := loadConfig(viper.New(), filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "76561198000000001", cfg.Source.UserID)
}
