package adapter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// SourceType identifies the owned-games backend
type SourceType string

const (
	SourceTypeSteam SourceType = "steam"
)

// Config holds all application configuration
type Config struct {
	Source   SourceConfig   `mapstructure:"source"`
	Store    StoreConfig    `mapstructure:"store"`
	Launcher LauncherConfig `mapstructure:"launcher"`
	UI       UIConfig       `mapstructure:"ui"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// SourceConfig holds owned-games service configuration
type SourceConfig struct {
	Type      SourceType    `mapstructure:"type"`       // "steam"
	APIKey    string        `mapstructure:"api_key"`    // Steam Web API key
	BaseURL   string        `mapstructure:"base_url"`   // Overrides the public API host
	UserID    string        `mapstructure:"user_id"`    // Default steamid64 for sync
	BatchSize int           `mapstructure:"batch_size"` // App ids per metadata request
	Timeout   time.Duration `mapstructure:"timeout"`    // Per-request HTTP timeout
}

// StoreConfig holds catalog storage configuration
type StoreConfig struct {
	Path string `mapstructure:"path"` // Directory holding backlog.db; empty = memory only
}

// LauncherConfig holds the command used to open steam:// URLs
type LauncherConfig struct {
	Command string   `mapstructure:"command"` // Empty = system default (open/xdg-open/start)
	Args    []string `mapstructure:"args"`
}

// UIConfig holds defaults for listing and the live view
type UIConfig struct {
	DefaultSort   int `mapstructure:"default_sort"`   // 0-3, see domain.SortAxis
	DefaultFilter int `mapstructure:"default_filter"` // 0-2, see domain.FilterAxis
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Type:      SourceTypeSteam,
			BaseURL:   "https://api.steampowered.com",
			BatchSize: 100,
			Timeout:   60 * time.Second,
		},
		Store: StoreConfig{
			Path: defaultDataPath(),
		},
		Launcher: LauncherConfig{
			Args: []string{},
		},
		UI: UIConfig{
			DefaultSort:   0,
			DefaultFilter: 0,
		},
		Logging: LoggingConfig{
			File:       defaultLogPath(),
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "backlog", "backlog.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "backlog", "backlog.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "backlog")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "backlog")
	}
}

// defaultDataPath returns the default catalog directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "backlog", "data")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "backlog", "data")
	}
}

// LoadConfig loads configuration from file and environment.
// configFile overrides the search path when non-empty.
func LoadConfig(configFile string) (*Config, error) {
	return loadConfig(viper.GetViper(), configFile)
}

func loadConfig(v *viper.Viper, configFile string) (*Config, error) {
	cfg := DefaultConfig()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	// Environment variable overrides (BACKLOG_SOURCE_API_KEY, ...)
	loadEnvFiles()
	v.SetEnvPrefix("BACKLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, cfg)
	// The key is commonly exported under Steam's own name
	_ = v.BindEnv("source.api_key", "BACKLOG_SOURCE_API_KEY", "STEAM_API_KEY")

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(configFile != "" && errors.Is(err, fs.ErrNotExist)) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// loadEnvFiles loads variables from .env files in the working directory
// and the config directory. Variables already set in the environment win,
// and the working directory wins over the config directory.
func loadEnvFiles() {
	for _, envFile := range []string{
		".env",
		filepath.Join(defaultConfigPath(), ".env"),
	} {
		_ = godotenv.Load(envFile)
	}
}

// setDefaults registers every key with viper so environment overrides
// reach Unmarshal even when the config file omits them.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("source.type", string(cfg.Source.Type))
	v.SetDefault("source.api_key", cfg.Source.APIKey)
	v.SetDefault("source.base_url", cfg.Source.BaseURL)
	v.SetDefault("source.user_id", cfg.Source.UserID)
	v.SetDefault("source.batch_size", cfg.Source.BatchSize)
	v.SetDefault("source.timeout", cfg.Source.Timeout)
	v.SetDefault("store.path", cfg.Store.Path)
	v.SetDefault("launcher.command", cfg.Launcher.Command)
	v.SetDefault("launcher.args", cfg.Launcher.Args)
	v.SetDefault("ui.default_sort", cfg.UI.DefaultSort)
	v.SetDefault("ui.default_filter", cfg.UI.DefaultFilter)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.max_size_mb", cfg.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", cfg.Logging.MaxBackups)
}

// SaveConfig saves the configuration to configFile, or to the default
// config file when configFile is empty. The API key already in the file is
// kept as is; cfg.Source.APIKey may have come from the environment and is
// only written by SaveAPIKey.
func SaveConfig(cfg *Config, configFile string) error {
	if configFile == "" {
		configFile = DefaultConfigFile()
	}
	return saveConfig(viper.GetViper(), cfg, configFile)
}

// SaveAPIKey sets the API key and saves it along with the rest of cfg
func SaveAPIKey(cfg *Config, key, configFile string) error {
	if configFile == "" {
		configFile = DefaultConfigFile()
	}
	cfg.Source.APIKey = key
	return writeConfig(viper.GetViper(), cfg, key, configFile)
}

// DefaultConfigFile returns the path used when no --config flag is given
func DefaultConfigFile() string {
	return filepath.Join(defaultConfigPath(), "config.yaml")
}

func saveConfig(v *viper.Viper, cfg *Config, configFile string) error {
	return writeConfig(v, cfg, storedAPIKey(configFile), configFile)
}

// storedAPIKey returns the key saved in configFile, or "" if there is none
func storedAPIKey(configFile string) string {
	stored := viper.New()
	stored.SetConfigFile(configFile)
	if err := stored.ReadInConfig(); err != nil {
		return ""
	}
	return stored.GetString("source.api_key")
}

// writeConfig writes cfg with apiKey as the stored key. The file holds a
// secret, so it is readable by the owner only.
func writeConfig(v *viper.Viper, cfg *Config, apiKey, configFile string) error {
	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	v.Set("source.type", string(cfg.Source.Type))
	v.Set("source.api_key", apiKey)
	v.Set("source.base_url", cfg.Source.BaseURL)
	v.Set("source.user_id", cfg.Source.UserID)
	v.Set("source.batch_size", cfg.Source.BatchSize)
	v.Set("source.timeout", cfg.Source.Timeout.String())

	v.Set("store.path", cfg.Store.Path)

	v.Set("launcher.command", cfg.Launcher.Command)
	v.Set("launcher.args", cfg.Launcher.Args)

	v.Set("ui.default_sort", cfg.UI.DefaultSort)
	v.Set("ui.default_filter", cfg.UI.DefaultFilter)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.max_size_mb", cfg.Logging.MaxSizeMB)
	v.Set("logging.max_backups", cfg.Logging.MaxBackups)

	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Chmod(configFile, 0600); err != nil {
		return fmt.Errorf("failed to restrict config file: %w", err)
	}

	return nil
}

// IsConfigured returns true if an API key is set
func (c *Config) IsConfigured() bool {
	return c.Source.APIKey != ""
}
