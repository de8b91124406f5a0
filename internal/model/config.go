package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// HistoryConfig controls the local fetch history database.
type HistoryConfig struct {
	// Enabled turns recording of fetch outcomes on or off.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Path is the SQLite file the history is written to.
	Path string `mapstructure:"path" yaml:"path"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	// RestURL is the host-configured REST endpoint. When empty the
	// endpoint is derived from the token.
	RestURL string `mapstructure:"rest_url" yaml:"rest_url"`

	// HostName is the platform name reported to the fetcher
	// (e.g., "Outlook", "OutlookIOS").
	HostName string `mapstructure:"host_name" yaml:"host_name"`

	// TokenKey is the keyring key the bearer token is stored under.
	TokenKey string `mapstructure:"token_key" yaml:"token_key"`

	// HTTPTimeoutSec bounds each REST call. Zero disables the timeout.
	HTTPTimeoutSec int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`

	History HistoryConfig `mapstructure:"history" yaml:"history"`
}

// HTTPTimeout returns the configured timeout as a duration.
func (c *AppConfig) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mha/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "mha", "config.yaml")
}

// DefaultHistoryPath returns ~/.local/share/mha/history.db.
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "history.db")
	}
	return filepath.Join(home, ".local", "share", "mha", "history.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		HostName:       "Outlook",
		TokenKey:       "outlook-rest",
		HTTPTimeoutSec: 30,
		History: HistoryConfig{
			Enabled: true,
			Path:    DefaultHistoryPath(),
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, defaults are used. MHA_* environment
// variables override both (e.g., MHA_REST_URL, MHA_HISTORY_ENABLED).
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("mha")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values.
	def := defaultAppConfig()
	v.SetDefault("rest_url", def.RestURL)
	v.SetDefault("host_name", def.HostName)
	v.SetDefault("token_key", def.TokenKey)
	v.SetDefault("http_timeout_sec", def.HTTPTimeoutSec)
	v.SetDefault("history.enabled", def.History.Enabled)
	v.SetDefault("history.path", def.History.Path)

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.HTTPTimeoutSec < 0 {
		return nil, fmt.Errorf("http_timeout_sec must not be negative, got %d", cfg.HTTPTimeoutSec)
	}
	if cfg.History.Path == "" {
		cfg.History.Path = DefaultHistoryPath()
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("rest_url", cfg.RestURL)
	v.Set("host_name", cfg.HostName)
	v.Set("token_key", cfg.TokenKey)
	v.Set("http_timeout_sec", cfg.HTTPTimeoutSec)
	v.Set("history.enabled", cfg.History.Enabled)
	v.Set("history.path", cfg.History.Path)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
