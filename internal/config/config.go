// Package config handles configuration loading and management for huddle.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for huddle.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Google    GoogleConfig    `mapstructure:"google"`
	CalDAV    CalDAVConfig    `mapstructure:"caldav"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Server    ServerConfig    `mapstructure:"server"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// AnthropicConfig holds completion-service settings.
type AnthropicConfig struct {
	APIKey        string `mapstructure:"api_key"`
	Model         string `mapstructure:"model"`
	UseAWSBedrock bool   `mapstructure:"use_aws_bedrock"`
	AWSRegion     string `mapstructure:"aws_region"`
	AWSProfile    string `mapstructure:"aws_profile"`
}

// GoogleConfig holds Google Calendar and Places settings.
type GoogleConfig struct {
	PlacesAPIKey         string `mapstructure:"places_api_key"`
	CalendarClientID     string `mapstructure:"calendar_client_id"`
	CalendarClientSecret string `mapstructure:"calendar_client_secret"`
	CalendarTokenFile    string `mapstructure:"calendar_token_file"`
}

// CalDAVConfig holds CalDAV provider settings for calendars without a
// freebusy API.
type CalDAVConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// CacheConfig selects and configures the cross-turn cache backend.
type CacheConfig struct {
	// Backend is one of memory, sqlite, postgres.
	Backend     string `mapstructure:"backend"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresURL string `mapstructure:"postgres_url"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// SchedulerConfig holds pipeline settings.
type SchedulerConfig struct {
	// PolicyPath points at the alternatives policy YAML; empty means
	// built-in defaults.
	PolicyPath string `mapstructure:"policy_path"`
	// DebugLogPath enables file-backed debug logging when set.
	DebugLogPath string `mapstructure:"debug_log_path"`
	// HorizonDays bounds how far ahead availability is fetched.
	HorizonDays int `mapstructure:"horizon_days"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, GOOGLE_PLACES_API_KEY, ...)
// 2. Project config (.huddle.yaml in current directory or parent)
// 3. User config (~/.config/huddle/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Load project config if present
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			// Merge project config (takes precedence)
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	// Environment variable overrides
	v.AutomaticEnv()
	v.SetEnvPrefix("")

	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("google.places_api_key", "GOOGLE_PLACES_API_KEY")
	v.BindEnv("caldav.password", "HUDDLE_CALDAV_PASSWORD")
	v.BindEnv("cache.postgres_url", "DATABASE_URL")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references
	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	cfg.Google.PlacesAPIKey = expandEnv(cfg.Google.PlacesAPIKey)
	cfg.CalDAV.Password = expandEnv(cfg.CalDAV.Password)
	cfg.Cache.PostgresURL = expandEnv(cfg.Cache.PostgresURL)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	cfg.Google.PlacesAPIKey = expandEnv(cfg.Google.PlacesAPIKey)
	cfg.CalDAV.Password = expandEnv(cfg.CalDAV.Password)
	cfg.Cache.PostgresURL = expandEnv(cfg.Cache.PostgresURL)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.use_aws_bedrock", cfg.Anthropic.UseAWSBedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("anthropic.aws_profile", cfg.Anthropic.AWSProfile)
	v.Set("google.places_api_key", cfg.Google.PlacesAPIKey)
	v.Set("google.calendar_client_id", cfg.Google.CalendarClientID)
	v.Set("google.calendar_client_secret", cfg.Google.CalendarClientSecret)
	v.Set("google.calendar_token_file", cfg.Google.CalendarTokenFile)
	v.Set("caldav.endpoint", cfg.CalDAV.Endpoint)
	v.Set("caldav.username", cfg.CalDAV.Username)
	v.Set("cache.backend", cfg.Cache.Backend)
	v.Set("cache.sqlite_path", cfg.Cache.SQLitePath)
	v.Set("server.addr", cfg.Server.Addr)
	v.Set("scheduler.policy_path", cfg.Scheduler.PolicyPath)
	v.Set("scheduler.debug_log_path", cfg.Scheduler.DebugLogPath)
	v.Set("scheduler.horizon_days", cfg.Scheduler.HorizonDays)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5")
	v.SetDefault("anthropic.use_aws_bedrock", false)

	v.SetDefault("google.calendar_token_file", filepath.Join(getUserConfigDir(), "google-token.json"))

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.sqlite_path", filepath.Join(getUserConfigDir(), "cache.db"))

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("scheduler.horizon_days", 21)
}

// getUserConfigDir returns the XDG config directory for huddle.
func getUserConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "huddle")
	}

	// Fall back to ~/.config/huddle
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "huddle")
	}
	return filepath.Join(home, ".config", "huddle")
}

// findProjectConfig searches for .huddle.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".huddle.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			Model: "claude-sonnet-4-5",
		},
		Google: GoogleConfig{
			CalendarTokenFile: filepath.Join(getUserConfigDir(), "google-token.json"),
		},
		Cache: CacheConfig{
			Backend:    "memory",
			SQLitePath: filepath.Join(getUserConfigDir(), "cache.db"),
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Scheduler: SchedulerConfig{
			HorizonDays: 21,
		},
	}
}
