package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Global settings
	Format  string `mapstructure:"format"`
	Level   string `mapstructure:"level"`
	Quiet   bool   `mapstructure:"quiet"`
	Verbose bool   `mapstructure:"verbose"`

	// Default values for commands
	Defaults DefaultsConfig `mapstructure:"defaults"`
}

// DefaultsConfig holds default values for various commands
type DefaultsConfig struct {
	// Where agent transcripts live; empty means ~/.claude/projects
	SessionsDir string `mapstructure:"sessions_dir"`

	// Agent binary name used for process matching and spawning
	Agent string `mapstructure:"agent"`

	// Terminal emulator for external spawns; empty means auto-detect
	Terminal string `mapstructure:"terminal"`

	// Spawn mode: "external" or "embedded"
	SpawnMode string `mapstructure:"spawn_mode"`

	// Seconds of transcript freshness treated as a liveness signal
	ActiveThresholdSeconds int `mapstructure:"active_threshold_seconds"`

	// List command defaults
	Limit int `mapstructure:"limit"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Format:  "text",
		Level:   "default",
		Quiet:   false,
		Verbose: false,
		Defaults: DefaultsConfig{
			Agent:                  "claude",
			SpawnMode:              "external",
			ActiveThresholdSeconds: 30,
			Limit:                  50,
		},
	}
}

// Load loads configuration from files and environment
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and type
	v.SetConfigName("ccw")
	v.SetConfigType("yaml")

	// Add config paths (in order of precedence, lowest first)
	// 1. System-wide config
	v.AddConfigPath("/etc/ccw/")
	// 2. User config directory
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, "ccw"))
	}
	// 3. Home directory (as .ccwrc.yaml or .ccw.yaml)
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.SetConfigName(".ccw")
	}
	// 4. Current directory
	v.AddConfigPath(".")

	// Also check for .ccwrc file
	v.SetConfigName(".ccwrc")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}

	// Environment variables
	v.SetEnvPrefix("CCW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Bind specific environment variables
	v.BindEnv("format", "CCW_FORMAT")
	v.BindEnv("level", "CCW_LEVEL")
	v.BindEnv("quiet", "CCW_QUIET")
	v.BindEnv("verbose", "CCW_VERBOSE")
	v.BindEnv("defaults.sessions_dir", "CCW_SESSIONS_DIR")
	v.BindEnv("defaults.agent", "CCW_AGENT")
	v.BindEnv("defaults.terminal", "CCW_TERMINAL")
	v.BindEnv("defaults.spawn_mode", "CCW_SPAWN_MODE")

	// Set defaults
	cfg := Default()
	v.SetDefault("format", cfg.Format)
	v.SetDefault("level", cfg.Level)
	v.SetDefault("quiet", cfg.Quiet)
	v.SetDefault("verbose", cfg.Verbose)
	v.SetDefault("defaults.agent", cfg.Defaults.Agent)
	v.SetDefault("defaults.spawn_mode", cfg.Defaults.SpawnMode)
	v.SetDefault("defaults.active_threshold_seconds", cfg.Defaults.ActiveThresholdSeconds)
	v.SetDefault("defaults.limit", cfg.Defaults.Limit)

	// Try to read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error occurred
			return nil, err
		}
		// Config file not found; use defaults
	}

	// Unmarshal into struct
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ConfigFile returns the path to the config file that was loaded
func ConfigFile() string {
	v := viper.New()

	v.SetConfigName("ccw")
	v.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err == nil {
		return v.ConfigFileUsed()
	}

	// Try .ccwrc
	v.SetConfigName(".ccwrc")
	if err := v.ReadInConfig(); err == nil {
		return v.ConfigFileUsed()
	}

	return ""
}
