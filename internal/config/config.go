// Package config loads phone2pc settings from defaults, an optional config
// file, PHONE2PC_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// ConfigName is the config file base name, any viper-supported extension.
	ConfigName = "phone2pc"
	// GlobalConfigDir is the per-user config directory under $HOME.
	GlobalConfigDir = ".config/phone2pc"
	// EnvPrefix prefixes environment overrides, e.g. PHONE2PC_PORT.
	EnvPrefix = "PHONE2PC"
)

// Config represents the application configuration
type Config struct {
	// Host is the UDP bind address
	Host string `mapstructure:"host"`

	// Port is the UDP port the phone sends to
	Port int `mapstructure:"port"`

	// Sensitivity scales raw deltas, clamped to [0.1, 5]
	Sensitivity float64 `mapstructure:"sensitivity"`

	// Smoothing is the EMA factor, clamped to [0, 1]
	Smoothing float64 `mapstructure:"smoothing"`

	StatusInterval time.Duration `mapstructure:"status_interval"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	ReadBuffer     int           `mapstructure:"read_buffer"`

	// API contains the local HTTP API settings
	API APIConfig `mapstructure:"api"`

	// Firewall adds an inbound rule for Port on Windows
	Firewall bool `mapstructure:"firewall"`
}

// APIConfig contains HTTP API settings
type APIConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	Token   string `mapstructure:"token"`
}

// DefaultConfig returns a new Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Host:           "0.0.0.0",
		Port:           5000,
		Sensitivity:    1.0,
		Smoothing:      0.7,
		StatusInterval: 5 * time.Second,
		ReadTimeout:    time.Second,
		ReadBuffer:     1 << 20,
		API: APIConfig{
			Enabled: true,
			Addr:    "127.0.0.1:5080",
		},
	}
}

// NewViper returns a viper instance with defaults and env binding set up.
// Callers bind their flags to it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("host", d.Host)
	v.SetDefault("port", d.Port)
	v.SetDefault("sensitivity", d.Sensitivity)
	v.SetDefault("smoothing", d.Smoothing)
	v.SetDefault("status_interval", d.StatusInterval)
	v.SetDefault("read_timeout", d.ReadTimeout)
	v.SetDefault("read_buffer", d.ReadBuffer)
	v.SetDefault("api.enabled", d.API.Enabled)
	v.SetDefault("api.addr", d.API.Addr)
	v.SetDefault("api.token", d.API.Token)
	v.SetDefault("firewall", d.Firewall)
}

// Load reads the config file and returns the merged, validated config along
// with the file used ("" when none). explicit is the --config path; when it
// is empty, phone2pc.* is looked up in the working directory and then in
// ~/.config/phone2pc. A missing file is only an error when explicit.
func Load(v *viper.Viper, explicit string) (*Config, string, error) {
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName(ConfigName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, GlobalConfigDir))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return nil, "", fmt.Errorf("read config: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, "", fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, v.ConfigFileUsed(), nil
}

// Validate rejects values the receiver cannot run with. Sensitivity and
// smoothing are not checked here; the filter clamps them.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return errors.New("config: host must not be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range 1-65535", c.Port)
	}
	if c.StatusInterval <= 0 {
		return fmt.Errorf("config: status_interval must be positive, got %s", c.StatusInterval)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("config: read_timeout must be positive, got %s", c.ReadTimeout)
	}
	if c.ReadBuffer < 0 {
		return fmt.Errorf("config: read_buffer must not be negative, got %d", c.ReadBuffer)
	}
	if c.API.Enabled && strings.TrimSpace(c.API.Addr) == "" {
		return errors.New("config: api.addr must be set when the API is enabled")
	}
	return nil
}
