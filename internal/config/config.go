// Package config loads and validates application configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures every configuration knob loaded via Viper.
type Config struct {
	Listing ListingConfig `mapstructure:"listing"`
	Offers  OffersConfig  `mapstructure:"offers"`
	Browser BrowserConfig `mapstructure:"browser"`
	DB      DBConfig      `mapstructure:"db"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ListingConfig governs the listing discovery engine.
type ListingConfig struct {
	WaitSeconds int `mapstructure:"wait_seconds"`
}

// OffersConfig governs the detail extraction engine.
type OffersConfig struct {
	WaitSeconds int    `mapstructure:"wait_seconds"`
	BatchSize   int    `mapstructure:"batch_size"`
	BaseURL     string `mapstructure:"base_url"`
}

// BrowserConfig controls the rendering session.
type BrowserConfig struct {
	WindowWidth          int    `mapstructure:"window_width"`
	WindowHeight         int    `mapstructure:"window_height"`
	ActionTimeoutSeconds int    `mapstructure:"action_timeout_seconds"`
	UserAgent            string `mapstructure:"user_agent"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	IDsTable        string `mapstructure:"ids_table"`
	ParamsTable     string `mapstructure:"params_table"`
	MaxConns        int32  `mapstructure:"max_conns"`
}

// MetricsConfig controls the optional metrics listener.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Dir         string `mapstructure:"dir"`
	Development bool   `mapstructure:"development"`
}

// Load builds a Config from an optional file plus the environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("OTODOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listing.wait_seconds", 5)
	v.SetDefault("offers.wait_seconds", 1)
	v.SetDefault("offers.batch_size", 50)
	v.SetDefault("offers.base_url", "https://www.otodom.pl/pl/oferta")
	v.SetDefault("browser.window_width", 1920)
	v.SetDefault("browser.window_height", 1080)
	v.SetDefault("browser.action_timeout_seconds", 30)
	v.SetDefault("db.credentials_file", "database.txt")
	v.SetDefault("db.ids_table", "otodom_offers_ids")
	v.SetDefault("db.params_table", "otodom_offers_params")
	v.SetDefault("db.max_conns", 2)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("logging.dir", "logs")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Listing.WaitSeconds < 0 {
		return fmt.Errorf("listing.wait_seconds must be >= 0")
	}
	if c.Offers.WaitSeconds < 0 {
		return fmt.Errorf("offers.wait_seconds must be >= 0")
	}
	if c.Offers.BatchSize <= 0 {
		return fmt.Errorf("offers.batch_size must be > 0")
	}
	if c.Offers.BaseURL == "" {
		return fmt.Errorf("offers.base_url must be set")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr must be set when metrics are enabled")
	}
	return nil
}

// ListingDelay converts the configured inter-page wait into a Duration.
func (c Config) ListingDelay() time.Duration {
	return time.Duration(c.Listing.WaitSeconds) * time.Second
}

// OfferDelay converts the configured inter-item wait into a Duration.
func (c Config) OfferDelay() time.Duration {
	return time.Duration(c.Offers.WaitSeconds) * time.Second
}

// BrowserActionTimeout converts the configured action timeout into a Duration.
func (c Config) BrowserActionTimeout() time.Duration {
	return time.Duration(c.Browser.ActionTimeoutSeconds) * time.Second
}
