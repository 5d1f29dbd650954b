// Package config provides configuration management for the pricer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Pricing PricingConfig `mapstructure:"pricing"`
	Parsing ParsingConfig `mapstructure:"parsing"`
	Data    DataConfig    `mapstructure:"data"`
	Store   StoreConfig   `mapstructure:"store"`
	UI      UIConfig      `mapstructure:"ui"`
}

// PricingConfig holds model parameters.
type PricingConfig struct {
	RiskFreeRate  float64 `mapstructure:"risk_free_rate"`
	DividendYield float64 `mapstructure:"dividend_yield"`
}

// ParsingConfig holds shorthand interpretation defaults.
type ParsingConfig struct {
	// RiskReversalOver is the leg bought by default when a risk
	// reversal has no putover/callover modifier: "put" or "call".
	RiskReversalOver string `mapstructure:"risk_reversal_over"`
}

// DataConfig holds market-data source configuration.
type DataConfig struct {
	Mode string `mapstructure:"mode"` // "sim", "terminal"
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// StoreConfig holds order persistence configuration.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
	PayoffSteps  int    `mapstructure:"payoff_steps"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/idb-pricer"
	}
	return filepath.Join(home, ".config", "idb-pricer")
}

// DefaultStorePath returns the default order database path.
func DefaultStorePath() string {
	return filepath.Join(DefaultConfigDir(), "orders.db")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}
	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string, target *Config) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, create template
			return createTemplateConfig(configDir, name)
		}
		return err
	}

	return v.Unmarshal(target)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pricing.risk_free_rate", 0.05)
	v.SetDefault("pricing.dividend_yield", 0.0)
	v.SetDefault("parsing.risk_reversal_over", "call")
	v.SetDefault("data.mode", "sim")
	v.SetDefault("data.host", "localhost")
	v.SetDefault("data.port", 8194)
	v.SetDefault("store.path", DefaultStorePath())
	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "02-Jan-2006")
	v.SetDefault("ui.payoff_steps", 40)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PRICER_DATA_MODE"); v != "" {
		cfg.Data.Mode = v
	}
	if v := os.Getenv("PRICER_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("PRICER_RISK_FREE_RATE"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Pricing.RiskFreeRate = rate
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Pricing.RiskFreeRate < -0.1 || c.Pricing.RiskFreeRate > 0.5 {
		return fmt.Errorf("risk_free_rate must be between -0.1 and 0.5")
	}
	if c.Pricing.DividendYield < 0 || c.Pricing.DividendYield > 0.5 {
		return fmt.Errorf("dividend_yield must be between 0 and 0.5")
	}
	if c.Parsing.RiskReversalOver != "" && c.Parsing.RiskReversalOver != "put" && c.Parsing.RiskReversalOver != "call" {
		return fmt.Errorf("invalid risk_reversal_over: %s (must be 'put' or 'call')", c.Parsing.RiskReversalOver)
	}
	if c.Data.Mode != "" && c.Data.Mode != "sim" && c.Data.Mode != "terminal" {
		return fmt.Errorf("invalid data mode: %s (must be 'sim' or 'terminal')", c.Data.Mode)
	}
	if c.UI.PayoffSteps < 0 {
		return fmt.Errorf("payoff_steps must be non-negative")
	}
	return nil
}

// IsSimMode returns true if the simulated data source is selected.
func (c *Config) IsSimMode() bool {
	return c.Data.Mode != "terminal"
}
