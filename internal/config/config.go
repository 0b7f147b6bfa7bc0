// Package config loads optional category rule overrides and runtime
// settings. Rules are an ordered configuration object handed to the
// categorizer at construction; nothing in this package is mutated after
// load.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"faturas/internal/categorize"
)

// Config represents the application configuration.
type Config struct {
	DefaultCategory string         `mapstructure:"default_category"`
	Categories      []CategoryRule `mapstructure:"categories"`
	DBPath          string         `mapstructure:"db_path"`
	Port            string         `mapstructure:"port"`
}

// CategoryRule defines one ordered categorization rule. The first rule
// whose keyword set matches a description wins.
type CategoryRule struct {
	Keywords []string `mapstructure:"keywords"`
	Category string   `mapstructure:"category"`
}

// Load reads configuration from a TOML file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	v.SetDefault("default_category", categorize.DefaultCategory)
	v.SetDefault("db_path", "./data/faturas.db")
	v.SetDefault("port", "8080")

	v.SetEnvPrefix("FATURAS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		DefaultCategory: categorize.DefaultCategory,
		DBPath:          "./data/faturas.db",
		Port:            "8080",
	}
}

// Rules converts the configured category rules into categorizer rules,
// preserving declaration order. Returns nil when no rules are
// configured, meaning per-issuer defaults apply.
func (c *Config) Rules() []categorize.Rule {
	if len(c.Categories) == 0 {
		return nil
	}
	rules := make([]categorize.Rule, 0, len(c.Categories))
	for _, r := range c.Categories {
		rules = append(rules, categorize.Rule{Label: r.Category, Keywords: r.Keywords})
	}
	return rules
}
