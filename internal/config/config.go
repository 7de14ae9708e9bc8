package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config is the application configuration, loaded from a YAML file.
type Config struct {
	App     AppConfig    `yaml:"app"`
	Babble  BabbleConfig `yaml:"babble"`
	Mcp     McpConfig    `yaml:"mcp"`
	Sources []string     `yaml:"sources"`
}

// AppConfig holds server and storage settings.
type AppConfig struct {
	Port                int    `yaml:"port"`
	DBPath              string `yaml:"db_path"`
	FetchTimeoutSeconds int    `yaml:"fetch_timeout_seconds"`
}

// BabbleConfig holds the generation parameters.
type BabbleConfig struct {
	Order               int     `yaml:"order"`          // n-gram order, at least 2
	ContextWindow       int     `yaml:"context_window"` // words shown around a match in provenance output
	MaxLen              int     `yaml:"max_len"`        // upper bound for the random target length
	Times               int     `yaml:"times"`          // best-of trials per generation
	AnswerProbability   float64 `yaml:"answer_probability"`
	AnswerCooldownHours float64 `yaml:"answer_cooldown_hours"`
}

// McpConfig holds the MCP tool server settings.
type McpConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GetAddress returns the MCP listen address.
func (m McpConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", m.Host, m.Port)
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Port:                8080,
			DBPath:              "babble.db",
			FetchTimeoutSeconds: 30,
		},
		Babble: BabbleConfig{
			Order:               3,
			ContextWindow:       5,
			MaxLen:              20,
			Times:               5,
			AnswerProbability:   0.5,
			AnswerCooldownHours: 24,
		},
		Mcp: McpConfig{
			Host: "localhost",
			Port: 8081,
		},
		Sources: []string{"http://www.gutenberg.org/cache/epub/2229/pg2229.txt"},
	}
}

// LoadConfig reads and validates the configuration at path. Missing fields
// keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate enforces the configuration contract once, at the boundary.
func (c *Config) Validate() error {
	if c.Babble.Order < 2 {
		return fmt.Errorf("babble.order must be at least 2, got %d", c.Babble.Order)
	}
	if c.Babble.ContextWindow < 0 {
		return fmt.Errorf("babble.context_window must not be negative, got %d", c.Babble.ContextWindow)
	}
	if c.Babble.MaxLen < 1 {
		return fmt.Errorf("babble.max_len must be positive, got %d", c.Babble.MaxLen)
	}
	if c.Babble.Times < 1 {
		return fmt.Errorf("babble.times must be positive, got %d", c.Babble.Times)
	}
	if c.Babble.AnswerProbability < 0 || c.Babble.AnswerProbability > 1 {
		return fmt.Errorf("babble.answer_probability must be in [0,1], got %v", c.Babble.AnswerProbability)
	}
	if c.Babble.AnswerCooldownHours < 0 {
		return fmt.Errorf("babble.answer_cooldown_hours must not be negative, got %v", c.Babble.AnswerCooldownHours)
	}
	if c.App.Port <= 0 {
		return fmt.Errorf("app.port must be positive, got %d", c.App.Port)
	}
	return nil
}
