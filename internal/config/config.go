package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the application configuration
type Config struct {
	Client ClientConfig `json:"client"`
	Output OutputConfig `json:"output"`
	Log    LogConfig    `json:"log"`
}

// ClientConfig holds configuration for the extraction backend
type ClientConfig struct {
	Backend string `json:"backend"`  // openai or ollama
	BaseURL string `json:"base_url"` // empty selects the backend default
	Model   string `json:"model"`
}

// OutputConfig holds configuration for result rendering
type OutputConfig struct {
	Format string `json:"format"` // txt or json
}

// LogConfig holds configuration for logging
type LogConfig struct {
	Level string `json:"level"`
	File  string `json:"file"` // optional rotated log file
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Client: ClientConfig{
			Backend: "openai",
			Model:   "gpt-4o",
		},
		Output: OutputConfig{
			Format: "txt",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Client.Backend {
	case "openai", "ollama":
	default:
		return fmt.Errorf("client.backend must be openai or ollama")
	}

	if c.Client.Model == "" {
		return fmt.Errorf("client.model cannot be empty")
	}

	switch c.Output.Format {
	case "txt", "json":
	default:
		return fmt.Errorf("output.format must be txt or json")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "ocr-extract", "config.json")
}
