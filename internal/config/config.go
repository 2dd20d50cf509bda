package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "ragchat.yaml"

// DefaultBaseURL is the service address used when nothing overrides it.
const DefaultBaseURL = "http://localhost:8000"

// Config holds all ragchat configuration.
type Config struct {
	API      APIConfig      `yaml:"api"`
	UI       UIConfig       `yaml:"ui"`
	Uploader UploaderConfig `yaml:"uploader"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// APIConfig configures the retrieval service client.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	// Timeout per request; "0" or empty disables it.
	Timeout string `yaml:"timeout"`
}

// UploaderConfig configures headless batch uploads.
type UploaderConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: "0",
		},
		UI: *DefaultUIConfig(),
		Uploader: UploaderConfig{
			Concurrency: 4,
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
			Format:    "json",
			Dir:       filepath.Join(".ragchat", "logs"),
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetTimeout returns the request timeout; zero means none.
func (c *Config) GetTimeout() time.Duration {
	t := strings.TrimSpace(c.API.Timeout)
	if t == "" || t == "0" {
		return 0
	}
	d, err := time.ParseDuration(t)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api.base_url %q: must be an absolute http(s) URL", c.API.BaseURL)
	}

	if t := strings.TrimSpace(c.API.Timeout); t != "" && t != "0" {
		d, err := time.ParseDuration(t)
		if err != nil {
			return fmt.Errorf("invalid api.timeout %q: %w", c.API.Timeout, err)
		}
		if d < 0 {
			return fmt.Errorf("invalid api.timeout %q: must not be negative", c.API.Timeout)
		}
	}

	if c.Uploader.Concurrency < 1 {
		return fmt.Errorf("invalid uploader.concurrency %d: must be at least 1", c.Uploader.Concurrency)
	}

	if c.UI.ChatPaneRatio < 0.2 || c.UI.ChatPaneRatio > 0.9 {
		return fmt.Errorf("invalid ui.chat_pane_ratio %.2f: must be between 0.2 and 0.9", c.UI.ChatPaneRatio)
	}

	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid logging.format %q (valid: json, console)", c.Logging.Format)
	}

	return nil
}
