package config

import "ragchat/internal/logging"

// LoggingConfig configures logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`           // Master toggle - false = no logging
	Level      string          `yaml:"level"`                // debug, info, warn, error
	Format     string          `yaml:"format"`               // json, console
	Dir        string          `yaml:"dir"`                  // Log directory
	Categories map[string]bool `yaml:"categories,omitempty"` // Per-category toggles
}

// IsCategoryEnabled returns whether logging is enabled for a category.
// Returns false if debug_mode is false.
// Returns true if debug_mode is true and category is enabled (or not specified).
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if !c.DebugMode {
		return false
	}
	enabled, exists := c.Categories[category]
	return !exists || enabled
}

// Settings converts the config section into logging settings.
func (c *LoggingConfig) Settings() logging.Settings {
	return logging.Settings{
		DebugMode:  c.DebugMode,
		Level:      c.Level,
		Format:     c.Format,
		Categories: c.Categories,
	}
}
