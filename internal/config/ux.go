package config

// UIConfig holds user interface configuration.
type UIConfig struct {
	// Markdown renders AI replies through glamour instead of plain text.
	Markdown bool `yaml:"markdown"`

	// DarkMode forces the dark theme; otherwise the terminal is probed.
	DarkMode bool `yaml:"dark_mode"`

	// WordWrap is the markdown wrap width (0 = follow the window).
	WordWrap int `yaml:"word_wrap,omitempty"`

	// ChatPaneRatio is the chat pane share of the window width (0.0-1.0).
	ChatPaneRatio float64 `yaml:"chat_pane_ratio"`
}

// DefaultUIConfig returns sensible UI defaults.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Markdown:      false,
		DarkMode:      false,
		WordWrap:      0,
		ChatPaneRatio: 0.67, // 2/3 chat, 1/3 upload zone
	}
}
