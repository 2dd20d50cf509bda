// Package ui provides the visual styling for the ragchat terminal client,
// with light and dark variants of one palette.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	// Light mode (default)
	LightBackground = lipgloss.Color("#f4f5f6")
	LightForeground = lipgloss.Color("#1b2a41")
	LightPrimary    = lipgloss.Color("#1b2a41")
	LightAccent     = lipgloss.Color("#2f6fde")
	LightMuted      = lipgloss.Color("#8a94a3")
	LightBorder     = lipgloss.Color("#c9ced6")
	LightUserBubble = lipgloss.Color("#dbe7fb")

	// Dark mode
	DarkBackground = lipgloss.Color("#141d2b")
	DarkForeground = lipgloss.Color("#eceff4")
	DarkPrimary    = lipgloss.Color("#7aa7f5")
	DarkAccent     = lipgloss.Color("#7aa7f5")
	DarkMuted      = lipgloss.Color("#6b7688")
	DarkBorder     = lipgloss.Color("#2a3850")
	DarkUserBubble = lipgloss.Color("#22324d")

	// Semantic colors (same in both modes)
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#8BC34A")
	Warning     = lipgloss.Color("#FFC107")
)

// Theme holds the current color scheme
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	UserBubble lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
		UserBubble: LightUserBubble,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		UserBubble: DarkUserBubble,
		IsDark:     true,
	}
}

// DetectTheme picks dark mode from RAGCHAT_DARK_MODE=1 or a dark COLORFGBG
// background, and light mode otherwise.
func DetectTheme() Theme {
	if os.Getenv("RAGCHAT_DARK_MODE") == "1" {
		return DarkTheme()
	}

	// COLORFGBG is "foreground;background"; indexes 0-6 and 8 are dark.
	if parts := strings.Split(os.Getenv("COLORFGBG"), ";"); len(parts) == 2 {
		if bg, err := strconv.Atoi(parts[1]); err == nil {
			if (bg >= 0 && bg <= 6) || bg == 8 {
				return DarkTheme()
			}
		}
	}

	return LightTheme()
}

// ThemeFor forces the dark theme when forceDark is set and detects it
// otherwise.
func ThemeFor(forceDark bool) Theme {
	if forceDark {
		return DarkTheme()
	}
	return DetectTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	// Layout
	Header lipgloss.Style
	Footer lipgloss.Style

	// Transcript
	UserMessage lipgloss.Style
	AIMessage   lipgloss.Style
	Timestamp   lipgloss.Style

	// Input
	Prompt        lipgloss.Style
	PromptLoading lipgloss.Style
	InputBox      lipgloss.Style
	InputFocused  lipgloss.Style

	// Upload zone
	Zone            lipgloss.Style
	ZoneHighlighted lipgloss.Style
	ZoneTitle       lipgloss.Style
	Placeholder     lipgloss.Style

	// Upload status lines
	StatusPending lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusFailure lipgloss.Style

	Spinner lipgloss.Style
	Muted   lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	zone := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	input := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		UserMessage: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Background(theme.UserBubble).
			Padding(0, 1),

		AIMessage: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(theme.Accent),

		Timestamp: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Prompt: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		// Dimmed send control while a request is in flight.
		PromptLoading: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Faint(true),

		InputBox:     input,
		InputFocused: input.BorderForeground(theme.Accent),

		Zone: zone,
		ZoneHighlighted: zone.
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(theme.Accent),

		ZoneTitle: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Placeholder: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		StatusPending: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		StatusSuccess: lipgloss.NewStyle().
			Foreground(theme.Muted),

		StatusFailure: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),
	}
}

// DefaultStyles returns styles for the detected theme
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// RenderDivider returns a horizontal divider
func (s Styles) RenderDivider(width int) string {
	if width < 1 {
		return ""
	}
	return s.Muted.Render(strings.Repeat("─", width))
}
