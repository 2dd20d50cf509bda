package ui

import "testing"

func TestDetectTheme(t *testing.T) {
	t.Setenv("COLORFGBG", "")

	t.Setenv("RAGCHAT_DARK_MODE", "1")
	dark := DetectTheme()
	if !dark.IsDark {
		t.Fatalf("expected dark theme when RAGCHAT_DARK_MODE=1")
	}

	t.Setenv("RAGCHAT_DARK_MODE", "")
	light := DetectTheme()
	if light.IsDark {
		t.Fatalf("expected light theme when RAGCHAT_DARK_MODE is unset")
	}

	t.Setenv("COLORFGBG", "15;0")
	if !DetectTheme().IsDark {
		t.Fatalf("expected dark theme for a black COLORFGBG background")
	}

	t.Setenv("COLORFGBG", "0;15")
	if DetectTheme().IsDark {
		t.Fatalf("expected light theme for a white COLORFGBG background")
	}
}

func TestThemeFor(t *testing.T) {
	t.Setenv("COLORFGBG", "")
	t.Setenv("RAGCHAT_DARK_MODE", "")
	if !ThemeFor(true).IsDark {
		t.Fatalf("expected dark theme when forced")
	}
	if ThemeFor(false).IsDark {
		t.Fatalf("expected detected light theme")
	}
}

func TestRenderDivider(t *testing.T) {
	s := NewStyles(LightTheme())
	if s.RenderDivider(0) != "" {
		t.Fatalf("expected empty divider for zero width")
	}
	if s.RenderDivider(5) == "" {
		t.Fatalf("expected divider output")
	}
}
