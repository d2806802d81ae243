// Package lipgloss renders comparison reports for the console using the
// Lipgloss styling library.
package lipgloss

import (
	"fmt"
	"strings"

	"github.com/fwojciec/anydiff"
)

// Compile-time interface verification.
var _ anydiff.Theme = (*Theme)(nil)

// Theme implements anydiff.Theme with Lipgloss-compatible colors.
type Theme struct {
	styles anydiff.Styles
}

// Styles returns the color styles for this theme.
func (t *Theme) Styles() anydiff.Styles {
	return t.styles
}

// DefaultTheme returns the default theme (dark background optimized).
func DefaultTheme() *Theme {
	return DarkTheme()
}

// ThemeByName returns the theme called name: "dark" or "light".
func ThemeByName(name string) (*Theme, error) {
	switch strings.ToLower(name) {
	case "", "dark":
		return DarkTheme(), nil
	case "light":
		return LightTheme(), nil
	}
	return nil, fmt.Errorf("unknown theme %q", name)
}

// DarkTheme returns a theme optimized for dark terminal backgrounds.
func DarkTheme() *Theme {
	return &Theme{
		styles: anydiff.Styles{
			Added: anydiff.ColorPair{
				Foreground: "#a6e3a1", // Green
				Background: "#004000", // Very dark green
			},
			Removed: anydiff.ColorPair{
				Foreground: "#f38ba8", // Red
				Background: "#3f0001", // Very dark red
			},
			Context: anydiff.ColorPair{
				Foreground: "#6c7086", // Muted gray
			},
			BlockHeader: anydiff.ColorPair{
				Foreground: "#89b4fa", // Blue
			},
			SourceHeader: anydiff.ColorPair{
				Foreground: "#f9e2af", // Yellow
				Background: "#313244", // Dark surface
			},
			Summary: anydiff.ColorPair{
				Foreground: "#a6adc8",
			},
			AddedHighlight: anydiff.ColorPair{
				Foreground: "#1e1e2e", // Dark text on bright background
				Background: "#a6e3a1",
			},
			RemovedHighlight: anydiff.ColorPair{
				Foreground: "#1e1e2e",
				Background: "#f38ba8",
			},
		},
	}
}

// LightTheme returns a theme optimized for light terminal backgrounds.
func LightTheme() *Theme {
	return &Theme{
		styles: anydiff.Styles{
			Added: anydiff.ColorPair{
				Foreground: "#40a02b",
				Background: "#d4f4d4",
			},
			Removed: anydiff.ColorPair{
				Foreground: "#d20f39",
				Background: "#f4d4d4",
			},
			Context: anydiff.ColorPair{
				Foreground: "#9ca0b0",
			},
			BlockHeader: anydiff.ColorPair{
				Foreground: "#1e66f5",
			},
			SourceHeader: anydiff.ColorPair{
				Foreground: "#df8e1d",
				Background: "#e6e9ef",
			},
			Summary: anydiff.ColorPair{
				Foreground: "#6c6f85",
			},
			AddedHighlight: anydiff.ColorPair{
				Foreground: "#ffffff", // White text on dark background
				Background: "#40a02b",
			},
			RemovedHighlight: anydiff.ColorPair{
				Foreground: "#ffffff",
				Background: "#d20f39",
			},
		},
	}
}
