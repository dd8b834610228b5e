// Package render formats conversations for the terminal.
package render

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Theme holds the colors used for terminal output.
type Theme struct {
	Primary   colorful.Color
	Secondary colorful.Color
	Accent    colorful.Color

	FgBase   colorful.Color
	FgMuted  colorful.Color
	FgSubtle colorful.Color

	Success colorful.Color
	Error   colorful.Color
	Warning colorful.Color
}

// DefaultTheme returns the dark theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:   colorful.MustParseHex("#61afef"), // Soft blue
		Secondary: colorful.MustParseHex("#56b6c2"), // Cyan
		Accent:    colorful.MustParseHex("#c678dd"), // Purple

		FgBase:   colorful.MustParseHex("#abb2bf"),
		FgMuted:  colorful.MustParseHex("#7f848e"),
		FgSubtle: colorful.MustParseHex("#5c6370"),

		Success: colorful.MustParseHex("#98c379"),
		Error:   colorful.MustParseHex("#e06c75"),
		Warning: colorful.MustParseHex("#e5c07b"),
	}
}
