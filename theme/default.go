package theme

import (
	"github.com/pterm/pterm"
)

// Theme defines the colour scheme for terminal output
type Theme struct {
	Debug *pterm.Style
	Info  *pterm.Style
	Warn  *pterm.Style
	Error *pterm.Style

	Success  *pterm.Style
	Muted    *pterm.Style
	Endpoint *pterm.Style
	Counts   *pterm.Style
}

// Default returns the default application theme
func Default() *Theme {
	return &Theme{
		Debug: pterm.NewStyle(pterm.FgLightBlue),
		Info:  pterm.NewStyle(pterm.FgGreen),
		Warn:  pterm.NewStyle(pterm.FgYellow, pterm.Bold),
		Error: pterm.NewStyle(pterm.FgRed, pterm.Bold),

		Success:  pterm.NewStyle(pterm.FgGreen, pterm.Bold),
		Muted:    pterm.NewStyle(pterm.FgGray),
		Endpoint: pterm.NewStyle(pterm.FgCyan, pterm.Bold),
		Counts:   pterm.NewStyle(pterm.FgMagenta),
	}
}

// GetTheme returns the theme for the given name, falling back to Default
func GetTheme(name string) *Theme {
	switch name {
	case "default", "":
		return Default()
	default:
		return Default()
	}
}
