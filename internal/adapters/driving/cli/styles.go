package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Output palette.
var (
	colourPrimary = lipgloss.Color("#7C3AED")
	colourAccent  = lipgloss.Color("#06B6D4")
	colourMuted   = lipgloss.Color("#6C7086")
	colourSuccess = lipgloss.Color("#A6E3A1")
	colourWarning = lipgloss.Color("#F9E2AF")
	colourError   = lipgloss.Color("#F38BA8")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colourPrimary)
	sourceStyle  = lipgloss.NewStyle().Bold(true).Foreground(colourAccent)
	mutedStyle   = lipgloss.NewStyle().Foreground(colourMuted)
	successStyle = lipgloss.NewStyle().Foreground(colourSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colourWarning)
	errorStyle   = lipgloss.NewStyle().Foreground(colourError)
	excerptStyle = lipgloss.NewStyle().PaddingLeft(6).Width(88)
)

// sourceLabel renders a citation heading such as "[Source 2]".
func sourceLabel(rank int) string {
	return sourceStyle.Render(fmt.Sprintf("[Source %d]", rank))
}

// maskAPIKey shows the first and last four characters of a key.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
