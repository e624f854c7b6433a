package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Adaptive colors based on terminal background
var (
	ColorPrimary   lipgloss.Color
	ColorAccent    lipgloss.Color
	ColorSuccess   lipgloss.Color
	ColorError     lipgloss.Color
	ColorText      lipgloss.Color
	ColorTextMuted lipgloss.Color
	ColorBorder    lipgloss.Color
)

// initializeColors sets up adaptive colors based on terminal background
func initializeColors() {
	switch os.Getenv("GLAMOUR_STYLE") {
	case "light":
		setLightThemeColors()
		return
	case "dark":
		setDarkThemeColors()
		return
	}

	if lipgloss.HasDarkBackground() {
		setDarkThemeColors()
	} else {
		setLightThemeColors()
	}
}

func setDarkThemeColors() {
	ColorPrimary = lipgloss.Color("205")
	ColorAccent = lipgloss.Color("214")
	ColorSuccess = lipgloss.Color("10")
	ColorError = lipgloss.Color("9")
	ColorText = lipgloss.Color("252")
	ColorTextMuted = lipgloss.Color("244")
	ColorBorder = lipgloss.Color("238")
}

func setLightThemeColors() {
	ColorPrimary = lipgloss.Color("125")
	ColorAccent = lipgloss.Color("130")
	ColorSuccess = lipgloss.Color("28")
	ColorError = lipgloss.Color("124")
	ColorText = lipgloss.Color("235")
	ColorTextMuted = lipgloss.Color("243")
	ColorBorder = lipgloss.Color("250")
}

var (
	headerStyle lipgloss.Style
	statusStyle lipgloss.Style
	errorStyle  lipgloss.Style
	helpStyle   lipgloss.Style
	panelStyle  lipgloss.Style
)

func initializeStyles() {
	initializeColors()

	headerStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
		Foreground(ColorSuccess).
		Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
		Foreground(ColorError).
		Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)
}
