package tui

import "github.com/charmbracelet/lipgloss"

// Palette.
const (
	ColorHeader    = lipgloss.Color("39")
	ColorLabel     = lipgloss.Color("245")
	ColorValue     = lipgloss.Color("252")
	ColorMuted     = lipgloss.Color("240")
	ColorError     = lipgloss.Color("196")
	ColorOK        = lipgloss.Color("42")
	ColorHighlight = lipgloss.Color("229")
	ColorSelected  = lipgloss.Color("57")
	ColorBorder    = lipgloss.Color("238")
)

// Key bindings.
const (
	keyQuit  = "q"
	keyCtrlC = "ctrl+c"
	keyEnter = "enter"
	keyEsc   = "esc"
	keySlash = "/"
	keyS     = "s"
	keyC     = "c"
	keyA     = "a"
	keyR     = "r"
	keyLeft  = "left"
	keyRight = "right"
	keyH     = "h"
	keyL     = "l"
)

// Layout defaults.
const (
	defaultWidth         = 100
	defaultHeight        = 24
	searchInputCharLimit = 100
	searchInputWidth     = 40
	minTableHeight       = 3
	// chromeHeight is the number of lines used by everything except the table.
	chromeHeight = 9
)

func titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorHeader).
		Border(lipgloss.NormalBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)
}

func labelStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorLabel) }

func valueStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorValue).Bold(true) }

func mutedStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorMuted).Italic(true) }

func errorStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorError).Bold(true) }

func okStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorOK) }

func currentPageStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorHighlight).Background(ColorSelected).Bold(true)
}
