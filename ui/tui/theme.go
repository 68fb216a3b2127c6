package main

import (
	"github.com/charmbracelet/lipgloss"

	ctheme "diskconsole/internal/theme"
)

type theme struct {
	Header      lipgloss.Style
	Panel       lipgloss.Style
	PanelFocus  lipgloss.Style
	Title       lipgloss.Style
	Muted       lipgloss.Style
	Accent      lipgloss.Style
	Success     lipgloss.Style
	Alert       lipgloss.Style
	Danger      lipgloss.Style
	LineNumber  lipgloss.Style
	Cursor      lipgloss.Style
	Popup       lipgloss.Style
	PopupItem   lipgloss.Style
	PopupActive lipgloss.Style
	Overlay     lipgloss.Style
	OverlayBox  lipgloss.Style
}

func defaultTheme() theme {
	accent := lipgloss.Color(ctheme.ColorKeyword)
	secondary := lipgloss.Color("#7D7D7D")
	success := lipgloss.Color(ctheme.ColorComment)
	alert := lipgloss.Color("#FFBF00")
	danger := lipgloss.Color(ctheme.ColorError)
	bg := lipgloss.Color(ctheme.ColorBackground)
	active := lipgloss.Color(ctheme.ColorLineActive)

	return theme{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondary).
			Background(bg),
		PanelFocus: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Background(bg),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ctheme.ColorText)),
		Muted: lipgloss.NewStyle().
			Foreground(secondary),
		Accent: lipgloss.NewStyle().
			Foreground(accent),
		Success: lipgloss.NewStyle().
			Foreground(success),
		Alert: lipgloss.NewStyle().
			Foreground(alert),
		Danger: lipgloss.NewStyle().
			Foreground(danger),
		LineNumber: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#858585")),
		Cursor: lipgloss.NewStyle().
			Reverse(true),
		Popup: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(secondary).
			Background(active),
		PopupItem: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ctheme.ColorText)),
		PopupActive: lipgloss.NewStyle().
			Foreground(bg).
			Background(accent),
		Overlay: lipgloss.NewStyle().
			Foreground(secondary),
		OverlayBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),
	}
}
