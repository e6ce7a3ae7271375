package main

import "github.com/charmbracelet/lipgloss"

// Theme defines the colors and styles for the UI.
type Theme struct {
	Name ThemeName

	Accent     lipgloss.Color
	Border     lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
	UserText   lipgloss.Color
	AIText     lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Success    lipgloss.Color
	Background lipgloss.Color
	Selection  lipgloss.Color

	// GlamourStyle names the glamour standard style matching the palette.
	GlamourStyle string
}

// NewTheme returns the palette for name.
func NewTheme(name ThemeName) *Theme {
	if name == ThemeDark {
		return &Theme{
			Name:         ThemeDark,
			Accent:       lipgloss.Color("#F952F9"),
			Border:       lipgloss.Color("#F4DB53"),
			Text:         lipgloss.Color("#E6E6E6"),
			Muted:        lipgloss.Color("240"),
			UserText:     lipgloss.Color("#F952F9"),
			AIText:       lipgloss.Color("#01FAFA"),
			Warning:      lipgloss.Color("#F4DB53"),
			Error:        lipgloss.Color("#F54545"),
			Success:      lipgloss.Color("76"),
			Background:   lipgloss.Color("#11051E"),
			Selection:    lipgloss.Color("#271D30"),
			GlamourStyle: "dark",
		}
	}
	return &Theme{
		Name:         ThemeLight,
		Accent:       lipgloss.Color("62"),
		Border:       lipgloss.Color("250"),
		Text:         lipgloss.Color("235"),
		Muted:        lipgloss.Color("245"),
		UserText:     lipgloss.Color("25"),
		AIText:       lipgloss.Color("236"),
		Warning:      lipgloss.Color("136"),
		Error:        lipgloss.Color("124"),
		Success:      lipgloss.Color("28"),
		Background:   lipgloss.Color("255"),
		Selection:    lipgloss.Color("189"),
		GlamourStyle: "light",
	}
}

// PanelStyle is the bordered frame used for the main panes.
func (t *Theme) PanelStyle(focused bool) lipgloss.Style {
	border := t.Border
	if focused {
		border = t.Accent
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border)
}

// HighlightStyle marks the selected row of a list.
func (t *Theme) HighlightStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
}

// MutedStyle is used for secondary text.
func (t *Theme) MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Muted)
}
