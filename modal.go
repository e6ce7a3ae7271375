package main

import "github.com/charmbracelet/lipgloss"

// modalCancelledMsg is sent when a modal is dismissed without a choice.
type modalCancelledMsg struct{}

// BaseModal represents a base modal dialog
type BaseModal struct {
	Title   string
	Content string
	Width   int
	Height  int
	theme   *Theme
}

// NewBaseModal creates a new base modal
func NewBaseModal(title, content string, width, height int, theme *Theme) *BaseModal {
	if theme == nil {
		theme = NewTheme(ThemeLight)
	}
	return &BaseModal{
		Title:   title,
		Content: content,
		Width:   width,
		Height:  height,
		theme:   theme,
	}
}

// Render renders the modal
func (m *BaseModal) Render() string {
	titleStyle := lipgloss.NewStyle().
		Background(m.theme.Accent).
		Foreground(lipgloss.Color("230")).
		Padding(0, 1).
		Width(m.Width - 2) // border

	title := titleStyle.Render(m.Title)
	content := lipgloss.NewStyle().
		Width(m.Width-2).
		Height(m.Height-4).
		Padding(0, 1).
		Render(m.Content)

	body := lipgloss.JoinVertical(lipgloss.Left, title, content)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Accent).
		Width(m.Width).
		Render(body)
}
