package main

import (
	"github.com/charmbracelet/lipgloss"
)

// CompletionOption is one row of the completion pop-up.
type CompletionOption struct {
	Value       string
	Description string
}

// CompletionDialog represents the autocompletion pop-up
type CompletionDialog struct {
	Options           []CompletionOption
	Selected          int
	Visible           bool
	Width             int
	Height            int
	Offset            int
	Style             lipgloss.Style
	SelectedItemStyle lipgloss.Style
	DescriptionStyle  lipgloss.Style
}

// NewCompletionDialog creates a new completion dialog
func NewCompletionDialog() CompletionDialog {
	return CompletionDialog{
		Width:  40,
		Height: 8,
		Style: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")),
		SelectedItemStyle: lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230")),
		DescriptionStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
	}
}

// SetOptions updates the completion options
func (c *CompletionDialog) SetOptions(options []CompletionOption) {
	c.Options = options
	if c.Selected >= len(options) {
		c.Selected = len(options) - 1
	}
	if c.Selected < 0 {
		c.Selected = 0
	}
	c.Offset = 0
	if c.Selected >= c.Height {
		c.Offset = c.Selected - c.Height + 1
	}
}

// Show makes the dialog visible
func (c *CompletionDialog) Show() {
	c.Visible = true
}

// Hide makes the dialog invisible
func (c *CompletionDialog) Hide() {
	c.Visible = false
	c.Selected = 0
	c.Offset = 0
}

// SelectNext moves selection to the next item
func (c *CompletionDialog) SelectNext() {
	if c.Selected+1 >= len(c.Options) {
		return
	}
	c.Selected++
	if c.Selected >= c.Offset+c.Height {
		c.Offset = c.Selected - c.Height + 1
	}
}

// SelectPrev moves selection to the previous item
func (c *CompletionDialog) SelectPrev() {
	if c.Selected == 0 {
		return
	}
	c.Selected--
	if c.Selected < c.Offset {
		c.Offset = c.Selected
	}
}

// GetSelected returns the currently selected option
func (c CompletionDialog) GetSelected() string {
	if c.Selected >= 0 && c.Selected < len(c.Options) {
		return c.Options[c.Selected].Value
	}
	return ""
}

// View renders the completion dialog
func (c CompletionDialog) View() string {
	if !c.Visible || len(c.Options) == 0 {
		return ""
	}
	end := min(c.Offset+c.Height, len(c.Options))
	lines := make([]string, 0, end-c.Offset)
	for i := c.Offset; i < end; i++ {
		option := c.Options[i]
		value := truncateWidth(option.Value, c.Width)
		desc := ""
		if room := c.Width - lipgloss.Width(value) - 2; option.Description != "" && room > 0 {
			desc = "  " + c.DescriptionStyle.Render(truncateWidth(option.Description, room))
		}
		if i == c.Selected {
			value = c.SelectedItemStyle.Render(value)
		}
		lines = append(lines, value+desc)
	}
	return c.Style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
