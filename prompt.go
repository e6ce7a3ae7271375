package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	promptPlaceholder        = "Type your message and press Enter..."
	promptWaitingPlaceholder = "Waiting for the model..."
)

// PromptComponent represents the user input text area
type PromptComponent struct {
	TextArea textarea.Model
	Height   int
	Width    int
	Style    lipgloss.Style
	waiting  bool
}

// NewPromptComponent creates a new prompt component
func NewPromptComponent(width, height int) PromptComponent {
	ta := textarea.New()
	ta.Placeholder = promptPlaceholder
	ta.ShowLineNumbers = false
	ta.Prompt = "> "
	ta.CharLimit = 0
	ta.Focus()

	ta.SetWidth(width - 2) // border
	ta.SetHeight(height)

	return PromptComponent{
		TextArea: ta,
		Height:   height,
		Width:    width,
		Style: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")),
	}
}

// SetWidth updates the width of the prompt component
func (p *PromptComponent) SetWidth(width int) {
	p.Width = width
	p.TextArea.SetWidth(width - 2)
}

// SetHeight updates the height of the prompt component
func (p *PromptComponent) SetHeight(height int) {
	p.Height = height
	p.TextArea.SetHeight(height)
}

// SetTheme recolors the border.
func (p *PromptComponent) SetTheme(theme *Theme) {
	p.Style = p.Style.BorderForeground(theme.Accent)
}

// SetValue sets the text value of the prompt
func (p *PromptComponent) SetValue(value string) {
	p.TextArea.SetValue(value)
	p.TextArea.CursorEnd()
}

// Value returns the current text value
func (p PromptComponent) Value() string {
	return p.TextArea.Value()
}

// InsertNewline adds a line break at the cursor.
func (p *PromptComponent) InsertNewline() {
	p.TextArea.InsertString("\n")
}

// SingleLine reports whether the input has no line breaks, in which case
// up and down recall history instead of moving the cursor.
func (p PromptComponent) SingleLine() bool {
	return !strings.Contains(p.TextArea.Value(), "\n")
}

// SetWaiting switches the placeholder while a send is in flight.
func (p *PromptComponent) SetWaiting(waiting bool) {
	p.waiting = waiting
	if waiting {
		p.TextArea.Placeholder = promptWaitingPlaceholder
	} else {
		p.TextArea.Placeholder = promptPlaceholder
	}
}

// Waiting reports whether the prompt is showing the waiting state.
func (p PromptComponent) Waiting() bool {
	return p.waiting
}

// Focus gives focus to the prompt
func (p *PromptComponent) Focus() {
	p.TextArea.Focus()
}

// Blur removes focus from the prompt
func (p *PromptComponent) Blur() {
	p.TextArea.Blur()
}

// Update handles messages for the prompt component
func (p PromptComponent) Update(msg tea.Msg) (PromptComponent, tea.Cmd) {
	var cmd tea.Cmd
	p.TextArea, cmd = p.TextArea.Update(msg)
	return p, cmd
}

// View renders the prompt component
func (p PromptComponent) View() string {
	return p.Style.Render(p.TextArea.View())
}
