package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// StatusComponent represents the status bar component
type StatusComponent struct {
	Provider     string
	Model        string
	Theme        ThemeName
	MessageCount int
	Width        int
	HasAPIKey    bool

	state        EngineState
	waitingSince time.Time
	now          func() time.Time
	theme        *Theme
}

// NewStatusComponent creates a new status component
func NewStatusComponent(width int, theme *Theme) StatusComponent {
	return StatusComponent{Width: width, theme: theme, now: time.Now}
}

// SetProvider sets the current provider and model
func (s *StatusComponent) SetProvider(provider, model string) {
	s.Provider = provider
	s.Model = model
}

// SetTheme switches palette.
func (s *StatusComponent) SetTheme(theme *Theme) {
	s.theme = theme
	s.Theme = theme.Name
}

// SetWidth updates the width of the status component
func (s *StatusComponent) SetWidth(width int) {
	s.Width = width
}

// SetState records the engine phase. The wait timer starts when a send
// begins and stops when the engine goes idle.
func (s *StatusComponent) SetState(state EngineState) {
	if s.now == nil {
		s.now = time.Now
	}
	if state != StateIdle && s.state == StateIdle {
		s.waitingSince = s.now()
	}
	s.state = state
}

// Waiting reports whether a send is in flight.
func (s StatusComponent) Waiting() bool {
	return s.state != StateIdle
}

// View renders the status component
func (s StatusComponent) View() string {
	left := s.renderLeftSection()
	right := s.renderRightSection()

	available := max(s.Width-2, 0)
	if lipgloss.Width(left)+lipgloss.Width(right) > available {
		right = truncateWidth(right, max(available-lipgloss.Width(left)-1, 0))
	}
	spacing := max(available-lipgloss.Width(left)-lipgloss.Width(right), 0)

	style := lipgloss.NewStyle().Padding(0, 1)
	if s.theme != nil {
		style = style.Foreground(s.theme.Muted)
	}
	return style.Render(left + strings.Repeat(" ", spacing) + right)
}

func (s StatusComponent) renderLeftSection() string {
	var parts []string
	switch s.state {
	case StateSending, StateAwaitingCompletion:
		elapsed := int(s.now().Sub(s.waitingSince).Seconds())
		parts = append(parts, fmt.Sprintf("⏳ waiting %ds (esc to cancel)", elapsed))
	case StateRevealing:
		parts = append(parts, "✍ replying")
	case StateFailed:
		parts = append(parts, "✗ failed")
	default:
		if !s.HasAPIKey {
			parts = append(parts, "⚠ no API key (/key)")
		} else {
			parts = append(parts, "● ready")
		}
	}
	if s.MessageCount > 0 {
		parts = append(parts, formatMessageCount(s.MessageCount))
	}
	return strings.Join(parts, " • ")
}

func (s StatusComponent) renderRightSection() string {
	model := ModelLabel(s.Model)
	provider := s.Provider
	if provider == "" {
		provider = "openrouter"
	}
	return fmt.Sprintf("%s • %s • %s", provider, model, s.Theme)
}
