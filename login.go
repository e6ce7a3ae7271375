package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type apiKeyEnteredMsg struct {
	key string
}

// APIKeyModal asks for the OpenRouter API key. Input is masked.
type APIKeyModal struct {
	*BaseModal
	input  textinput.Model
	hasKey bool
}

// NewAPIKeyModal opens the key prompt. hasKey changes the hint shown.
func NewAPIKeyModal(hasKey bool, theme *Theme) *APIKeyModal {
	input := textinput.New()
	input.Placeholder = "sk-or-..."
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '•'
	input.Width = 56
	input.Focus()
	return &APIKeyModal{
		BaseModal: NewBaseModal("OpenRouter API Key", "", 70, 12, theme),
		input:     input,
		hasKey:    hasKey,
	}
}

func (m *APIKeyModal) Render() string {
	var b strings.Builder
	b.WriteString("Paste your OpenRouter API key.\n")
	b.WriteString("It is kept in the system keyring when one is available.\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	hint := "Enter: Save • Esc: Cancel"
	if m.hasKey {
		hint = "Enter: Save • Enter on empty input: Clear key • Esc: Cancel"
	}
	b.WriteString(m.theme.MutedStyle().Italic(true).Render(hint))
	m.BaseModal.Content = b.String()
	return m.BaseModal.Render()
}

func (m *APIKeyModal) Update(msg tea.Msg) (*APIKeyModal, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, func() tea.Msg { return modalCancelledMsg{} }
		case "enter":
			key := strings.TrimSpace(m.input.Value())
			if key == "" && !m.hasKey {
				return m, nil
			}
			return m, func() tea.Msg { return apiKeyEnteredMsg{key: key} }
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
