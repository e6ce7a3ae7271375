package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type chatSelectedMsg struct {
	chatID string
}

// ChatSelectionModal lists every chat, most recent first, for switching.
type ChatSelectionModal struct {
	*BaseModal
	chats        []Chat
	projectNames map[string]string
	selected     int
	scrollOffset int
	maxVisible   int
}

// NewChatSelectionModal opens the picker with the active chat preselected.
func NewChatSelectionModal(chats []Chat, projects []Project, activeID string, theme *Theme) *ChatSelectionModal {
	names := make(map[string]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}
	m := &ChatSelectionModal{
		BaseModal:    NewBaseModal("Switch Chat", "", 70, 20, theme),
		chats:        chats,
		projectNames: names,
		maxVisible:   6,
	}
	for i, c := range chats {
		if c.ID == activeID {
			m.selected = i
			break
		}
	}
	if m.selected >= m.maxVisible {
		m.scrollOffset = m.selected - m.maxVisible + 1
	}
	return m
}

func chatTitlePreview(chat Chat) string {
	for i := len(chat.Messages) - 1; i >= 0; i-- {
		if chat.Messages[i].Role == RoleUser {
			if line := firstLine(chat.Messages[i].Content); line != "" {
				return truncateRunes(line, 57, "...")
			}
		}
	}
	return "No messages yet"
}

func (m *ChatSelectionModal) Render() string {
	var content strings.Builder

	if len(m.chats) == 0 {
		content.WriteString("No chats yet.\n")
		content.WriteString("Send a message to start one!\n\n")
		content.WriteString("Press Esc to close")
		m.BaseModal.Content = content.String()
		return m.BaseModal.Render()
	}

	content.WriteString(m.theme.MutedStyle().Italic(true).Render("↑/↓: Navigate • 1-9: Quick select • Enter: Open • Esc: Cancel"))
	content.WriteString("\n\n")

	end := min(m.scrollOffset+m.maxVisible, len(m.chats))
	for i := m.scrollOffset; i < end; i++ {
		chat := m.chats[i]
		isSelected := i == m.selected

		prefix := fmt.Sprintf(" %d. ", i+1)
		if isSelected {
			prefix = fmt.Sprintf("▶%d. ", i+1)
		}
		line := fmt.Sprintf("%s[%s] %s", prefix, formatRelativeTime(chat.Timestamp), truncateWidth(chat.Name, 40))

		var details []string
		if n := formatMessageCount(len(chat.Messages)); n != "" {
			details = append(details, n)
		}
		if chat.Model != "" {
			details = append(details, ModelLabel(chat.Model))
		}
		if name, ok := m.projectNames[chat.ProjectID]; ok {
			details = append(details, "📁 "+name)
		}
		details = append(details, chatTitlePreview(chat))

		lineStyle := lipgloss.NewStyle()
		detailStyle := m.theme.MutedStyle()
		if isSelected {
			lineStyle = m.theme.HighlightStyle()
			detailStyle = detailStyle.Foreground(m.theme.Accent)
		}

		content.WriteString(lineStyle.Render(line))
		content.WriteString("\n")
		content.WriteString(detailStyle.Render("    " + truncateWidth(strings.Join(details, " • "), m.Width-10)))
		content.WriteString("\n")
	}

	if len(m.chats) > m.maxVisible {
		content.WriteString(m.theme.MutedStyle().Italic(true).Render(
			fmt.Sprintf("\n%d-%d of %d chats", m.scrollOffset+1, end, len(m.chats))))
	}

	m.BaseModal.Content = content.String()
	return m.BaseModal.Render()
}

func (m *ChatSelectionModal) Update(msg tea.Msg) (*ChatSelectionModal, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if len(m.chats) == 0 {
		if keyMsg.String() == "esc" || keyMsg.String() == "q" {
			return m, func() tea.Msg { return modalCancelledMsg{} }
		}
		return m, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
			if m.selected < m.scrollOffset {
				m.scrollOffset = m.selected
			}
		}
	case "down", "j":
		if m.selected < len(m.chats)-1 {
			m.selected++
			if m.selected >= m.scrollOffset+m.maxVisible {
				m.scrollOffset = m.selected - m.maxVisible + 1
			}
		}
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		num := int(keyMsg.String()[0] - '1')
		if num < len(m.chats) {
			m.selected = num
			return m, m.selectCmd()
		}
	case "enter":
		return m, m.selectCmd()
	case "esc", "q":
		return m, func() tea.Msg { return modalCancelledMsg{} }
	}
	return m, nil
}

func (m *ChatSelectionModal) selectCmd() tea.Cmd {
	id := m.chats[m.selected].ID
	return func() tea.Msg { return chatSelectedMsg{chatID: id} }
}
