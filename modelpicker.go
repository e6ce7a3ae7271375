package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// modelTarget says what a picked model applies to.
type modelTarget int

const (
	modelForChat modelTarget = iota
	modelForDefault
)

type modelSelectedMsg struct {
	model  string
	target modelTarget
}

// ModelSelectionModal offers the catalog with incremental search. Typing an
// id that is not in the catalog and pressing Enter picks it verbatim.
type ModelSelectionModal struct {
	*BaseModal
	search       textinput.Model
	filtered     []ModelOption
	selected     int
	scrollOffset int
	maxVisible   int
	current      string
	target       modelTarget
}

// NewModelSelectionModal opens the picker with current preselected.
func NewModelSelectionModal(current string, target modelTarget, theme *Theme) *ModelSelectionModal {
	title := "Select Model"
	if target == modelForDefault {
		title = "Select Default Model"
	}
	search := textinput.New()
	search.Placeholder = "Search models or type an id..."
	search.Prompt = "🔍 "
	search.Focus()

	m := &ModelSelectionModal{
		BaseModal:  NewBaseModal(title, "", 70, 22, theme),
		search:     search,
		maxVisible: 12,
		current:    current,
		target:     target,
	}
	m.filter()
	for i, opt := range m.filtered {
		if opt.Value == current {
			m.selected = i
			if i >= m.maxVisible {
				m.scrollOffset = i - m.maxVisible + 1
			}
			break
		}
	}
	return m
}

func (m *ModelSelectionModal) filter() {
	m.filtered = SearchModels(m.search.Value())
	m.selected = 0
	m.scrollOffset = 0
}

func (m *ModelSelectionModal) Render() string {
	var content strings.Builder
	content.WriteString(m.search.View())
	content.WriteString("\n")
	content.WriteString(m.theme.MutedStyle().Italic(true).Render("↑/↓: Navigate • Enter: Select • Esc: Cancel"))
	content.WriteString("\n\n")

	if len(m.filtered) == 0 {
		query := strings.TrimSpace(m.search.Value())
		if query != "" {
			content.WriteString(fmt.Sprintf("No catalog match. Enter uses %q as the model id.", query))
		}
	}

	end := min(m.scrollOffset+m.maxVisible, len(m.filtered))
	lastCategory := ""
	for i := m.scrollOffset; i < end; i++ {
		opt := m.filtered[i]
		if opt.Category != lastCategory {
			content.WriteString(m.theme.MutedStyle().Render(opt.Category))
			content.WriteString("\n")
			lastCategory = opt.Category
		}
		prefix := "   "
		if i == m.selected {
			prefix = " ▶ "
		}
		marker := ""
		if opt.Value == m.current {
			marker = " ✓"
		}
		line := truncateWidth(fmt.Sprintf("%s%s (%s)%s", prefix, opt.Label, opt.Value, marker), m.Width-6)
		if i == m.selected {
			line = m.theme.HighlightStyle().Render(line)
		}
		content.WriteString(line)
		content.WriteString("\n")
	}

	if len(m.filtered) > m.maxVisible {
		content.WriteString(m.theme.MutedStyle().Italic(true).Render(
			fmt.Sprintf("\n%d-%d of %d models", m.scrollOffset+1, end, len(m.filtered))))
	}

	m.BaseModal.Content = content.String()
	return m.BaseModal.Render()
}

func (m *ModelSelectionModal) Update(msg tea.Msg) (*ModelSelectionModal, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "esc":
		return m, func() tea.Msg { return modalCancelledMsg{} }
	case "up", "ctrl+p":
		if m.selected > 0 {
			m.selected--
			if m.selected < m.scrollOffset {
				m.scrollOffset = m.selected
			}
		}
		return m, nil
	case "down", "ctrl+n":
		if m.selected < len(m.filtered)-1 {
			m.selected++
			if m.selected >= m.scrollOffset+m.maxVisible {
				m.scrollOffset = m.selected - m.maxVisible + 1
			}
		}
		return m, nil
	case "enter":
		model := strings.TrimSpace(m.search.Value())
		if len(m.filtered) > 0 {
			model = m.filtered[m.selected].Value
		}
		if model == "" {
			return m, nil
		}
		target := m.target
		return m, func() tea.Msg { return modelSelectedMsg{model: model, target: target} }
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(keyMsg)
	if m.search.Value() != before {
		m.filter()
	}
	return m, cmd
}
