package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sidebarRow is one line of the sidebar: a project header or a chat.
type sidebarRow struct {
	projectID string
	chatID    string
	label     string
	depth     int
}

// SidebarComponent lists projects with their chats, then the uncategorized
// chats.
type SidebarComponent struct {
	Width  int
	Height int
	rows   []sidebarRow
	active string
	offset int
	theme  *Theme
}

// NewSidebarComponent creates an empty sidebar.
func NewSidebarComponent(width, height int, theme *Theme) SidebarComponent {
	return SidebarComponent{Width: width, Height: height, theme: theme}
}

// SetSize updates the sidebar dimensions.
func (s *SidebarComponent) SetSize(width, height int) {
	s.Width, s.Height = width, height
	s.scrollToActive()
}

// SetTheme switches palette.
func (s *SidebarComponent) SetTheme(theme *Theme) {
	s.theme = theme
}

// Refresh rebuilds the rows from the stores' current state.
func (s *SidebarComponent) Refresh(projects []Project, chats *ChatStore) {
	s.rows = buildSidebarRows(projects, chats)
	s.active = chats.ActiveID()
	s.scrollToActive()
}

func buildSidebarRows(projects []Project, chats *ChatStore) []sidebarRow {
	var rows []sidebarRow
	for _, p := range projects {
		inProject := chats.InProject(p.ID)
		marker := "▸"
		if p.Expanded {
			marker = "▾"
		}
		rows = append(rows, sidebarRow{
			projectID: p.ID,
			label:     fmt.Sprintf("%s %s (%d)", marker, p.Name, len(inProject)),
		})
		if !p.Expanded {
			continue
		}
		for _, c := range inProject {
			rows = append(rows, sidebarRow{projectID: p.ID, chatID: c.ID, label: c.Name, depth: 1})
		}
	}
	loose := chats.InProject("")
	if len(loose) > 0 && len(projects) > 0 {
		rows = append(rows, sidebarRow{label: "Chats"})
	}
	for _, c := range loose {
		rows = append(rows, sidebarRow{chatID: c.ID, label: c.Name})
	}
	return rows
}

// ChatOrder returns the chat ids in display order, used for next and
// previous navigation.
func (s SidebarComponent) ChatOrder() []string {
	var ids []string
	for _, r := range s.rows {
		if r.chatID != "" {
			ids = append(ids, r.chatID)
		}
	}
	return ids
}

// Neighbor returns the chat id delta rows away from the active chat.
func (s SidebarComponent) Neighbor(delta int) (string, bool) {
	ids := s.ChatOrder()
	if len(ids) == 0 {
		return "", false
	}
	idx := -1
	for i, id := range ids {
		if id == s.active {
			idx = i
			break
		}
	}
	if idx == -1 {
		if delta > 0 {
			return ids[0], true
		}
		return ids[len(ids)-1], true
	}
	next := idx + delta
	if next < 0 || next >= len(ids) {
		return "", false
	}
	return ids[next], true
}

func (s *SidebarComponent) scrollToActive() {
	visible := s.visibleRows()
	for i, r := range s.rows {
		if r.chatID != "" && r.chatID == s.active {
			if i < s.offset {
				s.offset = i
			} else if i >= s.offset+visible {
				s.offset = i - visible + 1
			}
			return
		}
	}
	if s.offset > max(len(s.rows)-visible, 0) {
		s.offset = max(len(s.rows)-visible, 0)
	}
}

func (s SidebarComponent) visibleRows() int {
	return max(s.Height-3, 1) // border and title
}

// View renders the sidebar.
func (s SidebarComponent) View() string {
	inner := max(s.Width-4, 1)
	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(s.theme.Accent).Render("Chats"))

	if len(s.rows) == 0 {
		lines = append(lines, s.theme.MutedStyle().Render(truncateWidth("No chats yet", inner)))
	}
	end := min(s.offset+s.visibleRows(), len(s.rows))
	for _, r := range s.rows[s.offset:end] {
		indent := strings.Repeat("  ", r.depth)
		text := truncateWidth(indent+r.label, inner)
		switch {
		case r.chatID != "" && r.chatID == s.active:
			text = lipgloss.NewStyle().
				Foreground(s.theme.Accent).
				Background(s.theme.Selection).
				Bold(true).
				Render(text)
		case r.chatID == "":
			text = lipgloss.NewStyle().Bold(true).Foreground(s.theme.Text).Render(text)
		default:
			text = lipgloss.NewStyle().Foreground(s.theme.Text).Render(text)
		}
		lines = append(lines, text)
	}

	return s.theme.PanelStyle(false).
		Width(max(s.Width-2, 1)).
		Height(max(s.Height-2, 1)).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}
