package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSidebarGroupsChatsByProject(t *testing.T) {
	projects := NewProjectStore(nil)
	chats := NewChatStore(nil)
	work, _ := projects.Create("Work")
	home, _ := projects.Create("Home")

	inWork := chats.Create(work.ID, "")
	chats.Create(home.ID, "")
	loose := chats.Create("", "")
	projects.Toggle(home.ID)

	sidebar := NewSidebarComponent(30, 20, NewTheme(ThemeLight))
	sidebar.Refresh(projects.List(), chats)

	assert.Equal(t, []string{inWork.ID, loose.ID}, sidebar.ChatOrder(), "collapsed projects hide their chats")

	view := sidebar.View()
	assert.Contains(t, view, "▾ Work (1)")
	assert.Contains(t, view, "▸ Home (1)")
}

func TestSidebarNeighbor(t *testing.T) {
	chats := NewChatStore(nil)
	a := chats.Create("", "")
	b := chats.Create("", "")
	c := chats.Create("", "")
	chats.Select(b.ID)

	sidebar := NewSidebarComponent(30, 20, NewTheme(ThemeDark))
	sidebar.Refresh(nil, chats)
	require.Equal(t, []string{c.ID, b.ID, a.ID}, sidebar.ChatOrder())

	next, ok := sidebar.Neighbor(1)
	require.True(t, ok)
	assert.Equal(t, a.ID, next)

	prev, ok := sidebar.Neighbor(-1)
	require.True(t, ok)
	assert.Equal(t, c.ID, prev)

	chats.Select(a.ID)
	sidebar.Refresh(nil, chats)
	_, ok = sidebar.Neighbor(1)
	assert.False(t, ok)
}

func TestSidebarEmpty(t *testing.T) {
	sidebar := NewSidebarComponent(30, 10, NewTheme(ThemeLight))
	sidebar.Refresh(nil, NewChatStore(nil))

	_, ok := sidebar.Neighbor(1)
	assert.False(t, ok)
	assert.Contains(t, sidebar.View(), "No chats yet")
}
