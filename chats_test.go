package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChatStore(t *testing.T) (*ChatStore, *memStore) {
	t.Helper()
	kv := newMemStore()
	s := NewChatStore(&persister{kv: kv})
	require.NoError(t, s.Load())
	return s, kv
}

// fixedClock returns a clock that advances one second per call.
func fixedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func TestChatCreateIsActiveAndFirst(t *testing.T) {
	s, kv := newTestChatStore(t)

	first := s.Create("", "openai/gpt-4o")
	second := s.Create("p1", "")

	assert.Equal(t, DefaultChatName, first.Name)
	assert.NotNil(t, first.Messages)
	assert.Equal(t, second.ID, s.ActiveID())

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, "p1", list[0].ProjectID)

	active, ok := kv.value(keyActiveChat)
	require.True(t, ok)
	assert.Equal(t, second.ID, active)
}

func TestAppendMessageNamesChatOnce(t *testing.T) {
	s, _ := newTestChatStore(t)
	s.now = fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	chat := s.Create("", "")

	long := strings.Repeat("é", 60)
	require.True(t, s.AppendMessage(chat.ID, Message{Role: RoleUser, Content: long}))
	got, _ := s.Get(chat.ID)
	assert.Equal(t, strings.Repeat("é", chatNameLimit)+"...", got.Name)
	firstStamp := got.Timestamp

	require.True(t, s.AppendMessage(chat.ID, Message{Role: RoleAssistant, Content: "reply"}))
	got, _ = s.Get(chat.ID)
	assert.Equal(t, strings.Repeat("é", chatNameLimit)+"...", got.Name)
	assert.Len(t, got.Messages, 2)
	assert.True(t, got.Timestamp.After(firstStamp))

	assert.False(t, s.AppendMessage("missing", Message{Role: RoleUser, Content: "x"}))
}

func TestSecondUserMessageKeepsName(t *testing.T) {
	s, _ := newTestChatStore(t)
	chat := s.Create("", "")
	s.AppendMessage(chat.ID, Message{Role: RoleUser, Content: "Hi"})
	s.AppendMessage(chat.ID, Message{Role: RoleUser, Content: "Again"})

	got, _ := s.Get(chat.ID)
	assert.Equal(t, "Hi", got.Name)
	assert.Equal(t, []Message{
		{Role: RoleUser, Content: "Hi"},
		{Role: RoleUser, Content: "Again"},
	}, got.Messages)
}

func TestRenameKeepsNameAsGiven(t *testing.T) {
	s, _ := newTestChatStore(t)
	chat := s.Create("", "")

	s.Rename(chat.ID, strings.Repeat("x", 80))
	got, _ := s.Get(chat.ID)
	assert.Len(t, got.Name, 80)
}

func TestDeleteMovesActiveToFirstRemaining(t *testing.T) {
	s, kv := newTestChatStore(t)
	a := s.Create("", "")
	b := s.Create("", "")
	c := s.Create("", "")

	s.Delete(b.ID)
	assert.Equal(t, c.ID, s.ActiveID(), "deleting an inactive chat keeps the selection")

	s.Delete(c.ID)
	assert.Equal(t, a.ID, s.ActiveID())

	s.Delete(a.ID)
	assert.Empty(t, s.ActiveID())
	_, ok := s.Active()
	assert.False(t, ok)
	_, ok = kv.value(keyActiveChat)
	assert.False(t, ok)
}

func TestSelectUnknownReadsAsNoActiveChat(t *testing.T) {
	s, _ := newTestChatStore(t)
	s.Create("", "")
	s.Select("does-not-exist")

	assert.Equal(t, "does-not-exist", s.ActiveID())
	_, ok := s.Active()
	assert.False(t, ok)
}

func TestMoveAndModel(t *testing.T) {
	s, _ := newTestChatStore(t)
	chat := s.Create("", "")

	s.MoveToProject(chat.ID, "p1")
	s.UpdateModel(chat.ID, "anthropic/claude-3-opus")
	got, _ := s.Get(chat.ID)
	assert.Equal(t, "p1", got.ProjectID)
	assert.Equal(t, "anthropic/claude-3-opus", got.EffectiveModel("openai/gpt-4o"))
	assert.Len(t, s.InProject("p1"), 1)
	assert.Empty(t, s.InProject(""))

	s.MoveToProject(chat.ID, "")
	s.UpdateModel(chat.ID, "")
	got, _ = s.Get(chat.ID)
	assert.Empty(t, got.ProjectID)
	assert.Equal(t, "openai/gpt-4o", got.EffectiveModel("openai/gpt-4o"))
}

func TestSyncProjectsClearsDanglingReferences(t *testing.T) {
	s, _ := newTestChatStore(t)
	inA := s.Create("a", "")
	s.AppendMessage(inA.ID, Message{Role: RoleUser, Content: "hello"})
	inB := s.Create("b", "")

	s.SyncProjects([]Project{{ID: "b", Name: "B"}})

	gotA, ok := s.Get(inA.ID)
	require.True(t, ok)
	assert.Empty(t, gotA.ProjectID)
	assert.Len(t, gotA.Messages, 1)

	gotB, _ := s.Get(inB.ID)
	assert.Equal(t, "b", gotB.ProjectID)
}

func TestChatStoreReturnsCopies(t *testing.T) {
	s, _ := newTestChatStore(t)
	chat := s.Create("", "")
	s.AppendMessage(chat.ID, Message{Role: RoleUser, Content: "original"})

	got, _ := s.Get(chat.ID)
	got.Messages[0].Content = "mutated"

	again, _ := s.Get(chat.ID)
	assert.Equal(t, "original", again.Messages[0].Content)
}

func TestChatStoreReload(t *testing.T) {
	s, kv := newTestChatStore(t)
	chat := s.Create("", "openai/gpt-4o-mini")
	s.AppendMessage(chat.ID, Message{Role: RoleUser, Content: "persist me"})

	reloaded := NewChatStore(&persister{kv: kv})
	require.NoError(t, reloaded.Load())

	got, ok := reloaded.Active()
	require.True(t, ok)
	assert.Equal(t, chat.ID, got.ID)
	assert.Equal(t, "persist me", got.Name)
	assert.Equal(t, "openai/gpt-4o-mini", got.Model)
}

func TestChatStoreLoadsWebClientFormat(t *testing.T) {
	kv := newMemStore()
	kv.data[keyChats] = `[{"id":"c1","name":"Old chat","messages":null,"timestamp":"2024-03-01T10:00:00.000Z"}]`

	s := NewChatStore(&persister{kv: kv})
	require.NoError(t, s.Load())

	got, ok := s.Get("c1")
	require.True(t, ok)
	assert.NotNil(t, got.Messages)
	assert.Equal(t, 2024, got.Timestamp.Year())
}

func TestEmptyChatStoresMessageArray(t *testing.T) {
	s, kv := newTestChatStore(t)
	chat := s.Create("", "m")

	raw, ok := kv.value(keyChats)
	require.True(t, ok)
	assert.Contains(t, raw, `"messages":[]`)
	assert.NotContains(t, raw, `"messages":null`)

	for _, got := range []Chat{chat, s.List()[0]} {
		assert.NotNil(t, got.Messages)
		assert.Empty(t, got.Messages)
	}
	got, _ := s.Get(chat.ID)
	assert.NotNil(t, got.Messages)
}
