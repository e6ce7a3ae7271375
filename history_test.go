package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHistory(t *testing.T, entries ...string) (*InputHistory, *memStore) {
	t.Helper()
	kv := newMemStore()
	h := NewInputHistory(&persister{kv: kv})
	require.NoError(t, h.Load())
	// Save puts each entry in front, so feed them oldest first.
	for i := len(entries) - 1; i >= 0; i-- {
		h.Save(entries[i])
	}
	return h, kv
}

func TestHistorySaveMovesDuplicatesToFront(t *testing.T) {
	h, _ := newTestHistory(t, "c", "b", "a")

	h.Save("a")
	assert.Equal(t, []string{"a", "c", "b"}, h.Entries())

	h.Save("")
	assert.Equal(t, []string{"a", "c", "b"}, h.Entries())
}

func TestHistoryIsCapped(t *testing.T) {
	h, _ := newTestHistory(t)
	for i := 0; i < maxInputHistory+5; i++ {
		h.Save(fmt.Sprintf("prompt %d", i))
	}

	entries := h.Entries()
	require.Len(t, entries, maxInputHistory)
	assert.Equal(t, fmt.Sprintf("prompt %d", maxInputHistory+4), entries[0])
	assert.Equal(t, "prompt 5", entries[maxInputHistory-1])
}

func TestHistoryRecallFromRest(t *testing.T) {
	h, _ := newTestHistory(t, "c", "b", "a")

	text, ok := h.Recall(RecallOlder)
	assert.True(t, ok)
	assert.Equal(t, "c", text)

	text, _ = h.Recall(RecallOlder)
	assert.Equal(t, "b", text)

	text, _ = h.Recall(RecallNewer)
	assert.Equal(t, "c", text)

	text, ok = h.Recall(RecallNewer)
	assert.True(t, ok, "leaving the newest entry clears the input")
	assert.Empty(t, text)
	assert.Equal(t, -1, h.Cursor())

	_, ok = h.Recall(RecallNewer)
	assert.False(t, ok)
}

func TestHistoryRecallFromNewestEntry(t *testing.T) {
	h, _ := newTestHistory(t, "c", "b", "a")

	// The user has already recalled the newest prompt.
	text, _ := h.Recall(RecallOlder)
	require.Equal(t, "c", text)

	var got []string
	for _, dir := range []RecallDirection{RecallOlder, RecallOlder, RecallNewer} {
		text, ok := h.Recall(dir)
		require.True(t, ok)
		got = append(got, text)
	}
	assert.Equal(t, []string{"b", "a", "b"}, got)
}

func TestHistoryRecallStopsAtOldest(t *testing.T) {
	h, _ := newTestHistory(t, "b", "a")

	h.Recall(RecallOlder)
	h.Recall(RecallOlder)
	text, ok := h.Recall(RecallOlder)
	assert.True(t, ok)
	assert.Equal(t, "a", text)
	assert.Equal(t, 1, h.Cursor())
}

func TestHistoryRecallEmpty(t *testing.T) {
	h, _ := newTestHistory(t)
	_, ok := h.Recall(RecallOlder)
	assert.False(t, ok)
}

func TestHistoryResetAndSaveClearCursor(t *testing.T) {
	h, _ := newTestHistory(t, "b", "a")

	h.Recall(RecallOlder)
	h.Reset()
	assert.Equal(t, -1, h.Cursor())

	h.Recall(RecallOlder)
	h.Save("new")
	assert.Equal(t, -1, h.Cursor())
}

func TestHistoryPersists(t *testing.T) {
	h, kv := newTestHistory(t, "b", "a")
	h.Save("c")

	reloaded := NewInputHistory(&persister{kv: kv})
	require.NoError(t, reloaded.Load())
	assert.Equal(t, []string{"c", "b", "a"}, reloaded.Entries())

	reloaded.Clear()
	assert.Empty(t, reloaded.Entries())
	raw, _ := kv.value(keyInputHistory)
	assert.Equal(t, "[]", raw)
}

func TestHistoryLoadTruncatesOversizedStore(t *testing.T) {
	kv := newMemStore()
	var entries []string
	for i := 0; i < maxInputHistory+10; i++ {
		entries = append(entries, fmt.Sprintf("%q", fmt.Sprint(i)))
	}
	kv.data[keyInputHistory] = "[" + strings.Join(entries, ",") + "]"

	h := NewInputHistory(&persister{kv: kv})
	require.NoError(t, h.Load())
	assert.Len(t, h.Entries(), maxInputHistory)
	assert.Equal(t, "0", h.Entries()[0])
}
