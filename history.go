package main

import (
	"sync"
)

// maxInputHistory is the number of distinct prompts kept for recall.
const maxInputHistory = 30

// RecallDirection selects which way Recall moves the cursor.
type RecallDirection int

const (
	RecallOlder RecallDirection = iota
	RecallNewer
)

// InputHistory keeps the most recent distinct prompts, newest first, and a
// recall cursor over them. A cursor of -1 means nothing is selected.
type InputHistory struct {
	mu      sync.Mutex
	entries []string
	cursor  int
	store   *persister
}

// NewInputHistory creates an empty history backed by p.
func NewInputHistory(p *persister) *InputHistory {
	return &InputHistory{cursor: -1, store: p}
}

// Load reads the persisted prompts. Anything beyond the cap is dropped.
func (h *InputHistory) Load() error {
	var entries []string
	if _, err := h.store.loadJSON(keyInputHistory, &entries); err != nil {
		return err
	}
	if len(entries) > maxInputHistory {
		entries = entries[:maxInputHistory]
	}
	h.mu.Lock()
	h.entries = entries
	h.cursor = -1
	h.mu.Unlock()
	return nil
}

// Save moves text to the front of the history, or inserts it there, and
// persists the result. Callers trim and skip blank input.
func (h *InputHistory) Save(text string) {
	if text == "" {
		return
	}
	h.mu.Lock()
	next := make([]string, 0, len(h.entries)+1)
	next = append(next, text)
	for _, e := range h.entries {
		if e != text {
			next = append(next, e)
		}
	}
	if len(next) > maxInputHistory {
		next = next[:maxInputHistory]
	}
	h.entries = next
	h.cursor = -1
	snapshot := append([]string(nil), next...)
	h.mu.Unlock()

	_ = h.store.saveJSON(keyInputHistory, snapshot)
}

// Recall moves the cursor and returns the entry under it. It reports false
// when there is nothing to recall.
func (h *InputHistory) Recall(dir RecallDirection) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch dir {
	case RecallOlder:
		if len(h.entries) == 0 {
			return "", false
		}
		if h.cursor < len(h.entries)-1 {
			h.cursor++
		} else {
			h.cursor = len(h.entries) - 1
		}
		return h.entries[h.cursor], true
	case RecallNewer:
		if h.cursor <= 0 {
			wasSelected := h.cursor == 0
			h.cursor = -1
			return "", wasSelected
		}
		h.cursor--
		return h.entries[h.cursor], true
	}
	return "", false
}

// Reset drops the recall selection. Call it whenever the live input changes
// by any means other than Recall.
func (h *InputHistory) Reset() {
	h.mu.Lock()
	h.cursor = -1
	h.mu.Unlock()
}

// Cursor returns the current recall position, -1 when nothing is selected.
func (h *InputHistory) Cursor() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor
}

// Entries returns the prompts, newest first.
func (h *InputHistory) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append(make([]string, 0, len(h.entries)), h.entries...)
}

// Clear removes every prompt.
func (h *InputHistory) Clear() {
	h.mu.Lock()
	h.entries = nil
	h.cursor = -1
	h.mu.Unlock()
	_ = h.store.saveJSON(keyInputHistory, []string{})
}

// Flush persists the prompts as they are.
func (h *InputHistory) Flush() error {
	return h.store.saveJSON(keyInputHistory, h.Entries())
}
