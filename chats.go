package main

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DefaultChatName is the name of a chat that has not received a message yet.
const DefaultChatName = "New Chat"

// chatNameLimit is the number of runes kept when a chat is named after its
// first message.
const chatNameLimit = 50

// Message is a single turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Chat is one conversation.
type Chat struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ProjectID string    `json:"projectId,omitempty"`
	Messages  []Message `json:"messages"`
	Timestamp time.Time `json:"timestamp"`
	Model     string    `json:"model,omitempty"`
}

// clone returns a deep copy so callers never share the message slice.
func (c Chat) clone() Chat {
	c.Messages = append(make([]Message, 0, len(c.Messages)), c.Messages...)
	return c
}

// deriveChatName turns the first message of a chat into its display name.
func deriveChatName(content string) string {
	return truncateRunes(content, chatNameLimit, "...")
}

// ChatStore owns the chat collection and the active chat pointer. The
// collection is ordered most recent first.
type ChatStore struct {
	mu       sync.Mutex
	chats    []Chat
	activeID string
	store    *persister
	now      func() time.Time
}

// NewChatStore creates an empty store backed by p.
func NewChatStore(p *persister) *ChatStore {
	return &ChatStore{store: p, now: time.Now}
}

// Load replaces the collection and the active id with the persisted ones.
func (s *ChatStore) Load() error {
	var chats []Chat
	if _, err := s.store.loadJSON(keyChats, &chats); err != nil {
		return err
	}
	active, err := s.store.loadString(keyActiveChat)
	if err != nil {
		return err
	}
	for i := range chats {
		if chats[i].Messages == nil {
			chats[i].Messages = []Message{}
		}
	}
	s.mu.Lock()
	s.chats = chats
	s.activeID = active
	s.mu.Unlock()
	return nil
}

// Create inserts a new empty chat at the front and makes it active.
func (s *ChatStore) Create(projectID, model string) Chat {
	return s.createNamed(DefaultChatName, projectID, model)
}

func (s *ChatStore) createNamed(name, projectID, model string) Chat {
	chat := Chat{
		ID:        uuid.NewString(),
		Name:      name,
		ProjectID: projectID,
		Messages:  []Message{},
		Timestamp: s.now(),
		Model:     model,
	}
	s.mutate(func(chats []Chat) []Chat {
		return append([]Chat{chat}, chats...)
	})
	s.setActive(chat.ID)
	return chat.clone()
}

// Select makes id the active chat. The id is not validated; an unknown id
// reads as no active chat.
func (s *ChatStore) Select(id string) {
	s.setActive(id)
}

// Rename sets the chat name as given.
func (s *ChatStore) Rename(id, newName string) {
	s.update(id, func(c *Chat) bool {
		if c.Name == newName {
			return false
		}
		c.Name = newName
		return true
	})
}

// Delete removes a chat. When it was active, the first remaining chat becomes
// active, or none when the collection is empty.
func (s *ChatStore) Delete(id string) {
	s.mu.Lock()
	remaining := make([]Chat, 0, len(s.chats))
	for _, c := range s.chats {
		if c.ID != id {
			remaining = append(remaining, c)
		}
	}
	if len(remaining) == len(s.chats) {
		s.mu.Unlock()
		return
	}
	s.chats = remaining
	activeChanged := false
	if s.activeID == id {
		s.activeID = ""
		if len(remaining) > 0 {
			s.activeID = remaining[0].ID
		}
		activeChanged = true
	}
	snapshot := cloneChats(remaining)
	active := s.activeID
	s.mu.Unlock()

	_ = s.store.saveJSON(keyChats, snapshot)
	if activeChanged {
		_ = s.store.saveString(keyActiveChat, active)
	}
}

// MoveToProject sets or clears (empty projectID) the project of a chat.
func (s *ChatStore) MoveToProject(chatID, projectID string) {
	s.update(chatID, func(c *Chat) bool {
		if c.ProjectID == projectID {
			return false
		}
		c.ProjectID = projectID
		return true
	})
}

// UpdateModel sets the per-chat model override.
func (s *ChatStore) UpdateModel(chatID, model string) {
	s.update(chatID, func(c *Chat) bool {
		if c.Model == model {
			return false
		}
		c.Model = model
		return true
	})
}

// AppendMessage adds msg to the chat and bumps its timestamp. The first
// message ever appended to a chat also names it.
func (s *ChatStore) AppendMessage(chatID string, msg Message) bool {
	return s.update(chatID, func(c *Chat) bool {
		if len(c.Messages) == 0 {
			c.Name = deriveChatName(msg.Content)
		}
		c.Messages = append(c.Messages, msg)
		c.Timestamp = s.now()
		return true
	})
}

// SyncProjects clears every project reference that is not in validIDs.
func (s *ChatStore) SyncProjects(projects []Project) {
	valid := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		valid[p.ID] = struct{}{}
	}
	s.mutate(func(chats []Chat) []Chat {
		changed := false
		for i := range chats {
			if chats[i].ProjectID == "" {
				continue
			}
			if _, ok := valid[chats[i].ProjectID]; !ok {
				chats[i].ProjectID = ""
				changed = true
			}
		}
		if !changed {
			return nil
		}
		return chats
	})
}

// List returns a copy of all chats, most recent first.
func (s *ChatStore) List() []Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneChats(s.chats)
}

// Get returns a copy of one chat.
func (s *ChatStore) Get(id string) (Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.chats {
		if c.ID == id {
			return c.clone(), true
		}
	}
	return Chat{}, false
}

// ActiveID returns the raw active id, which may not resolve to a chat.
func (s *ChatStore) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Active returns the active chat when the active id resolves.
func (s *ChatStore) Active() (Chat, bool) {
	return s.Get(s.ActiveID())
}

// InProject returns the chats assigned to projectID, in collection order.
// An empty projectID returns the uncategorized chats.
func (s *ChatStore) InProject(projectID string) []Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Chat
	for _, c := range s.chats {
		if c.ProjectID == projectID {
			out = append(out, c.clone())
		}
	}
	return out
}

// Save persists the collection and the active id as they are.
func (s *ChatStore) Save() error {
	if err := s.store.saveJSON(keyChats, s.List()); err != nil {
		return err
	}
	return s.store.saveString(keyActiveChat, s.ActiveID())
}

// EffectiveModel returns the chat override or the default model.
func (c Chat) EffectiveModel(defaultModel string) string {
	if c.Model != "" {
		return c.Model
	}
	return defaultModel
}

func (s *ChatStore) setActive(id string) {
	s.mu.Lock()
	if s.activeID == id {
		s.mu.Unlock()
		return
	}
	s.activeID = id
	s.mu.Unlock()
	_ = s.store.saveString(keyActiveChat, id)
}

// update applies fn to the chat with the given id. fn reports whether it
// changed anything.
func (s *ChatStore) update(id string, fn func(*Chat) bool) bool {
	found := false
	s.mutate(func(chats []Chat) []Chat {
		for i := range chats {
			if chats[i].ID != id {
				continue
			}
			found = true
			if fn(&chats[i]) {
				return chats
			}
			return nil
		}
		return nil
	})
	return found
}

// mutate applies fn to a deep copy of the collection and persists the result.
// fn returns nil when nothing changed.
func (s *ChatStore) mutate(fn func([]Chat) []Chat) {
	s.mu.Lock()
	next := fn(cloneChats(s.chats))
	if next == nil {
		s.mu.Unlock()
		return
	}
	s.chats = next
	snapshot := cloneChats(next)
	s.mu.Unlock()

	_ = s.store.saveJSON(keyChats, snapshot)
}

func cloneChats(chats []Chat) []Chat {
	out := make([]Chat, len(chats))
	for i, c := range chats {
		out[i] = c.clone()
	}
	return out
}
