package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

// stubClient records every call. When gate is set, Complete blocks until a
// value arrives on it or the context ends.
type stubClient struct {
	mu     sync.Mutex
	calls  []stubCall
	reply  string
	err    error
	gate   chan struct{}
	called chan struct{}
}

type stubCall struct {
	apiKey     string
	model      string
	transcript []Message
}

func (c *stubClient) Complete(ctx context.Context, apiKey string, transcript []Message, model string) (string, error) {
	c.mu.Lock()
	c.calls = append(c.calls, stubCall{apiKey: apiKey, model: model, transcript: transcript})
	c.mu.Unlock()
	if c.called != nil {
		c.called <- struct{}{}
	}
	if c.gate != nil {
		select {
		case <-c.gate:
		case <-ctx.Done():
			return "", ErrCancelled
		}
	}
	return c.reply, c.err
}

func (c *stubClient) lastCall() stubCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[len(c.calls)-1]
}

func newTestEngine(t *testing.T, apiKey string, client CompletionClient) (*Engine, *ChatStore) {
	t.Helper()
	keyring.MockInit()
	p := &persister{kv: newMemStore()}
	settings := NewSettingsStore(p, nil)
	require.NoError(t, settings.Load())
	if apiKey != "" {
		require.NoError(t, settings.SetAPIKey(apiKey))
	}
	chats := NewChatStore(p)
	require.NoError(t, chats.Load())
	return NewEngine(chats, settings, client, 0), chats
}

func TestSendCreatesNamedChat(t *testing.T) {
	client := &stubClient{reply: "Hi there!"}
	engine, chats := newTestEngine(t, "sk-test", client)

	reply, err := engine.Send(context.Background(), "  Hello  ")
	require.NoError(t, err)
	assert.Equal(t, "Hi there!", reply)

	list := chats.List()
	require.Len(t, list, 1)
	chat := list[0]
	assert.Equal(t, "Hello", chat.Name)
	assert.Equal(t, chat.ID, chats.ActiveID())
	assert.Equal(t, []Message{
		{Role: RoleUser, Content: "Hello"},
		{Role: RoleAssistant, Content: "Hi there!"},
	}, chat.Messages)

	call := client.lastCall()
	assert.Equal(t, "sk-test", call.apiKey)
	assert.Equal(t, DefaultModelFallback, call.model)
	assert.Equal(t, []Message{{Role: RoleUser, Content: "Hello"}}, call.transcript)
	assert.Equal(t, StateIdle, engine.State())
	assert.False(t, engine.Loading())
}

func TestSendWithoutKeyHasNoEffect(t *testing.T) {
	client := &stubClient{reply: "unused"}
	engine, chats := newTestEngine(t, "", client)

	var states []EngineState
	engine.OnStateChange = func(s EngineState) { states = append(states, s) }

	_, err := engine.Send(context.Background(), "Hello")
	require.ErrorIs(t, err, ErrAuthMissing)
	assert.Empty(t, chats.List())
	assert.Empty(t, client.calls)
	assert.Empty(t, states, "loading never starts")
}

func TestSendRejectsBlankText(t *testing.T) {
	engine, chats := newTestEngine(t, "sk-test", &stubClient{})

	_, err := engine.Begin(context.Background(), " \n\t ")
	require.ErrorIs(t, err, ErrValidationRejected)
	assert.Empty(t, chats.List())
}

func TestSendFailureAppendsApology(t *testing.T) {
	client := &stubClient{err: &APIError{StatusCode: 500, Body: "boom"}}
	engine, chats := newTestEngine(t, "sk-test", client)
	chat := chats.Create("", "")

	turn, err := engine.Begin(context.Background(), "Hello")
	require.NoError(t, err)
	_, err = turn.Await()
	require.Error(t, err)

	notice := engine.Fail(turn, err)
	assert.Equal(t, FailureNotice, notice.Body)
	assert.Equal(t, "error", notice.Level)

	got, _ := chats.Get(chat.ID)
	assert.Equal(t, []Message{
		{Role: RoleUser, Content: "Hello"},
		{Role: RoleAssistant, Content: ApologyMessage},
	}, got.Messages)
	assert.Equal(t, StateIdle, engine.State())
	assert.False(t, engine.Loading())
}

func TestSecondMessageKeepsChatNameAndFullTranscript(t *testing.T) {
	client := &stubClient{reply: "ok"}
	engine, chats := newTestEngine(t, "sk-test", client)

	_, err := engine.Send(context.Background(), "First question")
	require.NoError(t, err)
	_, err = engine.Send(context.Background(), "Second question")
	require.NoError(t, err)

	chat, ok := chats.Active()
	require.True(t, ok)
	assert.Equal(t, "First question", chat.Name)
	assert.Len(t, chat.Messages, 4)
	assert.Len(t, client.lastCall().transcript, 3)
	assert.Equal(t, "Second question", client.lastCall().transcript[2].Content)
}

func TestChatModelOverridesDefault(t *testing.T) {
	client := &stubClient{reply: "ok"}
	engine, chats := newTestEngine(t, "sk-test", client)
	chats.Create("", "anthropic/claude-3-haiku")

	_, err := engine.Send(context.Background(), "Hi")
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-3-haiku", client.lastCall().model)
}

func TestOnlyOneTurnInFlight(t *testing.T) {
	client := &stubClient{reply: "done", gate: make(chan struct{})}
	engine, chats := newTestEngine(t, "sk-test", client)
	first := chats.Create("", "")

	turn, err := engine.Begin(context.Background(), "one")
	require.NoError(t, err)
	assert.True(t, engine.Loading())

	// Switching chats does not release the lock.
	other := chats.Create("", "")
	_, err = engine.Begin(context.Background(), "two")
	require.ErrorIs(t, err, ErrSendInFlight)
	require.ErrorIs(t, err, ErrValidationRejected)
	got, _ := chats.Get(other.ID)
	assert.Empty(t, got.Messages)

	close(client.gate)
	reply, err := turn.Await()
	require.NoError(t, err)
	require.NoError(t, engine.Complete(turn, reply))

	got, _ = chats.Get(first.ID)
	assert.Len(t, got.Messages, 2, "the reply lands in the chat the turn started in")
	assert.False(t, engine.Loading())
}

func TestCancelAbortsAwaitingTurn(t *testing.T) {
	client := &stubClient{gate: make(chan struct{}), called: make(chan struct{}, 1)}
	engine, chats := newTestEngine(t, "sk-test", client)

	turn, err := engine.Begin(context.Background(), "slow one")
	require.NoError(t, err)
	assert.False(t, engine.Cancel(), "nothing to cancel before the request starts")

	done := make(chan error, 1)
	go func() {
		_, err := turn.Await()
		done <- err
	}()
	<-client.called

	assert.True(t, engine.Cancel())
	select {
	case err = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Await did not return after Cancel")
	}
	require.ErrorIs(t, err, ErrCancelled)
	engine.Fail(turn, err)

	chat, _ := chats.Active()
	assert.Equal(t, ApologyMessage, chat.Messages[len(chat.Messages)-1].Content)
	assert.False(t, engine.Cancel())
}

func TestTimeoutFailsTurn(t *testing.T) {
	client := &stubClient{gate: make(chan struct{})}
	engine, _ := newTestEngine(t, "sk-test", client)
	engine.SetTimeout(20 * time.Millisecond)

	_, err := engine.Send(context.Background(), "hello")
	require.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, StateIdle, engine.State())
}

func TestStaleTurnIsIgnored(t *testing.T) {
	client := &stubClient{reply: "ok"}
	engine, chats := newTestEngine(t, "sk-test", client)

	turn, err := engine.Begin(context.Background(), "hi")
	require.NoError(t, err)
	require.NoError(t, engine.Complete(turn, "ok"))

	assert.True(t, errors.Is(engine.Complete(turn, "again"), errStaleTurn))
	engine.Fail(turn, errors.New("late"))

	chat, _ := chats.Active()
	assert.Len(t, chat.Messages, 2)
}

func TestReplyForDeletedChatIsDropped(t *testing.T) {
	client := &stubClient{reply: "ok"}
	engine, chats := newTestEngine(t, "sk-test", client)

	turn, err := engine.Begin(context.Background(), "hi")
	require.NoError(t, err)
	chats.Delete(turn.ChatID)

	require.NoError(t, engine.Complete(turn, "ok"))
	assert.Empty(t, chats.List())
	assert.False(t, engine.Loading())
}

func TestStateTransitions(t *testing.T) {
	client := &stubClient{reply: "ok"}
	engine, _ := newTestEngine(t, "sk-test", client)

	var states []EngineState
	engine.OnStateChange = func(s EngineState) { states = append(states, s) }

	turn, err := engine.Begin(context.Background(), "hi")
	require.NoError(t, err)
	reply, err := turn.Await()
	require.NoError(t, err)
	engine.BeginReveal(turn)
	require.NoError(t, engine.Complete(turn, reply))

	assert.Equal(t, []EngineState{StateSending, StateAwaitingCompletion, StateRevealing, StateIdle}, states)
	assert.Equal(t, "awaiting_completion", StateAwaitingCompletion.String())
}

func TestBeginWithoutClient(t *testing.T) {
	engine, _ := newTestEngine(t, "sk-test", nil)
	_, err := engine.Begin(context.Background(), "hi")
	require.ErrorIs(t, err, ErrProvider)
}

func TestBeginWithTargetsChatAfterGuards(t *testing.T) {
	client := &stubClient{reply: "ok"}
	engine, chats := newTestEngine(t, "sk-test", client)
	target := chats.Create("", "")
	chats.Create("", "")

	_, err := engine.SendWith(context.Background(), "hi", TurnOptions{ChatID: target.ID, Model: "anthropic/claude-3-haiku"})
	require.NoError(t, err)
	assert.Equal(t, target.ID, chats.ActiveID())
	assert.Equal(t, "anthropic/claude-3-haiku", client.lastCall().model)
	got, _ := chats.Get(target.ID)
	assert.Len(t, got.Messages, 2)
	assert.Equal(t, "anthropic/claude-3-haiku", got.Model)
}

func TestBeginWithNewChat(t *testing.T) {
	client := &stubClient{reply: "ok"}
	engine, chats := newTestEngine(t, "sk-test", client)
	chats.Create("", "")

	_, err := engine.SendWith(context.Background(), "Brand new", TurnOptions{NewChat: true, Model: "google/gemini-pro"})
	require.NoError(t, err)
	require.Len(t, chats.List(), 2)
	chat, _ := chats.Active()
	assert.Equal(t, "Brand new", chat.Name)
	assert.Equal(t, "google/gemini-pro", chat.Model)
}

func TestBeginWithUnknownChatIsRejected(t *testing.T) {
	engine, chats := newTestEngine(t, "sk-test", &stubClient{})
	_, err := engine.BeginWith(context.Background(), "hi", TurnOptions{ChatID: "missing"})
	require.ErrorIs(t, err, ErrValidationRejected)
	assert.Empty(t, chats.List())
	assert.False(t, engine.Loading())
}

func TestBeginWithoutKeyIgnoresTarget(t *testing.T) {
	engine, chats := newTestEngine(t, "", &stubClient{})
	target := chats.Create("", "")
	chats.Create("", "")
	active := chats.ActiveID()

	_, err := engine.BeginWith(context.Background(), "hi", TurnOptions{ChatID: target.ID, Model: "m"})
	require.ErrorIs(t, err, ErrAuthMissing)
	_, err = engine.BeginWith(context.Background(), "hi", TurnOptions{NewChat: true})
	require.ErrorIs(t, err, ErrAuthMissing)

	assert.Equal(t, active, chats.ActiveID())
	assert.Len(t, chats.List(), 2)
	got, _ := chats.Get(target.ID)
	assert.Empty(t, got.Model)
	assert.Empty(t, got.Messages)
}
