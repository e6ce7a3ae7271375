package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// EngineState is the phase of the current send.
type EngineState int

const (
	StateIdle EngineState = iota
	StateSending
	StateAwaitingCompletion
	StateRevealing
	StateFailed
)

func (s EngineState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateAwaitingCompletion:
		return "awaiting_completion"
	case StateRevealing:
		return "revealing"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

const (
	// ApologyMessage is appended in place of a reply when a send fails.
	ApologyMessage = "Sorry, I encountered an error while processing your request."
	// FailureNotice is shown to the user when a send fails.
	FailureNotice = "Failed to get response from AI model."
)

var (
	// ErrValidationRejected means the send was ignored without side effects.
	ErrValidationRejected = errors.New("message rejected")
	// ErrSendInFlight rejects a send while another one is pending, whatever
	// chat it targets.
	ErrSendInFlight = fmt.Errorf("%w: a message is already being sent", ErrValidationRejected)
	// ErrAuthMissing means no API key is configured.
	ErrAuthMissing = errors.New("API key is not configured")
	// errStaleTurn is returned when a turn finishes after it was superseded.
	errStaleTurn = errors.New("turn is no longer current")
)

// Notice is a user facing message raised by the engine.
type Notice struct {
	Title string
	Body  string
	Level string // info, warning, error
}

// AuthNotice is raised when a send is attempted without an API key.
var AuthNotice = Notice{
	Title: "API Key Required",
	Body:  "Please set your OpenRouter API key in settings.",
	Level: "warning",
}

// Turn is one accepted send, from the user message to the reply.
type Turn struct {
	ID         int64
	ChatID     string
	Model      string
	Transcript []Message

	apiKey string
	client CompletionClient
	ctx    context.Context
	cancel context.CancelFunc
	engine *Engine
}

// Await performs the completion call for the turn.
func (t *Turn) Await() (string, error) {
	t.engine.transition(t, StateAwaitingCompletion)
	start := time.Now()
	reply, err := t.client.Complete(t.ctx, t.apiKey, t.Transcript, t.Model)
	slog.Debug("engine.completion_returned", "turn", t.ID, "model", t.Model,
		"duration", time.Since(start), "error", err)
	return reply, err
}

// Engine runs the send cycle. Only one turn may be in flight at a time.
type Engine struct {
	mu       sync.Mutex
	chats    *ChatStore
	settings *SettingsStore
	client   CompletionClient
	timeout  time.Duration

	state   EngineState
	current *Turn
	nextID  int64

	// OnStateChange, when set, observes every state transition.
	OnStateChange func(EngineState)
}

// NewEngine wires an engine to its stores. A zero timeout disables the
// per-turn deadline.
func NewEngine(chats *ChatStore, settings *SettingsStore, client CompletionClient, timeout time.Duration) *Engine {
	return &Engine{
		chats:    chats,
		settings: settings,
		client:   client,
		timeout:  timeout,
	}
}

// SetClient swaps the completion backend. It takes effect on the next turn.
func (e *Engine) SetClient(client CompletionClient) {
	e.mu.Lock()
	e.client = client
	e.mu.Unlock()
}

// SetTimeout changes the per-turn deadline for the next turn.
func (e *Engine) SetTimeout(timeout time.Duration) {
	e.mu.Lock()
	e.timeout = timeout
	e.mu.Unlock()
}

// State returns the current phase.
func (e *Engine) State() EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Loading reports whether a turn is in flight.
func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current != nil
}

// TurnOptions point a turn somewhere other than the active chat. Every
// change they imply happens only once the turn is accepted.
type TurnOptions struct {
	// ChatID sends into this chat and makes it active.
	ChatID string
	// NewChat starts a fresh chat named after the message.
	NewChat bool
	// Model overrides the target chat's model.
	Model string
}

// Begin validates text, commits the user message and returns the turn to
// await. The returned turn's transcript includes the message just appended.
func (e *Engine) Begin(ctx context.Context, text string) (*Turn, error) {
	return e.BeginWith(ctx, text, TurnOptions{})
}

// BeginWith is Begin with an explicit target.
func (e *Engine) BeginWith(ctx context.Context, text string, opts TurnOptions) (*Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrValidationRejected
	}
	if opts.ChatID != "" {
		if _, ok := e.chats.Get(opts.ChatID); !ok {
			return nil, fmt.Errorf("%w: no chat with id %s", ErrValidationRejected, opts.ChatID)
		}
	}

	e.mu.Lock()
	if e.current != nil {
		e.mu.Unlock()
		slog.Debug("engine.send_rejected", "reason", "in_flight")
		return nil, ErrSendInFlight
	}
	apiKey := e.settings.APIKey()
	if apiKey == "" {
		e.mu.Unlock()
		slog.Info("engine.send_rejected", "reason", "auth_missing")
		return nil, ErrAuthMissing
	}
	if e.client == nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: no completion client configured", ErrProvider)
	}

	e.nextID++
	turn := &Turn{ID: e.nextID, apiKey: apiKey, client: e.client, engine: e}
	if e.timeout > 0 {
		turn.ctx, turn.cancel = context.WithTimeout(ctx, e.timeout)
	} else {
		turn.ctx, turn.cancel = context.WithCancel(ctx)
	}
	e.current = turn
	e.setStateLocked(StateSending)
	e.mu.Unlock()

	defaultModel := e.settings.DefaultModel()
	var chat Chat
	var ok bool
	switch {
	case opts.ChatID != "":
		e.chats.Select(opts.ChatID)
		chat, ok = e.chats.Get(opts.ChatID)
	case !opts.NewChat:
		chat, ok = e.chats.Active()
	}
	if !ok {
		model := defaultModel
		if opts.Model != "" {
			model = opts.Model
		}
		chat = e.chats.createNamed(deriveChatName(text), "", model)
	} else if opts.Model != "" {
		e.chats.UpdateModel(chat.ID, opts.Model)
	}
	e.chats.AppendMessage(chat.ID, Message{Role: RoleUser, Content: text})

	// Read the chat back so the transcript carries the message just added.
	updated, ok := e.chats.Get(chat.ID)
	if !ok {
		e.finish(turn, StateFailed)
		return nil, fmt.Errorf("chat %s disappeared while sending", chat.ID)
	}
	turn.ChatID = updated.ID
	turn.Model = updated.EffectiveModel(defaultModel)
	turn.Transcript = updated.Messages

	slog.Info("engine.send_accepted", "turn", turn.ID, "chat", turn.ChatID,
		"model", turn.Model, "messages", len(turn.Transcript))
	return turn, nil
}

// BeginReveal marks the turn as revealing its reply.
func (e *Engine) BeginReveal(turn *Turn) {
	e.transition(turn, StateRevealing)
}

// Complete appends the reply and returns the engine to idle.
func (e *Engine) Complete(turn *Turn, reply string) error {
	if !e.isCurrent(turn) {
		return errStaleTurn
	}
	if !e.chats.AppendMessage(turn.ChatID, Message{Role: RoleAssistant, Content: reply}) {
		slog.Warn("engine.reply_dropped", "turn", turn.ID, "chat", turn.ChatID, "reason", "chat_deleted")
	}
	e.finish(turn, StateIdle)
	return nil
}

// Fail appends the apology message in place of a reply, returns the engine
// to idle and returns the notice to show.
func (e *Engine) Fail(turn *Turn, cause error) Notice {
	notice := Notice{Title: "Error", Body: FailureNotice, Level: "error"}
	if !e.isCurrent(turn) {
		return notice
	}
	slog.Error("engine.send_failed", "turn", turn.ID, "chat", turn.ChatID, "error", cause)
	e.transition(turn, StateFailed)
	if !e.chats.AppendMessage(turn.ChatID, Message{Role: RoleAssistant, Content: ApologyMessage}) {
		slog.Warn("engine.apology_dropped", "turn", turn.ID, "chat", turn.ChatID)
	}
	e.finish(turn, StateIdle)
	return notice
}

// Cancel aborts the in-flight request, if any. The pending Await returns
// an ErrCancelled error and the turn fails normally.
func (e *Engine) Cancel() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil || e.state != StateAwaitingCompletion {
		return false
	}
	e.current.cancel()
	return true
}

// Send runs a whole turn synchronously without a reveal phase.
func (e *Engine) Send(ctx context.Context, text string) (string, error) {
	return e.SendWith(ctx, text, TurnOptions{})
}

// SendWith is Send with an explicit target.
func (e *Engine) SendWith(ctx context.Context, text string, opts TurnOptions) (string, error) {
	turn, err := e.BeginWith(ctx, text, opts)
	if err != nil {
		return "", err
	}
	reply, err := turn.Await()
	if err != nil {
		e.Fail(turn, err)
		return "", err
	}
	if err := e.Complete(turn, reply); err != nil {
		return "", err
	}
	return reply, nil
}

func (e *Engine) isCurrent(turn *Turn) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return turn != nil && e.current == turn
}

func (e *Engine) transition(turn *Turn, state EngineState) {
	e.mu.Lock()
	if e.current != turn {
		e.mu.Unlock()
		return
	}
	e.setStateLocked(state)
	e.mu.Unlock()
}

func (e *Engine) finish(turn *Turn, state EngineState) {
	e.mu.Lock()
	if e.current != turn {
		e.mu.Unlock()
		return
	}
	turn.cancel()
	e.current = nil
	if state != StateIdle {
		e.setStateLocked(state)
	}
	e.setStateLocked(StateIdle)
	e.mu.Unlock()
}

func (e *Engine) setStateLocked(state EngineState) {
	if e.state == state {
		return
	}
	e.state = state
	if e.OnStateChange != nil {
		e.OnStateChange(state)
	}
}
