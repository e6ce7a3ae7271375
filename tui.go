package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// turnResultMsg carries the outcome of a completion request.
type turnResultMsg struct {
	turn  *Turn
	reply string
	err   error
}

// revealTickMsg advances the reveal of the turn with the given id.
type revealTickMsg struct {
	turnID int64
}

// uiTickMsg refreshes the wait timer and expires toasts.
type uiTickMsg time.Time

// persistErrorMsg reports a failed write to the key/value store.
type persistErrorMsg struct {
	key string
	err error
}

// TUIModel represents the bubbletea model for the TUI
type TUIModel struct {
	app           *App
	config        *Config
	width, height int
	theme         *Theme

	// UI Components
	sidebar      SidebarComponent
	status       StatusComponent
	prompt       PromptComponent
	chat         ChatComponent
	completions  CompletionDialog
	toastManager ToastManager
	infoModal    *BaseModal
	chatModal    *ChatSelectionModal
	modelModal   *ModelSelectionModal
	keyModal     *APIKeyModal

	showCompletionDialog bool

	// The turn in flight, and its reveal once the reply arrived
	turn     *Turn
	reveal   *RevealSequence
	revealed string

	commandRegistry CommandRegistry
}

// NewTUIModel creates a new TUI model
func NewTUIModel(app *App) *TUIModel {
	theme := NewTheme(app.Settings.Get().Theme)
	config := app.Config

	model := &TUIModel{
		app:    app,
		config: config,
		width:  80,
		height: 24,
		theme:  theme,

		sidebar:      NewSidebarComponent(config.UI.SidebarWidth, 18, theme),
		status:       NewStatusComponent(80, theme),
		prompt:       NewPromptComponent(80, 3),
		chat:         NewChatComponent(80, 18, theme),
		completions:  NewCompletionDialog(),
		toastManager: NewToastManager(),

		commandRegistry: NewCommandRegistry(),
	}
	model.status.SetTheme(theme)
	model.prompt.SetTheme(theme)
	model.chat.SetMarkdown(config.UI.Markdown)
	model.updateComponentDimensions()
	model.refresh()
	return model
}

func (m TUIModel) Init() tea.Cmd {
	return uiTick()
}

func uiTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return uiTickMsg(t) })
}

// Update implements bubbletea.Model
func (m TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.toastManager.Update()

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		return m.handleWindowSizeMsg(msg)

	default:
		return m.handleCustomMessages(msg)
	}
}

// handleKeyMsg processes keyboard input
func (m TUIModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Modals see keys first, including their own escape
	if m.keyModal != nil {
		m.keyModal, cmd = m.keyModal.Update(msg)
		return m, cmd
	}
	if m.modelModal != nil {
		m.modelModal, cmd = m.modelModal.Update(msg)
		return m, cmd
	}
	if m.chatModal != nil {
		m.chatModal, cmd = m.chatModal.Update(msg)
		return m, cmd
	}
	if m.infoModal != nil {
		if s := msg.String(); s == "esc" || s == "enter" || s == "q" {
			m.infoModal = nil
		}
		return m, nil
	}

	if msg.String() == "esc" {
		return m.handleEscape()
	}

	if m.showCompletionDialog {
		return m.handleCompletionDialog(msg)
	}

	switch msg.String() {
	case "enter":
		return m.handleEnterKey()
	case "alt+enter", "ctrl+j":
		m.prompt.InsertNewline()
		m.app.History.Reset()
		return m, nil
	case "up", "down":
		if m.prompt.SingleLine() {
			return m.handleRecall(msg.String() == "up")
		}
	case "ctrl+n":
		m.newChat("")
		return m, nil
	case "ctrl+k", "ctrl+l":
		delta := -1
		if msg.String() == "ctrl+l" {
			delta = 1
		}
		if id, ok := m.sidebar.Neighbor(delta); ok {
			m.selectChat(id)
		}
		return m, nil
	case "ctrl+t":
		cmd = handleThemeCommand(&m, nil)
		return m, cmd
	case "pgup", "pgdown", "ctrl+home", "ctrl+end":
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd
	case "/":
		return m.handleSlashKey(msg)
	}

	before := m.prompt.Value()
	m.prompt, cmd = m.prompt.Update(msg)
	if m.prompt.Value() != before {
		m.app.History.Reset()
	}
	return m, cmd
}

// handleEscape cancels the pending request, finishes a running reveal or
// closes the completion dialog.
func (m TUIModel) handleEscape() (tea.Model, tea.Cmd) {
	switch m.app.Engine.State() {
	case StateAwaitingCompletion:
		if m.app.Engine.Cancel() {
			slog.Info("tui.cancel_requested")
		}
		return m, nil
	case StateRevealing:
		if m.reveal != nil {
			m.finishReveal()
		}
		return m, nil
	}

	if m.showCompletionDialog {
		m.showCompletionDialog = false
		m.completions.Hide()
	}
	return m, nil
}

func (m TUIModel) handleCompletionDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "tab":
		return m.handleCompletionSelection()
	case "down":
		m.completions.SelectNext()
		return m, nil
	case "up":
		m.completions.SelectPrev()
		return m, nil
	case " ":
		// A space ends the command name; arguments follow.
		m.showCompletionDialog = false
		m.completions.Hide()
		m.prompt, _ = m.prompt.Update(msg)
		return m, nil
	default:
		m.prompt, _ = m.prompt.Update(msg)
		m.updateCommandCompletions()
		return m, nil
	}
}

func (m TUIModel) handleCompletionSelection() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if selected := m.completions.GetSelected(); selected != "" {
		cmd, exists := m.commandRegistry.GetCommand(selected)
		if exists {
			if strings.HasPrefix(cmd.Usage, "<") {
				// Required argument: let the user type it.
				m.prompt.SetValue(selected + " ")
			} else {
				m.prompt.SetValue("")
				cmds = append(cmds, cmd.Handler(&m, nil))
			}
		}
	}
	m.showCompletionDialog = false
	m.completions.Hide()
	return m, tea.Batch(cmds...)
}

// handleEnterKey runs a slash command or sends the prompt.
func (m TUIModel) handleEnterKey() (tea.Model, tea.Cmd) {
	content := strings.TrimSpace(m.prompt.Value())
	if content == "" {
		return m, nil
	}

	if strings.HasPrefix(content, "/") {
		parts := strings.Fields(content)
		cmd, exists := m.commandRegistry.GetCommand(parts[0])
		if !exists {
			m.toastManager.AddToast(fmt.Sprintf("Unknown command: %s", parts[0]), "error", toastShort)
			return m, nil
		}
		m.prompt.SetValue("")
		m.app.History.Reset()
		handled := cmd.Handler(&m, parts[1:])
		return m, handled
	}

	if m.app.Engine.Loading() {
		return m, nil
	}

	m.app.History.Save(content)
	turn, err := m.app.Engine.Begin(context.Background(), content)
	switch {
	case err == nil:
	case errors.Is(err, ErrAuthMissing):
		m.toastManager.AddNotice(AuthNotice)
		m.keyModal = NewAPIKeyModal(false, m.theme)
		return m, nil
	case errors.Is(err, ErrValidationRejected):
		return m, nil
	default:
		m.toastManager.AddToast(err.Error(), "error", toastLong)
		return m, nil
	}

	m.turn = turn
	m.prompt.SetValue("")
	m.prompt.SetWaiting(true)
	m.app.History.Reset()
	m.refresh()
	return m, awaitTurnCmd(turn)
}

func awaitTurnCmd(turn *Turn) tea.Cmd {
	return func() tea.Msg {
		reply, err := turn.Await()
		return turnResultMsg{turn: turn, reply: reply, err: err}
	}
}

func (m TUIModel) handleRecall(older bool) (tea.Model, tea.Cmd) {
	dir := RecallNewer
	if older {
		dir = RecallOlder
	}
	if text, ok := m.app.History.Recall(dir); ok {
		m.prompt.SetValue(text)
	}
	return m, nil
}

// handleSlashKey opens command completion at the start of the prompt.
func (m TUIModel) handleSlashKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	empty := m.prompt.Value() == ""
	m.prompt, _ = m.prompt.Update(msg)
	m.app.History.Reset()
	if empty {
		m.showCompletionDialog = true
		m.updateCommandCompletions()
		m.completions.Show()
	}
	return m, nil
}

func (m *TUIModel) updateCommandCompletions() {
	value := m.prompt.Value()
	if !strings.HasPrefix(value, "/") {
		m.completions.SetOptions(nil)
		return
	}
	m.completions.SetOptions(m.commandRegistry.Matching(value))
}

func (m TUIModel) handleWindowSizeMsg(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.updateComponentDimensions()
	return m, nil
}

// handleCustomMessages handles all custom message types
func (m TUIModel) handleCustomMessages(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case turnResultMsg:
		if msg.turn != m.turn {
			return m, nil
		}
		if msg.err != nil {
			notice := m.app.Engine.Fail(msg.turn, msg.err)
			m.toastManager.AddNotice(notice)
			m.endTurn()
			return m, nil
		}
		lo, hi := m.config.Reveal.Delays()
		mode := parseRevealMode(m.config.Reveal.Mode)
		if mode == RevealOff {
			m.reveal = NewRevealSequence(msg.reply, mode)
			m.finishReveal()
			return m, nil
		}
		m.app.Engine.BeginReveal(msg.turn)
		m.reveal = NewRevealSequence(msg.reply, mode)
		m.refresh()
		return m, revealTick(msg.turn.ID, revealDelay(lo, hi))

	case revealTickMsg:
		if m.turn == nil || m.reveal == nil || msg.turnID != m.turn.ID {
			return m, nil
		}
		prefix, ok := m.reveal.Next()
		if !ok || m.reveal.Done() {
			m.finishReveal()
			return m, nil
		}
		m.revealed = prefix
		if m.app.Chats.ActiveID() == m.turn.ChatID {
			m.chat.SetStreaming(prefix)
		}
		lo, hi := m.config.Reveal.Delays()
		return m, revealTick(msg.turnID, revealDelay(lo, hi))

	case uiTickMsg:
		m.status.SetState(m.app.Engine.State())
		return m, uiTick()

	case persistErrorMsg:
		m.toastManager.AddToast(fmt.Sprintf("Failed to save %s: %v", msg.key, msg.err), "error", toastLong)
		return m, nil

	case configReloadedMsg:
		if err := m.app.ApplyConfig(msg.config); err != nil {
			m.toastManager.AddToast(fmt.Sprintf("Config reload failed: %v", err), "error", toastLong)
			return m, nil
		}
		m.config = m.app.Config
		m.chat.SetMarkdown(m.config.UI.Markdown)
		m.updateComponentDimensions()
		m.refresh()
		m.toastManager.AddToast("Configuration reloaded", "info", toastShort)
		return m, nil

	case showHelpMsg:
		text := m.helpText()
		m.infoModal = NewBaseModal("Help", text, 72, lipgloss.Height(text)+4, m.theme)
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.toastManager.AddToast(fmt.Sprintf("Export failed: %v", msg.err), "error", toastLong)
			return m, nil
		}
		m.toastManager.AddToast(fmt.Sprintf("Exported to %s", msg.path), "success", toastLong)
		if strings.HasSuffix(msg.path, ".md") {
			return m, tea.ExecProcess(openInEditor(msg.path), func(err error) tea.Msg {
				if err != nil {
					slog.Warn("tui.editor_failed", "path", msg.path, "error", err)
				}
				return nil
			})
		}
		return m, nil

	case chatSelectedMsg:
		m.chatModal = nil
		m.selectChat(msg.chatID)
		return m, nil

	case modelSelectedMsg:
		m.modelModal = nil
		m.applyModel(msg.model, msg.target)
		return m, nil

	case apiKeyEnteredMsg:
		m.keyModal = nil
		if err := m.app.Settings.SetAPIKey(msg.key); err != nil {
			m.toastManager.AddToast(fmt.Sprintf("Failed to save API key: %v", err), "error", toastLong)
		} else if msg.key == "" {
			m.toastManager.AddToast("API key cleared", "info", toastShort)
		} else {
			m.toastManager.AddToast("API key saved", "success", toastShort)
		}
		m.refresh()
		return m, nil

	case modalCancelledMsg:
		m.chatModal = nil
		m.modelModal = nil
		m.keyModal = nil
		m.infoModal = nil
		return m, nil
	}

	return m, nil
}

func revealTick(turnID int64, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg { return revealTickMsg{turnID: turnID} })
}

// finishReveal commits the full reply and releases the turn.
func (m *TUIModel) finishReveal() {
	if m.turn == nil || m.reveal == nil {
		return
	}
	if err := m.app.Engine.Complete(m.turn, m.reveal.Text()); err != nil {
		slog.Warn("tui.complete_failed", "turn", m.turn.ID, "error", err)
	}
	m.endTurn()
}

func (m *TUIModel) endTurn() {
	m.turn = nil
	m.reveal = nil
	m.revealed = ""
	m.prompt.SetWaiting(false)
	m.chat.ClearStreaming()
	m.refresh()
}

func (m *TUIModel) applyModel(model string, target modelTarget) {
	switch target {
	case modelForDefault:
		if err := m.app.Settings.SetDefaultModel(model); err != nil {
			m.toastManager.AddToast(fmt.Sprintf("Failed to save default model: %v", err), "error", toastLong)
			return
		}
		m.toastManager.AddToast(fmt.Sprintf("Default model: %s", ModelLabel(model)), "success", toastShort)
	default:
		chat, ok := m.app.Chats.Active()
		if !ok {
			m.toastManager.AddToast("No active chat", "warning", toastShort)
			return
		}
		m.app.Chats.UpdateModel(chat.ID, model)
		m.toastManager.AddToast(fmt.Sprintf("Model: %s", ModelLabel(model)), "success", toastShort)
	}
	m.refresh()
}

func (m *TUIModel) newChat(projectID string) {
	chat := m.app.Chats.Create(projectID, m.app.Settings.DefaultModel())
	slog.Debug("tui.chat_created", "chat", chat.ID, "project", projectID)
	m.refresh()
}

func (m *TUIModel) selectChat(id string) {
	m.app.Chats.Select(id)
	m.refresh()
}

// activeProject returns the project of the active chat.
func (m *TUIModel) activeProject() (Project, bool) {
	chat, ok := m.app.Chats.Active()
	if !ok || chat.ProjectID == "" {
		return Project{}, false
	}
	return m.app.Projects.Get(chat.ProjectID)
}

func (m *TUIModel) projectByNameOrActive(name string) (Project, bool) {
	if name != "" {
		return m.app.Projects.FindByName(name)
	}
	return m.activeProject()
}

func (m *TUIModel) applyTheme() {
	m.theme = NewTheme(m.app.Settings.Get().Theme)
	m.sidebar.SetTheme(m.theme)
	m.status.SetTheme(m.theme)
	m.prompt.SetTheme(m.theme)
	m.chat.SetTheme(m.theme)
}

// refresh copies store state into the components.
func (m *TUIModel) refresh() {
	m.sidebar.Refresh(m.app.Projects.List(), m.app.Chats)

	defaultModel := m.app.Settings.DefaultModel()
	model := defaultModel
	count := 0
	if chat, ok := m.app.Chats.Active(); ok {
		m.chat.SetChat(chat.Name, chat.Messages)
		model = chat.EffectiveModel(defaultModel)
		count = len(chat.Messages)
	} else {
		m.chat.SetChat("", nil)
	}

	if m.turn != nil && m.reveal != nil && m.app.Chats.ActiveID() == m.turn.ChatID {
		m.chat.SetStreaming(m.revealed)
	} else if _, streaming := m.chat.Streaming(); streaming {
		m.chat.ClearStreaming()
	}

	m.status.SetProvider(m.config.LLM.Provider, model)
	m.status.MessageCount = count
	m.status.HasAPIKey = m.app.Settings.APIKey() != ""
	m.status.SetState(m.app.Engine.State())
}

// sidebarVisible hides the sidebar on narrow terminals.
func (m TUIModel) sidebarVisible() bool {
	return m.width >= 60 && m.config.UI.SidebarWidth > 0
}

// updateComponentDimensions updates the dimensions of all components based on the window size
func (m *TUIModel) updateComponentDimensions() {
	// Status bar: 1 line, toast: 1 line, prompt: 3 lines plus border
	statusHeight := 1
	toastHeight := 1
	promptHeight := 3
	mainHeight := max(m.height-statusHeight-toastHeight-promptHeight-2, 3)

	mainWidth := m.width
	if m.sidebarVisible() {
		sidebarWidth := min(m.config.UI.SidebarWidth, m.width/3)
		m.sidebar.SetSize(sidebarWidth, mainHeight)
		mainWidth -= sidebarWidth
	}

	m.chat.SetWidth(mainWidth)
	m.chat.SetHeight(mainHeight)
	m.prompt.SetWidth(m.width)
	m.prompt.SetHeight(promptHeight)
	m.status.SetWidth(m.width)
}

func (m TUIModel) helpText() string {
	var b strings.Builder
	for _, cmd := range m.commandRegistry.GetAllCommands() {
		usage := cmd.Name
		if cmd.Usage != "" {
			usage += " " + cmd.Usage
		}
		fmt.Fprintf(&b, "%-28s %s\n", usage, cmd.Description)
	}
	b.WriteString("\n")
	for _, k := range [][2]string{
		{"Enter", "Send"},
		{"Alt+Enter", "New line"},
		{"↑/↓", "Recall previous prompts"},
		{"Esc", "Cancel the request or skip the reveal"},
		{"Ctrl+N", "New chat"},
		{"Ctrl+K / Ctrl+L", "Previous / next chat"},
		{"Ctrl+T", "Toggle theme"},
		{"Ctrl+C", "Quit"},
	} {
		fmt.Fprintf(&b, "%-28s %s\n", k[0], k[1])
	}
	b.WriteString("\n")
	b.WriteString(m.theme.MutedStyle().Italic(true).Render("Esc: Close"))
	return b.String()
}

// View implements bubbletea.Model
func (m TUIModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var mainContent string
	if len(m.chat.Messages) == 0 && !m.app.Engine.Loading() {
		mainContent = renderHomeView(m.chat.Width, m.chat.Height, m.theme, m.status.HasAPIKey)
	} else {
		mainContent = m.chat.View()
	}
	if m.sidebarVisible() {
		mainContent = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), mainContent)
	}

	if m.showCompletionDialog {
		// The dialog takes the bottom rows of the main area.
		if dialog := m.completions.View(); dialog != "" {
			lines := strings.Split(mainContent, "\n")
			keep := max(len(lines)-lipgloss.Height(dialog), 0)
			mainContent = lipgloss.JoinVertical(lipgloss.Left, strings.Join(lines[:keep], "\n"), dialog)
		}
	}

	view := lipgloss.JoinVertical(
		lipgloss.Left,
		mainContent,
		m.toastManager.View(),
		m.prompt.View(),
		m.status.View(),
	)

	var modalView string
	switch {
	case m.keyModal != nil:
		modalView = m.keyModal.Render()
	case m.modelModal != nil:
		modalView = m.modelModal.Render()
	case m.chatModal != nil:
		modalView = m.chatModal.Render()
	case m.infoModal != nil:
		modalView = m.infoModal.Render()
	}
	if modalView != "" {
		view = lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modalView)
	}

	return view
}

// renderHomeView renders the welcome screen of an empty chat
func renderHomeView(width, height int, theme *Theme, hasKey bool) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.Accent).
		Align(lipgloss.Center).
		Width(width)

	title := titleStyle.Render("orchat")

	subtitle := lipgloss.NewStyle().
		Foreground(theme.Text).
		Align(lipgloss.Center).
		Width(width).
		Render("Chat with any model on OpenRouter")

	commands := []string{
		"▶ Type a message and press Enter to chat",
		"▶ Use / to access commands (e.g., /help, /new)",
		"▶ Press Ctrl+C to quit",
	}
	if !hasKey {
		commands = append([]string{"▶ Set your API key first with /key"}, commands...)
	}

	commandStyle := lipgloss.NewStyle().
		Foreground(theme.Muted).
		PaddingLeft(2)

	var commandViews []string
	for _, command := range commands {
		commandViews = append(commandViews, commandStyle.Render(command))
	}
	commandsView := lipgloss.JoinVertical(lipgloss.Left, commandViews...)

	content := lipgloss.JoinVertical(lipgloss.Center, title, "", subtitle, "", commandsView)

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
