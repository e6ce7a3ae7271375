package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Command represents a slash command
type Command struct {
	Name        string
	Usage       string
	Description string
	Handler     func(*TUIModel, []string) tea.Cmd
}

// CommandRegistry holds all available commands
type CommandRegistry struct {
	Commands map[string]Command
	order    []string
}

// NewCommandRegistry creates a new command registry
func NewCommandRegistry() CommandRegistry {
	registry := CommandRegistry{
		Commands: make(map[string]Command),
	}

	registry.RegisterCommand("/help", "", "Show commands and keys", handleHelpCommand)
	registry.RegisterCommand("/new", "[project]", "Start a new chat", handleNewChatCommand)
	registry.RegisterCommand("/chats", "", "Switch to another chat", handleChatsCommand)
	registry.RegisterCommand("/rename", "<name>", "Rename the active chat", handleRenameCommand)
	registry.RegisterCommand("/delete", "", "Delete the active chat", handleDeleteCommand)
	registry.RegisterCommand("/model", "[id]", "Set the model of the active chat", handleModelCommand)
	registry.RegisterCommand("/default-model", "[id]", "Set the default model", handleDefaultModelCommand)
	registry.RegisterCommand("/provider", "<name>", "Switch the completion backend", handleProviderCommand)
	registry.RegisterCommand("/project", "new|rename|delete|toggle [name]", "Manage projects", handleProjectCommand)
	registry.RegisterCommand("/move", "[project|none]", "Move the active chat to a project", handleMoveCommand)
	registry.RegisterCommand("/theme", "[light|dark]", "Switch the color theme", handleThemeCommand)
	registry.RegisterCommand("/key", "[key|clear]", "Set or clear the API key", handleKeyCommand)
	registry.RegisterCommand("/context", "", "Show how much of the model's window the chat uses", handleContextCommand)
	registry.RegisterCommand("/export", "[md|html]", "Export the active chat", handleExportCommand)
	registry.RegisterCommand("/quit", "", "Quit the application", handleQuitCommand)

	return registry
}

// RegisterCommand registers a new command
func (cr *CommandRegistry) RegisterCommand(name, usage, description string, handler func(*TUIModel, []string) tea.Cmd) {
	if _, exists := cr.Commands[name]; !exists {
		cr.order = append(cr.order, name)
	}
	cr.Commands[name] = Command{
		Name:        name,
		Usage:       usage,
		Description: description,
		Handler:     handler,
	}
}

// GetCommand gets a command by name
func (cr CommandRegistry) GetCommand(name string) (Command, bool) {
	cmd, exists := cr.Commands[name]
	return cmd, exists
}

// GetAllCommands returns all registered commands
func (cr CommandRegistry) GetAllCommands() []Command {
	var commands []Command
	for _, name := range cr.order {
		if cmd, ok := cr.Commands[name]; ok {
			commands = append(commands, cmd)
		}
	}
	return commands
}

// Matching returns the commands whose name starts with prefix.
func (cr CommandRegistry) Matching(prefix string) []CompletionOption {
	prefix = strings.ToLower(prefix)
	var out []CompletionOption
	for _, cmd := range cr.GetAllCommands() {
		if strings.HasPrefix(cmd.Name, prefix) {
			out = append(out, CompletionOption{Value: cmd.Name, Description: cmd.Description})
		}
	}
	return out
}

// Command handlers

type showHelpMsg struct{}

type exportDoneMsg struct {
	path string
	err  error
}

func handleHelpCommand(model *TUIModel, args []string) tea.Cmd {
	return func() tea.Msg { return showHelpMsg{} }
}

func handleQuitCommand(model *TUIModel, args []string) tea.Cmd {
	return tea.Quit
}

func handleNewChatCommand(model *TUIModel, args []string) tea.Cmd {
	projectID := ""
	if name := strings.Join(args, " "); name != "" {
		p, ok := model.app.Projects.FindByName(name)
		if !ok {
			model.toastManager.AddToast(fmt.Sprintf("No project named %q", name), "error", toastShort)
			return nil
		}
		projectID = p.ID
	}
	model.newChat(projectID)
	return nil
}

func handleChatsCommand(model *TUIModel, args []string) tea.Cmd {
	model.chatModal = NewChatSelectionModal(
		model.app.Chats.List(), model.app.Projects.List(), model.app.Chats.ActiveID(), model.theme)
	return nil
}

func handleRenameCommand(model *TUIModel, args []string) tea.Cmd {
	chat, ok := model.app.Chats.Active()
	if !ok {
		model.toastManager.AddToast("No active chat", "warning", toastShort)
		return nil
	}
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		model.toastManager.AddToast("Usage: /rename <name>", "warning", toastShort)
		return nil
	}
	model.app.Chats.Rename(chat.ID, name)
	model.refresh()
	return nil
}

func handleDeleteCommand(model *TUIModel, args []string) tea.Cmd {
	chat, ok := model.app.Chats.Active()
	if !ok {
		model.toastManager.AddToast("No active chat", "warning", toastShort)
		return nil
	}
	model.app.Chats.Delete(chat.ID)
	model.toastManager.AddToast(fmt.Sprintf("Deleted %q", chat.Name), "success", toastShort)
	model.refresh()
	return nil
}

func handleModelCommand(model *TUIModel, args []string) tea.Cmd {
	chat, ok := model.app.Chats.Active()
	if !ok {
		model.toastManager.AddToast("No active chat", "warning", toastShort)
		return nil
	}
	if len(args) == 0 {
		current := chat.EffectiveModel(model.app.Settings.DefaultModel())
		model.modelModal = NewModelSelectionModal(current, modelForChat, model.theme)
		return nil
	}
	return func() tea.Msg { return modelSelectedMsg{model: args[0], target: modelForChat} }
}

func handleDefaultModelCommand(model *TUIModel, args []string) tea.Cmd {
	if len(args) == 0 {
		model.modelModal = NewModelSelectionModal(model.app.Settings.DefaultModel(), modelForDefault, model.theme)
		return nil
	}
	return func() tea.Msg { return modelSelectedMsg{model: args[0], target: modelForDefault} }
}

func handleProviderCommand(model *TUIModel, args []string) tea.Cmd {
	if len(args) == 0 {
		model.toastManager.AddToast(fmt.Sprintf("Provider: %s", model.config.LLM.Provider), "info", toastShort)
		return nil
	}
	next := *model.config
	next.LLM.Provider = strings.ToLower(args[0])
	if next.LLM.Provider != model.config.LLM.Provider {
		// A configured key belongs to the previous backend.
		next.LLM.APIKey = ""
	}
	if err := model.app.ApplyConfig(&next); err != nil {
		model.toastManager.AddToast(err.Error(), "error", toastLong)
		return nil
	}
	model.config = model.app.Config
	if err := SaveConfig(model.config); err != nil {
		model.toastManager.AddToast(fmt.Sprintf("Failed to save config: %v", err), "warning", toastLong)
	} else {
		model.toastManager.AddToast(fmt.Sprintf("Provider changed to %s", next.LLM.Provider), "success", toastShort)
	}
	model.refresh()
	return nil
}

func handleProjectCommand(model *TUIModel, args []string) tea.Cmd {
	if len(args) == 0 {
		model.toastManager.AddToast("Usage: /project new|rename|delete|toggle [name]", "warning", toastShort)
		return nil
	}
	projects := model.app.Projects
	name := strings.TrimSpace(strings.Join(args[1:], " "))

	switch args[0] {
	case "new":
		p, ok := projects.Create(name)
		if !ok {
			model.toastManager.AddToast("Usage: /project new <name>", "warning", toastShort)
			return nil
		}
		model.toastManager.AddToast(fmt.Sprintf("Created project %q", p.Name), "success", toastShort)
	case "rename":
		p, ok := model.activeProject()
		if !ok {
			model.toastManager.AddToast("The active chat is not in a project", "warning", toastShort)
			return nil
		}
		if name == "" {
			model.toastManager.AddToast("Usage: /project rename <name>", "warning", toastShort)
			return nil
		}
		projects.Rename(p.ID, name)
	case "delete", "toggle":
		p, ok := model.projectByNameOrActive(name)
		if !ok {
			model.toastManager.AddToast("No such project", "warning", toastShort)
			return nil
		}
		if args[0] == "toggle" {
			projects.Toggle(p.ID)
		} else {
			projects.Delete(p.ID)
			model.toastManager.AddToast(fmt.Sprintf("Deleted project %q", p.Name), "success", toastShort)
		}
	default:
		model.toastManager.AddToast(fmt.Sprintf("Unknown project action: %s", args[0]), "error", toastShort)
		return nil
	}
	model.refresh()
	return nil
}

func handleMoveCommand(model *TUIModel, args []string) tea.Cmd {
	chat, ok := model.app.Chats.Active()
	if !ok {
		model.toastManager.AddToast("No active chat", "warning", toastShort)
		return nil
	}
	name := strings.TrimSpace(strings.Join(args, " "))
	projectID := ""
	if name != "" && name != "none" {
		p, ok := model.app.Projects.FindByName(name)
		if !ok {
			model.toastManager.AddToast(fmt.Sprintf("No project named %q", name), "error", toastShort)
			return nil
		}
		projectID = p.ID
	}
	model.app.Chats.MoveToProject(chat.ID, projectID)
	model.refresh()
	return nil
}

func handleThemeCommand(model *TUIModel, args []string) tea.Cmd {
	var err error
	if len(args) == 0 {
		_, err = model.app.Settings.ToggleTheme()
	} else {
		err = model.app.Settings.SetTheme(parseTheme(args[0]))
	}
	if err != nil {
		model.toastManager.AddToast(fmt.Sprintf("Failed to save theme: %v", err), "warning", toastShort)
	}
	model.applyTheme()
	return nil
}

func handleKeyCommand(model *TUIModel, args []string) tea.Cmd {
	if len(args) == 0 {
		model.keyModal = NewAPIKeyModal(model.app.Settings.APIKey() != "", model.theme)
		return nil
	}
	key := args[0]
	if key == "clear" {
		key = ""
	}
	return func() tea.Msg { return apiKeyEnteredMsg{key: key} }
}

func handleContextCommand(model *TUIModel, args []string) tea.Cmd {
	chat, ok := model.app.Chats.Active()
	if !ok {
		model.toastManager.AddToast("No active chat", "warning", toastShort)
		return nil
	}
	info := chatContextInfo(chat, chat.EffectiveModel(model.app.Settings.DefaultModel()))
	text := renderContextInfo(info)
	model.infoModal = NewBaseModal("Context Usage", text, 72, lipgloss.Height(text)+4, model.theme)
	return nil
}

func handleExportCommand(model *TUIModel, args []string) tea.Cmd {
	chat, ok := model.app.Chats.Active()
	if !ok {
		model.toastManager.AddToast("No active chat", "warning", toastShort)
		return nil
	}
	format := ExportMarkdown
	if len(args) > 0 {
		var err error
		if format, err = parseExportFormat(args[0]); err != nil {
			model.toastManager.AddToast(err.Error(), "error", toastShort)
			return nil
		}
	}
	projectName := ""
	if p, ok := model.app.Projects.Get(chat.ProjectID); ok {
		projectName = p.Name
	}
	return func() tea.Msg {
		path, err := exportChat(chat, format, projectName, "")
		return exportDoneMsg{path: path, err: err}
	}
}
