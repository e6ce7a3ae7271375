package main

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

const welcomeText = "Send a message to start chatting."

// ChatComponent renders the transcript of the active chat.
type ChatComponent struct {
	Viewport   viewport.Model
	Messages   []Message
	Title      string
	Width      int
	Height     int
	Markdown   bool
	AutoScroll bool

	// streaming holds the partially revealed reply, shown after Messages.
	streaming   string
	isStreaming bool

	theme    *Theme
	renderer *glamour.TermRenderer
	// renderedWidth and renderedStyle key the cached renderer.
	renderedWidth int
	renderedStyle string
}

// NewChatComponent creates a new chat component
func NewChatComponent(width, height int, theme *Theme) ChatComponent {
	c := ChatComponent{
		Viewport:   viewport.New(max(width-2, 1), max(height-3, 1)),
		Width:      width,
		Height:     height,
		Markdown:   true,
		AutoScroll: true,
		theme:      theme,
	}
	c.UpdateContent()
	return c
}

// SetWidth updates the width of the chat component
func (c *ChatComponent) SetWidth(width int) {
	c.Width = width
	c.Viewport.Width = max(width-2, 1)
	c.UpdateContent()
}

// SetHeight updates the height of the chat component
func (c *ChatComponent) SetHeight(height int) {
	c.Height = height
	c.Viewport.Height = max(height-3, 1) // border and title
	c.UpdateContent()
}

// SetTheme switches palette and markdown style.
func (c *ChatComponent) SetTheme(theme *Theme) {
	c.theme = theme
	c.UpdateContent()
}

// SetMarkdown toggles glamour rendering of assistant messages.
func (c *ChatComponent) SetMarkdown(enabled bool) {
	c.Markdown = enabled
	c.UpdateContent()
}

// SetChat replaces the transcript.
func (c *ChatComponent) SetChat(title string, messages []Message) {
	c.Title = title
	c.Messages = messages
	c.UpdateContent()
}

// SetStreaming shows text as a reply in progress.
func (c *ChatComponent) SetStreaming(text string) {
	c.streaming = text
	c.isStreaming = true
	c.UpdateContent()
}

// ClearStreaming removes the reply in progress.
func (c *ChatComponent) ClearStreaming() {
	c.streaming = ""
	c.isStreaming = false
	c.UpdateContent()
}

// Streaming returns the reply in progress.
func (c ChatComponent) Streaming() (string, bool) {
	return c.streaming, c.isStreaming
}

func (c *ChatComponent) markdownRenderer(width int) *glamour.TermRenderer {
	style := c.theme.GlamourStyle
	if c.renderer != nil && c.renderedWidth == width && c.renderedStyle == style {
		return c.renderer
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		slog.Warn("chat.renderer_failed", "error", err)
		return nil
	}
	c.renderer, c.renderedWidth, c.renderedStyle = r, width, style
	return r
}

func (c *ChatComponent) renderAssistant(content string, width int) string {
	if c.Markdown {
		if r := c.markdownRenderer(width); r != nil {
			if out, err := r.Render(content); err == nil {
				return strings.Trim(out, "\n")
			}
		}
	}
	return lipgloss.NewStyle().
		Foreground(c.theme.AIText).
		Padding(0, 1).
		Render(wordwrap.String(content, width-2))
}

func (c *ChatComponent) renderUser(content string, width int) string {
	label := lipgloss.NewStyle().Foreground(c.theme.UserText).Bold(true).Render("You")
	body := lipgloss.NewStyle().
		Foreground(c.theme.UserText).
		Padding(0, 1).
		Render(wordwrap.String(content, width-2))
	return label + "\n" + body
}

// UpdateContent updates the viewport content based on the messages
func (c *ChatComponent) UpdateContent() {
	if c.theme == nil {
		c.theme = NewTheme(ThemeLight)
	}
	width := max(c.Viewport.Width-1, 10)

	var views []string
	if len(c.Messages) == 0 && !c.isStreaming {
		views = append(views, c.theme.MutedStyle().Padding(1, 1).Render(welcomeText))
	}
	aiLabel := lipgloss.NewStyle().Foreground(c.theme.AIText).Bold(true).Render("Assistant")
	for _, msg := range c.Messages {
		if msg.Role == RoleUser {
			views = append(views, c.renderUser(msg.Content, width))
		} else {
			views = append(views, aiLabel+"\n"+c.renderAssistant(msg.Content, width))
		}
	}
	if c.isStreaming {
		// Partial markdown renders poorly, so the reveal is shown as plain text.
		body := lipgloss.NewStyle().
			Foreground(c.theme.AIText).
			Padding(0, 1).
			Render(wordwrap.String(c.streaming+"▌", width-2))
		views = append(views, aiLabel+"\n"+body)
	}

	c.Viewport.SetContent(strings.Join(views, "\n\n"))
	if c.AutoScroll {
		c.Viewport.GotoBottom()
	}
}

// Update handles scrolling.
func (c ChatComponent) Update(msg tea.Msg) (ChatComponent, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			c.Viewport.LineUp(1)
			c.AutoScroll = false
		case tea.MouseButtonWheelDown:
			c.Viewport.LineDown(1)
			c.AutoScroll = c.Viewport.AtBottom()
		}
		return c, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "pgup":
			c.Viewport.HalfViewUp()
			c.AutoScroll = false
		case "pgdown":
			c.Viewport.HalfViewDown()
			c.AutoScroll = c.Viewport.AtBottom()
		case "ctrl+home":
			c.Viewport.GotoTop()
			c.AutoScroll = false
		case "ctrl+end":
			c.Viewport.GotoBottom()
			c.AutoScroll = true
		}
		return c, nil
	}
	return c, nil
}

// View renders the chat component
func (c ChatComponent) View() string {
	title := c.Title
	if title == "" {
		title = DefaultChatName
	}
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(c.theme.Accent).
		Padding(0, 1).
		Render(truncateWidth(title, max(c.Width-4, 1)))
	body := lipgloss.JoinVertical(lipgloss.Left, header, c.Viewport.View())
	return c.theme.PanelStyle(false).
		Width(max(c.Width-2, 1)).
		Height(max(c.Height-2, 1)).
		Render(body)
}
