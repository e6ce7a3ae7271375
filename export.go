package main

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// ExportFormat is the file type written by exportChat.
type ExportFormat string

const (
	ExportMarkdown ExportFormat = "md"
	ExportHTML     ExportFormat = "html"
)

func parseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return ExportMarkdown, nil
	case "html":
		return ExportHTML, nil
	}
	return "", fmt.Errorf("unknown export format: %s", s)
}

// exportChat writes chat to a timestamped file in dir and returns the path.
// An empty dir means the system temp directory.
func exportChat(chat Chat, format ExportFormat, projectName, dir string) (string, error) {
	content, err := renderChatExport(chat, format, projectName, time.Now())
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	timestamp := time.Now().Format("20060102-150405")
	name := fmt.Sprintf("%s-export-%s-%s.%s", appName, shortID(chat.ID), timestamp, format)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// renderChatExport produces the file content for chat in the given format.
func renderChatExport(chat Chat, format ExportFormat, projectName string, now time.Time) ([]byte, error) {
	md := generateChatMarkdown(chat, projectName, now)
	switch format {
	case ExportMarkdown:
		return []byte(md), nil
	case ExportHTML:
		return markdownToHTML(chat.Name, md)
	default:
		return nil, fmt.Errorf("unknown export format: %s", format)
	}
}

// generateChatMarkdown renders the metadata header and every message.
func generateChatMarkdown(chat Chat, projectName string, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", chat.Name)
	if chat.Model != "" {
		fmt.Fprintf(&b, "**Model:** %s (%s)  \n", ModelLabel(chat.Model), chat.Model)
	}
	if projectName != "" {
		fmt.Fprintf(&b, "**Project:** %s  \n", projectName)
	}
	fmt.Fprintf(&b, "**Last activity:** %s  \n", chat.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "**Exported:** %s  \n", now.Format(time.RFC3339))
	fmt.Fprintf(&b, "**Messages:** %d\n", len(chat.Messages))
	b.WriteString("\n---\n\n")

	for _, msg := range chat.Messages {
		switch msg.Role {
		case RoleUser:
			b.WriteString("## User\n\n")
		case RoleAssistant:
			b.WriteString("## Assistant\n\n")
		default:
			fmt.Fprintf(&b, "## %s\n\n", msg.Role)
		}
		b.WriteString(strings.TrimRight(msg.Content, "\n"))
		b.WriteString("\n\n")
	}
	return b.String()
}

func markdownToHTML(title, md string) ([]byte, error) {
	converter := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var body bytes.Buffer
	if err := converter.Convert([]byte(md), &body); err != nil {
		return nil, fmt.Errorf("failed to convert markdown: %w", err)
	}

	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&out, "<title>%s</title>\n", html.EscapeString(title))
	out.WriteString("</head>\n<body>\n")
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>\n")
	return out.Bytes(), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "chat"
	}
	return id
}

// openInEditor creates a command to open the specified file in the user's preferred editor
func openInEditor(path string) *exec.Cmd {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	return exec.Command(editor, path)
}
