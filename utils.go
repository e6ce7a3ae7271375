package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// dataDir returns ~/.local/share/orchat, where logs and the store live.
func dataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", appName), nil
}

// configDir returns ~/.config/orchat.
func configDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", appName), nil
}

// expandHome resolves a leading ~ in path.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~")), nil
}

// truncateRunes keeps the first limit runes of s and appends suffix when
// anything was cut.
func truncateRunes(s string, limit int, suffix string) string {
	if limit < 0 {
		limit = 0
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i] + suffix
		}
		count++
	}
	return s
}

// truncateWidth fits s into width terminal cells, ending with an ellipsis
// when it had to cut.
func truncateWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return runewidth.Truncate(s, width, "…")
}

// firstLine returns the first non-blank line of text, trimmed.
func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func formatRelativeTime(t time.Time) string {
	now := time.Now()

	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return fmt.Sprintf("Today %s", t.Format("15:04"))
	}

	yesterday := now.AddDate(0, 0, -1)
	if t.Year() == yesterday.Year() && t.YearDay() == yesterday.YearDay() {
		return fmt.Sprintf("Yesterday %s", t.Format("15:04"))
	}

	if t.Year() == now.Year() {
		return t.Format("Jan 2, 15:04")
	}

	return t.Format("Jan 2 2006, 15:04")
}

func formatMessageCount(n int) string {
	switch n {
	case 0:
		return ""
	case 1:
		return "1 msg"
	default:
		return fmt.Sprintf("%d msgs", n)
	}
}
