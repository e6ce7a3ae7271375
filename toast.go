package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const (
	toastShort = 3 * time.Second
	toastLong  = 5 * time.Second
)

// Toast represents a single toast notification
type Toast struct {
	ID      string
	Title   string
	Message string
	Type    string // info, success, warning, error
	Created time.Time
	Timeout time.Duration
}

// ToastManager manages toast notifications
type ToastManager struct {
	Toasts []Toast
	Style  lipgloss.Style
	seq    int
	now    func() time.Time
}

// NewToastManager creates a new toast manager
func NewToastManager() ToastManager {
	return ToastManager{
		Toasts: make([]Toast, 0),
		Style: lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230")).
			Padding(0, 1).
			MaxWidth(60),
		now: time.Now,
	}
}

// AddToast adds a new toast notification
func (tm *ToastManager) AddToast(message, toastType string, timeout time.Duration) {
	tm.add(Toast{Message: message, Type: toastType, Timeout: timeout})
}

// AddNotice shows an engine notice.
func (tm *ToastManager) AddNotice(n Notice) {
	tm.add(Toast{Title: n.Title, Message: n.Body, Type: n.Level, Timeout: toastLong})
}

func (tm *ToastManager) add(t Toast) {
	if tm.now == nil {
		tm.now = time.Now
	}
	tm.seq++
	t.ID = fmt.Sprintf("toast-%d", tm.seq)
	t.Created = tm.now()
	tm.Toasts = append(tm.Toasts, t)
}

// RemoveToast removes a toast by ID
func (tm *ToastManager) RemoveToast(id string) {
	for i, toast := range tm.Toasts {
		if toast.ID == id {
			tm.Toasts = append(tm.Toasts[:i], tm.Toasts[i+1:]...)
			break
		}
	}
}

// Clear removes all existing toast notifications
func (tm *ToastManager) Clear() {
	tm.Toasts = nil
}

// Update drops expired toasts.
func (tm *ToastManager) Update() {
	if tm.now == nil {
		tm.now = time.Now
	}
	now := tm.now()
	active := tm.Toasts[:0]
	for _, toast := range tm.Toasts {
		if now.Sub(toast.Created) < toast.Timeout {
			active = append(active, toast)
		}
	}
	tm.Toasts = active
}

// Latest returns the most recent toast.
func (tm ToastManager) Latest() (Toast, bool) {
	if len(tm.Toasts) == 0 {
		return Toast{}, false
	}
	return tm.Toasts[len(tm.Toasts)-1], true
}

// View renders the most recent toast
func (tm ToastManager) View() string {
	toast, ok := tm.Latest()
	if !ok {
		return ""
	}

	text := toast.Message
	if toast.Title != "" {
		text = toast.Title + ": " + toast.Message
	}

	style := tm.Style
	switch toast.Type {
	case "success":
		style = style.Background(lipgloss.Color("76"))
	case "warning":
		style = style.Background(lipgloss.Color("136"))
	case "error":
		style = style.Background(lipgloss.Color("124"))
	}
	return style.Render(text)
}
