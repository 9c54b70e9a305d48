// Package notify shows session notifications as terminal toasts.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/zhouzirui/newsmate/internal/service/session"
)

var (
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// Console writes one line per notification. It is safe for concurrent use;
// the watchdog notifies from its timer goroutine.
type Console struct {
	mu     sync.Mutex
	w      io.Writer
	styled bool
}

// NewConsole writes to w, with colours when styled is true.
func NewConsole(w io.Writer, styled bool) *Console {
	return &Console{w: w, styled: styled}
}

// Notify implements session.Notifier.
func (c *Console) Notify(level session.Level, message string) {
	label := "info"
	style := infoStyle
	if level == session.LevelError {
		label = "error"
		style = errorStyle
	}

	tag := "[" + label + "]"
	if c.styled {
		tag = style.Render(tag)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "%s %s\n", tag, message)
}
