// Package render prints the session transcript to a terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/zhouzirui/newsmate/internal/model/chat"
)

// UnknownTime is shown for messages without a timestamp.
const UnknownTime = "unknown time"

const timeLayout = "15:04"

var (
	userLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botLabel  = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Faint(true)
)

// Transcript renders messages incrementally. When the view no longer extends
// what was printed before (history load, reset) it reprints the whole view.
type Transcript struct {
	w        io.Writer
	markdown *glamour.TermRenderer
	styled   bool
	printed  []string
}

// Options controls terminal styling.
type Options struct {
	// Styled enables colours and markdown rendering of bot replies.
	Styled bool
	// Width is the word wrap for markdown; zero means 80.
	Width int
}

// NewTranscript returns a renderer writing to w.
func NewTranscript(w io.Writer, opts Options) (*Transcript, error) {
	t := &Transcript{w: w, styled: opts.Styled}
	if !opts.Styled {
		return t, nil
	}

	width := opts.Width
	if width <= 0 {
		width = 80
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("init markdown renderer: %w", err)
	}
	t.markdown = md
	return t, nil
}

// FormatTime returns the display time of msg.
func FormatTime(msg chat.Message) string {
	if !msg.HasTimestamp() {
		return UnknownTime
	}
	return msg.Timestamp.Local().Format(timeLayout)
}

// Sync prints whatever part of view has not been printed yet.
func (t *Transcript) Sync(view []chat.Message) error {
	start := len(t.printed)
	if !t.extends(view) {
		if len(t.printed) > 0 {
			fmt.Fprintln(t.w, t.dim("──────────"))
		}
		t.printed = t.printed[:0]
		start = 0
	}

	for _, msg := range view[start:] {
		if err := t.write(msg); err != nil {
			return err
		}
		t.printed = append(t.printed, msg.ID)
	}
	return nil
}

// Reset forgets what was printed so the next Sync prints the full view.
func (t *Transcript) Reset() {
	t.printed = t.printed[:0]
}

func (t *Transcript) extends(view []chat.Message) bool {
	if len(view) < len(t.printed) {
		return false
	}
	for i, id := range t.printed {
		if view[i].ID != id {
			return false
		}
	}
	return true
}

func (t *Transcript) write(msg chat.Message) error {
	label := "You"
	style := userLabel
	if msg.Sender == chat.SenderBot {
		label = "NewsMate"
		style = botLabel
	}
	if t.styled {
		label = style.Render(label)
	}

	body := msg.Text
	if t.markdown != nil && msg.Sender == chat.SenderBot {
		out, err := t.markdown.Render(msg.Text)
		if err != nil {
			return fmt.Errorf("render message %s: %w", msg.ID, err)
		}
		body = strings.Trim(out, "\n")
	}

	_, err := fmt.Fprintf(t.w, "%s %s\n%s\n", label, t.dim(FormatTime(msg)), body)
	return err
}

func (t *Transcript) dim(s string) string {
	if !t.styled {
		return s
	}
	return dimStyle.Render(s)
}
