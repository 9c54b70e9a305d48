package notify

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/newsmate/internal/service/session"
)

func TestConsolePlainOutput(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)

	c.Notify(session.LevelInfo, "Chat session reset successfully")
	c.Notify(session.LevelError, "Response is taking longer than usual.")

	require.Equal(t,
		"[info] Chat session reset successfully\n[error] Response is taking longer than usual.\n",
		buf.String())
}

func TestConsoleImplementsNotifier(t *testing.T) {
	var _ session.Notifier = NewConsole(&bytes.Buffer{}, true)
}
