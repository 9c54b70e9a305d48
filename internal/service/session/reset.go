package session

import (
	"context"
)

const (
	resetSucceededMessage = "Chat session reset successfully"
	resetFailedMessage    = "Failed to reset chat session"
)

// ResetController clears a conversation on the server and then locally.
type ResetController struct {
	store    *Store
	remote   Remote
	notifier Notifier
	errs     ErrorLogger
}

// NewResetController builds a controller; nil collaborators become no-ops.
func NewResetController(store *Store, remote Remote, notifier Notifier, errs ErrorLogger) *ResetController {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if errs == nil {
		errs = nopErrorLogger{}
	}
	return &ResetController{store: store, remote: remote, notifier: notifier, errs: errs}
}

// Reset asks the server to drop sessionID's history. The local transcript is
// cleared only after the server agreed; on failure it is left as it was.
func (c *ResetController) Reset(ctx context.Context, sessionID string) bool {
	release := c.store.Begin()
	defer release()

	if err := c.remote.ResetSession(ctx, sessionID); err != nil {
		c.errs.LogError("reset session", &RemoteCallError{Op: "reset session", Err: err})
		c.notifier.Notify(LevelError, resetFailedMessage)
		return false
	}

	c.store.Clear()
	c.notifier.Notify(LevelInfo, resetSucceededMessage)
	return true
}
