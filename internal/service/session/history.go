package session

import (
	"context"

	"github.com/pkg/errors"
)

const historyFailedMessage = "Failed to load chat history"

// HistorySynchronizer replaces the transcript with the server's history.
type HistorySynchronizer struct {
	store    *Store
	remote   Remote
	notifier Notifier
	errs     ErrorLogger
}

// NewHistorySynchronizer builds a synchronizer; nil collaborators become no-ops.
func NewHistorySynchronizer(store *Store, remote Remote, notifier Notifier, errs ErrorLogger) *HistorySynchronizer {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if errs == nil {
		errs = nopErrorLogger{}
	}
	return &HistorySynchronizer{store: store, remote: remote, notifier: notifier, errs: errs}
}

// Load fetches and normalizes sessionID's history. Transport failures and
// malformed payloads both leave the current transcript untouched.
func (h *HistorySynchronizer) Load(ctx context.Context, sessionID string) bool {
	release := h.store.Begin()
	defer release()

	raw, err := h.remote.FetchHistory(ctx, sessionID)
	if err != nil {
		h.errs.LogError("load history", &RemoteCallError{Op: "load history", Err: err})
		h.notifier.Notify(LevelError, historyFailedMessage)
		return false
	}

	messages, err := NormalizeHistory(raw)
	if err != nil {
		h.errs.LogError("load history", errors.WithMessagef(err, "session %s", sessionID))
		h.notifier.Notify(LevelError, historyFailedMessage)
		return false
	}

	h.store.ReplaceAll(messages)
	return true
}
