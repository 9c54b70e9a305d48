// Package session is the client-side state machine of a NewsMate
// conversation: the transcript store, history synchronization, optimistic
// sends, resets and the slow-response watchdog.
package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/zhouzirui/newsmate/internal/model/chat"
)

// Options configures a Session. Every field is optional.
type Options struct {
	SessionID          string
	Notifier           Notifier
	Errors             ErrorLogger
	Input              InputClearer
	IDs                IDGenerator
	Clock              Clock
	Now                func() time.Time
	ResponseWarning    time.Duration
	EmptyReplyFallback string
	Logger             zerolog.Logger
}

// Session owns one conversation view and the operations that mutate it.
// Callers drive it from a single event loop and keep triggers disabled while
// Busy reports true.
type Session struct {
	store      *Store
	dispatcher *Dispatcher
	resetter   *ResetController
	history    *HistorySynchronizer
	watchdog   *Watchdog
}

// New assembles a Session talking to remote.
func New(remote Remote, opts Options) *Session {
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.Errors == nil {
		opts.Errors = nopErrorLogger{}
	}

	store := NewStore(opts.SessionID, opts.Now)
	return &Session{
		store: store,
		dispatcher: NewDispatcher(store, remote, DispatcherConfig{
			IDs:                opts.IDs,
			Errors:             opts.Errors,
			Input:              opts.Input,
			Now:                opts.Now,
			EmptyReplyFallback: opts.EmptyReplyFallback,
			Logger:             opts.Logger,
		}),
		resetter: NewResetController(store, remote, opts.Notifier, opts.Errors),
		history:  NewHistorySynchronizer(store, remote, opts.Notifier, opts.Errors),
		watchdog: NewWatchdog(store, opts.Notifier, opts.ResponseWarning, opts.Clock,
			opts.Logger.With().Str("component", "watchdog").Logger()),
	}
}

// Store exposes the underlying state for rendering and tests.
func (s *Session) Store() *Store { return s.store }

// ID returns the server-side conversation id.
func (s *Session) ID() string { return s.store.SessionID() }

// Busy reports whether an operation is in flight.
func (s *Session) Busy() bool { return s.store.Loading() }

// View returns the transcript to render, welcome included when empty.
func (s *Session) View() []chat.Message { return s.store.View() }

// Mount synchronizes the transcript with the server's history.
func (s *Session) Mount(ctx context.Context) bool {
	return s.history.Load(ctx, s.store.SessionID())
}

// Submit sends text in the current conversation.
func (s *Session) Submit(ctx context.Context, text string) Outcome {
	return s.dispatcher.Send(ctx, text, s.store.SessionID())
}

// Reset clears the current conversation on both sides.
func (s *Session) Reset(ctx context.Context) bool {
	return s.resetter.Reset(ctx, s.store.SessionID())
}

// Close stops the watchdog.
func (s *Session) Close() {
	s.watchdog.Stop()
}
