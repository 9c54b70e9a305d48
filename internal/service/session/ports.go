package session

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/zhouzirui/newsmate/internal/model/chat"
)

// Remote is the server-side half of a conversation.
type Remote interface {
	FetchHistory(ctx context.Context, sessionID string) (json.RawMessage, error)
	SendMessage(ctx context.Context, text, sessionID string) (*chat.SendResult, error)
	ResetSession(ctx context.Context, sessionID string) error
}

// Level grades a user-facing notification.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notifier shows fire-and-forget messages to the user.
type Notifier interface {
	Notify(level Level, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level Level, message string)

func (f NotifierFunc) Notify(level Level, message string) { f(level, message) }

// ErrorLogger records diagnostics for failed operations.
type ErrorLogger interface {
	LogError(context string, err error)
}

// ErrorLoggerFunc adapts a function to ErrorLogger.
type ErrorLoggerFunc func(context string, err error)

func (f ErrorLoggerFunc) LogError(context string, err error) { f(context, err) }

// InputClearer empties the pending input buffer once a message is accepted.
type InputClearer interface {
	ClearInput()
}

// IDGenerator hands out message ids that never repeat within a process.
type IDGenerator interface {
	NewID() string
}

// IDFunc adapts a function to IDGenerator.
type IDFunc func() string

func (f IDFunc) NewID() string { return f() }

// UUIDv7 generates time-ordered ids, so rapid successive sends never collide.
func UUIDv7() IDGenerator {
	return IDFunc(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})
}

type nopNotifier struct{}

func (nopNotifier) Notify(Level, string) {}

type nopErrorLogger struct{}

func (nopErrorLogger) LogError(string, error) {}
