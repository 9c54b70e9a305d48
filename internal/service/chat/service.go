package chat

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/zhouzirui/newsmate/internal/model/chat"
)

var (
	ErrSessionRequired = errors.New("session id is required")
	ErrMessageRequired = errors.New("message is required")
)

// Responder produces the assistant's answer for one turn.
type Responder interface {
	Respond(ctx context.Context, sessionID string, history []chat.HistoryEntry, message string) (string, error)
}

// Service keeps paired conversation history per session in memory.
type Service struct {
	mu        sync.RWMutex
	histories map[string][]chat.HistoryEntry
	responder Responder
}

// NewService bootstraps the in-memory history store.
func NewService(responder Responder) *Service {
	if responder == nil {
		responder = EchoResponder{}
	}
	return &Service{
		histories: make(map[string][]chat.HistoryEntry),
		responder: responder,
	}
}

// Reply answers message and records the turn. A failed responder leaves the
// history untouched.
func (s *Service) Reply(ctx context.Context, sessionID, message string) (string, error) {
	if sessionID == "" {
		return "", ErrSessionRequired
	}
	if strings.TrimSpace(message) == "" {
		return "", ErrMessageRequired
	}

	history, _ := s.History(ctx, sessionID)
	answer, err := s.responder.Respond(ctx, sessionID, history, message)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.histories[sessionID] = append(s.histories[sessionID], chat.HistoryEntry{User: message, Bot: answer})
	s.mu.Unlock()

	return answer, nil
}

// History returns a copy of the stored turns; unknown sessions have none.
func (s *Service) History(_ context.Context, sessionID string) ([]chat.HistoryEntry, error) {
	if sessionID == "" {
		return nil, ErrSessionRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.histories[sessionID]
	copied := make([]chat.HistoryEntry, len(entries))
	copy(copied, entries)
	return copied, nil
}

// Reset forgets sessionID's history. Resetting an unknown session succeeds.
func (s *Service) Reset(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrSessionRequired
	}

	s.mu.Lock()
	delete(s.histories, sessionID)
	s.mu.Unlock()
	return nil
}

// EchoResponder answers without a model, for local development.
type EchoResponder struct{}

func (EchoResponder) Respond(_ context.Context, _ string, history []chat.HistoryEntry, message string) (string, error) {
	if len(history) == 0 {
		return "You said: " + message, nil
	}
	return "You said: " + message + " (turn " + strconv.Itoa(len(history)+1) + ")", nil
}
