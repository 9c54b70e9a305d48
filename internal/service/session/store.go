package session

import (
	"sync"
	"time"

	"github.com/zhouzirui/newsmate/internal/model/chat"
)

// Store holds one conversation view: the ordered transcript, the loading flag
// and the session id. Messages are only ever appended or replaced wholesale,
// so a message's position never changes once it is visible.
type Store struct {
	mu         sync.RWMutex
	sessionID  string
	transcript []chat.Message
	loading    bool
	emptiedAt  time.Time
	now        func() time.Time

	nextObserver int
	observers    []loadingObserver
}

type loadingObserver struct {
	id int
	fn func(loading bool)
}

// NewStore creates an empty view for sessionID. An empty id selects
// chat.DefaultSessionID; a nil clock selects time.Now.
func NewStore(sessionID string, now func() time.Time) *Store {
	if sessionID == "" {
		sessionID = chat.DefaultSessionID
	}
	if now == nil {
		now = time.Now
	}
	return &Store{
		sessionID: sessionID,
		emptiedAt: now().UTC(),
		now:       now,
	}
}

// SessionID returns the server-side conversation id.
func (s *Store) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// Loading reports whether an operation is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Len returns the number of stored messages, excluding the projected welcome.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transcript)
}

// Messages returns a copy of the stored transcript.
func (s *Store) Messages() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneMessages(s.transcript)
}

// View returns what the UI should render. An empty transcript projects a
// single welcome message stamped with the instant it became empty; the
// welcome is never stored.
func (s *Store) View() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.transcript) == 0 {
		return []chat.Message{chat.Welcome(s.emptiedAt)}
	}
	return cloneMessages(s.transcript)
}

// Append adds msg to the end of the transcript.
func (s *Store) Append(msg chat.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, msg.Clone())
}

// ReplaceAll discards the transcript and installs msgs in their given order.
func (s *Store) ReplaceAll(msgs []chat.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = cloneMessages(msgs)
	if len(s.transcript) == 0 {
		s.emptiedAt = s.now().UTC()
	}
}

// Clear empties the transcript. The session id is kept.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = nil
	s.emptiedAt = s.now().UTC()
}

// SetLoading updates the loading flag and tells every observer.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	observers := append([]loadingObserver(nil), s.observers...)
	s.mu.Unlock()

	for _, o := range observers {
		o.fn(loading)
	}
}

// Begin marks an operation as in flight and returns the matching release.
// Callers defer the release so loading drops back to false on every path;
// calling it more than once is harmless.
func (s *Store) Begin() (release func()) {
	s.SetLoading(true)
	var once sync.Once
	return func() {
		once.Do(func() { s.SetLoading(false) })
	}
}

// Subscribe registers fn for loading changes. Observers run on the goroutine
// that changed the flag, outside the store lock.
func (s *Store) Subscribe(fn func(loading bool)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextObserver
	s.nextObserver++
	s.observers = append(s.observers, loadingObserver{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

func cloneMessages(msgs []chat.Message) []chat.Message {
	if len(msgs) == 0 {
		return nil
	}
	out := make([]chat.Message, len(msgs))
	for i, msg := range msgs {
		out[i] = msg.Clone()
	}
	return out
}
