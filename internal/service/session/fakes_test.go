package session

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/zhouzirui/newsmate/internal/model/chat"
)

type fakeRemote struct {
	history json.RawMessage
	histErr error

	result  *chat.SendResult
	sendErr error
	// onSend runs before SendMessage returns, while the operation is in flight.
	onSend func()

	resetErr error

	sentText    string
	sentSession string
	resetIDs    []string
}

func (f *fakeRemote) FetchHistory(_ context.Context, _ string) (json.RawMessage, error) {
	return f.history, f.histErr
}

func (f *fakeRemote) SendMessage(_ context.Context, text, sessionID string) (*chat.SendResult, error) {
	f.sentText = text
	f.sentSession = sessionID
	if f.onSend != nil {
		f.onSend()
	}
	return f.result, f.sendErr
}

func (f *fakeRemote) ResetSession(_ context.Context, sessionID string) error {
	f.resetIDs = append(f.resetIDs, sessionID)
	return f.resetErr
}

type notification struct {
	level   Level
	message string
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []notification
}

func (r *recordingNotifier) Notify(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, notification{level: level, message: message})
}

func (r *recordingNotifier) all() []notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification(nil), r.items...)
}

type loggedError struct {
	context string
	err     error
}

type recordingErrors struct {
	items []loggedError
}

func (r *recordingErrors) LogError(context string, err error) {
	r.items = append(r.items, loggedError{context: context, err: err})
}

type clearCounter struct{ n int }

func (c *clearCounter) ClearInput() { c.n++ }

func sequentialIDs() IDGenerator {
	n := 0
	return IDFunc(func() string {
		n++
		return "m" + strconv.Itoa(n)
	})
}

func fixedNow() time.Time {
	return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
}

type manualTimer struct {
	clock   *manualClock
	due     time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// manualClock fires timers only when Advance moves past their deadline.
type manualClock struct {
	mu      sync.Mutex
	elapsed time.Duration
	timers  []*manualTimer
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, due: c.elapsed + d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.elapsed += d
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.due <= c.elapsed {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
}

func (c *manualClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}
