package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultResponseWarning is how long an operation may stay in flight
	// before the user is warned.
	DefaultResponseWarning = 10 * time.Second

	slowResponseMessage = "Response is taking longer than usual."
)

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. Tests swap in a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock schedules on the runtime timer.
func SystemClock() Clock { return systemClock{} }

// Watchdog warns once per operation when loading outlasts its window. It
// never cancels or retries the operation itself.
type Watchdog struct {
	store    *Store
	notifier Notifier
	window   time.Duration
	clock    Clock
	logger   zerolog.Logger

	mu          sync.Mutex
	generation  uint64
	timer       Timer
	stopped     bool
	unsubscribe func()
}

// NewWatchdog subscribes to store's loading changes. A zero window selects
// DefaultResponseWarning.
func NewWatchdog(store *Store, notifier Notifier, window time.Duration, clock Clock, logger zerolog.Logger) *Watchdog {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if window <= 0 {
		window = DefaultResponseWarning
	}
	if clock == nil {
		clock = SystemClock()
	}
	w := &Watchdog{
		store:    store,
		notifier: notifier,
		window:   window,
		clock:    clock,
		logger:   logger,
	}
	w.unsubscribe = store.Subscribe(w.observe)
	return w
}

// observe arms a fresh timer for every operation start and invalidates the
// previous one on every change, so a stale timer can never fire.
func (w *Watchdog) observe(loading bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	w.generation++
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	if !loading {
		return
	}

	generation := w.generation
	w.timer = w.clock.AfterFunc(w.window, func() { w.fire(generation) })
}

func (w *Watchdog) fire(generation uint64) {
	w.mu.Lock()
	if w.stopped || generation != w.generation {
		w.mu.Unlock()
		return
	}
	w.timer = nil
	w.mu.Unlock()

	if !w.store.Loading() {
		return
	}
	w.logger.Warn().Dur("window", w.window).Msg("response still pending")
	w.notifier.Notify(LevelError, slowResponseMessage)
}

// Stop detaches the watchdog and cancels any pending timer.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.stopped = true
	w.generation++
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.unsubscribe()
}
