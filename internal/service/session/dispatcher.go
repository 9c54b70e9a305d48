package session

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/zhouzirui/newsmate/internal/model/chat"
)

// Outcome summarises how a Send call ended. Failures are already logged by
// the time Send returns; the outcome is informational.
type Outcome int

const (
	// OutcomeRejected means the text was blank and nothing changed.
	OutcomeRejected Outcome = iota
	// OutcomeReplied means both the user message and a bot reply were appended.
	OutcomeReplied
	// OutcomeNoReply means the server answered without a usable response.
	OutcomeNoReply
	// OutcomeFailed means the remote call failed; the user message stays.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRejected:
		return "rejected"
	case OutcomeReplied:
		return "replied"
	case OutcomeNoReply:
		return "no_reply"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Dispatcher sends user messages with an optimistic transcript update.
type Dispatcher struct {
	store    *Store
	remote   Remote
	ids      IDGenerator
	errs     ErrorLogger
	input    InputClearer
	now      func() time.Time
	fallback string
	logger   zerolog.Logger
}

// DispatcherConfig carries the optional collaborators of a Dispatcher.
type DispatcherConfig struct {
	IDs    IDGenerator
	Errors ErrorLogger
	Input  InputClearer
	Now    func() time.Time
	// EmptyReplyFallback is appended as the bot reply when the server answers
	// without a response. Empty keeps the turn unanswered.
	EmptyReplyFallback string
	Logger             zerolog.Logger
}

// NewDispatcher wires a dispatcher to store and remote.
func NewDispatcher(store *Store, remote Remote, cfg DispatcherConfig) *Dispatcher {
	if cfg.IDs == nil {
		cfg.IDs = UUIDv7()
	}
	if cfg.Errors == nil {
		cfg.Errors = nopErrorLogger{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Dispatcher{
		store:    store,
		remote:   remote,
		ids:      cfg.IDs,
		errs:     cfg.Errors,
		input:    cfg.Input,
		now:      cfg.Now,
		fallback: cfg.EmptyReplyFallback,
		logger:   cfg.Logger,
	}
}

// Send appends rawText as a user message, then asks the remote for a reply.
// The user message is visible before the request is issued and is never
// rolled back.
func (d *Dispatcher) Send(ctx context.Context, rawText, sessionID string) Outcome {
	if strings.TrimSpace(rawText) == "" {
		d.logger.Debug().Err(ErrEmptyInput).Msg("ignoring blank message")
		return OutcomeRejected
	}

	d.store.Append(chat.NewUserMessage(d.ids.NewID(), rawText, d.now()))
	if d.input != nil {
		d.input.ClearInput()
	}

	release := d.store.Begin()
	defer release()

	result, err := d.remote.SendMessage(ctx, rawText, sessionID)
	if err != nil {
		d.errs.LogError("send message", &RemoteCallError{Op: "send message", Err: err})
		return OutcomeFailed
	}

	reply := ""
	if result != nil {
		reply = result.Response
	}

	outcome := OutcomeReplied
	if reply == "" {
		d.logger.Warn().Str("session_id", sessionID).Msg("server answered without a response")
		if d.fallback == "" {
			return OutcomeNoReply
		}
		reply = d.fallback
		outcome = OutcomeNoReply
	}

	d.store.Append(chat.NewBotMessage(d.ids.NewID(), reply, d.now()))
	return outcome
}
