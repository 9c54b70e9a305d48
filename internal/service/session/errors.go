package session

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrMalformedHistory marks a history payload that is not a sequence of
	// {user, bot} entries. The transcript is never touched when it occurs.
	ErrMalformedHistory = errors.New("malformed history")
	// ErrRemoteCall matches every failure reported by a Remote.
	ErrRemoteCall = errors.New("remote call failed")
	// ErrEmptyInput is what Send reports when it rejects whitespace-only text.
	ErrEmptyInput = errors.New("empty input")
)

// RemoteCallError records which operation failed and why.
type RemoteCallError struct {
	Op  string
	Err error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteCallError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrRemoteCall) match without losing the cause chain.
func (e *RemoteCallError) Is(target error) bool {
	return target == ErrRemoteCall
}
