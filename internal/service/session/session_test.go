package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/newsmate/internal/model/chat"
)

func TestSessionLifecycle(t *testing.T) {
	remote := &fakeRemote{
		history: json.RawMessage(`[{"user":"what's new?","bot":"Markets are up."}]`),
		result:  &chat.SendResult{Response: "Here are today's headlines."},
	}
	notifier := &recordingNotifier{}
	s := New(remote, Options{
		Notifier: notifier,
		IDs:      sequentialIDs(),
		Clock:    &manualClock{},
		Now:      fixedNow,
	})
	defer s.Close()
	ctx := context.Background()

	require.Equal(t, chat.DefaultSessionID, s.ID())
	require.Equal(t, chat.WelcomeID, s.View()[0].ID)

	require.True(t, s.Mount(ctx))
	require.Len(t, s.View(), 2)

	require.Equal(t, OutcomeReplied, s.Submit(ctx, "headlines please"))
	view := s.View()
	require.Len(t, view, 4)
	require.Equal(t, "headlines please", view[2].Text)
	require.Equal(t, "Here are today's headlines.", view[3].Text)
	require.Equal(t, chat.DefaultSessionID, remote.sentSession)
	require.False(t, s.Busy())

	require.True(t, s.Reset(ctx))
	require.Equal(t, []chat.Message{chat.Welcome(fixedNow())}, s.View())
	require.Equal(t, chat.DefaultSessionID, s.ID())
	require.Len(t, notifier.all(), 1)
}

func TestSessionWatchdogWarnsDuringSlowSend(t *testing.T) {
	clock := &manualClock{}
	notifier := &recordingNotifier{}
	remote := &fakeRemote{result: &chat.SendResult{Response: "finally"}}
	remote.onSend = func() { clock.Advance(12 * time.Second) }

	s := New(remote, Options{SessionID: "slow", Notifier: notifier, Clock: clock})
	defer s.Close()

	require.Equal(t, OutcomeReplied, s.Submit(context.Background(), "hi"))
	require.Equal(t, []notification{{level: LevelError, message: slowResponseMessage}}, notifier.all())
}

func TestSessionFailedSendLeavesConsistentState(t *testing.T) {
	errs := &recordingErrors{}
	remote := &fakeRemote{sendErr: errors.New("timeout")}
	s := New(remote, Options{Errors: errs, Clock: &manualClock{}})
	defer s.Close()

	require.Equal(t, OutcomeFailed, s.Submit(context.Background(), "hi"))
	require.False(t, s.Busy())
	require.Equal(t, 1, s.Store().Len())
	require.Len(t, errs.items, 1)
}
