package session

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestHistoryLoadReplacesTranscript(t *testing.T) {
	store := seededStore()
	remote := &fakeRemote{history: json.RawMessage(`[{"user":"a","bot":"b"}]`)}
	notifier := &recordingNotifier{}
	h := NewHistorySynchronizer(store, remote, notifier, nil)

	require.True(t, h.Load(context.Background(), "sid"))

	got := store.Messages()
	require.Len(t, got, 2)
	require.Equal(t, "0-user", got[0].ID)
	require.Equal(t, "0-bot", got[1].ID)
	require.False(t, store.Loading())
	require.Empty(t, notifier.all())
}

func TestHistoryLoadMalformedLeavesTranscript(t *testing.T) {
	store := seededStore()
	before := store.Messages()
	remote := &fakeRemote{history: json.RawMessage(`{"detail":"not found"}`)}
	notifier := &recordingNotifier{}
	errs := &recordingErrors{}
	h := NewHistorySynchronizer(store, remote, notifier, errs)

	require.False(t, h.Load(context.Background(), "sid"))

	require.Equal(t, before, store.Messages())
	require.False(t, store.Loading())
	require.Len(t, errs.items, 1)
	require.True(t, errors.Is(errs.items[0].err, ErrMalformedHistory))
	require.Equal(t, []notification{{level: LevelError, message: historyFailedMessage}}, notifier.all())
}

func TestHistoryLoadTransportFailure(t *testing.T) {
	store := seededStore()
	before := store.Messages()
	remote := &fakeRemote{histErr: errors.New("dial tcp: connection refused")}
	notifier := &recordingNotifier{}
	errs := &recordingErrors{}
	h := NewHistorySynchronizer(store, remote, notifier, errs)

	require.False(t, h.Load(context.Background(), "sid"))

	require.Equal(t, before, store.Messages())
	require.False(t, store.Loading())
	require.True(t, errors.Is(errs.items[0].err, ErrRemoteCall))
	require.Len(t, notifier.all(), 1)
}

func TestHistoryLoadEmptyProjectsWelcome(t *testing.T) {
	store := seededStore()
	h := NewHistorySynchronizer(store, &fakeRemote{history: json.RawMessage(`[]`)}, nil, nil)

	require.True(t, h.Load(context.Background(), "sid"))

	require.Zero(t, store.Len())
	view := store.View()
	require.Len(t, view, 1)
	require.Equal(t, "welcome", view[0].ID)
}
