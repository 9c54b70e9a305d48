package newsmate_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/newsmate/internal/client/newsmate"
	"github.com/zhouzirui/newsmate/internal/handler"
	chatService "github.com/zhouzirui/newsmate/internal/service/chat"
	"github.com/zhouzirui/newsmate/internal/service/session"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler.NewRouter(chatService.NewService(nil), zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientRoundTrip(t *testing.T) {
	srv := newBackend(t)
	client := newsmate.New(newsmate.Config{BaseURL: srv.URL + "/", Logger: zerolog.Nop()})
	ctx := context.Background()

	raw, err := client.FetchHistory(ctx, "s1")
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(raw))

	res, err := client.SendMessage(ctx, "Hi", "s1")
	require.NoError(t, err)
	require.Equal(t, "You said: Hi", res.Response)

	raw, err = client.FetchHistory(ctx, "s1")
	require.NoError(t, err)
	require.JSONEq(t, `[{"user":"Hi","bot":"You said: Hi"}]`, string(raw))

	require.NoError(t, client.ResetSession(ctx, "s1"))

	raw, err = client.FetchHistory(ctx, "s1")
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(raw))
}

func TestClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newsmate.New(newsmate.Config{BaseURL: srv.URL, Logger: zerolog.Nop()})
	_, err := client.SendMessage(context.Background(), "Hi", "s1")
	require.Error(t, err)

	var httpErr *newsmate.HTTPError
	require.True(t, errors.As(err, &httpErr))
	require.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	require.Contains(t, httpErr.Body, "boom")
}

func TestClientHonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := newsmate.New(newsmate.Config{BaseURL: srv.URL, Logger: zerolog.Nop()})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := client.ResetSession(ctx, "s1")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSessionOverHTTP(t *testing.T) {
	srv := newBackend(t)
	client := newsmate.New(newsmate.Config{BaseURL: srv.URL, Logger: zerolog.Nop()})

	s := session.New(client, session.Options{SessionID: "s1", Logger: zerolog.Nop()})
	defer s.Close()

	ctx := context.Background()
	require.True(t, s.Mount(ctx))
	require.Equal(t, session.OutcomeReplied, s.Submit(ctx, "Hi"))

	msgs := s.Store().Messages()
	require.Len(t, msgs, 2)
	require.Equal(t, "You said: Hi", msgs[1].Text)
}

func TestWSClientRoundTrip(t *testing.T) {
	srv := newBackend(t)
	client := newsmate.NewWSClient("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/ws", zerolog.Nop())
	defer client.Close()
	ctx := context.Background()

	res, err := client.SendMessage(ctx, "Hi", "s1")
	require.NoError(t, err)
	require.Equal(t, "You said: Hi", res.Response)

	raw, err := client.FetchHistory(ctx, "s1")
	require.NoError(t, err)
	require.JSONEq(t, `[{"user":"Hi","bot":"You said: Hi"}]`, string(raw))

	require.NoError(t, client.ResetSession(ctx, "s1"))
}

func TestWSClientServerError(t *testing.T) {
	srv := newBackend(t)
	client := newsmate.NewWSClient("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/ws", zerolog.Nop())
	defer client.Close()

	_, err := client.SendMessage(context.Background(), "Hi", "")
	require.ErrorIs(t, err, newsmate.ErrRemote)
}

func TestWSClientRedialsAfterClose(t *testing.T) {
	srv := newBackend(t)
	client := newsmate.NewWSClient("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/ws", zerolog.Nop())
	ctx := context.Background()

	_, err := client.SendMessage(ctx, "Hi", "s1")
	require.NoError(t, err)
	require.NoError(t, client.Close())

	_, err = client.FetchHistory(ctx, "s1")
	require.NoError(t, err)
	require.NoError(t, client.Close())
}
