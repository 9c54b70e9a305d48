package newsmate

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/newsmate/internal/model/chat"
)

// ErrRemote wraps an error frame sent back by the server.
var ErrRemote = errors.New("server reported an error")

// WSClient implements the remote contract over a single websocket. Calls are
// serialized; the connection is dialed lazily and redialed after any I/O
// failure.
type WSClient struct {
	url    string
	dialer *websocket.Dialer
	header http.Header
	logger zerolog.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWSClient prepares a client for wsURL (ws:// or wss://).
func NewWSClient(wsURL string, logger zerolog.Logger) *WSClient {
	return &WSClient{
		url: wsURL,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 30 * time.Second,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
		},
		header: http.Header{},
		logger: logger,
	}
}

// FetchHistory asks for sessionID's history.
func (c *WSClient) FetchHistory(ctx context.Context, sessionID string) (json.RawMessage, error) {
	reply, err := c.call(ctx, chat.Frame{Type: chat.FrameHistory, SessionID: sessionID})
	if err != nil {
		return nil, errors.Wrap(err, "fetch history")
	}
	return reply.History, nil
}

// SendMessage submits text and returns the assistant reply.
func (c *WSClient) SendMessage(ctx context.Context, text, sessionID string) (*chat.SendResult, error) {
	reply, err := c.call(ctx, chat.Frame{Type: chat.FrameSend, SessionID: sessionID, Message: text})
	if err != nil {
		return nil, errors.Wrap(err, "send message")
	}
	return &chat.SendResult{Response: reply.Response}, nil
}

// ResetSession drops the server-side history of sessionID.
func (c *WSClient) ResetSession(ctx context.Context, sessionID string) error {
	if _, err := c.call(ctx, chat.Frame{Type: chat.FrameReset, SessionID: sessionID}); err != nil {
		return errors.Wrap(err, "reset session")
	}
	return nil
}

// Close shuts the connection down, if any.
func (c *WSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *WSClient) call(ctx context.Context, req chat.Frame) (chat.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.connectLocked(ctx)
	if err != nil {
		return chat.Frame{}, err
	}

	req.ID = uuid.NewString()

	// A cancelled earlier call may have left past deadlines behind.
	_ = conn.SetReadDeadline(time.Time{})
	_ = conn.SetWriteDeadline(time.Time{})

	// Unblock reads and writes once ctx is done.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
		_ = conn.SetWriteDeadline(time.Now())
	})
	defer stop()

	if err := conn.WriteJSON(req); err != nil {
		c.dropLocked()
		return chat.Frame{}, c.contextError(ctx, errors.Wrap(err, "write frame"))
	}

	for {
		var reply chat.Frame
		if err := conn.ReadJSON(&reply); err != nil {
			c.dropLocked()
			return chat.Frame{}, c.contextError(ctx, errors.Wrap(err, "read frame"))
		}
		if reply.ID != req.ID {
			c.logger.Debug().Str("frame_id", reply.ID).Str("type", reply.Type).Msg("skipping unrelated frame")
			continue
		}
		if reply.Type == chat.FrameError || reply.Error != "" {
			return chat.Frame{}, errors.Wrap(ErrRemote, reply.Error)
		}
		return reply, nil
	}
}

func (c *WSClient) connectLocked(ctx context.Context) (*websocket.Conn, error) {
	if c.conn != nil {
		return c.conn, nil
	}
	conn, resp, err := c.dialer.DialContext(ctx, c.url, c.header)
	if err != nil {
		if resp != nil {
			return nil, &HTTPError{StatusCode: resp.StatusCode, Body: resp.Status}
		}
		return nil, errors.Wrap(err, "dial websocket")
	}
	c.logger.Debug().Str("url", c.url).Msg("websocket connected")
	c.conn = conn
	return conn, nil
}

func (c *WSClient) dropLocked() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

func (c *WSClient) contextError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.WithMessage(ctxErr, err.Error())
	}
	return err
}
