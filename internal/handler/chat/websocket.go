package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/newsmate/internal/model/chat"
	chatService "github.com/zhouzirui/newsmate/internal/service/chat"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

// socket answers chat frames over a websocket. Frames on one connection are
// handled in order.
type socket struct {
	chatSvc  *chatService.Service
	logger   zerolog.Logger
	upgrader websocket.Upgrader
}

func newSocket(chatSvc *chatService.Service, logger zerolog.Logger) *socket {
	return &socket{
		chatSvc: chatSvc,
		logger:  logger,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(*http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (s *socket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})
	go s.pingLoop(ctx, conn)

	for {
		var req chat.Frame
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		reply := s.handle(ctx, req)
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(reply); err != nil {
			s.logger.Warn().Err(err).Str("frame_id", req.ID).Msg("websocket write failed")
			return
		}
	}
}

func (s *socket) handle(ctx context.Context, req chat.Frame) chat.Frame {
	reply := chat.Frame{ID: req.ID, Type: req.Type, SessionID: req.SessionID}

	switch req.Type {
	case chat.FrameSend:
		answer, err := s.chatSvc.Reply(ctx, req.SessionID, req.Message)
		if err != nil {
			return errorFrame(req, err.Error())
		}
		reply.Response = answer
	case chat.FrameHistory:
		entries, err := s.chatSvc.History(ctx, req.SessionID)
		if err != nil {
			return errorFrame(req, err.Error())
		}
		raw, err := json.Marshal(entries)
		if err != nil {
			return errorFrame(req, "encode history")
		}
		reply.History = raw
	case chat.FrameReset:
		if err := s.chatSvc.Reset(ctx, req.SessionID); err != nil {
			return errorFrame(req, err.Error())
		}
	default:
		return errorFrame(req, "unsupported frame type: "+req.Type)
	}
	return reply
}

func (s *socket) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}

func errorFrame(req chat.Frame, message string) chat.Frame {
	return chat.Frame{ID: req.ID, Type: chat.FrameError, SessionID: req.SessionID, Error: message}
}
