package chat

import "encoding/json"

// Frame types carried over the websocket transport.
const (
	FrameSend    = "send"
	FrameHistory = "history"
	FrameReset   = "reset"
	FrameError   = "error"
)

// Frame is one websocket request or reply. Replies echo the request ID.
type Frame struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	SessionID string          `json:"session_id,omitempty"`
	Message   string          `json:"message,omitempty"`
	Response  string          `json:"response,omitempty"`
	History   json.RawMessage `json:"history,omitempty"`
	Error     string          `json:"error,omitempty"`
}
