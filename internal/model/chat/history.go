package chat

// HistoryEntry is one paired turn as the server stores it. Either side may be
// missing for a partial turn.
type HistoryEntry struct {
	User string `json:"user"`
	Bot  string `json:"bot"`
}

// SendResult is the server reply to a submitted message.
type SendResult struct {
	Response string `json:"response"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}
