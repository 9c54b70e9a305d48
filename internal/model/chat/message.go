package chat

import "time"

// Sender identifies who authored a transcript message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is a single transcript entry as the session view sees it.
type Message struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Sender    Sender     `json:"sender"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// HasTimestamp reports whether the message carries a creation instant.
// Messages replayed from server history usually do not.
func (m Message) HasTimestamp() bool {
	return m.Timestamp != nil && !m.Timestamp.IsZero()
}

// Clone returns a copy that shares no memory with m.
func (m Message) Clone() Message {
	if m.Timestamp != nil {
		ts := *m.Timestamp
		m.Timestamp = &ts
	}
	return m
}

// NewUserMessage stamps a locally authored message.
func NewUserMessage(id, text string, at time.Time) Message {
	ts := at.UTC()
	return Message{ID: id, Text: text, Sender: SenderUser, Timestamp: &ts}
}

// NewBotMessage stamps a locally received assistant reply.
func NewBotMessage(id, text string, at time.Time) Message {
	ts := at.UTC()
	return Message{ID: id, Text: text, Sender: SenderBot, Timestamp: &ts}
}
