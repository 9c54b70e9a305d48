package chat

import "time"

// DefaultSessionID is used until a caller explicitly picks a conversation.
const DefaultSessionID = "default-session"

const (
	WelcomeID   = "welcome"
	WelcomeText = "Welcome to NewsMate! How can I assist you today?"
)

// Welcome builds the greeting projected onto an empty transcript.
func Welcome(at time.Time) Message {
	return NewBotMessage(WelcomeID, WelcomeText, at)
}
