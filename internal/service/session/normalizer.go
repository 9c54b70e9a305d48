package session

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"

	"github.com/zhouzirui/newsmate/internal/model/chat"
)

// NormalizeHistory decodes a server history payload and flattens it. The
// payload must be a JSON array of {user, bot} objects; anything else yields
// ErrMalformedHistory.
func NormalizeHistory(raw json.RawMessage) ([]chat.Message, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.Wrap(ErrMalformedHistory, "history is not a sequence")
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, errors.Wrapf(ErrMalformedHistory, "decode history: %v", err)
	}

	entries := make([]chat.HistoryEntry, len(items))
	for i, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			return nil, errors.Wrapf(ErrMalformedHistory, "entry %d is not an object", i)
		}
		if err := json.Unmarshal(item, &entries[i]); err != nil {
			return nil, errors.Wrapf(ErrMalformedHistory, "decode entry %d: %v", i, err)
		}
	}
	return Normalize(entries), nil
}

// Normalize expands entry i into "i-user" then "i-bot". Timestamps are left
// unset; history does not carry them.
func Normalize(entries []chat.HistoryEntry) []chat.Message {
	out := make([]chat.Message, 0, len(entries)*2)
	for i, entry := range entries {
		prefix := strconv.Itoa(i)
		out = append(out,
			chat.Message{ID: prefix + "-user", Text: entry.User, Sender: chat.SenderUser},
			chat.Message{ID: prefix + "-bot", Text: entry.Bot, Sender: chat.SenderBot},
		)
	}
	return out
}
