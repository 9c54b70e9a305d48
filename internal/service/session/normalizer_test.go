package session

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/newsmate/internal/model/chat"
)

func TestNormalizeHistoryFlattensPairs(t *testing.T) {
	raw := json.RawMessage(`[{"user":"a","bot":"b"},{"user":"c","bot":"d"}]`)

	got, err := NormalizeHistory(raw)
	require.NoError(t, err)
	require.Equal(t, []chat.Message{
		{ID: "0-user", Sender: chat.SenderUser, Text: "a"},
		{ID: "0-bot", Sender: chat.SenderBot, Text: "b"},
		{ID: "1-user", Sender: chat.SenderUser, Text: "c"},
		{ID: "1-bot", Sender: chat.SenderBot, Text: "d"},
	}, got)
	for _, msg := range got {
		require.False(t, msg.HasTimestamp())
	}
}

func TestNormalizeHistoryKeepsPartialTurns(t *testing.T) {
	got, err := NormalizeHistory(json.RawMessage(`[{"user":"only asked"}]`))
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "only asked", got[0].Text)
	require.Equal(t, "0-bot", got[1].ID)
	require.Empty(t, got[1].Text)
}

func TestNormalizeHistoryEmptyArray(t *testing.T) {
	got, err := NormalizeHistory(json.RawMessage(` [] `))
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestNormalizeHistoryRejectsNonSequences(t *testing.T) {
	cases := map[string]string{
		"object":       `{"user":"a","bot":"b"}`,
		"null":         `null`,
		"string":       `"history"`,
		"number":       `42`,
		"empty":        ``,
		"invalid json": `[{"user":`,
		"non-object":   `[1, 2]`,
		"null entry":   `[{"user":"a"}, null]`,
		"wrong field":  `[{"user": 7}]`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := NormalizeHistory(json.RawMessage(payload))
			require.Nil(t, got)
			require.True(t, errors.Is(err, ErrMalformedHistory), "got %v", err)
		})
	}
}
