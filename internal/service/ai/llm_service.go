package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/newsmate/internal/config"
	"github.com/zhouzirui/newsmate/internal/model/chat"
)

const historyLimit = 10

// Service answers chat turns with an Ark chat model behind an eino chain.
type Service struct {
	chatModel model.ChatModel
	chain     compose.Runnable[map[string]any, *schema.Message]
	now       func() time.Time
	logger    zerolog.Logger
}

// NewService compiles the prompt → model chain.
func NewService(ctx context.Context, cfg config.AIConfig, logger zerolog.Logger) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return newService(ctx, chatModel, logger)
}

func newService(ctx context.Context, chatModel model.ChatModel, logger zerolog.Logger) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		chain:     runnable,
		now:       time.Now,
		logger:    logger,
	}, nil
}

// Respond implements the backend Responder.
func (s *Service) Respond(ctx context.Context, sessionID string, history []chat.HistoryEntry, message string) (string, error) {
	response, err := s.chain.Invoke(ctx, s.buildChainInput(history, message))
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}
	if response == nil {
		return "", nil
	}

	s.logger.Info().Str("session_id", sessionID).Int("length", len(response.Content)).Msg("generated response")
	return response.Content, nil
}

func (s *Service) buildChainInput(history []chat.HistoryEntry, message string) map[string]any {
	return map[string]any{
		"system":  buildSystemPrompt(s.now()),
		"history": buildHistoryMessages(history),
		"query":   message,
	}
}

// buildHistoryMessages keeps the most recent turns; partial turns contribute
// only the side that exists.
func buildHistoryMessages(entries []chat.HistoryEntry) []*schema.Message {
	if len(entries) == 0 {
		return nil
	}

	start := 0
	if len(entries) > historyLimit {
		start = len(entries) - historyLimit
	}

	history := make([]*schema.Message, 0, 2*(len(entries)-start))
	for _, entry := range entries[start:] {
		if entry.User != "" {
			history = append(history, schema.UserMessage(entry.User))
		}
		if entry.Bot != "" {
			history = append(history, schema.AssistantMessage(entry.Bot, nil))
		}
	}
	return history
}
