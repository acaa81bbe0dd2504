package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/satriahrh/dijiang/domain"
	"github.com/satriahrh/dijiang/domain/repositories"
)

var (
	// ErrInvalidRequest marks input rejected before reaching a provider
	ErrInvalidRequest = errors.New("invalid request")
	// ErrProviderFailure marks a failed or empty provider response
	ErrProviderFailure = errors.New("provider failure")
)

// ChatService answers a conversation through the configured language model
type ChatService struct {
	llm    repositories.LargeLanguageModel
	logger *zap.Logger
}

// NewChatService creates a new chat service
func NewChatService(llm repositories.LargeLanguageModel, logger *zap.Logger) *ChatService {
	return &ChatService{llm: llm, logger: logger}
}

// Reply validates the conversation and returns the assistant reply
func (s *ChatService) Reply(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	history, err := validateConversation(messages)
	if err != nil {
		return "", err
	}

	reply, err := s.llm.Complete(ctx, history)
	if err != nil {
		s.logger.Error("Failed to complete conversation", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}

	content := strings.TrimSpace(reply.Content)
	if content == "" {
		s.logger.Warn("Empty completion", zap.Int("history_length", len(history)))
		return "", fmt.Errorf("%w: empty completion", ErrProviderFailure)
	}

	return content, nil
}

func validateConversation(messages []domain.ChatMessage) ([]repositories.ChatMessage, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("%w: messages must not be empty", ErrInvalidRequest)
	}

	history := make([]repositories.ChatMessage, 0, len(messages))
	for i, msg := range messages {
		role := repositories.Role(msg.Role)
		switch role {
		case repositories.SystemRole, repositories.UserRole, repositories.AssistantRole:
		default:
			return nil, fmt.Errorf("%w: message %d has invalid role %q", ErrInvalidRequest, i, msg.Role)
		}
		history = append(history, repositories.ChatMessage{Role: role, Content: msg.Content})
	}

	if history[len(history)-1].Role != repositories.UserRole {
		return nil, fmt.Errorf("%w: last message must come from the user", ErrInvalidRequest)
	}
	if strings.TrimSpace(history[len(history)-1].Content) == "" {
		return nil, fmt.Errorf("%w: last message must not be empty", ErrInvalidRequest)
	}

	return history, nil
}
