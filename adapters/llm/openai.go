package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/satriahrh/dijiang/domain/repositories"
)

const defaultOpenAIModel = openai.GPT4oMini

// OpenAIConfig holds configuration for the OpenAI chat adapter
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
}

// OpenAILLM implements the LargeLanguageModel interface using OpenAI chat completions
type OpenAILLM struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

var _ repositories.LargeLanguageModel = (*OpenAILLM)(nil)

// NewOpenAILLM creates a new OpenAI LLM instance
func NewOpenAILLM(config OpenAIConfig, logger *zap.Logger) (*OpenAILLM, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	model := config.Model
	if model == "" {
		model = defaultOpenAIModel
		logger.Info("Using default model", zap.String("model", model))
	}

	return &OpenAILLM{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       model,
		maxTokens:   config.MaxTokens,
		temperature: config.Temperature,
		logger:      logger,
	}, nil
}

// Complete sends the conversation and returns the first choice
func (o *OpenAILLM) Complete(ctx context.Context, history []repositories.ChatMessage) (repositories.ChatMessage, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, msg := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    toOpenAIRole(msg.Role),
			Content: msg.Content,
		})
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	})
	if err != nil {
		return repositories.ChatMessage{}, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return repositories.ChatMessage{}, fmt.Errorf("no choices in completion response")
	}

	content := resp.Choices[0].Message.Content
	o.logger.Info("OpenAI completion processed",
		zap.Int("history_length", len(history)),
		zap.Int("response_length", len(content)),
		zap.Int("total_tokens", resp.Usage.TotalTokens))

	return repositories.ChatMessage{
		Role:    repositories.AssistantRole,
		Content: content,
	}, nil
}

func toOpenAIRole(role repositories.Role) string {
	switch role {
	case repositories.SystemRole:
		return openai.ChatMessageRoleSystem
	case repositories.AssistantRole:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}
