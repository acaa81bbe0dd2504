package llm

import (
	"context"
	"fmt"

	"github.com/satriahrh/dijiang/domain/repositories"
)

// MockLLM answers every conversation with a canned reply. It lets the
// server run without provider credentials.
type MockLLM struct{}

var _ repositories.LargeLanguageModel = (*MockLLM)(nil)

// NewMockLLM creates a new mock LLM
func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

// Complete echoes the last user message
func (m *MockLLM) Complete(ctx context.Context, history []repositories.ChatMessage) (repositories.ChatMessage, error) {
	response := "Greetings, traveler. I am Dijiang. What would you like to know?"
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == repositories.UserRole {
			response = fmt.Sprintf("You asked about '%s'. Dijiang has heard you, though this reply is only a rehearsal.", history[i].Content)
			break
		}
	}

	return repositories.ChatMessage{
		Role:    repositories.AssistantRole,
		Content: response,
	}, nil
}
