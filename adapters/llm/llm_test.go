package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
	"google.golang.org/genai"

	"github.com/satriahrh/dijiang/domain/repositories"
)

func TestValidateGeminiConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  GeminiConfig
		wantErr bool
	}{
		{name: "valid", config: GeminiConfig{APIKey: "key"}},
		{name: "missing key", config: GeminiConfig{}, wantErr: true},
		{name: "temperature out of range", config: GeminiConfig{APIKey: "key", Temperature: 3}, wantErr: true},
		{name: "topP out of range", config: GeminiConfig{APIKey: "key", TopP: 1.5}, wantErr: true},
		{name: "negative timeout", config: GeminiConfig{APIKey: "key", TimeoutSeconds: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGeminiConfig(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestToGeminiContents(t *testing.T) {
	system, contents := toGeminiContents([]repositories.ChatMessage{
		{Role: repositories.SystemRole, Content: "You are Dijiang."},
		{Role: repositories.UserRole, Content: "Hello"},
		{Role: repositories.AssistantRole, Content: "Greetings"},
		{Role: repositories.UserRole, Content: "What is memory?"},
	})

	if system != "You are Dijiang." {
		t.Errorf("Expected system instruction, got %q", system)
	}
	if len(contents) != 3 {
		t.Fatalf("Expected 3 contents, got %d", len(contents))
	}
	roles := []genai.Role{genai.RoleUser, genai.RoleModel, genai.RoleUser}
	for i, role := range roles {
		if contents[i].Role != string(role) {
			t.Errorf("Expected role %s at %d, got %s", role, i, contents[i].Role)
		}
	}
	if contents[2].Parts[0].Text != "What is memory?" {
		t.Errorf("Unexpected last content: %q", contents[2].Parts[0].Text)
	}
}

func TestOpenAILLM_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode request: %v", err)
			return
		}
		if len(body.Messages) != 2 || body.Messages[0].Role != "system" || body.Messages[1].Role != "user" {
			t.Errorf("Unexpected messages: %+v", body.Messages)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Memory is a river."},"finish_reason":"stop"}],"usage":{"total_tokens":12}}`))
	}))
	defer server.Close()

	model, err := NewOpenAILLM(OpenAIConfig{APIKey: "test", BaseURL: server.URL + "/v1"}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create OpenAI LLM: %v", err)
	}

	reply, err := model.Complete(context.Background(), []repositories.ChatMessage{
		{Role: repositories.SystemRole, Content: "You are Dijiang."},
		{Role: repositories.UserRole, Content: "What is memory?"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if reply.Role != repositories.AssistantRole || reply.Content != "Memory is a river." {
		t.Errorf("Unexpected reply: %+v", reply)
	}
}

func TestOpenAILLM_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	model, _ := NewOpenAILLM(OpenAIConfig{APIKey: "bad", BaseURL: server.URL + "/v1"}, zaptest.NewLogger(t))
	if _, err := model.Complete(context.Background(), []repositories.ChatMessage{{Role: repositories.UserRole, Content: "hi"}}); err == nil {
		t.Error("Expected error")
	}
}

func TestNewOpenAILLM_RequiresKey(t *testing.T) {
	if _, err := NewOpenAILLM(OpenAIConfig{}, zaptest.NewLogger(t)); err == nil {
		t.Error("Expected error for missing API key")
	}
}

func TestMockLLM_Complete(t *testing.T) {
	reply, err := NewMockLLM().Complete(context.Background(), []repositories.ChatMessage{
		{Role: repositories.SystemRole, Content: "prompt"},
		{Role: repositories.UserRole, Content: "What is memory?"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(reply.Content, "What is memory?") {
		t.Errorf("Expected reply to mention the question, got %q", reply.Content)
	}
}
