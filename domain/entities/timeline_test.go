package entities

import (
	"errors"
	"strings"
	"testing"
)

func TestNewTimeline(t *testing.T) {
	timeline := NewTimeline("You are Dijiang.")

	if len(timeline.Messages()) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(timeline.Messages()))
	}

	system := timeline.Messages()[0]
	if system.Role != RoleSystem {
		t.Errorf("Expected system role, got %s", system.Role)
	}
	if system.ID != SystemMessageID {
		t.Errorf("Expected id %s, got %s", SystemMessageID, system.ID)
	}
	if system.CreatedAt != nil {
		t.Error("Expected system message without timestamp")
	}
}

func TestTimelineAppend(t *testing.T) {
	timeline := NewTimeline("prompt")

	user := NewUserMessage("What is memory?")
	if err := timeline.Append(user); err != nil {
		t.Fatalf("Failed to append user message: %v", err)
	}

	assistant := NewAssistantMessage("Memory is a recursion.")
	if err := timeline.Append(assistant); err != nil {
		t.Fatalf("Failed to append assistant message: %v", err)
	}

	messages := timeline.Messages()
	if len(messages) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(messages))
	}
	if messages[0].Role != RoleSystem || messages[1].ID != user.ID || messages[2].ID != assistant.ID {
		t.Error("Expected messages in append order after the system turn")
	}

	if !messages[1].Transient {
		t.Error("Expected user message to be transient")
	}
	if messages[2].Transient {
		t.Error("Expected assistant message not to be transient")
	}
}

func TestTimelineAppendRejects(t *testing.T) {
	timeline := NewTimeline("prompt")
	user := NewUserMessage("hello")
	if err := timeline.Append(user); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}

	if err := timeline.Append(user); !errors.Is(err, ErrDuplicateMessageID) {
		t.Errorf("Expected ErrDuplicateMessageID, got %v", err)
	}

	if err := timeline.Append(NewSystemMessage("other")); err == nil {
		t.Error("Expected error when appending a second system turn")
	}

	if err := timeline.Append(Message{ID: "x", Role: Role("doll")}); err == nil {
		t.Error("Expected error for invalid role")
	}

	if len(timeline.Messages()) != 2 {
		t.Errorf("Expected rejected appends to leave 2 messages, got %d", len(timeline.Messages()))
	}
}

func TestTimelineMessagesIsCopy(t *testing.T) {
	timeline := NewTimeline("prompt")
	messages := timeline.Messages()
	messages[0].Content = "mutated"

	if timeline.Messages()[0].Content != "prompt" {
		t.Error("Expected Messages to return a copy")
	}
}

func TestTimelineChatHistory(t *testing.T) {
	timeline := NewTimeline("prompt")
	_ = timeline.Append(NewUserMessage("hi"))

	history := timeline.ChatHistory()
	if len(history) != 2 {
		t.Fatalf("Expected 2 turns, got %d", len(history))
	}
	if history[0].Role != RoleSystem || history[0].Content != "prompt" {
		t.Errorf("Expected system turn first, got %+v", history[0])
	}
	if history[1].Role != RoleUser || history[1].Content != "hi" {
		t.Errorf("Expected user turn second, got %+v", history[1])
	}
}

func TestMessageIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		for _, m := range []Message{NewUserMessage("a"), NewAssistantMessage("b"), NewErrorMessage("c")} {
			if seen[m.ID] {
				t.Fatalf("Duplicate id generated: %s", m.ID)
			}
			seen[m.ID] = true
		}
	}

	if !strings.HasPrefix(NewErrorMessage("x").ID, "error-") {
		t.Error("Expected error turn id to be prefixed with error-")
	}
}

func TestTimelineFind(t *testing.T) {
	timeline := NewTimeline("prompt")
	assistant := NewAssistantMessage("answer")
	_ = timeline.Append(assistant)

	found, ok := timeline.Find(assistant.ID)
	if !ok || found.Content != "answer" {
		t.Errorf("Expected to find assistant message, got %+v (%v)", found, ok)
	}

	if _, ok := timeline.Find("missing"); ok {
		t.Error("Expected missing id not to be found")
	}
}
