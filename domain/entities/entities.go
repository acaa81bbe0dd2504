package entities

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role represents the author of a turn
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// SystemMessageID is the fixed id of the leading system turn
const SystemMessageID = "system-prompt"

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message is one turn of the conversation. Messages are never mutated
// after creation.
type Message struct {
	ID        string     `json:"id"`
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	// Transient marks a just submitted user turn for display purposes only
	Transient bool `json:"transient,omitempty"`
}

// NewSystemMessage creates the leading system turn. It carries no timestamp.
func NewSystemMessage(prompt string) Message {
	return Message{
		ID:      SystemMessageID,
		Role:    RoleSystem,
		Content: prompt,
	}
}

// NewUserMessage creates a transient user turn
func NewUserMessage(content string) Message {
	return newMessage("user", RoleUser, content, true)
}

// NewAssistantMessage creates an assistant turn from a response
func NewAssistantMessage(content string) Message {
	return newMessage("assistant", RoleAssistant, content, false)
}

// NewErrorMessage creates the assistant turn appended when a chat request fails
func NewErrorMessage(notice string) Message {
	return newMessage("error", RoleAssistant, notice, false)
}

func newMessage(prefix string, role Role, content string, transient bool) Message {
	now := time.Now()
	return Message{
		ID:        fmt.Sprintf("%s-%s", prefix, uuid.New().String()),
		Role:      role,
		Content:   content,
		CreatedAt: &now,
		Transient: transient,
	}
}

// Validate validates the message fields
func (m Message) Validate() error {
	if m.ID == "" {
		return errors.New("message id is required")
	}
	if !m.Role.Valid() {
		return fmt.Errorf("invalid message role: %q", m.Role)
	}
	return nil
}
