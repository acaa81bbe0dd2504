package entities

import (
	"errors"
	"fmt"
)

// ErrDuplicateMessageID is returned when appending a message whose id was already used
var ErrDuplicateMessageID = errors.New("duplicate message id")

// Timeline is the append-only ordered sequence of turns of one session.
// The first element is always the system turn given at creation.
//
// Timeline is not safe for concurrent use; its owner serializes access.
type Timeline struct {
	messages []Message
	ids      map[string]struct{}
}

// NewTimeline creates a timeline holding only the system turn
func NewTimeline(systemPrompt string) *Timeline {
	system := NewSystemMessage(systemPrompt)
	return &Timeline{
		messages: []Message{system},
		ids:      map[string]struct{}{system.ID: {}},
	}
}

// Append adds a message at the end of the timeline
func (t *Timeline) Append(m Message) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m.Role == RoleSystem {
		return errors.New("system turn is fixed at session start")
	}
	if _, ok := t.ids[m.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateMessageID, m.ID)
	}

	t.ids[m.ID] = struct{}{}
	t.messages = append(t.messages, m)
	return nil
}

// Messages returns a copy of all turns in order
func (t *Timeline) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Find returns the message with the given id
func (t *Timeline) Find(id string) (Message, bool) {
	if _, ok := t.ids[id]; !ok {
		return Message{}, false
	}
	for _, m := range t.messages {
		if m.ID == id {
			return m, true
		}
	}
	return Message{}, false
}

// ChatHistory returns the ordered role/content pairs of every turn,
// system turn included
func (t *Timeline) ChatHistory() []ChatTurn {
	history := make([]ChatTurn, 0, len(t.messages))
	for _, m := range t.messages {
		history = append(history, ChatTurn{Role: m.Role, Content: m.Content})
	}
	return history
}

// ChatTurn is the role/content projection of a message
type ChatTurn struct {
	Role    Role
	Content string
}
