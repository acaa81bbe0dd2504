package tui

import "github.com/satriahrh/dijiang/domain/repositories"

const alertBuffer = 16

// ChannelNotifier queues alerts for the terminal to display
type ChannelNotifier struct {
	alerts chan string
}

var _ repositories.Notifier = (*ChannelNotifier)(nil)

// NewChannelNotifier creates a notifier with a bounded queue
func NewChannelNotifier() *ChannelNotifier {
	return &ChannelNotifier{alerts: make(chan string, alertBuffer)}
}

// Alert queues message. Alerts beyond the queue size are dropped.
func (n *ChannelNotifier) Alert(message string) {
	select {
	case n.alerts <- message:
	default:
	}
}

// Alerts returns the queue of pending alerts
func (n *ChannelNotifier) Alerts() <-chan string {
	return n.alerts
}
