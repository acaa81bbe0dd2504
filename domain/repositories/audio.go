package repositories

import (
	"context"

	"github.com/satriahrh/dijiang/domain/entities"
)

// Microphone acquires the capture device
type Microphone interface {
	// Open acquires the device and starts capturing. A denied permission or a
	// missing device yields a *domain.Error of kind permission_denied.
	Open(ctx context.Context) (AudioStream, error)
}

// AudioStream is an open capture on an exclusively owned device
type AudioStream interface {
	Format() entities.AudioFormat
	// Fragments delivers captured PCM fragments. It is closed after Stop.
	Fragments() <-chan []byte
	// Stop ends capturing and flushes pending fragments
	Stop() error
	// Close releases the device
	Close() error
}

// ClipEncoder assembles captured fragments into a single encoded clip
type ClipEncoder interface {
	Encode(fragments [][]byte, format entities.AudioFormat) (entities.Clip, error)
}

// AudioPlayer plays an encoded audio payload without blocking until the end
type AudioPlayer interface {
	Play(ctx context.Context, audio []byte, contentType string) error
}

// Notifier surfaces transient, user visible alerts
type Notifier interface {
	Alert(message string)
}
