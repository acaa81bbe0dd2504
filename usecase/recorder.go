package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/satriahrh/dijiang/domain/entities"
	"github.com/satriahrh/dijiang/domain/repositories"
)

// ErrAlreadyRecording is returned when the capture device is already owned
var ErrAlreadyRecording = errors.New("recording already in progress")

// Recorder is the audio capture manager. It owns the microphone exclusively
// between Start and the end of Stop.
type Recorder struct {
	microphone repositories.Microphone
	encoder    repositories.ClipEncoder
	logger     *zap.Logger

	mu      sync.Mutex
	session *recordingSession
}

// recordingSession is the state of one capture, from Start to Stop
type recordingSession struct {
	stream    repositories.AudioStream
	chunks    [][]byte
	collected chan struct{}
	stopping  bool
}

// NewRecorder creates a new recorder
func NewRecorder(microphone repositories.Microphone, encoder repositories.ClipEncoder, logger *zap.Logger) *Recorder {
	return &Recorder{
		microphone: microphone,
		encoder:    encoder,
		logger:     logger,
	}
}

// Start acquires the microphone and begins buffering fragments.
// On failure no session is opened.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session != nil {
		return ErrAlreadyRecording
	}

	stream, err := r.microphone.Open(ctx)
	if err != nil {
		r.logger.Error("Error accessing microphone", zap.Error(err))
		return fmt.Errorf("failed to open microphone: %w", err)
	}

	session := &recordingSession{
		stream:    stream,
		collected: make(chan struct{}),
	}
	go session.collect()

	r.session = session
	format := stream.Format()
	r.logger.Info("Recording started",
		zap.Int("sampleRate", format.SampleRate),
		zap.Int("channels", format.Channels))
	return nil
}

// Stop finalizes the active session into one clip. The device is released
// on every path. ok is false when no session was active.
func (r *Recorder) Stop() (clip entities.Clip, ok bool, err error) {
	r.mu.Lock()
	session := r.session
	if session == nil || session.stopping {
		r.mu.Unlock()
		return entities.Clip{}, false, nil
	}
	session.stopping = true
	r.mu.Unlock()

	defer func() {
		if closeErr := session.stream.Close(); closeErr != nil {
			r.logger.Warn("Failed to release microphone", zap.Error(closeErr))
		}
		r.mu.Lock()
		r.session = nil
		r.mu.Unlock()
	}()

	if stopErr := session.stream.Stop(); stopErr != nil {
		r.logger.Warn("Failed to stop capture cleanly", zap.Error(stopErr))
	}
	<-session.collected

	clip, err = r.encoder.Encode(session.chunks, session.stream.Format())
	if err != nil {
		return entities.Clip{}, true, fmt.Errorf("failed to encode clip: %w", err)
	}
	if clip.Empty() {
		r.logger.Warn("Recording stopped without captured audio")
	}

	r.logger.Info("Recording finalized",
		zap.Int("fragments", len(session.chunks)),
		zap.Int("clipBytes", len(clip.Data)))
	return clip, true, nil
}

func (s *recordingSession) collect() {
	defer close(s.collected)
	for fragment := range s.stream.Fragments() {
		s.chunks = append(s.chunks, fragment)
	}
}
