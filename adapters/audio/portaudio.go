package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"

	"github.com/satriahrh/dijiang/domain"
	"github.com/satriahrh/dijiang/domain/entities"
	"github.com/satriahrh/dijiang/domain/repositories"
)

const (
	defaultSampleRate      = 16000
	defaultFramesPerBuffer = 1024
	microphoneUnavailable  = "Could not access the microphone"
)

// MicrophoneConfig holds configuration for the PortAudio microphone
type MicrophoneConfig struct {
	SampleRate      int
	FramesPerBuffer int
}

// PortAudioMicrophone captures mono 16-bit PCM from the default input device
type PortAudioMicrophone struct {
	sampleRate      int
	framesPerBuffer int
	logger          *zap.Logger
}

var _ repositories.Microphone = (*PortAudioMicrophone)(nil)

// NewPortAudioMicrophone creates a microphone backed by the default input device
func NewPortAudioMicrophone(config MicrophoneConfig, logger *zap.Logger) *PortAudioMicrophone {
	sampleRate := config.SampleRate
	if sampleRate == 0 {
		sampleRate = defaultSampleRate
		logger.Info("Using default sample rate", zap.Int("sampleRate", sampleRate))
	}
	framesPerBuffer := config.FramesPerBuffer
	if framesPerBuffer == 0 {
		framesPerBuffer = defaultFramesPerBuffer
	}
	return &PortAudioMicrophone{
		sampleRate:      sampleRate,
		framesPerBuffer: framesPerBuffer,
		logger:          logger,
	}
}

// Open acquires the input device. Any failure is reported as permission_denied.
func (m *PortAudioMicrophone) Open(ctx context.Context) (repositories.AudioStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, domain.NewError(domain.ErrorKindPermissionDenied, microphoneUnavailable, fmt.Errorf("failed to initialize portaudio: %w", err))
	}

	buffer := make([]int16, m.framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), len(buffer), buffer)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, domain.NewError(domain.ErrorKindPermissionDenied, microphoneUnavailable, fmt.Errorf("failed to open input stream: %w", err))
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, domain.NewError(domain.ErrorKindPermissionDenied, microphoneUnavailable, fmt.Errorf("failed to start input stream: %w", err))
	}

	s := &portAudioStream{
		stream:    stream,
		buffer:    buffer,
		format:    entities.AudioFormat{SampleRate: m.sampleRate, Channels: 1, BitDepth: 16},
		fragments: make(chan []byte, 64),
		done:      make(chan struct{}),
		logger:    m.logger,
	}
	go s.readLoop()
	return s, nil
}

// portAudioStream is one open capture on the default input device
type portAudioStream struct {
	stream    *portaudio.Stream
	buffer    []int16
	format    entities.AudioFormat
	fragments chan []byte
	done      chan struct{}
	stopping  atomic.Bool
	stopOnce  sync.Once
	closeOnce sync.Once
	logger    *zap.Logger
}

func (s *portAudioStream) Format() entities.AudioFormat {
	return s.format
}

func (s *portAudioStream) Fragments() <-chan []byte {
	return s.fragments
}

// Stop ends capture after the buffer being read. The fragment channel is
// closed once the read loop has exited.
func (s *portAudioStream) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		s.stopping.Store(true)
		<-s.done
		if stopErr := s.stream.Stop(); stopErr != nil {
			err = fmt.Errorf("failed to stop input stream: %w", stopErr)
		}
	})
	return err
}

// Close releases the device and the PortAudio library
func (s *portAudioStream) Close() error {
	if err := s.Stop(); err != nil {
		s.logger.Warn("Input stream did not stop cleanly", zap.Error(err))
	}
	var err error
	s.closeOnce.Do(func() {
		if closeErr := s.stream.Close(); closeErr != nil {
			err = fmt.Errorf("failed to close input stream: %w", closeErr)
		}
		if termErr := portaudio.Terminate(); termErr != nil && err == nil {
			err = fmt.Errorf("failed to terminate portaudio: %w", termErr)
		}
	})
	return err
}

func (s *portAudioStream) readLoop() {
	defer close(s.done)
	defer close(s.fragments)

	for !s.stopping.Load() {
		if err := s.stream.Read(); err != nil {
			// overflow drops samples but capture can continue
			if err == portaudio.InputOverflowed {
				s.logger.Debug("Input overflowed")
				continue
			}
			s.logger.Error("Error reading input stream", zap.Error(err))
			return
		}
		s.fragments <- encodePCM16(s.buffer)
	}
}

func encodePCM16(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(sample))
	}
	return out
}

func decodePCM16(data []byte) []int {
	samples := make([]int, len(data)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(data[i*2:])))
	}
	return samples
}
