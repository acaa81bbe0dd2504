package usecase

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-audio/wav"
	"go.uber.org/zap"

	"github.com/satriahrh/dijiang/domain/repositories"
)

// SpeechService transcribes uploaded clips and synthesizes replies
type SpeechService struct {
	stt      repositories.SpeechToText
	tts      repositories.TextToSpeech
	language string
	logger   *zap.Logger
}

// NewSpeechService creates a new speech service
func NewSpeechService(stt repositories.SpeechToText, tts repositories.TextToSpeech, language string, logger *zap.Logger) *SpeechService {
	return &SpeechService{
		stt:      stt,
		tts:      tts,
		language: language,
		logger:   logger,
	}
}

// Transcribe converts an uploaded clip to text
func (s *SpeechService) Transcribe(ctx context.Context, audio []byte, filename, contentType string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("%w: audio file is required", ErrInvalidRequest)
	}

	text, err := s.stt.TranscribeAudio(ctx, audio, repositories.AudioConfig{
		Filename:    filename,
		ContentType: contentType,
		SampleRate:  wavSampleRate(audio),
		Language:    s.language,
	})
	if err != nil {
		s.logger.Error("Failed to transcribe audio", zap.Error(err), zap.Int("audioSize", len(audio)))
		return "", fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}

	s.logger.Info("Audio transcribed",
		zap.Int("audioSize", len(audio)),
		zap.Int("length", len(text)))
	return text, nil
}

// wavSampleRate reads the sample rate from a WAV header, or 0 for any other
// payload
func wavSampleRate(audio []byte) int {
	decoder := wav.NewDecoder(bytes.NewReader(audio))
	if !decoder.IsValidFile() {
		return 0
	}
	return int(decoder.SampleRate)
}

// Synthesize converts text to a complete audio payload
func (s *SpeechService) Synthesize(ctx context.Context, text string) (repositories.SynthesizedAudio, error) {
	if strings.TrimSpace(text) == "" {
		return repositories.SynthesizedAudio{}, fmt.Errorf("%w: text is required", ErrInvalidRequest)
	}

	audio, err := s.tts.SynthesizeAudio(ctx, text)
	if err != nil {
		s.logger.Error("Failed to synthesize speech", zap.Error(err))
		return repositories.SynthesizedAudio{}, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	if len(audio.Data) == 0 {
		return repositories.SynthesizedAudio{}, fmt.Errorf("%w: empty audio", ErrProviderFailure)
	}
	if audio.ContentType == "" {
		audio.ContentType = "audio/mpeg"
	}

	return audio, nil
}
