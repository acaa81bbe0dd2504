package tts

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/satriahrh/dijiang/domain/repositories"
)

// silentFrame is one MPEG-1 Layer III frame of silence at 44.1kHz, 128kbps
var silentFrame = func() []byte {
	frame := make([]byte, 417)
	copy(frame, []byte{0xff, 0xfb, 0x90, 0x64})
	return frame
}()

// MockTextToSpeech returns silent MP3 audio sized to the text
type MockTextToSpeech struct {
	logger *zap.Logger
}

var _ repositories.TextToSpeech = (*MockTextToSpeech)(nil)

// NewMockTextToSpeech creates a new mock text-to-speech service
func NewMockTextToSpeech(logger *zap.Logger) *MockTextToSpeech {
	return &MockTextToSpeech{logger: logger}
}

// SynthesizeAudio returns roughly 26ms of silence per word
func (m *MockTextToSpeech) SynthesizeAudio(ctx context.Context, text string) (repositories.SynthesizedAudio, error) {
	words := len(strings.Fields(text))
	if words == 0 {
		return repositories.SynthesizedAudio{}, fmt.Errorf("text cannot be empty")
	}

	m.logger.Info("Synthesizing mock speech", zap.Int("words", words))

	audio := make([]byte, 0, words*len(silentFrame))
	for i := 0; i < words; i++ {
		audio = append(audio, silentFrame...)
	}
	return repositories.SynthesizedAudio{
		Data:        audio,
		ContentType: "audio/mpeg",
	}, nil
}
