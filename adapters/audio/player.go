package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	beepwav "github.com/faiface/beep/wav"
	"go.uber.org/zap"

	"github.com/satriahrh/dijiang/domain/repositories"
)

const (
	speakerSampleRate = beep.SampleRate(44100)
	resampleQuality   = 4
)

// BeepPlayer plays MP3 and WAV payloads on the default output device
type BeepPlayer struct {
	logger   *zap.Logger
	initOnce sync.Once
	initErr  error
}

var _ repositories.AudioPlayer = (*BeepPlayer)(nil)

// NewBeepPlayer creates a new player. The speaker is opened on first use.
func NewBeepPlayer(logger *zap.Logger) *BeepPlayer {
	return &BeepPlayer{logger: logger}
}

// Play decodes audio and starts playing it without waiting for the end
func (p *BeepPlayer) Play(ctx context.Context, audio []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	streamer, format, err := decode(audio, contentType)
	if err != nil {
		return err
	}

	p.initOnce.Do(func() {
		p.initErr = speaker.Init(speakerSampleRate, speakerSampleRate.N(time.Second/10))
	})
	if p.initErr != nil {
		streamer.Close()
		return fmt.Errorf("failed to initialize speaker: %w", p.initErr)
	}

	var source beep.Streamer = streamer
	if format.SampleRate != speakerSampleRate {
		source = beep.Resample(resampleQuality, format.SampleRate, speakerSampleRate, streamer)
	}

	p.logger.Debug("Playing audio",
		zap.String("contentType", contentType),
		zap.Int("sampleRate", int(format.SampleRate)))
	speaker.Play(beep.Seq(source, beep.Callback(func() {
		if err := streamer.Close(); err != nil {
			p.logger.Warn("Failed to close audio stream", zap.Error(err))
		}
	})))
	return nil
}

func decode(audio []byte, contentType string) (beep.StreamSeekCloser, beep.Format, error) {
	switch contentType {
	case "audio/mpeg", "audio/mp3":
		streamer, format, err := mp3.Decode(io.NopCloser(bytes.NewReader(audio)))
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("failed to decode mp3: %w", err)
		}
		return streamer, format, nil
	case "audio/wav", "audio/wave", "audio/x-wav":
		streamer, format, err := beepwav.Decode(bytes.NewReader(audio))
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("failed to decode wav: %w", err)
		}
		return streamer, format, nil
	default:
		return nil, beep.Format{}, fmt.Errorf("unsupported audio format %q", contentType)
	}
}
