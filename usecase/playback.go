package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/satriahrh/dijiang/domain"
	"github.com/satriahrh/dijiang/domain/repositories"
)

const speechFallback = "Failed to generate speech"

// PlaybackPipeline synthesizes text through the speech endpoint and plays it
type PlaybackPipeline struct {
	gateway  repositories.Gateway
	endpoint string
	player   repositories.AudioPlayer
	notifier repositories.Notifier
	logger   *zap.Logger
}

// NewPlaybackPipeline creates a new playback pipeline
func NewPlaybackPipeline(gateway repositories.Gateway, endpoint string, player repositories.AudioPlayer, notifier repositories.Notifier, logger *zap.Logger) *PlaybackPipeline {
	return &PlaybackPipeline{
		gateway:  gateway,
		endpoint: endpoint,
		player:   player,
		notifier: notifier,
		logger:   logger,
	}
}

// Speak requests speech for text and starts playing it. Invalid responses
// are alerted and returned. A failure of the player itself is only logged.
func (p *PlaybackPipeline) Speak(ctx context.Context, text string) error {
	p.logger.Debug("Sending text to speech API", zap.Int("length", len(text)))

	resp, err := p.gateway.PostJSON(ctx, p.endpoint, domain.SpeechRequest{Text: text})
	if err != nil {
		p.report(err, rejectedSpeechMessage(err))
		return err
	}

	if !resp.IsAudio() {
		message := "Response was not audio format"
		var body domain.ErrorResponse
		if resp.DecodeJSON(&body) == nil && body.Error != "" {
			message = body.Error
		}
		err := &domain.Error{Kind: domain.ErrorKindMalformedResponse, StatusCode: resp.StatusCode, Message: message}
		p.report(err, message)
		return err
	}

	if len(resp.Body) == 0 {
		err := &domain.Error{Kind: domain.ErrorKindMalformedResponse, StatusCode: resp.StatusCode, Message: "Empty audio received from API"}
		p.report(err, err.Message)
		return err
	}

	p.logger.Info("Audio received", zap.Int("size", len(resp.Body)), zap.String("contentType", resp.MediaType()))

	if err := p.player.Play(ctx, resp.Body, resp.MediaType()); err != nil {
		p.logger.Error("Error playing audio", zap.Error(err))
	}
	return nil
}

func (p *PlaybackPipeline) report(err error, message string) {
	p.logger.Error("Error generating speech", zap.Error(err))
	p.notifier.Alert(message)
}

func rejectedSpeechMessage(err error) string {
	var e *domain.Error
	if errors.As(err, &e) && e.Kind == domain.ErrorKindServiceRejected && e.Message == "" {
		return fmt.Sprintf("%s: %d", speechFallback, e.StatusCode)
	}
	return domain.UserMessage(err, speechFallback)
}
