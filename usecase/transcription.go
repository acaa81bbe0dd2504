package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/satriahrh/dijiang/domain"
	"github.com/satriahrh/dijiang/domain/entities"
	"github.com/satriahrh/dijiang/domain/repositories"
)

const (
	transcriptionFallback = "Failed to transcribe audio"
	defaultClipFilename   = "audio.wav"
	uploadFieldName       = "file"
)

// TranscriptionPipeline sends a clip to the transcription endpoint
type TranscriptionPipeline struct {
	gateway  repositories.Gateway
	endpoint string
	notifier repositories.Notifier
	logger   *zap.Logger
}

// NewTranscriptionPipeline creates a new transcription pipeline
func NewTranscriptionPipeline(gateway repositories.Gateway, endpoint string, notifier repositories.Notifier, logger *zap.Logger) *TranscriptionPipeline {
	return &TranscriptionPipeline{
		gateway:  gateway,
		endpoint: endpoint,
		notifier: notifier,
		logger:   logger,
	}
}

// Transcribe uploads the clip and returns the recognized text.
// Failures are alerted to the user before being returned.
func (p *TranscriptionPipeline) Transcribe(ctx context.Context, clip entities.Clip) (string, error) {
	filename := clip.Filename
	if filename == "" {
		filename = defaultClipFilename
	}

	resp, err := p.gateway.PostMultipart(ctx, p.endpoint, repositories.Upload{
		FieldName:   uploadFieldName,
		Filename:    filename,
		ContentType: clip.ContentType,
		Data:        clip.Data,
	})
	if err != nil {
		p.Report(err)
		return "", err
	}

	var out domain.TranscriptionResponse
	if err := resp.DecodeJSON(&out); err != nil {
		p.Report(err)
		return "", err
	}

	p.logger.Info("Transcription completed", zap.Int("length", len(out.Text)))
	return out.Text, nil
}

// Report logs a failed transcription attempt and alerts the user
func (p *TranscriptionPipeline) Report(err error) {
	p.logger.Error("Error transcribing audio", zap.Error(err))
	p.notifier.Alert(domain.UserMessage(err, transcriptionFallback))
}
