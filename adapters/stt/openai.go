package stt

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/satriahrh/dijiang/domain/repositories"
)

const defaultFilename = "audio.wav"

// OpenAIConfig holds configuration for Whisper transcription
type OpenAIConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string
}

// OpenAISpeechToText implements SpeechToText using OpenAI Whisper
type OpenAISpeechToText struct {
	client   *openai.Client
	model    string
	language string
	logger   *zap.Logger
}

var _ repositories.SpeechToText = (*OpenAISpeechToText)(nil)

// NewOpenAISpeechToText creates a new Whisper transcription adapter
func NewOpenAISpeechToText(config OpenAIConfig, logger *zap.Logger) (*OpenAISpeechToText, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	model := config.Model
	if model == "" {
		model = openai.Whisper1
		logger.Info("Using default transcription model", zap.String("model", model))
	}

	return &OpenAISpeechToText{
		client:   openai.NewClientWithConfig(clientConfig),
		model:    model,
		language: config.Language,
		logger:   logger,
	}, nil
}

// TranscribeAudio uploads the clip to the transcription endpoint
func (o *OpenAISpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	if len(audioData) == 0 {
		return "", fmt.Errorf("no audio data received")
	}

	filename := config.Filename
	if filename == "" {
		filename = defaultFilename
	}

	language := config.Language
	if language == "" {
		language = o.language
	}

	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.model,
		FilePath: filename,
		Reader:   bytes.NewReader(audioData),
		Language: whisperLanguage(language),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create transcription: %w", err)
	}

	o.logger.Info("Whisper transcription completed",
		zap.Int("audioSize", len(audioData)),
		zap.Int("length", len(resp.Text)))
	return strings.TrimSpace(resp.Text), nil
}

// whisperLanguage reduces a BCP-47 tag to the ISO-639-1 code Whisper expects
func whisperLanguage(language string) string {
	if i := strings.IndexAny(language, "-_"); i > 0 {
		return strings.ToLower(language[:i])
	}
	return strings.ToLower(language)
}
