package tts

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/satriahrh/dijiang/domain/repositories"
)

// OpenAIConfig holds configuration for OpenAI speech synthesis
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Voice   string
}

// OpenAITTS implements TextToSpeech using the OpenAI speech endpoint
type OpenAITTS struct {
	client *openai.Client
	model  openai.SpeechModel
	voice  openai.SpeechVoice
	logger *zap.Logger
}

var _ repositories.TextToSpeech = (*OpenAITTS)(nil)

// NewOpenAITTS creates a new OpenAI speech adapter
func NewOpenAITTS(config OpenAIConfig, logger *zap.Logger) (*OpenAITTS, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	model := openai.SpeechModel(config.Model)
	if model == "" {
		model = openai.TTSModel1
		logger.Info("Using default speech model", zap.String("model", string(model)))
	}

	voice := openai.SpeechVoice(config.Voice)
	if voice == "" {
		voice = openai.VoiceOnyx
		logger.Info("Using default voice", zap.String("voice", string(voice)))
	}

	return &OpenAITTS{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		voice:  voice,
		logger: logger,
	}, nil
}

// SynthesizeAudio returns MP3 audio for text
func (o *OpenAITTS) SynthesizeAudio(ctx context.Context, text string) (repositories.SynthesizedAudio, error) {
	if strings.TrimSpace(text) == "" {
		return repositories.SynthesizedAudio{}, fmt.Errorf("text cannot be empty")
	}

	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          o.model,
		Input:          text,
		Voice:          o.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return repositories.SynthesizedAudio{}, fmt.Errorf("failed to create speech: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return repositories.SynthesizedAudio{}, fmt.Errorf("failed to read speech: %w", err)
	}

	o.logger.Info("OpenAI speech synthesized",
		zap.Int("length", len(text)),
		zap.Int("totalBytes", len(audio)))

	return repositories.SynthesizedAudio{
		Data:        audio,
		ContentType: "audio/mpeg",
	}, nil
}
