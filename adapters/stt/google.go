package stt

import (
	"context"
	"fmt"
	"mime"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/satriahrh/dijiang/domain/repositories"
)

const defaultLanguage = "en-US"

// GoogleConfig holds configuration for Google Cloud Speech-to-Text.
// Credentials come from GOOGLE_APPLICATION_CREDENTIALS.
type GoogleConfig struct {
	Language string
}

// GoogleSpeechToText implements SpeechToText for Google Cloud
type GoogleSpeechToText struct {
	client   *speech.Client
	language string
	logger   *zap.Logger
}

var _ repositories.SpeechToText = (*GoogleSpeechToText)(nil)

// NewGoogleSpeechToText creates a Google Cloud Speech client
func NewGoogleSpeechToText(ctx context.Context, config GoogleConfig, logger *zap.Logger) (*GoogleSpeechToText, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	language := config.Language
	if language == "" {
		language = defaultLanguage
		logger.Info("Using default language", zap.String("language", language))
	}

	return &GoogleSpeechToText{
		client:   client,
		language: language,
		logger:   logger,
	}, nil
}

// TranscribeAudio converts an encoded clip to text using synchronous recognition
func (g *GoogleSpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	if len(audioData) == 0 {
		return "", fmt.Errorf("no audio data received")
	}

	recognitionConfig, err := newRecognitionConfig(config, g.language)
	if err != nil {
		return "", err
	}

	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: recognitionConfig,
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audioData},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to recognize speech: %w", err)
	}

	var transcript []string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			transcript = append(transcript, result.Alternatives[0].Transcript)
		}
	}

	text := strings.TrimSpace(strings.Join(transcript, " "))
	g.logger.Info("Google transcription completed",
		zap.Int("audioSize", len(audioData)),
		zap.Int("results", len(resp.Results)))
	return text, nil
}

// Close releases the underlying gRPC connection
func (g *GoogleSpeechToText) Close() error {
	return g.client.Close()
}

// newRecognitionConfig describes the clip for Recognize. The request language
// wins over fallbackLanguage; the sample rate is sent only when known.
func newRecognitionConfig(config repositories.AudioConfig, fallbackLanguage string) (*speechpb.RecognitionConfig, error) {
	encoding, err := getAudioEncoding(config.ContentType)
	if err != nil {
		return nil, err
	}

	language := config.Language
	if language == "" {
		language = fallbackLanguage
	}

	recognitionConfig := &speechpb.RecognitionConfig{
		Encoding:     encoding,
		LanguageCode: language,
	}
	if config.SampleRate > 0 {
		recognitionConfig.SampleRateHertz = int32(config.SampleRate)
	}
	return recognitionConfig, nil
}

// getAudioEncoding maps an upload content type to the Speech API enum
func getAudioEncoding(contentType string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	mediaType := contentType
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}

	switch strings.ToLower(mediaType) {
	case "audio/wav", "audio/wave", "audio/x-wav", "audio/l16", "":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "audio/flac", "audio/x-flac":
		return speechpb.RecognitionConfig_FLAC, nil
	case "audio/basic", "audio/mulaw":
		return speechpb.RecognitionConfig_MULAW, nil
	case "audio/amr":
		return speechpb.RecognitionConfig_AMR, nil
	case "audio/amr-wb":
		return speechpb.RecognitionConfig_AMR_WB, nil
	case "audio/ogg":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "audio/webm":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported audio content type: %s", contentType)
	}
}
