package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/satriahrh/dijiang/domain/repositories"
)

const (
	elevenLabsBaseURL      = "https://api.elevenlabs.io/v1"
	elevenLabsVoice        = "21m00Tcm4TlvDq8ikWAM" // Rachel
	elevenLabsModel        = "eleven_multilingual_v2"
	elevenLabsFormat       = "mp3_44100_128"
	elevenLabsStability    = 0.5
	elevenLabsClarity      = 0.75
	elevenLabsTimeout      = 60 * time.Second
	elevenLabsErrorPreview = 4096
)

// ElevenLabsConfig configures the Eleven Labs adapter. Only APIKey is
// required. Stability and Clarity are in [0, 1]; zero selects the default.
// OutputFormat must be an mp3_* or pcm_* format.
type ElevenLabsConfig struct {
	APIKey       string
	APIBaseURL   string
	VoiceID      string
	ModelID      string
	OutputFormat string
	Stability    float64
	Clarity      float64
}

// withDefaults fills every unset optional field, logging each fallback.
func (c ElevenLabsConfig) withDefaults(logger *zap.Logger) ElevenLabsConfig {
	fallback := func(field *string, value, name string) {
		if *field == "" {
			*field = value
			logger.Info("Using default Eleven Labs setting", zap.String(name, value))
		}
	}
	fallback(&c.APIBaseURL, elevenLabsBaseURL, "apiBaseURL")
	fallback(&c.VoiceID, elevenLabsVoice, "voiceID")
	fallback(&c.ModelID, elevenLabsModel, "modelID")
	fallback(&c.OutputFormat, elevenLabsFormat, "outputFormat")
	if c.Stability == 0 {
		c.Stability = elevenLabsStability
	}
	if c.Clarity == 0 {
		c.Clarity = elevenLabsClarity
	}
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	return c
}

// ElevenLabsTTS synthesizes speech through the Eleven Labs REST API and
// returns the whole clip at once.
type ElevenLabsTTS struct {
	config ElevenLabsConfig
	client *http.Client
	logger *zap.Logger
}

var _ repositories.TextToSpeech = (*ElevenLabsTTS)(nil)

type ElevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	UseSpeakerBoost bool    `json:"use_speaker_boost,omitempty"`
}

// ElevenLabsRequest is the body of a text-to-speech call.
type ElevenLabsRequest struct {
	Text                   string                  `json:"text"`
	ModelID                string                  `json:"model_id"`
	VoiceSettings          ElevenLabsVoiceSettings `json:"voice_settings"`
	ApplyTextNormalization string                  `json:"apply_text_normalization,omitempty"`
}

// ElevenLabsStatusError is returned when the API answers with a non-200 status.
type ElevenLabsStatusError struct {
	StatusCode int
	Body       string
}

func (e *ElevenLabsStatusError) Error() string {
	return fmt.Sprintf("eleven labs API returned status %d", e.StatusCode)
}

func ValidateElevenLabsConfig(config ElevenLabsConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("eleven labs API key is required")
	}
	if !inUnitInterval(config.Stability) {
		return fmt.Errorf("stability must be between 0 and 1, got %f", config.Stability)
	}
	if !inUnitInterval(config.Clarity) {
		return fmt.Errorf("clarity must be between 0 and 1, got %f", config.Clarity)
	}
	if config.OutputFormat != "" && contentTypeFor(config.OutputFormat) == "" {
		return fmt.Errorf("unsupported output format %q", config.OutputFormat)
	}
	return nil
}

func NewElevenLabsTTS(config ElevenLabsConfig, logger *zap.Logger) (*ElevenLabsTTS, error) {
	if err := ValidateElevenLabsConfig(config); err != nil {
		return nil, err
	}
	return &ElevenLabsTTS{
		config: config.withDefaults(logger),
		client: &http.Client{Timeout: elevenLabsTimeout},
		logger: logger,
	}, nil
}

// SynthesizeAudio converts text to one complete audio payload
func (e *ElevenLabsTTS) SynthesizeAudio(ctx context.Context, text string) (repositories.SynthesizedAudio, error) {
	if strings.TrimSpace(text) == "" {
		return repositories.SynthesizedAudio{}, fmt.Errorf("text cannot be empty")
	}

	httpReq, err := e.newRequest(ctx, text)
	if err != nil {
		return repositories.SynthesizedAudio{}, err
	}

	e.logger.Debug("Requesting speech synthesis",
		zap.Int("length", len(text)),
		zap.String("voiceID", e.config.VoiceID))

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return repositories.SynthesizedAudio{}, fmt.Errorf("failed to call eleven labs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, elevenLabsErrorPreview))
		statusErr := &ElevenLabsStatusError{StatusCode: resp.StatusCode, Body: string(preview)}
		e.logger.Error("Eleven Labs rejected synthesis",
			zap.Int("statusCode", statusErr.StatusCode),
			zap.String("response", statusErr.Body))
		return repositories.SynthesizedAudio{}, statusErr
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return repositories.SynthesizedAudio{}, fmt.Errorf("failed to read audio: %w", err)
	}
	e.logger.Info("Speech synthesized", zap.Int("bytes", len(audio)))

	return repositories.SynthesizedAudio{
		Data:        audio,
		ContentType: contentTypeFor(e.config.OutputFormat),
	}, nil
}

func (e *ElevenLabsTTS) newRequest(ctx context.Context, text string) (*http.Request, error) {
	body, err := sonic.Marshal(ElevenLabsRequest{
		Text:                   text,
		ModelID:                e.config.ModelID,
		ApplyTextNormalization: "auto",
		VoiceSettings: ElevenLabsVoiceSettings{
			Stability:       e.config.Stability,
			SimilarityBoost: e.config.Clarity,
			UseSpeakerBoost: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	query := url.Values{}
	query.Set("output_format", e.config.OutputFormat)
	query.Set("enable_logging", "false")
	endpoint := e.config.APIBaseURL + "/text-to-speech/" + url.PathEscape(e.config.VoiceID) + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", contentTypeFor(e.config.OutputFormat))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", e.config.APIKey)
	return req, nil
}

func contentTypeFor(outputFormat string) string {
	switch {
	case strings.HasPrefix(outputFormat, "mp3"):
		return "audio/mpeg"
	case strings.HasPrefix(outputFormat, "pcm"):
		return "audio/pcm"
	default:
		return ""
	}
}

func inUnitInterval(v float64) bool {
	return v >= 0 && v <= 1
}

// NewElevenLabsConfigFromEnv reads the ELEVEN_LABS_* variables. Malformed
// or out-of-range tuning values are ignored.
func NewElevenLabsConfigFromEnv() ElevenLabsConfig {
	return ElevenLabsConfig{
		APIKey:       os.Getenv("ELEVEN_LABS_API_KEY"),
		APIBaseURL:   os.Getenv("ELEVEN_LABS_API_BASE_URL"),
		VoiceID:      os.Getenv("ELEVEN_LABS_VOICE_ID"),
		ModelID:      os.Getenv("ELEVEN_LABS_MODEL_ID"),
		OutputFormat: os.Getenv("ELEVEN_LABS_OUTPUT_FORMAT"),
		Stability:    unitIntervalFromEnv("ELEVEN_LABS_STABILITY"),
		Clarity:      unitIntervalFromEnv("ELEVEN_LABS_CLARITY"),
	}
}

func unitIntervalFromEnv(key string) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || !inUnitInterval(v) {
		return 0
	}
	return v
}
