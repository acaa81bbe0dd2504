package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/satriahrh/dijiang/adapters/tts"
)

const (
	defaultBaseURL            = "http://localhost:8080"
	defaultChatEndpoint       = "/api/chat"
	defaultTranscribeEndpoint = "/api/speech"
	defaultSpeechEndpoint     = "/api/speech"
	defaultSampleRate         = 16000
	defaultLogFile            = "dijiang-client.log"
	defaultPort               = "8080"
	defaultMaxUploadBytes     = 25 << 20
)

// Provider names accepted by LLM_PROVIDER, STT_PROVIDER and TTS_PROVIDER
const (
	ProviderMock       = "mock"
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderGoogle     = "google"
	ProviderElevenLabs = "elevenlabs"
)

// LoadDotEnv loads variables from the given files, or ./.env when none are
// given. Missing files are ignored; variables already set are kept.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", name, err)
		}
	}
	return nil
}

// ClientConfig configures the terminal client
type ClientConfig struct {
	BaseURL            string
	ChatEndpoint       string
	TranscribeEndpoint string
	SpeechEndpoint     string
	// RequestTimeout of zero leaves requests unbounded
	RequestTimeout time.Duration
	SystemPrompt   string
	SampleRate     int
	LogFile        string
}

// ClientConfigFromEnv reads the client configuration from the environment
func ClientConfigFromEnv() (ClientConfig, error) {
	config := ClientConfig{
		BaseURL:            getEnv("DIJIANG_BASE_URL", defaultBaseURL),
		ChatEndpoint:       getEnv("DIJIANG_CHAT_ENDPOINT", defaultChatEndpoint),
		TranscribeEndpoint: getEnv("DIJIANG_TRANSCRIBE_ENDPOINT", defaultTranscribeEndpoint),
		SpeechEndpoint:     getEnv("DIJIANG_SPEECH_ENDPOINT", defaultSpeechEndpoint),
		SystemPrompt:       DefaultSystemPrompt,
		SampleRate:         defaultSampleRate,
		LogFile:            getEnv("DIJIANG_LOG_FILE", defaultLogFile),
	}

	if raw := os.Getenv("DIJIANG_REQUEST_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return ClientConfig{}, fmt.Errorf("invalid DIJIANG_REQUEST_TIMEOUT: %w", err)
		}
		config.RequestTimeout = timeout
	}

	if raw := os.Getenv("DIJIANG_SAMPLE_RATE"); raw != "" {
		rate, err := strconv.Atoi(raw)
		if err != nil {
			return ClientConfig{}, fmt.Errorf("invalid DIJIANG_SAMPLE_RATE: %w", err)
		}
		config.SampleRate = rate
	}

	if path := os.Getenv("DIJIANG_SYSTEM_PROMPT_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return ClientConfig{}, fmt.Errorf("failed to read system prompt file: %w", err)
		}
		config.SystemPrompt = string(data)
	} else if prompt := os.Getenv("DIJIANG_SYSTEM_PROMPT"); prompt != "" {
		config.SystemPrompt = prompt
	}

	return config, ValidateClientConfig(config)
}

// ValidateClientConfig validates the ClientConfig
func ValidateClientConfig(config ClientConfig) error {
	parsed, err := url.Parse(config.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("base URL must be absolute, got %q", config.BaseURL)
	}

	for name, endpoint := range map[string]string{
		"chat":       config.ChatEndpoint,
		"transcribe": config.TranscribeEndpoint,
		"speech":     config.SpeechEndpoint,
	} {
		if endpoint == "" {
			return fmt.Errorf("%s endpoint is required", name)
		}
	}

	if config.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative, got %s", config.RequestTimeout)
	}

	if config.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", config.SampleRate)
	}

	if strings.TrimSpace(config.SystemPrompt) == "" {
		return fmt.Errorf("system prompt must not be empty")
	}

	return nil
}

// ServerConfig configures the HTTP backend and its providers
type ServerConfig struct {
	Port           string
	LLMProvider    string
	STTProvider    string
	TTSProvider    string
	MaxUploadBytes int64

	GeminiAPIKey string
	GeminiModel  string

	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIChatModel string
	OpenAITTSVoice  string

	STTLanguage string
	ElevenLabs  tts.ElevenLabsConfig
}

// ServerConfigFromEnv reads the server configuration from the environment.
// Providers default to mock so the server runs without credentials.
func ServerConfigFromEnv() (ServerConfig, error) {
	config := ServerConfig{
		Port:            getEnv("PORT", defaultPort),
		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", ProviderMock)),
		STTProvider:     strings.ToLower(getEnv("STT_PROVIDER", ProviderMock)),
		TTSProvider:     strings.ToLower(getEnv("TTS_PROVIDER", ProviderMock)),
		MaxUploadBytes:  defaultMaxUploadBytes,
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     os.Getenv("GEMINI_MODEL"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		OpenAIChatModel: os.Getenv("OPENAI_CHAT_MODEL"),
		OpenAITTSVoice:  os.Getenv("OPENAI_TTS_VOICE"),
		STTLanguage:     os.Getenv("STT_LANGUAGE"),
		ElevenLabs:      tts.NewElevenLabsConfigFromEnv(),
	}

	if raw := os.Getenv("MAX_UPLOAD_BYTES"); raw != "" {
		size, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("invalid MAX_UPLOAD_BYTES: %w", err)
		}
		config.MaxUploadBytes = size
	}

	return config, ValidateServerConfig(config)
}

// ValidateServerConfig checks provider names and their required credentials
func ValidateServerConfig(config ServerConfig) error {
	if config.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive, got %d", config.MaxUploadBytes)
	}

	switch config.LLMProvider {
	case ProviderMock:
	case ProviderGemini:
		if config.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
	case ProviderOpenAI:
		if config.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	default:
		return fmt.Errorf("unknown LLM provider %q", config.LLMProvider)
	}

	switch config.STTProvider {
	case ProviderMock, ProviderGoogle:
	case ProviderOpenAI:
		if config.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	default:
		return fmt.Errorf("unknown STT provider %q", config.STTProvider)
	}

	switch config.TTSProvider {
	case ProviderMock:
	case ProviderElevenLabs:
		if err := tts.ValidateElevenLabsConfig(config.ElevenLabs); err != nil {
			return err
		}
	case ProviderOpenAI:
		if config.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	default:
		return fmt.Errorf("unknown TTS provider %q", config.TTSProvider)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
