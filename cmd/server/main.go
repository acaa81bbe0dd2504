package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/satriahrh/dijiang/adapters/llm"
	"github.com/satriahrh/dijiang/adapters/stt"
	"github.com/satriahrh/dijiang/adapters/tts"
	"github.com/satriahrh/dijiang/domain/repositories"
	"github.com/satriahrh/dijiang/internal/api"
	"github.com/satriahrh/dijiang/internal/config"
	"github.com/satriahrh/dijiang/usecase"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if err := config.LoadDotEnv(); err != nil {
		logger.Fatal("Failed to load .env", zap.Error(err))
	}

	cfg, err := config.ServerConfigFromEnv()
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	// Initialize adapters
	languageModel, err := newLanguageModel(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize LLM provider", zap.Error(err))
	}
	speechToText, closeSTT, err := newSpeechToText(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize STT provider", zap.Error(err))
	}
	defer closeSTT()
	textToSpeech, err := newTextToSpeech(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize TTS provider", zap.Error(err))
	}

	// Initialize usecase services
	chatService := usecase.NewChatService(languageModel, logger)
	speechService := usecase.NewSpeechService(speechToText, textToSpeech, cfg.STTLanguage, logger)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize API routes
	api.InitRoutes(e, api.NewHandler(chatService, speechService, cfg.MaxUploadBytes, logger))

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("port", cfg.Port),
		zap.String("llm", cfg.LLMProvider),
		zap.String("stt", cfg.STTProvider),
		zap.String("tts", cfg.TTSProvider))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLanguageModel(ctx context.Context, cfg config.ServerConfig, logger *zap.Logger) (repositories.LargeLanguageModel, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		return llm.NewGeminiLLM(ctx, llm.GeminiConfig{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel}, logger)
	case config.ProviderOpenAI:
		return llm.NewOpenAILLM(llm.OpenAIConfig{APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.OpenAIBaseURL, Model: cfg.OpenAIChatModel}, logger)
	case config.ProviderMock:
		return llm.NewMockLLM(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}

func newSpeechToText(ctx context.Context, cfg config.ServerConfig, logger *zap.Logger) (repositories.SpeechToText, func(), error) {
	noop := func() {}
	switch cfg.STTProvider {
	case config.ProviderGoogle:
		google, err := stt.NewGoogleSpeechToText(ctx, stt.GoogleConfig{Language: cfg.STTLanguage}, logger)
		if err != nil {
			return nil, noop, err
		}
		return google, func() {
			if err := google.Close(); err != nil {
				logger.Warn("Failed to close speech client", zap.Error(err))
			}
		}, nil
	case config.ProviderOpenAI:
		whisper, err := stt.NewOpenAISpeechToText(stt.OpenAIConfig{APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.OpenAIBaseURL, Language: cfg.STTLanguage}, logger)
		return whisper, noop, err
	case config.ProviderMock:
		return stt.NewMockSpeechToText(logger), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown STT provider %q", cfg.STTProvider)
	}
}

func newTextToSpeech(cfg config.ServerConfig, logger *zap.Logger) (repositories.TextToSpeech, error) {
	switch cfg.TTSProvider {
	case config.ProviderElevenLabs:
		return tts.NewElevenLabsTTS(cfg.ElevenLabs, logger)
	case config.ProviderOpenAI:
		return tts.NewOpenAITTS(tts.OpenAIConfig{APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.OpenAIBaseURL, Voice: cfg.OpenAITTSVoice}, logger)
	case config.ProviderMock:
		return tts.NewMockTextToSpeech(logger), nil
	default:
		return nil, fmt.Errorf("unknown TTS provider %q", cfg.TTSProvider)
	}
}
