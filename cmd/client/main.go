package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/satriahrh/dijiang/adapters/audio"
	"github.com/satriahrh/dijiang/adapters/gateway"
	"github.com/satriahrh/dijiang/internal/config"
	"github.com/satriahrh/dijiang/internal/tui"
	"github.com/satriahrh/dijiang/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.ClientConfigFromEnv()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// The terminal belongs to the TUI, so logs go to a file
	logConfig := zap.NewDevelopmentConfig()
	logConfig.OutputPaths = []string{cfg.LogFile}
	logConfig.ErrorOutputPaths = []string{cfg.LogFile}
	logger, err := logConfig.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize adapters
	httpGateway := gateway.NewHTTPGateway(gateway.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.RequestTimeout,
	}, logger)
	microphone := audio.NewPortAudioMicrophone(audio.MicrophoneConfig{SampleRate: cfg.SampleRate}, logger)
	player := audio.NewBeepPlayer(logger)
	notifier := tui.NewChannelNotifier()

	// Initialize usecase pipelines
	recorder := usecase.NewRecorder(microphone, audio.NewWAVEncoder(), logger)
	transcription := usecase.NewTranscriptionPipeline(httpGateway, cfg.TranscribeEndpoint, notifier, logger)
	playback := usecase.NewPlaybackPipeline(httpGateway, cfg.SpeechEndpoint, player, notifier, logger)
	controller := usecase.NewSessionController(usecase.SessionControllerConfig{
		SystemPrompt: cfg.SystemPrompt,
		ChatEndpoint: cfg.ChatEndpoint,
	}, httpGateway, recorder, transcription, playback, logger)

	logger.Info("Client started",
		zap.String("base_url", cfg.BaseURL),
		zap.Duration("request_timeout", cfg.RequestTimeout))

	program := tea.NewProgram(tui.NewModel(ctx, controller, notifier.Alerts()), tea.WithAltScreen())
	_, runErr := program.Run()

	cancel()
	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	controller.Close(closeCtx)

	logger.Info("Client exited")
	if runErr != nil {
		return fmt.Errorf("failed to run terminal UI: %w", runErr)
	}
	return nil
}
