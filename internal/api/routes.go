package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/dijiang/domain"
	"github.com/satriahrh/dijiang/usecase"
)

const (
	defaultMaxUploadBytes = 25 << 20
	uploadFieldName       = "file"
	defaultUploadName     = "audio.wav"
)

// Handler serves the chat and speech endpoints
type Handler struct {
	chat           *usecase.ChatService
	speech         *usecase.SpeechService
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewHandler creates the HTTP handler. A zero maxUploadBytes selects 25MB.
func NewHandler(chat *usecase.ChatService, speech *usecase.SpeechService, maxUploadBytes int64, logger *zap.Logger) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
		logger.Info("Using default upload limit", zap.Int64("maxUploadBytes", maxUploadBytes))
	}
	return &Handler{
		chat:           chat,
		speech:         speech,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, h *Handler) {
	e.JSONSerializer = SonicSerializer{}

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, HealthResponse{
			Status:  "ok",
			Service: "dijiang-server",
		})
	})

	api := e.Group("/api")
	api.POST("/chat", h.chatCompletion)
	api.POST("/speech", h.speechDispatch)
}

func (h *Handler) chatCompletion(c echo.Context) error {
	var req domain.ChatRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Warn("Failed to bind chat request", zap.Error(err))
		return errorJSON(c, http.StatusBadRequest, codeInvalidRequest, "Invalid request format")
	}

	content, err := h.chat.Reply(c.Request().Context(), req.Messages)
	if err != nil {
		return h.serviceError(c, err, "chat completion failed")
	}

	return c.JSON(http.StatusOK, domain.ChatResponse{Content: content})
}

// speechDispatch routes multipart uploads to transcription and JSON bodies
// to synthesis
func (h *Handler) speechDispatch(c echo.Context) error {
	contentType := c.Request().Header.Get(echo.HeaderContentType)
	switch {
	case strings.HasPrefix(contentType, echo.MIMEMultipartForm):
		return h.transcribe(c)
	case strings.HasPrefix(contentType, echo.MIMEApplicationJSON):
		return h.synthesize(c)
	default:
		return errorJSON(c, http.StatusUnsupportedMediaType, codeUnsupportedType, "expected multipart/form-data or application/json")
	}
}

func (h *Handler) transcribe(c echo.Context) error {
	req := c.Request()
	if req.ContentLength > h.maxUploadBytes {
		return errorJSON(c, http.StatusRequestEntityTooLarge, codeAudioTooLarge, "audio file is too large")
	}
	req.Body = http.MaxBytesReader(c.Response(), req.Body, h.maxUploadBytes)

	header, err := c.FormFile(uploadFieldName)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errorJSON(c, http.StatusRequestEntityTooLarge, codeAudioTooLarge, "audio file is too large")
		}
		return errorJSON(c, http.StatusBadRequest, codeMissingAudio, "audio file is required")
	}

	file, err := header.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded file", zap.Error(err))
		return errorJSON(c, http.StatusBadRequest, codeMissingAudio, "audio file is required")
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("Failed to read uploaded file", zap.Error(err))
		return errorJSON(c, http.StatusBadRequest, codeInvalidRequest, "failed to read audio file")
	}
	if len(audio) == 0 {
		return errorJSON(c, http.StatusBadRequest, codeMissingAudio, "audio file is required")
	}

	filename := header.Filename
	if filename == "" {
		filename = defaultUploadName
	}

	text, err := h.speech.Transcribe(req.Context(), audio, filename, header.Header.Get(echo.HeaderContentType))
	if err != nil {
		return h.serviceError(c, err, "transcription failed")
	}

	return c.JSON(http.StatusOK, domain.TranscriptionResponse{Text: text})
}

func (h *Handler) synthesize(c echo.Context) error {
	var req domain.SpeechRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Warn("Failed to bind speech request", zap.Error(err))
		return errorJSON(c, http.StatusBadRequest, codeInvalidRequest, "Invalid request format")
	}

	audio, err := h.speech.Synthesize(c.Request().Context(), req.Text)
	if err != nil {
		return h.serviceError(c, err, "speech synthesis failed")
	}

	h.logger.Info("Speech synthesized",
		zap.Int("length", len(req.Text)),
		zap.Int("audioBytes", len(audio.Data)))
	return c.Blob(http.StatusOK, audio.ContentType, audio.Data)
}

// serviceError maps usecase errors to statuses. Validation messages are
// returned verbatim; provider details stay in the logs.
func (h *Handler) serviceError(c echo.Context, err error, message string) error {
	if errors.Is(err, usecase.ErrInvalidRequest) {
		return errorJSON(c, http.StatusBadRequest, codeInvalidRequest, validationMessage(err))
	}
	h.logger.Error("Request failed", zap.String("path", c.Path()), zap.Error(err))
	return errorJSON(c, http.StatusBadGateway, codeProviderFailure, message)
}

func validationMessage(err error) string {
	prefix := usecase.ErrInvalidRequest.Error() + ": "
	return strings.TrimPrefix(err.Error(), prefix)
}

func errorJSON(c echo.Context, status int, code, message string) error {
	return c.JSON(status, domain.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
