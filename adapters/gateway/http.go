package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/satriahrh/dijiang/domain"
	"github.com/satriahrh/dijiang/domain/repositories"
)

const maxErrorBodyBytes = 64 * 1024

// Config holds configuration for the HTTP gateway
type Config struct {
	// BaseURL is prefixed to every endpoint that is not an absolute URL
	BaseURL string
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration
}

// HTTPGateway implements repositories.Gateway over HTTP
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// Ensure HTTPGateway implements the Gateway interface
var _ repositories.Gateway = (*HTTPGateway)(nil)

// NewHTTPGateway creates a new gateway
func NewHTTPGateway(config Config, logger *zap.Logger) *HTTPGateway {
	return &HTTPGateway{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		client:  &http.Client{Timeout: config.Timeout},
		logger:  logger,
	}
}

// PostJSON posts payload encoded as JSON
func (g *HTTPGateway) PostJSON(ctx context.Context, endpoint string, payload any) (*domain.ServiceResponse, error) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url(endpoint), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return g.do(req, endpoint)
}

// PostMultipart posts file as the only field of a multipart form
func (g *HTTPGateway) PostMultipart(ctx context.Context, endpoint string, file repositories.Upload) (*domain.ServiceResponse, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fieldName := file.FieldName
	if fieldName == "" {
		fieldName = "file"
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(fieldName), escapeQuotes(file.Filename)))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart field: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, fmt.Errorf("failed to write multipart field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url(endpoint), &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return g.do(req, endpoint)
}

func (g *HTTPGateway) do(req *http.Request, endpoint string) (*domain.ServiceResponse, error) {
	started := time.Now()

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error("Request did not reach the service",
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return nil, &domain.Error{Kind: domain.ErrorKindTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		message := serverMessage(errorBody)
		g.logger.Error("Service rejected request",
			zap.String("endpoint", endpoint),
			zap.Int("statusCode", resp.StatusCode),
			zap.String("message", message))
		return nil, &domain.Error{
			Kind:       domain.ErrorKindServiceRejected,
			StatusCode: resp.StatusCode,
			Message:    message,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		g.logger.Error("Failed to read response body", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, &domain.Error{Kind: domain.ErrorKindTransport, StatusCode: resp.StatusCode, Err: err}
	}

	g.logger.Debug("Service responded",
		zap.String("endpoint", endpoint),
		zap.Int("statusCode", resp.StatusCode),
		zap.String("contentType", resp.Header.Get("Content-Type")),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(started)))

	return &domain.ServiceResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func (g *HTTPGateway) url(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return g.baseURL + endpoint
}

// serverMessage extracts the error message of a JSON error body, if any
func serverMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var errorResponse domain.ErrorResponse
	if err := sonic.Unmarshal(body, &errorResponse); err != nil {
		return ""
	}
	if errorResponse.Error != "" {
		return errorResponse.Error
	}
	return errorResponse.Message
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
