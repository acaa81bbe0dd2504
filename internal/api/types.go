package api

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Error codes carried in domain.ErrorResponse.Code
const (
	codeInvalidRequest  = "invalid_request"
	codeMissingAudio    = "missing_audio"
	codeAudioTooLarge   = "audio_too_large"
	codeProviderFailure = "provider_failure"
	codeUnsupportedType = "unsupported_media_type"
)
