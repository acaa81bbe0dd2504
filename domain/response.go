package domain

import (
	"mime"
	"strings"

	"github.com/bytedance/sonic"
)

// ServiceResponse is a successful response received from a remote service
type ServiceResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// DecodeJSON parses the body into v. An empty or invalid body yields a
// malformed_response error.
func (r *ServiceResponse) DecodeJSON(v any) error {
	if len(r.Body) == 0 {
		return &Error{Kind: ErrorKindMalformedResponse, StatusCode: r.StatusCode, Message: "empty response body"}
	}
	if err := sonic.Unmarshal(r.Body, v); err != nil {
		return &Error{Kind: ErrorKindMalformedResponse, StatusCode: r.StatusCode, Err: err}
	}
	return nil
}

// MediaType returns the lower-cased media type without parameters
func (r *ServiceResponse) MediaType() string {
	if r.ContentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(r.ContentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.Split(r.ContentType, ";")[0]))
	}
	return strings.ToLower(mediaType)
}

// IsAudio reports whether the response declares an audio payload
func (r *ServiceResponse) IsAudio() bool {
	return strings.HasPrefix(r.MediaType(), "audio/")
}
