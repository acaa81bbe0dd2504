package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("failed to transcribe: %w", &Error{Kind: ErrorKindTransport, Err: errors.New("connection refused")})

	if !IsKind(err, ErrorKindTransport) {
		t.Error("Expected wrapped error to be of transport kind")
	}
	if IsKind(err, ErrorKindServiceRejected) {
		t.Error("Expected wrapped error not to be of service_rejected kind")
	}
	if IsKind(errors.New("plain"), ErrorKindTransport) {
		t.Error("Expected plain error not to match any kind")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fallback string
		want     string
	}{
		{
			name:     "server message surfaced verbatim",
			err:      &Error{Kind: ErrorKindServiceRejected, StatusCode: 400, Message: "audio file is required"},
			fallback: "Failed to transcribe audio",
			want:     "audio file is required",
		},
		{
			name:     "no server message uses fallback",
			err:      &Error{Kind: ErrorKindServiceRejected, StatusCode: 500},
			fallback: "Failed to transcribe audio",
			want:     "Failed to transcribe audio",
		},
		{
			name:     "untyped error uses fallback",
			err:      errors.New("boom"),
			fallback: "Failed to generate speech",
			want:     "Failed to generate speech",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err, tt.fallback); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	err := &Error{Kind: ErrorKindServiceRejected, StatusCode: 502, Message: "provider unavailable"}
	want := "service_rejected (status 502): provider unavailable"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}

	cause := errors.New("dial tcp: refused")
	wrapped := &Error{Kind: ErrorKindTransport, Err: cause}
	if !errors.Is(wrapped, cause) {
		t.Error("Expected Unwrap to expose the cause")
	}
}
