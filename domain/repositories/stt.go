package repositories

import "context"

// SpeechToText abstracts speech recognition services
type SpeechToText interface {
	// TranscribeAudio converts an encoded audio clip to text
	TranscribeAudio(ctx context.Context, audioData []byte, config AudioConfig) (string, error)
}

// AudioConfig describes an uploaded clip for speech recognition
type AudioConfig struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	SampleRate  int    `json:"sample_rate"`
	Language    string `json:"language"`
}
