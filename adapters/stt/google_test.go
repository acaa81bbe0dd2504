package stt

import (
	"testing"

	"cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/satriahrh/dijiang/domain/repositories"
)

func TestGetAudioEncoding(t *testing.T) {
	tests := []struct {
		contentType string
		expected    speechpb.RecognitionConfig_AudioEncoding
		wantErr     bool
	}{
		{contentType: "audio/wav", expected: speechpb.RecognitionConfig_LINEAR16},
		{contentType: "", expected: speechpb.RecognitionConfig_LINEAR16},
		{contentType: "audio/webm;codecs=opus", expected: speechpb.RecognitionConfig_WEBM_OPUS},
		{contentType: "audio/ogg", expected: speechpb.RecognitionConfig_OGG_OPUS},
		{contentType: "audio/FLAC", expected: speechpb.RecognitionConfig_FLAC},
		{contentType: "video/mp4", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			encoding, err := getAudioEncoding(tt.contentType)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if !tt.wantErr && encoding != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, encoding)
			}
		})
	}
}

func TestNewRecognitionConfig(t *testing.T) {
	config, err := newRecognitionConfig(repositories.AudioConfig{ContentType: "audio/wav", SampleRate: 16000}, "en-US")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if config.Encoding != speechpb.RecognitionConfig_LINEAR16 {
		t.Errorf("Expected LINEAR16, got %v", config.Encoding)
	}
	if config.SampleRateHertz != 16000 {
		t.Errorf("Expected sample rate 16000, got %d", config.SampleRateHertz)
	}
	if config.LanguageCode != "en-US" {
		t.Errorf("Expected fallback language en-US, got %s", config.LanguageCode)
	}

	config, err = newRecognitionConfig(repositories.AudioConfig{ContentType: "audio/flac", Language: "id-ID"}, "en-US")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if config.SampleRateHertz != 0 {
		t.Errorf("Expected unknown sample rate to be omitted, got %d", config.SampleRateHertz)
	}
	if config.LanguageCode != "id-ID" {
		t.Errorf("Expected request language id-ID, got %s", config.LanguageCode)
	}

	if _, err := newRecognitionConfig(repositories.AudioConfig{ContentType: "video/mp4"}, "en-US"); err == nil {
		t.Error("Expected error for unsupported content type")
	}
}
