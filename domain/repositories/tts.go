package repositories

import "context"

// TextToSpeech abstracts speech synthesis services
type TextToSpeech interface {
	// SynthesizeAudio converts text to a complete audio payload
	SynthesizeAudio(ctx context.Context, text string) (SynthesizedAudio, error)
}

// SynthesizedAudio is an encoded audio payload and its MIME type
type SynthesizedAudio struct {
	Data        []byte
	ContentType string
}
