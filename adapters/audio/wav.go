package audio

import (
	"bytes"
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/satriahrh/dijiang/domain/entities"
	"github.com/satriahrh/dijiang/domain/repositories"
)

const (
	wavContentType = "audio/wav"
	wavFilename    = "audio.wav"
	wavPCMFormat   = 1
)

// WAVEncoder joins PCM16 fragments into a single WAV clip
type WAVEncoder struct{}

var _ repositories.ClipEncoder = WAVEncoder{}

// NewWAVEncoder creates a new WAV encoder
func NewWAVEncoder() WAVEncoder {
	return WAVEncoder{}
}

// Encode writes the fragments in capture order. No fragments yield a clip
// with no data.
func (WAVEncoder) Encode(fragments [][]byte, format entities.AudioFormat) (entities.Clip, error) {
	clip := entities.Clip{ContentType: wavContentType, Filename: wavFilename}
	if len(fragments) == 0 {
		return clip, nil
	}

	channels := format.Channels
	if channels == 0 {
		channels = 1
	}
	bitDepth := format.BitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}
	if bitDepth != 16 {
		return entities.Clip{}, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}

	// the wav encoder seeks back to patch the header, so it needs a file
	file, err := os.CreateTemp("", "dijiang-*.wav")
	if err != nil {
		return entities.Clip{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(file.Name())
	defer file.Close()

	encoder := wav.NewEncoder(file, format.SampleRate, bitDepth, channels, wavPCMFormat)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  format.SampleRate,
		},
		Data:           decodePCM16(bytes.Join(fragments, nil)),
		SourceBitDepth: bitDepth,
	}
	if err := encoder.Write(buf); err != nil {
		encoder.Close()
		return entities.Clip{}, fmt.Errorf("failed to write samples: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return entities.Clip{}, fmt.Errorf("failed to finalize wav: %w", err)
	}

	data, err := os.ReadFile(file.Name())
	if err != nil {
		return entities.Clip{}, fmt.Errorf("failed to read wav: %w", err)
	}
	clip.Data = data
	return clip, nil
}
