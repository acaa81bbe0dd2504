package audio

import (
	"bytes"
	"testing"

	"github.com/go-audio/wav"

	"github.com/satriahrh/dijiang/domain/entities"
)

func TestWAVEncoder_Encode(t *testing.T) {
	format := entities.AudioFormat{SampleRate: 16000, Channels: 1, BitDepth: 16}
	fragments := [][]byte{
		encodePCM16([]int16{0, 100, -100}),
		encodePCM16([]int16{32767, -32768}),
	}

	clip, err := NewWAVEncoder().Encode(fragments, format)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}
	if clip.ContentType != "audio/wav" || clip.Filename != "audio.wav" {
		t.Errorf("Unexpected clip metadata: %s %s", clip.ContentType, clip.Filename)
	}

	decoder := wav.NewDecoder(bytes.NewReader(clip.Data))
	if !decoder.IsValidFile() {
		t.Fatal("Expected a valid wav file")
	}
	if decoder.SampleRate != 16000 {
		t.Errorf("Expected sample rate 16000, got %d", decoder.SampleRate)
	}
	if decoder.NumChans != 1 {
		t.Errorf("Expected 1 channel, got %d", decoder.NumChans)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		t.Fatalf("Failed to decode pcm: %v", err)
	}
	expected := []int{0, 100, -100, 32767, -32768}
	if len(buf.Data) != len(expected) {
		t.Fatalf("Expected %d samples, got %d", len(expected), len(buf.Data))
	}
	for i, sample := range expected {
		if buf.Data[i] != sample {
			t.Errorf("Expected sample %d at %d, got %d", sample, i, buf.Data[i])
		}
	}
}

func TestWAVEncoder_NoFragments(t *testing.T) {
	clip, err := NewWAVEncoder().Encode(nil, entities.AudioFormat{SampleRate: 16000, Channels: 1, BitDepth: 16})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !clip.Empty() {
		t.Errorf("Expected empty clip, got %d bytes", len(clip.Data))
	}
	if clip.ContentType != "audio/wav" {
		t.Errorf("Expected audio/wav, got %s", clip.ContentType)
	}
}

func TestPCM16RoundTrip(t *testing.T) {
	samples := []int16{1, -1, 256, -256}
	decoded := decodePCM16(encodePCM16(samples))
	for i, s := range samples {
		if decoded[i] != int(s) {
			t.Errorf("Expected %d, got %d", s, decoded[i])
		}
	}
}

func TestDecodeUnsupportedFormat(t *testing.T) {
	if _, _, err := decode([]byte{1, 2}, "audio/ogg"); err == nil {
		t.Error("Expected error for unsupported format")
	}
}
