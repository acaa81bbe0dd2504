package entities

// AudioFormat describes raw PCM fragments produced by a microphone
type AudioFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// Clip is a single finalized, encoded audio recording ready for transcription
type Clip struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Empty reports whether the clip carries no audio
func (c Clip) Empty() bool {
	return len(c.Data) == 0
}
