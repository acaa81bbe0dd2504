package domain

// ChatMessage is one {role, content} pair as sent over the wire
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the payload of the chat endpoint
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// ChatResponse is the success body of the chat endpoint
type ChatResponse struct {
	Content string `json:"content"`
}

// TranscriptionResponse is the success body of the transcription endpoint
type TranscriptionResponse struct {
	Text string `json:"text"`
}

// SpeechRequest is the payload of the speech endpoint
type SpeechRequest struct {
	Text string `json:"text"`
}

// ErrorResponse is the body returned by every endpoint on failure.
// Error carries the human readable message surfaced to the user.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
