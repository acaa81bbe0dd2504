package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/satriahrh/dijiang/domain"
	"github.com/satriahrh/dijiang/domain/entities"
	"github.com/satriahrh/dijiang/domain/repositories"
)

// ErrorNotice is the assistant turn appended when a chat request fails
const ErrorNotice = "Sorry, I encountered an error. Please try again."

var (
	// ErrEmptyInput is returned when submitting a blank input buffer
	ErrEmptyInput = errors.New("input is empty")
	// ErrBusy is returned while a chat request or a transcription is pending
	ErrBusy = errors.New("session is busy")
	// ErrNotRecording is returned when stopping without an active recording
	ErrNotRecording = errors.New("not recording")
	// ErrNotSpeakable is returned when requesting speech for a non assistant turn
	ErrNotSpeakable = errors.New("message cannot be spoken")
	// ErrSessionClosed is returned after Close
	ErrSessionClosed = errors.New("session closed")
)

// State is an immutable snapshot of the session
type State struct {
	Timeline        []entities.Message
	Input           string
	Recording       bool
	Transcribing    bool
	RequestInFlight bool
}

// Busy reports whether submission and recording controls are disabled
func (s State) Busy() bool {
	return s.Transcribing || s.RequestInFlight
}

// SessionControllerConfig holds configuration for the session controller
type SessionControllerConfig struct {
	SystemPrompt string
	ChatEndpoint string
}

// SessionController owns the timeline and coordinates recording,
// transcription, chat submission and playback for one session.
type SessionController struct {
	gateway       repositories.Gateway
	recorder      *Recorder
	transcription *TranscriptionPipeline
	playback      *PlaybackPipeline
	chatEndpoint  string
	logger        *zap.Logger

	// background work (finalize+transcribe, playback) runs on ctx
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu              sync.Mutex
	timeline        *entities.Timeline
	input           string
	recording       bool
	transcribing    bool
	requestInFlight bool
	// closing rejects new work once Close has begun; closed is set after
	// every subscription has been closed
	closing         bool
	closed          bool
	subscribers     map[int]chan State
	nextSubscriber  int
}

// NewSessionController creates a session holding only the system turn
func NewSessionController(
	config SessionControllerConfig,
	gateway repositories.Gateway,
	recorder *Recorder,
	transcription *TranscriptionPipeline,
	playback *PlaybackPipeline,
	logger *zap.Logger,
) *SessionController {
	ctx, cancel := context.WithCancel(context.Background())
	return &SessionController{
		gateway:       gateway,
		recorder:      recorder,
		transcription: transcription,
		playback:      playback,
		chatEndpoint:  config.ChatEndpoint,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
		timeline:      entities.NewTimeline(config.SystemPrompt),
		subscribers:   make(map[int]chan State),
	}
}

// Snapshot returns the current state
func (c *SessionController) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe returns a channel receiving the latest state after every change.
// Slow readers only observe the most recent state.
func (c *SessionController) Subscribe() (<-chan State, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan State, 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}

	id := c.nextSubscriber
	c.nextSubscriber++
	c.subscribers[id] = ch
	ch <- c.snapshotLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subscribers[id]; ok {
				delete(c.subscribers, id)
				close(sub)
			}
		})
	}
}

// SetInput replaces the input buffer. Editing is disabled while busy.
func (c *SessionController) SetInput(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busyLocked() {
		return ErrBusy
	}
	if c.input == text {
		return nil
	}
	c.input = text
	c.publishLocked()
	return nil
}

// Submit sends the input buffer as a user turn and waits for the reply.
// It returns the appended assistant turn, which is the error notice when
// the chat request failed. Blank input or a pending request rejects the
// submission without any state change.
func (c *SessionController) Submit(ctx context.Context) (entities.Message, error) {
	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		return entities.Message{}, ErrSessionClosed
	}
	text := strings.TrimSpace(c.input)
	if text == "" {
		c.mu.Unlock()
		return entities.Message{}, ErrEmptyInput
	}
	if c.busyLocked() {
		c.mu.Unlock()
		return entities.Message{}, ErrBusy
	}

	user := entities.NewUserMessage(text)
	if err := c.timeline.Append(user); err != nil {
		c.mu.Unlock()
		return entities.Message{}, err
	}
	c.input = ""
	c.requestInFlight = true
	history := c.timeline.ChatHistory()
	c.publishLocked()
	c.mu.Unlock()

	c.logger.Info("Submitting chat request",
		zap.String("messageID", user.ID),
		zap.Int("historyLength", len(history)))

	reply := c.requestCompletion(ctx, history)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.timeline.Append(reply); err != nil {
		// ids are generated per message, so this only guards the invariant
		c.logger.Error("Failed to append reply", zap.Error(err))
	}
	c.requestInFlight = false
	c.publishLocked()
	return reply, nil
}

func (c *SessionController) requestCompletion(ctx context.Context, history []entities.ChatTurn) entities.Message {
	request := domain.ChatRequest{Messages: make([]domain.ChatMessage, 0, len(history))}
	for _, turn := range history {
		request.Messages = append(request.Messages, domain.ChatMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}

	resp, err := c.gateway.PostJSON(ctx, c.chatEndpoint, request)
	if err != nil {
		c.logger.Error("Error getting completion", zap.Error(err))
		return entities.NewErrorMessage(ErrorNotice)
	}

	var out domain.ChatResponse
	if err := resp.DecodeJSON(&out); err != nil {
		c.logger.Error("Error getting completion", zap.Error(err))
		return entities.NewErrorMessage(ErrorNotice)
	}
	if strings.TrimSpace(out.Content) == "" {
		c.logger.Error("Error getting completion", zap.Error(&domain.Error{
			Kind:       domain.ErrorKindMalformedResponse,
			StatusCode: resp.StatusCode,
			Message:    "empty completion content",
		}))
		return entities.NewErrorMessage(ErrorNotice)
	}

	return entities.NewAssistantMessage(out.Content)
}

// StartRecording acquires the microphone. Failures are logged and returned;
// recording state is not entered on failure.
func (c *SessionController) StartRecording(ctx context.Context) error {
	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		return ErrSessionClosed
	}
	if c.recording {
		c.mu.Unlock()
		return ErrAlreadyRecording
	}
	if c.busyLocked() {
		c.mu.Unlock()
		return ErrBusy
	}
	// a pending open counts as background work so Close waits for it
	c.wg.Add(1)
	c.mu.Unlock()
	defer c.wg.Done()

	if err := c.recorder.Start(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		if _, _, err := c.recorder.Stop(); err != nil {
			c.logger.Warn("Failed to release microphone after close", zap.Error(err))
		}
		return ErrSessionClosed
	}
	defer c.mu.Unlock()
	c.recording = true
	c.publishLocked()
	return nil
}

// StopRecording ends the recording. Finalizing the clip and transcribing it
// happen in the background; the input buffer is overwritten with the text
// on success.
func (c *SessionController) StopRecording() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopRecordingLocked()
}

func (c *SessionController) stopRecordingLocked() error {
	if !c.recording {
		return ErrNotRecording
	}
	c.recording = false
	c.transcribing = true
	c.publishLocked()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.finishRecording(c.ctx)
	}()
	return nil
}

func (c *SessionController) finishRecording(ctx context.Context) {
	defer func() {
		c.mu.Lock()
		c.transcribing = false
		c.publishLocked()
		c.mu.Unlock()
	}()

	clip, ok, err := c.recorder.Stop()
	if err != nil {
		c.logger.Error("Error finalizing recording", zap.Error(err))
		c.transcription.Report(err)
		return
	}
	if !ok {
		return
	}

	text, err := c.transcription.Transcribe(ctx, clip)
	if err != nil {
		return
	}

	c.mu.Lock()
	c.input = text
	c.mu.Unlock()
}

// Speak plays the assistant turn with the given id. Playback runs in the
// background and is not serialized with other actions.
func (c *SessionController) Speak(messageID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closing {
		return ErrSessionClosed
	}
	message, ok := c.timeline.Find(messageID)
	if !ok || message.Role != entities.RoleAssistant {
		return ErrNotSpeakable
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		_ = c.playback.Speak(c.ctx, message.Content)
	}()
	return nil
}

// Wait blocks until background transcriptions and playback requests finish
func (c *SessionController) Wait() {
	c.wg.Wait()
}

// Close rejects new work, finalizes an active recording, waits for
// background work until ctx is done, then cancels what is left and closes
// every subscription.
func (c *SessionController) Close(ctx context.Context) {
	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		return
	}
	c.closing = true
	if err := c.stopRecordingLocked(); err != nil && !errors.Is(err, ErrNotRecording) {
		c.logger.Warn("Failed to stop recording on close", zap.Error(err))
	}
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		c.logger.Warn("Abandoning background work on close", zap.Error(ctx.Err()))
	}
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for id, ch := range c.subscribers {
		delete(c.subscribers, id)
		close(ch)
	}
}

func (c *SessionController) busyLocked() bool {
	return c.transcribing || c.requestInFlight
}

func (c *SessionController) snapshotLocked() State {
	return State{
		Timeline:        c.timeline.Messages(),
		Input:           c.input,
		Recording:       c.recording,
		Transcribing:    c.transcribing,
		RequestInFlight: c.requestInFlight,
	}
}

func (c *SessionController) publishLocked() {
	state := c.snapshotLocked()
	for _, ch := range c.subscribers {
		select {
		case ch <- state:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- state:
			default:
			}
		}
	}
}
