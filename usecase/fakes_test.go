package usecase

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"github.com/satriahrh/dijiang/domain"
	"github.com/satriahrh/dijiang/domain/entities"
	"github.com/satriahrh/dijiang/domain/repositories"
)

type jsonCall struct {
	endpoint string
	payload  any
}

// fakeGateway answers requests with the configured handlers
type fakeGateway struct {
	mu             sync.Mutex
	jsonCalls      []jsonCall
	multipartCalls []repositories.Upload
	onJSON         func(endpoint string, payload any) (*domain.ServiceResponse, error)
	onMultipart    func(endpoint string, file repositories.Upload) (*domain.ServiceResponse, error)
}

func (g *fakeGateway) PostJSON(ctx context.Context, endpoint string, payload any) (*domain.ServiceResponse, error) {
	g.mu.Lock()
	g.jsonCalls = append(g.jsonCalls, jsonCall{endpoint: endpoint, payload: payload})
	handler := g.onJSON
	g.mu.Unlock()
	if handler == nil {
		return nil, &domain.Error{Kind: domain.ErrorKindTransport, Err: errors.New("no handler")}
	}
	return handler(endpoint, payload)
}

func (g *fakeGateway) PostMultipart(ctx context.Context, endpoint string, file repositories.Upload) (*domain.ServiceResponse, error) {
	g.mu.Lock()
	g.multipartCalls = append(g.multipartCalls, file)
	handler := g.onMultipart
	g.mu.Unlock()
	if handler == nil {
		return nil, &domain.Error{Kind: domain.ErrorKindTransport, Err: errors.New("no handler")}
	}
	return handler(endpoint, file)
}

func (g *fakeGateway) jsonCallCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.jsonCalls)
}

func (g *fakeGateway) multipartCallCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.multipartCalls)
}

func jsonResponse(body string) *domain.ServiceResponse {
	return &domain.ServiceResponse{StatusCode: 200, ContentType: "application/json", Body: []byte(body)}
}

// fakeStream delivers the queued fragments, then waits for Stop
type fakeStream struct {
	fragments chan []byte
	stopOnce  sync.Once
	mu        sync.Mutex
	released  bool
}

func newFakeStream(fragments ...[]byte) *fakeStream {
	ch := make(chan []byte, len(fragments))
	for _, f := range fragments {
		ch <- f
	}
	return &fakeStream{fragments: ch}
}

func (s *fakeStream) Format() entities.AudioFormat {
	return entities.AudioFormat{SampleRate: 16000, Channels: 1, BitDepth: 16}
}

func (s *fakeStream) Fragments() <-chan []byte { return s.fragments }

func (s *fakeStream) Stop() error {
	s.stopOnce.Do(func() { close(s.fragments) })
	return nil
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = true
	return nil
}

func (s *fakeStream) isReleased() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

type fakeMicrophone struct {
	streams []*fakeStream
	err     error
	opened  int

	// when gate is set, Open signals entered and blocks until gate closes
	entered chan struct{}
	gate    chan struct{}
}

func (m *fakeMicrophone) Open(ctx context.Context) (repositories.AudioStream, error) {
	if m.gate != nil {
		close(m.entered)
		<-m.gate
	}
	if m.err != nil {
		return nil, m.err
	}
	stream := m.streams[m.opened]
	m.opened++
	return stream, nil
}

// fakeEncoder concatenates fragments
type fakeEncoder struct {
	err       error
	fragments int
}

func (e *fakeEncoder) Encode(fragments [][]byte, format entities.AudioFormat) (entities.Clip, error) {
	e.fragments = len(fragments)
	if e.err != nil {
		return entities.Clip{}, e.err
	}
	return entities.Clip{
		Data:        bytes.Join(fragments, nil),
		ContentType: "audio/wav",
		Filename:    "audio.wav",
	}, nil
}

type fakePlayer struct {
	mu    sync.Mutex
	plays [][]byte
	err   error
}

func (p *fakePlayer) Play(ctx context.Context, audio []byte, contentType string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plays = append(p.plays, audio)
	return p.err
}

func (p *fakePlayer) playCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.plays)
}

type fakeNotifier struct {
	mu     sync.Mutex
	alerts []string
}

func (n *fakeNotifier) Alert(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, message)
}

func (n *fakeNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.alerts...)
}
