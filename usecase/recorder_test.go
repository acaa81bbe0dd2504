package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/dijiang/domain"
)

func TestRecorder_StartStop(t *testing.T) {
	stream := newFakeStream([]byte("ab"), []byte("cd"))
	encoder := &fakeEncoder{}
	recorder := NewRecorder(&fakeMicrophone{streams: []*fakeStream{stream}}, encoder, zaptest.NewLogger(t))

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start: %v", err)
	}
	clip, ok, err := recorder.Stop()
	if err != nil || !ok {
		t.Fatalf("Expected clip, got ok=%v err=%v", ok, err)
	}
	if string(clip.Data) != "abcd" {
		t.Errorf("Expected fragments in order, got %q", clip.Data)
	}
	if encoder.fragments != 2 {
		t.Errorf("Expected 2 fragments, got %d", encoder.fragments)
	}
	if _, ok, _ := recorder.Stop(); ok {
		t.Error("Expected recorder to be inactive")
	}
	if !stream.isReleased() {
		t.Error("Expected microphone released")
	}
}

func TestRecorder_StartTwice(t *testing.T) {
	recorder := NewRecorder(&fakeMicrophone{streams: []*fakeStream{newFakeStream()}}, &fakeEncoder{}, zaptest.NewLogger(t))

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start: %v", err)
	}
	if err := recorder.Start(context.Background()); !errors.Is(err, ErrAlreadyRecording) {
		t.Errorf("Expected ErrAlreadyRecording, got %v", err)
	}
	_, _, _ = recorder.Stop()
}

func TestRecorder_StopWithoutStart(t *testing.T) {
	recorder := NewRecorder(&fakeMicrophone{}, &fakeEncoder{}, zaptest.NewLogger(t))

	_, ok, err := recorder.Stop()
	if ok || err != nil {
		t.Errorf("Expected no clip and no error, got ok=%v err=%v", ok, err)
	}
}

func TestRecorder_OpenFailure(t *testing.T) {
	microphone := &fakeMicrophone{err: domain.NewError(domain.ErrorKindPermissionDenied, "", errors.New("no device"))}
	recorder := NewRecorder(microphone, &fakeEncoder{}, zaptest.NewLogger(t))

	err := recorder.Start(context.Background())
	if !domain.IsKind(err, domain.ErrorKindPermissionDenied) {
		t.Errorf("Expected permission denied, got %v", err)
	}
	if _, ok, _ := recorder.Stop(); ok {
		t.Error("Expected no session after failure")
	}
}

func TestRecorder_EncodeFailureReleasesDevice(t *testing.T) {
	stream := newFakeStream([]byte("ab"))
	recorder := NewRecorder(&fakeMicrophone{streams: []*fakeStream{stream}}, &fakeEncoder{err: errors.New("boom")}, zaptest.NewLogger(t))

	_ = recorder.Start(context.Background())
	_, ok, err := recorder.Stop()
	if !ok || err == nil {
		t.Errorf("Expected encode error, got ok=%v err=%v", ok, err)
	}
	if !stream.isReleased() {
		t.Error("Expected microphone released")
	}
	if _, ok, _ := recorder.Stop(); ok {
		t.Error("Expected session cleared")
	}
}
