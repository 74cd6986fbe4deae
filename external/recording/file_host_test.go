package recording

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/foxseedlab/voicecap/internal/capture"
	"github.com/foxseedlab/voicecap/internal/recording"
)

func writeAudio(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x1a}, size), 0o600); err != nil {
		t.Fatalf("failed to write audio: %v", err)
	}
	return path
}

type captureSubmitter struct {
	got chan capture.Request
}

func (s *captureSubmitter) Submit(_ context.Context, req capture.Request) (*capture.Response, error) {
	s.got <- req
	return &capture.Response{OK: true, Mode: req.Mode, Timezone: req.Timezone}, nil
}

func TestFileHost_RecordsWholeFile(t *testing.T) {
	path := writeAudio(t, "note.webm", 40<<10)
	sub := &captureSubmitter{got: make(chan capture.Request, 1)}
	outcomes := make(chan recording.Outcome, 1)
	ctrl := recording.NewController(recording.Host{
		Devices:     FileDevices{Paths: []string{path}},
		NewRecorder: NewRecorderFactory(RecorderOptions{ChunkBytes: 4 << 10, ChunkInterval: time.Hour}),
		Codecs:      FileCodecs{Path: path},
		Submitter:   sub,
	}, recording.Options{UserID: "u1", Timezone: "UTC", OnResult: func(o recording.Outcome) { outcomes <- o }})

	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctrl.Stop()

	select {
	case req := <-sub.got:
		if req.Audio.Size() != 40<<10 || req.Audio.MimeType != "audio/webm" {
			t.Fatalf("unexpected audio: %d bytes %s", req.Audio.Size(), req.Audio.MimeType)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for upload")
	}
	if o := <-outcomes; o.Code() != "" {
		t.Fatalf("unexpected outcome: %+v", o)
	}
}

func TestFileHost_EndOfFileStopsRecording(t *testing.T) {
	path := writeAudio(t, "note.m4a", 6<<10)
	sub := &captureSubmitter{got: make(chan capture.Request, 1)}
	ctrl := recording.NewController(recording.Host{
		Devices:     FileDevices{Paths: []string{path}},
		NewRecorder: NewRecorderFactory(RecorderOptions{ChunkBytes: 4 << 10, ChunkInterval: time.Millisecond}),
		Codecs:      FileCodecs{Path: path},
		Submitter:   sub,
	}, recording.Options{UserID: "u1", Timezone: "UTC"})

	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	select {
	case req := <-sub.got:
		if req.Audio.Size() != 6<<10 || req.Audio.MimeType != "audio/mp4" {
			t.Fatalf("unexpected audio: %d bytes %s", req.Audio.Size(), req.Audio.MimeType)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for upload")
	}
}

func TestFileDevices_MissingFile(t *testing.T) {
	d := FileDevices{Paths: []string{filepath.Join(t.TempDir(), "absent.webm")}}
	_, err := d.GetUserMedia(context.Background(), recording.Constraints{})
	if got := recording.ClassifyMediaError(err); !errors.Is(got, capture.ErrNoMicFound) {
		t.Fatalf("expected NoMicFound, got %v", got)
	}
	if _, err := (FileDevices{}).GetUserMedia(context.Background(), recording.Constraints{}); err == nil {
		t.Fatal("expected error without inputs")
	}
}

func TestFileDevices_Enumerate(t *testing.T) {
	devices, err := FileDevices{Paths: []string{"/tmp/a/mic.webm", "/tmp/b/line.webm"}}.EnumerateAudioInputs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(devices) != 2 || devices[0].Label != "mic.webm" || devices[1].ID != "/tmp/b/line.webm" {
		t.Fatalf("unexpected devices: %+v", devices)
	}
}

func TestMimeTypeForPath(t *testing.T) {
	if got := MimeTypeForPath("a.webm"); got != "audio/webm" {
		t.Fatalf("unexpected mime: %q", got)
	}
	if got := MimeTypeForPath("a.mp4"); got != "audio/mp4" {
		t.Fatalf("unexpected mime: %q", got)
	}
	if got := MimeTypeForPath("a.unknownext"); got != "" {
		t.Fatalf("unexpected mime: %q", got)
	}
}

func TestTriggerFor(t *testing.T) {
	if triggerFor(os.Interrupt) != recording.TriggerEscape {
		t.Fatal("expected interrupt to map to escape")
	}
	if triggerFor(syscall.SIGTERM) != recording.TriggerHidden {
		t.Fatal("expected SIGTERM to map to hidden")
	}
}
