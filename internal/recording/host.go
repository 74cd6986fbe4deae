package recording

import (
	"context"
	"time"

	"github.com/foxseedlab/voicecap/internal/capture"
)

type Constraints struct {
	DeviceID         string
	EchoCancellation bool
	NoiseSuppression bool
	AutoGainControl  bool
	ChannelCount     int
}

type Device struct {
	ID    string
	Label string
}

type Track interface {
	Stop()
}

type Stream interface {
	Tracks() []Track
}

// MediaDevices acquires microphone streams. Errors should carry the host's
// error name as a *MediaError so they can be classified.
type MediaDevices interface {
	GetUserMedia(ctx context.Context, c Constraints) (Stream, error)
	EnumerateAudioInputs(ctx context.Context) ([]Device, error)
}

// Recorder encodes a stream into chunks. Stop flushes the remaining data
// through OnChunk before the OnStop callback fires; it is a no-op on an
// inactive recorder.
type Recorder interface {
	Start() error
	Stop()
	Active() bool
	OnChunk(func([]byte))
	OnStop(func())
}

// RecorderFactory creates the recorder for one session. mimeType is empty
// when the platform default should be used.
type RecorderFactory func(stream Stream, mimeType string) (Recorder, error)

type CodecSupport interface {
	IsTypeSupported(mimeType string) bool
}

type StopTrigger int

const (
	TriggerStop StopTrigger = iota + 1
	TriggerTimeout
	TriggerHidden
	TriggerEscape
	TriggerEnded
)

func (t StopTrigger) String() string {
	switch t {
	case TriggerStop:
		return "stop"
	case TriggerTimeout:
		return "timeout"
	case TriggerHidden:
		return "hidden"
	case TriggerEscape:
		return "escape"
	case TriggerEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// CancelSource delivers out-of-band stop requests such as the page being
// hidden or the Escape key.
type CancelSource interface {
	Listen(func(StopTrigger)) (unsubscribe func())
}

type Timer interface {
	Stop() bool
}

type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// SystemClock is backed by time.AfterFunc.
var SystemClock Clock = systemClock{}

type Submitter interface {
	Submit(ctx context.Context, req capture.Request) (*capture.Response, error)
}
