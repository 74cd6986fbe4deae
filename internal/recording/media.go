package recording

import (
	"errors"
	"fmt"
	"strings"

	"github.com/foxseedlab/voicecap/internal/capture"
)

const AutoDevice = "auto"

var preferredCodecs = []string{"audio/webm", "audio/mp4"}

var labelHints = []string{"built-in", "microphone", "mic", "phone"}

// MediaError is a host failure identified by its error name, e.g.
// "NotAllowedError".
type MediaError struct {
	Name    string
	Message string
}

func (e *MediaError) Error() string {
	if e.Message == "" {
		return e.Name
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// ClassifyMediaError maps an acquisition failure onto the capture taxonomy.
func ClassifyMediaError(err error) *capture.Error {
	var me *MediaError
	if !errors.As(err, &me) {
		return capture.NewError(capture.CodeUnknownMicError, err.Error(), err)
	}
	switch me.Name {
	case "NotAllowedError", "SecurityError", "PermissionDeniedError":
		return capture.NewError(capture.CodePermissionBlocked, me.Name, err)
	case "NotFoundError", "DevicesNotFoundError", "OverconstrainedError":
		return capture.NewError(capture.CodeNoMicFound, me.Name, err)
	case "NotReadableError", "TrackStartError", "AbortError":
		return capture.NewError(capture.CodeMicInUse, me.Name, err)
	default:
		return capture.NewError(capture.CodeUnknownMicError, me.Name, err)
	}
}

// ChooseDevice picks the first input whose label looks like a built-in or
// dedicated microphone, falling back to the first input.
func ChooseDevice(devices []Device) (Device, bool) {
	if len(devices) == 0 {
		return Device{}, false
	}
	for _, d := range devices {
		label := strings.ToLower(d.Label)
		for _, hint := range labelHints {
			if strings.Contains(label, hint) {
				return d, true
			}
		}
	}
	return devices[0], true
}

// NegotiateMimeType returns the first supported preferred container, or ""
// for the platform default.
func NegotiateMimeType(codecs CodecSupport) string {
	if codecs == nil {
		return ""
	}
	for _, m := range preferredCodecs {
		if codecs.IsTypeSupported(m) {
			return m
		}
	}
	return ""
}

func constraintsFor(deviceID string) Constraints {
	c := Constraints{
		EchoCancellation: true,
		NoiseSuppression: true,
		AutoGainControl:  true,
		ChannelCount:     1,
	}
	if deviceID != "" && deviceID != AutoDevice {
		c.DeviceID = deviceID
	}
	return c
}
