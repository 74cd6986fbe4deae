// Package transport prepares a finished recording for upload.
package transport

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/foxseedlab/voicecap/internal/capture"
	"github.com/foxseedlab/voicecap/internal/temporal"
)

var (
	ErrMissingUserID = errors.New("userId is required")
	ErrMissingAudio  = errors.New("audio is empty")
)

// Prepare validates req without touching the network and fills the mode
// and timezone defaults. Validation failures are InvalidRequest errors
// wrapping ErrMissingUserID or ErrMissingAudio.
func Prepare(req capture.Request, hostTimezone func() string) (capture.Request, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		return req, capture.NewError(capture.CodeInvalidRequest, "", ErrMissingUserID)
	}
	if req.Audio.Size() == 0 {
		return req, capture.NewError(capture.CodeInvalidRequest, "", ErrMissingAudio)
	}
	if req.Mode == 0 {
		req.Mode = capture.DefaultMode
	}
	if strings.TrimSpace(req.Timezone) == "" {
		req.Timezone = hostTimezone()
	}
	return req, nil
}

// HostTimezone returns the IANA name of the machine's zone, or UTC when it
// cannot be determined.
func HostTimezone() string {
	if tz := strings.TrimPrefix(os.Getenv("TZ"), ":"); tz != "" {
		if _, err := temporal.LoadLocation(tz); err == nil {
			return tz
		}
	}
	if name := time.Local.String(); name != "" && name != "Local" {
		return name
	}
	return capture.DefaultTimezone
}

// UploadFilename names the audio part after its container.
func UploadFilename(mimeType string) string {
	base, _, _ := strings.Cut(strings.ToLower(mimeType), ";")
	switch strings.TrimSpace(base) {
	case "audio/webm", "video/webm":
		return "capture.webm"
	case "audio/mp4", "video/mp4", "audio/m4a", "audio/x-m4a":
		return "capture.m4a"
	case "audio/ogg":
		return "capture.ogg"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return "capture.wav"
	case "audio/mpeg", "audio/mp3":
		return "capture.mp3"
	default:
		return "capture.bin"
	}
}
