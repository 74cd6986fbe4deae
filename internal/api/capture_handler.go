package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/foxseedlab/voicecap/internal/capture"
	"github.com/foxseedlab/voicecap/internal/metrics"
	"github.com/foxseedlab/voicecap/internal/temporal"
)

// multipartMemory is how much of the upload ParseMultipartForm keeps in
// memory before spilling to temp files.
const multipartMemory = 8 << 20

type Runner interface {
	Run(ctx context.Context, requestID string, req capture.Request) (*capture.Response, error)
}

type CaptureHandler struct {
	runner          Runner
	maxUploadBytes  int64
	defaultTimezone string
}

func NewCaptureHandler(runner Runner, maxUploadBytes int64, defaultTimezone string) *CaptureHandler {
	if defaultTimezone == "" {
		defaultTimezone = capture.DefaultTimezone
	}
	return &CaptureHandler{runner: runner, maxUploadBytes: maxUploadBytes, defaultTimezone: defaultTimezone}
}

func (h *CaptureHandler) Capture(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	req, reason, err := h.parse(w, r)
	if err != nil {
		metrics.RejectRequest(reason)
		slog.Warn("rejected capture request", "request_id", reqID, "reason", reason, "error", err)
		writeFailure(w, capture.CodeInvalidRequest, err.Error())
		return
	}
	metrics.ObserveUpload(req.Audio.Size())

	resp, err := h.runner.Run(r.Context(), reqID, req)
	if err != nil {
		code := capture.CodeOf(err)
		slog.Error("capture failed", "request_id", reqID, "user_id", req.UserID, "code", string(code), "error", err)
		writeFailure(w, code, failureDetail(err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CaptureHandler) parse(w http.ResponseWriter, r *http.Request) (capture.Request, string, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		return capture.Request{}, "not_multipart", errors.New("expected multipart/form-data body")
	}
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return capture.Request{}, "too_large", fmt.Errorf("upload exceeds %d bytes", tooLarge.Limit)
		}
		return capture.Request{}, "bad_multipart", fmt.Errorf("malformed multipart body: %w", err)
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	userID := strings.TrimSpace(r.FormValue("userId"))
	if userID == "" {
		return capture.Request{}, "missing_user", errors.New("userId is required")
	}

	mode, err := capture.ParseMode(r.FormValue("mode"))
	if err != nil {
		return capture.Request{}, "bad_mode", err
	}

	tz := strings.TrimSpace(r.FormValue("timezone"))
	if tz == "" {
		tz = h.defaultTimezone
	}
	if _, err := temporal.LoadLocation(tz); err != nil {
		return capture.Request{}, "bad_timezone", fmt.Errorf("unknown timezone %q", tz)
	}

	audio, reason, err := readAudio(r)
	if err != nil {
		return capture.Request{}, reason, err
	}

	return capture.Request{Audio: audio, UserID: userID, Mode: mode, Timezone: tz}, "", nil
}

func readAudio(r *http.Request) (capture.AudioBlob, string, error) {
	file, header, err := r.FormFile("audio")
	if err != nil {
		return capture.AudioBlob{}, "missing_audio", errors.New("audio file is required")
	}
	defer func() {
		_ = file.Close()
	}()

	mimeType, ok := audioMimeType(header.Header.Get("Content-Type"))
	if !ok {
		return capture.AudioBlob{}, "bad_audio_type", fmt.Errorf("unsupported audio type %q", header.Header.Get("Content-Type"))
	}
	b, err := io.ReadAll(file)
	if err != nil {
		return capture.AudioBlob{}, "bad_multipart", fmt.Errorf("failed to read audio: %w", err)
	}
	if len(b) == 0 {
		return capture.AudioBlob{}, "missing_audio", errors.New("audio file is empty")
	}
	return capture.AudioBlob{Bytes: b, MimeType: mimeType}, "", nil
}

// audioMimeType accepts audio/*, the WebM and MP4 video containers some
// recorders label their output with, and untyped binary parts.
func audioMimeType(contentType string) (string, bool) {
	if strings.TrimSpace(contentType) == "" {
		return "application/octet-stream", true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	switch {
	case strings.HasPrefix(mediaType, "audio/"):
		return mediaType, true
	case mediaType == "video/webm", mediaType == "video/mp4", mediaType == "application/octet-stream":
		return mediaType, true
	default:
		return "", false
	}
}

func failureDetail(err error) string {
	var ce *capture.Error
	if errors.As(err, &ce) {
		return ce.Detail
	}
	return ""
}
