package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/foxseedlab/voicecap/internal/capture"
)

type mockRunner struct {
	calls     int
	got       capture.Request
	requestID string
	resp      *capture.Response
	err       error
	panicMsg  string
}

func (m *mockRunner) Run(_ context.Context, requestID string, req capture.Request) (*capture.Response, error) {
	m.calls++
	m.got = req
	m.requestID = requestID
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	return m.resp, m.err
}

type uploadForm struct {
	fields    map[string]string
	audio     []byte
	audioType string
	omitAudio bool
}

func newUpload(t *testing.T, f uploadForm) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range f.fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	if !f.omitAudio {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="audio"; filename="capture.webm"`)
		h.Set("Content-Type", f.audioType)
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("failed to create part: %v", err)
		}
		_, _ = part.Write(f.audio)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, CapturePath, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func validUpload() uploadForm {
	return uploadForm{
		fields:    map[string]string{"userId": "u1", "mode": "autosave", "timezone": "America/New_York"},
		audio:     bytes.Repeat([]byte{0x1a}, 2048),
		audioType: "audio/webm;codecs=opus",
	}
}

func successResponse() *capture.Response {
	id := "n1"
	return &capture.Response{
		OK:            true,
		RawText:       "buy milk",
		Structured:    &capture.ProductivityResult{Note: "buy milk", Actions: []string{}, Tasks: []capture.TaskDraft{}},
		NoteID:        &id,
		Mode:          capture.ModeAutosave,
		Timezone:      "America/New_York",
		NowUTCISO:     "2024-03-11T02:30:00.000Z",
		TodayLocalYMD: "2024-03-10",
	}
}

func serve(t *testing.T, runner *mockRunner, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	router := NewRouter(NewCaptureHandler(runner, 64<<10, "UTC"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body %q: %v", rr.Body.String(), err)
	}
	return rr, body
}

func TestCapture_Success(t *testing.T) {
	runner := &mockRunner{resp: successResponse()}
	req := newUpload(t, validUpload())
	req.Header.Set(RequestIDHeader, "req-42")
	rr, body := serve(t, runner, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if body["ok"] != true || body["noteId"] != "n1" || body["todayLocalYmd"] != "2024-03-10" {
		t.Fatalf("unexpected body: %v", body)
	}
	if runner.got.UserID != "u1" || runner.got.Mode != capture.ModeAutosave || runner.got.Timezone != "America/New_York" {
		t.Fatalf("unexpected request: %+v", runner.got)
	}
	if runner.got.Audio.MimeType != "audio/webm" || runner.got.Audio.Size() != 2048 {
		t.Fatalf("unexpected audio: type=%s size=%d", runner.got.Audio.MimeType, runner.got.Audio.Size())
	}
	if runner.requestID != "req-42" || rr.Header().Get(RequestIDHeader) != "req-42" {
		t.Fatalf("expected request id propagated, got %q", runner.requestID)
	}
}

func TestCapture_DefaultsModeAndTimezone(t *testing.T) {
	runner := &mockRunner{resp: successResponse()}
	f := validUpload()
	f.fields = map[string]string{"userId": "u1"}
	f.audioType = "video/webm"
	rr, _ := serve(t, runner, newUpload(t, f))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if runner.got.Mode != capture.ModeReview || runner.got.Timezone != "UTC" {
		t.Fatalf("unexpected defaults: %+v", runner.got)
	}
	if rr.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected generated request id")
	}
}

func TestCapture_BadRequests(t *testing.T) {
	cases := map[string]func(*uploadForm){
		"missing user":     func(f *uploadForm) { delete(f.fields, "userId") },
		"missing audio":    func(f *uploadForm) { f.omitAudio = true },
		"empty audio":      func(f *uploadForm) { f.audio = nil },
		"bad mode":         func(f *uploadForm) { f.fields["mode"] = "diary" },
		"bad timezone":     func(f *uploadForm) { f.fields["timezone"] = "Mars/Olympus" },
		"process timezone": func(f *uploadForm) { f.fields["timezone"] = "Local" },
		"unsupported type": func(f *uploadForm) { f.audioType = "image/png" },
		"too large":        func(f *uploadForm) { f.audio = bytes.Repeat([]byte{1}, 128<<10) },
	}
	for name, mutate := range cases {
		runner := &mockRunner{resp: successResponse()}
		f := validUpload()
		mutate(&f)
		rr, body := serve(t, runner, newUpload(t, f))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, rr.Code)
		}
		if body["ok"] != false || body["error"] != "InvalidRequest" {
			t.Fatalf("%s: unexpected body: %v", name, body)
		}
		if runner.calls != 0 {
			t.Fatalf("%s: pipeline must not run", name)
		}
	}
}

func TestCapture_NonMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, CapturePath, strings.NewReader(`{"userId":"u1"}`))
	req.Header.Set("Content-Type", "application/json")
	rr, body := serve(t, &mockRunner{}, req)
	if rr.Code != http.StatusBadRequest || body["error"] != "InvalidRequest" {
		t.Fatalf("unexpected response: %d %v", rr.Code, body)
	}
}

func TestCapture_PipelineFailures(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{capture.NewError(capture.CodeTranscriptionEmpty, "no speech detected", nil), "TranscriptionEmpty", http.StatusInternalServerError},
		{capture.NewError(capture.CodeStructuringInvalidJSON, "", nil), "StructuringInvalidJSON", http.StatusInternalServerError},
		{capture.NewError(capture.CodeTimeout, "", nil), "Timeout", http.StatusInternalServerError},
		{capture.NewError(capture.CodeInvalidRequest, "invalid timezone", nil), "InvalidRequest", http.StatusBadRequest},
		{errors.New("unexpected"), "Internal", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr, body := serve(t, &mockRunner{err: tc.err}, newUpload(t, validUpload()))
		if rr.Code != tc.status || body["error"] != tc.code || body["ok"] != false {
			t.Fatalf("%s: unexpected response: %d %v", tc.code, rr.Code, body)
		}
		if _, ok := body["structured"]; ok {
			t.Fatalf("%s: failure must not carry structured data", tc.code)
		}
	}
}

func TestCapture_PanicRecovered(t *testing.T) {
	rr, body := serve(t, &mockRunner{panicMsg: "boom"}, newUpload(t, validUpload()))
	if rr.Code != http.StatusInternalServerError || body["error"] != "Internal" {
		t.Fatalf("unexpected response: %d %v", rr.Code, body)
	}
}

func TestHealthz(t *testing.T) {
	rr, body := serve(t, &mockRunner{}, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK || body["ok"] != true {
		t.Fatalf("unexpected response: %d %v", rr.Code, body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := NewRouter(NewCaptureHandler(&mockRunner{}, 0, ""))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestAudioMimeType(t *testing.T) {
	cases := map[string]string{
		"audio/webm;codecs=opus":   "audio/webm",
		"audio/mp4":                "audio/mp4",
		"video/mp4":                "video/mp4",
		"application/octet-stream": "application/octet-stream",
		"":                         "application/octet-stream",
	}
	for in, want := range cases {
		got, ok := audioMimeType(in)
		if !ok || got != want {
			t.Fatalf("audioMimeType(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	for _, in := range []string{"image/png", "text/plain", "video/quicktime"} {
		if _, ok := audioMimeType(in); ok {
			t.Fatalf("audioMimeType(%q) expected rejection", in)
		}
	}
}
