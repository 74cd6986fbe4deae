package transcriber

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/foxseedlab/voicecap/internal/capture"
)

func TestUploadFilename(t *testing.T) {
	cases := map[string]string{
		"audio/webm;codecs=opus": "capture.webm",
		"audio/mp4":              "capture.mp4",
		"video/mp4":              "capture.mp4",
		"audio/ogg":              "capture.ogg",
		"":                       "capture.webm",
	}
	for in, want := range cases {
		if got := uploadFilename(in); got != want {
			t.Fatalf("uploadFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSpeechLanguageCode_DefaultsToAuto(t *testing.T) {
	if got := speechLanguageCode(" "); got != "auto" {
		t.Fatalf("expected auto, got %q", got)
	}
	if got := speechLanguageCode("en-US"); got != "en-US" {
		t.Fatalf("expected en-US, got %q", got)
	}
}

func TestOpenAIAudioTranscriber_PostsMultipartAudio(t *testing.T) {
	var gotModel, gotLanguage, gotFilename string
	var gotAudio []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/audio/transcriptions") {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		reader, err := r.MultipartReader()
		if err != nil {
			t.Fatalf("failed to create multipart reader: %v", err)
		}
		for {
			part, err := reader.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatalf("failed to read part: %v", err)
			}
			body, _ := io.ReadAll(part)
			switch part.FormName() {
			case "model":
				gotModel = string(body)
			case "language":
				gotLanguage = string(body)
			case "file":
				gotFilename = part.FileName()
				gotAudio = body
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"  call mom tomorrow  "}`))
	}))
	defer server.Close()

	tr := NewOpenAIAudioTranscriber(OpenAIAudioConfig{APIKey: "sk-test", BaseURL: server.URL, Model: "whisper-1"})
	text, err := tr.Transcribe(context.Background(), capture.AudioBlob{Bytes: []byte("webm-bytes"), MimeType: "audio/webm"}, "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "  call mom tomorrow  " {
		t.Fatalf("expected raw provider text, got %q", text)
	}
	if gotModel != "whisper-1" || gotLanguage != "en" {
		t.Fatalf("unexpected form fields: model=%q language=%q", gotModel, gotLanguage)
	}
	if gotFilename != "capture.webm" || string(gotAudio) != "webm-bytes" {
		t.Fatalf("unexpected file part: %q %q", gotFilename, gotAudio)
	}
}
