package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/foxseedlab/voicecap/internal/capture"
	"github.com/foxseedlab/voicecap/internal/config"
	"github.com/foxseedlab/voicecap/internal/transcriber"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type OpenAIAudioConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type OpenAIAudioTranscriber struct {
	client openai.Client
	model  string
}

func NewOpenAIAudioTranscriber(cfg OpenAIAudioConfig) transcriber.Transcriber {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIAudioTranscriber{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

func (t *OpenAIAudioTranscriber) Transcribe(ctx context.Context, audio capture.AudioBlob, language string) (string, error) {
	slog.Debug("starting openai transcription", "model", t.model, "language", language, "mime_type", audio.MimeType, "audio_bytes", audio.Size())

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(audio.Bytes), uploadFilename(audio.MimeType), baseMimeType(audio.MimeType)),
		Model: openai.AudioModel(t.model),
	}
	if lang := strings.TrimSpace(language); lang != "" && lang != config.AutoDetectLanguage {
		params.Language = openai.String(lang)
	}
	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai transcription: %w", err)
	}
	return resp.Text, nil
}

// uploadFilename picks an extension the provider uses to sniff the container.
func uploadFilename(mimeType string) string {
	switch base := baseMimeType(mimeType); {
	case strings.HasSuffix(base, "/mp4"), base == "audio/m4a", base == "audio/x-m4a":
		return "capture.mp4"
	case strings.HasSuffix(base, "/ogg"):
		return "capture.ogg"
	case base == "audio/wav", base == "audio/x-wav":
		return "capture.wav"
	case base == "audio/mpeg":
		return "capture.mp3"
	default:
		return "capture.webm"
	}
}

func baseMimeType(mimeType string) string {
	base, _, _ := strings.Cut(mimeType, ";")
	base = strings.ToLower(strings.TrimSpace(base))
	if base == "" {
		return "audio/webm"
	}
	return base
}
