package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/voicecap/internal/config"
)

type envConfig struct {
	Env                        string        `env:"ENV" envDefault:"production"`
	HTTPAddr                   string        `env:"HTTP_ADDR" envDefault:":8080"`
	PipelineTimeout            time.Duration `env:"PIPELINE_TIMEOUT" envDefault:"60s"`
	MaxUploadBytes             int64         `env:"MAX_UPLOAD_BYTES" envDefault:"26214400"`
	DefaultTimezone            string        `env:"DEFAULT_TIMEZONE" envDefault:"UTC"`
	DefaultTranscribeLanguage  string        `env:"DEFAULT_TRANSCRIBE_LANGUAGE" envDefault:"auto"`
	TranscriberProvider        string        `env:"TRANSCRIBER_PROVIDER" envDefault:"openai"`
	DatabaseDriver             string        `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DatabaseURL                string        `env:"DATABASE_URL,required"`
	GoogleCloudProjectID       string        `env:"GOOGLE_CLOUD_PROJECT_ID"`
	GoogleCloudCredentialsJSON string        `env:"GOOGLE_CLOUD_CREDENTIALS_JSON"`
	GoogleCloudSpeechLocation  string        `env:"GOOGLE_CLOUD_SPEECH_LOCATION" envDefault:"us"`
	GoogleCloudSpeechModel     string        `env:"GOOGLE_CLOUD_SPEECH_MODEL" envDefault:"chirp_3"`
	OpenAIAPIKey               string        `env:"OPENAI_API_KEY,required"`
	OpenAIBaseURL              string        `env:"OPENAI_BASE_URL"`
	OpenAIChatModel            string        `env:"OPENAI_CHAT_MODEL" envDefault:"gpt-4o-mini"`
	OpenAITranscribeModel      string        `env:"OPENAI_TRANSCRIBE_MODEL" envDefault:"whisper-1"`
	CaptureWebhookURL          string        `env:"CAPTURE_WEBHOOK_URL"`
	CaptureWebhookMaxAttempts  int           `env:"CAPTURE_WEBHOOK_MAX_ATTEMPTS" envDefault:"3"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                        raw.Env,
		HTTPAddr:                   raw.HTTPAddr,
		PipelineTimeout:            raw.PipelineTimeout,
		MaxUploadBytes:             raw.MaxUploadBytes,
		DefaultTimezone:            raw.DefaultTimezone,
		DefaultTranscribeLanguage:  raw.DefaultTranscribeLanguage,
		TranscriberProvider:        raw.TranscriberProvider,
		DatabaseDriver:             raw.DatabaseDriver,
		DatabaseURL:                raw.DatabaseURL,
		GoogleCloudProjectID:       raw.GoogleCloudProjectID,
		GoogleCloudCredentialsJSON: raw.GoogleCloudCredentialsJSON,
		GoogleCloudSpeechLocation:  raw.GoogleCloudSpeechLocation,
		GoogleCloudSpeechModel:     raw.GoogleCloudSpeechModel,
		OpenAIAPIKey:               raw.OpenAIAPIKey,
		OpenAIBaseURL:              raw.OpenAIBaseURL,
		OpenAIChatModel:            raw.OpenAIChatModel,
		OpenAITranscribeModel:      raw.OpenAITranscribeModel,
		CaptureWebhookURL:          raw.CaptureWebhookURL,
		CaptureWebhookMaxAttempts:  raw.CaptureWebhookMaxAttempts,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
