package config

import (
	"fmt"
	"time"

	"github.com/foxseedlab/voicecap/internal/temporal"
	"golang.org/x/text/language"
)

const (
	TranscriberProviderGoogle = "google"
	TranscriberProviderOpenAI = "openai"

	DatabaseDriverPostgres = "postgres"
	DatabaseDriverSQLite   = "sqlite"

	// AutoDetectLanguage lets the speech provider detect the spoken language.
	AutoDetectLanguage = "auto"
)

type Config struct {
	Env                        string
	HTTPAddr                   string
	PipelineTimeout            time.Duration
	MaxUploadBytes             int64
	DefaultTimezone            string
	DefaultTranscribeLanguage  string
	TranscriberProvider        string
	DatabaseDriver             string
	DatabaseURL                string
	GoogleCloudProjectID       string
	GoogleCloudCredentialsJSON string
	GoogleCloudSpeechLocation  string
	GoogleCloudSpeechModel     string
	OpenAIAPIKey               string
	OpenAIBaseURL              string
	OpenAIChatModel            string
	OpenAITranscribeModel      string
	CaptureWebhookURL          string
	CaptureWebhookMaxAttempts  int
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	switch c.TranscriberProvider {
	case TranscriberProviderGoogle:
		if c.GoogleCloudProjectID == "" || c.GoogleCloudCredentialsJSON == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT_ID and GOOGLE_CLOUD_CREDENTIALS_JSON are required when TRANSCRIBER_PROVIDER=google")
		}
	case TranscriberProviderOpenAI:
	default:
		return fmt.Errorf("TRANSCRIBER_PROVIDER must be %q or %q, got %q", TranscriberProviderGoogle, TranscriberProviderOpenAI, c.TranscriberProvider)
	}
	switch c.DatabaseDriver {
	case DatabaseDriverPostgres, DatabaseDriverSQLite:
	default:
		return fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", DatabaseDriverPostgres, DatabaseDriverSQLite, c.DatabaseDriver)
	}
	if c.PipelineTimeout <= 0 {
		return fmt.Errorf("PIPELINE_TIMEOUT must be positive, got %s", c.PipelineTimeout)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if c.CaptureWebhookMaxAttempts <= 0 {
		return fmt.Errorf("CAPTURE_WEBHOOK_MAX_ATTEMPTS must be positive, got %d", c.CaptureWebhookMaxAttempts)
	}
	if _, err := temporal.LoadLocation(c.DefaultTimezone); err != nil {
		return fmt.Errorf("DEFAULT_TIMEZONE is invalid: %w", err)
	}
	if c.DefaultTranscribeLanguage != AutoDetectLanguage {
		if _, err := language.Parse(c.DefaultTranscribeLanguage); err != nil {
			return fmt.Errorf("DEFAULT_TRANSCRIBE_LANGUAGE is invalid: %w", err)
		}
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "HTTP_ADDR", value: c.HTTPAddr},
		{name: "DATABASE_URL", value: c.DatabaseURL},
		{name: "OPENAI_API_KEY", value: c.OpenAIAPIKey},
		{name: "OPENAI_CHAT_MODEL", value: c.OpenAIChatModel},
		{name: "DEFAULT_TIMEZONE", value: c.DefaultTimezone},
		{name: "DEFAULT_TRANSCRIBE_LANGUAGE", value: c.DefaultTranscribeLanguage},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
