package transcriber

import (
	"github.com/foxseedlab/voicecap/internal/config"
	"github.com/foxseedlab/voicecap/internal/transcriber"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (transcriber.Transcriber, error) {
		c := do.MustInvoke[*config.Config](i)
		if c.TranscriberProvider == config.TranscriberProviderGoogle {
			return NewCloudSpeechTranscriber(CloudSpeechConfig{
				ProjectID:       c.GoogleCloudProjectID,
				CredentialsJSON: c.GoogleCloudCredentialsJSON,
				Location:        c.GoogleCloudSpeechLocation,
				Model:           c.GoogleCloudSpeechModel,
			}), nil
		}
		return NewOpenAIAudioTranscriber(OpenAIAudioConfig{
			APIKey:  c.OpenAIAPIKey,
			BaseURL: c.OpenAIBaseURL,
			Model:   c.OpenAITranscribeModel,
		}), nil
	})
}
