package llm

import (
	"github.com/foxseedlab/voicecap/internal/config"
	"github.com/foxseedlab/voicecap/internal/structurer"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (structurer.Completer, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewOpenAIChatCompleter(OpenAIChatConfig{
			APIKey:  c.OpenAIAPIKey,
			BaseURL: c.OpenAIBaseURL,
			Model:   c.OpenAIChatModel,
		}), nil
	})
}
