package pipeline

import (
	"github.com/foxseedlab/voicecap/internal/config"
	"github.com/foxseedlab/voicecap/internal/repository"
	"github.com/foxseedlab/voicecap/internal/structurer"
	"github.com/foxseedlab/voicecap/internal/transcriber"
	"github.com/foxseedlab/voicecap/internal/webhook"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Pipeline, error) {
		cfg := do.MustInvoke[*config.Config](i)
		stt := do.MustInvoke[transcriber.Transcriber](i)
		completer := do.MustInvoke[structurer.Completer](i)
		repo := do.MustInvoke[repository.Repository](i)
		wh := do.MustInvoke[webhook.Sender](i)
		return NewPipeline(OptionsFromConfig(cfg), stt, structurer.NewStructurer(completer), repo, wh), nil
	})
}
