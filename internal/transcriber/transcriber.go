package transcriber

import (
	"context"

	"github.com/foxseedlab/voicecap/internal/capture"
)

// Transcriber converts one uploaded recording into raw text. language is a
// BCP-47 tag or "auto" for provider-side detection.
type Transcriber interface {
	Transcribe(ctx context.Context, audio capture.AudioBlob, language string) (string, error)
}
