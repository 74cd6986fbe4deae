package structurer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/foxseedlab/voicecap/internal/capture"
	"github.com/foxseedlab/voicecap/internal/temporal"
)

// Completer is a chat-completion provider constrained to return a single
// JSON object as text.
type Completer interface {
	CompleteJSON(ctx context.Context, prompt Prompt) (string, error)
}

type Structurer struct {
	completer Completer
}

func NewStructurer(c Completer) *Structurer {
	return &Structurer{completer: c}
}

// Structure returns the raw model output. Parsing is left to the
// normalization stage.
func (s *Structurer) Structure(ctx context.Context, mode capture.Mode, transcript string, tc temporal.Context) (string, error) {
	prompt := BuildPrompt(mode, transcript, tc)
	slog.Debug("structuring transcript", "mode", mode.String(), "transcript_chars", len(transcript), "today_local", tc.TodayLocalYMD)
	out, err := s.completer.CompleteJSON(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("json completion: %w", err)
	}
	return strings.TrimSpace(out), nil
}
