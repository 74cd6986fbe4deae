package webhook

import (
	"context"

	"github.com/foxseedlab/voicecap/internal/capture"
)

type CaptureWebhookPayload struct {
	RequestID  string                   `json:"request_id"`
	UserID     string                   `json:"user_id"`
	Mode       capture.Mode             `json:"mode"`
	Timezone   string                   `json:"timezone"`
	RawText    string                   `json:"raw_text"`
	Structured capture.StructuredResult `json:"structured"`
	NoteID     *string                  `json:"note_id"`
	CapturedAt string                   `json:"captured_at"`
}

type Sender interface {
	SendCapture(ctx context.Context, payload CaptureWebhookPayload) error
}
