package capture

import (
	"encoding/json"
	"fmt"
)

// DefaultTimezone is used when a capture arrives without a timezone.
const DefaultTimezone = "UTC"

type AudioBlob struct {
	Bytes    []byte
	MimeType string
}

func (b AudioBlob) Size() int { return len(b.Bytes) }

type Request struct {
	Audio    AudioBlob
	UserID   string
	Mode     Mode
	Timezone string
}

// Response is the wire contract of the capture endpoint. Success and
// failure have disjoint shapes; MarshalJSON emits exactly one of them.
type Response struct {
	OK            bool             `json:"ok"`
	RawText       string           `json:"rawText"`
	Structured    StructuredResult `json:"structured"`
	NoteID        *string          `json:"noteId"`
	Mode          Mode             `json:"mode"`
	Timezone      string           `json:"timezone"`
	NowUTCISO     string           `json:"nowUtcIso"`
	TodayLocalYMD string           `json:"todayLocalYmd"`

	Error  ErrorCode `json:"error,omitempty"`
	Detail string    `json:"detail,omitempty"`
}

type successWire struct {
	OK            bool             `json:"ok"`
	RawText       string           `json:"rawText"`
	Structured    StructuredResult `json:"structured"`
	NoteID        *string          `json:"noteId"`
	Mode          Mode             `json:"mode"`
	Timezone      string           `json:"timezone"`
	NowUTCISO     string           `json:"nowUtcIso"`
	TodayLocalYMD string           `json:"todayLocalYmd"`
}

type failureWire struct {
	OK     bool      `json:"ok"`
	Error  ErrorCode `json:"error"`
	Detail string    `json:"detail,omitempty"`
}

func Failure(code ErrorCode, detail string) *Response {
	return &Response{OK: false, Error: code, Detail: detail}
}

func (r Response) MarshalJSON() ([]byte, error) {
	if !r.OK {
		return json.Marshal(failureWire{OK: false, Error: r.Error, Detail: r.Detail})
	}
	return json.Marshal(successWire{
		OK:            true,
		RawText:       r.RawText,
		Structured:    r.Structured,
		NoteID:        r.NoteID,
		Mode:          r.Mode,
		Timezone:      r.Timezone,
		NowUTCISO:     r.NowUTCISO,
		TodayLocalYMD: r.TodayLocalYMD,
	})
}

func (r *Response) UnmarshalJSON(b []byte) error {
	var raw struct {
		OK            bool            `json:"ok"`
		RawText       string          `json:"rawText"`
		Structured    json.RawMessage `json:"structured"`
		NoteID        *string         `json:"noteId"`
		Mode          string          `json:"mode"`
		Timezone      string          `json:"timezone"`
		NowUTCISO     string          `json:"nowUtcIso"`
		TodayLocalYMD string          `json:"todayLocalYmd"`
		Error         ErrorCode       `json:"error"`
		Detail        string          `json:"detail"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = Response{
		OK:            raw.OK,
		RawText:       raw.RawText,
		NoteID:        raw.NoteID,
		Timezone:      raw.Timezone,
		NowUTCISO:     raw.NowUTCISO,
		TodayLocalYMD: raw.TodayLocalYMD,
		Error:         raw.Error,
		Detail:        raw.Detail,
	}
	if !raw.OK {
		return nil
	}
	mode, err := ParseMode(raw.Mode)
	if err != nil {
		return err
	}
	r.Mode = mode
	if len(raw.Structured) == 0 || string(raw.Structured) == "null" {
		return nil
	}
	switch mode.Schema() {
	case SchemaReflection:
		var s ReflectionResult
		if err := json.Unmarshal(raw.Structured, &s); err != nil {
			return fmt.Errorf("decode reflection result: %w", err)
		}
		r.Structured = &s
	default:
		var s ProductivityResult
		if err := json.Unmarshal(raw.Structured, &s); err != nil {
			return fmt.Errorf("decode productivity result: %w", err)
		}
		r.Structured = &s
	}
	return nil
}
