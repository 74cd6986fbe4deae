// Package normalize repairs raw model output into the strict, mode-scoped
// capture result.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/foxseedlab/voicecap/internal/capture"
)

type rawObject map[string]json.RawMessage

// Normalize parses raw as a JSON object and builds the result for mode's
// schema. Keys outside that schema never reach the output.
func Normalize(mode capture.Mode, raw string, loc *time.Location) (capture.StructuredResult, error) {
	var obj rawObject
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, capture.NewError(capture.CodeStructuringInvalidJSON, "model output is not valid JSON", err)
	}
	if obj == nil {
		return nil, capture.NewError(capture.CodeStructuringInvalidJSON, "model output is not a JSON object", nil)
	}

	switch mode.Schema() {
	case capture.SchemaReflection:
		return &capture.ReflectionResult{
			Reflection:     obj.str("reflection"),
			EmotionalState: obj.str("emotional_state"),
			Grounding:      obj.str("grounding"),
			Note:           obj.str("note"),
			Tasks:          obj.tasks(loc),
			Summary:        obj.str("summary"),
		}, nil
	case capture.SchemaProductivity:
		return &capture.ProductivityResult{
			Note:         obj.str("note"),
			NoteCategory: obj.str("note_category"),
			Actions:      obj.strings("actions"),
			Tasks:        obj.tasks(loc),
			Reminder:     obj.reminder(loc),
			Summary:      obj.str("summary"),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported mode %v", mode)
	}
}

// str returns the trimmed string at key; non-string values count as absent.
func (o rawObject) str(key string) string {
	v, ok := o[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// rawStr is like str but keeps surrounding whitespace.
func (o rawObject) rawStr(key string) string {
	v, ok := o[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	return s
}

func (o rawObject) strings(key string) []string {
	out := []string{}
	v, ok := o[key]
	if !ok {
		return out
	}
	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		return out
	}
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (o rawObject) object(key string) (rawObject, bool) {
	v, ok := o[key]
	if !ok {
		return nil, false
	}
	var obj rawObject
	if err := json.Unmarshal(v, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// firstStr returns the raw string of the first key present with a
// non-blank value.
func (o rawObject) firstStr(keys ...string) string {
	for _, key := range keys {
		if s := o.rawStr(key); strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func (o rawObject) tasks(loc *time.Location) []capture.TaskDraft {
	out := []capture.TaskDraft{}
	v, ok := o["tasks"]
	if !ok {
		return out
	}
	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		return out
	}
	for _, item := range items {
		var t rawObject
		if err := json.Unmarshal(item, &t); err != nil || t == nil {
			continue
		}
		title := t.str("title")
		if title == "" {
			continue
		}
		natural, iso := resolveDate(t.rawStr("due_iso"), t.firstStr("due_natural", "due"), loc)
		out = append(out, capture.TaskDraft{
			Title:      title,
			DueNatural: natural,
			DueISO:     iso,
			Priority:   priority(t.str("priority")),
		})
	}
	return out
}

func (o rawObject) reminder(loc *time.Location) capture.ReminderDraft {
	r, ok := o.object("reminder")
	if !ok {
		return capture.ReminderDraft{}
	}
	natural, iso := resolveDate(r.rawStr("time_iso"), r.firstStr("time_natural", "time"), loc)
	return capture.ReminderDraft{
		TimeNatural: natural,
		TimeISO:     iso,
		Reason:      optional(r.str("reason")),
	}
}

func priority(s string) *string {
	switch p := strings.ToLower(strings.TrimSpace(s)); p {
	case capture.PriorityLow, capture.PriorityMedium, capture.PriorityHigh:
		return &p
	default:
		return nil
	}
}
