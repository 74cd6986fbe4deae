package capture

// Priority values accepted on a task draft.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type TaskDraft struct {
	Title      string  `json:"title"`
	DueNatural *string `json:"due_natural"`
	DueISO     *string `json:"due_iso"`
	Priority   *string `json:"priority"`
}

type ReminderDraft struct {
	TimeNatural *string `json:"time_natural"`
	TimeISO     *string `json:"time_iso"`
	Reason      *string `json:"reason"`
}

// StructuredResult is implemented only by *ProductivityResult and
// *ReflectionResult; the unexported method closes the set.
type StructuredResult interface {
	Schema() Schema
	NoteText() string
	SummaryText() string
	CategoryText() string
	structured()
}

type ProductivityResult struct {
	Note         string        `json:"note,omitempty"`
	NoteCategory string        `json:"note_category,omitempty"`
	Actions      []string      `json:"actions"`
	Tasks        []TaskDraft   `json:"tasks"`
	Reminder     ReminderDraft `json:"reminder"`
	Summary      string        `json:"summary,omitempty"`
}

func (*ProductivityResult) Schema() Schema         { return SchemaProductivity }
func (r *ProductivityResult) NoteText() string     { return r.Note }
func (r *ProductivityResult) SummaryText() string  { return r.Summary }
func (r *ProductivityResult) CategoryText() string { return r.NoteCategory }
func (*ProductivityResult) structured()            {}

type ReflectionResult struct {
	Reflection     string      `json:"reflection,omitempty"`
	EmotionalState string      `json:"emotional_state,omitempty"`
	Grounding      string      `json:"grounding,omitempty"`
	Note           string      `json:"note,omitempty"`
	Tasks          []TaskDraft `json:"tasks"`
	Summary        string      `json:"summary,omitempty"`
}

func (*ReflectionResult) Schema() Schema        { return SchemaReflection }
func (r *ReflectionResult) NoteText() string    { return r.Note }
func (r *ReflectionResult) SummaryText() string { return r.Summary }
func (*ReflectionResult) CategoryText() string  { return "" }
func (*ReflectionResult) structured()           {}
