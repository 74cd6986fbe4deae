package capture

import (
	"fmt"
	"strings"
)

// Mode is the session intent selecting both the prompt template and the
// output schema. The zero value is not a valid mode.
type Mode int

const (
	ModeReview Mode = iota + 1
	ModeAutosave
	ModePsych
)

// Schema identifies which of the two output shapes a mode produces.
type Schema int

const (
	SchemaProductivity Schema = iota + 1
	SchemaReflection
)

const DefaultMode = ModeReview

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultMode, nil
	case "review":
		return ModeReview, nil
	case "autosave":
		return ModeAutosave, nil
	case "psych":
		return ModePsych, nil
	default:
		return 0, fmt.Errorf("unsupported mode %q", s)
	}
}

func (m Mode) String() string {
	switch m {
	case ModeReview:
		return "review"
	case ModeAutosave:
		return "autosave"
	case ModePsych:
		return "psych"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func (m Mode) Valid() bool {
	return m == ModeReview || m == ModeAutosave || m == ModePsych
}

func (m Mode) Schema() Schema {
	if m == ModePsych {
		return SchemaReflection
	}
	return SchemaProductivity
}

// PersistsNote reports whether a non-empty note is stored for this mode.
func (m Mode) PersistsNote() bool {
	return m == ModeAutosave
}

func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid mode %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
