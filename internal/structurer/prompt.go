package structurer

import (
	"fmt"
	"strings"

	"github.com/foxseedlab/voicecap/internal/capture"
	"github.com/foxseedlab/voicecap/internal/temporal"
)

// Prompt is one JSON-constrained completion request.
type Prompt struct {
	System string
	User   string
}

const languageContract = `LANGUAGE RULES:
- Detect the language the speaker used in the transcript.
- Write every human-readable value (note, summaries, titles, reasons, reflections) in that detected language.
- JSON keys are fixed, in English, exactly as listed. Never translate or rename keys.`

const jsonOnlyRule = `Respond with a single JSON object and nothing else. No markdown, no code fences, no commentary.`

const productivitySystem = `You turn a short spoken memo into structured productivity data for a notes and tasks app.

Extract:
- "note": the informational content worth keeping as a note, cleaned up into full sentences. Omit it if there is none.
- "note_category": one short category label for the note (for example work, personal, health, finance, idea).
- "actions": short imperative phrases for every action the speaker mentioned.
- "tasks": concrete to-dos. Each task is {"title", "due_natural", "due_iso", "priority"}.
- "reminder": the single most important time-bound reminder as {"time_natural", "time_iso", "reason"}, or null.
- "summary": one short sentence summarising the memo.

DATE RULES:
- Resolve relative expressions ("today", "tomorrow", "tonight", "next Monday", "in two hours") against the speaker's local time given below, never against UTC.
- "tonight" without a time means 20:00 local time.
- When you can resolve a date, set "due_iso"/"time_iso" to the UTC ISO-8601 instant (for example 2024-03-11T22:00:00.000Z) and still copy the spoken phrase into "due_natural"/"time_natural".
- When you cannot resolve it, set the ISO field to null and keep the spoken phrase.
- "priority" is one of "low", "medium", "high", or null when the speaker gave no signal.

OUTPUT SCHEMA:
{"note": string, "note_category": string, "actions": [string], "tasks": [{"title": string, "due_natural": string|null, "due_iso": string|null, "priority": "low"|"medium"|"high"|null}], "reminder": {"time_natural": string|null, "time_iso": string|null, "reason": string|null}|null, "summary": string}`

const reflectionSystem = `You are a warm, supportive reflection companion inside a journaling app. You are not a therapist, doctor, or counsellor. Never diagnose, never label conditions, never offer medical, psychological, or clinical advice, and never claim therapeutic or medical authority.

From the speaker's voice entry produce:
- "reflection": a short, kind reflection of what they shared, in their own terms.
- "emotional_state": a gentle, non-clinical description of how they seem to feel.
- "grounding": one simple grounding suggestion they can try right now (a breath, a walk, writing one line).
- "note": a cleaned-up journal note of what they said. Omit it if there is nothing to keep.
- "tasks": small, concrete self-care or follow-up steps they mentioned. Each task is {"title", "due_natural", "due_iso", "priority"}.
- "summary": one short sentence summarising the entry.

SAFETY:
- If the transcript signals any imminent risk of self-harm or harm to others, do not attempt to intervene yourself. Use "reflection" and "grounding" to encourage them, calmly and directly, to contact local emergency services right now or reach out to a trusted person nearby.

DATE RULES:
- Resolve relative expressions against the speaker's local time given below. Use a UTC ISO-8601 instant in "due_iso" when resolvable, otherwise null and keep the phrase in "due_natural".

OUTPUT SCHEMA:
{"reflection": string, "emotional_state": string, "grounding": string, "note": string, "tasks": [{"title": string, "due_natural": string|null, "due_iso": string|null, "priority": "low"|"medium"|"high"|null}], "summary": string}`

// BuildPrompt selects the template for the mode's schema and embeds the
// temporal context.
func BuildPrompt(mode capture.Mode, transcript string, tc temporal.Context) Prompt {
	var base string
	switch mode.Schema() {
	case capture.SchemaReflection:
		base = reflectionSystem
	default:
		base = productivitySystem
	}

	system := strings.Join([]string{
		base,
		temporalBlock(tc),
		languageContract,
		jsonOnlyRule,
	}, "\n\n")

	user := fmt.Sprintf("Transcript:\n\"\"\"\n%s\n\"\"\"", strings.TrimSpace(transcript))
	return Prompt{System: system, User: user}
}

func temporalBlock(tc temporal.Context) string {
	return fmt.Sprintf(`SPEAKER TIME CONTEXT:
- Current instant (UTC): %s
- Speaker local time: %s (%s)
- Speaker local date (today): %s
- Speaker local date (tomorrow): %s`, tc.NowUTCISO, tc.NowLocalDisplay, tc.Timezone, tc.TodayLocalYMD, tc.Tomorrow())
}
