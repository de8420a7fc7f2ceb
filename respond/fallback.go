package respond

import (
	"fmt"
	"log/slog"
	"strings"
)

// fallbackEntry maps trigger keywords to a canned guidance block.
// Entries are evaluated in order; the first matching entry wins.
type fallbackEntry struct {
	keywords []string
	topic    string
	response string
}

// fallbackTable covers the situations users most often ask about when the
// knowledge base has nothing to offer. Every block tells the user when to
// call emergency services.
var fallbackTable = []fallbackEntry{
	{
		keywords: []string{"choking", "choke", "airway"},
		topic:    "Choking",
		response: `Immediate Action:
- If the person cannot breathe, cough, or speak, CALL EMERGENCY SERVICES IMMEDIATELY.
- Give up to 5 firm back blows between the shoulder blades.
- If that fails, give up to 5 abdominal thrusts (Heimlich maneuver).
- Alternate 5 back blows and 5 thrusts until the object clears.

When to Seek Medical Help:
- The person loses consciousness or the obstruction will not clear.
- Even after a cleared airway, abdominal thrusts warrant a medical check.`,
	},
	{
		keywords: []string{"bleeding", "blood", "cut", "wound"},
		topic:    "Bleeding",
		response: `Immediate Action:
- Apply firm, direct pressure on the wound with a clean cloth or bandage.
- Keep pressure continuous; add layers, do not remove soaked ones.
- Raise the injured area above heart level if possible.
- CALL EMERGENCY SERVICES IMMEDIATELY if bleeding is severe or spurting.

When to Seek Medical Help:
- Bleeding does not slow after 10 minutes of firm pressure.
- The wound is deep, gaping, or caused by a dirty or rusty object.`,
	},
	{
		keywords: []string{"burn", "scald"},
		topic:    "Burns",
		response: `Immediate Action:
- Cool the burn under cool (not icy) running water for 20 minutes.
- Remove rings or tight items near the burn before swelling starts.
- Cover loosely with a sterile, non-stick dressing.
- CALL EMERGENCY SERVICES IMMEDIATELY for large, deep, or facial burns.

What NOT to Do:
- Do not apply ice, butter, or creams.
- Do not burst blisters.`,
	},
	{
		keywords: []string{"fracture", "broken bone", "broken arm", "broken leg"},
		topic:    "Fractures",
		response: `Immediate Action:
- Keep the injured limb still; do not try to straighten it.
- Immobilize with a splint or padding in the position found.
- Apply a covered cold pack to limit swelling.
- CALL EMERGENCY SERVICES IMMEDIATELY for open fractures, or injuries to the head, neck, or back.

When to Seek Medical Help:
- Any suspected fracture needs professional assessment and imaging.`,
	},
	{
		keywords: []string{"snake", "snakebite"},
		topic:    "Snake Bites",
		response: `Immediate Action:
- CALL EMERGENCY SERVICES IMMEDIATELY.
- Keep the person calm and still; movement spreads venom faster.
- Keep the bitten limb immobilized and below heart level.
- Remove rings, watches, and tight clothing near the bite.

What NOT to Do:
- Do not cut the wound, suck out venom, or apply a tourniquet.
- Do not apply ice.`,
	},
	{
		keywords: []string{"poison", "poisoning", "overdose", "swallowed"},
		topic:    "Poisoning",
		response: `Immediate Action:
- CALL EMERGENCY SERVICES OR POISON CONTROL IMMEDIATELY.
- Identify what was taken, how much, and when, if possible.
- Keep the container or label for responders.

What NOT to Do:
- Do not induce vomiting unless instructed by professionals.
- Do not give anything to eat or drink unless told to.`,
	},
	{
		keywords: []string{"nausea", "vomit", "vomiting"},
		topic:    "Nausea",
		response: `Possible causes: food poisoning, viral infection, dehydration, motion sickness.

Relief Steps:
- Sit or lie down in a comfortable position.
- Sip water slowly or try ginger tea.
- Avoid solid foods until nausea passes.
- Get fresh air if possible.

When to Seek Medical Help:
- CALL EMERGENCY SERVICES if there is blood in vomit or severe stomach pain.
- Vomiting lasts more than 24 hours or you can't keep fluids down.`,
	},
	{
		keywords: []string{"headache", "migraine"},
		topic:    "Headaches",
		response: `Possible causes: tension headache, dehydration, migraine, stress, or heat.

Relief Steps:
- Rest in a quiet, dark room.
- Drink water - dehydration can worsen headaches.
- Apply a cold compress to your forehead.

When to Seek Medical Help:
- CALL EMERGENCY SERVICES if the headache is sudden and severe.
- Vision changes, confusion, or vomiting occur.`,
	},
	{
		keywords: []string{"dizzy", "dizziness", "faint", "lightheaded"},
		topic:    "Dizziness",
		response: `Possible causes: dehydration, low blood sugar, fatigue, or fainting onset.

What to Do:
- Sit or lie down immediately.
- Drink water or an electrolyte solution.
- Eat something light if you haven't eaten recently.

When to Seek Medical Help:
- CALL EMERGENCY SERVICES if dizziness occurs with chest pain or shortness of breath.`,
	},
}

// FallbackResponder produces canned guidance when retrieval finds nothing.
// It never calls the generator.
type FallbackResponder struct {
	table  []fallbackEntry
	logger *slog.Logger
}

// NewFallbackResponder creates a responder with the built-in decision table.
func NewFallbackResponder(logger *slog.Logger) *FallbackResponder {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackResponder{
		table:  fallbackTable,
		logger: logger,
	}
}

// Respond returns guidance matched from the decision table, or a generic
// safety checklist when no entry matches. Output is sanitized.
func (f *FallbackResponder) Respond(query string) string {
	lower := strings.ToLower(query)

	for _, entry := range f.table {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				f.logger.Info("fallback response matched", "topic", entry.topic)
				return Sanitize(fmt.Sprintf(
					"Based on your question, this may relate to %s.\n\n%s\n\nAdditional Notes:\nThis is general first aid guidance. If symptoms worsen or you're unsure, seek professional medical advice.",
					entry.topic, entry.response,
				))
			}
		}
	}

	f.logger.Info("fallback response using generic checklist")
	return Sanitize(fmt.Sprintf(`I couldn't find specific information for: "%s".

General First Aid Steps:
1. Ensure safety and check responsiveness.
2. Call emergency services if pain, bleeding, or confusion is severe.
3. Provide rest, hydration, and reassurance.
4. Monitor symptoms and avoid unnecessary movement.

Additional Notes:
If symptoms worsen or persist, consult a doctor immediately.`, query))
}
