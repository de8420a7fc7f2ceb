package query

// SynonymEntry maps a medical term to retrieval-equivalent phrasings.
// Entries are evaluated in slice order so expansion output is deterministic.
type SynonymEntry struct {
	Term     string
	Synonyms []string
}

// DefaultSynonyms is the built-in medical terminology table used for query
// expansion.
var DefaultSynonyms = []SynonymEntry{
	{"choking", []string{"airway obstruction", "blocked airway", "cannot breathe", "foreign object throat"}},
	{"bleeding", []string{"hemorrhage", "blood loss", "cut", "wound", "laceration"}},
	{"burn", []string{"scald", "thermal injury", "fire injury", "heat damage"}},
	{"headache", []string{"head pain", "migraine", "cephalgia"}},
	{"poisoning", []string{"toxic ingestion", "overdose", "toxic exposure"}},
	{"heart attack", []string{"cardiac arrest", "myocardial infarction", "chest pain"}},
	{"fracture", []string{"broken bone", "bone break", "bone fracture"}},
	{"seizure", []string{"convulsion", "fit", "epileptic episode"}},
	{"allergic", []string{"anaphylaxis", "allergic reaction", "hypersensitivity"}},
	{"unconscious", []string{"unresponsive", "loss of consciousness", "passed out"}},
	{"breathing", []string{"respiration", "respiratory", "airway"}},
	{"snake", []string{"serpent", "venomous bite", "reptile bite"}},
	{"alcohol", []string{"intoxication", "ethanol", "drunk"}},
	{"heat", []string{"hyperthermia", "heat stroke", "overheating"}},
	{"cold", []string{"hypothermia", "freezing", "frostbite"}},
}

// DefaultStopWords are ignored during keyword extraction.
var DefaultStopWords = map[string]bool{
	"is": true, "am": true, "are": true, "what": true, "how": true,
	"do": true, "to": true, "the": true, "a": true, "an": true,
	"my": true, "i": true, "on": true, "for": true, "with": true,
	"from": true, "and": true, "or": true, "should": true,
	"can": true, "will": true, "having": true, "have": true, "has": true,
}

// DefaultEmergencyKeywords flag queries that describe a life-threatening
// situation. Matching is by substring against the lowercased query.
var DefaultEmergencyKeywords = []string{
	"unconscious", "not breathing", "no pulse", "severe bleeding",
	"chest pain", "heart attack", "stroke", "seizure", "anaphylaxis",
	"choking", "poisoning", "overdose", "severe burn", "head injury",
	"spinal injury", "can't breathe", "blue", "unresponsive",
}
