package query

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"
)

// trailingPunct matches trailing runs of question/exclamation marks.
var trailingPunct = regexp.MustCompile(`[?!]+$`)

// Processor normalizes, expands, and analyzes user queries.
// All tables are fixed at construction; a Processor is safe for concurrent use.
type Processor struct {
	synonyms  []SynonymEntry
	stopWords map[string]bool
	emergency []string
	logger    *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithSynonyms replaces the default synonym table.
func WithSynonyms(entries []SynonymEntry) Option {
	return func(p *Processor) {
		p.synonyms = entries
	}
}

// WithStopWords replaces the default stop-word set.
func WithStopWords(words map[string]bool) Option {
	return func(p *Processor) {
		p.stopWords = words
	}
}

// WithEmergencyKeywords replaces the default emergency keyword list.
func WithEmergencyKeywords(keywords []string) Option {
	return func(p *Processor) {
		p.emergency = keywords
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
	}
}

// NewProcessor creates a query processor with the default medical tables.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		synonyms:  DefaultSynonyms,
		stopWords: DefaultStopWords,
		emergency: DefaultEmergencyKeywords,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.logger.Debug("query processor initialized", "synonymEntries", len(p.synonyms))
	return p
}

// Preprocess cleans and normalizes a raw query: lowercase, collapse internal
// whitespace runs, strip trailing question/exclamation marks, trim.
// Idempotent: Preprocess(Preprocess(q)) == Preprocess(q).
func (p *Processor) Preprocess(text string) string {
	text = strings.ToLower(text)
	text = strings.Join(strings.Fields(text), " ")
	text = trailingPunct.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Expand generates query variations by substituting medical synonyms for
// terms found in the normalized query. The original query is always element 0
// and the result never exceeds maxExpansions entries.
func (p *Processor) Expand(normalized string, maxExpansions int) []string {
	if maxExpansions < 1 {
		maxExpansions = 1
	}

	expanded := []string{normalized}

	for _, entry := range p.synonyms {
		if !strings.Contains(normalized, entry.Term) {
			continue
		}
		synonyms := entry.Synonyms
		if len(synonyms) > maxExpansions {
			synonyms = synonyms[:maxExpansions]
		}
		for _, syn := range synonyms {
			candidate := strings.ReplaceAll(normalized, entry.Term, syn)
			if !contains(expanded, candidate) {
				expanded = append(expanded, candidate)
			}
		}
	}

	if len(expanded) > maxExpansions {
		expanded = expanded[:maxExpansions]
	}
	return expanded
}

// Keywords extracts the significant lowercase tokens from text, dropping
// stop words and tokens of length 2 or less. Punctuation at token edges is
// trimmed, so "bleeding?" yields "bleeding". Order of first occurrence is
// preserved and duplicates are removed.
func (p *Processor) Keywords(text string) []string {
	words := strings.Fields(strings.ToLower(text))
	keywords := make([]string, 0, len(words))
	seen := make(map[string]bool, len(words))

	for _, w := range words {
		w = strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len(w) <= 2 || p.stopWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		keywords = append(keywords, w)
	}

	return keywords
}

// DetectEmergency reports whether the query describes an emergency situation.
// This is an observability and UI signal only; it never gates retrieval.
func (p *Processor) DetectEmergency(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range p.emergency {
		if strings.Contains(lower, keyword) {
			p.logger.Warn("emergency keyword detected in query", "keyword", keyword)
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
