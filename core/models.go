package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Chunk IDs are generated from content so that identical source text
// always maps to the same chunk.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleUser is a turn written by the person asking for help.
	RoleUser Role = "user"
	// RoleAssistant is a turn produced by the assistant.
	RoleAssistant Role = "assistant"
)

// SearchMethod records which retrieval stage produced a candidate.
type SearchMethod string

const (
	// MethodSemanticOriginal marks hits from the primary semantic stage.
	MethodSemanticOriginal SearchMethod = "semantic_original"
	// MethodSemanticExpanded marks hits from synonym-expanded variants.
	MethodSemanticExpanded SearchMethod = "semantic_expanded"
	// MethodKeywordFallback marks hits from the full-text keyword stage.
	MethodKeywordFallback SearchMethod = "keyword_fallback"
	// MethodSemanticExpandedFinal marks hits from the second-chance stage.
	MethodSemanticExpandedFinal SearchMethod = "semantic_expanded_final"
)

// Chunk is an immutable retrievable unit of first-aid guidance.
// The pipeline never mutates a stored chunk, it only annotates copies.
type Chunk struct {
	ID         ID
	Text       string
	Title      string
	Category   string
	Severity   string
	Source     string
	ScenarioID string
	Vector     []float32 // Unit-length embedding of Text
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// ScoredChunk is a chunk paired with a relevance score, as returned by
// similarity and full-text search.
type ScoredChunk struct {
	Chunk *Chunk
	Score float32
}

// Candidate is a chunk annotated with the score and retrieval stage that
// produced it. Within one retrieval call candidates are unique by Chunk.ID.
type Candidate struct {
	Chunk  *Chunk
	Score  float32
	Method SearchMethod
}

// RankedCandidate is a candidate after keyword-overlap reranking.
type RankedCandidate struct {
	Candidate
	KeywordOverlap int
	BoostedScore   float32
}

// Turn is a single message in a conversation, ordered by timestamp.
type Turn struct {
	ConversationID string
	Role           Role
	Content        string
	Timestamp      time.Time
}

// Conversation groups a user's turns. A user owns a bounded number of
// conversations; creating one past the cap evicts the oldest by CreatedAt.
type Conversation struct {
	ConversationID string
	UserID         string
	Title          string
	LastQuery      string
	MessageCount   int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Tier is a coarse classification of answer reliability.
type Tier string

const (
	// TierHigh indicates strong supporting evidence.
	TierHigh Tier = "high"
	// TierMedium indicates moderate supporting evidence.
	TierMedium Tier = "medium"
	// TierLow indicates weak or no supporting evidence.
	TierLow Tier = "low"
)

// Source describes a supporting passage cited in an answer.
type Source struct {
	Title     string
	Category  string
	Source    string
	Relevance float32
}

// AnswerResult is the externally visible output of the pipeline.
// It is always fully populated, never partially constructed.
type AnswerResult struct {
	Query        string
	Response     string
	Sources      []Source
	Confidence   Tier
	ChunksFound  int
	AvgRelevance float32
	Emergency    bool
	Timestamp    time.Time
}
