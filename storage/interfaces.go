package storage

import (
	"context"
	"time"

	"github.com/poiesic/firstaid/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ChunkRepository provides operations for managing knowledge base chunks.
type ChunkRepository interface {
	Repository

	// AddChunks adds one or more chunks to storage.
	// For chunks with ID=0, derives a content-based ID from the chunk text.
	// Sets InsertedAt timestamp if not already set and maintains the
	// keyword index for each chunk.
	// Returns the chunks with IDs and timestamps populated.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// UpdateChunks updates existing chunks.
	// Updates the UpdatedAt timestamp automatically and rewrites the
	// keyword index entries for each chunk.
	// Returns ErrNotFound if any chunk doesn't exist.
	UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// DeleteChunks removes chunks by their IDs, along with their keyword
	// index entries.
	// Returns ErrNotFound if any chunk doesn't exist.
	DeleteChunks(ctx context.Context, ids ...core.ID) error

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// GetChunks retrieves multiple chunks by their IDs.
	// Returns only the chunks that exist (no error for missing chunks).
	GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error)

	// ListChunkIDs returns the IDs of all stored chunks.
	ListChunkIDs(ctx context.Context) ([]core.ID, error)

	// CountChunks returns the number of stored chunks.
	CountChunks(ctx context.Context) (int, error)

	// FindSimilar finds chunks whose vectors are similar to the given vector.
	// Returns chunks with similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ScoredChunk, error)

	// SearchText finds chunks whose text contains the given keywords,
	// scored by the fraction of keywords matched. Results are ordered by
	// match score (highest first), up to limit results.
	SearchText(ctx context.Context, keywords []string, limit int) ([]*core.ScoredChunk, error)
}

// ConversationRepository provides operations for managing conversations
// and their turns.
type ConversationRepository interface {
	Repository

	// AddConversation stores a new conversation.
	// Sets CreatedAt and UpdatedAt timestamps if not already set.
	// Returns ErrDuplicateKey if a conversation with the same ID exists.
	AddConversation(ctx context.Context, conv *core.Conversation) (*core.Conversation, error)

	// UpdateConversation updates an existing conversation.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if the conversation doesn't exist.
	UpdateConversation(ctx context.Context, conv *core.Conversation) (*core.Conversation, error)

	// GetConversation retrieves a conversation by ID.
	// Returns ErrNotFound if the conversation doesn't exist.
	GetConversation(ctx context.Context, conversationID string) (*core.Conversation, error)

	// ListConversations returns a user's conversations ordered by
	// UpdatedAt descending (most recently active first).
	ListConversations(ctx context.Context, userID string) ([]*core.Conversation, error)

	// CountConversations returns the number of conversations for a user.
	CountConversations(ctx context.Context, userID string) (int, error)

	// OldestConversation returns the user's conversation with the earliest
	// CreatedAt. Returns ErrNotFound if the user has no conversations.
	OldestConversation(ctx context.Context, userID string) (*core.Conversation, error)

	// DeleteConversation removes a conversation and all of its turns.
	// Returns ErrNotFound if the conversation doesn't exist.
	DeleteConversation(ctx context.Context, conversationID string) error

	// AddTurns appends turns to a conversation's history.
	// Sets each turn's Timestamp if not already set.
	AddTurns(ctx context.Context, turns ...*core.Turn) ([]*core.Turn, error)

	// GetRecentTurns retrieves the N most recent turns of a conversation
	// in chronological order (oldest of the window first).
	GetRecentTurns(ctx context.Context, conversationID string, limit int) ([]*core.Turn, error)

	// GetTurnsByDateRange retrieves a conversation's turns within a time
	// range. Returns turns where start <= Timestamp < end, ordered by
	// timestamp.
	GetTurnsByDateRange(ctx context.Context, conversationID string, start, end time.Time) ([]*core.Turn, error)

	// DeleteTurns removes all turns of a conversation.
	DeleteTurns(ctx context.Context, conversationID string) error
}
