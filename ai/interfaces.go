package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector is normalized to unit length so that dot product
	// equals cosine similarity. Returns an error if embedding fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. The returned slice contains embeddings in the same order as the
	// input texts, identical to calling EmbedText item by item.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Message is a single prior turn passed to the generator, oldest first.
type Message struct {
	// Role is "user" or "assistant".
	Role string

	// Content is the turn text.
	Content string
}

// CompletionRequest describes one chat-style generation call.
type CompletionRequest struct {
	// System is the system instruction (persona and answer structure).
	System string

	// History holds prior conversation turns in chronological order.
	History []Message

	// User is the current user prompt (question plus retrieved context).
	User string

	// Temperature controls decoding randomness. Kept low for consistent
	// medical guidance.
	Temperature float64

	// MaxTokens bounds the generated output length.
	MaxTokens int

	// TopP is the nucleus-sampling parameter.
	TopP float64
}

// Generator produces answer text from a completion request.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Complete runs one generation call and returns the raw model output.
	// May fail or time out; callers are expected to degrade to a static
	// safety response.
	Complete(ctx context.Context, req *CompletionRequest) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder and Generator
// instances, ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Generator returns the answer generation service.
	// The returned Generator is safe for concurrent use.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
