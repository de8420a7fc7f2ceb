package ai

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachingEmbedder wraps an Embedder with an LRU cache keyed by the exact
// input text. Query expansion re-embeds the same variants often enough that
// a small cache removes most repeat calls to the embedding service.
type CachingEmbedder struct {
	inner Embedder
	cache *lru.Cache[string, []float32]
}

var _ Embedder = (*CachingEmbedder)(nil)

// NewCachingEmbedder wraps inner with a cache of the given capacity.
// A capacity of zero or less returns inner unchanged.
func NewCachingEmbedder(inner Embedder, capacity int) (Embedder, error) {
	if capacity <= 0 {
		return inner, nil
	}

	cache, err := lru.New[string, []float32](capacity)
	if err != nil {
		return nil, err
	}

	return &CachingEmbedder{
		inner: inner,
		cache: cache,
	}, nil
}

// EmbedText returns the cached vector for text, or delegates to the wrapped
// embedder and caches the result.
func (e *CachingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if vector, ok := e.cache.Get(text); ok {
		return vector, nil
	}

	vector, err := e.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}

	e.cache.Add(text, vector)
	return vector, nil
}

// EmbedTexts resolves each text through the cache, batching only the misses.
// Output order matches input order.
func (e *CachingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	var (
		missTexts   []string
		missIndexes []int
	)

	for i, text := range texts {
		if vector, ok := e.cache.Get(text); ok {
			vectors[i] = vector
			continue
		}
		missTexts = append(missTexts, text)
		missIndexes = append(missIndexes, i)
	}

	if len(missTexts) == 0 {
		return vectors, nil
	}

	missed, err := e.inner.EmbedTexts(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	for j, idx := range missIndexes {
		vectors[idx] = missed[j]
		e.cache.Add(missTexts[j], missed[j])
	}

	return vectors, nil
}
