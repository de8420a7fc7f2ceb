package search

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/firstaid/ai"
	"github.com/poiesic/firstaid/core"
	"github.com/poiesic/firstaid/query"
	"github.com/poiesic/firstaid/storage"
)

const (
	// DefaultTopK is the default number of candidates returned by a search.
	DefaultTopK = 10

	// DefaultMinScore is the default similarity threshold for semantic stages.
	DefaultMinScore = 0.60

	// KeywordFallbackScore is the fixed relevance assigned to keyword
	// fallback hits. It sits above DefaultMinScore so fallback hits survive
	// downstream confidence filtering.
	KeywordFallbackScore = 0.65

	// MinCandidates is the unique-candidate count below which the keyword
	// fallback stage runs.
	MinCandidates = 3

	// secondChanceMinScore relaxes the similarity threshold for the final
	// re-query stage.
	secondChanceMinScore = 0.45

	// stageTimeout caps one embed-and-search call. Expiry degrades the
	// stage to an empty result.
	stageTimeout = 10 * time.Second

	// expansionTopK bounds per-variant results in the expansion stages.
	expansionTopK = 5

	// maxQueryExpansions bounds the number of query variants, original
	// included.
	maxQueryExpansions = 5

	defaultPoolSize = 4
)

// Result holds the output of one retrieval call.
type Result struct {
	// Candidates are unique by chunk ID, ordered by score descending.
	Candidates []*core.Candidate
	// Keywords extracted from the original query, as used by the keyword
	// fallback stage and the reranker.
	Keywords []string
	// Variants are the expanded query variations, original first.
	Variants []string
}

// Engine runs the staged hybrid retrieval pipeline: a primary semantic
// search, parallel searches over expanded query variants, a keyword
// fallback when semantic recall is thin, and a relaxed second-chance
// re-query when everything else came back empty.
type Engine struct {
	chunkRepository storage.ChunkRepository
	embedder        ai.Embedder
	processor       *query.Processor
	pool            *ants.Pool
	logger          *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithProcessor sets a custom query processor.
func WithProcessor(processor *query.Processor) Option {
	return func(e *Engine) error {
		if processor == nil {
			return ErrProcessorRequired
		}
		e.processor = processor
		return nil
	}
}

// NewEngine creates a new retrieval engine.
func NewEngine(
	chunkRepository storage.ChunkRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Engine, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	pool, err := ants.NewPool(defaultPoolSize)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		chunkRepository: chunkRepository,
		embedder:        provider.Embedder(),
		processor:       query.NewProcessor(),
		pool:            pool,
		logger:          slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			pool.Release()
			return nil, err
		}
	}

	return e, nil
}

// Close releases the worker pool.
func (e *Engine) Close() error {
	e.pool.Release()
	return nil
}

// Processor returns the engine's query processor.
func (e *Engine) Processor() *query.Processor {
	return e.processor
}

// Search retrieves up to topK candidate chunks for the query.
// Candidates are deduplicated by chunk ID (the first stage to produce a
// chunk wins) and ordered by score descending.
func (e *Engine) Search(ctx context.Context, rawQuery string, topK int, minScore float32) (*Result, error) {
	return e.SearchWithMonitor(ctx, rawQuery, topK, minScore, nil)
}

// SearchWithMonitor retrieves candidates with stage-by-stage monitoring.
//
// Individual stage failures degrade to empty results rather than failing
// the search; only context cancellation and invalid input abort it.
func (e *Engine) SearchWithMonitor(ctx context.Context, rawQuery string, topK int, minScore float32, monitor Monitor) (*Result, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	normalized := e.processor.Preprocess(rawQuery)
	if err := core.ValidateQuery(normalized); err != nil {
		return nil, err
	}

	monitor.Start(normalized)

	variants := e.processor.Expand(normalized, maxQueryExpansions)
	keywords := e.processor.Keywords(rawQuery)

	acc := newAccumulator()

	// Stage 1: semantic search on the original query
	primary := e.semanticStage(ctx, normalized, minScore, topK)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	monitor.AfterPrimarySearch(acc.addAll(primary, core.MethodSemanticOriginal))

	// Stage 2: semantic search on expanded variants, in parallel
	expansions := variants[1:]
	for variant, matches := range e.variantStage(ctx, expansions, minScore) {
		monitor.AfterExpansionSearch(variant, acc.addAll(matches, core.MethodSemanticExpanded))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: keyword fallback when semantic recall is thin
	if acc.len() < MinCandidates {
		matches := e.keywordStage(ctx, keywords, topK)
		monitor.AfterKeywordFallback(acc.addAll(matches, core.MethodKeywordFallback))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 4: relaxed re-query of the variants when nothing matched at all
	if acc.len() == 0 {
		requeries := expansions
		if len(requeries) == 0 {
			requeries = []string{normalized}
		}
		for _, matches := range e.variantStage(ctx, requeries, secondChanceMinScore) {
			monitor.AfterSecondChance(acc.addAll(matches, core.MethodSemanticExpandedFinal))
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates := acc.sorted()
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	monitor.Finish(candidates)

	return &Result{
		Candidates: candidates,
		Keywords:   keywords,
		Variants:   variants,
	}, nil
}

// semanticStage embeds the query and runs a vector search. Errors degrade
// to an empty result.
func (e *Engine) semanticStage(ctx context.Context, q string, minScore float32, limit int) []*core.ScoredChunk {
	ctx, cancel := context.WithTimeout(ctx, stageTimeout)
	defer cancel()

	vector, err := e.embedder.EmbedText(ctx, q)
	if err != nil {
		e.logger.Warn("embedding failed, skipping semantic stage", "query", q, "err", err)
		return nil
	}

	matches, err := e.chunkRepository.FindSimilar(ctx, vector, minScore, limit)
	if err != nil {
		e.logger.Warn("vector search failed, skipping semantic stage", "query", q, "err", err)
		return nil
	}
	return matches
}

// variantStage runs semantic searches for each variant on the worker pool.
// Results come back keyed by variant, in variant order, so merging stays
// deterministic.
func (e *Engine) variantStage(ctx context.Context, variants []string, minScore float32) func(yield func(string, []*core.ScoredChunk) bool) {
	results := make([][]*core.ScoredChunk, len(variants))

	var wg sync.WaitGroup
	for i, variant := range variants {
		wg.Add(1)
		err := e.pool.Submit(func() {
			defer wg.Done()
			results[i] = e.semanticStage(ctx, variant, minScore, expansionTopK)
		})
		if err != nil {
			// Pool saturated or released; run inline rather than drop the variant
			e.logger.Warn("pool submit failed, running variant inline", "err", err)
			results[i] = e.semanticStage(ctx, variant, minScore, expansionTopK)
			wg.Done()
		}
	}
	wg.Wait()

	return func(yield func(string, []*core.ScoredChunk) bool) {
		for i, variant := range variants {
			if !yield(variant, results[i]) {
				return
			}
		}
	}
}

// keywordStage runs the inverted-index text search. Errors degrade to an
// empty result. Hits carry the fixed fallback score.
func (e *Engine) keywordStage(ctx context.Context, keywords []string, limit int) []*core.ScoredChunk {
	if len(keywords) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, stageTimeout)
	defer cancel()

	matches, err := e.chunkRepository.SearchText(ctx, keywords, limit)
	if err != nil {
		e.logger.Warn("keyword search failed, skipping fallback stage", "err", err)
		return nil
	}

	for _, match := range matches {
		match.Score = KeywordFallbackScore
	}
	return matches
}

// accumulator collects candidates across stages, deduplicating by chunk ID.
// The first stage to produce a chunk wins.
type accumulator struct {
	seen       map[core.ID]bool
	candidates []*core.Candidate
}

func newAccumulator() *accumulator {
	return &accumulator{
		seen: make(map[core.ID]bool),
	}
}

// addAll inserts matches tagged with the given method and returns the IDs
// that were actually added.
func (a *accumulator) addAll(matches []*core.ScoredChunk, method core.SearchMethod) []uint64 {
	added := make([]uint64, 0, len(matches))
	for _, match := range matches {
		if a.seen[match.Chunk.ID] {
			continue
		}
		a.seen[match.Chunk.ID] = true
		a.candidates = append(a.candidates, &core.Candidate{
			Chunk:  match.Chunk,
			Score:  match.Score,
			Method: method,
		})
		added = append(added, uint64(match.Chunk.ID))
	}
	return added
}

func (a *accumulator) len() int {
	return len(a.candidates)
}

// sorted returns candidates ordered by score descending. Ties keep
// insertion order.
func (a *accumulator) sorted() []*core.Candidate {
	results := slices.Clone(a.candidates)
	slices.SortStableFunc(results, func(x, y *core.Candidate) int {
		if x.Score > y.Score {
			return -1
		}
		if x.Score < y.Score {
			return 1
		}
		return 0
	})
	return results
}
