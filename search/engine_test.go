package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/firstaid/ai/mock"
	"github.com/poiesic/firstaid/core"
	"github.com/poiesic/firstaid/storage/badger"
)

// vectorTable routes known queries to fixed vectors so tests control
// exactly which chunks each stage can reach.
func vectorTable(vectors map[string][]float32, fallback []float32) func(ctx context.Context, text string) ([]float32, error) {
	return func(ctx context.Context, text string) ([]float32, error) {
		if v, ok := vectors[text]; ok {
			return v, nil
		}
		return fallback, nil
	}
}

func newTestEngine(t *testing.T, embedText func(ctx context.Context, text string) ([]float32, error)) *Engine {
	t.Helper()

	chunkRepo, convRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = embedText
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockGenerator())

	engine, err := NewEngine(chunkRepo, provider)
	require.NoError(t, err)

	t.Cleanup(func() {
		engine.Close()
		convRepo.Close()
		chunkRepo.Close()
		backend.Close()
	})
	return engine
}

func seedChunks(t *testing.T, engine *Engine, chunks ...*core.Chunk) {
	t.Helper()
	_, err := engine.chunkRepository.AddChunks(context.Background(), chunks...)
	require.NoError(t, err)
}

func TestSearchPrimaryStage(t *testing.T) {
	engine := newTestEngine(t, vectorTable(nil, []float32{1, 0, 0}))

	seedChunks(t, engine,
		&core.Chunk{Text: "Apply direct pressure to the wound.", Vector: []float32{1, 0, 0}},
		&core.Chunk{Text: "Cool the burn under running water.", Vector: []float32{0.9, 0.1, 0}},
		&core.Chunk{Text: "Unrelated guidance about sprains.", Vector: []float32{0, 1, 0}},
	)

	result, err := engine.Search(context.Background(), "How do I stop the bleeding?", DefaultTopK, DefaultMinScore)
	require.NoError(t, err)
	require.NotEmpty(t, result.Candidates)

	assert.Equal(t, "Apply direct pressure to the wound.", result.Candidates[0].Chunk.Text)
	assert.Equal(t, core.MethodSemanticOriginal, result.Candidates[0].Method)
	for _, c := range result.Candidates {
		assert.GreaterOrEqual(t, c.Score, float32(DefaultMinScore))
	}

	// The original query is always variant zero
	require.NotEmpty(t, result.Variants)
	assert.Equal(t, "how do i stop the bleeding", result.Variants[0])
	assert.Contains(t, result.Keywords, "bleeding")
}

func TestSearchDeduplicatesAcrossStages(t *testing.T) {
	// Every query variant maps to the same vector, so the expansion stage
	// re-finds the primary stage's chunks.
	engine := newTestEngine(t, vectorTable(nil, []float32{1, 0, 0}))

	seedChunks(t, engine,
		&core.Chunk{Text: "Press firmly on the bleeding wound.", Vector: []float32{1, 0, 0}},
		&core.Chunk{Text: "Elevate the injured limb.", Vector: []float32{0.95, 0, 0}},
		&core.Chunk{Text: "Call for help if bleeding does not stop.", Vector: []float32{0.9, 0, 0}},
	)

	result, err := engine.Search(context.Background(), "severe bleeding", DefaultTopK, DefaultMinScore)
	require.NoError(t, err)

	seen := make(map[core.ID]bool)
	for _, c := range result.Candidates {
		assert.False(t, seen[c.Chunk.ID], "duplicate chunk %d", c.Chunk.ID)
		seen[c.Chunk.ID] = true
		// First stage wins on method attribution
		assert.Equal(t, core.MethodSemanticOriginal, c.Method)
	}
	assert.Len(t, result.Candidates, 3)
}

func TestSearchExpansionFindsExtraChunks(t *testing.T) {
	// The original query sees nothing; only the hemorrhage variant maps to
	// the stored chunk's axis.
	vectors := map[string][]float32{
		"severe hemorrhage": {0, 1, 0},
	}
	engine := newTestEngine(t, vectorTable(vectors, []float32{1, 0, 0}))

	seedChunks(t, engine,
		&core.Chunk{Text: "Pack the wound and maintain pressure.", Vector: []float32{0, 1, 0}},
	)

	result, err := engine.Search(context.Background(), "severe bleeding", DefaultTopK, DefaultMinScore)
	require.NoError(t, err)
	require.NotEmpty(t, result.Candidates)

	assert.Equal(t, core.MethodSemanticExpanded, result.Candidates[0].Method)
}

func TestSearchKeywordFallback(t *testing.T) {
	// No vectors align, but the query keywords appear in stored text.
	engine := newTestEngine(t, vectorTable(nil, []float32{0, 0, 1}))

	seedChunks(t, engine,
		&core.Chunk{Text: "For a jellyfish sting, rinse with vinegar.", Vector: []float32{1, 0, 0}},
		&core.Chunk{Text: "Treat frostbite by warming gradually.", Vector: []float32{0, 1, 0}},
	)

	result, err := engine.Search(context.Background(), "jellyfish sting remedy", DefaultTopK, DefaultMinScore)
	require.NoError(t, err)
	require.NotEmpty(t, result.Candidates)

	assert.Equal(t, core.MethodKeywordFallback, result.Candidates[0].Method)
	assert.Equal(t, float32(KeywordFallbackScore), result.Candidates[0].Score)
}

func TestSearchSecondChanceRelaxedThreshold(t *testing.T) {
	// Similarity 0.5 fails the 0.60 threshold but passes the relaxed one.
	engine := newTestEngine(t, vectorTable(nil, []float32{1, 0, 0}))

	seedChunks(t, engine,
		&core.Chunk{Text: "Keep calm and monitor symptoms.", Vector: []float32{0.5, 0.866, 0}},
	)

	result, err := engine.Search(context.Background(), "zzz qqq", DefaultTopK, DefaultMinScore)
	require.NoError(t, err)
	require.Len(t, result.Candidates, 1)

	assert.Equal(t, core.MethodSemanticExpandedFinal, result.Candidates[0].Method)
	assert.InDelta(t, 0.5, float64(result.Candidates[0].Score), 0.001)
}

func TestSearchEmptyQuery(t *testing.T) {
	engine := newTestEngine(t, vectorTable(nil, []float32{1, 0, 0}))

	_, err := engine.Search(context.Background(), "   ", DefaultTopK, DefaultMinScore)
	assert.ErrorIs(t, err, core.ErrEmptyQuery)
}

func TestSearchContextCancelled(t *testing.T) {
	engine := newTestEngine(t, vectorTable(nil, []float32{1, 0, 0}))

	seedChunks(t, engine,
		&core.Chunk{Text: "Some guidance.", Vector: []float32{1, 0, 0}},
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Search(ctx, "bleeding", DefaultTopK, DefaultMinScore)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearchTruncatesToTopK(t *testing.T) {
	engine := newTestEngine(t, vectorTable(nil, []float32{1, 0, 0}))

	texts := []string{
		"Guidance one.", "Guidance two.", "Guidance three.",
		"Guidance four.", "Guidance five.", "Guidance six.",
	}
	chunks := make([]*core.Chunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, &core.Chunk{
			Text:   text,
			Vector: []float32{1 - float32(i)*0.01, 0, 0},
		})
	}
	seedChunks(t, engine, chunks...)

	result, err := engine.Search(context.Background(), "anything at all", 4, 0.5)
	require.NoError(t, err)
	assert.Len(t, result.Candidates, 4)

	// Ordered by score descending
	for i := 1; i < len(result.Candidates); i++ {
		assert.GreaterOrEqual(t, result.Candidates[i-1].Score, result.Candidates[i].Score)
	}
}

type recordingMonitor struct {
	started  bool
	primary  []uint64
	variants []string
	fallback []uint64
	final    []uint64
	finished int
}

func (m *recordingMonitor) Start(_ string)                  { m.started = true }
func (m *recordingMonitor) AfterPrimarySearch(ids []uint64) { m.primary = ids }
func (m *recordingMonitor) AfterExpansionSearch(variant string, _ []uint64) {
	m.variants = append(m.variants, variant)
}
func (m *recordingMonitor) AfterKeywordFallback(ids []uint64) { m.fallback = ids }
func (m *recordingMonitor) AfterSecondChance(ids []uint64)    { m.final = ids }
func (m *recordingMonitor) Finish(results []*core.Candidate)  { m.finished = len(results) }

func TestSearchMonitorCallbacks(t *testing.T) {
	engine := newTestEngine(t, vectorTable(nil, []float32{1, 0, 0}))

	seedChunks(t, engine,
		&core.Chunk{Text: "Apply pressure to stop the bleeding.", Vector: []float32{1, 0, 0}},
	)

	monitor := &recordingMonitor{}
	result, err := engine.SearchWithMonitor(context.Background(), "severe bleeding", DefaultTopK, DefaultMinScore, monitor)
	require.NoError(t, err)

	assert.True(t, monitor.started)
	assert.Len(t, monitor.primary, 1)
	assert.NotEmpty(t, monitor.variants)
	assert.Equal(t, len(result.Candidates), monitor.finished)
}
