package reindex

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/firstaid/ai/mock"
	"github.com/poiesic/firstaid/core"
)

func TestBatchProcessor_Process(t *testing.T) {
	repo := setupTestRepo(t)
	chunks := seedTestChunks(t, repo, 4)

	embedder := mock.NewMockEmbedder()
	bp := NewBatchProcessor(repo, embedder, 3, 10*time.Millisecond)

	err := bp.Process(context.Background(), chunks)
	require.NoError(t, err)

	for _, chunk := range chunks {
		updated, err := repo.GetChunk(context.Background(), chunk.ID)
		require.NoError(t, err)
		require.NotEmpty(t, updated.Vector)

		var magnitude float64
		for _, v := range updated.Vector {
			magnitude += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(magnitude), 0.001, "vector should be unit length")
	}
}

func TestBatchProcessor_RetriesTransientFailures(t *testing.T) {
	repo := setupTestRepo(t)
	chunks := seedTestChunks(t, repo, 2)

	attempts := 0
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("rate limited")
		}
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = []float32{1, 0, 0}
		}
		return vectors, nil
	}

	bp := NewBatchProcessor(repo, embedder, 5, time.Millisecond)
	err := bp.Process(context.Background(), chunks)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestBatchProcessor_CountMismatch(t *testing.T) {
	repo := setupTestRepo(t)
	chunks := seedTestChunks(t, repo, 3)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0}}, nil
	}

	bp := NewBatchProcessor(repo, embedder, 1, time.Millisecond)
	err := bp.Process(context.Background(), chunks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding count mismatch")
}

func TestBatchProcessor_EmptyBatch(t *testing.T) {
	repo := setupTestRepo(t)

	embedder := mock.NewMockEmbedder()
	bp := NewBatchProcessor(repo, embedder, 3, time.Millisecond)

	err := bp.Process(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, embedder.CallCount(), "embedder should not be called for an empty batch")

	err = bp.Process(context.Background(), []*core.Chunk{})
	require.NoError(t, err)
	assert.Zero(t, embedder.CallCount())
}
