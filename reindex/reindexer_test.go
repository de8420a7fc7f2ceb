package reindex

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/firstaid/ai/mock"
)

func TestReindexer_Run(t *testing.T) {
	repo := setupTestRepo(t)
	seedTestChunks(t, repo, 10)

	var buf bytes.Buffer
	embedder := mock.NewMockEmbedder()
	config := &Config{
		BatchSize:      3,
		Workers:        2,
		ReportInterval: 3,
		MaxRetries:     3,
		RetryDelay:     10 * time.Millisecond,
	}

	reindexer := NewReindexer(repo, embedder, config, &buf)
	err := reindexer.Run(context.Background())
	require.NoError(t, err)

	ids, err := repo.ListChunkIDs(context.Background())
	require.NoError(t, err)
	require.Len(t, ids, 10)

	chunks, err := repo.GetChunks(context.Background(), ids...)
	require.NoError(t, err)
	for _, chunk := range chunks {
		require.NotEmpty(t, chunk.Vector, "chunk %d should have an embedding", chunk.ID)

		var magnitude float64
		for _, v := range chunk.Vector {
			magnitude += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(magnitude), 0.001, "vector should be normalized")
	}

	output := buf.String()
	assert.Contains(t, output, "Starting reindexing of 10 chunks")
	assert.Contains(t, output, "Reindexing complete")
}

func TestReindexer_EmptyDatabase(t *testing.T) {
	repo := setupTestRepo(t)

	var buf bytes.Buffer
	embedder := mock.NewMockEmbedder()

	reindexer := NewReindexer(repo, embedder, nil, &buf)
	err := reindexer.Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "No chunks found")
	assert.Zero(t, embedder.CallCount())
}

func TestReindexer_BatchFailureAborts(t *testing.T) {
	repo := setupTestRepo(t)
	seedTestChunks(t, repo, 5)

	var buf bytes.Buffer
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("provider unavailable")
	}

	config := &Config{
		BatchSize:      2,
		Workers:        1,
		ReportInterval: 2,
		MaxRetries:     1,
		RetryDelay:     time.Millisecond,
	}

	reindexer := NewReindexer(repo, embedder, config, &buf)
	err := reindexer.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to process batch")
}

func TestReindexer_ContextCanceled(t *testing.T) {
	repo := setupTestRepo(t)
	seedTestChunks(t, repo, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	reindexer := NewReindexer(repo, mock.NewMockEmbedder(), nil, &buf)
	err := reindexer.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, 100, config.BatchSize)
	assert.Equal(t, 2, config.Workers)
	assert.Equal(t, 100, config.ReportInterval)
	assert.Equal(t, 3, config.MaxRetries)
	assert.Equal(t, time.Second, config.RetryDelay)
}
