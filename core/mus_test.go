package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkMUS_RoundTrip(t *testing.T) {
	chunk := Chunk{
		ID:         IDFromContent("press firmly on the wound"),
		Text:       "Apply firm, continuous pressure with a clean cloth.",
		Title:      "Severe Bleeding",
		Category:   "Bleeding",
		Severity:   "critical",
		Source:     "Red Cross|first-aid-guide",
		ScenarioID: "bleeding_01",
		Vector:     []float32{0.1, -0.5, 0.8},
		InsertedAt: time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}

	bs := make([]byte, ChunkMUS.Size(chunk))
	n := ChunkMUS.Marshal(chunk, bs)
	require.Equal(t, len(bs), n)

	got, n, err := ChunkMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, len(bs), n)
	assert.Equal(t, chunk, got)
}

func TestChunkMUS_EmptyVector(t *testing.T) {
	chunk := Chunk{
		ID:   42,
		Text: "unembedded chunk",
	}

	bs := make([]byte, ChunkMUS.Size(chunk))
	ChunkMUS.Marshal(chunk, bs)

	got, _, err := ChunkMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Empty(t, got.Vector)
	assert.Equal(t, chunk.Text, got.Text)
}

func TestConversationMUS_RoundTrip(t *testing.T) {
	conv := Conversation{
		ConversationID: "conv_abc123def456",
		UserID:         "user_0011223344",
		Title:          "What should I do for severe bleeding?",
		LastQuery:      "what about a tourniquet",
		MessageCount:   6,
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}

	bs := make([]byte, ConversationMUS.Size(conv))
	n := ConversationMUS.Marshal(conv, bs)
	require.Equal(t, len(bs), n)

	got, _, err := ConversationMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, conv, got)
}

func TestTurnMUS_RoundTrip(t *testing.T) {
	turn := Turn{
		ConversationID: "conv_abc123def456",
		Role:           RoleAssistant,
		Content:        "Call emergency services immediately.",
		Timestamp:      time.Now().UTC().Truncate(time.Microsecond),
	}

	bs := make([]byte, TurnMUS.Size(turn))
	n := TurnMUS.Marshal(turn, bs)
	require.Equal(t, len(bs), n)

	got, _, err := TurnMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, turn, got)
}

func TestMUS_TruncatedData(t *testing.T) {
	chunk := Chunk{ID: 7, Text: "some chunk text", Title: "Burns"}
	bs := make([]byte, ChunkMUS.Size(chunk))
	ChunkMUS.Marshal(chunk, bs)

	_, _, err := ChunkMUS.Unmarshal(bs[:3])
	assert.Error(t, err)
}
