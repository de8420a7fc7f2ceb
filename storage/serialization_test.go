package storage

import (
	"testing"
	"time"

	"github.com/poiesic/firstaid/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkRoundTrip(t *testing.T) {
	chunk := &core.Chunk{
		ID:         core.IDFromContent("pressure on wound"),
		Text:       "Apply firm, direct pressure to the wound.",
		Title:      "Severe Bleeding",
		Category:   "bleeding",
		Severity:   "high",
		Source:     "IFRC 2020",
		ScenarioID: "bleeding-01",
		Vector:     []float32{0.1, -0.5, 0.8},
		InsertedAt: time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}

	data := MarshalChunk(chunk)
	decoded, err := UnmarshalChunk(data)
	require.NoError(t, err)
	assert.Equal(t, chunk, decoded)
}

func TestConversationRoundTrip(t *testing.T) {
	conv := &core.Conversation{
		ConversationID: "conv_abc123def456",
		UserID:         "user-7",
		Title:          "What to do for a burn",
		LastQuery:      "second degree burn on hand",
		MessageCount:   6,
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}

	data := MarshalConversation(conv)
	decoded, err := UnmarshalConversation(data)
	require.NoError(t, err)
	assert.Equal(t, conv, decoded)
}

func TestTurnRoundTrip(t *testing.T) {
	turn := &core.Turn{
		ConversationID: "conv_abc123def456",
		Role:           core.RoleAssistant,
		Content:        "Cool the burn under running water for 20 minutes.",
		Timestamp:      time.Now().UTC().Truncate(time.Microsecond),
	}

	data := MarshalTurn(turn)
	decoded, err := UnmarshalTurn(data)
	require.NoError(t, err)
	assert.Equal(t, turn, decoded)
}

func TestUnmarshalTruncated(t *testing.T) {
	chunk := &core.Chunk{Text: "some text"}
	data := MarshalChunk(chunk)

	_, err := UnmarshalChunk(data[:len(data)-1])
	assert.Error(t, err)
}

func TestIDRoundTrip(t *testing.T) {
	id := core.ID(0xDEADBEEF)
	decoded, err := UnmarshalID(MarshalID(id))
	require.NoError(t, err)
	assert.Equal(t, id, decoded)
}
