package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/firstaid/core"
)

// Key prefixes for different data types
const (
	chunkRecordPrefix  = "chunk"
	chunkKeywordPrefix = "chukw"
	convRecordPrefix   = "conv"
	convUserPrefix     = "convu"
	turnRecordPrefix   = "turn"
	turnIDSeq          = "turnseq"
)

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkRecordPrefix, id))
}

// makeChunkKeywordKey generates a composite key for the keyword index.
// Format: prefix:token:id
func makeChunkKeywordKey(token string, id core.ID) []byte {
	prefix := chunkKeywordPrefix + ":" + token + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialChunkKeywordKey generates a partial key for keyword lookups.
// Format: prefix:token
func makePartialChunkKeywordKey(token string) []byte {
	return []byte(chunkKeywordPrefix + ":" + token + ":")
}

// makeConversationKey generates a key for a conversation by ID.
func makeConversationKey(conversationID string) []byte {
	return []byte(convRecordPrefix + ":" + conversationID)
}

// makeConversationUserKey generates a composite key for the per-user
// conversation index.
// Format: prefix:userID:createdAt:conversationID
func makeConversationUserKey(userID string, createdAt time.Time, conversationID string) []byte {
	prefix := convUserPrefix + ":" + userID + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8+len(conversationID))
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro()))
	offset += 8
	copy(buf[offset:], []byte(conversationID))
	return buf
}

// makePartialConversationUserKey generates a partial key for listing a
// user's conversations.
func makePartialConversationUserKey(userID string) []byte {
	return []byte(convUserPrefix + ":" + userID + ":")
}

// makeTurnKey generates a composite key for a conversation turn.
// Format: prefix:conversationID:timestamp:seq
func makeTurnKey(conversationID string, timestamp time.Time, seq uint64) []byte {
	prefix := turnRecordPrefix + ":" + conversationID + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+16)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makePartialTurnKey generates a partial key for turn range queries.
// Format: prefix:conversationID:timestamp
func makePartialTurnKey(conversationID string, timestamp time.Time) []byte {
	prefix := turnRecordPrefix + ":" + conversationID + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}

// makeTurnPrefix generates the key prefix covering all turns of a conversation.
func makeTurnPrefix(conversationID string) []byte {
	return []byte(turnRecordPrefix + ":" + conversationID + ":")
}
