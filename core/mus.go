package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the types persisted in BadgerDB.
// Field order is part of the storage format; append new fields at the end.

// IDMUS serializes an ID.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

// ChunkMUS serializes a Chunk.
var ChunkMUS = chunkMUS{}

type chunkMUS struct{}

func (chunkMUS) Size(c Chunk) (size int) {
	size = varint.Uint64.Size(uint64(c.ID))
	size += ord.String.Size(c.Text)
	size += ord.String.Size(c.Title)
	size += ord.String.Size(c.Category)
	size += ord.String.Size(c.Severity)
	size += ord.String.Size(c.Source)
	size += ord.String.Size(c.ScenarioID)
	size += sizeVector(c.Vector)
	size += sizeTime(c.InsertedAt)
	size += sizeTime(c.UpdatedAt)
	return
}

func (chunkMUS) Marshal(c Chunk, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(c.ID), bs)
	n += ord.String.Marshal(c.Text, bs[n:])
	n += ord.String.Marshal(c.Title, bs[n:])
	n += ord.String.Marshal(c.Category, bs[n:])
	n += ord.String.Marshal(c.Severity, bs[n:])
	n += ord.String.Marshal(c.Source, bs[n:])
	n += ord.String.Marshal(c.ScenarioID, bs[n:])
	n += marshalVector(c.Vector, bs[n:])
	n += marshalTime(c.InsertedAt, bs[n:])
	n += marshalTime(c.UpdatedAt, bs[n:])
	return
}

func (chunkMUS) Unmarshal(bs []byte) (c Chunk, n int, err error) {
	var (
		id uint64
		n1 int
	)
	id, n, err = varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	c.ID = ID(id)
	if c.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Category, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Severity, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Source, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.ScenarioID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Vector, n1, err = unmarshalVector(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.InsertedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.UpdatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

// ConversationMUS serializes a Conversation.
var ConversationMUS = conversationMUS{}

type conversationMUS struct{}

func (conversationMUS) Size(c Conversation) (size int) {
	size = ord.String.Size(c.ConversationID)
	size += ord.String.Size(c.UserID)
	size += ord.String.Size(c.Title)
	size += ord.String.Size(c.LastQuery)
	size += varint.Int.Size(c.MessageCount)
	size += sizeTime(c.CreatedAt)
	size += sizeTime(c.UpdatedAt)
	return
}

func (conversationMUS) Marshal(c Conversation, bs []byte) (n int) {
	n = ord.String.Marshal(c.ConversationID, bs)
	n += ord.String.Marshal(c.UserID, bs[n:])
	n += ord.String.Marshal(c.Title, bs[n:])
	n += ord.String.Marshal(c.LastQuery, bs[n:])
	n += varint.Int.Marshal(c.MessageCount, bs[n:])
	n += marshalTime(c.CreatedAt, bs[n:])
	n += marshalTime(c.UpdatedAt, bs[n:])
	return
}

func (conversationMUS) Unmarshal(bs []byte) (c Conversation, n int, err error) {
	var n1 int
	if c.ConversationID, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if c.UserID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.LastQuery, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.MessageCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.CreatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.UpdatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

// TurnMUS serializes a conversation Turn.
var TurnMUS = turnMUS{}

type turnMUS struct{}

func (turnMUS) Size(t Turn) (size int) {
	size = ord.String.Size(t.ConversationID)
	size += ord.String.Size(string(t.Role))
	size += ord.String.Size(t.Content)
	size += sizeTime(t.Timestamp)
	return
}

func (turnMUS) Marshal(t Turn, bs []byte) (n int) {
	n = ord.String.Marshal(t.ConversationID, bs)
	n += ord.String.Marshal(string(t.Role), bs[n:])
	n += ord.String.Marshal(t.Content, bs[n:])
	n += marshalTime(t.Timestamp, bs[n:])
	return
}

func (turnMUS) Unmarshal(bs []byte) (t Turn, n int, err error) {
	var (
		role string
		n1   int
	)
	if t.ConversationID, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if role, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	t.Role = Role(role)
	n += n1
	if t.Content, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if t.Timestamp, n1, err = unmarshalTime(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

// Timestamps are stored as microseconds since the Unix epoch.

func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	micro, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micro).UTC(), n, nil
}

// Vectors are stored as a varint length followed by fixed-width floats.

func sizeVector(v []float32) int {
	return varint.Int.Size(len(v)) + len(v)*raw.Float32.Size(0)
}

func marshalVector(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, val := range v {
		n += raw.Float32.Marshal(val, bs[n:])
	}
	return
}

func unmarshalVector(bs []byte) (v []float32, n int, err error) {
	var length int
	length, n, err = varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return
	}
	v = make([]float32, length)
	var n1 int
	for i := 0; i < length; i++ {
		if v[i], n1, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
			return
		}
		n += n1
	}
	return
}
