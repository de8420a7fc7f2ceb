package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/firstaid/core"
	"github.com/poiesic/firstaid/storage"
)

// ConversationRepository implements storage.ConversationRepository for BadgerDB.
type ConversationRepository struct {
	backend *Backend
	turnSeq *badger.Sequence
}

var _ storage.ConversationRepository = (*ConversationRepository)(nil)

// NewConversationRepository creates a new ConversationRepository.
func NewConversationRepository(backend *Backend) (*ConversationRepository, error) {
	turnSeq, err := backend.GetSequence(turnIDSeq)
	if err != nil {
		return nil, err
	}

	return &ConversationRepository{
		backend: backend,
		turnSeq: turnSeq,
	}, nil
}

// Close releases the turn sequence.
func (r *ConversationRepository) Close() error {
	return r.turnSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *ConversationRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddConversation stores a new conversation.
func (r *ConversationRepository) AddConversation(ctx context.Context, conv *core.Conversation) (*core.Conversation, error) {
	if conv.ConversationID == "" {
		return nil, core.ErrEmptyConversationID
	}
	if conv.UserID == "" {
		return nil, core.ErrEmptyUserID
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeConversationKey(conv.ConversationID)

		existing, err := r.readConversation(tx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			return storage.ErrDuplicateKey
		}

		if conv.CreatedAt.IsZero() {
			conv.CreatedAt = time.Now().UTC()
		}
		// Serialization stores microseconds; truncate before the value is
		// used in the user index key so reads and deletes agree with it.
		conv.CreatedAt = conv.CreatedAt.Truncate(time.Microsecond)
		if conv.UpdatedAt.IsZero() {
			conv.UpdatedAt = conv.CreatedAt
		}
		conv.UpdatedAt = conv.UpdatedAt.Truncate(time.Microsecond)

		if err := tx.Set(key, storage.MarshalConversation(conv)); err != nil {
			return err
		}

		// Per-user index ordered by creation time
		userKey := makeConversationUserKey(conv.UserID, conv.CreatedAt, conv.ConversationID)
		if err := tx.Set(userKey, []byte(conv.ConversationID)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)

	return conv, err
}

// UpdateConversation updates an existing conversation.
// The user index keys on CreatedAt, which never changes, so only the
// primary record is rewritten.
func (r *ConversationRepository) UpdateConversation(ctx context.Context, conv *core.Conversation) (*core.Conversation, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeConversationKey(conv.ConversationID)

		old, err := r.readConversation(tx, key)
		if err != nil {
			return err
		}
		if old == nil {
			return storage.ErrNotFound
		}

		conv.CreatedAt = old.CreatedAt
		conv.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

		if err := tx.Set(key, storage.MarshalConversation(conv)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return conv, err
}

// GetConversation retrieves a conversation by ID.
func (r *ConversationRepository) GetConversation(ctx context.Context, conversationID string) (*core.Conversation, error) {
	var result *core.Conversation
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeConversationKey(conversationID)
		var err error
		result, err = r.readConversation(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListConversations returns a user's conversations ordered by UpdatedAt
// descending.
func (r *ConversationRepository) ListConversations(ctx context.Context, userID string) ([]*core.Conversation, error) {
	var results []*core.Conversation
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialConversationUserKey(userID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = startKey
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			var conversationID string
			if err := iter.Item().Value(func(val []byte) error {
				conversationID = string(val)
				return nil
			}); err != nil {
				return err
			}

			conv, err := r.readConversation(tx, makeConversationKey(conversationID))
			if err != nil {
				return err
			}
			if conv != nil {
				results = append(results, conv)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.Conversation) int {
		if a.UpdatedAt.After(b.UpdatedAt) {
			return -1
		}
		if a.UpdatedAt.Before(b.UpdatedAt) {
			return 1
		}
		return 0
	})

	return results, nil
}

// CountConversations returns the number of conversations for a user.
func (r *ConversationRepository) CountConversations(ctx context.Context, userID string) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialConversationUserKey(userID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = startKey
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// OldestConversation returns the user's conversation with the earliest
// CreatedAt. The user index sorts by creation time, so the first index
// entry wins.
func (r *ConversationRepository) OldestConversation(ctx context.Context, userID string) (*core.Conversation, error) {
	var result *core.Conversation
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialConversationUserKey(userID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = startKey
		iter := tx.NewIterator(opts)
		defer iter.Close()

		iter.Seek(startKey)
		if !iter.Valid() {
			return storage.ErrNotFound
		}

		var conversationID string
		if err := iter.Item().Value(func(val []byte) error {
			conversationID = string(val)
			return nil
		}); err != nil {
			return err
		}

		var err error
		result, err = r.readConversation(tx, makeConversationKey(conversationID))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// DeleteConversation removes a conversation, its user index entry, and all
// of its turns.
func (r *ConversationRepository) DeleteConversation(ctx context.Context, conversationID string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeConversationKey(conversationID)

		conv, err := r.readConversation(tx, key)
		if err != nil {
			return err
		}
		if conv == nil {
			return storage.ErrNotFound
		}

		userKey := makeConversationUserKey(conv.UserID, conv.CreatedAt, conv.ConversationID)
		if err := tx.Delete(userKey); err != nil {
			return err
		}

		if err := r.deleteTurnsTx(tx, conversationID); err != nil {
			return err
		}

		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// AddTurns appends turns to a conversation's history.
func (r *ConversationRepository) AddTurns(ctx context.Context, turns ...*core.Turn) ([]*core.Turn, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, turn := range turns {
			if err := core.ValidateTurn(turn); err != nil {
				return err
			}
			if turn.Timestamp.IsZero() {
				turn.Timestamp = time.Now().UTC()
			}
			turn.Timestamp = turn.Timestamp.Truncate(time.Microsecond)

			// The sequence disambiguates turns sharing a timestamp.
			seq, err := r.turnSeq.Next()
			if err != nil {
				return err
			}

			key := makeTurnKey(turn.ConversationID, turn.Timestamp, seq)
			if err := tx.Set(key, storage.MarshalTurn(turn)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return turns, err
}

// GetRecentTurns retrieves the N most recent turns of a conversation in
// chronological order.
func (r *ConversationRepository) GetRecentTurns(ctx context.Context, conversationID string, limit int) ([]*core.Turn, error) {
	var results []*core.Turn
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makeTurnPrefix(conversationID)

		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek past every key in the prefix, then walk backwards
		startKey := append(slices.Clone(prefix), 0xff)

		count := 0
		for iter.Seek(startKey); iter.Valid() && count < limit; iter.Next() {
			var turn *core.Turn
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				turn, err = storage.UnmarshalTurn(val)
				return err
			}); err != nil {
				return err
			}
			if turn != nil {
				results = append(results, turn)
				count++
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Reverse iteration yields newest first; callers want chronological order.
	slices.Reverse(results)
	return results, nil
}

// GetTurnsByDateRange retrieves a conversation's turns within a time range.
func (r *ConversationRepository) GetTurnsByDateRange(ctx context.Context, conversationID string, start, end time.Time) ([]*core.Turn, error) {
	if start.Equal(end) {
		end = start.Add(1 * time.Microsecond)
	}

	var results []*core.Turn
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialTurnKey(conversationID, start)
		endKey := makePartialTurnKey(conversationID, end)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeTurnPrefix(conversationID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if slices.Compare(key[:min(len(key), len(endKey))], endKey) >= 0 {
				break
			}

			var turn *core.Turn
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				turn, err = storage.UnmarshalTurn(val)
				return err
			}); err != nil {
				return err
			}
			if turn != nil {
				results = append(results, turn)
			}
		}
		return nil
	}, false)

	return results, err
}

// DeleteTurns removes all turns of a conversation.
func (r *ConversationRepository) DeleteTurns(ctx context.Context, conversationID string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := r.deleteTurnsTx(tx, conversationID); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Helper methods

// readConversation reads a conversation from the transaction.
func (r *ConversationRepository) readConversation(tx *badger.Txn, key []byte) (*core.Conversation, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var conv *core.Conversation
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		conv, unmarshalErr = storage.UnmarshalConversation(val)
		return unmarshalErr
	})
	return conv, err
}

// deleteTurnsTx removes all turn keys for a conversation within tx.
func (r *ConversationRepository) deleteTurnsTx(tx *badger.Txn, conversationID string) error {
	prefix := makeTurnPrefix(conversationID)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)

	var keys [][]byte
	for iter.Rewind(); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	iter.Close()

	for _, key := range keys {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
