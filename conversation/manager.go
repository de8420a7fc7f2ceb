package conversation

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/poiesic/firstaid/core"
	"github.com/poiesic/firstaid/storage"
)

const (
	// MaxPerUser is the conversation cap per user. Creating a conversation
	// past the cap evicts the user's oldest conversation by CreatedAt,
	// turns included.
	MaxPerUser = 10

	// DefaultHistoryLimit is the default turn window loaded for prompting.
	DefaultHistoryLimit = 6

	// titleLimit bounds auto-generated conversation titles.
	titleLimit = 50
)

// Manager coordinates conversation lifecycle on top of the repository.
// Eviction-then-insert is serialized per user so concurrent queries cannot
// push a user past the cap.
type Manager struct {
	repository storage.ConversationRepository
	logger     *slog.Logger

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
	}
}

// NewManager creates a conversation manager.
func NewManager(repository storage.ConversationRepository, opts ...Option) (*Manager, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}

	m := &Manager{
		repository: repository,
		logger:     slog.Default(),
		users:      make(map[string]*sync.Mutex),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// NewConversationID generates a fresh conversation identifier.
func NewConversationID() string {
	id := uuid.New()
	return "conv_" + hex.EncodeToString(id[:])[:12]
}

// LoadHistory returns the most recent limit turns of a conversation in
// chronological order. A missing conversation yields an empty history.
func (m *Manager) LoadHistory(ctx context.Context, conversationID string, limit int) ([]*core.Turn, error) {
	if conversationID == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return m.repository.GetRecentTurns(ctx, conversationID, limit)
}

// EnsureConversation creates the conversation if it does not exist, or
// records the latest query against it if it does. Creation past the
// per-user cap evicts the user's oldest conversation first.
func (m *Manager) EnsureConversation(ctx context.Context, userID, conversationID, query string) error {
	existing, err := m.repository.GetConversation(ctx, conversationID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	if existing != nil {
		existing.LastQuery = query
		existing.MessageCount += 2
		_, err := m.repository.UpdateConversation(ctx, existing)
		return err
	}

	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	return m.repository.WithTransaction(ctx, func(ctx context.Context) error {
		count, err := m.repository.CountConversations(ctx, userID)
		if err != nil {
			return err
		}

		for count >= MaxPerUser {
			oldest, err := m.repository.OldestConversation(ctx, userID)
			if err != nil {
				return err
			}
			m.logger.Info("evicting oldest conversation",
				"userID", userID, "conversationID", oldest.ConversationID)
			if err := m.repository.DeleteConversation(ctx, oldest.ConversationID); err != nil {
				return err
			}
			count--
		}

		_, err = m.repository.AddConversation(ctx, &core.Conversation{
			ConversationID: conversationID,
			UserID:         userID,
			Title:          titleFromQuery(query),
			LastQuery:      query,
			MessageCount:   2,
		})
		return err
	})
}

// AppendTurns appends turns to their conversations.
func (m *Manager) AppendTurns(ctx context.Context, turns ...*core.Turn) error {
	_, err := m.repository.AddTurns(ctx, turns...)
	return err
}

// ListConversations returns up to limit of the user's conversations, most
// recently active first. limit <= 0 means no limit.
func (m *Manager) ListConversations(ctx context.Context, userID string, limit int) ([]*core.Conversation, error) {
	convs, err := m.repository.ListConversations(ctx, userID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(convs) > limit {
		convs = convs[:limit]
	}
	return convs, nil
}

// DeleteConversation removes a conversation and its turns.
func (m *Manager) DeleteConversation(ctx context.Context, conversationID string) error {
	return m.repository.DeleteConversation(ctx, conversationID)
}

// RenameConversation sets a conversation's title.
func (m *Manager) RenameConversation(ctx context.Context, conversationID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}

	conv, err := m.repository.GetConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	conv.Title = title
	_, err = m.repository.UpdateConversation(ctx, conv)
	return err
}

// userLock returns the mutex serializing conversation creation for a user.
func (m *Manager) userLock(userID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.users[userID]
	if !ok {
		lock = &sync.Mutex{}
		m.users[userID] = lock
	}
	return lock
}

// titleFromQuery derives a display title from the first query.
func titleFromQuery(query string) string {
	query = strings.TrimSpace(query)
	if len(query) <= titleLimit {
		return query
	}
	return strings.TrimSpace(query[:titleLimit]) + "..."
}
