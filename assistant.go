// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package firstaid

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/firstaid/ai"
	"github.com/poiesic/firstaid/ai/openai"
	"github.com/poiesic/firstaid/conversation"
	"github.com/poiesic/firstaid/core"
	"github.com/poiesic/firstaid/respond"
	"github.com/poiesic/firstaid/search"
	"github.com/poiesic/firstaid/storage"
	"github.com/poiesic/firstaid/storage/badger"
)

// Assistant wires the retrieval, synthesis and conversation components
// into a single question answering pipeline over a local knowledge base.
type Assistant struct {
	backend       *badger.Backend
	chunkRepo     storage.ChunkRepository
	convRepo      storage.ConversationRepository
	provider      ai.AIProvider
	engine        *search.Engine
	synthesizer   *respond.Synthesizer
	fallback      *respond.FallbackResponder
	conversations *conversation.Manager
	logger        *slog.Logger
}

// QueryRequest describes one question put to the assistant.
type QueryRequest struct {
	// Query is the user's question. Must be non-empty.
	Query string

	// UserID identifies the asking user. When empty, no conversation
	// history is read or written.
	UserID string

	// ConversationID continues an existing conversation. When empty and
	// UserID is set, a new conversation is started.
	ConversationID string

	// TopK bounds the number of retrieved chunks. Zero means the default.
	TopK int

	// MinScore is the similarity floor for semantic retrieval.
	// Zero means the default.
	MinScore float32
}

// AssistantOption configures an Assistant.
type AssistantOption func(*assistantOptions)

type assistantOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	logger   *slog.Logger
}

// WithAIConfig sets the AI provider configuration used when no explicit
// provider is supplied.
func WithAIConfig(config *ai.Config) AssistantOption {
	return func(o *assistantOptions) {
		o.aiConfig = config
	}
}

// WithAIProvider sets an explicit AI provider, bypassing provider
// construction from config. Used mainly for testing.
func WithAIProvider(provider ai.AIProvider) AssistantOption {
	return func(o *assistantOptions) {
		o.provider = provider
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) AssistantOption {
	return func(o *assistantOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewAssistant opens the knowledge base at filePath and assembles the
// full pipeline around it.
func NewAssistant(filePath string, opts ...AssistantOption) (*Assistant, error) {
	options := &assistantOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	chunkRepo, convRepo, backend, err := badger.NewRepositories(filePath)
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			convRepo.Close()
			chunkRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	engine, err := search.NewEngine(chunkRepo, provider, search.WithLogger(options.logger))
	if err != nil {
		provider.Close()
		convRepo.Close()
		chunkRepo.Close()
		backend.Close()
		return nil, err
	}

	synthesizer, err := respond.NewSynthesizer(provider.Generator(), respond.WithLogger(options.logger))
	if err != nil {
		engine.Close()
		provider.Close()
		convRepo.Close()
		chunkRepo.Close()
		backend.Close()
		return nil, err
	}

	conversations, err := conversation.NewManager(convRepo, conversation.WithLogger(options.logger))
	if err != nil {
		engine.Close()
		provider.Close()
		convRepo.Close()
		chunkRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Assistant{
		backend:       backend,
		chunkRepo:     chunkRepo,
		convRepo:      convRepo,
		provider:      provider,
		engine:        engine,
		synthesizer:   synthesizer,
		fallback:      respond.NewFallbackResponder(options.logger),
		conversations: conversations,
		logger:        options.logger,
	}, nil
}

// Close releases every component. Errors from the AI provider are logged
// but do not fail the close.
func (a *Assistant) Close() error {
	if err := a.engine.Close(); err != nil {
		a.logger.Error("error closing search engine", "err", err)
	}
	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
	}

	if err := a.convRepo.Close(); err != nil {
		a.logger.Error("error closing conversation repository", "err", err)
		return err
	}
	if err := a.chunkRepo.Close(); err != nil {
		a.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := a.backend.Close(); err != nil {
		a.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// ChunkRepository exposes the underlying chunk store, for seeding and
// maintenance tooling.
func (a *Assistant) ChunkRepository() storage.ChunkRepository {
	return a.chunkRepo
}

// Provider exposes the AI provider, for maintenance tooling.
func (a *Assistant) Provider() ai.AIProvider {
	return a.provider
}

// Conversations exposes the conversation manager.
func (a *Assistant) Conversations() *conversation.Manager {
	return a.conversations
}

// NewConversationID returns a fresh conversation identifier.
func (a *Assistant) NewConversationID() string {
	return conversation.NewConversationID()
}

// AnswerQuery runs the full pipeline for one question: retrieval,
// reranking, synthesis (or the fallback when retrieval comes back empty)
// and conversation bookkeeping. The result is always fully populated.
// Persistence failures degrade to log entries; only invalid input and
// context cancellation produce errors.
func (a *Assistant) AnswerQuery(ctx context.Context, req *QueryRequest) (result *core.AnswerResult, err error) {
	if err := core.ValidateQuery(req.Query); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("panic while answering query", "query", req.Query, "panic", r)
			result = &core.AnswerResult{
				Query:      req.Query,
				Response:   a.fallback.Respond(req.Query),
				Confidence: core.TierLow,
				Emergency:  a.engine.Processor().DetectEmergency(req.Query),
				Timestamp:  time.Now(),
			}
			err = nil
		}
	}()

	emergency := a.engine.Processor().DetectEmergency(req.Query)

	topK := req.TopK
	if topK <= 0 {
		topK = search.DefaultTopK
	}
	minScore := req.MinScore
	if minScore <= 0 {
		minScore = search.DefaultMinScore
	}

	retrieved, err := a.engine.Search(ctx, req.Query, topK, minScore)
	if err != nil {
		return nil, err
	}

	ranked := search.Rerank(retrieved.Candidates, retrieved.Keywords)

	var (
		response string
		tier     core.Tier
		avg      float32
	)

	if len(ranked) == 0 {
		a.logger.Info("no chunks retrieved, using fallback response", "query", req.Query)
		response = a.fallback.Respond(req.Query)
		tier = core.TierLow
	} else {
		history := a.loadHistory(ctx, req.ConversationID)

		response, err = a.synthesizer.Synthesize(ctx, req.Query, ranked, history)
		if err != nil {
			return nil, err
		}

		avg = respond.AverageScore(ranked)
		tier = respond.ConfidenceTier(avg)
		if respond.IsSafetyMessage(response) {
			tier = core.TierLow
		}
	}

	a.recordExchange(ctx, req, response)

	return &core.AnswerResult{
		Query:        req.Query,
		Response:     response,
		Sources:      answerSources(ranked),
		Confidence:   tier,
		ChunksFound:  len(ranked),
		AvgRelevance: avg,
		Emergency:    emergency,
		Timestamp:    time.Now(),
	}, nil
}

// loadHistory fetches recent conversation turns, degrading to no history
// on error.
func (a *Assistant) loadHistory(ctx context.Context, conversationID string) []*core.Turn {
	if conversationID == "" {
		return nil
	}

	history, err := a.conversations.LoadHistory(ctx, conversationID, conversation.DefaultHistoryLimit)
	if err != nil {
		a.logger.Warn("failed to load conversation history",
			"conversationID", conversationID, "err", err)
		return nil
	}
	return history
}

// recordExchange persists the question and answer as conversation turns.
// Failures are logged, never surfaced; answering matters more than
// bookkeeping.
func (a *Assistant) recordExchange(ctx context.Context, req *QueryRequest, response string) {
	if req.UserID == "" {
		return
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = conversation.NewConversationID()
	}

	if err := a.conversations.EnsureConversation(ctx, req.UserID, conversationID, req.Query); err != nil {
		a.logger.Warn("failed to persist conversation",
			"conversationID", conversationID, "err", err)
		return
	}

	now := time.Now()
	err := a.conversations.AppendTurns(ctx,
		&core.Turn{
			ConversationID: conversationID,
			Role:           core.RoleUser,
			Content:        req.Query,
			Timestamp:      now,
		},
		&core.Turn{
			ConversationID: conversationID,
			Role:           core.RoleAssistant,
			Content:        response,
			Timestamp:      now,
		},
	)
	if err != nil {
		a.logger.Warn("failed to persist conversation turns",
			"conversationID", conversationID, "err", err)
	}
}

// answerSources projects the context-feeding candidates into citation
// records, capped the same way the prompt context is.
func answerSources(ranked []*core.RankedCandidate) []core.Source {
	n := len(ranked)
	if n > respond.MaxContextChunks {
		n = respond.MaxContextChunks
	}

	sources := make([]core.Source, 0, n)
	for _, rc := range ranked[:n] {
		sources = append(sources, core.Source{
			Title:     rc.Chunk.Title,
			Category:  rc.Chunk.Category,
			Source:    rc.Chunk.Source,
			Relevance: rc.Score,
		})
	}
	return sources
}
