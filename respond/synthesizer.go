package respond

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/firstaid/ai"
	"github.com/poiesic/firstaid/core"
)

const (
	// Decoding parameters are fixed: low temperature keeps medical guidance
	// consistent between runs.
	generationTemperature = 0.3
	generationMaxTokens   = 2048
	generationTopP        = 0.9

	// maxHistoryTurns bounds how much conversation history enters the prompt.
	maxHistoryTurns = 6

	// generationTimeout caps one completion call. Expiry serves the static
	// safety message rather than an error.
	generationTimeout = 45 * time.Second
)

// StaticSafetyMessage is returned whenever generation fails. The user asked
// a first-aid question and must get an actionable answer either way.
const StaticSafetyMessage = `I'm unable to generate a detailed answer right now.

General First Aid Steps:
1. Ensure the scene is safe and check responsiveness.
2. CALL EMERGENCY SERVICES IMMEDIATELY if the situation is life-threatening.
3. Apply direct pressure to any severe bleeding.
4. Keep the person still, warm, and reassured until help arrives.

Additional Notes:
If symptoms worsen or you are unsure, seek professional medical advice.`

// Synthesizer generates answers from ranked retrieval results.
type Synthesizer struct {
	generator ai.Generator
	logger    *slog.Logger
}

// SynthesizerOption configures a Synthesizer.
type SynthesizerOption func(*Synthesizer)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) SynthesizerOption {
	return func(s *Synthesizer) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewSynthesizer creates a synthesizer backed by the given generator.
func NewSynthesizer(generator ai.Generator, opts ...SynthesizerOption) (*Synthesizer, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	s := &Synthesizer{
		generator: generator,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Synthesize produces an answer for the query from the ranked candidates
// and recent history. Generation failures degrade to the static safety
// message; only context cancellation is reported as an error.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, ranked []*core.RankedCandidate, history []*core.Turn) (string, error) {
	req := &ai.CompletionRequest{
		System:      systemPrompt,
		History:     historyMessages(history),
		User:        buildUserPrompt(query, AssembleContext(ranked)),
		Temperature: generationTemperature,
		MaxTokens:   generationMaxTokens,
		TopP:        generationTopP,
	}

	genCtx, cancel := context.WithTimeout(ctx, generationTimeout)
	defer cancel()

	text, err := s.generator.Complete(genCtx, req)
	if err != nil {
		// Caller cancellation aborts; timeouts and model failures degrade.
		if errors.Is(ctx.Err(), context.Canceled) {
			return "", ctx.Err()
		}
		s.logger.Error("generation failed, serving static safety message", "err", err)
		return Sanitize(StaticSafetyMessage), nil
	}

	if strings.TrimSpace(text) == "" {
		s.logger.Error("generation returned empty text, serving static safety message")
		return Sanitize(StaticSafetyMessage), nil
	}

	return Sanitize(text), nil
}

// IsSafetyMessage reports whether text is the static safety answer, so
// callers can treat degraded generations as low confidence.
func IsSafetyMessage(text string) bool {
	return text == Sanitize(StaticSafetyMessage)
}

// historyMessages converts the most recent turns to generator messages,
// oldest first.
func historyMessages(history []*core.Turn) []ai.Message {
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}

	messages := make([]ai.Message, 0, len(history))
	for _, turn := range history {
		messages = append(messages, ai.Message{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}
	return messages
}
