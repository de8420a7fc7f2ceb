package openai

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/firstaid/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
type Generator struct {
	client llms.Model
	logger *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.GeneratorHost),
		openai.WithToken("none"),
		openai.WithModel(config.GeneratorModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client: client,
		logger: slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a new generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// Complete runs one chat completion call with the request's fixed decoding
// parameters and returns the raw model output.
func (g *Generator) Complete(ctx context.Context, req *ai.CompletionRequest) (string, error) {
	content := make([]llms.MessageContent, 0, len(req.History)+2)
	content = append(content, llms.MessageContent{
		Role:  llms.ChatMessageTypeSystem,
		Parts: []llms.ContentPart{llms.TextPart(req.System)},
	})

	for _, msg := range req.History {
		role := llms.ChatMessageTypeHuman
		if msg.Role == string(llms.ChatMessageTypeAI) || msg.Role == "assistant" {
			role = llms.ChatMessageTypeAI
		}
		content = append(content, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(msg.Content)},
		})
	}

	content = append(content, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(req.User)},
	})

	response, err := g.client.GenerateContent(ctx, content,
		llms.WithTemperature(req.Temperature),
		llms.WithMaxTokens(req.MaxTokens),
		llms.WithTopP(req.TopP),
	)
	if err != nil {
		g.logger.Error("generation call failed", "err", err)
		return "", err
	}

	if len(response.Choices) == 0 {
		g.logger.Warn("generation returned no choices")
		return "", errors.New("generation returned no choices")
	}

	return response.Choices[0].Content, nil
}
