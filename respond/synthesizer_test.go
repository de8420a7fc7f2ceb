package respond

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/firstaid/ai"
	"github.com/poiesic/firstaid/ai/mock"
	"github.com/poiesic/firstaid/core"
)

func rankedFixture() []*core.RankedCandidate {
	return []*core.RankedCandidate{
		{
			Candidate: core.Candidate{
				Chunk: &core.Chunk{
					Text:     "Apply firm direct pressure to the wound.",
					Title:    "Severe Bleeding",
					Category: "bleeding",
					Severity: "high",
					Source:   "IFRC 2020 | Chapter 4",
				},
				Score:  0.87,
				Method: core.MethodSemanticOriginal,
			},
			BoostedScore: 0.89,
		},
	}
}

func TestSynthesizePromptContents(t *testing.T) {
	generator := mock.NewMockGenerator()
	synth, err := NewSynthesizer(generator)
	require.NoError(t, err)

	history := []*core.Turn{
		{Role: core.RoleUser, Content: "earlier question"},
		{Role: core.RoleAssistant, Content: "earlier answer"},
	}

	_, err = synth.Synthesize(context.Background(), "how do i stop severe bleeding", rankedFixture(), history)
	require.NoError(t, err)

	req := generator.LastRequest()
	require.NotNil(t, req)

	assert.Contains(t, req.System, "first aid assistant")
	assert.Contains(t, req.User, "how do i stop severe bleeding")
	assert.Contains(t, req.User, "Apply firm direct pressure to the wound.")
	// Source label is truncated at the pipe
	assert.Contains(t, req.User, "Source 1 (IFRC 2020):")
	assert.NotContains(t, req.User, "Chapter 4")

	require.Len(t, req.History, 2)
	assert.Equal(t, "user", req.History[0].Role)
	assert.Equal(t, "assistant", req.History[1].Role)

	assert.InDelta(t, 0.3, req.Temperature, 1e-9)
	assert.Equal(t, 2048, req.MaxTokens)
	assert.InDelta(t, 0.9, req.TopP, 1e-9)
}

func TestSynthesizeSanitizesOutput(t *testing.T) {
	generator := mock.NewMockGenerator()
	generator.CompleteFunc = func(ctx context.Context, req *ai.CompletionRequest) (string, error) {
		return "## Immediate Action\n**Apply pressure** now.", nil
	}
	synth, err := NewSynthesizer(generator)
	require.NoError(t, err)

	text, err := synth.Synthesize(context.Background(), "bleeding", rankedFixture(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Immediate Action\nApply pressure now.", text)
}

func TestSynthesizeFailureServesSafetyMessage(t *testing.T) {
	generator := mock.NewMockGenerator()
	generator.CompleteFunc = func(ctx context.Context, req *ai.CompletionRequest) (string, error) {
		return "", errors.New("model unavailable")
	}
	synth, err := NewSynthesizer(generator)
	require.NoError(t, err)

	text, err := synth.Synthesize(context.Background(), "bleeding", rankedFixture(), nil)
	require.NoError(t, err)
	assert.Contains(t, text, "General First Aid Steps")
	assert.Contains(t, strings.ToUpper(text), "CALL EMERGENCY SERVICES")
}

func TestSynthesizeEmptyCompletionServesSafetyMessage(t *testing.T) {
	generator := mock.NewMockGenerator()
	generator.CompleteFunc = func(ctx context.Context, req *ai.CompletionRequest) (string, error) {
		return "   \n ", nil
	}
	synth, err := NewSynthesizer(generator)
	require.NoError(t, err)

	text, err := synth.Synthesize(context.Background(), "bleeding", rankedFixture(), nil)
	require.NoError(t, err)
	assert.Contains(t, text, "General First Aid Steps")
}

func TestSynthesizeTimeoutServesSafetyMessage(t *testing.T) {
	generator := mock.NewMockGenerator()
	generator.CompleteFunc = func(ctx context.Context, req *ai.CompletionRequest) (string, error) {
		return "", context.DeadlineExceeded
	}
	synth, err := NewSynthesizer(generator)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	text, err := synth.Synthesize(ctx, "bleeding", rankedFixture(), nil)
	require.NoError(t, err)
	assert.Contains(t, text, "General First Aid Steps")
}

func TestSynthesizeCancellationPropagates(t *testing.T) {
	generator := mock.NewMockGenerator()
	generator.CompleteFunc = func(ctx context.Context, req *ai.CompletionRequest) (string, error) {
		return "", ctx.Err()
	}
	synth, err := NewSynthesizer(generator)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = synth.Synthesize(ctx, "bleeding", rankedFixture(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSynthesizeHistoryWindow(t *testing.T) {
	generator := mock.NewMockGenerator()
	synth, err := NewSynthesizer(generator)
	require.NoError(t, err)

	history := make([]*core.Turn, 0, 10)
	for i := 0; i < 10; i++ {
		role := core.RoleUser
		if i%2 == 1 {
			role = core.RoleAssistant
		}
		history = append(history, &core.Turn{Role: role, Content: strings.Repeat("x", i+1)})
	}

	_, err = synth.Synthesize(context.Background(), "bleeding", rankedFixture(), history)
	require.NoError(t, err)

	req := generator.LastRequest()
	require.Len(t, req.History, 6)
	// The newest turns survive the window
	assert.Equal(t, strings.Repeat("x", 10), req.History[5].Content)
}

func TestNewSynthesizerRequiresGenerator(t *testing.T) {
	_, err := NewSynthesizer(nil)
	assert.ErrorIs(t, err, ErrGeneratorRequired)
}

func TestIsSafetyMessage(t *testing.T) {
	generator := mock.NewMockGenerator()
	generator.CompleteFunc = func(ctx context.Context, req *ai.CompletionRequest) (string, error) {
		return "", context.DeadlineExceeded
	}
	synth, err := NewSynthesizer(generator)
	require.NoError(t, err)

	text, err := synth.Synthesize(context.Background(), "bleeding", rankedFixture(), nil)
	require.NoError(t, err)
	assert.True(t, IsSafetyMessage(text))

	assert.False(t, IsSafetyMessage("Apply direct pressure to the wound."))
}
