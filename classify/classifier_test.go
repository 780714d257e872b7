package classify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/noesis/ai/mock"
	"github.com/poiesic/noesis/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.Date(2026, 10, 15, 22, 0, 0, 0, time.UTC) }

const extractionJSON = `{"type":"reminder","priority":4,"categories":["home"],"summary":"Buy milk."}`

func TestClassifyWithoutModel(t *testing.T) {
	c := NewClassifier(nil)

	got := c.Classify(context.Background(), "buy milk", "en")

	assert.True(t, got.Relevant)
	assert.Equal(t, 0.5, got.Confidence)
	assert.Nil(t, got.Extraction)
}

func TestClassify(t *testing.T) {
	ctx := context.Background()

	t.Run("relevant above threshold extracts", func(t *testing.T) {
		model := mock.NewMockLanguageModel().WithResponses(`{"relevant": true, "confidence": 0.92}`, extractionJSON)
		c := NewClassifier(model, WithClock(fixedNow))

		got := c.Classify(ctx, "buy milk tomorrow", "en")

		assert.True(t, got.Relevant)
		assert.InDelta(t, 0.92, got.Confidence, 1e-9)
		require.NotNil(t, got.Extraction)
		assert.Equal(t, core.ThoughtTypeReminder, got.Extraction.Type)
		assert.Equal(t, 4, got.Extraction.Priority)
		assert.Equal(t, "Buy milk.", got.Extraction.Summary)

		calls := model.Calls()
		require.Len(t, calls, 2)
		assert.Equal(t, "buy milk tomorrow", calls[0].Input)
		assert.Contains(t, calls[1].Instructions, "Today's date: 2026-10-15")
		assert.Contains(t, calls[1].Instructions, "Language of transcript: en")
	})

	t.Run("confidence below threshold skips extraction", func(t *testing.T) {
		model := mock.NewMockLanguageModel().WithResponses(`{"relevant": true, "confidence": 0.6}`)
		c := NewClassifier(model)

		got := c.Classify(ctx, "uh so yeah", "cs")

		assert.True(t, got.Relevant)
		assert.Nil(t, got.Extraction)
		assert.Equal(t, 1, model.CallCount())
	})

	t.Run("threshold is inclusive", func(t *testing.T) {
		model := mock.NewMockLanguageModel().WithResponses(`{"relevant": true, "confidence": 0.7}`, extractionJSON)
		c := NewClassifier(model)

		got := c.Classify(ctx, "buy milk", "cs")

		assert.NotNil(t, got.Extraction)
	})

	t.Run("irrelevant skips extraction", func(t *testing.T) {
		model := mock.NewMockLanguageModel().WithResponses(`{"relevant": false, "confidence": 0.95}`)
		c := NewClassifier(model)

		got := c.Classify(ctx, "hello hello testing", "cs")

		assert.False(t, got.Relevant)
		assert.Nil(t, got.Extraction)
		assert.Equal(t, 1, model.CallCount())
	})

	t.Run("custom threshold", func(t *testing.T) {
		model := mock.NewMockLanguageModel().WithResponses(`{"relevant": true, "confidence": 0.6}`, extractionJSON)
		c := NewClassifier(model, WithRelevanceThreshold(0.5))

		got := c.Classify(ctx, "buy milk", "cs")

		assert.NotNil(t, got.Extraction)
	})

	t.Run("relevance call fails", func(t *testing.T) {
		model := mock.NewMockLanguageModel().WithCompleteFunc(func(context.Context, string, string) (string, error) {
			return "", errors.New("connection refused")
		})
		c := NewClassifier(model)

		got := c.Classify(ctx, "buy milk", "cs")

		assert.True(t, got.Relevant)
		assert.Equal(t, 0.5, got.Confidence)
		assert.Nil(t, got.Extraction)
	})

	t.Run("relevance response without JSON", func(t *testing.T) {
		model := mock.NewMockLanguageModel().WithResponses("Yes, this is worth saving.")
		c := NewClassifier(model)

		got := c.Classify(ctx, "buy milk", "cs")

		assert.True(t, got.Relevant)
		assert.Equal(t, 0.5, got.Confidence)
	})

	t.Run("extraction call fails", func(t *testing.T) {
		model := mock.NewMockLanguageModel()
		model.WithCompleteFunc(func(context.Context, string, string) (string, error) {
			if model.CallCount() == 1 {
				return `{"relevant": true, "confidence": 0.9}`, nil
			}
			return "", context.DeadlineExceeded
		})
		c := NewClassifier(model)

		got := c.Classify(ctx, "buy milk", "cs")

		assert.True(t, got.Relevant)
		assert.Nil(t, got.Extraction)
	})

	t.Run("malformed extraction uses defaults", func(t *testing.T) {
		model := mock.NewMockLanguageModel().WithResponses(`{"relevant": true, "confidence": 0.9}`, "I could not parse that.")
		c := NewClassifier(model)

		got := c.Classify(ctx, "buy milk", "cs")

		require.NotNil(t, got.Extraction)
		assert.Equal(t, core.ThoughtTypeNote, got.Extraction.Type)
		assert.Equal(t, core.DefaultPriority, got.Extraction.Priority)
		assert.Equal(t, "buy milk", got.Extraction.Summary)
	})

	t.Run("blank language falls back to default", func(t *testing.T) {
		model := mock.NewMockLanguageModel().WithResponses(`{"relevant": true, "confidence": 0.9}`, extractionJSON)
		c := NewClassifier(model)

		c.Classify(ctx, "koupit mléko", " ")

		calls := model.Calls()
		require.Len(t, calls, 2)
		assert.Contains(t, calls[1].Instructions, "Language of transcript: cs")
	})
}
