package ai

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (s *stubEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	return s.vector, s.err
}

func (s *stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vector
	}
	return out, nil
}

func TestEmbeddingText(t *testing.T) {
	assert.Equal(t, "Buy milk. buy milk tomorrow", EmbeddingText("Buy milk.", "buy milk tomorrow"))
	assert.Equal(t, "buy milk tomorrow", EmbeddingText("", "buy milk tomorrow"))
	assert.Equal(t, "summary only", EmbeddingText("summary only", "  "))
	assert.Equal(t, "", EmbeddingText("", ""))
}

func TestEmbed(t *testing.T) {
	ctx := context.Background()

	t.Run("nil embedder is a soft skip", func(t *testing.T) {
		assert.Nil(t, Embed(ctx, nil, "text", 0, nil))
	})

	t.Run("service error is a soft skip", func(t *testing.T) {
		e := &stubEmbedder{err: errors.New("connection refused")}
		assert.Nil(t, Embed(ctx, e, "text", 0, nil))
		assert.Equal(t, 1, e.calls)
	})

	t.Run("blank text is not sent", func(t *testing.T) {
		e := &stubEmbedder{vector: []float32{1, 0}}
		assert.Nil(t, Embed(ctx, e, "   ", 0, nil))
		assert.Equal(t, 0, e.calls)
	})

	t.Run("empty vector is a soft skip", func(t *testing.T) {
		e := &stubEmbedder{vector: []float32{}}
		assert.Nil(t, Embed(ctx, e, "text", 0, nil))
	})

	t.Run("dimension mismatch is a soft skip", func(t *testing.T) {
		e := &stubEmbedder{vector: []float32{1, 2, 3}}
		assert.Nil(t, Embed(ctx, e, "text", 4, nil))
	})

	t.Run("returns normalized vector", func(t *testing.T) {
		e := &stubEmbedder{vector: []float32{3, 4}}
		v := Embed(ctx, e, "text", 2, nil)
		require.Len(t, v, 2)
		assert.InDelta(t, 0.6, v[0], 1e-6)
		assert.InDelta(t, 0.8, v[1], 1e-6)

		var magnitude float64
		for _, x := range v {
			magnitude += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, math.Sqrt(magnitude), 1e-6)
	})
}
