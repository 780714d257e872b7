package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/noesis/ai"
	"github.com/poiesic/noesis/core"
	"github.com/poiesic/noesis/storage"
)

// embeddingProcessor generates and stores the thought's vector.
type embeddingProcessor struct {
	thoughts   storage.ThoughtRepository
	embedder   ai.Embedder
	dimensions int
	logger     *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

func newEmbeddingProcessor(thoughts storage.ThoughtRepository, embedder ai.Embedder, dimensions int, logger *slog.Logger) *embeddingProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		thoughts:   thoughts,
		embedder:   embedder,
		dimensions: dimensions,
		logger:     logger.With("processor", "embeddings"),
	}
}

// process embeds summary and transcript. No vector means later processors
// have nothing to work with, so the run stops quietly.
func (ep *embeddingProcessor) process(ctx context.Context, r *run) (bool, error) {
	text := ai.EmbeddingText(r.thought.Summary, r.thought.RawTranscript)
	vector := ai.Embed(ctx, ep.embedder, text, ep.dimensions, ep.logger)
	if vector == nil {
		ep.logger.Debug("no embedding for thought", "thought", r.thought.ID)
		return false, nil
	}

	updated, err := ep.thoughts.ModifyThought(ctx, r.thought.ID, func(t *core.Thought) error {
		t.Embedding = vector
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("store embedding: %w", err)
	}

	r.thought = updated
	r.result.EmbeddingGenerated = true
	return true, nil
}
