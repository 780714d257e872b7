package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/noesis/classify"
	"github.com/poiesic/noesis/core"
	"github.com/poiesic/noesis/storage"
)

// classificationProcessor runs the classifier and merges the extraction.
type classificationProcessor struct {
	thoughts   storage.ThoughtRepository
	classifier *classify.Classifier
	logger     *slog.Logger
}

var _ processor = (*classificationProcessor)(nil)

func (cp *classificationProcessor) process(ctx context.Context, r *run) (bool, error) {
	if r.config.skipClassification {
		return true, nil
	}

	c := cp.classifier.Classify(ctx, r.thought.RawTranscript, r.thought.Language)
	r.result.Classified = true
	r.result.Relevant = c.Relevant
	r.result.Confidence = c.Confidence
	r.result.Extraction = c.Extraction

	if !c.Relevant || c.Extraction == nil {
		cp.logger.Debug("keeping raw record", "thought", r.thought.ID, "relevant", c.Relevant, "confidence", c.Confidence)
		return true, nil
	}

	updated, err := cp.thoughts.ModifyThought(ctx, r.thought.ID, func(t *core.Thought) error {
		mergeExtraction(t, c.Extraction)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("store classification: %w", err)
	}
	r.thought = updated
	return true, nil
}

// mergeExtraction copies the enrichable attributes onto t. Identity,
// transcript, timestamps and status are left alone.
func mergeExtraction(t *core.Thought, e *core.Extraction) {
	t.Type = e.Type
	t.Priority = e.Priority
	t.Categories = e.Categories
	t.Entities = e.Entities
	t.ActionItems = e.ActionItems
	t.Deadline = e.Deadline
	sentiment := e.Sentiment
	t.Sentiment = &sentiment
	t.Summary = e.Summary
	if e.Summary != "" {
		t.CleanedText = e.Summary
	} else {
		t.CleanedText = t.RawTranscript
	}
}
