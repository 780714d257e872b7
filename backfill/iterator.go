package backfill

import (
	"context"
	"time"

	"github.com/poiesic/noesis/core"
	"github.com/poiesic/noesis/storage"
)

const (
	// DefaultBatchSize is the default number of thoughts handed out per batch
	DefaultBatchSize = 100
)

// endOfTime bounds open-ended scans of the date index.
var endOfTime = time.Date(2100, 12, 31, 23, 59, 59, 0, time.UTC)

// ThoughtIterator walks stored thoughts in creation order, in batches.
type ThoughtIterator struct {
	repo      storage.ThoughtRepository
	userID    string
	batchSize int
	filter    func(*core.Thought) bool
}

// NewThoughtIterator creates a new iterator. An empty userID covers every
// user; a nil filter keeps every thought.
func NewThoughtIterator(repo storage.ThoughtRepository, userID string, batchSize int, filter func(*core.Thought) bool) *ThoughtIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &ThoughtIterator{
		repo:      repo,
		userID:    userID,
		batchSize: batchSize,
		filter:    filter,
	}
}

// Collect returns every selected thought.
func (it *ThoughtIterator) Collect(ctx context.Context) ([]*core.Thought, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	thoughts, err := it.repo.GetThoughtsByDateRange(ctx, it.userID, time.Time{}, endOfTime)
	if err != nil {
		return nil, err
	}
	if it.filter == nil {
		return thoughts, nil
	}

	selected := thoughts[:0]
	for _, t := range thoughts {
		if it.filter(t) {
			selected = append(selected, t)
		}
	}
	return selected, nil
}

// ForEach calls fn for each batch of selected thoughts.
// Iteration stops on first error from fn or when all thoughts are processed.
// Context cancellation is checked between batches.
func (it *ThoughtIterator) ForEach(ctx context.Context, fn func([]*core.Thought) error) error {
	thoughts, err := it.Collect(ctx)
	if err != nil {
		return err
	}
	return forEachBatch(ctx, thoughts, it.batchSize, fn)
}

func forEachBatch(ctx context.Context, thoughts []*core.Thought, size int, fn func([]*core.Thought) error) error {
	for i := 0; i < len(thoughts); i += size {
		end := min(i+size, len(thoughts))
		if err := fn(thoughts[i:end]); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}
