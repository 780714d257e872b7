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


package backfill

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/noesis/core"
	"github.com/poiesic/noesis/ingestion"
	"github.com/poiesic/noesis/storage"
)

// Processor runs the enrichment steps for one stored thought.
// *ingestion.Pipeline implements it.
type Processor interface {
	Process(ctx context.Context, id core.ID, opts ...ingestion.ProcessOption) (*ingestion.Result, error)
}

// Config holds configuration for a backfill run.
type Config struct {
	// BatchSize is the number of thoughts to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of thoughts)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per thought
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// UserID restricts the run to one user when set
	UserID string

	// MissingEmbeddingsOnly selects thoughts without a vector
	MissingEmbeddingsOnly bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Summary reports what a run did.
type Summary struct {
	Processed   int
	Embedded    int
	Connections int
	Failed      int
}

// Backfiller orchestrates reprocessing of stored thoughts.
type Backfiller struct {
	thoughts  storage.ThoughtRepository
	processor Processor
	config    *Config
	progress  io.Writer
	logger    *slog.Logger
}

// NewBackfiller creates a new backfiller.
// progress: where to write progress output (typically os.Stderr)
func NewBackfiller(thoughts storage.ThoughtRepository, processor Processor, config *Config, progress io.Writer) (*Backfiller, error) {
	if thoughts == nil {
		return nil, ErrThoughtRepositoryRequired
	}
	if processor == nil {
		return nil, ErrProcessorRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Backfiller{
		thoughts:  thoughts,
		processor: processor,
		config:    config,
		progress:  progress,
		logger:    slog.Default().With("component", "backfill"),
	}, nil
}

// Run processes every selected thought. A thought that keeps failing is
// counted and skipped; only cancellation and store errors end the run.
func (b *Backfiller) Run(ctx context.Context) (*Summary, error) {
	var filter func(*core.Thought) bool
	if b.config.MissingEmbeddingsOnly {
		filter = func(t *core.Thought) bool { return !t.HasEmbedding() }
	}

	iterator := NewThoughtIterator(b.thoughts, b.config.UserID, b.config.BatchSize, filter)
	selected, err := iterator.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query thoughts: %w", err)
	}

	summary := &Summary{}
	if len(selected) == 0 {
		fmt.Fprintf(b.progress, "No thoughts to backfill\n")
		return summary, nil
	}

	fmt.Fprintf(b.progress, "Starting backfill of %d thoughts (batch size: %d)\n",
		len(selected), iterator.batchSize)

	meter := newProgressMeter(b.progress, len(selected), b.config.ReportInterval)
	meter.Start()

	err = forEachBatch(ctx, selected, iterator.batchSize, func(batch []*core.Thought) error {
		for _, t := range batch {
			result, err := b.processOne(ctx, t)
			switch {
			case ctx.Err() != nil:
				return ctx.Err()
			case err != nil:
				summary.Failed++
				b.logger.Warn("thought not backfilled", "thought", t.ID, "err", err)
				meter.Record(false, err)
			default:
				summary.Processed++
				if result.EmbeddingGenerated {
					summary.Embedded++
				}
				summary.Connections += result.ConnectionsFound
				meter.Record(result.EmbeddingGenerated, nil)
			}
		}
		return nil
	})
	if err != nil {
		return summary, err
	}

	elapsed := meter.Finish()
	fmt.Fprintf(b.progress, "Backfill complete. Processed %d, embedded %d, connections %d, failed %d in %v\n",
		summary.Processed, summary.Embedded, summary.Connections, summary.Failed, elapsed.Round(time.Millisecond))

	return summary, nil
}

// processOne retries transient failures. Imported thoughts keep their
// attributes, so they skip classification.
func (b *Backfiller) processOne(ctx context.Context, t *core.Thought) (*ingestion.Result, error) {
	var opts []ingestion.ProcessOption
	if t.Source == core.SourceImport {
		opts = append(opts, ingestion.WithoutClassification())
	}

	var result *ingestion.Result
	err := RetryWithBackoff(ctx, func() error {
		res, err := b.processor.Process(ctx, t.ID, opts...)
		if errors.Is(err, storage.ErrNotFound) {
			return Permanent(err)
		}
		if err != nil {
			return err
		}
		result = res
		return nil
	}, max(b.config.MaxRetries, 1), b.config.RetryDelay)
	return result, err
}
