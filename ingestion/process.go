package ingestion

import (
	"context"

	"github.com/poiesic/noesis/core"
)

// Result describes what a processing run achieved.
type Result struct {
	ThoughtID core.ID
	// Classified is false when classification was skipped.
	Classified         bool
	Relevant           bool
	Confidence         float64
	Extraction         *core.Extraction
	EmbeddingGenerated bool
	ConnectionsFound   int
}

type processConfig struct {
	skipClassification bool
}

// ProcessOption adjusts a single processing run.
type ProcessOption func(*processConfig)

// WithoutClassification keeps the stored attributes and only embeds and
// links the thought.
func WithoutClassification() ProcessOption {
	return func(c *processConfig) {
		c.skipClassification = true
	}
}

// Process runs classification, embedding and connection discovery for a
// stored thought. Only persistence failures are returned; service outages
// shorten the run instead.
func (p *Pipeline) Process(ctx context.Context, id core.ID, opts ...ProcessOption) (*Result, error) {
	thought, err := p.thoughts.GetThought(ctx, id)
	if err != nil {
		return nil, err
	}

	r := &run{thought: thought, result: &Result{ThoughtID: id}}
	for _, opt := range opts {
		opt(&r.config)
	}

	for _, proc := range p.processors {
		next, err := proc.process(ctx, r)
		if err != nil {
			p.logger.Error("processing failed", "thought", id, "err", err)
			return r.result, err
		}
		if !next {
			break
		}
	}

	p.logger.Debug("thought processed", "thought", id,
		"relevant", r.result.Relevant,
		"embedded", r.result.EmbeddingGenerated,
		"connections", r.result.ConnectionsFound)
	return r.result, nil
}
