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


package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/noesis/core"
	"github.com/poiesic/noesis/storage"
)

const (
	// DefaultNeighborCount is how many nearest neighbours are considered.
	DefaultNeighborCount = 5
	// DefaultSimilarityThreshold is the minimum similarity for an edge.
	DefaultSimilarityThreshold = 0.82
)

// ConnectionFinder links a thought to its closest neighbours among the same
// user's thoughts.
type ConnectionFinder struct {
	thoughts    storage.ThoughtRepository
	connections storage.ConnectionRepository
	k           int
	threshold   float64
	logger      *slog.Logger
}

// FinderOption configures a ConnectionFinder.
type FinderOption func(*ConnectionFinder)

// WithNeighborCount sets K. Values below 1 are ignored.
func WithNeighborCount(k int) FinderOption {
	return func(f *ConnectionFinder) {
		if k > 0 {
			f.k = k
		}
	}
}

// WithSimilarityThreshold sets the minimum similarity, clamped to [0,1].
func WithSimilarityThreshold(threshold float64) FinderOption {
	return func(f *ConnectionFinder) {
		f.threshold = core.ClampUnit(threshold, 0, 1)
	}
}

// WithFinderLogger sets a custom logger.
func WithFinderLogger(logger *slog.Logger) FinderOption {
	return func(f *ConnectionFinder) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewConnectionFinder creates a ConnectionFinder.
func NewConnectionFinder(thoughts storage.ThoughtRepository, connections storage.ConnectionRepository, opts ...FinderOption) (*ConnectionFinder, error) {
	if thoughts == nil {
		return nil, ErrThoughtRepositoryRequired
	}
	if connections == nil {
		return nil, ErrConnectionRepositoryRequired
	}

	f := &ConnectionFinder{
		thoughts:    thoughts,
		connections: connections,
		k:           DefaultNeighborCount,
		threshold:   DefaultSimilarityThreshold,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With("component", "connection-finder")
	return f, nil
}

// FindConnections upserts an edge to every neighbour whose similarity meets
// the threshold and returns how many there were.
func (f *ConnectionFinder) FindConnections(ctx context.Context, thoughtID core.ID, userID string) (int, error) {
	thought, err := f.thoughts.GetThought(ctx, thoughtID)
	if err != nil {
		return 0, err
	}
	if !thought.HasEmbedding() {
		return 0, fmt.Errorf("%w: %d", ErrMissingEmbedding, thoughtID)
	}
	if thought.UserID != userID {
		return 0, fmt.Errorf("%w: %d", ErrUserMismatch, thoughtID)
	}

	neighbors, err := f.thoughts.FindNearest(ctx, userID, thought.Embedding, nil, thoughtID, f.k)
	if err != nil {
		return 0, fmt.Errorf("find neighbours: %w", err)
	}

	found := 0
	for _, n := range neighbors {
		similarity := core.ClampUnit(1-n.Distance, 0, 1)
		if similarity < f.threshold {
			continue
		}

		a, b := core.CanonicalPair(thoughtID, n.Thought.ID)
		_, err := f.connections.UpsertConnection(ctx, &core.Connection{
			ThoughtA:   a,
			ThoughtB:   b,
			UserID:     userID,
			Similarity: similarity,
			Type:       core.ConnectionTypeSemantic,
		})
		if err != nil {
			return found, fmt.Errorf("store connection %d-%d: %w", a, b, err)
		}
		found++
	}

	f.logger.Debug("connections discovered", "thought", thoughtID, "neighbors", len(neighbors), "connected", found)
	return found, nil
}

// connectionProcessor runs the finder and reports the count.
type connectionProcessor struct {
	finder   *ConnectionFinder
	notifier Notifier
	logger   *slog.Logger
}

var _ processor = (*connectionProcessor)(nil)

func (cp *connectionProcessor) process(ctx context.Context, r *run) (bool, error) {
	count, err := cp.finder.FindConnections(ctx, r.thought.ID, r.thought.UserID)
	if err != nil {
		return false, err
	}
	r.result.ConnectionsFound = count

	if count > 0 {
		if err := cp.notifier.NotifyConnections(ctx, r.thought.UserID, r.thought.ID, count); err != nil {
			cp.logger.Warn("connection notification failed", "thought", r.thought.ID, "err", err)
		}
	}
	return true, nil
}
