package storage

import (
	"context"
	"time"

	"github.com/poiesic/noesis/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// Close closes the storage backend and releases resources.
	Close() error
}

// ThoughtRepository provides operations for managing thoughts.
type ThoughtRepository interface {
	Repository

	// AddThoughts validates and stores new thoughts.
	// IDs are always generated from a sequence. CreatedAt is set to now when
	// zero; UpdatedAt always equals CreatedAt on insert.
	// Returns the thoughts with generated IDs and timestamps populated.
	AddThoughts(ctx context.Context, thoughts ...*core.Thought) ([]*core.Thought, error)

	// ModifyThought applies fn to the current version of a thought and stores
	// the result atomically, retrying on write conflicts. fn may be invoked
	// more than once. ID, UserID and CreatedAt are restored after fn runs.
	// Returns ErrNotFound if the thought doesn't exist.
	ModifyThought(ctx context.Context, id core.ID, fn func(*core.Thought) error) (*core.Thought, error)

	// SetStatus changes the lifecycle status of a thought.
	SetStatus(ctx context.Context, id core.ID, status core.Status) (*core.Thought, error)

	// GetThought retrieves a single thought by ID.
	// Returns ErrNotFound if the thought doesn't exist.
	GetThought(ctx context.Context, id core.ID) (*core.Thought, error)

	// GetThoughts retrieves multiple thoughts by their IDs.
	// Returns only the thoughts that exist (no error for missing thoughts).
	GetThoughts(ctx context.Context, ids ...core.ID) ([]*core.Thought, error)

	// GetThoughtsByDateRange retrieves thoughts with start <= CreatedAt < end,
	// ordered by creation time. An empty userID spans all users.
	GetThoughtsByDateRange(ctx context.Context, userID string, start, end time.Time) ([]*core.Thought, error)

	// FindNearest returns up to limit of the user's non-archived, embedded
	// thoughts closest to vector, ordered by ascending cosine distance and
	// then by ID. Thoughts whose embedding length differs from vector are
	// ignored, as is exclude.
	FindNearest(ctx context.Context, userID string, vector []float32, filters *core.SearchFilters, exclude core.ID, limit int) ([]*core.ScoredThought, error)

	// SearchText runs a ranked full-text query over the user's non-archived
	// thoughts. Results are ordered by relevance descending.
	SearchText(ctx context.Context, userID, query string, filters *core.SearchFilters, limit int) ([]*core.ScoredThought, error)
}

// ConnectionRepository provides operations for managing connections.
type ConnectionRepository interface {
	Repository

	// UpsertConnection inserts a connection keyed by its canonical pair, or
	// updates Similarity and UpdatedAt if the pair already exists.
	// The connection must already be canonical (ThoughtA < ThoughtB).
	UpsertConnection(ctx context.Context, conn *core.Connection) (*core.Connection, error)

	// GetConnection retrieves the connection between two thoughts, in any order.
	// Returns ErrNotFound if the pair is not connected.
	GetConnection(ctx context.Context, a, b core.ID) (*core.Connection, error)

	// GetConnections retrieves every connection touching a thought, ordered
	// by similarity descending.
	GetConnections(ctx context.Context, thoughtID core.ID) ([]*core.Connection, error)
}

// TextHit is a single full-text match.
type TextHit struct {
	ID    core.ID
	Score float64
}

// TextIndex is a ranked full-text index over thoughts.
type TextIndex interface {
	// Index adds or replaces the document for a thought.
	Index(ctx context.Context, thought *core.Thought) error

	// Delete removes a thought from the index.
	Delete(ctx context.Context, id core.ID) error

	// Search returns the user's matching, non-archived thoughts ordered by
	// score descending and then by ID.
	Search(ctx context.Context, userID, query string, filters *core.SearchFilters, limit int) ([]TextHit, error)

	// Close releases the index.
	Close() error
}
