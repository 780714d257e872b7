package badger

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/noesis/ai"
	"github.com/poiesic/noesis/core"
	"github.com/poiesic/noesis/storage"
)

// ThoughtRepository implements storage.ThoughtRepository for BadgerDB.
// Full-text queries are delegated to a storage.TextIndex, which is kept in
// step after every committed write.
type ThoughtRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
	index   storage.TextIndex
	indexMu sync.Mutex
	logger  *slog.Logger
}

var _ storage.ThoughtRepository = (*ThoughtRepository)(nil)

// NewThoughtRepository creates a new ThoughtRepository. index may be nil, in
// which case SearchText reports storage.ErrTextIndexUnavailable.
// The repository takes ownership of index and closes it on Close.
func NewThoughtRepository(backend *Backend, index storage.TextIndex) (*ThoughtRepository, error) {
	idSeq, err := backend.GetSequence(thoughtIDSeq)
	if err != nil {
		return nil, err
	}

	return &ThoughtRepository{
		backend: backend,
		idSeq:   idSeq,
		index:   index,
		logger:  slog.Default().With("component", "thought-repository"),
	}, nil
}

// Close releases the ID sequence and the text index.
func (r *ThoughtRepository) Close() error {
	err := r.idSeq.Release()
	if r.index != nil {
		if closeErr := r.index.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}

// AddThoughts validates and stores new thoughts.
func (r *ThoughtRepository) AddThoughts(ctx context.Context, thoughts ...*core.Thought) ([]*core.Thought, error) {
	for _, t := range thoughts {
		applyInsertDefaults(t)
		if err := core.ValidateThought(t); err != nil {
			return nil, err
		}
	}

	err := r.backend.Update(ctx, func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, t := range thoughts {
			nextID, err := r.nextID()
			if err != nil {
				return err
			}
			t.ID = nextID

			if t.CreatedAt.IsZero() {
				t.CreatedAt = now
			}
			t.CreatedAt = storage.StoredTime(t.CreatedAt)
			t.UpdatedAt = t.CreatedAt

			if err := r.putThought(tx, t, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, t := range thoughts {
		if err := r.reindex(ctx, t); err != nil {
			return thoughts, err
		}
	}
	return thoughts, nil
}

// ModifyThought applies fn to the stored thought inside a conflict-retried
// transaction.
func (r *ThoughtRepository) ModifyThought(ctx context.Context, id core.ID, fn func(*core.Thought) error) (*core.Thought, error) {
	var updated *core.Thought
	err := r.backend.Update(ctx, func(tx *badger.Txn) error {
		current, err := r.readThought(tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return storage.ErrNotFound
		}
		before := *current

		if err := fn(current); err != nil {
			return err
		}
		current.ID = before.ID
		current.UserID = before.UserID
		current.CreatedAt = before.CreatedAt
		current.Categories = core.NormalizeLabels(current.Categories)
		if len(current.Categories) == 0 {
			current.Categories = nil
		}
		if err := core.ValidateThought(current); err != nil {
			return err
		}
		current.UpdatedAt = storage.StoredTime(time.Now())

		if err := r.putThought(tx, current, &before); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := r.reindex(ctx, updated); err != nil {
		return updated, err
	}
	return updated, nil
}

// SetStatus changes the lifecycle status of a thought.
func (r *ThoughtRepository) SetStatus(ctx context.Context, id core.ID, status core.Status) (*core.Thought, error) {
	if err := core.ValidateStatus(status); err != nil {
		return nil, err
	}
	return r.ModifyThought(ctx, id, func(t *core.Thought) error {
		t.Status = status
		return nil
	})
}

// GetThought retrieves a single thought by ID.
func (r *ThoughtRepository) GetThought(ctx context.Context, id core.ID) (*core.Thought, error) {
	var result *core.Thought
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readThought(tx, id)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetThoughts retrieves multiple thoughts by their IDs.
func (r *ThoughtRepository) GetThoughts(ctx context.Context, ids ...core.ID) ([]*core.Thought, error) {
	var result []*core.Thought
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			thought, err := r.readThought(tx, id)
			if err != nil {
				return err
			}
			if thought != nil {
				result = append(result, thought)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetThoughtsByDateRange retrieves thoughts created within [start, end).
func (r *ThoughtRepository) GetThoughtsByDateRange(ctx context.Context, userID string, start, end time.Time) ([]*core.Thought, error) {
	if start.Equal(end) {
		end = start.Add(1 * time.Microsecond)
	}

	var prefix, startKey, endKey []byte
	if userID == "" {
		prefix = []byte(thoughtDatePrefix)
		startKey = makePartialThoughtDateKey(start)
		endKey = makePartialThoughtDateKey(end)
	} else {
		prefix = composite(thoughtUserDatePrefix, uint64(core.UserKey(userID)))
		startKey = makePartialUserDateKey(userID, start)
		endKey = makePartialUserDateKey(userID, end)
	}

	var results []*core.Thought
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.ValidForPrefix(prefix); iter.Next() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			key := iter.Item().Key()
			if bytes.Compare(key, endKey) >= 0 {
				break
			}

			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			thought, err := r.readThought(tx, id)
			if err != nil {
				return err
			}
			if thought != nil {
				results = append(results, thought)
			}
		}
		return nil
	}, false)

	return results, err
}

type neighbor struct {
	id       core.ID
	distance float64
}

// FindNearest scans the user's vector index and returns the closest
// non-archived thoughts that pass filters.
func (r *ThoughtRepository) FindNearest(ctx context.Context, userID string, vector []float32, filters *core.SearchFilters, exclude core.ID, limit int) ([]*core.ScoredThought, error) {
	if limit <= 0 || len(vector) == 0 {
		return nil, storage.ErrInvalidQuery
	}

	results := []*core.ScoredThought{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeUserVectorPrefix(userID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		var candidates []neighbor
		for iter.Rewind(); iter.Valid(); iter.Next() {
			id := vectorKeyID(iter.Item().Key())
			if id == exclude {
				continue
			}

			var stored []float32
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				stored, err = storage.UnmarshalVector(val)
				return err
			}); err != nil {
				return err
			}
			if len(stored) != len(vector) {
				continue
			}
			candidates = append(candidates, neighbor{id: id, distance: ai.CosineDistance(vector, stored)})
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		slices.SortFunc(candidates, func(a, b neighbor) int {
			if c := cmp.Compare(a.distance, b.distance); c != 0 {
				return c
			}
			return cmp.Compare(a.id, b.id)
		})

		for _, c := range candidates {
			if len(results) >= limit {
				break
			}
			thought, err := r.readThought(tx, c.id)
			if err != nil {
				return err
			}
			if !visible(thought, userID, filters) {
				continue
			}
			results = append(results, &core.ScoredThought{
				Thought:  thought,
				Score:    1 - c.distance,
				Distance: c.distance,
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// SearchText queries the text index and hydrates the hits.
func (r *ThoughtRepository) SearchText(ctx context.Context, userID, query string, filters *core.SearchFilters, limit int) ([]*core.ScoredThought, error) {
	if r.index == nil {
		return nil, storage.ErrTextIndexUnavailable
	}

	hits, err := r.index.Search(ctx, userID, query, filters, limit)
	if err != nil {
		return nil, err
	}

	results := make([]*core.ScoredThought, 0, len(hits))
	err = r.backend.WithTx(func(tx *badger.Txn) error {
		for _, hit := range hits {
			thought, err := r.readThought(tx, hit.ID)
			if err != nil {
				return err
			}
			if !visible(thought, userID, filters) {
				continue
			}
			results = append(results, &core.ScoredThought{Thought: thought, Score: hit.Score})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Helper methods

// visible reports whether a stored thought may appear in userID's results.
func visible(t *core.Thought, userID string, filters *core.SearchFilters) bool {
	if t == nil || t.UserID != userID || t.Status == core.StatusArchived {
		return false
	}
	return filters.Matches(t)
}

func applyInsertDefaults(t *core.Thought) {
	if t.Status == "" {
		t.Status = core.StatusActive
	}
	if t.Type == "" {
		t.Type = core.ThoughtTypeNote
	}
	if t.Priority == 0 {
		t.Priority = core.DefaultPriority
	}
	if t.Language == "" {
		t.Language = core.DefaultLanguage
	}
	t.Categories = core.NormalizeLabels(t.Categories)
	if len(t.Categories) == 0 {
		t.Categories = nil
	}
}

// nextID draws from the ID sequence. BadgerDB sequences can return 0 on
// first call, so we skip it.
func (r *ThoughtRepository) nextID() (core.ID, error) {
	next, err := r.idSeq.Next()
	if err != nil {
		return 0, err
	}
	if next == 0 {
		next, err = r.idSeq.Next()
		if err != nil {
			return 0, err
		}
	}
	return core.ID(next), nil
}

// putThought writes the record and keeps the secondary indexes in step.
// old is nil for inserts.
func (r *ThoughtRepository) putThought(tx *badger.Txn, t *core.Thought, old *core.Thought) error {
	t.CreatedAt = storage.StoredTime(t.CreatedAt)
	t.UpdatedAt = storage.StoredTime(t.UpdatedAt)
	if t.Deadline != nil {
		deadline := storage.StoredTime(*t.Deadline)
		t.Deadline = &deadline
	}
	if err := tx.Set(makeThoughtKey(t.ID), storage.MarshalThought(t)); err != nil {
		return err
	}

	if old == nil {
		idValue := storage.MarshalID(t.ID)
		if err := tx.Set(makeThoughtDateKey(t.CreatedAt, t.ID), idValue); err != nil {
			return err
		}
		if err := tx.Set(makeUserDateKey(t.UserID, t.CreatedAt, t.ID), idValue); err != nil {
			return err
		}
	}

	vecKey := makeUserVectorKey(t.UserID, t.ID)
	switch {
	case t.HasEmbedding():
		return tx.Set(vecKey, storage.MarshalVector(t.Embedding))
	case old != nil && old.HasEmbedding():
		return tx.Delete(vecKey)
	}
	return nil
}

// readThought reads a thought from the transaction. Returns nil, nil when
// the key is absent.
func (r *ThoughtRepository) readThought(tx *badger.Txn, id core.ID) (*core.Thought, error) {
	item, err := tx.Get(makeThoughtKey(id))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var thought *core.Thought
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		thought, unmarshalErr = storage.UnmarshalThought(val)
		return unmarshalErr
	})
	if err != nil {
		return nil, fmt.Errorf("thought %d: %w", id, err)
	}
	return thought, nil
}

// reindex writes the latest committed version of t to the text index.
// Concurrent writers may commit out of order, so the record is re-read
// under indexMu and the last reindex always sees the newest version.
func (r *ThoughtRepository) reindex(ctx context.Context, t *core.Thought) error {
	if r.index == nil {
		return nil
	}
	r.indexMu.Lock()
	defer r.indexMu.Unlock()

	latest, err := r.GetThought(ctx, t.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reload thought %d: %w", t.ID, err)
	}
	if err := r.index.Index(ctx, latest); err != nil {
		r.logger.Error("failed to update text index", "thought", t.ID, "err", err)
		return fmt.Errorf("index thought %d: %w", t.ID, err)
	}
	return nil
}
