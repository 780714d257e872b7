package badger

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/noesis/core"
	"github.com/poiesic/noesis/storage"
)

// ConnectionRepository implements storage.ConnectionRepository for BadgerDB.
// Each edge is stored once under its canonical pair, plus one adjacency
// entry per endpoint.
type ConnectionRepository struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.ConnectionRepository = (*ConnectionRepository)(nil)

// NewConnectionRepository creates a new ConnectionRepository.
func NewConnectionRepository(backend *Backend) (*ConnectionRepository, error) {
	return &ConnectionRepository{
		backend: backend,
		logger:  slog.Default().With("component", "connection-repository"),
	}, nil
}

// Close is a no-op; the backend is owned by the caller.
func (r *ConnectionRepository) Close() error {
	return nil
}

// UpsertConnection inserts the edge or refreshes the similarity of an
// existing one. CreatedAt survives updates.
func (r *ConnectionRepository) UpsertConnection(ctx context.Context, conn *core.Connection) (*core.Connection, error) {
	if err := core.ValidateConnection(conn); err != nil {
		return nil, err
	}

	var stored *core.Connection
	err := r.backend.Update(ctx, func(tx *badger.Txn) error {
		key := makeConnectionKey(conn.ThoughtA, conn.ThoughtB)
		existing, err := readConnection(tx, key)
		if err != nil {
			return err
		}

		now := storage.StoredTime(time.Now())
		if existing != nil {
			existing.Similarity = conn.Similarity
			existing.UpdatedAt = now
			stored = existing
		} else {
			c := *conn
			if c.Type == "" {
				c.Type = core.ConnectionTypeSemantic
			}
			c.CreatedAt = now
			c.UpdatedAt = now
			stored = &c
		}

		if err := tx.Set(key, storage.MarshalConnection(stored)); err != nil {
			return err
		}
		if err := tx.Set(makeAdjacencyKey(conn.ThoughtA, conn.ThoughtB), nil); err != nil {
			return err
		}
		return tx.Set(makeAdjacencyKey(conn.ThoughtB, conn.ThoughtA), nil)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("stored connection", "a", stored.ThoughtA, "b", stored.ThoughtB, "similarity", stored.Similarity)
	return stored, nil
}

// GetConnection returns the edge between a and b in either order.
func (r *ConnectionRepository) GetConnection(ctx context.Context, a, b core.ID) (*core.Connection, error) {
	a, b = core.CanonicalPair(a, b)

	var result *core.Connection
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readConnection(tx, makeConnectionKey(a, b))
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

// GetConnections returns every edge touching thoughtID, strongest first.
func (r *ConnectionRepository) GetConnections(ctx context.Context, thoughtID core.ID) ([]*core.Connection, error) {
	results := []*core.Connection{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeAdjacencyPrefix(thoughtID)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a, b := core.CanonicalPair(thoughtID, vectorKeyID(iter.Item().Key()))
			conn, err := readConnection(tx, makeConnectionKey(a, b))
			if err != nil {
				return err
			}
			if conn != nil {
				results = append(results, conn)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(x, y *core.Connection) int {
		if c := cmp.Compare(y.Similarity, x.Similarity); c != 0 {
			return c
		}
		return cmp.Compare(x.Other(thoughtID), y.Other(thoughtID))
	})
	return results, nil
}

func readConnection(tx *badger.Txn, key []byte) (*core.Connection, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var conn *core.Connection
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		conn, unmarshalErr = storage.UnmarshalConnection(val)
		return unmarshalErr
	})
	if err != nil {
		return nil, fmt.Errorf("connection: %w", err)
	}
	return conn, nil
}
