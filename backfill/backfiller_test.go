package backfill

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/noesis/ai/mock"
	"github.com/poiesic/noesis/core"
	"github.com/poiesic/noesis/ingestion"
	"github.com/poiesic/noesis/storage"
	"github.com/poiesic/noesis/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepositories(t *testing.T) (storage.ThoughtRepository, storage.ConnectionRepository) {
	t.Helper()
	thoughts, connections, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		connections.Close()
		thoughts.Close()
		backend.Close()
	})
	return thoughts, connections
}

// scriptedProcessor fails the first failures[id] calls for an id.
type scriptedProcessor struct {
	mu       sync.Mutex
	failures map[core.ID]int
	errs     map[core.ID]error
	calls    map[core.ID]int
	options  map[core.ID]int
}

func newScriptedProcessor() *scriptedProcessor {
	return &scriptedProcessor{
		failures: map[core.ID]int{},
		errs:     map[core.ID]error{},
		calls:    map[core.ID]int{},
		options:  map[core.ID]int{},
	}
}

func (p *scriptedProcessor) Process(_ context.Context, id core.ID, opts ...ingestion.ProcessOption) (*ingestion.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls[id]++
	p.options[id] = len(opts)
	if err, ok := p.errs[id]; ok {
		return nil, err
	}
	if p.calls[id] <= p.failures[id] {
		return nil, errors.New("transient")
	}
	return &ingestion.Result{ThoughtID: id, EmbeddingGenerated: true, ConnectionsFound: 1}, nil
}

func fastConfig() *Config {
	cfg := DefaultConfig()
	cfg.RetryDelay = time.Millisecond
	cfg.BatchSize = 2
	return cfg
}

func TestNewBackfiller_RequiresDependencies(t *testing.T) {
	thoughts, _ := setupRepositories(t)

	_, err := NewBackfiller(nil, newScriptedProcessor(), nil, nil)
	assert.ErrorIs(t, err, ErrThoughtRepositoryRequired)

	_, err = NewBackfiller(thoughts, nil, nil, nil)
	assert.ErrorIs(t, err, ErrProcessorRequired)
}

func TestBackfiller_RetriesAndCounts(t *testing.T) {
	thoughts, _ := setupRepositories(t)
	ctx := context.Background()
	added, err := thoughts.AddThoughts(ctx,
		&core.Thought{UserID: "u1", RawTranscript: "one"},
		&core.Thought{UserID: "u1", RawTranscript: "two"},
		&core.Thought{UserID: "u1", RawTranscript: "three"},
		&core.Thought{UserID: "u1", RawTranscript: "four", Source: core.SourceImport},
	)
	require.NoError(t, err)

	processor := newScriptedProcessor()
	processor.failures[added[0].ID] = 2
	processor.failures[added[1].ID] = 10
	processor.errs[added[2].ID] = storage.ErrNotFound

	var out bytes.Buffer
	b, err := NewBackfiller(thoughts, processor, fastConfig(), &out)
	require.NoError(t, err)

	summary, err := b.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, &Summary{Processed: 2, Embedded: 2, Connections: 2, Failed: 2}, summary)
	assert.Equal(t, 3, processor.calls[added[0].ID], "transient failures are retried")
	assert.Equal(t, 3, processor.calls[added[1].ID], "gives up after MaxRetries")
	assert.Equal(t, 1, processor.calls[added[2].ID], "not-found is not retried")
	assert.Equal(t, 0, processor.options[added[0].ID])
	assert.Equal(t, 1, processor.options[added[3].ID], "imported thoughts skip classification")

	assert.Contains(t, out.String(), "Starting backfill of 4 thoughts")
	assert.Contains(t, out.String(), "Backfill complete")
}

func TestBackfiller_Selection(t *testing.T) {
	thoughts, _ := setupRepositories(t)
	ctx := context.Background()
	added, err := thoughts.AddThoughts(ctx,
		&core.Thought{UserID: "u1", RawTranscript: "bare"},
		&core.Thought{UserID: "u1", RawTranscript: "embedded", Embedding: []float32{1, 0}},
		&core.Thought{UserID: "u2", RawTranscript: "other bare"},
	)
	require.NoError(t, err)

	processor := newScriptedProcessor()
	cfg := fastConfig()
	cfg.UserID = "u1"
	cfg.MissingEmbeddingsOnly = true

	b, err := NewBackfiller(thoughts, processor, cfg, nil)
	require.NoError(t, err)

	summary, err := b.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, map[core.ID]int{added[0].ID: 1}, processor.calls)
}

func TestBackfiller_Empty(t *testing.T) {
	thoughts, _ := setupRepositories(t)

	var out bytes.Buffer
	b, err := NewBackfiller(thoughts, newScriptedProcessor(), nil, &out)
	require.NoError(t, err)

	summary, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Summary{}, summary)
	assert.Contains(t, out.String(), "No thoughts to backfill")
}

func TestBackfiller_Cancelled(t *testing.T) {
	thoughts, _ := setupRepositories(t)
	_, err := thoughts.AddThoughts(context.Background(), &core.Thought{UserID: "u1", RawTranscript: "one"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b, err := NewBackfiller(thoughts, newScriptedProcessor(), fastConfig(), nil)
	require.NoError(t, err)

	_, err = b.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackfiller_WithPipeline(t *testing.T) {
	thoughts, connections := setupRepositories(t)
	ctx := context.Background()
	_, err := thoughts.AddThoughts(ctx,
		&core.Thought{UserID: "u1", RawTranscript: "first"},
		&core.Thought{UserID: "u1", RawTranscript: "second"},
	)
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder().WithEmbedTextFunc(func(context.Context, string) ([]float32, error) {
		return []float32{0, 1}, nil
	})
	pipeline, err := ingestion.NewPipeline(thoughts, connections, mock.NewMockProviderWithServices(embedder, nil))
	require.NoError(t, err)
	defer pipeline.Release()

	cfg := fastConfig()
	cfg.MissingEmbeddingsOnly = true
	b, err := NewBackfiller(thoughts, pipeline, cfg, nil)
	require.NoError(t, err)

	summary, err := b.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 2, summary.Embedded)
	assert.Equal(t, 1, summary.Connections, "only the second thought finds an embedded neighbour")

	again, err := b.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Processed)
}
