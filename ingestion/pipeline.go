package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/noesis/ai"
	"github.com/poiesic/noesis/classify"
	"github.com/poiesic/noesis/core"
	"github.com/poiesic/noesis/storage"
)

const (
	// DefaultPoolSize is the number of concurrent processing runs.
	DefaultPoolSize = 16
	// DefaultReleaseTimeout bounds how long Release waits for running tasks.
	DefaultReleaseTimeout = 30 * time.Second
)

// Pipeline orchestrates the ingestion and processing of thoughts.
// Processing runs on a non-blocking worker pool; a saturated pool rejects
// work instead of queueing it.
type Pipeline struct {
	thoughts       storage.ThoughtRepository
	connections    storage.ConnectionRepository
	pool           *ants.Pool
	poolSize       int
	releaseTimeout time.Duration
	dimensions     int
	classifier     *classify.Classifier
	finder         *ConnectionFinder
	notifier       Notifier
	processors     []processor
	logger         *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is DefaultPoolSize, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.poolSize = size
		return nil
	}
}

// WithReleaseTimeout sets how long Release waits for in-flight runs.
func WithReleaseTimeout(d time.Duration) Option {
	return func(p *Pipeline) error {
		p.releaseTimeout = d
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithClassifier replaces the classifier built from the provider's
// language model.
func WithClassifier(classifier *classify.Classifier) Option {
	return func(p *Pipeline) error {
		p.classifier = classifier
		return nil
	}
}

// WithConnectionFinder replaces the default ConnectionFinder.
func WithConnectionFinder(finder *ConnectionFinder) Option {
	return func(p *Pipeline) error {
		p.finder = finder
		return nil
	}
}

// WithNotifier sets the collaborator told about discovered connections.
func WithNotifier(notifier Notifier) Option {
	return func(p *Pipeline) error {
		p.notifier = notifier
		return nil
	}
}

// WithEmbeddingDimensions sets the expected vector length. Zero accepts any.
func WithEmbeddingDimensions(dims int) Option {
	return func(p *Pipeline) error {
		if dims < 0 {
			return fmt.Errorf("embedding dimensions must not be negative: %d", dims)
		}
		p.dimensions = dims
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	thoughts storage.ThoughtRepository,
	connections storage.ConnectionRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if thoughts == nil {
		return nil, ErrThoughtRepositoryRequired
	}
	if connections == nil {
		return nil, ErrConnectionRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	// Create pipeline with defaults
	p := &Pipeline{
		thoughts:       thoughts,
		connections:    connections,
		poolSize:       DefaultPoolSize,
		releaseTimeout: DefaultReleaseTimeout,
		notifier:       noopNotifier{},
		logger:         slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.logger = p.logger.With("component", "pipeline")

	if p.classifier == nil {
		p.classifier = classify.NewClassifier(provider.LanguageModel(), classify.WithLogger(p.logger))
	}
	if p.finder == nil {
		finder, err := NewConnectionFinder(thoughts, connections, WithFinderLogger(p.logger))
		if err != nil {
			return nil, err
		}
		p.finder = finder
	}
	if p.notifier == nil {
		p.notifier = noopNotifier{}
	}

	p.processors = []processor{
		&classificationProcessor{thoughts: thoughts, classifier: p.classifier, logger: p.logger.With("processor", "classification")},
		newEmbeddingProcessor(thoughts, provider.Embedder(), p.dimensions, p.logger),
		&connectionProcessor{finder: p.finder, notifier: p.notifier, logger: p.logger.With("processor", "connections")},
	}

	pool, err := ants.NewPool(p.poolSize, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	p.pool = pool

	return p, nil
}

// IngestOptions holds optional parameters for ingestion.
type IngestOptions struct {
	Language  string    // Transcript language hint (DefaultLanguage if empty)
	Source    string    // Origin tag (SourceVoice if empty)
	Timestamp time.Time // Optional creation time (uses current time if zero)
}

// IngestFromTranscript stores a new thought for userID and schedules its
// processing. Only the initial persist happens before returning.
func (p *Pipeline) IngestFromTranscript(ctx context.Context, userID, transcript string, opts *IngestOptions) (*Ticket, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserRequired
	}
	if strings.TrimSpace(transcript) == "" {
		return nil, ErrEmptyTranscript
	}
	if opts == nil {
		opts = &IngestOptions{}
	}

	thought := &core.Thought{
		UserID:        userID,
		RawTranscript: transcript,
		CleanedText:   transcript,
		Type:          core.ThoughtTypeNote,
		Priority:      core.DefaultPriority,
		Status:        core.StatusActive,
		Language:      opts.Language,
		Source:        opts.Source,
		CreatedAt:     opts.Timestamp,
	}
	if thought.Language == "" {
		thought.Language = core.DefaultLanguage
	}
	if thought.Source == "" {
		thought.Source = core.SourceVoice
	}

	added, err := p.thoughts.AddThoughts(ctx, thought)
	if err != nil {
		return nil, err
	}

	return p.submit(ctx, added[0].ID), nil
}

// ReprocessThought schedules processing for an existing thought.
func (p *Pipeline) ReprocessThought(ctx context.Context, id core.ID, opts ...ProcessOption) (*Ticket, error) {
	if _, err := p.thoughts.GetThought(ctx, id); err != nil {
		return nil, err
	}
	return p.submit(ctx, id, opts...), nil
}

// submit hands the run to the pool. The task outlives the caller's context
// but keeps its values.
func (p *Pipeline) submit(ctx context.Context, id core.ID, opts ...ProcessOption) *Ticket {
	ticket := newTicket(id)
	taskCtx := context.WithoutCancel(ctx)

	err := p.pool.Submit(func() {
		result, err := p.Process(taskCtx, id, opts...)
		ticket.complete(result, err)
	})
	if err != nil {
		p.logger.Warn("processing not scheduled, thought left for backfill", "thought", id, "ticket", ticket.ID, "err", err)
		ticket.complete(nil, fmt.Errorf("%w: %w", ErrPipelineBusy, err))
	}
	return ticket
}

// Release waits for in-flight runs up to the release timeout and frees the
// worker pool. The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool == nil {
		return
	}
	if err := p.pool.ReleaseTimeout(p.releaseTimeout); err != nil {
		p.logger.Warn("worker pool released with tasks still running", "err", err)
	}
}
