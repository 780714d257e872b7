package ingestion

import (
	"context"

	"github.com/google/uuid"
	"github.com/poiesic/noesis/core"
)

// Ticket tracks one asynchronous processing run.
type Ticket struct {
	// ID identifies the run in logs.
	ID string
	// ThoughtID is the thought being processed.
	ThoughtID core.ID

	done   chan struct{}
	result *Result
	err    error
}

func newTicket(thoughtID core.ID) *Ticket {
	return &Ticket{
		ID:        uuid.NewString(),
		ThoughtID: thoughtID,
		done:      make(chan struct{}),
	}
}

// complete records the outcome. It must be called exactly once.
func (t *Ticket) complete(result *Result, err error) {
	t.result = result
	t.err = err
	close(t.done)
}

// Done is closed once the run has finished.
func (t *Ticket) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the run finishes or ctx is cancelled.
func (t *Ticket) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-t.done:
		return t.result, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
