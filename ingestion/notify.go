package ingestion

import (
	"context"

	"github.com/poiesic/noesis/core"
)

// Notifier is told how many connections a freshly processed thought gained.
// Delivery policy such as quiet hours belongs to the implementation.
type Notifier interface {
	NotifyConnections(ctx context.Context, userID string, thoughtID core.ID, count int) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, userID string, thoughtID core.ID, count int) error

// NotifyConnections calls f.
func (f NotifierFunc) NotifyConnections(ctx context.Context, userID string, thoughtID core.ID, count int) error {
	return f(ctx, userID, thoughtID, count)
}

type noopNotifier struct{}

func (noopNotifier) NotifyConnections(context.Context, string, core.ID, int) error { return nil }
