package memnotifier

import (
	"context"
	"slices"
	"sync"

	"github.com/luno/openclaw"
)

// New returns a Notifier that keeps every event in memory.
func New() *Notifier {
	return &Notifier{}
}

type Notifier struct {
	mu     sync.Mutex
	events []openclaw.Event
}

var _ openclaw.Notifier = (*Notifier)(nil)

func (n *Notifier) Notify(ctx context.Context, e openclaw.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.events = append(n.events, e)
	return nil
}

// Events returns the events received so far in the order they arrived.
func (n *Notifier) Events() []openclaw.Event {
	n.mu.Lock()
	defer n.mu.Unlock()

	return slices.Clone(n.events)
}
