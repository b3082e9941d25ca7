package openclaw

import (
	"context"
	"time"
)

type EventType string

const (
	EventInstanceRegistered EventType = "instance.registered"
	EventInstanceRemoved    EventType = "instance.removed"
	EventInstancePinged     EventType = "instance.pinged"
	EventConfigImported     EventType = "config.imported"
	EventSnapshotCaptured   EventType = "snapshot.captured"
)

// Event describes a mutation that has been persisted.
type Event struct {
	Type       EventType         `json:"type"`
	RecordID   string            `json:"recordId"`
	ParentID   string            `json:"parentId,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
	Meta       map[string]string `json:"meta,omitempty"`
}

// Notifier is told about every persisted mutation. Failures are logged and do not
// fail the operation that produced the event.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}
