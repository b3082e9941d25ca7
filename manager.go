package openclaw

import (
	"context"
	"os"
	"sync"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"k8s.io/utils/clock"

	"github.com/luno/openclaw/internal/logger"
	"github.com/luno/openclaw/internal/metrics"
)

// Manager owns the read-modify-write cycle against a Store. Every mutation reads
// the whole Document, changes it and writes it back. Mutations from one Manager are
// serialised; separate processes sharing a store are not coordinated.
type Manager struct {
	store     Store
	registry  *Registry
	clock     clock.Clock
	logger    Logger
	debugMode bool
	dialer    Dialer
	notifier  Notifier

	mu sync.Mutex
}

func New(store Store, opts ...Option) *Manager {
	o := options{
		clock: clock.RealClock{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = logger.New(os.Stdout)
	}

	if o.registry == nil {
		o.registry = NewDefaultRegistry()
	}

	return &Manager{
		store:     store,
		registry:  o.registry,
		clock:     o.clock,
		logger:    o.logger,
		debugMode: o.debugMode,
		dialer:    o.dialer,
		notifier:  o.notifier,
	}
}

func (m *Manager) Registry() *Registry {
	return m.registry
}

// LookupRecord returns any record by id, including soft deleted ones.
func (m *Manager) LookupRecord(ctx context.Context, id string) (Record, error) {
	doc, err := m.read(ctx, "lookup")
	if err != nil {
		return Record{}, err
	}

	r, ok := doc.lookup(id)
	if !ok {
		return Record{}, errors.Wrap(ErrRecordNotFound, "", j.MKV{"operation": "lookup", "id": id})
	}

	return r, nil
}

// ListRecords returns the live records of the kind registered under slug, in store
// order. A slug that is not registered returns ErrKindNotFound.
func (m *Manager) ListRecords(ctx context.Context, slug string) ([]Record, error) {
	k, ok := m.registry.BySlug(slug)
	if !ok {
		return nil, errors.Wrap(ErrKindNotFound, "", j.MKV{"operation": "list_records", "kind": slug})
	}

	doc, err := m.read(ctx, "list_records")
	if err != nil {
		return nil, err
	}

	records := doc.live(k.ID)
	if records == nil {
		records = []Record{}
	}

	return records, nil
}

func (m *Manager) read(ctx context.Context, op string) (Document, error) {
	doc, err := m.store.ReadAll(ctx)
	if err != nil {
		metrics.StoreErrors.WithLabelValues(op).Inc()
		return Document{}, errors.Wrap(err, "read store", j.MKV{"operation": op})
	}

	return doc, nil
}

// update runs fn against the current document and writes the result back. Nothing
// is written when fn returns an error.
func (m *Manager) update(ctx context.Context, op string, fn func(doc *Document) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.read(ctx, op)
	if err != nil {
		return err
	}

	if err := fn(&doc); err != nil {
		return err
	}

	if err := m.store.WriteAll(ctx, doc); err != nil {
		metrics.StoreErrors.WithLabelValues(op).Inc()
		return errors.Wrap(err, "write store", j.MKV{"operation": op})
	}

	metrics.StoreWrites.WithLabelValues(op).Inc()
	return nil
}

func (m *Manager) kind(slug string) Kind {
	if k, ok := m.registry.BySlug(slug); ok {
		return k
	}

	return Kind{ID: KindID(slug), Slug: slug}
}

func (m *Manager) debug(ctx context.Context, msg string, meta MKV) {
	if !m.debugMode {
		return
	}

	m.logger.Debug(ctx, msg, meta)
}

func (m *Manager) notify(ctx context.Context, typ EventType, recordID, parentID string, meta map[string]string) {
	if m.notifier == nil {
		return
	}

	err := m.notifier.Notify(ctx, Event{
		Type:       typ,
		RecordID:   recordID,
		ParentID:   parentID,
		OccurredAt: m.clock.Now(),
		Meta:       meta,
	})
	if err != nil {
		m.logger.Error(ctx, errors.Wrap(err, "notify"), MKV{"event": string(typ), "id": recordID})
	}
}
