package memstore

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/luno/openclaw"
)

// New returns an empty in-memory Store. Documents are copied on the way in and out
// so callers cannot mutate stored state.
func New() *Store {
	return &Store{}
}

type Store struct {
	mu     sync.Mutex
	doc    openclaw.Document
	writes int
}

var _ openclaw.Store = (*Store)(nil)

func (s *Store) ReadAll(ctx context.Context) (openclaw.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return copyDocument(s.doc), nil
}

func (s *Store) WriteAll(ctx context.Context, doc openclaw.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = copyDocument(doc)
	s.writes++
	return nil
}

// Writes returns how many times WriteAll has been called.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writes
}

func copyDocument(doc openclaw.Document) openclaw.Document {
	res := openclaw.Document{
		Records:   make([]openclaw.Record, 0, len(doc.Records)),
		Relations: make([]openclaw.Relation, 0, len(doc.Relations)),
	}

	for _, r := range doc.Records {
		r.Fields = maps.Clone(r.Fields)
		r.Tags = slices.Clone(r.Tags)
		if r.DeletedAt != nil {
			at := *r.DeletedAt
			r.DeletedAt = &at
		}
		res.Records = append(res.Records, r)
	}

	for _, rel := range doc.Relations {
		rel.Metadata = maps.Clone(rel.Metadata)
		res.Relations = append(res.Relations, rel)
	}

	return res
}
