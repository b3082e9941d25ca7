package redisstore

import (
	"context"
	"encoding/json"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"github.com/redis/go-redis/v9"

	"github.com/luno/openclaw"
)

const defaultKey = "openclaw:document"

// Store keeps the whole document as one JSON value. Every write also bumps a
// version counter under "<key>:version".
type Store struct {
	client redis.UniversalClient
	key    string
}

func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{
		client: client,
		key:    defaultKey,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

type Option func(*Store)

// WithKey sets the key the document is stored under, letting several managers
// share one redis.
func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

var _ openclaw.Store = (*Store)(nil)

func (s *Store) ReadAll(ctx context.Context) (openclaw.Document, error) {
	b, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return openclaw.Document{}, nil
	} else if err != nil {
		return openclaw.Document{}, errors.Wrap(err, "get document", j.MKV{"key": s.key})
	}

	var doc openclaw.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return openclaw.Document{}, errors.Wrap(err, "unmarshal document", j.MKV{"key": s.key})
	}

	return doc, nil
}

func (s *Store) WriteAll(ctx context.Context, doc openclaw.Document) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "marshal document")
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key, b, 0)
		pipe.Incr(ctx, s.versionKey())
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "set document", j.MKV{"key": s.key})
	}

	return nil
}

// Version is the number of writes made to the document.
func (s *Store) Version(ctx context.Context) (int64, error) {
	v, err := s.client.Get(ctx, s.versionKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	} else if err != nil {
		return 0, errors.Wrap(err, "get version", j.MKV{"key": s.key})
	}

	return v, nil
}

func (s *Store) versionKey() string {
	return s.key + ":version"
}
