package kafkanotifier

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/luno/openclaw"
)

const headerEventType = "event_type"

// New connects a sync producer to brokers. Events are published to topic.
func New(brokers []string, topic string, opts ...Option) (*Notifier, error) {
	o := options{config: newConfig()}
	for _, opt := range opts {
		opt(&o)
	}

	if o.config == nil {
		panic("sarama config cannot be nil")
	}

	producer, err := sarama.NewSyncProducer(brokers, o.config)
	if err != nil {
		return nil, errors.Wrap(err, "new sync producer", j.MKV{"topic": topic})
	}

	return NewWithProducer(producer, topic), nil
}

// NewWithProducer publishes events to topic using an existing producer.
func NewWithProducer(producer sarama.SyncProducer, topic string) *Notifier {
	return &Notifier{
		Topic:  topic,
		Writer: producer,
	}
}

func newConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Producer.RequiredAcks = sarama.WaitForAll

	return config
}

type options struct {
	config *sarama.Config
}

type Option func(*options)

func WithConfig(cfg *sarama.Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

type Notifier struct {
	Topic  string
	Writer sarama.SyncProducer
}

var _ openclaw.Notifier = (*Notifier)(nil)

// Notify publishes e keyed by its parent, or by the record when it has no parent,
// so that events about one instance stay in order. Leader elections are retried
// until ctx is done.
func (n *Notifier) Notify(ctx context.Context, e openclaw.Event) error {
	value, err := Encode(e)
	if err != nil {
		return err
	}

	key := e.ParentID
	if key == "" {
		key = e.RecordID
	}

	for ctx.Err() == nil {
		_, _, err := n.Writer.SendMessage(&sarama.ProducerMessage{
			Topic: n.Topic,
			Key:   sarama.StringEncoder(key),
			Value: sarama.ByteEncoder(value),
			Headers: []sarama.RecordHeader{
				{Key: []byte(headerEventType), Value: []byte(e.Type)},
			},
			Timestamp: e.OccurredAt,
		})
		if err != nil && (errors.Is(err, sarama.ErrLeaderNotAvailable) || errors.Is(err, context.DeadlineExceeded)) {
			time.Sleep(time.Millisecond * 100)
			continue
		} else if err != nil {
			return errors.Wrap(err, "send event", j.MKV{
				"type":      string(e.Type),
				"record_id": e.RecordID,
			})
		}

		return nil
	}

	return ctx.Err()
}

func (n *Notifier) Close() error {
	return n.Writer.Close()
}

// Encode marshals e as a protobuf Struct. occurredAt holds the seconds and nanos
// of a protobuf Timestamp.
func Encode(e openclaw.Event) ([]byte, error) {
	ts := timestamppb.New(e.OccurredAt)

	meta := make(map[string]any, len(e.Meta))
	for k, v := range e.Meta {
		meta[k] = v
	}

	s, err := structpb.NewStruct(map[string]any{
		"type":     string(e.Type),
		"recordId": e.RecordID,
		"parentId": e.ParentID,
		"occurredAt": map[string]any{
			"seconds": ts.GetSeconds(),
			"nanos":   ts.GetNanos(),
		},
		"meta": meta,
	})
	if err != nil {
		return nil, errors.Wrap(err, "build event struct", j.MKV{"type": string(e.Type)})
	}

	b, err := proto.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "marshal event", j.MKV{"type": string(e.Type)})
	}

	return b, nil
}

// Decode is the inverse of Encode.
func Decode(b []byte) (openclaw.Event, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(b, &s); err != nil {
		return openclaw.Event{}, errors.Wrap(err, "unmarshal event")
	}

	fields := s.GetFields()
	occurred := fields["occurredAt"].GetStructValue().GetFields()
	ts := &timestamppb.Timestamp{
		Seconds: int64(occurred["seconds"].GetNumberValue()),
		Nanos:   int32(occurred["nanos"].GetNumberValue()),
	}

	var meta map[string]string
	for k, v := range fields["meta"].GetStructValue().GetFields() {
		if meta == nil {
			meta = make(map[string]string)
		}
		meta[k] = v.GetStringValue()
	}

	return openclaw.Event{
		Type:       openclaw.EventType(fields["type"].GetStringValue()),
		RecordID:   fields["recordId"].GetStringValue(),
		ParentID:   fields["parentId"].GetStringValue(),
		OccurredAt: ts.AsTime(),
		Meta:       meta,
	}, nil
}
