package kafkanotifier_test

import (
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/luno/jettison/jtest"
	"github.com/stretchr/testify/require"

	"github.com/luno/openclaw"
	"github.com/luno/openclaw/adapters/kafkanotifier"
)

var occurredAt = time.Date(2025, time.April, 2, 10, 0, 0, 42_000_000, time.UTC)

func TestEncodeDecode(t *testing.T) {
	e := openclaw.Event{
		Type:       openclaw.EventInstancePinged,
		RecordID:   "inst-1",
		OccurredAt: occurredAt,
		Meta:       map[string]string{"latency_ms": "42"},
	}

	b, err := kafkanotifier.Encode(e)
	jtest.RequireNil(t, err)

	got, err := kafkanotifier.Decode(b)
	jtest.RequireNil(t, err)
	require.Equal(t, e, got)
}

func TestNotify(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	n := kafkanotifier.NewWithProducer(producer, "openclaw-events")
	t.Cleanup(func() { n.Close() })

	e := openclaw.Event{
		Type:       openclaw.EventSnapshotCaptured,
		RecordID:   "snap-1",
		ParentID:   "inst-1",
		OccurredAt: occurredAt,
	}

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		require.Equal(t, "openclaw-events", msg.Topic)

		key, err := msg.Key.Encode()
		jtest.RequireNil(t, err)
		require.Equal(t, "inst-1", string(key))

		value, err := msg.Value.Encode()
		jtest.RequireNil(t, err)

		got, err := kafkanotifier.Decode(value)
		jtest.RequireNil(t, err)
		require.Equal(t, e, got)

		require.Equal(t, []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte("snapshot.captured")},
		}, msg.Headers)
		return nil
	})

	jtest.RequireNil(t, n.Notify(t.Context(), e))
}

func TestNotifyKeysByRecordWithoutParent(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	n := kafkanotifier.NewWithProducer(producer, "openclaw-events")
	t.Cleanup(func() { n.Close() })

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		jtest.RequireNil(t, err)
		require.Equal(t, "inst-1", string(key))
		return nil
	})

	err := n.Notify(t.Context(), openclaw.Event{
		Type:       openclaw.EventInstanceRegistered,
		RecordID:   "inst-1",
		OccurredAt: occurredAt,
	})
	jtest.RequireNil(t, err)
}

func TestNotifyRetriesLeaderElection(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	n := kafkanotifier.NewWithProducer(producer, "openclaw-events")
	t.Cleanup(func() { n.Close() })

	producer.ExpectSendMessageAndFail(sarama.ErrLeaderNotAvailable)
	producer.ExpectSendMessageAndSucceed()

	err := n.Notify(t.Context(), openclaw.Event{Type: openclaw.EventInstanceRemoved, RecordID: "inst-1", OccurredAt: occurredAt})
	jtest.RequireNil(t, err)
}

func TestNotifyFails(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	n := kafkanotifier.NewWithProducer(producer, "openclaw-events")
	t.Cleanup(func() { n.Close() })

	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := n.Notify(t.Context(), openclaw.Event{Type: openclaw.EventInstanceRemoved, RecordID: "inst-1", OccurredAt: occurredAt})
	jtest.Require(t, sarama.ErrOutOfBrokers, err)
}
