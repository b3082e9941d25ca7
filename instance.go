package openclaw

import (
	"context"
	"maps"
	"strconv"
	"strings"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"

	"github.com/luno/openclaw/internal/metrics"
)

const (
	instanceStatusRegistered = "registered"
	instanceStatusOnline     = "online"
)

// RegisterInstance records a new gateway instance. A url is required. Registering
// the same name twice creates two instances.
func (m *Manager) RegisterInstance(ctx context.Context, name, url, token string) (Record, error) {
	fields := Fields{"status": instanceStatusRegistered}
	if url != "" {
		fields["url"] = url
	}
	if token != "" {
		fields["token"] = token
	}

	var inst Record
	err := m.update(ctx, "register_instance", func(doc *Document) error {
		r, res := NewRecord(m.kind(KindInstance), name, fields, m.clock.Now())
		if !res.Valid {
			return errors.Wrap(ErrValidationFailed, strings.Join(res.Messages(), "; "), j.MKV{
				"operation": "register_instance",
				"name":      name,
			})
		}

		doc.Records = append(doc.Records, r)
		inst = r
		return nil
	})
	if err != nil {
		return Record{}, err
	}

	metrics.RecordsCreated.WithLabelValues(KindInstance).Inc()
	m.notify(ctx, EventInstanceRegistered, inst.ID, "", map[string]string{"name": name})

	return inst, nil
}

// ListInstances returns every live instance in store order.
func (m *Manager) ListInstances(ctx context.Context) ([]Record, error) {
	doc, err := m.read(ctx, "list_instances")
	if err != nil {
		return nil, err
	}

	instances := doc.live(m.kind(KindInstance).ID)
	if instances == nil {
		instances = []Record{}
	}

	return instances, nil
}

// GetInstance returns a live instance. Removed instances are not found.
func (m *Manager) GetInstance(ctx context.Context, id string) (Record, error) {
	doc, err := m.read(ctx, "get_instance")
	if err != nil {
		return Record{}, err
	}

	return m.liveInstance(doc, "get_instance", id)
}

func (m *Manager) liveInstance(doc Document, op, id string) (Record, error) {
	r, ok := doc.lookup(id)
	if !ok || r.Deleted() || r.KindID != m.kind(KindInstance).ID {
		return Record{}, errors.Wrap(ErrRecordNotFound, "", j.MKV{"operation": op, "id": id})
	}

	return r, nil
}

// RemoveInstance soft deletes an instance. Its snapshots and config records are
// left untouched.
func (m *Manager) RemoveInstance(ctx context.Context, id string) error {
	err := m.update(ctx, "remove_instance", func(doc *Document) error {
		if _, err := m.liveInstance(*doc, "remove_instance", id); err != nil {
			return err
		}

		doc.Records[doc.index(id)].softDelete(m.clock.Now())
		return nil
	})
	if err != nil {
		return err
	}

	m.notify(ctx, EventInstanceRemoved, id, "", nil)
	return nil
}

// Ping connects to the instance's gateway and records how long the handshake took.
// A device token issued by the gateway is stored on the instance and presented on
// later connections.
func (m *Manager) Ping(ctx context.Context, id string) (Record, error) {
	start := m.clock.Now()
	gw, err := m.dial(ctx, "ping", id)
	if err != nil {
		return Record{}, err
	}
	latency := m.clock.Since(start)

	deviceToken := gw.DeviceToken()
	m.closeGateway(ctx, gw, id)

	metrics.PingLatency.Observe(latency.Seconds())

	var pinged Record
	err = m.update(ctx, "ping", func(doc *Document) error {
		r, err := m.liveInstance(*doc, "ping", id)
		if err != nil {
			return err
		}

		now := m.clock.Now()
		fields := maps.Clone(r.Fields)
		if fields == nil {
			fields = Fields{}
		}
		fields["lastPingAt"] = formatTime(now)
		fields["lastPingLatencyMs"] = latency.Milliseconds()
		fields["status"] = instanceStatusOnline
		if deviceToken != "" {
			fields["deviceToken"] = deviceToken
		}

		r.Fields = fields
		r.UpdatedAt = now
		doc.Records[doc.index(id)] = r
		pinged = r
		return nil
	})
	if err != nil {
		return Record{}, err
	}

	m.notify(ctx, EventInstancePinged, id, "", map[string]string{
		"latency_ms": strconv.FormatInt(latency.Milliseconds(), 10),
	})

	return pinged, nil
}

// CaptureFromGateway reads the presence of the instance's gateway and captures it as
// a snapshot of the instance.
func (m *Manager) CaptureFromGateway(ctx context.Context, id string) (Record, error) {
	gw, err := m.dial(ctx, "capture_from_gateway", id)
	if err != nil {
		return Record{}, err
	}

	p, err := gw.Presence(ctx)
	m.closeGateway(ctx, gw, id)
	if err != nil {
		return Record{}, errors.Wrap(err, "read presence", j.MKV{"operation": "capture_from_gateway", "id": id})
	}

	return m.CaptureSnapshot(ctx, id, p)
}

// ListLive queries the instance's gateway for the items of one list method. Nothing
// is stored.
func (m *Manager) ListLive(ctx context.Context, id string, method ListMethod) ([]any, error) {
	if !method.valid() {
		return nil, errors.Wrap(ErrValidationFailed, "unknown list method", j.MKV{
			"operation": "list_live",
			"method":    string(method),
		})
	}

	gw, err := m.dial(ctx, "list_live", id)
	if err != nil {
		return nil, err
	}

	items, err := gw.List(ctx, method)
	m.closeGateway(ctx, gw, id)
	if err != nil {
		return nil, errors.Wrap(err, "list", j.MKV{"operation": "list_live", "id": id, "method": string(method)})
	}

	if items == nil {
		items = []any{}
	}

	return items, nil
}

func (m *Manager) dial(ctx context.Context, op, id string) (Gateway, error) {
	if m.dialer == nil {
		return nil, errors.Wrap(ErrDialerNotSet, "", j.MKV{"operation": op, "id": id})
	}

	inst, err := m.GetInstance(ctx, id)
	if err != nil {
		return nil, err
	}

	gw, err := m.dialer.Dial(ctx, targetFor(inst))
	if err != nil {
		return nil, errors.Wrap(err, "dial gateway", j.MKV{"operation": op, "id": id})
	}

	return gw, nil
}

func (m *Manager) closeGateway(ctx context.Context, gw Gateway, id string) {
	if err := gw.Close(); err != nil {
		m.logger.Error(ctx, errors.Wrap(err, "close gateway"), MKV{"id": id})
	}
}
