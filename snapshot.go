package openclaw

import (
	"context"
	"time"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"

	"github.com/luno/openclaw/internal/canonical"
	"github.com/luno/openclaw/internal/metrics"
)

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// CaptureSnapshot persists a snapshot of p as a child of parentID. The new snapshot
// follows the newest live snapshot the parent already had.
func (m *Manager) CaptureSnapshot(ctx context.Context, parentID string, p Presence) (Record, error) {
	var snap Record
	err := m.update(ctx, "capture_snapshot", func(doc *Document) error {
		now := m.clock.Now()
		kind := m.kind(KindSnapshot)

		config := p.Config
		if config == nil {
			config = map[string]any{}
		}

		capturedAt := formatTime(now)
		r, res := NewRecord(kind, "Snapshot "+capturedAt, Fields{
			"instanceId":   parentID,
			"capturedAt":   capturedAt,
			"config":       canonical.String(config),
			"agentCount":   len(p.Agents),
			"channelCount": len(p.Channels),
			"modelCount":   len(p.Models),
		}, now)
		if !res.Valid {
			return errors.Wrap(ErrValidationFailed, "", j.MKV{"operation": "capture_snapshot", "id": parentID})
		}

		previous, hasPrevious := latest(snapshotsOf(*doc, kind.ID, parentID))

		doc.Records = append(doc.Records, r)
		doc.Relations = append(doc.Relations, newRelation(RelationParentOf, parentID, r.ID, now))
		if hasPrevious {
			doc.Relations = append(doc.Relations, newRelation(RelationFollows, r.ID, previous.ID, now))
		}

		snap = r
		return nil
	})
	if err != nil {
		return Record{}, err
	}

	metrics.SnapshotsCaptured.Inc()
	metrics.RecordsCreated.WithLabelValues(KindSnapshot).Inc()
	m.notify(ctx, EventSnapshotCaptured, snap.ID, parentID, nil)

	return snap, nil
}

// ListSnapshots returns the live snapshots of parentID in store order. An unknown
// parent has no snapshots.
func (m *Manager) ListSnapshots(ctx context.Context, parentID string) ([]Record, error) {
	doc, err := m.read(ctx, "list_snapshots")
	if err != nil {
		return nil, err
	}

	return snapshotsOf(doc, m.kind(KindSnapshot).ID, parentID), nil
}

// LatestSnapshot returns the most recently created live snapshot of parentID.
func (m *Manager) LatestSnapshot(ctx context.Context, parentID string) (Record, error) {
	snaps, err := m.ListSnapshots(ctx, parentID)
	if err != nil {
		return Record{}, err
	}

	r, ok := latest(snaps)
	if !ok {
		return Record{}, errors.Wrap(ErrSnapshotNotFound, "", j.MKV{"operation": "latest_snapshot", "id": parentID})
	}

	return r, nil
}

// History returns the live snapshots of parentID newest first, following the chain
// of follows relations when it is consistent and creation time otherwise.
func (m *Manager) History(ctx context.Context, parentID string) ([]Record, error) {
	doc, err := m.read(ctx, "history")
	if err != nil {
		return nil, err
	}

	ordered, reason := orderHistory(snapshotsOf(doc, m.kind(KindSnapshot).ID, parentID), doc.Relations)
	if reason != fallbackNone {
		metrics.HistoryFallbacks.WithLabelValues(string(reason)).Inc()
		m.debug(ctx, "history ordered by creation time", MKV{
			"parent_id": parentID,
			"reason":    string(reason),
		})
	}

	return ordered, nil
}

// CompareSnapshots diffs the fields of two snapshots looked up by id. Soft deleted
// snapshots can still be compared.
func (m *Manager) CompareSnapshots(ctx context.Context, idA, idB string) (map[string]FieldChange, error) {
	doc, err := m.read(ctx, "compare_snapshots")
	if err != nil {
		return nil, err
	}

	kindID := m.kind(KindSnapshot).ID
	find := func(id string) (Record, error) {
		r, ok := doc.lookup(id)
		if !ok || r.KindID != kindID {
			return Record{}, errors.Wrap(ErrSnapshotNotFound, "", j.MKV{"operation": "compare_snapshots", "id": id})
		}
		return r, nil
	}

	a, err := find(idA)
	if err != nil {
		return nil, err
	}

	b, err := find(idB)
	if err != nil {
		return nil, err
	}

	return DiffSnapshots(a, b), nil
}

// snapshotsOf returns the live snapshots that parentID has a parent_of edge to, in
// store order.
func snapshotsOf(doc Document, kindID, parentID string) []Record {
	ids := make(map[string]bool)
	for _, rel := range doc.Relations {
		if rel.Type == RelationParentOf && rel.SourceID == parentID {
			ids[rel.TargetID] = true
		}
	}

	snaps := []Record{}
	for _, r := range doc.Records {
		if ids[r.ID] && r.KindID == kindID && !r.Deleted() {
			snaps = append(snaps, r)
		}
	}

	return snaps
}

// latest returns the record with the newest creation time. Ties go to the record
// later in store order.
func latest(records []Record) (Record, bool) {
	if len(records) == 0 {
		return Record{}, false
	}

	newest := records[0]
	for _, r := range records[1:] {
		if !r.CreatedAt.Before(newest.CreatedAt) {
			newest = r
		}
	}

	return newest, true
}

func formatTime(t time.Time) string {
	return t.UTC().Format(isoMillis)
}
