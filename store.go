package openclaw

import "context"

// Document is the whole persisted state: every record and every relation in the
// order they were written.
type Document struct {
	Records   []Record   `json:"records"`
	Relations []Relation `json:"relations"`
}

// Store implementations should all be tested with adaptertest.RunStoreTest. WriteAll
// replaces the whole document and must appear atomic to the caller. ReadAll of a
// store that was never written returns an empty Document.
type Store interface {
	ReadAll(ctx context.Context) (Document, error)
	WriteAll(ctx context.Context, doc Document) error
}

func (d Document) index(id string) int {
	for i := range d.Records {
		if d.Records[i].ID == id {
			return i
		}
	}

	return -1
}

// lookup returns the record with the given id, deleted or not.
func (d Document) lookup(id string) (Record, bool) {
	i := d.index(id)
	if i < 0 {
		return Record{}, false
	}

	return d.Records[i], true
}

// children returns the live records that parentID points at with a parent_of edge,
// in edge order. Duplicate edges yield the child once. An empty kindID matches
// every kind.
func (d Document) children(parentID, kindID string) []Record {
	byID := make(map[string]int, len(d.Records))
	for i, r := range d.Records {
		byID[r.ID] = i
	}

	seen := make(map[string]bool)
	var res []Record
	for _, rel := range d.Relations {
		if rel.Type != RelationParentOf || rel.SourceID != parentID || seen[rel.TargetID] {
			continue
		}

		i, ok := byID[rel.TargetID]
		if !ok {
			continue
		}

		r := d.Records[i]
		if r.Deleted() || (kindID != "" && r.KindID != kindID) {
			continue
		}

		seen[rel.TargetID] = true
		res = append(res, r)
	}

	return res
}

// live returns every record of the kind that has not been deleted, in store order.
func (d Document) live(kindID string) []Record {
	var res []Record
	for _, r := range d.Records {
		if r.Deleted() || r.KindID != kindID {
			continue
		}

		res = append(res, r)
	}

	return res
}
