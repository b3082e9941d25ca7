package openclaw

import (
	"github.com/luno/openclaw/internal/canonical"
)

// FieldChange is the value of a field on each side of a comparison. A side that
// does not have the field is nil.
type FieldChange struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// ConfigDiff lists what changed between two config documents. Added and Removed hold
// the array elements (as a list) or the whole singleton value. Changed holds the
// field level changes of singleton sections present on both sides.
type ConfigDiff struct {
	Added   map[string]any                    `json:"added"`
	Removed map[string]any                    `json:"removed"`
	Changed map[string]map[string]FieldChange `json:"changed"`
}

// Empty reports whether the two configs were equivalent.
func (d ConfigDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// DiffConfigs compares two config documents section by section. Array elements are
// matched by their "name" field, or by their canonical JSON when they have none, so
// an element that was edited in place shows up as removed and added.
func DiffConfigs(a, b Config) ConfigDiff {
	d := ConfigDiff{
		Added:   map[string]any{},
		Removed: map[string]any{},
		Changed: map[string]map[string]FieldChange{},
	}

	for _, s := range sections {
		if s.array {
			diffArray(d, s.key, a[s.key], b[s.key])
			continue
		}

		diffSingleton(d, s.key, a[s.key], b[s.key])
	}

	return d
}

func diffArray(d ConfigDiff, key string, a, b any) {
	itemsA, _ := asList(a)
	itemsB, _ := asList(b)

	idsA := identities(itemsA)
	idsB := identities(itemsB)

	if added := missingFrom(itemsB, idsA); len(added) > 0 {
		d.Added[key] = added
	}

	if removed := missingFrom(itemsA, idsB); len(removed) > 0 {
		d.Removed[key] = removed
	}
}

func identities(items []any) map[string]bool {
	ids := make(map[string]bool, len(items))
	for _, it := range items {
		ids[identity(it)] = true
	}

	return ids
}

func missingFrom(items []any, ids map[string]bool) []any {
	var res []any
	for _, it := range items {
		if !ids[identity(it)] {
			res = append(res, it)
		}
	}

	return res
}

// identity is the key an array element is matched on. The prefixes keep a name
// from colliding with the canonical form of a whole element.
func identity(item any) string {
	if obj, ok := asObject(item); ok {
		if name, ok := obj["name"]; ok && name != nil {
			return "n:" + canonical.String(name)
		}
	}

	return "j:" + canonical.String(item)
}

func diffSingleton(d ConfigDiff, key string, a, b any) {
	switch {
	case a == nil && b == nil:
		return
	case a == nil:
		d.Added[key] = b
		return
	case b == nil:
		d.Removed[key] = a
		return
	}

	objA, okA := asObject(a)
	objB, okB := asObject(b)
	if !okA || !okB {
		if !canonical.Equal(a, b) {
			d.Removed[key] = a
			d.Added[key] = b
		}
		return
	}

	if changes := DiffFields(objA, objB); len(changes) > 0 {
		d.Changed[key] = changes
	}
}

// DiffFields compares two field maps over the union of their keys. Keys whose
// canonical JSON differs are returned; equal keys are omitted. An absent key
// compares as null.
func DiffFields(a, b map[string]any) map[string]FieldChange {
	changes := map[string]FieldChange{}
	for k, va := range a {
		vb := b[k]
		if canonical.Equal(va, vb) {
			continue
		}

		changes[k] = FieldChange{From: va, To: vb}
	}

	for k, vb := range b {
		if _, ok := a[k]; ok || vb == nil {
			continue
		}

		changes[k] = FieldChange{From: nil, To: vb}
	}

	return changes
}

// DiffSnapshots compares the fields of two snapshots. Identifiers and titles are
// not compared.
func DiffSnapshots(a, b Record) map[string]FieldChange {
	return DiffFields(a.Fields, b.Fields)
}
