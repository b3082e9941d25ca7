package openclaw

import (
	"slices"
)

type fallbackReason string

const (
	fallbackNone          fallbackReason = ""
	fallbackNoHead        fallbackReason = "no_head"
	fallbackAmbiguousHead fallbackReason = "ambiguous_head"
	fallbackCycle         fallbackReason = "cycle"
	fallbackBrokenChain   fallbackReason = "broken_chain"
)

// orderHistory orders snapshots newest first by walking follows edges from the one
// snapshot that no other snapshot follows. Only edges whose source is one of the
// given snapshots are used. When there is no single head, the walk revisits a
// snapshot, or the walk does not reach every snapshot, the snapshots are sorted by
// creation time instead and the reason is returned.
func orderHistory(snaps []Record, relations []Relation) ([]Record, fallbackReason) {
	if len(snaps) == 0 {
		return []Record{}, fallbackNone
	}

	byID := make(map[string]Record, len(snaps))
	for _, s := range snaps {
		byID[s.ID] = s
	}

	follows := make(map[string]string)
	targets := make(map[string]bool)
	for _, rel := range relations {
		if rel.Type != RelationFollows {
			continue
		}

		if _, ok := byID[rel.SourceID]; !ok {
			continue
		}

		follows[rel.SourceID] = rel.TargetID
	}

	for _, target := range follows {
		targets[target] = true
	}

	var heads []Record
	for _, s := range snaps {
		if !targets[s.ID] {
			heads = append(heads, s)
		}
	}

	switch len(heads) {
	case 0:
		return byCreatedDesc(snaps), fallbackNoHead
	case 1:
	default:
		return byCreatedDesc(snaps), fallbackAmbiguousHead
	}

	visited := make(map[string]bool, len(snaps))
	ordered := make([]Record, 0, len(snaps))
	current, ok := heads[0], true
	for ok {
		if visited[current.ID] {
			return byCreatedDesc(snaps), fallbackCycle
		}

		visited[current.ID] = true
		ordered = append(ordered, current)

		next, hasNext := follows[current.ID]
		if !hasNext {
			break
		}

		current, ok = byID[next]
	}

	if len(ordered) != len(byID) {
		return byCreatedDesc(snaps), fallbackBrokenChain
	}

	return ordered, fallbackNone
}

func byCreatedDesc(snaps []Record) []Record {
	res := slices.Clone(snaps)
	slices.SortStableFunc(res, func(a, b Record) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return res
}
