package openclaw

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"github.com/robfig/cron/v3"

	"github.com/luno/openclaw/internal/metrics"
)

// Decomposed is the output of Decompose: one record per config item and one
// parent_of relation per record, in section processing order.
type Decomposed struct {
	Records   []Record   `json:"records"`
	Relations []Relation `json:"relations"`
}

// Decompose splits config into child records of parentID. Unknown keys and null
// sections are ignored. Array elements that are not objects are skipped. Nothing is
// persisted; see ImportConfig.
func (m *Manager) Decompose(ctx context.Context, config Config, parentID string) Decomposed {
	now := m.clock.Now()
	res := Decomposed{
		Records:   []Record{},
		Relations: []Relation{},
	}

	add := func(s section, kind Kind, item map[string]any) {
		r, _ := NewRecord(kind, s.title(item), s.toRecordFields(kind, item), now)
		res.Records = append(res.Records, r)
		res.Relations = append(res.Relations, newRelation(RelationParentOf, parentID, r.ID, now))
	}

	for _, s := range sections {
		v, ok := config[s.key]
		if !ok || v == nil {
			continue
		}

		kind := m.kind(s.kind)
		if !s.array {
			item, ok := asObject(v)
			if !ok {
				m.skipped(ctx, s.key, -1)
				continue
			}

			add(s, kind, item)
			continue
		}

		items, ok := asList(v)
		if !ok {
			m.skipped(ctx, s.key, -1)
			continue
		}

		for i, el := range items {
			item, ok := asObject(el)
			if !ok {
				m.skipped(ctx, s.key, i)
				continue
			}

			add(s, kind, item)
		}
	}

	return res
}

func (m *Manager) skipped(ctx context.Context, key string, index int) {
	metrics.DecomposeSkipped.WithLabelValues(key).Inc()
	m.debug(ctx, "skipping config value that is not an object", MKV{
		"section": key,
		"index":   strconv.Itoa(index),
	})
}

// Compose rebuilds the config document of parentID from its live child records.
// A parent without children composes to an empty Config.
func (m *Manager) Compose(ctx context.Context, parentID string) (Config, error) {
	doc, err := m.read(ctx, "compose")
	if err != nil {
		return nil, err
	}

	return m.ComposeRecords(ctx, doc.children(parentID, "")), nil
}

// ComposeRecords builds a config document from records. Records of kinds that do
// not map to a config section are skipped. When several records exist for a
// singleton section the last one wins.
func (m *Manager) ComposeRecords(ctx context.Context, records []Record) Config {
	config := Config{}
	for _, r := range records {
		s, kind, ok := m.sectionFor(r.KindID)
		if !ok {
			continue
		}

		item := s.fromRecordFields(kind, r.Fields)
		if !s.array {
			if _, exists := config[s.key]; exists {
				m.debug(ctx, "multiple records for singleton section", MKV{"section": s.key, "id": r.ID})
			}
			config[s.key] = item
			continue
		}

		list, _ := config[s.key].([]any)
		config[s.key] = append(list, item)
	}

	return config
}

func (m *Manager) sectionFor(kindID string) (section, Kind, bool) {
	if k, ok := m.registry.ByID(kindID); ok {
		s, ok := sectionByKind(k.Slug)
		return s, k, ok
	}

	for _, s := range sections {
		if KindID(s.kind) == kindID {
			return s, m.kind(s.kind), true
		}
	}

	return section{}, Kind{}, false
}

// ImportConfig replaces the config of a live parent record: every live child that
// holds a config section is soft deleted and the decomposed config is persisted in
// the same write.
func (m *Manager) ImportConfig(ctx context.Context, parentID string, config Config) (Decomposed, error) {
	var res Decomposed
	err := m.update(ctx, "import_config", func(doc *Document) error {
		parent, ok := doc.lookup(parentID)
		if !ok || parent.Deleted() {
			return errors.Wrap(ErrRecordNotFound, "", j.MKV{"operation": "import_config", "id": parentID})
		}

		now := m.clock.Now()
		for _, child := range doc.children(parentID, "") {
			if _, _, ok := m.sectionFor(child.KindID); !ok {
				continue
			}

			doc.Records[doc.index(child.ID)].softDelete(now)
		}

		res = m.Decompose(ctx, config, parentID)
		doc.Records = append(doc.Records, res.Records...)
		doc.Relations = append(doc.Relations, res.Relations...)
		return nil
	})
	if err != nil {
		return Decomposed{}, err
	}

	for _, r := range res.Records {
		if k, ok := m.registry.ByID(r.KindID); ok {
			metrics.RecordsCreated.WithLabelValues(k.Slug).Inc()
		}
	}

	m.notify(ctx, EventConfigImported, parentID, "", map[string]string{
		"records": strconv.Itoa(len(res.Records)),
	})

	return res, nil
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateConfig checks every item of every known section against the required
// fields of its kind and checks that cron job schedules parse. Field names are
// reported as section[index].field, or section.field for singleton sections.
func (m *Manager) ValidateConfig(config Config) ValidationResult {
	res := ValidationResult{Valid: true}
	fail := func(name, msg, code string) {
		res.Valid = false
		res.Errors = append(res.Errors, ValidationError{Field: name, Message: msg, Code: code})
	}

	check := func(prefix string, kind Kind, item map[string]any) {
		for _, e := range kind.Validate(item).Errors {
			fail(prefix+"."+e.Field, prefix+"."+e.Message, e.Code)
		}
	}

	for _, s := range sections {
		v, ok := config[s.key]
		if !ok || v == nil {
			continue
		}

		kind := m.kind(s.kind)
		if !s.array {
			item, ok := asObject(v)
			if !ok {
				fail(s.key, s.key+" must be an object", "type")
				continue
			}

			check(s.key, kind, item)
			continue
		}

		items, ok := asList(v)
		if !ok {
			fail(s.key, s.key+" must be a list", "type")
			continue
		}

		for i, el := range items {
			prefix := fmt.Sprintf("%s[%d]", s.key, i)
			item, ok := asObject(el)
			if !ok {
				fail(prefix, prefix+" must be an object", "type")
				continue
			}

			check(prefix, kind, item)

			if s.kind != KindCronJob {
				continue
			}

			schedule, ok := item["schedule"].(string)
			if !ok || schedule == "" {
				continue
			}

			if _, err := cronParser.Parse(schedule); err != nil {
				fail(prefix+".schedule", prefix+".schedule is not a valid cron expression: "+err.Error(), "schedule")
			}
		}
	}

	return res
}

// LoadConfig decodes a JSON config document.
func LoadConfig(r io.Reader) (Config, error) {
	var v any
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return nil, errors.Wrap(ErrInvalidConfig, err.Error())
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errors.Wrap(ErrInvalidConfig, "config must be a JSON object")
	}

	return Config(obj), nil
}
