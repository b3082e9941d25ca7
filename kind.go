package openclaw

import (
	"sync"
)

type FieldType string

const (
	FieldTypeString      FieldType = "string"
	FieldTypeNumber      FieldType = "number"
	FieldTypeBoolean     FieldType = "boolean"
	FieldTypeDate        FieldType = "date"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiSelect FieldType = "multi-select"
	FieldTypeURL         FieldType = "url"
	FieldTypeEmail       FieldType = "email"
	FieldTypeTextarea    FieldType = "textarea"
	FieldTypeTags        FieldType = "tags"
	FieldTypeJSON        FieldType = "json"
	FieldTypeArray       FieldType = "array"
)

// FieldDefinition describes one field of a Kind. A nil Default means the field has
// no default and is left out when absent.
type FieldDefinition struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required,omitempty"`
	Default  any       `json:"default,omitempty"`
}

// Kind is the schema of a record type. Kinds are immutable once registered.
type Kind struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Description string            `json:"description,omitempty"`
	Fields      []FieldDefinition `json:"fields"`
}

// Field returns the definition of the named field.
func (k Kind) Field(name string) (FieldDefinition, bool) {
	for _, f := range k.Fields {
		if f.Name == name {
			return f, true
		}
	}

	return FieldDefinition{}, false
}

// Validate checks that every required field is present and not null.
func (k Kind) Validate(fields Fields) ValidationResult {
	res := ValidationResult{Valid: true}
	for _, f := range k.Fields {
		if !f.Required {
			continue
		}

		if v, ok := fields[f.Name]; ok && v != nil {
			continue
		}

		res.Valid = false
		res.Errors = append(res.Errors, ValidationError{
			Field:   f.Name,
			Message: f.Name + " is required",
			Code:    "required",
		})
	}

	return res
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// Messages returns the message of every error in order.
func (v ValidationResult) Messages() []string {
	msgs := make([]string, 0, len(v.Errors))
	for _, e := range v.Errors {
		msgs = append(msgs, e.Message)
	}

	return msgs
}

// Registry is the catalogue of kinds, keyed by slug. Registering a kind with a slug
// that already exists replaces it in place.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	bySlug map[string]Kind
	byID   map[string]string
}

func NewRegistry(kinds ...Kind) *Registry {
	r := &Registry{
		bySlug: make(map[string]Kind),
		byID:   make(map[string]string),
	}

	for _, k := range kinds {
		r.Register(k)
	}

	return r
}

// NewDefaultRegistry returns a registry holding every built in gateway kind.
func NewDefaultRegistry() *Registry {
	return NewRegistry(BuiltinKinds()...)
}

func (r *Registry) Register(k Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.bySlug[k.Slug]; ok {
		delete(r.byID, prev.ID)
	} else {
		r.order = append(r.order, k.Slug)
	}

	r.bySlug[k.Slug] = k
	r.byID[k.ID] = k.Slug
}

func (r *Registry) BySlug(slug string) (Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	k, ok := r.bySlug[slug]
	return k, ok
}

func (r *Registry) ByID(id string) (Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	slug, ok := r.byID[id]
	if !ok {
		return Kind{}, false
	}

	return r.bySlug[slug], true
}

// All returns the registered kinds in registration order.
func (r *Registry) All() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]Kind, 0, len(r.order))
	for _, slug := range r.order {
		kinds = append(kinds, r.bySlug[slug])
	}

	return kinds
}
