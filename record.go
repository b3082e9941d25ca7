package openclaw

import (
	"time"

	"github.com/google/uuid"
)

// Fields holds the values of a Record keyed by field name. Values are JSON compatible.
type Fields map[string]any

type Status string

const (
	StatusActive     Status = "active"
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Record is a typed unit of persisted state such as an instance, a snapshot or a
// single section of a gateway config.
type Record struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	KindID      string     `json:"kindId"`
	Fields      Fields     `json:"fields"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Tags        []string   `json:"tags"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	Description string     `json:"description,omitempty"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
}

// Deleted reports whether the record has been soft deleted.
func (r Record) Deleted() bool {
	return r.DeletedAt != nil
}

// softDelete tombstones the record. The record stays in the store.
func (r *Record) softDelete(now time.Time) {
	r.DeletedAt = &now
	r.Status = StatusCancelled
	r.UpdatedAt = now
}

// NewRecord builds a record of the given kind and validates its fields against the
// kind's required fields. The record is returned even when it is not valid so that
// the caller can decide whether to escalate.
func NewRecord(kind Kind, title string, fields Fields, now time.Time) (Record, ValidationResult) {
	if fields == nil {
		fields = Fields{}
	}

	r := Record{
		ID:        uuid.New().String(),
		Title:     title,
		KindID:    kind.ID,
		Fields:    fields,
		CreatedAt: now,
		UpdatedAt: now,
		Tags:      []string{},
		Status:    StatusActive,
		Priority:  PriorityMedium,
	}

	return r, kind.Validate(fields)
}

type RelationType string

const (
	RelationParentOf        RelationType = "parent_of"
	RelationDependsOn       RelationType = "depends_on"
	RelationImplements      RelationType = "implements"
	RelationRelatesTo       RelationType = "relates_to"
	RelationInspiredBy      RelationType = "inspired_by"
	RelationTriggers        RelationType = "triggers"
	RelationReferences      RelationType = "references"
	RelationBlocks          RelationType = "blocks"
	RelationAlternativeTo   RelationType = "alternative_to"
	RelationPartOf          RelationType = "part_of"
	RelationFollows         RelationType = "follows"
	RelationIntegrationLink RelationType = "integration_link"
)

// Relation is a directed edge between two record identifiers. Only parent_of and
// follows carry meaning for this package; any other type is stored untouched.
type Relation struct {
	ID        string         `json:"id"`
	SourceID  string         `json:"sourceId"`
	TargetID  string         `json:"targetId"`
	Type      RelationType   `json:"type"`
	CreatedAt time.Time      `json:"createdAt"`
	Metadata  map[string]any `json:"metadata"`
}

func newRelation(typ RelationType, sourceID, targetID string, now time.Time) Relation {
	return Relation{
		ID:        uuid.New().String(),
		SourceID:  sourceID,
		TargetID:  targetID,
		Type:      typ,
		CreatedAt: now,
		Metadata:  map[string]any{},
	}
}
