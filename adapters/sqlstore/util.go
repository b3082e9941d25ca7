package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"

	"github.com/luno/openclaw"
)

const (
	recordCols   = " id, title, kind_id, fields, created_at, updated_at, tags, status, priority, description, deleted_at "
	relationCols = " id, source_id, target_id, type, created_at, metadata "
)

// Timestamps are stored as RFC 3339 text in UTC.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func (s *SQLStore) insertRecord(ctx context.Context, tx *sql.Tx, position int, r openclaw.Record) error {
	fields, err := json.Marshal(r.Fields)
	if err != nil {
		return errors.Wrap(err, "marshal fields", j.MKV{"id": r.ID})
	}

	tags, err := json.Marshal(r.Tags)
	if err != nil {
		return errors.Wrap(err, "marshal tags", j.MKV{"id": r.ID})
	}

	var deletedAt sql.NullString
	if r.DeletedAt != nil {
		deletedAt = sql.NullString{String: formatTime(*r.DeletedAt), Valid: true}
	}

	_, err = tx.ExecContext(ctx, "insert into "+s.recordTableName+
		" (position,"+recordCols+") values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		position,
		r.ID,
		r.Title,
		r.KindID,
		string(fields),
		formatTime(r.CreatedAt),
		formatTime(r.UpdatedAt),
		string(tags),
		string(r.Status),
		string(r.Priority),
		r.Description,
		deletedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert record", j.MKV{
			"id":       r.ID,
			"position": position,
		})
	}

	return nil
}

func (s *SQLStore) insertRelation(ctx context.Context, tx *sql.Tx, position int, rel openclaw.Relation) error {
	meta, err := json.Marshal(rel.Metadata)
	if err != nil {
		return errors.Wrap(err, "marshal metadata", j.MKV{"id": rel.ID})
	}

	_, err = tx.ExecContext(ctx, "insert into "+s.relationTableName+
		" (position,"+relationCols+") values (?, ?, ?, ?, ?, ?, ?)",
		position,
		rel.ID,
		rel.SourceID,
		rel.TargetID,
		string(rel.Type),
		formatTime(rel.CreatedAt),
		string(meta),
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert relation", j.MKV{
			"id":       rel.ID,
			"position": position,
		})
	}

	return nil
}

func (s *SQLStore) listRecords(ctx context.Context, tx *sql.Tx) ([]openclaw.Record, error) {
	rows, err := tx.QueryContext(ctx, s.recordSelect)
	if err != nil {
		return nil, errors.Wrap(err, "list records")
	}
	defer rows.Close()

	var res []openclaw.Record
	for rows.Next() {
		r, err := recordScan(rows)
		if err != nil {
			return nil, err
		}

		res = append(res, r)
	}

	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}

	return res, nil
}

func (s *SQLStore) listRelations(ctx context.Context, tx *sql.Tx) ([]openclaw.Relation, error) {
	rows, err := tx.QueryContext(ctx, s.relationSelect)
	if err != nil {
		return nil, errors.Wrap(err, "list relations")
	}
	defer rows.Close()

	var res []openclaw.Relation
	for rows.Next() {
		rel, err := relationScan(rows)
		if err != nil {
			return nil, err
		}

		res = append(res, rel)
	}

	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}

	return res, nil
}

type row interface {
	Scan(dest ...any) error
}

func recordScan(row row) (openclaw.Record, error) {
	var (
		r                    openclaw.Record
		fields, tags         string
		createdAt, updatedAt string
		status, priority     string
		deletedAt            sql.NullString
	)

	err := row.Scan(
		&r.ID,
		&r.Title,
		&r.KindID,
		&fields,
		&createdAt,
		&updatedAt,
		&tags,
		&status,
		&priority,
		&r.Description,
		&deletedAt,
	)
	if err != nil {
		return openclaw.Record{}, errors.Wrap(err, "scan record")
	}

	if err := json.Unmarshal([]byte(fields), &r.Fields); err != nil {
		return openclaw.Record{}, errors.Wrap(err, "unmarshal fields", j.MKV{"id": r.ID})
	}

	if err := json.Unmarshal([]byte(tags), &r.Tags); err != nil {
		return openclaw.Record{}, errors.Wrap(err, "unmarshal tags", j.MKV{"id": r.ID})
	}

	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return openclaw.Record{}, errors.Wrap(err, "parse created_at", j.MKV{"id": r.ID})
	}

	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return openclaw.Record{}, errors.Wrap(err, "parse updated_at", j.MKV{"id": r.ID})
	}

	if deletedAt.Valid {
		at, err := parseTime(deletedAt.String)
		if err != nil {
			return openclaw.Record{}, errors.Wrap(err, "parse deleted_at", j.MKV{"id": r.ID})
		}
		r.DeletedAt = &at
	}

	r.Status = openclaw.Status(status)
	r.Priority = openclaw.Priority(priority)

	return r, nil
}

func relationScan(row row) (openclaw.Relation, error) {
	var (
		rel            openclaw.Relation
		typ, createdAt string
		meta           string
	)

	err := row.Scan(
		&rel.ID,
		&rel.SourceID,
		&rel.TargetID,
		&typ,
		&createdAt,
		&meta,
	)
	if err != nil {
		return openclaw.Relation{}, errors.Wrap(err, "scan relation")
	}

	if err := json.Unmarshal([]byte(meta), &rel.Metadata); err != nil {
		return openclaw.Relation{}, errors.Wrap(err, "unmarshal metadata", j.MKV{"id": rel.ID})
	}

	if rel.CreatedAt, err = parseTime(createdAt); err != nil {
		return openclaw.Relation{}, errors.Wrap(err, "parse created_at", j.MKV{"id": rel.ID})
	}

	rel.Type = openclaw.RelationType(typ)
	return rel, nil
}
