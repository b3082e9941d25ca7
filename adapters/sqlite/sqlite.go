package sqlite

import (
	"database/sql"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	_ "modernc.org/sqlite"
)

const (
	RecordTable   = "openclaw_records"
	RelationTable = "openclaw_relations"
)

// Open creates a SQLite connection tuned for a single local writer.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open database", j.MKV{"path": path})
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=10000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA busy_timeout=5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "set pragma", j.MKV{"pragma": pragma})
		}
	}

	// One connection serialises writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return db, nil
}

// InitSchema creates the record and relation tables if they do not exist.
func InitSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS openclaw_records (
    position     INTEGER NOT NULL PRIMARY KEY,
    id           TEXT NOT NULL,
    title        TEXT NOT NULL,
    kind_id      TEXT NOT NULL,
    fields       TEXT NOT NULL,
    created_at   TEXT NOT NULL,
    updated_at   TEXT NOT NULL,
    tags         TEXT NOT NULL,
    status       TEXT NOT NULL,
    priority     TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    deleted_at   TEXT
);

CREATE INDEX IF NOT EXISTS idx_records_id
    ON openclaw_records (id);
CREATE INDEX IF NOT EXISTS idx_records_kind_id
    ON openclaw_records (kind_id);

CREATE TABLE IF NOT EXISTS openclaw_relations (
    position     INTEGER NOT NULL PRIMARY KEY,
    id           TEXT NOT NULL,
    source_id    TEXT NOT NULL,
    target_id    TEXT NOT NULL,
    type         TEXT NOT NULL,
    created_at   TEXT NOT NULL,
    metadata     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_relations_source_type
    ON openclaw_relations (source_id, type);`

	if _, err := db.Exec(schema); err != nil {
		return errors.Wrap(err, "init schema")
	}

	return nil
}
