package sqlite

import (
	"database/sql"

	"github.com/luno/openclaw/adapters/sqlstore"
)

// New returns a store backed by the tables InitSchema creates. SQLite has a
// single connection so db serves both reads and writes.
func New(db *sql.DB) *sqlstore.SQLStore {
	return sqlstore.New(db, db, RecordTable, RelationTable)
}
