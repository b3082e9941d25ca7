package sqlstore_test

import (
	"database/sql"
	"os"
	"testing"

	"github.com/corverroos/truss"
	_ "github.com/go-sql-driver/mysql"

	"github.com/luno/openclaw/adapters/sqlstore"
)

func ConnectForTesting(t *testing.T) *sql.DB {
	if os.Getenv("OPENCLAW_MYSQL_TESTS") == "" {
		t.Skip("set OPENCLAW_MYSQL_TESTS to run against a local MySQL")
	}

	return truss.ConnectForTesting(t, sqlstore.MySQLSchema("openclaw_records", "openclaw_relations")...)
}
