package linqsql

import (
	"github.com/linqsql/linqsql/internal/dialectgen"
	"github.com/linqsql/linqsql/internal/dialectgen/postgres"
	"github.com/linqsql/linqsql/internal/dialectgen/sqlite"
	"github.com/linqsql/linqsql/internal/qot"
)

// Dialect selects the SQL variant ToSQL renders: parameter placeholder
// syntax, identifier/alias quoting, pagination, and function-name mapping
// all vary per dialect, never per query.
type Dialect = dialectgen.Dialect

// Postgres and SQLite are the two dialects this compiler targets. Both are
// safe for concurrent use and hold no per-query state.
var (
	Postgres Dialect = postgres.New()
	SQLite   Dialect = sqlite.New()
)

func generate(dialect Dialect, op qot.Operation, warn dialectgen.Warner) (string, error) {
	return dialectgen.Generate(dialect, op, warn)
}
