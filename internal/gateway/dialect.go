package gateway

import (
	"fmt"
	"strings"

	// Database drivers. Postgres is the production backend; SQLite serves
	// tests and local development; MySQL keeps the gateway contract honest
	// about substitutable backends.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect captures the per-engine SQL differences the gateway needs:
// placeholder style, identifier quoting, case-insensitive matching, and the
// auto-increment primary key clause used by the schema bootstrap.
type Dialect interface {
	Name() string
	DriverName() string
	Placeholder(index int) string
	QuoteIdentifier(name string) string
	// ILike returns a case-insensitive LIKE fragment matching col against
	// the given placeholder.
	ILike(col, placeholder string) string
	AutoIncrementPK() string
}

// dialects maps config driver names to their Dialect implementations.
var dialects = map[string]Dialect{
	"postgres": postgresDialect{},
	"sqlite":   sqliteDialect{},
	"mysql":    mysqlDialect{},
}

// DialectFor returns the dialect registered under the given driver name.
func DialectFor(driver string) (Dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	return d, nil
}

// ---------------------------------------------------------------------------
// PostgreSQL
// ---------------------------------------------------------------------------

type postgresDialect struct{}

func (postgresDialect) Name() string       { return "postgres" }
func (postgresDialect) DriverName() string { return "pgx" }

func (postgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

func (postgresDialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d postgresDialect) ILike(col, placeholder string) string {
	return d.QuoteIdentifier(col) + " ILIKE " + placeholder
}

func (postgresDialect) AutoIncrementPK() string {
	return "BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY"
}

// ---------------------------------------------------------------------------
// SQLite
// ---------------------------------------------------------------------------

type sqliteDialect struct{}

func (sqliteDialect) Name() string       { return "sqlite" }
func (sqliteDialect) DriverName() string { return "sqlite" }

func (sqliteDialect) Placeholder(_ int) string { return "?" }

func (sqliteDialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// SQLite LIKE is case-insensitive for ASCII only, so lower both sides.
// SQLite has no default LIKE escape character, so one is declared.
func (d sqliteDialect) ILike(col, placeholder string) string {
	return "LOWER(" + d.QuoteIdentifier(col) + ") LIKE LOWER(" + placeholder + ") ESCAPE '\\'"
}

func (sqliteDialect) AutoIncrementPK() string {
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

// ---------------------------------------------------------------------------
// MySQL
// ---------------------------------------------------------------------------

type mysqlDialect struct{}

func (mysqlDialect) Name() string       { return "mysql" }
func (mysqlDialect) DriverName() string { return "mysql" }

func (mysqlDialect) Placeholder(_ int) string { return "?" }

func (mysqlDialect) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (d mysqlDialect) ILike(col, placeholder string) string {
	return "LOWER(" + d.QuoteIdentifier(col) + ") LIKE LOWER(" + placeholder + ")"
}

func (mysqlDialect) AutoIncrementPK() string {
	return "BIGINT PRIMARY KEY AUTO_INCREMENT"
}
