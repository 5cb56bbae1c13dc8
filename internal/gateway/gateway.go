// Package gateway is a thin typed adapter over the backing SQL database.
// It exposes the small query surface the entity services need (select with
// column projection, eq/ilike-or/gte/lte filters, ordering, inclusive row
// ranges, exact counts, head-only probes, and insert/update/delete) behind
// a dialect seam so any engine with those primitives can substitute.
//
// The gateway does not retry; transient errors surface to the caller.
package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned by One when no row matches the query.
var ErrNotFound = errors.New("record not found")

// ConnectionConfig holds database connection parameters.
type ConnectionConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Gateway wraps a sqlx connection pool with its SQL dialect.
type Gateway struct {
	db      *sqlx.DB
	dialect Dialect
}

// Open connects to the database described by cfg and returns a Gateway.
func Open(cfg ConnectionConfig) (*Gateway, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect(dialect.DriverName(), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%s connect: %w", cfg.Driver, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.Driver == "sqlite" {
		db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes
	}

	return &Gateway{db: db, dialect: dialect}, nil
}

// Close closes the underlying connection pool.
func (g *Gateway) Close() error { return g.db.Close() }

// Ping verifies the database connection is alive.
func (g *Gateway) Ping(ctx context.Context) error { return g.db.PingContext(ctx) }

// DB returns the underlying sqlx pool for callers that need raw access.
func (g *Gateway) DB() *sqlx.DB { return g.db }

// Dialect returns the SQL dialect in use.
func (g *Gateway) Dialect() Dialect { return g.dialect }

// ---------------------------------------------------------------------------
// Query builder
// ---------------------------------------------------------------------------

type condKind int

const (
	condEq condKind = iota
	condGte
	condLte
	condILikeOr
)

type cond struct {
	kind  condKind
	col   string
	cols  []string // for ILikeOr
	value interface{}
}

type orderClause struct {
	col  string
	desc bool
}

// Query is a single select/update/delete statement under construction.
// Builder methods record the first error encountered; execution methods
// report it instead of running a malformed statement.
type Query struct {
	gw      *Gateway
	table   string
	columns []string
	conds   []cond
	orders  []orderClause
	hasRange bool
	from    int
	to      int
	err     error
}

// From starts a query against the given table.
func (g *Gateway) From(table string) *Query {
	q := &Query{gw: g, table: table}
	if err := ValidateIdentifier(table); err != nil {
		q.err = err
	}
	return q
}

// Select restricts the projection to the given columns. Without it the
// query selects *.
func (q *Query) Select(cols ...string) *Query {
	if q.err == nil {
		q.err = ValidateIdentifiers(cols)
	}
	q.columns = cols
	return q
}

// Eq adds an equality filter.
func (q *Query) Eq(col string, value interface{}) *Query {
	return q.addCond(cond{kind: condEq, col: col, value: value})
}

// Gte adds a col >= value filter.
func (q *Query) Gte(col string, value interface{}) *Query {
	return q.addCond(cond{kind: condGte, col: col, value: value})
}

// Lte adds a col <= value filter.
func (q *Query) Lte(col string, value interface{}) *Query {
	return q.addCond(cond{kind: condLte, col: col, value: value})
}

// ILikeOr adds a case-insensitive substring match ORed across the given
// columns. The needle is wrapped in % wildcards.
func (q *Query) ILikeOr(cols []string, needle string) *Query {
	if q.err == nil {
		q.err = ValidateIdentifiers(cols)
	}
	q.conds = append(q.conds, cond{kind: condILikeOr, cols: cols, value: "%" + escapeLike(needle) + "%"})
	return q
}

// OrderBy appends an ordering; dir is "asc" or "desc" (default asc).
func (q *Query) OrderBy(col, dir string) *Query {
	if q.err == nil {
		q.err = ValidateIdentifier(col)
	}
	q.orders = append(q.orders, orderClause{col: col, desc: strings.EqualFold(dir, "desc")})
	return q
}

// Range restricts the result window to rows from..to inclusive (0-based),
// mirroring the remote table API's range semantics.
func (q *Query) Range(from, to int) *Query {
	if from < 0 {
		from = 0
	}
	if to < from {
		to = from
	}
	q.hasRange = true
	q.from = from
	q.to = to
	return q
}

func (q *Query) addCond(c cond) *Query {
	if q.err == nil {
		q.err = ValidateIdentifier(c.col)
	}
	q.conds = append(q.conds, c)
	return q
}

// escapeLike escapes LIKE metacharacters in user-supplied needles.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}

// buildWhere renders the WHERE fragment and its bind args. nextIndex is the
// 1-based placeholder index to start from.
func (q *Query) buildWhere(nextIndex int) (string, []interface{}, int) {
	if len(q.conds) == 0 {
		return "", nil, nextIndex
	}
	d := q.gw.dialect
	parts := make([]string, 0, len(q.conds))
	args := make([]interface{}, 0, len(q.conds))

	for _, c := range q.conds {
		switch c.kind {
		case condEq:
			parts = append(parts, d.QuoteIdentifier(c.col)+" = "+d.Placeholder(nextIndex))
			args = append(args, c.value)
			nextIndex++
		case condGte:
			parts = append(parts, d.QuoteIdentifier(c.col)+" >= "+d.Placeholder(nextIndex))
			args = append(args, c.value)
			nextIndex++
		case condLte:
			parts = append(parts, d.QuoteIdentifier(c.col)+" <= "+d.Placeholder(nextIndex))
			args = append(args, c.value)
			nextIndex++
		case condILikeOr:
			ors := make([]string, 0, len(c.cols))
			for _, col := range c.cols {
				ors = append(ors, d.ILike(col, d.Placeholder(nextIndex)))
				args = append(args, c.value)
				nextIndex++
			}
			parts = append(parts, "("+strings.Join(ors, " OR ")+")")
		}
	}
	return " WHERE " + strings.Join(parts, " AND "), args, nextIndex
}

func (q *Query) buildSelect() (string, []interface{}, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	d := q.gw.dialect

	proj := "*"
	if len(q.columns) > 0 {
		quoted := make([]string, len(q.columns))
		for i, col := range q.columns {
			quoted[i] = d.QuoteIdentifier(col)
		}
		proj = strings.Join(quoted, ", ")
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + proj + " FROM " + d.QuoteIdentifier(q.table))

	where, args, _ := q.buildWhere(1)
	sb.WriteString(where)

	if len(q.orders) > 0 {
		parts := make([]string, len(q.orders))
		for i, o := range q.orders {
			dir := "ASC"
			if o.desc {
				dir = "DESC"
			}
			parts[i] = d.QuoteIdentifier(o.col) + " " + dir
		}
		sb.WriteString(" ORDER BY " + strings.Join(parts, ", "))
	}

	if q.hasRange {
		sb.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", q.to-q.from+1, q.from))
	}

	return sb.String(), args, nil
}

// All executes the select and scans every row into dest, which must be a
// pointer to a slice of structs.
func (q *Query) All(ctx context.Context, dest interface{}) error {
	sqlStr, args, err := q.buildSelect()
	if err != nil {
		return err
	}
	return q.gw.db.SelectContext(ctx, dest, sqlStr, args...)
}

// One executes the select expecting a single row. Returns ErrNotFound when
// no row matches.
func (q *Query) One(ctx context.Context, dest interface{}) error {
	sqlStr, args, err := q.buildSelect()
	if err != nil {
		return err
	}
	if err := q.gw.db.GetContext(ctx, dest, sqlStr, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Count executes a SELECT COUNT(*) with the query's filters, ignoring any
// projection, ordering, or range. This is the exact-count path.
func (q *Query) Count(ctx context.Context) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	d := q.gw.dialect
	where, args, _ := q.buildWhere(1)
	sqlStr := "SELECT COUNT(*) FROM " + d.QuoteIdentifier(q.table) + where

	var count int64
	if err := q.gw.db.GetContext(ctx, &count, sqlStr, args...); err != nil {
		return 0, err
	}
	return count, nil
}

// Head executes the select with LIMIT 0, fetching no rows. It distinguishes
// "table exists and is selectable" from schema or connectivity errors, which
// is all the connection probe needs.
func (q *Query) Head(ctx context.Context) error {
	if q.err != nil {
		return q.err
	}
	d := q.gw.dialect
	proj := "*"
	if len(q.columns) > 0 {
		proj = d.QuoteIdentifier(q.columns[0])
	}
	sqlStr := "SELECT " + proj + " FROM " + d.QuoteIdentifier(q.table) + " LIMIT 0"
	rows, err := q.gw.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return err
	}
	return rows.Close()
}

// Insert writes a single row built from the column->value map. Map keys are
// validated as identifiers and emitted in sorted order so generated SQL is
// deterministic.
func (q *Query) Insert(ctx context.Context, row map[string]interface{}) error {
	if q.err != nil {
		return q.err
	}
	if len(row) == 0 {
		return fmt.Errorf("insert into %s: empty row", q.table)
	}
	d := q.gw.dialect

	cols := sortedKeys(row)
	if err := ValidateIdentifiers(cols); err != nil {
		return err
	}

	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	args := make([]interface{}, len(cols))
	for i, col := range cols {
		quoted[i] = d.QuoteIdentifier(col)
		placeholders[i] = d.Placeholder(i + 1)
		args[i] = row[col]
	}

	sqlStr := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QuoteIdentifier(q.table), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))

	_, err := q.gw.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// Update applies the column->value patch to every row matching the query's
// filters and returns the number of rows affected.
func (q *Query) Update(ctx context.Context, patch map[string]interface{}) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	if len(patch) == 0 {
		return 0, fmt.Errorf("update %s: empty patch", q.table)
	}
	d := q.gw.dialect

	cols := sortedKeys(patch)
	if err := ValidateIdentifiers(cols); err != nil {
		return 0, err
	}

	sets := make([]string, len(cols))
	args := make([]interface{}, 0, len(cols)+len(q.conds))
	idx := 1
	for i, col := range cols {
		sets[i] = d.QuoteIdentifier(col) + " = " + d.Placeholder(idx)
		args = append(args, patch[col])
		idx++
	}

	where, whereArgs, _ := q.buildWhere(idx)
	args = append(args, whereArgs...)

	sqlStr := "UPDATE " + d.QuoteIdentifier(q.table) + " SET " + strings.Join(sets, ", ") + where
	res, err := q.gw.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes every row matching the query's filters and returns the
// number of rows affected. A delete with no filters is rejected.
func (q *Query) Delete(ctx context.Context) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	if len(q.conds) == 0 {
		return 0, fmt.Errorf("delete from %s: refusing to delete without filters", q.table)
	}
	d := q.gw.dialect

	where, args, _ := q.buildWhere(1)
	sqlStr := "DELETE FROM " + d.QuoteIdentifier(q.table) + where
	res, err := q.gw.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
