package orm

import (
	"fmt"
	"strings"
)

// Dialect abstracts SQL differences between database engines.
type Dialect interface {
	// Placeholder returns the bind parameter placeholder for the given
	// 1-based index. MySQL and SQLite return "?" regardless of index;
	// PostgreSQL returns "$1", "$2", etc.
	Placeholder(index int) string

	// QuoteIdent quotes an identifier (table name, column name) to safely
	// handle SQL reserved words. MySQL uses backticks; PostgreSQL and
	// SQLite use double quotes.
	QuoteIdent(name string) string

	// UseReturning reports whether INSERT should use a RETURNING clause
	// to retrieve the auto-generated primary key (PostgreSQL, SQLite)
	// rather than relying on LastInsertId (MySQL).
	UseReturning() bool

	// ReturningClause returns the RETURNING clause appended to INSERT
	// statements. Returns an empty string for dialects that do not
	// support RETURNING (MySQL).
	ReturningClause(pk string) string

	// UpsertSuffix returns the clause appended to an INSERT to update
	// updateCols when the primary key conflicts. qi is the identifier
	// quoting function.
	UpsertSuffix(pk string, updateCols []string, qi func(string) string) string

	// InsertIgnoreSuffix returns the clause appended to an INSERT to
	// silently skip rows that conflict on conflictCols. Used for
	// duplicate-tolerant link-row inserts on join tables.
	InsertIgnoreSuffix(conflictCols []string, qi func(string) string) string
}

// MySQL is the Dialect for MySQL / MariaDB.
var MySQL Dialect = mysqlDialect{}

// PostgreSQL is the Dialect for PostgreSQL.
var PostgreSQL Dialect = postgresDialect{}

// SQLite is the Dialect for SQLite (tested against modernc.org/sqlite).
var SQLite Dialect = sqliteDialect{}

type mysqlDialect struct{}

func (mysqlDialect) Placeholder(_ int) string        { return "?" }
func (mysqlDialect) QuoteIdent(name string) string   { return "`" + name + "`" }
func (mysqlDialect) UseReturning() bool              { return false }
func (mysqlDialect) ReturningClause(_ string) string { return "" }

func (mysqlDialect) UpsertSuffix(_ string, updateCols []string, qi func(string) string) string {
	sets := make([]string, len(updateCols))
	for i, col := range updateCols {
		sets[i] = fmt.Sprintf("%s = VALUES(%s)", qi(col), qi(col))
	}
	return " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
}

func (mysqlDialect) InsertIgnoreSuffix(conflictCols []string, qi func(string) string) string {
	// MySQL has no ON CONFLICT DO NOTHING; a self-assignment on the first
	// conflict column turns the duplicate insert into a no-op.
	if len(conflictCols) == 0 {
		return ""
	}
	col := qi(conflictCols[0])
	return fmt.Sprintf(" ON DUPLICATE KEY UPDATE %s = %s", col, col)
}

type postgresDialect struct{}

func (postgresDialect) Placeholder(index int) string     { return fmt.Sprintf("$%d", index) }
func (postgresDialect) QuoteIdent(name string) string    { return `"` + name + `"` }
func (postgresDialect) UseReturning() bool               { return true }
func (postgresDialect) ReturningClause(pk string) string { return ` RETURNING "` + pk + `"` }

func (postgresDialect) UpsertSuffix(pk string, updateCols []string, qi func(string) string) string {
	return onConflictUpdate(pk, updateCols, qi)
}

func (postgresDialect) InsertIgnoreSuffix(conflictCols []string, qi func(string) string) string {
	return onConflictNothing(conflictCols, qi)
}

type sqliteDialect struct{}

func (sqliteDialect) Placeholder(_ int) string         { return "?" }
func (sqliteDialect) QuoteIdent(name string) string    { return `"` + name + `"` }
func (sqliteDialect) UseReturning() bool               { return true }
func (sqliteDialect) ReturningClause(pk string) string { return ` RETURNING "` + pk + `"` }

func (sqliteDialect) UpsertSuffix(pk string, updateCols []string, qi func(string) string) string {
	return onConflictUpdate(pk, updateCols, qi)
}

func (sqliteDialect) InsertIgnoreSuffix(conflictCols []string, qi func(string) string) string {
	return onConflictNothing(conflictCols, qi)
}

// onConflictUpdate builds the ON CONFLICT ... DO UPDATE suffix shared by
// PostgreSQL and SQLite.
func onConflictUpdate(pk string, updateCols []string, qi func(string) string) string {
	sets := make([]string, len(updateCols))
	for i, col := range updateCols {
		sets[i] = fmt.Sprintf("%s = EXCLUDED.%s", qi(col), qi(col))
	}
	return fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s", qi(pk), strings.Join(sets, ", "))
}

// onConflictNothing builds the ON CONFLICT ... DO NOTHING suffix shared by
// PostgreSQL and SQLite.
func onConflictNothing(conflictCols []string, qi func(string) string) string {
	if len(conflictCols) == 0 {
		return " ON CONFLICT DO NOTHING"
	}
	quoted := make([]string, len(conflictCols))
	for i, col := range conflictCols {
		quoted[i] = qi(col)
	}
	return fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", strings.Join(quoted, ", "))
}

// rewritesPlaceholders reports whether queries built with ? need their
// placeholders rewritten for this dialect.
func rewritesPlaceholders(d Dialect) bool {
	return d.Placeholder(1) != "?"
}
