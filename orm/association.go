package orm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// AssociationConfig describes a join table realizing a many-to-many
// relationship between a source and a target entity.
type AssociationConfig struct {
	JoinTable    string // e.g. "post_authors"
	SourceColumn string // e.g. "post_id"
	TargetColumn string // e.g. "author_id"
}

// Association manages link rows in a join table: the write side of a
// many-to-many relationship. S and T are the source and target key types.
// Generated factory functions construct one per many_to_many relation.
//
// Association never touches the source or target tables themselves; deleting
// a source row is the caller's business (typically inside a Transaction,
// Clear first, then Delete, or let an ON DELETE CASCADE foreign key on the
// join table do it).
type Association[S, T comparable] struct {
	db  Querier
	cfg AssociationConfig
}

// NewAssociation is called by generated factory functions.
func NewAssociation[S, T comparable](db Querier, cfg AssociationConfig) *Association[S, T] {
	return &Association[S, T]{db: db, cfg: cfg}
}

// Attach inserts link rows for (source, target) pairs. Pairs that already
// exist are skipped via the dialect's conflict-ignore clause, so Attach is
// idempotent. An empty target list is a no-op.
func (a *Association[S, T]) Attach(ctx context.Context, source S, targets ...T) error {
	if len(targets) == 0 {
		return nil
	}

	d := a.db.dialect()
	qi := d.QuoteIdent

	rows := make([]string, len(targets))
	args := make([]any, 0, len(targets)*2)
	for i, t := range targets {
		rows[i] = "(?, ?)"
		args = append(args, source, t)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s, %s) VALUES %s",
		qi(a.cfg.JoinTable), qi(a.cfg.SourceColumn), qi(a.cfg.TargetColumn),
		strings.Join(rows, ", "),
	)
	query += d.InsertIgnoreSuffix([]string{a.cfg.SourceColumn, a.cfg.TargetColumn}, qi)
	query = rewritePlaceholders(d, query)

	_, err := a.db.ExecContext(ctx, query, args...)
	return err //nolint:wrapcheck // pass through
}

// Detach deletes the link rows for the given (source, target) pairs.
// Targets that are not linked are silently ignored. An empty target list is
// a no-op.
func (a *Association[S, T]) Detach(ctx context.Context, source S, targets ...T) error {
	if len(targets) == 0 {
		return nil
	}

	d := a.db.dialect()
	qi := d.QuoteIdent

	placeholders := make([]string, len(targets))
	args := make([]any, 0, len(targets)+1)
	args = append(args, source)
	for i, t := range targets {
		placeholders[i] = "?"
		args = append(args, t)
	}

	query := fmt.Sprintf(
		"DELETE FROM %s WHERE %s = ? AND %s IN (%s)",
		qi(a.cfg.JoinTable), qi(a.cfg.SourceColumn), qi(a.cfg.TargetColumn),
		strings.Join(placeholders, ", "),
	)
	query = rewritePlaceholders(d, query)

	_, err := a.db.ExecContext(ctx, query, args...)
	return err //nolint:wrapcheck // pass through
}

// Clear deletes every link row for the given source. Used before deleting
// the source row when the schema has no ON DELETE CASCADE on the join table.
func (a *Association[S, T]) Clear(ctx context.Context, source S) error {
	d := a.db.dialect()
	qi := d.QuoteIdent

	query := fmt.Sprintf(
		"DELETE FROM %s WHERE %s = ?",
		qi(a.cfg.JoinTable), qi(a.cfg.SourceColumn),
	)
	query = rewritePlaceholders(d, query)

	_, err := a.db.ExecContext(ctx, query, source)
	return err //nolint:wrapcheck // pass through
}

// Replace makes targets the exact link set for source: existing links are
// cleared, then the given targets attached. Run it inside Transaction when
// partial state is unacceptable.
func (a *Association[S, T]) Replace(ctx context.Context, source S, targets []T) error {
	if err := a.Clear(ctx, source); err != nil {
		return err
	}
	return a.Attach(ctx, source, targets...)
}

// Targets returns the target keys linked to source, in join-table order.
func (a *Association[S, T]) Targets(ctx context.Context, source S) ([]T, error) {
	pairs, err := QueryJoinTable[S, T](
		ctx, a.db, a.cfg.JoinTable, a.cfg.SourceColumn, a.cfg.TargetColumn, []S{source},
	)
	if err != nil {
		return nil, err
	}
	targets := make([]T, len(pairs))
	for i, p := range pairs {
		targets[i] = p.Target
	}
	return targets, nil
}

// Count returns the number of targets linked to source.
func (a *Association[S, T]) Count(ctx context.Context, source S) (int64, error) {
	d := a.db.dialect()
	qi := d.QuoteIdent

	query := fmt.Sprintf(
		"SELECT COUNT(*) FROM %s WHERE %s = ?",
		qi(a.cfg.JoinTable), qi(a.cfg.SourceColumn),
	)
	query = rewritePlaceholders(d, query)

	rows, err := a.db.QueryContext(ctx, query, source)
	if err != nil {
		return 0, err //nolint:wrapcheck // pass through
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return 0, errors.New("orm: COUNT returned no rows")
	}
	var count int64
	if err := rows.Scan(&count); err != nil {
		return 0, err //nolint:wrapcheck // pass through
	}
	return count, rows.Err() //nolint:wrapcheck // pass through
}
