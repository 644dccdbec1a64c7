package storage

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"velocity/internal/query"
)

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// ScanFunc reads one row in the column order of the repo's table.
type ScanFunc[T any] func(RowScanner) (T, error)

// Repo is the CRUD repository shared by every REST resource.
type Repo[T any] struct {
	db    *sql.DB
	table *query.Table
	scan  ScanFunc[T]
	log   *zap.Logger
}

func NewRepo[T any](db *sql.DB, table *query.Table, scan ScanFunc[T], log *zap.Logger) *Repo[T] {
	return &Repo[T]{db: db, table: table, scan: scan, log: log.With(zap.String("table", table.Name))}
}

func (r *Repo[T]) Table() *query.Table {
	return r.table
}

// List returns one page and the number of rows matching the filters.
func (r *Repo[T]) List(ctx context.Context, p query.ListParams) ([]T, int, error) {
	page, count := r.table.BuildList(p)

	var total int
	if err := r.db.QueryRowContext(ctx, count.SQL, count.Args...).Scan(&total); err != nil {
		r.log.Error("Failed to count rows", zap.Error(err))
		return nil, 0, fmt.Errorf("count %s: %w", r.table.Name, translate(err))
	}

	rows, err := r.db.QueryContext(ctx, page.SQL, page.Args...)
	if err != nil {
		r.log.Error("Failed to query rows", zap.Error(err))
		return nil, 0, fmt.Errorf("list %s: %w", r.table.Name, translate(err))
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		item, err := r.scan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan %s: %w", r.table.Name, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.table.Name, translate(err))
	}

	r.log.Debug("Rows listed", zap.Int("count", len(items)), zap.Int("total", total))
	return items, total, nil
}

func (r *Repo[T]) Get(ctx context.Context, id int64) (T, error) {
	st := r.table.BuildGet(id)
	item, err := r.scan(r.db.QueryRowContext(ctx, st.SQL, st.Args...))
	if err != nil {
		var zero T
		return zero, translate(err)
	}
	return item, nil
}

func (r *Repo[T]) Create(ctx context.Context, vals query.Values) (T, error) {
	st := r.table.BuildInsert(vals)
	item, err := r.scan(r.db.QueryRowContext(ctx, st.SQL, st.Args...))
	if err != nil {
		var zero T
		r.log.Warn("Insert failed", zap.Error(err), zap.Strings("columns", vals.Columns()))
		return zero, translate(err)
	}
	r.log.Debug("Row inserted", zap.Strings("columns", vals.Columns()))
	return item, nil
}

func (r *Repo[T]) Update(ctx context.Context, id int64, vals query.Values) (T, error) {
	var zero T
	st, err := r.table.BuildUpdate(id, vals)
	if err != nil {
		return zero, err
	}
	item, err := r.scan(r.db.QueryRowContext(ctx, st.SQL, st.Args...))
	if err != nil {
		r.log.Warn("Update failed", zap.Error(err), zap.Int64("id", id))
		return zero, translate(err)
	}
	r.log.Debug("Row updated", zap.Int64("id", id), zap.Strings("columns", vals.Columns()))
	return item, nil
}

// UpdateStatus updates a row whose status is in vals and returns the status
// the row had before, read under a row lock in the same statement.
func (r *Repo[T]) UpdateStatus(ctx context.Context, id int64, vals query.Values, stamps query.Values) (T, string, error) {
	var zero T
	v, _ := vals.Get("status")
	status, _ := v.(string)
	st, err := r.table.BuildStatusUpdate(id, vals, status, stamps)
	if err != nil {
		return zero, "", err
	}
	var prev sql.NullString
	row := r.db.QueryRowContext(ctx, st.SQL, st.Args...)
	item, err := r.scan(withTrailing{row, &prev})
	if err != nil {
		r.log.Warn("Status update failed", zap.Error(err), zap.Int64("id", id))
		return zero, "", translate(err)
	}
	r.log.Debug("Row status updated",
		zap.Int64("id", id),
		zap.String("previous", prev.String),
		zap.String("status", status),
	)
	return item, prev.String, nil
}

// withTrailing scans extra RETURNING columns after the ones the ScanFunc reads.
type withTrailing struct {
	RowScanner
	extra *sql.NullString
}

func (w withTrailing) Scan(dest ...any) error {
	return w.RowScanner.Scan(append(dest, w.extra)...)
}

func (r *Repo[T]) Delete(ctx context.Context, id int64) error {
	st := r.table.BuildDelete(id)
	var deleted int64
	if err := r.db.QueryRowContext(ctx, st.SQL, st.Args...).Scan(&deleted); err != nil {
		return translate(err)
	}
	r.log.Info("Row deleted", zap.Int64("id", id))
	return nil
}
