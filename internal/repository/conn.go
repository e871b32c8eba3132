// Package repository declares narrow, per-entity persistence
// interfaces over the domain model in internal/pipeline/model. Each
// interface takes a caller-supplied Conn so that a repository method
// can run either directly against the pool or inside a transaction
// the caller controls — the split required by the persistence
// service's single-transaction guarantee (spec §4.7) and by the batch
// driver's dry-run rollback (spec §4.9).
package repository

import (
	"context"
	"database/sql"
)

// Conn is satisfied by both *sql.DB and *sql.Tx. Repositories are
// written against it instead of a concrete type so a caller can hand
// in either a pooled connection or an open transaction.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
