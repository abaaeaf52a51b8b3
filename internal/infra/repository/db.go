package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type scannable[R any] interface {
	*R
	ScanTargets() []any
}

func queryOne[R any, P scannable[R], T any](ctx context.Context, db DBTX, toDomain func(R) (T, error), sql string, args ...any) (T, error) {
	var row R
	if err := db.QueryRow(ctx, sql, args...).Scan(P(&row).ScanTargets()...); err != nil {
		var zero T
		return zero, err
	}
	return toDomain(row)
}

func queryAll[R any, P scannable[R], T any](ctx context.Context, db DBTX, toDomain func(R) (T, error), sql string, args ...any) ([]T, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var row R
		if err := rows.Scan(P(&row).ScanTargets()...); err != nil {
			return nil, err
		}
		item, err := toDomain(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// pick selects positional arguments by index so one param builder serves
// both insert and update statements.
func pick(params []any, idx ...int) []any {
	out := make([]any, len(idx))
	for i, n := range idx {
		out[i] = params[n]
	}
	return out
}
