// Package db holds the small helpers shared by the SQL code.
package db

import (
	"context"
	"database/sql"
	"fmt"
)

// WithTx runs fn in a transaction on a background context.
func WithTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	return WithTxContext(context.Background(), db, fn)
}

// WithTxContext commits when fn returns nil and rolls back when it returns
// an error, panics, or ctx is cancelled first.
func WithTxContext(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// NullInt64Value unwraps n, with 0 for NULL.
func NullInt64Value(n sql.NullInt64) int64 {
	if n.Valid {
		return n.Int64
	}
	return 0
}

// NullStringValue unwraps s, with "" for NULL.
func NullStringValue(s sql.NullString) string {
	if s.Valid {
		return s.String
	}
	return ""
}

// NullIntArg stores positive values and NULL otherwise, for optional
// numbers such as track numbers and years.
func NullIntArg(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v > 0}
}
