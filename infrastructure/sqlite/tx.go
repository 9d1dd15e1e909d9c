package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
)

var errNotInitialized = errors.New("sqlite handles are not initialized")

// WithWriteTx runs fn in an explicit write transaction on the single-writer
// handle.
func (db *DB) WithWriteTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	if db == nil || db.W == nil {
		return errNotInitialized
	}
	return db.W.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}

// WithReadTx runs fn in a read-only transaction on the read pool.
func (db *DB) WithReadTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	if db == nil || db.R == nil {
		return errNotInitialized
	}
	return db.R.RunInTx(ctx, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}
