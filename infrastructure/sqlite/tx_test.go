package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/uptrace/bun"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	migrationsDir := filepath.Join(filepath.Dir(file), "migrations")
	if err := ApplyMigrations(context.Background(), db, migrationsDir); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

func insertScanner(ctx context.Context, tx bun.Tx, username string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, role, created_at, updated_at)
		 VALUES (?, ?, 'scanner', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		username, "hash")
	return err
}

func countUsers(t *testing.T, db *DB, username string) int {
	t.Helper()
	var count int
	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(ctx, &count)
	})
	if err != nil {
		t.Fatalf("count users: %v", err)
	}
	return count
}

func TestWithWriteTxRollsBackOnError(t *testing.T) {
	db := openTestDB(t)

	boom := errors.New("boom")
	err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		if err := insertScanner(ctx, tx, "gate-rollback"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom error, got: %v", err)
	}

	if count := countUsers(t, db, "gate-rollback"); count != 0 {
		t.Fatalf("expected rollback to remove insert, count=%d", count)
	}
}

func TestWithWriteTxCommitsOnSuccess(t *testing.T) {
	db := openTestDB(t)

	err := db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return insertScanner(ctx, tx, "gate-commit")
	})
	if err != nil {
		t.Fatalf("write tx failed: %v", err)
	}

	if count := countUsers(t, db, "gate-commit"); count != 1 {
		t.Fatalf("expected committed insert, count=%d", count)
	}
}

func TestWithReadTxRejectsWrite(t *testing.T) {
	db := openTestDB(t)

	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return insertScanner(ctx, tx, "gate-readonly")
	})
	if err == nil && countUsers(t, db, "gate-readonly") > 0 {
		t.Fatalf("expected write in read tx to be blocked; write succeeded")
	}
}
