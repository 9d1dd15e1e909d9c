package reasons

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"scangate/infrastructure/sqlite"
)

func openReasonsTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "reasons-test.db")
	db, err := sqlite.OpenDB(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	migrationsDir := filepath.Join(filepath.Dir(file), "..", "..", "infrastructure", "sqlite", "migrations")
	if err := sqlite.ApplyMigrations(context.Background(), db, migrationsDir); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

func TestCreateReason_DefaultsActive(t *testing.T) {
	db := openReasonsTestDB(t)

	reason, err := CreateReason(context.Background(), db, nil, 1, "damaged in transit")
	if err != nil {
		t.Fatalf("create reason: %v", err)
	}
	if !reason.Active {
		t.Fatalf("expected new reason to be active")
	}

	active, err := IsActiveReason(context.Background(), db, reason.ID)
	if err != nil {
		t.Fatalf("is active: %v", err)
	}
	if !active {
		t.Fatalf("expected reason to be active")
	}
}

func TestCreateReason_NameRequired(t *testing.T) {
	db := openReasonsTestDB(t)

	_, err := CreateReason(context.Background(), db, nil, 1, "  ")
	if !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
}

func TestUpdateReason_ToggleOffHidesFromCancelFlow(t *testing.T) {
	db := openReasonsTestDB(t)

	reason, err := CreateReason(context.Background(), db, nil, 1, "wrong item")
	if err != nil {
		t.Fatalf("create reason: %v", err)
	}

	off := false
	if _, err := UpdateReason(context.Background(), db, nil, 1, reason.ID, UpdateReasonInput{Active: &off}); err != nil {
		t.Fatalf("update reason: %v", err)
	}

	active, err := IsActiveReason(context.Background(), db, reason.ID)
	if err != nil {
		t.Fatalf("is active: %v", err)
	}
	if active {
		t.Fatalf("expected toggled-off reason to be inactive")
	}
}

func TestIsActiveReason_UnknownReasonIsInactive(t *testing.T) {
	db := openReasonsTestDB(t)

	active, err := IsActiveReason(context.Background(), db, 404)
	if err != nil {
		t.Fatalf("is active: %v", err)
	}
	if active {
		t.Fatalf("unknown reason must be inactive")
	}
}

func TestUpdateReason_UnknownReason(t *testing.T) {
	db := openReasonsTestDB(t)

	name := "renamed"
	_, err := UpdateReason(context.Background(), db, nil, 1, 404, UpdateReasonInput{Name: &name})
	if !errors.Is(err, ErrReasonNotFound) {
		t.Fatalf("expected ErrReasonNotFound, got %v", err)
	}
}
