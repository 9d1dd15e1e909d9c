package devices

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/uptrace/bun"

	"scangate/infrastructure/sqlite"
	"scangate/models"
)

func openDevicesTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "devices-test.db")
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

func TestRegisterDevice_AssignsIDAndActiveStatus(t *testing.T) {
	db := openDevicesTestDB(t)

	device, err := RegisterDevice(context.Background(), db, nil, 1, CreateDeviceInput{Name: "Dock 3 scanner"})
	if err != nil {
		t.Fatalf("register device: %v", err)
	}
	if device.ID == "" {
		t.Fatalf("expected generated device id")
	}
	if device.Status != models.DeviceStatusActive {
		t.Fatalf("expected active status, got %s", device.Status)
	}

	devices, err := ListDevices(context.Background(), db)
	if err != nil {
		t.Fatalf("list devices: %v", err)
	}
	if len(devices) != 1 || devices[0].Name != "Dock 3 scanner" {
		t.Fatalf("unexpected devices %+v", devices)
	}
}

func TestRegisterDevice_NameRequired(t *testing.T) {
	db := openDevicesTestDB(t)

	_, err := RegisterDevice(context.Background(), db, nil, 1, CreateDeviceInput{Name: "   "})
	if !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
}

func TestUpdateDevice_RejectsUnknownStatus(t *testing.T) {
	db := openDevicesTestDB(t)

	device, err := RegisterDevice(context.Background(), db, nil, 1, CreateDeviceInput{Name: "Dock 1"})
	if err != nil {
		t.Fatalf("register device: %v", err)
	}

	bad := "retired"
	_, err = UpdateDevice(context.Background(), db, nil, 1, device.ID, UpdateDeviceInput{Status: &bad})
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestDisableDevice_DropsBoundSessions(t *testing.T) {
	db := openDevicesTestDB(t)

	device, err := RegisterDevice(context.Background(), db, nil, 1, CreateDeviceInput{Name: "Dock 2"})
	if err != nil {
		t.Fatalf("register device: %v", err)
	}

	err = db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO users (username, password_hash, role) VALUES ('op1', 'x', 'scanner')`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
INSERT INTO sessions (id, user_id, device_id, expires_at)
VALUES ('tok1', 1, ?, DATETIME('now', '+1 hour'))`, device.ID)
		return err
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}

	updated, err := DisableDevice(context.Background(), db, nil, 1, device.ID)
	if err != nil {
		t.Fatalf("disable device: %v", err)
	}
	if updated.Status != models.DeviceStatusDisabled {
		t.Fatalf("expected disabled status, got %s", updated.Status)
	}

	var count int
	err = db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT COUNT(1) FROM sessions WHERE device_id = ?`, device.ID).Scan(ctx, &count)
	})
	if err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected sessions dropped, got %d", count)
	}
}

func TestUpdateDevice_UnknownDevice(t *testing.T) {
	db := openDevicesTestDB(t)

	name := "renamed"
	_, err := UpdateDevice(context.Background(), db, nil, 1, "nope", UpdateDeviceInput{Name: &name})
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("expected ErrDeviceNotFound, got %v", err)
	}
}
