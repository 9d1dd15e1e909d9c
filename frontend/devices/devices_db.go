package devices

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"scangate/infrastructure/audit"
	"scangate/infrastructure/sqlite"
	"scangate/models"
)

var (
	ErrDeviceNotFound = errors.New("device not found")
	ErrNameRequired   = errors.New("device name is required")
	ErrInvalidStatus  = errors.New("device status must be active or disabled")
)

func validStatus(status string) bool {
	return status == models.DeviceStatusActive || status == models.DeviceStatusDisabled
}

func ListDevices(ctx context.Context, db *sqlite.DB) ([]DeviceView, error) {
	devices := make([]DeviceView, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT id, name, status, last_seen_at FROM devices ORDER BY name ASC`).Scan(ctx, &devices)
	})
	return devices, err
}

// RegisterDevice creates a new active scanner terminal with a generated id.
// The id is what operators enter (or have embedded) on the terminal itself.
func RegisterDevice(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actorID int64, input CreateDeviceInput) (models.Device, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return models.Device{}, ErrNameRequired
	}

	device := models.Device{
		ID:     uuid.NewString(),
		Name:   name,
		Status: models.DeviceStatusActive,
	}
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&device).Exec(ctx); err != nil {
			return err
		}
		if auditSvc != nil {
			return auditSvc.Write(ctx, tx, actorID, "device.register", "devices", device.ID, nil, device)
		}
		return nil
	})
	if err != nil {
		return models.Device{}, err
	}
	return device, nil
}

func UpdateDevice(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actorID int64, id string, input UpdateDeviceInput) (models.Device, error) {
	var device models.Device
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().Model(&device).Where("id = ?", id).Limit(1).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrDeviceNotFound
			}
			return err
		}

		before := device
		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return ErrNameRequired
			}
			device.Name = name
		}
		if input.Status != nil {
			if !validStatus(*input.Status) {
				return ErrInvalidStatus
			}
			device.Status = *input.Status
		}
		device.UpdatedAt = time.Now()

		if _, err := tx.NewUpdate().Model(&device).WherePK().Exec(ctx); err != nil {
			return err
		}
		if auditSvc != nil {
			return auditSvc.Write(ctx, tx, actorID, "device.update", "devices", device.ID, before, device)
		}
		return nil
	})
	if err != nil {
		return models.Device{}, err
	}
	return device, nil
}

// DisableDevice is the admin kill switch for a lost or retired terminal.
// Disabled devices are refused at login; existing sessions bound to the
// device are dropped.
func DisableDevice(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actorID int64, id string) (models.Device, error) {
	status := models.DeviceStatusDisabled
	device, err := UpdateDevice(ctx, db, auditSvc, actorID, id, UpdateDeviceInput{Status: &status})
	if err != nil {
		return models.Device{}, err
	}
	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().Model((*models.Session)(nil)).Where("device_id = ?", id).Exec(ctx)
		return err
	})
	if err != nil {
		return models.Device{}, err
	}
	return device, nil
}
