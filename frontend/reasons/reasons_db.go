package reasons

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"scangate/infrastructure/audit"
	"scangate/infrastructure/sqlite"
	"scangate/models"
)

var (
	ErrReasonNotFound = errors.New("cancellation reason not found")
	ErrNameRequired   = errors.New("reason name is required")
)

func ListReasons(ctx context.Context, db *sqlite.DB) ([]ReasonView, error) {
	reasons := make([]ReasonView, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT id, name, active FROM cancellation_reasons ORDER BY name ASC`).Scan(ctx, &reasons)
	})
	return reasons, err
}

// IsActiveReason reports whether the reason exists and is active. The cancel
// line flow refuses inactive or unknown reasons.
func IsActiveReason(ctx context.Context, db *sqlite.DB, id int64) (bool, error) {
	var active bool
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT active FROM cancellation_reasons WHERE id = ?`, id).Scan(ctx, &active)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return active, nil
}

func CreateReason(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, userID int64, name string) (models.CancellationReason, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.CancellationReason{}, ErrNameRequired
	}

	reason := models.CancellationReason{Name: name, Active: true}
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&reason).Exec(ctx); err != nil {
			return err
		}
		if auditSvc != nil {
			return auditSvc.Write(ctx, tx, userID, "reason.create", "cancellation_reasons", fmt.Sprintf("%d", reason.ID), nil, reason)
		}
		return nil
	})
	return reason, err
}

func UpdateReason(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, userID, id int64, input UpdateReasonInput) (models.CancellationReason, error) {
	var reason models.CancellationReason
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().Model(&reason).Where("id = ?", id).Limit(1).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrReasonNotFound
			}
			return err
		}

		before := reason
		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return ErrNameRequired
			}
			reason.Name = name
		}
		if input.Active != nil {
			reason.Active = *input.Active
		}
		reason.UpdatedAt = time.Now()

		if _, err := tx.NewUpdate().Model(&reason).WherePK().Exec(ctx); err != nil {
			return err
		}
		if auditSvc != nil {
			return auditSvc.Write(ctx, tx, userID, "reason.update", "cancellation_reasons", fmt.Sprintf("%d", reason.ID), before, reason)
		}
		return nil
	})
	return reason, err
}
