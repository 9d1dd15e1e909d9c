// Package audit appends change records for admin mutations and package
// creation. Records are written inside the caller's transaction so an audit
// row never outlives a rolled-back change.
package audit

import (
	"context"
	"encoding/json"

	"github.com/uptrace/bun"

	"scangate/models"
)

type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Write stores one audit row describing actor, action and the entity's
// before/after snapshots. Nil snapshots are stored as empty strings; a nil
// Service is a no-op so callers without auditing wired can share code paths.
func (s *Service) Write(ctx context.Context, tx bun.Tx, userID int64, action, entityType, entityID string, before, after any) error {
	if s == nil {
		return nil
	}
	beforeJSON, err := snapshot(before)
	if err != nil {
		return err
	}
	afterJSON, err := snapshot(after)
	if err != nil {
		return err
	}
	_, err = tx.NewInsert().Model(&models.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		BeforeJSON: beforeJSON,
		AfterJSON:  afterJSON,
	}).Exec(ctx)
	return err
}

func snapshot(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
