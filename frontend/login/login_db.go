package login

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"scangate/infrastructure/argon"
	"scangate/infrastructure/sqlite"
	"scangate/models"
)

var ErrDeviceNotAllowed = errors.New("device is not registered or disabled")

func findUserByUsername(ctx context.Context, tx bun.Tx, username string) (models.User, error) {
	var user models.User
	err := tx.NewSelect().
		Model(&user).
		Where("LOWER(username) = ?", strings.ToLower(strings.TrimSpace(username))).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func authenticateUser(ctx context.Context, db *sqlite.DB, username, password string) (models.User, error) {
	var user models.User
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = findUserByUsername(ctx, tx, username)
		return err
	})
	if err != nil {
		return models.User{}, err
	}

	ok, err := argon.ComparePasswordAndHash(password, user.PasswordHash)
	if err != nil {
		return models.User{}, err
	}
	if !ok {
		return models.User{}, sql.ErrNoRows
	}

	return user, nil
}

// checkDevice verifies the scanner terminal is registered and active, and
// stamps its last-seen time.
func checkDevice(ctx context.Context, db *sqlite.DB, deviceID string) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var device models.Device
		err := tx.NewSelect().
			Model(&device).
			Where("id = ?", deviceID).
			Limit(1).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrDeviceNotAllowed
			}
			return err
		}
		if device.Status != models.DeviceStatusActive {
			return ErrDeviceNotAllowed
		}
		now := time.Now()
		_, err = tx.NewUpdate().
			Model((*models.Device)(nil)).
			Set("last_seen_at = ?", now).
			Set("updated_at = ?", now).
			Where("id = ?", deviceID).
			Exec(ctx)
		return err
	})
}

func screenPermissionsForUser(ctx context.Context, tx bun.Tx, user models.User) (map[string]int, error) {
	perms := make(map[string]int)
	if user.AuthGroupID == nil {
		return perms, nil
	}

	var rows []models.AuthGroupPermission
	err := tx.NewSelect().
		Model(&rows).
		Where("auth_group_id = ?", *user.AuthGroupID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		perms[row.PermissionCode] = 1
	}
	return perms, nil
}

func persistSession(ctx context.Context, db *sqlite.DB, session models.Session) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		// One active session row per token; the token is the unique ID.
		_, err := tx.NewInsert().Model(&models.Session{
			ID:        session.ID,
			UserID:    session.UserID,
			DeviceID:  session.DeviceID,
			ExpiresAt: session.ExpiresAt,
		}).Exec(ctx)
		return err
	})
}

func DeleteSessionByToken(ctx context.Context, db *sqlite.DB, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().Model((*models.Session)(nil)).Where("id = ?", token).Exec(ctx)
		return err
	})
}

func LoadSessionByToken(ctx context.Context, db *sqlite.DB, token string) (models.Session, error) {
	var session models.Session
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().
			Model(&session).
			Relation("User").
			Where("s.id = ?", token).
			Limit(1).
			Scan(ctx); err != nil {
			return err
		}
		session.UserRoles = []string{session.User.Role}
		perms, err := screenPermissionsForUser(ctx, tx, session.User)
		if err != nil {
			return err
		}
		session.ScreenPermissions = perms
		return nil
	})
	if err != nil {
		return models.Session{}, err
	}
	if session.Expired() {
		_ = DeleteSessionByToken(ctx, db, token)
		return models.Session{}, sql.ErrNoRows
	}
	return session, nil
}

func UpsertUserPasswordHash(ctx context.Context, db *sqlite.DB, username, role, rawPassword string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username is required")
	}
	rawPassword = strings.TrimSpace(rawPassword)
	if rawPassword == "" {
		return errors.New("password is required")
	}
	if err := ValidatePasswordPolicy(rawPassword); err != nil {
		return err
	}
	hash, err := argon.CreateHash(rawPassword, argon.DefaultParams)
	if err != nil {
		return err
	}

	now := time.Now()
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT INTO users (username, password_hash, role, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(username) DO UPDATE SET
  password_hash = excluded.password_hash,
  role = excluded.role,
  updated_at = excluded.updated_at`, username, hash, role, now, now)
		return err
	})
}
