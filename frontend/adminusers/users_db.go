package adminusers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"scangate/frontend/login"
	"scangate/infrastructure/argon"
	"scangate/infrastructure/audit"
	"scangate/infrastructure/rbac"
	"scangate/infrastructure/sqlite"
	"scangate/models"
)

var (
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrInvalidRole      = errors.New("role must be admin or scanner")
	ErrUsernameExists   = errors.New("username already exists")
	ErrUserNotFound     = errors.New("user not found")
	ErrGroupNotFound    = errors.New("auth group not found")
)

func validRole(role string) bool {
	return role == rbac.RoleAdmin || role == rbac.RoleScanner
}

func ListUsers(ctx context.Context, db *sqlite.DB) ([]UserView, error) {
	users := make([]UserView, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`
SELECT u.id, u.username, u.role, u.auth_group_id, ag.name AS auth_group_name
FROM users u
LEFT JOIN auth_groups ag ON ag.id = u.auth_group_id
ORDER BY u.id ASC`).Scan(ctx, &users)
	})
	return users, err
}

func CreateUser(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actorID int64, input CreateUserInput) (models.User, error) {
	username := strings.TrimSpace(input.Username)
	password := strings.TrimSpace(input.Password)
	role := strings.TrimSpace(input.Role)

	if username == "" {
		return models.User{}, ErrUsernameRequired
	}
	if password == "" {
		return models.User{}, ErrPasswordRequired
	}
	if !validRole(role) {
		return models.User{}, ErrInvalidRole
	}
	if err := login.ValidatePasswordPolicy(password); err != nil {
		return models.User{}, err
	}

	hash, err := argon.CreateHash(password, argon.DefaultParams)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		AuthGroupID:  input.AuthGroupID,
	}
	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var count int
		if err := tx.NewRaw(`SELECT COUNT(1) FROM users WHERE LOWER(username) = ?`,
			strings.ToLower(username)).Scan(ctx, &count); err != nil {
			return err
		}
		if count > 0 {
			return ErrUsernameExists
		}
		if input.AuthGroupID != nil {
			if err := requireGroup(ctx, tx, *input.AuthGroupID); err != nil {
				return err
			}
		}
		if _, err := tx.NewInsert().Model(&user).Exec(ctx); err != nil {
			return err
		}
		if auditSvc != nil {
			return auditSvc.Write(ctx, tx, actorID, "user.create", "users",
				fmt.Sprintf("%d", user.ID), nil, redacted(user))
		}
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func UpdateUser(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actorID, id int64, input UpdateUserInput) (models.User, error) {
	var user models.User
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().Model(&user).Where("id = ?", id).Limit(1).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrUserNotFound
			}
			return err
		}

		before := redacted(user)
		if input.Role != nil {
			role := strings.TrimSpace(*input.Role)
			if !validRole(role) {
				return ErrInvalidRole
			}
			user.Role = role
		}
		if input.AuthGroupID != nil {
			if err := requireGroup(ctx, tx, *input.AuthGroupID); err != nil {
				return err
			}
			user.AuthGroupID = input.AuthGroupID
		}
		if input.Password != nil {
			password := strings.TrimSpace(*input.Password)
			if password == "" {
				return ErrPasswordRequired
			}
			if err := login.ValidatePasswordPolicy(password); err != nil {
				return err
			}
			hash, err := argon.CreateHash(password, argon.DefaultParams)
			if err != nil {
				return err
			}
			user.PasswordHash = hash
		}
		user.UpdatedAt = time.Now()

		if _, err := tx.NewUpdate().Model(&user).WherePK().Exec(ctx); err != nil {
			return err
		}
		if auditSvc != nil {
			return auditSvc.Write(ctx, tx, actorID, "user.update", "users",
				fmt.Sprintf("%d", user.ID), before, redacted(user))
		}
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func requireGroup(ctx context.Context, tx bun.Tx, groupID int64) error {
	var count int
	if err := tx.NewRaw(`SELECT COUNT(1) FROM auth_groups WHERE id = ?`, groupID).Scan(ctx, &count); err != nil {
		return err
	}
	if count == 0 {
		return ErrGroupNotFound
	}
	return nil
}

// redacted drops the password hash from audit snapshots.
func redacted(user models.User) models.User {
	user.PasswordHash = ""
	return user
}
