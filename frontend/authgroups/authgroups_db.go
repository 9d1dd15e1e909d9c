package authgroups

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
	ErrGroupNotFound = errors.New("auth group not found")
	ErrNameRequired  = errors.New("group name is required")
	ErrNameExists    = errors.New("group name already exists")
)

func ListGroups(ctx context.Context, db *sqlite.DB) ([]GroupView, error) {
	groups := make([]GroupView, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var rows []models.AuthGroup
		if err := tx.NewSelect().Model(&rows).Order("name ASC").Scan(ctx); err != nil {
			return err
		}
		var perms []models.AuthGroupPermission
		if err := tx.NewSelect().Model(&perms).Order("permission_code ASC").Scan(ctx); err != nil {
			return err
		}

		byGroup := make(map[int64][]string)
		for _, p := range perms {
			byGroup[p.AuthGroupID] = append(byGroup[p.AuthGroupID], p.PermissionCode)
		}
		for _, g := range rows {
			codes := byGroup[g.ID]
			if codes == nil {
				codes = []string{}
			}
			groups = append(groups, GroupView{ID: g.ID, Name: g.Name, Permissions: codes})
		}
		return nil
	})
	return groups, err
}

func CreateGroup(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actorID int64, input CreateGroupInput) (GroupView, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return GroupView{}, ErrNameRequired
	}
	codes := normalizeCodes(input.Permissions)

	group := models.AuthGroup{Name: name}
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var count int
		if err := tx.NewRaw(`SELECT COUNT(1) FROM auth_groups WHERE LOWER(name) = ?`,
			strings.ToLower(name)).Scan(ctx, &count); err != nil {
			return err
		}
		if count > 0 {
			return ErrNameExists
		}
		if _, err := tx.NewInsert().Model(&group).Exec(ctx); err != nil {
			return err
		}
		if err := replacePermissions(ctx, tx, group.ID, codes); err != nil {
			return err
		}
		if auditSvc != nil {
			return auditSvc.Write(ctx, tx, actorID, "authgroup.create", "auth_groups",
				fmt.Sprintf("%d", group.ID), nil, GroupView{ID: group.ID, Name: name, Permissions: codes})
		}
		return nil
	})
	if err != nil {
		return GroupView{}, err
	}
	return GroupView{ID: group.ID, Name: name, Permissions: codes}, nil
}

func UpdateGroup(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actorID, id int64, input UpdateGroupInput) (GroupView, error) {
	var out GroupView
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var group models.AuthGroup
		err := tx.NewSelect().Model(&group).Where("id = ?", id).Limit(1).Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrGroupNotFound
			}
			return err
		}

		before, err := loadView(ctx, tx, group)
		if err != nil {
			return err
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return ErrNameRequired
			}
			group.Name = name
		}
		group.UpdatedAt = time.Now()
		if _, err := tx.NewUpdate().Model(&group).WherePK().Exec(ctx); err != nil {
			return err
		}

		if input.Permissions != nil {
			if err := replacePermissions(ctx, tx, group.ID, normalizeCodes(*input.Permissions)); err != nil {
				return err
			}
		}

		out, err = loadView(ctx, tx, group)
		if err != nil {
			return err
		}
		if auditSvc != nil {
			return auditSvc.Write(ctx, tx, actorID, "authgroup.update", "auth_groups",
				fmt.Sprintf("%d", group.ID), before, out)
		}
		return nil
	})
	if err != nil {
		return GroupView{}, err
	}
	return out, nil
}

func loadView(ctx context.Context, tx bun.Tx, group models.AuthGroup) (GroupView, error) {
	var perms []models.AuthGroupPermission
	err := tx.NewSelect().Model(&perms).
		Where("auth_group_id = ?", group.ID).
		Order("permission_code ASC").
		Scan(ctx)
	if err != nil {
		return GroupView{}, err
	}
	codes := make([]string, 0, len(perms))
	for _, p := range perms {
		codes = append(codes, p.PermissionCode)
	}
	return GroupView{ID: group.ID, Name: group.Name, Permissions: codes}, nil
}

func replacePermissions(ctx context.Context, tx bun.Tx, groupID int64, codes []string) error {
	if _, err := tx.NewDelete().Model((*models.AuthGroupPermission)(nil)).
		Where("auth_group_id = ?", groupID).Exec(ctx); err != nil {
		return err
	}
	for _, code := range codes {
		perm := models.AuthGroupPermission{AuthGroupID: groupID, PermissionCode: code}
		if _, err := tx.NewInsert().Model(&perm).Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func normalizeCodes(codes []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}
