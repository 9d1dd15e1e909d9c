package authgroups

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"scangate/infrastructure/sqlite"
)

func openGroupsTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "auth-groups-test.db")
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

func TestCreateGroup_StoresDedupedPermissions(t *testing.T) {
	db := openGroupsTestDB(t)

	group, err := CreateGroup(context.Background(), db, nil, 1, CreateGroupInput{
		Name:        "receivers",
		Permissions: []string{"goods-receipt", "counting", "goods-receipt", "  "},
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if len(group.Permissions) != 2 {
		t.Fatalf("expected deduped permissions, got %+v", group.Permissions)
	}

	groups, err := ListGroups(context.Background(), db)
	if err != nil {
		t.Fatalf("list groups: %v", err)
	}
	if len(groups) != 1 || groups[0].Name != "receivers" || len(groups[0].Permissions) != 2 {
		t.Fatalf("unexpected groups %+v", groups)
	}
}

func TestCreateGroup_DuplicateNameRejected(t *testing.T) {
	db := openGroupsTestDB(t)

	if _, err := CreateGroup(context.Background(), db, nil, 1, CreateGroupInput{Name: "Pickers"}); err != nil {
		t.Fatalf("seed group: %v", err)
	}
	_, err := CreateGroup(context.Background(), db, nil, 1, CreateGroupInput{Name: "pickers"})
	if !errors.Is(err, ErrNameExists) {
		t.Fatalf("expected ErrNameExists, got %v", err)
	}
}

func TestUpdateGroup_ReplacesPermissions(t *testing.T) {
	db := openGroupsTestDB(t)

	group, err := CreateGroup(context.Background(), db, nil, 1, CreateGroupInput{
		Name:        "movers",
		Permissions: []string{"transfer"},
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	perms := []string{"picking", "counting"}
	updated, err := UpdateGroup(context.Background(), db, nil, 1, group.ID, UpdateGroupInput{Permissions: &perms})
	if err != nil {
		t.Fatalf("update group: %v", err)
	}
	if len(updated.Permissions) != 2 || updated.Permissions[0] != "counting" || updated.Permissions[1] != "picking" {
		t.Fatalf("expected replaced permissions sorted, got %+v", updated.Permissions)
	}
}

func TestUpdateGroup_UnknownGroup(t *testing.T) {
	db := openGroupsTestDB(t)

	name := "renamed"
	_, err := UpdateGroup(context.Background(), db, nil, 1, 404, UpdateGroupInput{Name: &name})
	if !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}
}
