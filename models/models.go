package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User represents a warehouse operator account.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Username     string    `bun:"username,unique,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	Role         string    `bun:"role,notnull"`
	AuthGroupID  *int64    `bun:"auth_group_id"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Session is used by middleware and auth handlers.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	ID                string         `bun:"id,pk"`
	UserID            int64          `bun:"user_id,notnull"`
	User              User           `bun:"rel:belongs-to,join:user_id=id"`
	DeviceID          string         `bun:"device_id"`
	UserRoles         []string       `bun:"-"`
	ScreenPermissions map[string]int `bun:"-"`
	ExpiresAt         time.Time      `bun:"expires_at,notnull"`
	CreatedAt         time.Time      `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt         time.Time      `bun:"updated_at,notnull,default:current_timestamp"`
}

// Expired returns true when the session expiry time has passed.
func (s Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Device statuses.
const (
	DeviceStatusActive   = "active"
	DeviceStatusDisabled = "disabled"
)

// Device is a registered scanner terminal.
type Device struct {
	bun.BaseModel `bun:"table:devices,alias:d"`

	ID         string     `bun:"id,pk"`
	Name       string     `bun:"name,notnull"`
	Status     string     `bun:"status,notnull"`
	LastSeenAt *time.Time `bun:"last_seen_at"`
	CreatedAt  time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt  time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}

// AuthGroup bundles screen permission codes assignable to users.
type AuthGroup struct {
	bun.BaseModel `bun:"table:auth_groups,alias:ag"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,unique,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// AuthGroupPermission grants one screen permission code to a group.
type AuthGroupPermission struct {
	bun.BaseModel `bun:"table:auth_group_permissions,alias:agp"`

	ID             int64  `bun:"id,pk,autoincrement"`
	AuthGroupID    int64  `bun:"auth_group_id,notnull"`
	PermissionCode string `bun:"permission_code,notnull"`
}

// CancellationReason is offered when an operator cancels a scanned line.
type CancellationReason struct {
	bun.BaseModel `bun:"table:cancellation_reasons,alias:cr"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,unique,notnull"`
	Active    bool      `bun:"active,notnull,default:true"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// CreatedPackage records a package created through this gateway during
// scanning, so its label can be reprinted later.
type CreatedPackage struct {
	bun.BaseModel `bun:"table:created_packages,alias:cp"`

	ID           int64     `bun:"id,pk,autoincrement"`
	PackageID    string    `bun:"package_id,unique,notnull"`
	Barcode      string    `bun:"barcode,notnull"`
	DocumentType string    `bun:"document_type,notnull"`
	DocumentID   string    `bun:"document_id,notnull"`
	CreatedBy    int64     `bun:"created_by,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// AuditLog captures immutable change history for key operations.
type AuditLog struct {
	bun.BaseModel `bun:"table:audit_logs,alias:al"`

	ID         int64     `bun:"id,pk,autoincrement"`
	UserID     int64     `bun:"user_id,notnull"`
	Action     string    `bun:"action,notnull"`
	EntityType string    `bun:"entity_type,notnull"`
	EntityID   string    `bun:"entity_id,notnull"`
	BeforeJSON string    `bun:"before_json"`
	AfterJSON  string    `bun:"after_json"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
