package rbac

import (
	"testing"

	"scangate/infrastructure/cache"
)

func TestMatchPathWildcardSegments(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		ok      bool
	}{
		{pattern: "/api/scan/sessions/*/scan", path: "/api/scan/sessions/abc123/scan", ok: true},
		{pattern: "/api/scan/sessions/*/lines/*/quantity", path: "/api/scan/sessions/abc/lines/42/quantity", ok: true},
		{pattern: "/api/admin/packages/*/label", path: "/api/admin/packages/7/label", ok: true},
		{pattern: "/api/admin/users", path: "/api/admin/users", ok: true},
		{pattern: "/api/admin/users", path: "/api/admin/users/1", ok: false},
		{pattern: "/api/scan/sessions/*/scan", path: "/api/scan/sessions/abc123/mode", ok: false},
		{pattern: "/api/admin/exports/*", path: "/api/admin/exports/receipts/2024.csv", ok: true},
	}

	for _, tc := range cases {
		if got := matchPath(tc.pattern, tc.path); got != tc.ok {
			t.Fatalf("pattern=%s path=%s expected=%v got=%v", tc.pattern, tc.path, tc.ok, got)
		}
	}
}

func TestValidateResourceAccessChecksMethod(t *testing.T) {
	resources := []cache.Resource{
		{UserResourceCode: "SCAN_SESSION_SCAN", Method: "POST", Path: "/api/scan/sessions/*/scan", Role: RoleScanner},
	}

	if !ValidateResourceAccess(resources, "/api/scan/sessions/s1/scan", "post") {
		t.Fatalf("expected access for matching route regardless of method case")
	}
	if ValidateResourceAccess(resources, "/api/scan/sessions/s1/scan", "DELETE") {
		t.Fatalf("expected access denied for wrong method")
	}
	if ValidateResourceAccess(nil, "/api/scan/sessions/s1/scan", "POST") {
		t.Fatalf("expected access denied with no resources")
	}
}

func TestHasRole(t *testing.T) {
	roles := []string{RoleScanner}
	if !HasRole(roles, RoleScanner) {
		t.Fatalf("expected scanner role to be found")
	}
	if HasRole(roles, RoleAdmin) {
		t.Fatalf("did not expect admin role")
	}
	if HasRole(nil, RoleAdmin) {
		t.Fatalf("did not expect role in empty set")
	}
}
