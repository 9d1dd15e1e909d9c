package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"scangate/frontend/adminusers"
	"scangate/frontend/authgroups"
	"scangate/frontend/devices"
	"scangate/frontend/labels"
	"scangate/frontend/license"
	"scangate/frontend/login"
	"scangate/frontend/process"
	"scangate/frontend/reasons"
	"scangate/infrastructure/rbac"
)

// RegisterLoginRoutes registers login/logout routes. Both sit outside the
// authenticated group.
func (s *Server) RegisterLoginRoutes() {
	s.router.Post("/api/login", login.CreateLoginHandler(s.DB, s.SessionCache, s.UserCache))
	s.router.Post("/api/logout", login.LogoutHandler(s.DB, s.SessionCache))
}

// RegisterScanRoutes registers the scan session surface used by terminals.
func (s *Server) RegisterScanRoutes(r chi.Router) chi.Router {
	addBoth := func(code, method, path string) {
		s.Rbac.Add(rbac.RoleAdmin, code, method, path)
		s.Rbac.Add(rbac.RoleScanner, code, method, path)
	}

	addBoth("SCAN_SESSION_OPEN", http.MethodPost, "/api/scan/sessions")
	r.Post("/scan/sessions", process.OpenSessionCommandHandler(s.Flow))

	addBoth("SCAN_SESSION_VIEW", http.MethodGet, "/api/scan/sessions/*")
	r.Get("/scan/sessions/{id}", process.GetSessionQueryHandler(s.Flow))

	addBoth("SCAN_SESSION_DISCARD", http.MethodDelete, "/api/scan/sessions/*")
	r.Delete("/scan/sessions/{id}", process.DiscardSessionCommandHandler(s.Flow))

	addBoth("SCAN_SESSION_MODE", http.MethodPost, "/api/scan/sessions/*/mode")
	r.Post("/scan/sessions/{id}/mode", process.SetModeCommandHandler(s.Flow))

	addBoth("SCAN_SESSION_UNIT", http.MethodPost, "/api/scan/sessions/*/unit")
	r.Post("/scan/sessions/{id}/unit", process.SetUnitCommandHandler(s.Flow))

	addBoth("SCAN_SESSION_CREATE_PACKAGE", http.MethodPost, "/api/scan/sessions/*/create-package")
	r.Post("/scan/sessions/{id}/create-package", process.SetCreatePackageCommandHandler(s.Flow))

	addBoth("SCAN_SESSION_CLEAR_PACKAGE", http.MethodDelete, "/api/scan/sessions/*/package")
	r.Delete("/scan/sessions/{id}/package", process.ClearPackageCommandHandler(s.Flow))

	addBoth("SCAN_SESSION_SCAN", http.MethodPost, "/api/scan/sessions/*/scan")
	r.Post("/scan/sessions/{id}/scan", process.ScanCommandHandler(s.Flow))

	addBoth("SCAN_LINE_QUANTITY", http.MethodPost, "/api/scan/sessions/*/lines/*/quantity")
	r.Post("/scan/sessions/{id}/lines/{lineID}/quantity", process.UpdateQuantityCommandHandler(s.Flow))

	addBoth("SCAN_LINE_COMMENT", http.MethodPatch, "/api/scan/sessions/*/lines/*/comment")
	r.Patch("/scan/sessions/{id}/lines/{lineID}/comment", process.UpdateCommentCommandHandler(s.Flow))

	addBoth("SCAN_LINE_CANCEL", http.MethodPost, "/api/scan/sessions/*/lines/*/cancel")
	r.Post("/scan/sessions/{id}/lines/{lineID}/cancel", process.CancelLineCommandHandler(s.Flow))

	addBoth("REASONS_LIST", http.MethodGet, "/api/reasons")
	r.Get("/reasons", reasons.ListReasonsQueryHandler(s.DB))

	return r
}

// RegisterAdminRoutes registers admin-only routes.
func (s *Server) RegisterAdminRoutes(r chi.Router) chi.Router {
	s.Rbac.Add(rbac.RoleAdmin, "ADMIN_USERS_LIST", http.MethodGet, "/api/admin/users")
	r.Get("/admin/users", adminusers.ListUsersQueryHandler(s.DB))
	s.Rbac.Add(rbac.RoleAdmin, "ADMIN_USERS_CREATE", http.MethodPost, "/api/admin/users")
	r.Post("/admin/users", adminusers.CreateUserCommandHandler(s.DB, &adminusers.Deps{Audit: s.Audit, Users: s.UserCache}))
	s.Rbac.Add(rbac.RoleAdmin, "ADMIN_USERS_EDIT", http.MethodPatch, "/api/admin/users/*")
	r.Patch("/admin/users/{id}", adminusers.UpdateUserCommandHandler(s.DB, &adminusers.Deps{Audit: s.Audit, Users: s.UserCache}))

	s.Rbac.Add(rbac.RoleAdmin, "ADMIN_DEVICES_LIST", http.MethodGet, "/api/admin/devices")
	r.Get("/admin/devices", devices.ListDevicesQueryHandler(s.DB))
	s.Rbac.Add(rbac.RoleAdmin, "ADMIN_DEVICES_REGISTER", http.MethodPost, "/api/admin/devices")
	r.Post("/admin/devices", devices.RegisterDeviceCommandHandler(s.DB, s.Audit))
	s.Rbac.Add(rbac.RoleAdmin, "ADMIN_DEVICES_EDIT", http.MethodPatch, "/api/admin/devices/*")
	r.Patch("/admin/devices/{id}", devices.UpdateDeviceCommandHandler(s.DB, s.Audit))
	s.Rbac.Add(rbac.RoleAdmin, "ADMIN_DEVICES_DISABLE", http.MethodPost, "/api/admin/devices/*/disable")
	r.Post("/admin/devices/{id}/disable", devices.DisableDeviceCommandHandler(s.DB, s.Audit, s.SessionCache))

	s.Rbac.Add(rbac.RoleAdmin, "ADMIN_AUTH_GROUPS_LIST", http.MethodGet, "/api/admin/auth-groups")
	r.Get("/admin/auth-groups", authgroups.ListGroupsQueryHandler(s.DB))
	s.Rbac.Add(rbac.RoleAdmin, "ADMIN_AUTH_GROUPS_CREATE", http.MethodPost, "/api/admin/auth-groups")
	r.Post("/admin/auth-groups", authgroups.CreateGroupCommandHandler(s.DB, s.Audit))
	s.Rbac.Add(rbac.RoleAdmin, "ADMIN_AUTH_GROUPS_EDIT", http.MethodPatch, "/api/admin/auth-groups/*")
	r.Patch("/admin/auth-groups/{id}", authgroups.UpdateGroupCommandHandler(s.DB, s.Audit))

	s.Rbac.Add(rbac.RoleAdmin, "ADMIN_REASONS_CREATE", http.MethodPost, "/api/admin/reasons")
	r.Post("/admin/reasons", reasons.CreateReasonCommandHandler(s.DB, s.Audit))
	s.Rbac.Add(rbac.RoleAdmin, "ADMIN_REASONS_EDIT", http.MethodPatch, "/api/admin/reasons/*")
	r.Patch("/admin/reasons/{id}", reasons.UpdateReasonCommandHandler(s.DB, s.Audit))

	s.Rbac.Add(rbac.RoleAdmin, "ADMIN_LICENSE_VIEW", http.MethodGet, "/api/admin/license")
	r.Get("/admin/license", license.StatusQueryHandler(s.License))
	s.Rbac.Add(rbac.RoleAdmin, "ADMIN_LICENSE_REFRESH", http.MethodPost, "/api/admin/license/refresh")
	r.Post("/admin/license/refresh", license.RefreshCommandHandler(s.License))

	s.Rbac.Add(rbac.RoleAdmin, "ADMIN_PACKAGES_LIST", http.MethodGet, "/api/admin/packages")
	r.Get("/admin/packages", labels.ListCreatedPackagesQueryHandler(s.DB))
	s.Rbac.Add(rbac.RoleAdmin, "ADMIN_PACKAGE_LABEL", http.MethodGet, "/api/admin/packages/*/label")
	r.Get("/admin/packages/{id}/label", labels.PackageLabelQueryHandler(s.DB))

	return r
}
