// Package rbac maps roles to the named routes they may call.
package rbac

import (
	"strings"

	"scangate/infrastructure/cache"
)

const (
	RoleAdmin   = "admin"
	RoleScanner = "scanner"
)

// HasRole reports whether roles contains role.
func HasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// Rbac registers named route resources into the shared roles cache.
type Rbac struct {
	cache *cache.RbacRolesCache
}

func New(c *cache.RbacRolesCache) *Rbac {
	return &Rbac{cache: c}
}

func (r *Rbac) Add(role, code, method, path string) {
	if r == nil || r.cache == nil {
		return
	}
	r.cache.Add(role, cache.Resource{
		Role:             role,
		UserResourceCode: code,
		Method:           strings.ToUpper(method),
		Path:             path,
	})
}

// ValidateResourceAccess reports whether any of the granted resources covers
// the request method and path.
func ValidateResourceAccess(resources []cache.Resource, urlPath, method string) bool {
	method = strings.ToUpper(method)
	for _, res := range resources {
		if res.Method == method && matchPath(res.Path, urlPath) {
			return true
		}
	}
	return false
}

// matchPath supports two wildcard forms: "*" as a full path segment
// ("/a/*/c"), and a trailing "*" that covers any deeper suffix ("/a/b/*").
func matchPath(pattern, path string) bool {
	if pattern == path {
		return true
	}

	patternSeg := strings.Split(strings.Trim(pattern, "/"), "/")
	pathSeg := strings.Split(strings.Trim(path, "/"), "/")

	if len(patternSeg) == len(pathSeg) {
		for i, seg := range patternSeg {
			if seg != "*" && seg != pathSeg[i] {
				return false
			}
		}
		return true
	}

	if last := len(patternSeg) - 1; last >= 0 && patternSeg[last] == "*" {
		prefix := "/" + strings.Join(patternSeg[:last], "/")
		full := "/" + strings.Join(pathSeg, "/")
		return full == prefix || strings.HasPrefix(full, prefix+"/")
	}

	return false
}
