package cache

import "sync"

// Resource names one route a role may call. UserResourceCode is the screen
// permission code sent to scanner terminals at login.
type Resource struct {
	UserResourceCode string
	Path             string
	Method           string
	Role             string
}

// RbacRolesCache holds the role-to-resources map built at route registration.
type RbacRolesCache struct {
	mu        sync.RWMutex
	resources map[string][]Resource
	allRoutes map[string]struct{}
}

func NewRbacRolesCache() *RbacRolesCache {
	return &RbacRolesCache{
		resources: make(map[string][]Resource),
		allRoutes: make(map[string]struct{}),
	}
}

func (c *RbacRolesCache) Add(role string, r Resource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resources[role] = append(c.resources[role], r)
	c.allRoutes[r.UserResourceCode] = struct{}{}
}

// GetRolesAndResources returns the union of resources granted to roles.
func (c *RbacRolesCache) GetRolesAndResources(roles []string) []Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Resource, 0)
	for _, role := range roles {
		out = append(out, c.resources[role]...)
	}
	return out
}

// GetAllRouteNames returns every registered route code, as the permission map
// shape handed to admin sessions.
func (c *RbacRolesCache) GetAllRouteNames() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]int, len(c.allRoutes))
	for route := range c.allRoutes {
		out[route] = 1
	}
	return out
}
