package cache

import (
	"sync"

	"scangate/models"
)

// UserSessionCache keeps authenticated sessions in memory keyed by token, in
// front of the sessions table.
type UserSessionCache struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

func NewUserSessionCache() *UserSessionCache {
	return &UserSessionCache{sessions: make(map[string]models.Session)}
}

func (c *UserSessionCache) AddSession(s models.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[s.ID] = s
}

func (c *UserSessionCache) FindSessionBySessionToken(token string) (models.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sessions[token]
	return s, ok
}

func (c *UserSessionCache) DeleteSessionBySessionToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, token)
}

// DeleteSessionsByDeviceID evicts every cached session bound to a device, so
// disabling a device logs its terminals out immediately rather than at cache
// expiry.
func (c *UserSessionCache) DeleteSessionsByDeviceID(deviceID string) {
	if deviceID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for token, s := range c.sessions {
		if s.DeviceID == deviceID {
			delete(c.sessions, token)
		}
	}
}
