// Package context carries the authenticated session through request contexts.
package context

import (
	"context"

	"scangate/models"
)

type sessionKey struct{}

func NewContextWithSession(ctx context.Context, session models.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetSessionFromContext returns the session placed by the authentication
// middleware, or ok=false on routes outside it.
func GetSessionFromContext(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(models.Session)
	return s, ok
}
