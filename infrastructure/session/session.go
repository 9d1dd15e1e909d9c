package session

import (
	"net/http"
	"time"
)

const (
	CookieName = "X-Session-Token"

	// DefaultMaxAge matches DefaultExpiry, in seconds.
	DefaultMaxAge = 12 * 60 * 60
)

func SessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
	}
}

func DefaultExpiry() time.Time {
	return time.Now().Add(DefaultMaxAge * time.Second)
}
