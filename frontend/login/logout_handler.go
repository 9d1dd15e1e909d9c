package login

import (
	"log/slog"
	"net/http"

	"scangate/infrastructure/cache"
	sessioncookie "scangate/infrastructure/session"
	"scangate/infrastructure/sqlite"
	"scangate/pkg/response"
)

// LogoutHandler drops the session from cache and database and expires the
// cookie. Logout is idempotent: a missing or unknown token still clears the
// cookie and returns 204.
func LogoutHandler(db *sqlite.DB, sessionCache *cache.UserSessionCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(sessioncookie.CookieName); err == nil && cookie.Value != "" {
			sessionCache.DeleteSessionBySessionToken(cookie.Value)
			if err := DeleteSessionByToken(r.Context(), db, cookie.Value); err != nil {
				slog.Error("delete session on logout", slog.Any("err", err))
			}
		}
		http.SetCookie(w, sessioncookie.SessionCookie("", -1))
		response.NoContent(w)
	}
}
