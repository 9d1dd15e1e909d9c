package login

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/uptrace/bun"

	"scangate/infrastructure/cache"
	sessioncookie "scangate/infrastructure/session"
	"scangate/infrastructure/sqlite"
	"scangate/models"
	"scangate/pkg/apierror"
	"scangate/pkg/response"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	DeviceID string `json:"deviceId"`
}

type loginResponse struct {
	UserID            int64          `json:"userId"`
	Username          string         `json:"username"`
	Role              string         `json:"role"`
	ScreenPermissions map[string]int `json:"screenPermissions"`
}

// CreateLoginHandler authenticates the operator, binds the session to the
// scanning device and issues a session cookie.
func CreateLoginHandler(db *sqlite.DB, sessionCache *cache.UserSessionCache, userCache *cache.UserCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, apierror.BadRequest("invalid request body"))
			return
		}

		username := strings.TrimSpace(req.Username)
		password := strings.TrimSpace(req.Password)
		if username == "" || password == "" {
			response.Error(w, apierror.ValidationError("username and password are required"))
			return
		}

		user, err := authenticateUser(r.Context(), db, username, password)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				response.Error(w, apierror.Unauthorized("invalid username or password"))
				return
			}
			slog.Error("authenticate user", slog.String("username", username), slog.Any("err", err))
			response.Error(w, apierror.InternalError("authentication failed"))
			return
		}

		if req.DeviceID != "" {
			if err := checkDevice(r.Context(), db, req.DeviceID); err != nil {
				if errors.Is(err, ErrDeviceNotAllowed) {
					response.Error(w, apierror.Forbidden("this device is not allowed to log in"))
					return
				}
				slog.Error("check device", slog.String("device_id", req.DeviceID), slog.Any("err", err))
				response.Error(w, apierror.InternalError("authentication failed"))
				return
			}
		}

		session, err := newSession(r.Context(), db, user, req.DeviceID)
		if err != nil {
			slog.Error("build session", slog.Any("err", err))
			response.Error(w, apierror.InternalError("failed to create session"))
			return
		}
		if err := persistSession(r.Context(), db, session); err != nil {
			slog.Error("persist session", slog.Any("err", err))
			response.Error(w, apierror.InternalError("failed to create session"))
			return
		}

		sessionCache.AddSession(session)
		userCache.Add(user.Username, user)

		http.SetCookie(w, sessioncookie.SessionCookie(session.ID, sessioncookie.DefaultMaxAge))
		response.OK(w, loginResponse{
			UserID:            user.ID,
			Username:          user.Username,
			Role:              user.Role,
			ScreenPermissions: session.ScreenPermissions,
		})
	}
}

func newSession(ctx context.Context, db *sqlite.DB, user models.User, deviceID string) (models.Session, error) {
	perms := make(map[string]int)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		perms, err = screenPermissionsForUser(ctx, tx, user)
		return err
	})
	if err != nil {
		return models.Session{}, err
	}
	return models.Session{
		ID:                newSessionToken(),
		UserID:            user.ID,
		User:              user,
		DeviceID:          deviceID,
		UserRoles:         []string{user.Role},
		ScreenPermissions: perms,
		ExpiresAt:         sessioncookie.DefaultExpiry(),
	}, nil
}
