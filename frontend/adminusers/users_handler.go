package adminusers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	sessioncontext "scangate/frontend/shared/context"
	"scangate/infrastructure/audit"
	"scangate/infrastructure/cache"
	"scangate/infrastructure/sqlite"
	"scangate/pkg/apierror"
	"scangate/pkg/response"
)

// ListUsersQueryHandler returns all operator accounts with their auth group.
func ListUsersQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := ListUsers(r.Context(), db)
		if err != nil {
			slog.Error("list users", slog.Any("err", err))
			response.Error(w, apierror.InternalError("failed to load users"))
			return
		}
		response.OK(w, users)
	}
}

func CreateUserCommandHandler(db *sqlite.DB, deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			response.Error(w, apierror.Unauthorized(""))
			return
		}

		var input CreateUserInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			response.Error(w, apierror.BadRequest("invalid request body"))
			return
		}

		user, err := CreateUser(r.Context(), db, deps.Audit, session.UserID, input)
		if err != nil {
			response.Error(w, translateUserError(err))
			return
		}
		response.Created(w, UserView{
			ID:          user.ID,
			Username:    user.Username,
			Role:        user.Role,
			AuthGroupID: user.AuthGroupID,
		})
	}
}

func UpdateUserCommandHandler(db *sqlite.DB, deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			response.Error(w, apierror.Unauthorized(""))
			return
		}

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			response.Error(w, apierror.ValidationError("invalid user id"))
			return
		}

		var input UpdateUserInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			response.Error(w, apierror.BadRequest("invalid request body"))
			return
		}

		user, err := UpdateUser(r.Context(), db, deps.Audit, session.UserID, id, input)
		if err != nil {
			response.Error(w, translateUserError(err))
			return
		}

		// Cached credentials and role may be stale after an update.
		deps.Users.Invalidate(user.Username)

		response.OK(w, UserView{
			ID:          user.ID,
			Username:    user.Username,
			Role:        user.Role,
			AuthGroupID: user.AuthGroupID,
		})
	}
}

func translateUserError(err error) error {
	switch {
	case errors.Is(err, ErrUsernameRequired),
		errors.Is(err, ErrPasswordRequired),
		errors.Is(err, ErrInvalidRole):
		return apierror.ValidationError(err.Error())
	case errors.Is(err, ErrUsernameExists):
		return apierror.Conflict(err.Error())
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrGroupNotFound):
		return apierror.NotFound(err.Error())
	case err != nil && strings.HasPrefix(err.Error(), "password must"):
		return apierror.ValidationError(err.Error())
	default:
		slog.Error("admin users", slog.Any("err", err))
		return apierror.InternalError("user operation failed")
	}
}

// Deps bundles the audit service and user cache the handlers need.
type Deps struct {
	Audit *audit.Service
	Users *cache.UserCache
}
