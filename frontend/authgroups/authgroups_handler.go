package authgroups

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	sessioncontext "scangate/frontend/shared/context"
	"scangate/infrastructure/audit"
	"scangate/infrastructure/sqlite"
	"scangate/pkg/apierror"
	"scangate/pkg/response"
)

func ListGroupsQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := ListGroups(r.Context(), db)
		if err != nil {
			slog.Error("list auth groups", slog.Any("err", err))
			response.Error(w, apierror.InternalError("failed to load auth groups"))
			return
		}
		response.OK(w, groups)
	}
}

func CreateGroupCommandHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			response.Error(w, apierror.Unauthorized(""))
			return
		}

		var input CreateGroupInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			response.Error(w, apierror.BadRequest("invalid request body"))
			return
		}

		group, err := CreateGroup(r.Context(), db, auditSvc, session.UserID, input)
		if err != nil {
			response.Error(w, translateGroupError(err))
			return
		}
		response.Created(w, group)
	}
}

func UpdateGroupCommandHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			response.Error(w, apierror.Unauthorized(""))
			return
		}

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			response.Error(w, apierror.ValidationError("invalid group id"))
			return
		}

		var input UpdateGroupInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			response.Error(w, apierror.BadRequest("invalid request body"))
			return
		}

		group, err := UpdateGroup(r.Context(), db, auditSvc, session.UserID, id, input)
		if err != nil {
			response.Error(w, translateGroupError(err))
			return
		}
		response.OK(w, group)
	}
}

func translateGroupError(err error) error {
	switch {
	case errors.Is(err, ErrNameRequired):
		return apierror.ValidationError(err.Error())
	case errors.Is(err, ErrNameExists):
		return apierror.Conflict(err.Error())
	case errors.Is(err, ErrGroupNotFound):
		return apierror.NotFound(err.Error())
	default:
		slog.Error("admin auth groups", slog.Any("err", err))
		return apierror.InternalError("auth group operation failed")
	}
}
