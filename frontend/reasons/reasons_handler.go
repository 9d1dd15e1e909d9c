package reasons

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

// ListReasonsQueryHandler returns all cancellation reasons. Scanner terminals
// filter to active ones client-side; admins see both.
func ListReasonsQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reasons, err := ListReasons(r.Context(), db)
		if err != nil {
			slog.Error("list reasons", slog.Any("err", err))
			response.Error(w, apierror.InternalError("failed to load reasons"))
			return
		}
		response.OK(w, reasons)
	}
}

func CreateReasonCommandHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			response.Error(w, apierror.Unauthorized(""))
			return
		}

		var input CreateReasonInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			response.Error(w, apierror.BadRequest("invalid request body"))
			return
		}

		reason, err := CreateReason(r.Context(), db, auditSvc, session.UserID, input.Name)
		if err != nil {
			response.Error(w, translateReasonError(err))
			return
		}
		response.Created(w, ReasonView{ID: reason.ID, Name: reason.Name, Active: reason.Active})
	}
}

func UpdateReasonCommandHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			response.Error(w, apierror.Unauthorized(""))
			return
		}

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			response.Error(w, apierror.ValidationError("invalid reason id"))
			return
		}

		var input UpdateReasonInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			response.Error(w, apierror.BadRequest("invalid request body"))
			return
		}

		reason, err := UpdateReason(r.Context(), db, auditSvc, session.UserID, id, input)
		if err != nil {
			response.Error(w, translateReasonError(err))
			return
		}
		response.OK(w, ReasonView{ID: reason.ID, Name: reason.Name, Active: reason.Active})
	}
}

func translateReasonError(err error) error {
	switch {
	case errors.Is(err, ErrReasonNotFound):
		return apierror.NotFound(err.Error())
	case errors.Is(err, ErrNameRequired):
		return apierror.ValidationError(err.Error())
	default:
		slog.Error("admin reasons", slog.Any("err", err))
		return apierror.InternalError("reason operation failed")
	}
}
