package process

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"scangate/frontend/scanning"
	sessioncontext "scangate/frontend/shared/context"
	"scangate/infrastructure/wms"
	"scangate/pkg/apierror"
	"scangate/pkg/response"
)

// OpenSessionCommandHandler opens a scan session against a document.
func OpenSessionCommandHandler(flow *Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			response.Error(w, apierror.Unauthorized(""))
			return
		}

		var input OpenSessionInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			response.Error(w, apierror.BadRequest("invalid request body"))
			return
		}

		scanSession, err := flow.Open(r.Context(), session.UserID, input)
		if err != nil {
			response.Error(w, translateFlowError(err))
			return
		}
		response.Created(w, scanSession)
	}
}

// GetSessionQueryHandler returns the current session state and alert list.
func GetSessionQueryHandler(flow *Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scanSession, err := flow.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			response.Error(w, translateFlowError(err))
			return
		}
		response.OK(w, scanSession)
	}
}

// DiscardSessionCommandHandler drops a session on explicit clear.
func DiscardSessionCommandHandler(flow *Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := flow.Discard(r.Context(), chi.URLParam(r, "id")); err != nil {
			response.Error(w, translateFlowError(err))
			return
		}
		response.NoContent(w)
	}
}

// SetModeCommandHandler toggles item/package scan interpretation.
func SetModeCommandHandler(flow *Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input struct {
			Mode scanning.Mode `json:"mode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			response.Error(w, apierror.BadRequest("invalid request body"))
			return
		}
		scanSession, err := flow.SetMode(r.Context(), chi.URLParam(r, "id"), input.Mode)
		if err != nil {
			response.Error(w, translateFlowError(err))
			return
		}
		response.OK(w, scanSession)
	}
}

// SetUnitCommandHandler selects the unit for the next scan.
func SetUnitCommandHandler(flow *Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input struct {
			Unit scanning.Unit `json:"unit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			response.Error(w, apierror.BadRequest("invalid request body"))
			return
		}
		scanSession, err := flow.SetUnit(r.Context(), chi.URLParam(r, "id"), input.Unit)
		if err != nil {
			response.Error(w, translateFlowError(err))
			return
		}
		response.OK(w, scanSession)
	}
}

// SetCreatePackageCommandHandler toggles the create-package request.
func SetCreatePackageCommandHandler(flow *Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input struct {
			Enabled bool `json:"enabled"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			response.Error(w, apierror.BadRequest("invalid request body"))
			return
		}
		scanSession, err := flow.SetCreatePackage(r.Context(), chi.URLParam(r, "id"), input.Enabled)
		if err != nil {
			response.Error(w, translateFlowError(err))
			return
		}
		response.OK(w, scanSession)
	}
}

// ClearPackageCommandHandler drops the loaded package.
func ClearPackageCommandHandler(flow *Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scanSession, err := flow.ClearPackage(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			response.Error(w, translateFlowError(err))
			return
		}
		response.OK(w, scanSession)
	}
}

// ScanCommandHandler resolves one raw scan.
func ScanCommandHandler(flow *Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input ScanInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			response.Error(w, apierror.BadRequest("invalid request body"))
			return
		}

		result, err := flow.Scan(r.Context(), chi.URLParam(r, "id"), input.Barcode)
		if err != nil {
			response.Error(w, translateFlowError(err))
			return
		}
		response.OK(w, result)
	}
}

// UpdateQuantityCommandHandler changes a pending line's quantity.
func UpdateQuantityCommandHandler(flow *Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input struct {
			Quantity float64 `json:"quantity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			response.Error(w, apierror.BadRequest("invalid request body"))
			return
		}

		alert, err := flow.UpdateQuantity(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "lineID"), input.Quantity)
		if err != nil {
			response.Error(w, translateFlowError(err))
			return
		}
		response.OK(w, alert)
	}
}

// UpdateCommentCommandHandler stores a comment on a pending line.
func UpdateCommentCommandHandler(flow *Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input struct {
			Comment string `json:"comment"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			response.Error(w, apierror.BadRequest("invalid request body"))
			return
		}

		alert, err := flow.UpdateComment(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "lineID"), strings.TrimSpace(input.Comment))
		if err != nil {
			response.Error(w, translateFlowError(err))
			return
		}
		response.OK(w, alert)
	}
}

// CancelLineCommandHandler cancels a pending line with a reason.
func CancelLineCommandHandler(flow *Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input struct {
			ReasonID int64 `json:"reasonId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			response.Error(w, apierror.BadRequest("invalid request body"))
			return
		}

		alert, err := flow.CancelLine(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "lineID"), input.ReasonID)
		if err != nil {
			response.Error(w, translateFlowError(err))
			return
		}
		response.OK(w, alert)
	}
}

// translateFlowError maps flow errors to API errors. Two backend error shapes
// get friendlier messages; everything else from the backend passes through
// verbatim.
func translateFlowError(err error) error {
	switch {
	case errors.Is(err, scanning.ErrSessionNotFound):
		return apierror.NotFound("scan session not found")
	case errors.Is(err, scanning.ErrInputRequired),
		errors.Is(err, scanning.ErrInvalidUnit),
		errors.Is(err, ErrQuantityNotPositive),
		errors.Is(err, ErrInvalidDocumentType):
		return apierror.ValidationError(err.Error())
	case errors.Is(err, scanning.ErrSessionClosed):
		return apierror.Gone(err.Error())
	case errors.Is(err, scanning.ErrPackageModeDisabled),
		errors.Is(err, scanning.ErrPackageCreateDisabled),
		errors.Is(err, scanning.ErrCreatePackageWrongMode):
		return apierror.Forbidden(err.Error())
	case errors.Is(err, scanning.ErrPackageAlreadyCounted):
		return apierror.Conflict("This package is already counted in another bin location")
	case errors.Is(err, ErrLineNotFound):
		return apierror.NotFound(err.Error())
	case errors.Is(err, ErrReasonInactive):
		return apierror.ValidationError(err.Error())
	}

	var wmsErr *wms.Error
	if errors.As(err, &wmsErr) {
		if wms.IsNotFound(err) {
			return apierror.NotFound("The warehouse backend does not recognize this request")
		}
		return apierror.UpstreamError(wmsErr.Message)
	}

	slog.Error("scan flow failure", slog.Any("err", err))
	return apierror.InternalError("")
}
