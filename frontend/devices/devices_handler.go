package devices

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	sessioncontext "scangate/frontend/shared/context"
	"scangate/infrastructure/audit"
	"scangate/infrastructure/cache"
	"scangate/infrastructure/sqlite"
	"scangate/models"
	"scangate/pkg/apierror"
	"scangate/pkg/response"
)

func ListDevicesQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		devices, err := ListDevices(r.Context(), db)
		if err != nil {
			slog.Error("list devices", slog.Any("err", err))
			response.Error(w, apierror.InternalError("failed to load devices"))
			return
		}
		response.OK(w, devices)
	}
}

func RegisterDeviceCommandHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			response.Error(w, apierror.Unauthorized(""))
			return
		}

		var input CreateDeviceInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			response.Error(w, apierror.BadRequest("invalid request body"))
			return
		}

		device, err := RegisterDevice(r.Context(), db, auditSvc, session.UserID, input)
		if err != nil {
			response.Error(w, translateDeviceError(err))
			return
		}
		response.Created(w, deviceView(device))
	}
}

func UpdateDeviceCommandHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			response.Error(w, apierror.Unauthorized(""))
			return
		}

		var input UpdateDeviceInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			response.Error(w, apierror.BadRequest("invalid request body"))
			return
		}

		device, err := UpdateDevice(r.Context(), db, auditSvc, session.UserID, chi.URLParam(r, "id"), input)
		if err != nil {
			response.Error(w, translateDeviceError(err))
			return
		}
		response.OK(w, deviceView(device))
	}
}

func DisableDeviceCommandHandler(db *sqlite.DB, auditSvc *audit.Service, sessions *cache.UserSessionCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			response.Error(w, apierror.Unauthorized(""))
			return
		}

		device, err := DisableDevice(r.Context(), db, auditSvc, session.UserID, chi.URLParam(r, "id"))
		if err != nil {
			response.Error(w, translateDeviceError(err))
			return
		}
		if sessions != nil {
			sessions.DeleteSessionsByDeviceID(device.ID)
		}
		response.OK(w, deviceView(device))
	}
}

func deviceView(device models.Device) DeviceView {
	return DeviceView{
		ID:         device.ID,
		Name:       device.Name,
		Status:     device.Status,
		LastSeenAt: device.LastSeenAt,
	}
}

func translateDeviceError(err error) error {
	switch {
	case errors.Is(err, ErrNameRequired), errors.Is(err, ErrInvalidStatus):
		return apierror.ValidationError(err.Error())
	case errors.Is(err, ErrDeviceNotFound):
		return apierror.NotFound(err.Error())
	default:
		slog.Error("admin devices", slog.Any("err", err))
		return apierror.InternalError("device operation failed")
	}
}
