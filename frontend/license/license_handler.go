package license

import (
	"errors"
	"log/slog"
	"net/http"

	"scangate/infrastructure/wms"
	"scangate/pkg/apierror"
	"scangate/pkg/response"
)

// StatusQueryHandler returns the backend licensing decision, read-only.
func StatusQueryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := svc.Status(r.Context())
		if err != nil {
			response.Error(w, translateLicenseError(err))
			return
		}
		response.OK(w, status)
	}
}

// RefreshCommandHandler forces a re-check against the backend.
func RefreshCommandHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := svc.Refresh(r.Context())
		if err != nil {
			response.Error(w, translateLicenseError(err))
			return
		}
		response.OK(w, status)
	}
}

func translateLicenseError(err error) error {
	var wmsErr *wms.Error
	if errors.As(err, &wmsErr) {
		return apierror.UpstreamError(wmsErr.Message)
	}
	slog.Error("license status", slog.Any("err", err))
	return apierror.InternalError("failed to load license status")
}
