package labels

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"scangate/infrastructure/sqlite"
	"scangate/pkg/apierror"
	"scangate/pkg/response"
)

// ListCreatedPackagesQueryHandler returns recent gateway-created packages.
func ListCreatedPackagesQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		packages, err := ListCreatedPackages(r.Context(), db, limit)
		if err != nil {
			slog.Error("list created packages", slog.Any("err", err))
			response.Error(w, apierror.InternalError("failed to load packages"))
			return
		}
		response.OK(w, packages)
	}
}

// PackageLabelQueryHandler renders a reprint label PDF for one package.
func PackageLabelQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		packageID := chi.URLParam(r, "id")
		data, err := LoadPackageLabelData(r.Context(), db, packageID)
		if err != nil {
			if errors.Is(err, ErrPackageNotFound) {
				response.Error(w, apierror.NotFound("no label data for that package"))
				return
			}
			slog.Error("load package label", slog.String("package_id", packageID), slog.Any("err", err))
			response.Error(w, apierror.InternalError("failed to load label data"))
			return
		}

		pdfBytes, err := renderPackageLabelPDF(data, time.Now())
		if err != nil {
			slog.Error("render package label", slog.String("package_id", packageID), slog.Any("err", err))
			response.Error(w, apierror.InternalError("failed to render label"))
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", "package-"+packageID+".pdf"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(pdfBytes)
	}
}
