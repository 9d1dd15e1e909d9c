package labels

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"scangate/infrastructure/sqlite"
)

var ErrPackageNotFound = errors.New("created package not found")

// LoadPackageLabelData loads a package created through this gateway. Packages
// created elsewhere have no reprint data here.
func LoadPackageLabelData(ctx context.Context, db *sqlite.DB, packageID string) (PackageLabelData, error) {
	var data PackageLabelData
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`
SELECT package_id, barcode, document_type, document_id, created_at
FROM created_packages
WHERE package_id = ?`, packageID).
			Scan(ctx, &data.PackageID, &data.Barcode, &data.DocumentType, &data.DocumentID, &data.CreatedAt)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PackageLabelData{}, ErrPackageNotFound
		}
		return PackageLabelData{}, err
	}
	return data, nil
}

// ListCreatedPackages returns recent gateway-created packages, newest first.
func ListCreatedPackages(ctx context.Context, db *sqlite.DB, limit int) ([]PackageLabelData, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	packages := make([]PackageLabelData, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		rows, err := tx.QueryContext(ctx, `
SELECT package_id, barcode, document_type, document_id, created_at
FROM created_packages
ORDER BY created_at DESC, id DESC
LIMIT ?`, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var data PackageLabelData
			if err := rows.Scan(&data.PackageID, &data.Barcode, &data.DocumentType, &data.DocumentID, &data.CreatedAt); err != nil {
				return err
			}
			packages = append(packages, data)
		}
		return rows.Err()
	})
	return packages, err
}
