package labels

import "time"

// PackageLabelData is everything a reprint label carries.
type PackageLabelData struct {
	PackageID    string
	Barcode      string
	DocumentType string
	DocumentID   string
	CreatedAt    time.Time
}
