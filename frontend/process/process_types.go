package process

import "scangate/frontend/scanning"

// DocumentType is the warehouse document flavor a scan session runs against.
type DocumentType string

const (
	DocGoodsReceipt DocumentType = "GoodsReceipt"
	DocTransfer     DocumentType = "Transfer"
	DocPicking      DocumentType = "Picking"
	DocCounting     DocumentType = "Counting"
)

// ValidDocumentType reports whether t is a known document type.
func ValidDocumentType(t DocumentType) bool {
	switch t {
	case DocGoodsReceipt, DocTransfer, DocPicking, DocCounting:
		return true
	}
	return false
}

// defaultOptions declares which scan features each document flow offers.
// Goods receipt creates packages; counting scans existing ones.
func defaultOptions(t DocumentType) scanning.Options {
	switch t {
	case DocGoodsReceipt:
		return scanning.Options{EnablePackage: true, EnablePackageCreate: true}
	case DocCounting:
		return scanning.Options{EnablePackage: true}
	default:
		return scanning.Options{}
	}
}

// OpenSessionInput opens a scan session against a document.
type OpenSessionInput struct {
	DocumentType DocumentType `json:"documentType"`
	DocumentID   string       `json:"documentId"`
	BinEntry     *int64       `json:"binEntry,omitempty"`
}

// ScanInput carries one raw scan.
type ScanInput struct {
	Barcode string `json:"barcode"`
}

// ScanResult is the caller-visible result of one scan round trip.
type ScanResult struct {
	Outcome        scanning.Outcome       `json:"outcome"`
	Alert          *scanning.PendingAlert `json:"alert,omitempty"`
	ClosedDocument bool                   `json:"closedDocument,omitempty"`
	Session        *scanning.Session      `json:"session"`
}
