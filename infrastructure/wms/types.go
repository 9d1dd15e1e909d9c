package wms

import "time"

// CandidateItem is one item-master row matching a scanned barcode. A single
// item code can carry several barcodes, so the resolver may return duplicate
// rows for one logical item.
type CandidateItem struct {
	Code       string  `json:"code"`
	Barcode    string  `json:"barcode"`
	NumInBuy   float64 `json:"numInBuy"`
	BuyUnitMsr string  `json:"buyUnitMsr"`
	PurPackUn  float64 `json:"purPackUn"`
	PurPackMsr string  `json:"purPackMsr"`
}

// MovementCreated marks the history entry written when a package is created.
const MovementCreated = "Created"

// LocationHistoryEntry is one movement in a package's provenance trail.
type LocationHistoryEntry struct {
	SourceOperationType string    `json:"sourceOperationType"`
	SourceOperationID   string    `json:"sourceOperationId"`
	MovementType        string    `json:"movementType"`
	Timestamp           time.Time `json:"timestamp"`
}

// PackageDetail is the package resolver result, including provenance history
// when requested.
type PackageDetail struct {
	ID              string                 `json:"id"`
	Barcode         string                 `json:"barcode"`
	LocationHistory []LocationHistoryEntry `json:"locationHistory"`
}

// ResolvePackageRequest identifies a package scan against a document.
type ResolvePackageRequest struct {
	Barcode    string `json:"barcode"`
	History    bool   `json:"history"`
	ObjectID   string `json:"objectId"`
	ObjectType string `json:"objectType"`
	BinEntry   *int64 `json:"binEntry,omitempty"`
}

// AddItemRequest adds a resolved item to a document.
type AddItemRequest struct {
	DocumentID    string `json:"documentId"`
	ItemCode      string `json:"itemCode"`
	Barcode       string `json:"barcode"`
	Unit          string `json:"unit"`
	CreatePackage bool   `json:"createPackage,omitempty"`
	PackageID     string `json:"packageId,omitempty"`
}

// AddItemResponse reports the created line and which downstream systems
// accepted it.
type AddItemResponse struct {
	LineID         string  `json:"lineId"`
	Quantity       float64 `json:"quantity"`
	NumInBuy       float64 `json:"numInBuy"`
	BuyUnitMsr     string  `json:"buyUnitMsr"`
	PurPackUn      float64 `json:"purPackUn"`
	PurPackMsr     string  `json:"purPackMsr"`
	Warehouse      bool    `json:"warehouse"`
	Fulfillment    bool    `json:"fulfillment"`
	Showroom       bool    `json:"showroom"`
	ClosedDocument bool    `json:"closedDocument"`
	PackageID      string  `json:"packageId,omitempty"`
	PackageBarcode string  `json:"packageBarcode,omitempty"`
}

// UpdateLineRequest edits comment or cancellation state of a line.
type UpdateLineRequest struct {
	DocumentID  string  `json:"documentId"`
	LineID      string  `json:"lineId"`
	Comment     *string `json:"comment,omitempty"`
	CloseReason *int64  `json:"closeReason,omitempty"`
}

// UpdateLineResponse is the backend's generic line-update result.
type UpdateLineResponse struct {
	ReturnValue  int    `json:"returnValue"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// UpdateLineQuantityRequest changes the quantity of a line.
type UpdateLineQuantityRequest struct {
	DocumentID string  `json:"documentId"`
	LineID     string  `json:"lineId"`
	Quantity   float64 `json:"quantity"`
}

// UpdateLineQuantityResponse carries the re-derived acceptance flags.
type UpdateLineQuantityResponse struct {
	ReturnValue  int    `json:"returnValue"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	Warehouse    bool   `json:"warehouse"`
	Fulfillment  bool   `json:"fulfillment"`
	Showroom     bool   `json:"showroom"`
}

// LicenseStatus is the backend's licensing decision for this installation.
type LicenseStatus struct {
	Licensed   bool      `json:"licensed"`
	Expiration time.Time `json:"expiration"`
	MaxDevices int       `json:"maxDevices"`
	Message    string    `json:"message,omitempty"`
}
