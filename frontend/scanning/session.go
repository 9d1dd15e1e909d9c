package scanning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"scangate/infrastructure/wms"
)

// Mode selects how a raw scan is interpreted.
type Mode string

const (
	ModeItem    Mode = "item"
	ModePackage Mode = "package"
)

// Unit is the purchasing unit applied to the next item scan.
type Unit string

const (
	UnitSingle Unit = "Unit"
	UnitDozen  Unit = "Dozen"
	UnitPack   Unit = "Pack"
)

// DefaultUnit is restored after every resolution attempt.
const DefaultUnit = UnitPack

// ValidUnit reports whether u is one of the known unit options.
func ValidUnit(u Unit) bool {
	switch u {
	case UnitSingle, UnitDozen, UnitPack:
		return true
	}
	return false
}

// State is the explicit scan session state. Invalid combinations of the
// legacy mode/flag fields collapse into these four states.
type State string

const (
	StateIdle          State = "idle"
	StateItemEntry     State = "item_entry"
	StatePackageLoaded State = "package_loaded"
	StateClosed        State = "closed"
)

var (
	ErrInputRequired          = errors.New("barcode input is required")
	ErrSessionClosed          = errors.New("document is closed; scanning is disabled for this session")
	ErrPackageModeDisabled    = errors.New("package scanning is not enabled for this document")
	ErrPackageCreateDisabled  = errors.New("package creation is not enabled for this document")
	ErrPackageAlreadyCounted  = errors.New("package is already counted in another bin location")
	ErrInvalidUnit            = errors.New("invalid unit selection")
	ErrCreatePackageWrongMode = errors.New("create package only applies to item scanning")
)

// PackageRef identifies a package loaded into the session. Immutable once
// created and never shared across sessions.
type PackageRef struct {
	ID      string `json:"id"`
	Barcode string `json:"barcode"`
}

// DocumentRef identifies the document the session scans against.
type DocumentRef struct {
	ObjectType string `json:"objectType"`
	ObjectID   string `json:"objectId"`
	BinEntry   *int64 `json:"binEntry,omitempty"`
}

// Options declares which scan features the hosting document flow offers.
type Options struct {
	EnablePackage       bool `json:"enablePackage"`
	EnablePackageCreate bool `json:"enablePackageCreate"`
}

// Session is the per-document scan state machine. It lives in the session
// store between requests; one scanner drives one session at a time.
type Session struct {
	ID            string         `json:"id"`
	UserID        int64          `json:"userId"`
	Document      DocumentRef    `json:"document"`
	Options       Options        `json:"options"`
	State         State          `json:"state"`
	Mode          Mode           `json:"mode"`
	SelectedUnit  Unit           `json:"selectedUnit"`
	CreatePackage bool           `json:"createPackage"`
	LoadedPackage *PackageRef    `json:"loadedPackage,omitempty"`
	Enabled       bool           `json:"enabled"`
	Alerts        []PendingAlert `json:"alerts"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// NewSession creates a session in clean item-entry state.
func NewSession(id string, userID int64, doc DocumentRef, opts Options) *Session {
	return &Session{
		ID:           id,
		UserID:       userID,
		Document:     doc,
		Options:      opts,
		State:        StateItemEntry,
		Mode:         ModeItem,
		SelectedUnit: DefaultUnit,
		Enabled:      true,
		Alerts:       make([]PendingAlert, 0),
		CreatedAt:    time.Now().UTC(),
	}
}

// SetMode toggles scan interpretation. Switching always clears the loaded
// package and the create-package flag, in that order, before the caller
// refocuses the input. No remote call is made.
func (s *Session) SetMode(mode Mode) error {
	if !s.Enabled {
		return ErrSessionClosed
	}
	switch mode {
	case ModeItem:
	case ModePackage:
		if !s.Options.EnablePackage {
			return ErrPackageModeDisabled
		}
	default:
		return fmt.Errorf("unknown scan mode %q", mode)
	}

	s.Mode = mode
	s.LoadedPackage = nil
	s.CreatePackage = false
	s.State = StateItemEntry
	return nil
}

// SetUnit selects the unit applied to the next item scan.
func (s *Session) SetUnit(u Unit) error {
	if !s.Enabled {
		return ErrSessionClosed
	}
	if !ValidUnit(u) {
		return ErrInvalidUnit
	}
	s.SelectedUnit = u
	return nil
}

// SetCreatePackage requests a new package as a side effect of the next add.
func (s *Session) SetCreatePackage(on bool) error {
	if !s.Enabled {
		return ErrSessionClosed
	}
	if on {
		if s.Mode != ModeItem {
			return ErrCreatePackageWrongMode
		}
		if !s.Options.EnablePackageCreate {
			return ErrPackageCreateDisabled
		}
	}
	s.CreatePackage = on
	return nil
}

// ClearPackage drops the loaded package without a mode switch.
func (s *Session) ClearPackage() {
	s.LoadedPackage = nil
	if s.State == StatePackageLoaded {
		s.State = StateItemEntry
	}
}

// Close marks the parent document closed. This is a one-way transition; no
// action re-enables the session.
func (s *Session) Close() {
	s.Enabled = false
	s.State = StateClosed
	s.UpsertAlert(PendingAlert{
		LineID:   closedAlertLineID,
		Severity: SeverityNegative,
		Message:  fmt.Sprintf("Document %s is closed. Scanning is disabled.", s.Document.ObjectID),
	})
}

// resetEntryState returns the session to clean entry after a resolution
// attempt. The loaded package deliberately survives item scans.
func (s *Session) resetEntryState() {
	s.SelectedUnit = DefaultUnit
	s.CreatePackage = false
}

// OutcomeKind classifies a resolution attempt.
type OutcomeKind string

const (
	OutcomeResolved           OutcomeKind = "resolved"
	OutcomeNotFound           OutcomeKind = "not_found"
	OutcomeAmbiguous          OutcomeKind = "ambiguous"
	OutcomePackageLoaded      OutcomeKind = "package_loaded"
	OutcomePackageNotFound    OutcomeKind = "package_not_found"
	OutcomeProvenanceRejected OutcomeKind = "provenance_rejected"
)

// Outcome is the caller-visible result of one resolution attempt. For
// Resolved outcomes it snapshots the unit, create-package flag and loaded
// package as they stood when the scan happened, since the session itself is
// reset afterwards.
type Outcome struct {
	Kind          OutcomeKind        `json:"kind"`
	Barcode       string             `json:"barcode"`
	Item          *wms.CandidateItem `json:"item,omitempty"`
	Unit          Unit               `json:"unit,omitempty"`
	CreatePackage bool               `json:"createPackage,omitempty"`
	Package       *PackageRef        `json:"package,omitempty"`
	Message       string             `json:"message,omitempty"`
}

// Resolver is the subset of the backend client the resolution flow needs.
type Resolver interface {
	ResolveItemBarcode(ctx context.Context, barcode string, codeMode bool) ([]wms.CandidateItem, error)
	ResolvePackageByBarcode(ctx context.Context, req wms.ResolvePackageRequest) (*wms.PackageDetail, error)
}

// Resolve classifies raw scanned text under the current mode and reduces the
// backend result to an outcome. Every attempt, success or failure, returns
// the session to clean entry state; only the loaded package persists.
func (s *Session) Resolve(ctx context.Context, resolver Resolver, raw string) (Outcome, error) {
	if !s.Enabled {
		return Outcome{}, ErrSessionClosed
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Outcome{}, ErrInputRequired
	}

	if s.Mode == ModePackage {
		return s.resolvePackage(ctx, resolver, raw)
	}
	return s.resolveItem(ctx, resolver, raw)
}

func (s *Session) resolveItem(ctx context.Context, resolver Resolver, barcode string) (Outcome, error) {
	// Snapshot before the attempt resets entry state.
	unit := s.SelectedUnit
	createPackage := s.CreatePackage
	loadedPackage := s.LoadedPackage

	items, err := resolver.ResolveItemBarcode(ctx, barcode, false)
	if ctxErr := ctx.Err(); ctxErr != nil {
		// Abandoned request: leave the session untouched.
		return Outcome{}, ctxErr
	}
	if err != nil {
		s.resetEntryState()
		if wms.IsNotFound(err) {
			return Outcome{Kind: OutcomeNotFound, Barcode: barcode,
				Message: fmt.Sprintf("Barcode %s was not found", barcode)}, nil
		}
		return Outcome{}, err
	}

	s.resetEntryState()

	if len(items) == 0 {
		return Outcome{Kind: OutcomeNotFound, Barcode: barcode,
			Message: fmt.Sprintf("Barcode %s was not found", barcode)}, nil
	}

	distinct := collapseDistinct(items)
	if len(distinct) > 1 {
		// One barcode mapping to several distinct items cannot be resolved
		// client-side; surface a blocking notice without a disambiguation UI.
		return Outcome{Kind: OutcomeAmbiguous, Barcode: barcode,
			Message: fmt.Sprintf("Barcode %s matches %d different items and cannot be resolved on this device", barcode, len(distinct))}, nil
	}

	item := distinct[0]
	// Pair the scanned barcode back with the item: one code can carry many
	// barcodes and the caller needs the one that was actually scanned.
	item.Barcode = barcode

	return Outcome{
		Kind:          OutcomeResolved,
		Barcode:       barcode,
		Item:          &item,
		Unit:          unit,
		CreatePackage: createPackage,
		Package:       loadedPackage,
	}, nil
}

func (s *Session) resolvePackage(ctx context.Context, resolver Resolver, barcode string) (Outcome, error) {
	detail, err := resolver.ResolvePackageByBarcode(ctx, wms.ResolvePackageRequest{
		Barcode:    barcode,
		History:    true,
		ObjectID:   s.Document.ObjectID,
		ObjectType: s.Document.ObjectType,
		BinEntry:   s.Document.BinEntry,
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Outcome{}, ctxErr
	}
	if err != nil {
		s.resetEntryState()
		var wmsErr *wms.Error
		if errors.As(err, &wmsErr) && wmsErr.Message == wms.MsgPackageAlreadyCounted {
			return Outcome{}, ErrPackageAlreadyCounted
		}
		return Outcome{}, err
	}

	s.resetEntryState()

	if detail == nil {
		return Outcome{Kind: OutcomePackageNotFound, Barcode: barcode,
			Message: fmt.Sprintf("Package %s was not found", barcode)}, nil
	}

	if !packageCreatedByDocument(detail, s.Document) {
		// Hard rejection, distinct from not found: the package exists but was
		// not created by this document.
		return Outcome{Kind: OutcomeProvenanceRejected, Barcode: barcode,
			Message: fmt.Sprintf("Package %s was not created by document %s", barcode, s.Document.ObjectID)}, nil
	}

	pkg := &PackageRef{ID: detail.ID, Barcode: barcode}
	s.LoadedPackage = pkg
	// Package scanning is a one-shot action feeding the next item scan.
	s.Mode = ModeItem
	s.State = StatePackageLoaded

	return Outcome{
		Kind:    OutcomePackageLoaded,
		Barcode: barcode,
		Package: pkg,
		Message: fmt.Sprintf("Package %s loaded", barcode),
	}, nil
}

// collapseDistinct reduces resolver rows to one row per item code, keeping
// first-seen order.
func collapseDistinct(items []wms.CandidateItem) []wms.CandidateItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]wms.CandidateItem, 0, 1)
	for _, item := range items {
		if _, ok := seen[item.Code]; ok {
			continue
		}
		seen[item.Code] = struct{}{}
		out = append(out, item)
	}
	return out
}

// packageCreatedByDocument checks provenance: the package history must show a
// Created movement sourced from the current document.
func packageCreatedByDocument(detail *wms.PackageDetail, doc DocumentRef) bool {
	for _, entry := range detail.LocationHistory {
		if entry.MovementType != wms.MovementCreated {
			continue
		}
		if entry.SourceOperationType == doc.ObjectType && entry.SourceOperationID == doc.ObjectID {
			return true
		}
	}
	return false
}
