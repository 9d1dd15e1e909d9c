package process

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"scangate/frontend/reasons"
	"scangate/frontend/scanning"
	"scangate/infrastructure/audit"
	"scangate/infrastructure/sqlite"
	"scangate/infrastructure/wms"
	"scangate/models"
)

var (
	ErrInvalidDocumentType = errors.New("unknown document type")
	ErrQuantityNotPositive = errors.New("quantity must be greater than zero")
	ErrLineNotFound        = errors.New("no pending line with that id")
	ErrReasonInactive      = errors.New("cancellation reason is missing or inactive")
)

// Backend is the remote warehouse surface the document flow depends on.
type Backend interface {
	scanning.Resolver
	AddItemToDocument(ctx context.Context, req wms.AddItemRequest) (*wms.AddItemResponse, error)
	UpdateLine(ctx context.Context, req wms.UpdateLineRequest) (*wms.UpdateLineResponse, error)
	UpdateLineQuantity(ctx context.Context, req wms.UpdateLineQuantityRequest) (*wms.UpdateLineQuantityResponse, error)
}

// Flow drives scan sessions for goods receipt, transfer, picking and counting
// documents. One flow serves all document types; per-type behavior is limited
// to the scan options each type enables.
type Flow struct {
	store   *scanning.Store
	backend Backend
	db      *sqlite.DB
	audit   *audit.Service
}

func NewFlow(store *scanning.Store, backend Backend, db *sqlite.DB, auditSvc *audit.Service) *Flow {
	return &Flow{store: store, backend: backend, db: db, audit: auditSvc}
}

// Open creates a scan session against a document and persists it.
func (f *Flow) Open(ctx context.Context, userID int64, input OpenSessionInput) (*scanning.Session, error) {
	if !ValidDocumentType(input.DocumentType) {
		return nil, ErrInvalidDocumentType
	}
	if strings.TrimSpace(input.DocumentID) == "" {
		return nil, errors.New("document id is required")
	}

	session := scanning.NewSession(uuid.NewString(), userID, scanning.DocumentRef{
		ObjectType: string(input.DocumentType),
		ObjectID:   input.DocumentID,
		BinEntry:   input.BinEntry,
	}, defaultOptions(input.DocumentType))

	if err := f.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Get loads a session without mutating it.
func (f *Flow) Get(ctx context.Context, id string) (*scanning.Session, error) {
	return f.store.Load(ctx, id)
}

// Discard drops a session on explicit clear.
func (f *Flow) Discard(ctx context.Context, id string) error {
	return f.store.Delete(ctx, id)
}

// SetMode toggles item/package interpretation.
func (f *Flow) SetMode(ctx context.Context, id string, mode scanning.Mode) (*scanning.Session, error) {
	return f.mutate(ctx, id, func(s *scanning.Session) error {
		return s.SetMode(mode)
	})
}

// SetUnit selects the unit for the next scan.
func (f *Flow) SetUnit(ctx context.Context, id string, unit scanning.Unit) (*scanning.Session, error) {
	return f.mutate(ctx, id, func(s *scanning.Session) error {
		return s.SetUnit(unit)
	})
}

// SetCreatePackage toggles the create-package request.
func (f *Flow) SetCreatePackage(ctx context.Context, id string, on bool) (*scanning.Session, error) {
	return f.mutate(ctx, id, func(s *scanning.Session) error {
		return s.SetCreatePackage(on)
	})
}

// ClearPackage drops the loaded package.
func (f *Flow) ClearPackage(ctx context.Context, id string) (*scanning.Session, error) {
	return f.mutate(ctx, id, func(s *scanning.Session) error {
		s.ClearPackage()
		return nil
	})
}

func (f *Flow) mutate(ctx context.Context, id string, fn func(*scanning.Session) error) (*scanning.Session, error) {
	session, err := f.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	if err := f.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Scan resolves one raw scan and, when an item resolves, adds it to the
// document and records the resulting pending alert.
func (f *Flow) Scan(ctx context.Context, sessionID, raw string) (*ScanResult, error) {
	session, err := f.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	outcome, err := session.Resolve(ctx, f.backend, raw)
	if err != nil {
		// Failed attempts still reset entry state; persist that before
		// surfacing the error, unless the request was abandoned.
		if ctx.Err() == nil && !errors.Is(err, scanning.ErrInputRequired) && !errors.Is(err, scanning.ErrSessionClosed) {
			if saveErr := f.store.Save(ctx, session); saveErr != nil {
				slog.Error("save scan session after failed resolve", slog.String("session_id", sessionID), slog.Any("err", saveErr))
			}
		}
		return nil, err
	}

	result := &ScanResult{Outcome: outcome, Session: session}

	if outcome.Kind == scanning.OutcomeResolved {
		alert, closed, err := f.addItem(ctx, session, outcome)
		if err != nil {
			// The alert list stays untouched on a rejected add; only the
			// entry-state reset from the resolve attempt is kept.
			if saveErr := f.store.Save(ctx, session); saveErr != nil {
				slog.Error("save scan session after failed add", slog.String("session_id", sessionID), slog.Any("err", saveErr))
			}
			return nil, err
		}
		result.Alert = alert
		result.ClosedDocument = closed
	}

	if err := f.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return result, nil
}

func (f *Flow) addItem(ctx context.Context, session *scanning.Session, outcome scanning.Outcome) (*scanning.PendingAlert, bool, error) {
	req := wms.AddItemRequest{
		DocumentID:    session.Document.ObjectID,
		ItemCode:      outcome.Item.Code,
		Barcode:       outcome.Barcode,
		Unit:          string(outcome.Unit),
		CreatePackage: outcome.CreatePackage,
	}
	if outcome.Package != nil {
		req.PackageID = outcome.Package.ID
	}

	resp, err := f.backend.AddItemToDocument(ctx, req)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, false, ctxErr
	}
	if err != nil {
		return nil, false, err
	}

	if resp.ClosedDocument {
		session.Close()
		return nil, true, nil
	}

	alert := scanning.PendingAlert{
		LineID:     resp.LineID,
		ItemCode:   outcome.Item.Code,
		Barcode:    outcome.Barcode,
		Quantity:   resp.Quantity,
		Unit:       outcome.Unit,
		NumInBuy:   resp.NumInBuy,
		BuyUnitMsr: resp.BuyUnitMsr,
		PurPackUn:  resp.PurPackUn,
		PurPackMsr: resp.PurPackMsr,
	}
	alert.ApplyClassification(scanning.Classify(scanning.AcceptFlags{
		Warehouse:   resp.Warehouse,
		Fulfillment: resp.Fulfillment,
		Showroom:    resp.Showroom,
	}, outcome.Item.Code))
	session.UpsertAlert(alert)

	if resp.PackageID != "" && outcome.CreatePackage {
		if err := f.recordCreatedPackage(ctx, session, resp); err != nil {
			// Label reprint bookkeeping must not fail the scan itself.
			slog.Error("record created package", slog.String("package_id", resp.PackageID), slog.Any("err", err))
		}
	}

	saved, _ := session.FindAlert(resp.LineID)
	return &saved, false, nil
}

func (f *Flow) recordCreatedPackage(ctx context.Context, session *scanning.Session, resp *wms.AddItemResponse) error {
	if f.db == nil {
		return nil
	}
	pkg := models.CreatedPackage{
		PackageID:    resp.PackageID,
		Barcode:      resp.PackageBarcode,
		DocumentType: session.Document.ObjectType,
		DocumentID:   session.Document.ObjectID,
		CreatedBy:    session.UserID,
	}
	return f.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&pkg).On("CONFLICT (package_id) DO NOTHING").Exec(ctx); err != nil {
			return err
		}
		if f.audit != nil {
			return f.audit.Write(ctx, tx, session.UserID, "package.create", "created_packages", resp.PackageID, nil, pkg)
		}
		return nil
	})
}

// UpdateQuantity changes a pending line's quantity through the dedicated
// backend call and re-derives the alert display fields from the response.
func (f *Flow) UpdateQuantity(ctx context.Context, sessionID, lineID string, quantity float64) (*scanning.PendingAlert, error) {
	if quantity <= 0 {
		return nil, ErrQuantityNotPositive
	}

	session, err := f.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Enabled {
		return nil, scanning.ErrSessionClosed
	}
	alert, ok := session.FindAlert(lineID)
	if !ok {
		return nil, ErrLineNotFound
	}

	resp, err := f.backend.UpdateLineQuantity(ctx, wms.UpdateLineQuantityRequest{
		DocumentID: session.Document.ObjectID,
		LineID:     lineID,
		Quantity:   quantity,
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, err
	}
	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("update quantity rejected: %s", resp.ErrorMessage)
	}

	alert.Quantity = quantity
	alert.ApplyClassification(scanning.Classify(scanning.AcceptFlags{
		Warehouse:   resp.Warehouse,
		Fulfillment: resp.Fulfillment,
		Showroom:    resp.Showroom,
	}, alert.ItemCode))
	session.UpsertAlert(alert)

	if err := f.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return &alert, nil
}

// UpdateComment stores a comment on a pending line via the generic line
// update call.
func (f *Flow) UpdateComment(ctx context.Context, sessionID, lineID, comment string) (*scanning.PendingAlert, error) {
	session, err := f.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Enabled {
		return nil, scanning.ErrSessionClosed
	}
	alert, ok := session.FindAlert(lineID)
	if !ok {
		return nil, ErrLineNotFound
	}

	resp, err := f.backend.UpdateLine(ctx, wms.UpdateLineRequest{
		DocumentID: session.Document.ObjectID,
		LineID:     lineID,
		Comment:    &comment,
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, err
	}
	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("update comment rejected: %s", resp.ErrorMessage)
	}

	alert.Comment = comment
	session.UpsertAlert(alert)

	if err := f.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return &alert, nil
}

// CancelLine cancels a pending line using an active cancellation reason.
func (f *Flow) CancelLine(ctx context.Context, sessionID, lineID string, reasonID int64) (*scanning.PendingAlert, error) {
	session, err := f.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Enabled {
		return nil, scanning.ErrSessionClosed
	}
	alert, ok := session.FindAlert(lineID)
	if !ok {
		return nil, ErrLineNotFound
	}

	if f.db != nil {
		active, err := reasons.IsActiveReason(ctx, f.db, reasonID)
		if err != nil {
			return nil, err
		}
		if !active {
			return nil, ErrReasonInactive
		}
	}

	resp, err := f.backend.UpdateLine(ctx, wms.UpdateLineRequest{
		DocumentID:  session.Document.ObjectID,
		LineID:      lineID,
		CloseReason: &reasonID,
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, err
	}
	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("cancel line rejected: %s", resp.ErrorMessage)
	}

	alert.Canceled = true
	session.UpsertAlert(alert)

	if err := f.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return &alert, nil
}
