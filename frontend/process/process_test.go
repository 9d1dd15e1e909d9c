package process

import (
	"context"
	"errors"
	"testing"
	"time"

	"scangate/frontend/scanning"
	"scangate/infrastructure/cache"
	"scangate/infrastructure/wms"
)

type fakeBackend struct {
	items       []wms.CandidateItem
	itemErr     error
	pkg         *wms.PackageDetail
	addResp     *wms.AddItemResponse
	addErr      error
	lastAddReq  wms.AddItemRequest
	lineResp    *wms.UpdateLineResponse
	lineErr     error
	lastLineReq wms.UpdateLineRequest
	qtyResp     *wms.UpdateLineQuantityResponse
	qtyErr      error
	lastQtyReq  wms.UpdateLineQuantityRequest
}

func (f *fakeBackend) ResolveItemBarcode(_ context.Context, barcode string, _ bool) ([]wms.CandidateItem, error) {
	if f.itemErr != nil {
		return nil, f.itemErr
	}
	return f.items, nil
}

func (f *fakeBackend) ResolvePackageByBarcode(_ context.Context, req wms.ResolvePackageRequest) (*wms.PackageDetail, error) {
	return f.pkg, nil
}

func (f *fakeBackend) AddItemToDocument(_ context.Context, req wms.AddItemRequest) (*wms.AddItemResponse, error) {
	f.lastAddReq = req
	if f.addErr != nil {
		return nil, f.addErr
	}
	return f.addResp, nil
}

func (f *fakeBackend) UpdateLine(_ context.Context, req wms.UpdateLineRequest) (*wms.UpdateLineResponse, error) {
	f.lastLineReq = req
	if f.lineErr != nil {
		return nil, f.lineErr
	}
	if f.lineResp == nil {
		return &wms.UpdateLineResponse{}, nil
	}
	return f.lineResp, nil
}

func (f *fakeBackend) UpdateLineQuantity(_ context.Context, req wms.UpdateLineQuantityRequest) (*wms.UpdateLineQuantityResponse, error) {
	f.lastQtyReq = req
	if f.qtyErr != nil {
		return nil, f.qtyErr
	}
	if f.qtyResp == nil {
		return &wms.UpdateLineQuantityResponse{}, nil
	}
	return f.qtyResp, nil
}

func newTestFlow(t *testing.T, backend *fakeBackend) *Flow {
	t.Helper()
	mem := cache.NewMemoryStore()
	t.Cleanup(mem.Close)
	// DB-backed bookkeeping (created packages, reason checks) is exercised in
	// the integration test; the flow tolerates a nil db.
	return NewFlow(scanning.NewStore(mem, time.Hour), backend, nil, nil)
}

func openSession(t *testing.T, flow *Flow, docType DocumentType) *scanning.Session {
	t.Helper()
	session, err := flow.Open(context.Background(), 1, OpenSessionInput{DocumentType: docType, DocumentID: "DOC1"})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	return session
}

func TestScanResolvedItemAddsLine(t *testing.T) {
	backend := &fakeBackend{
		items: []wms.CandidateItem{{Code: "ITM1", NumInBuy: 12, PurPackUn: 6}},
		addResp: &wms.AddItemResponse{
			LineID:    "line1",
			Quantity:  6,
			NumInBuy:  12,
			PurPackUn: 6,
			Warehouse: true,
		},
	}
	flow := newTestFlow(t, backend)
	session := openSession(t, flow, DocGoodsReceipt)

	result, err := flow.Scan(context.Background(), session.ID, "123456")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if result.Outcome.Kind != scanning.OutcomeResolved {
		t.Fatalf("expected resolved outcome, got %s", result.Outcome.Kind)
	}
	if backend.lastAddReq.ItemCode != "ITM1" || backend.lastAddReq.Barcode != "123456" {
		t.Fatalf("unexpected add request %+v", backend.lastAddReq)
	}
	if backend.lastAddReq.Unit != string(scanning.UnitPack) {
		t.Fatalf("expected default Pack unit, got %s", backend.lastAddReq.Unit)
	}
	if backend.lastAddReq.CreatePackage {
		t.Fatalf("expected createPackage false")
	}
	if backend.lastAddReq.PackageID != "" {
		t.Fatalf("expected no package id, got %q", backend.lastAddReq.PackageID)
	}

	if result.Alert == nil || result.Alert.LineID != "line1" {
		t.Fatalf("expected pending alert for line1, got %+v", result.Alert)
	}
	if result.Alert.Severity != scanning.SeverityPositive {
		t.Fatalf("warehouse-only add must be positive, got %s", result.Alert.Severity)
	}

	persisted, err := flow.Get(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if len(persisted.Alerts) != 1 {
		t.Fatalf("expected one persisted alert, got %d", len(persisted.Alerts))
	}
}

func TestScanPackageThenItemCarriesPackage(t *testing.T) {
	backend := &fakeBackend{
		items: []wms.CandidateItem{{Code: "ITM1"}},
		pkg: &wms.PackageDetail{
			ID:      "p42",
			Barcode: "PKG1",
			LocationHistory: []wms.LocationHistoryEntry{
				{SourceOperationType: "GoodsReceipt", SourceOperationID: "DOC1", MovementType: wms.MovementCreated},
			},
		},
		addResp: &wms.AddItemResponse{LineID: "line1", Warehouse: true},
	}
	flow := newTestFlow(t, backend)
	session := openSession(t, flow, DocGoodsReceipt)

	if _, err := flow.SetMode(context.Background(), session.ID, scanning.ModePackage); err != nil {
		t.Fatalf("set mode: %v", err)
	}

	result, err := flow.Scan(context.Background(), session.ID, "PKG1")
	if err != nil {
		t.Fatalf("scan package: %v", err)
	}
	if result.Outcome.Kind != scanning.OutcomePackageLoaded {
		t.Fatalf("expected package loaded, got %s", result.Outcome.Kind)
	}
	if result.Session.Mode != scanning.ModeItem {
		t.Fatalf("mode must revert to item after package load")
	}

	result, err = flow.Scan(context.Background(), session.ID, "123456")
	if err != nil {
		t.Fatalf("scan item: %v", err)
	}
	if result.Outcome.Kind != scanning.OutcomeResolved {
		t.Fatalf("expected resolved outcome, got %s", result.Outcome.Kind)
	}
	if backend.lastAddReq.PackageID != "p42" {
		t.Fatalf("loaded package must flow into add request, got %q", backend.lastAddReq.PackageID)
	}
}

func TestScanPackageWithEmptyHistoryRejected(t *testing.T) {
	backend := &fakeBackend{
		pkg: &wms.PackageDetail{ID: "p1", Barcode: "PKG1"},
	}
	flow := newTestFlow(t, backend)
	session := openSession(t, flow, DocGoodsReceipt)

	if _, err := flow.SetMode(context.Background(), session.ID, scanning.ModePackage); err != nil {
		t.Fatalf("set mode: %v", err)
	}
	result, err := flow.Scan(context.Background(), session.ID, "PKG1")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if result.Outcome.Kind != scanning.OutcomeProvenanceRejected {
		t.Fatalf("expected provenance rejection, got %s", result.Outcome.Kind)
	}
	if result.Session.LoadedPackage != nil {
		t.Fatalf("loaded package must stay nil")
	}
}

func TestScanClosedDocumentDisablesSession(t *testing.T) {
	backend := &fakeBackend{
		items:   []wms.CandidateItem{{Code: "ITM1"}},
		addResp: &wms.AddItemResponse{ClosedDocument: true},
	}
	flow := newTestFlow(t, backend)
	session := openSession(t, flow, DocTransfer)

	result, err := flow.Scan(context.Background(), session.ID, "B1")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !result.ClosedDocument {
		t.Fatalf("expected closed document result")
	}
	if result.Session.Enabled {
		t.Fatalf("session must be disabled after closed document")
	}

	// The transition is terminal across reloads.
	if _, err := flow.Scan(context.Background(), session.ID, "B2"); !errors.Is(err, scanning.ErrSessionClosed) {
		t.Fatalf("expected closed session error, got %v", err)
	}
	if _, err := flow.SetMode(context.Background(), session.ID, scanning.ModeItem); !errors.Is(err, scanning.ErrSessionClosed) {
		t.Fatalf("expected closed session error on set mode, got %v", err)
	}
	if _, err := flow.UpdateQuantity(context.Background(), session.ID, "line1", 3); !errors.Is(err, scanning.ErrSessionClosed) {
		t.Fatalf("expected closed session error on quantity, got %v", err)
	}
}

func TestScanAddFailureLeavesAlertsUntouched(t *testing.T) {
	backend := &fakeBackend{
		items:   []wms.CandidateItem{{Code: "ITM1"}},
		addResp: &wms.AddItemResponse{LineID: "line1", Warehouse: true},
	}
	flow := newTestFlow(t, backend)
	session := openSession(t, flow, DocPicking)

	if _, err := flow.Scan(context.Background(), session.ID, "B1"); err != nil {
		t.Fatalf("first scan: %v", err)
	}

	backend.addErr = &wms.Error{Status: 500, Message: "inventory engine unavailable"}
	if _, err := flow.Scan(context.Background(), session.ID, "B2"); err == nil {
		t.Fatalf("expected add failure to surface")
	}

	persisted, err := flow.Get(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(persisted.Alerts) != 1 || persisted.Alerts[0].LineID != "line1" {
		t.Fatalf("alert list must be untouched after failure, got %+v", persisted.Alerts)
	}
}

func TestUpdateQuantityReclassifies(t *testing.T) {
	backend := &fakeBackend{
		items:   []wms.CandidateItem{{Code: "ITM1"}},
		addResp: &wms.AddItemResponse{LineID: "line1", Quantity: 1, Warehouse: true},
		qtyResp: &wms.UpdateLineQuantityResponse{Fulfillment: true},
	}
	flow := newTestFlow(t, backend)
	session := openSession(t, flow, DocGoodsReceipt)

	if _, err := flow.Scan(context.Background(), session.ID, "B1"); err != nil {
		t.Fatalf("scan: %v", err)
	}

	alert, err := flow.UpdateQuantity(context.Background(), session.ID, "line1", 5)
	if err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if backend.lastQtyReq.Quantity != 5 || backend.lastQtyReq.LineID != "line1" {
		t.Fatalf("unexpected quantity request %+v", backend.lastQtyReq)
	}
	if alert.Quantity != 5 {
		t.Fatalf("expected quantity 5, got %v", alert.Quantity)
	}
	if alert.Severity != scanning.SeverityWarning {
		t.Fatalf("expected reclassified warning severity, got %s", alert.Severity)
	}
}

func TestUpdateQuantityRejectsNonPositive(t *testing.T) {
	flow := newTestFlow(t, &fakeBackend{})
	session := openSession(t, flow, DocGoodsReceipt)

	if _, err := flow.UpdateQuantity(context.Background(), session.ID, "line1", 0); !errors.Is(err, ErrQuantityNotPositive) {
		t.Fatalf("expected quantity validation error, got %v", err)
	}
}

func TestUpdateQuantityFailureLeavesAlertUntouched(t *testing.T) {
	backend := &fakeBackend{
		items:   []wms.CandidateItem{{Code: "ITM1"}},
		addResp: &wms.AddItemResponse{LineID: "line1", Quantity: 2, Warehouse: true},
		qtyErr:  &wms.Error{Status: 500, Message: "backend down"},
	}
	flow := newTestFlow(t, backend)
	session := openSession(t, flow, DocGoodsReceipt)

	if _, err := flow.Scan(context.Background(), session.ID, "B1"); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if _, err := flow.UpdateQuantity(context.Background(), session.ID, "line1", 9); err == nil {
		t.Fatalf("expected quantity failure")
	}

	persisted, _ := flow.Get(context.Background(), session.ID)
	alert, ok := persisted.FindAlert("line1")
	if !ok || alert.Quantity != 2 {
		t.Fatalf("alert must be untouched after failure, got %+v", alert)
	}
}

func TestUpdateCommentMergesSingleField(t *testing.T) {
	backend := &fakeBackend{
		items:   []wms.CandidateItem{{Code: "ITM1"}},
		addResp: &wms.AddItemResponse{LineID: "line1", Warehouse: true},
	}
	flow := newTestFlow(t, backend)
	session := openSession(t, flow, DocGoodsReceipt)

	if _, err := flow.Scan(context.Background(), session.ID, "B1"); err != nil {
		t.Fatalf("scan: %v", err)
	}

	alert, err := flow.UpdateComment(context.Background(), session.ID, "line1", "short delivery")
	if err != nil {
		t.Fatalf("update comment: %v", err)
	}
	if alert.Comment != "short delivery" {
		t.Fatalf("expected comment stored, got %q", alert.Comment)
	}
	if backend.lastLineReq.Comment == nil || *backend.lastLineReq.Comment != "short delivery" {
		t.Fatalf("comment not sent to backend: %+v", backend.lastLineReq)
	}
	if backend.lastLineReq.CloseReason != nil {
		t.Fatalf("comment update must not carry close reason")
	}
	if alert.Severity != scanning.SeverityPositive {
		t.Fatalf("comment update must keep classification, got %s", alert.Severity)
	}
}

func TestCancelLineWithoutReasonRegistryUsesBackendOnly(t *testing.T) {
	backend := &fakeBackend{
		items:   []wms.CandidateItem{{Code: "ITM1"}},
		addResp: &wms.AddItemResponse{LineID: "line1", Warehouse: true},
	}
	flow := newTestFlow(t, backend)
	session := openSession(t, flow, DocGoodsReceipt)

	if _, err := flow.Scan(context.Background(), session.ID, "B1"); err != nil {
		t.Fatalf("scan: %v", err)
	}

	alert, err := flow.CancelLine(context.Background(), session.ID, "line1", 3)
	if err != nil {
		t.Fatalf("cancel line: %v", err)
	}
	if !alert.Canceled {
		t.Fatalf("expected canceled alert")
	}
	if backend.lastLineReq.CloseReason == nil || *backend.lastLineReq.CloseReason != 3 {
		t.Fatalf("close reason not sent: %+v", backend.lastLineReq)
	}
}

func TestOpenRejectsUnknownDocumentType(t *testing.T) {
	flow := newTestFlow(t, &fakeBackend{})
	_, err := flow.Open(context.Background(), 1, OpenSessionInput{DocumentType: "Inventory", DocumentID: "X"})
	if !errors.Is(err, ErrInvalidDocumentType) {
		t.Fatalf("expected invalid document type, got %v", err)
	}
}

func TestPackageModeDisabledForTransfer(t *testing.T) {
	flow := newTestFlow(t, &fakeBackend{})
	session := openSession(t, flow, DocTransfer)

	if _, err := flow.SetMode(context.Background(), session.ID, scanning.ModePackage); !errors.Is(err, scanning.ErrPackageModeDisabled) {
		t.Fatalf("expected package mode rejection for transfer, got %v", err)
	}
}
