package wms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", 5*time.Second)
}

func TestResolveItemBarcode(t *testing.T) {
	var gotPath, gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]CandidateItem{
			{Code: "ITM1", NumInBuy: 12, BuyUnitMsr: "Box"},
		})
	})

	items, err := client.ResolveItemBarcode(context.Background(), "12 34", false)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(items) != 1 || items[0].Code != "ITM1" {
		t.Fatalf("unexpected items %+v", items)
	}
	if gotPath != "/api/items/resolve?barcode=12+34&codeMode=false" {
		t.Fatalf("unexpected request path %q", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("missing bearer auth, got %q", gotAuth)
	}
}

func TestResolvePackageNotFoundIsNilNil(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such package", http.StatusNotFound)
	})

	detail, err := client.ResolvePackageByBarcode(context.Background(), ResolvePackageRequest{Barcode: "PKG1"})
	if err != nil {
		t.Fatalf("expected nil error for backend 404, got %v", err)
	}
	if detail != nil {
		t.Fatalf("expected nil detail, got %+v", detail)
	}
}

func TestResolvePackageSendsHistoryFlag(t *testing.T) {
	var got ResolvePackageRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(PackageDetail{ID: "p1", Barcode: "PKG1"})
	})

	_, err := client.ResolvePackageByBarcode(context.Background(), ResolvePackageRequest{
		Barcode:    "PKG1",
		History:    true,
		ObjectType: "GoodsReceipt",
		ObjectID:   "DOC1",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !got.History || got.ObjectID != "DOC1" {
		t.Fatalf("request body not forwarded: %+v", got)
	}
}

func TestErrorMessageFromJSONEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": MsgPackageAlreadyCounted},
		})
	})

	_, err := client.AddItemToDocument(context.Background(), AddItemRequest{DocumentID: "DOC1", ItemCode: "ITM1"})
	var wmsErr *Error
	if !errors.As(err, &wmsErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if wmsErr.Status != http.StatusConflict || wmsErr.Message != MsgPackageAlreadyCounted {
		t.Fatalf("unexpected error %+v", wmsErr)
	}
}

func TestErrorMessageFromPlainText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "document locked by another user", http.StatusInternalServerError)
	})

	_, err := client.UpdateLine(context.Background(), UpdateLineRequest{DocumentID: "DOC1", LineID: "line1"})
	var wmsErr *Error
	if !errors.As(err, &wmsErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if wmsErr.Message != "document locked by another user" {
		t.Fatalf("unexpected message %q", wmsErr.Message)
	}
}

func TestUpdateLineQuantityEndpoint(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(UpdateLineQuantityResponse{Warehouse: true})
	})

	resp, err := client.UpdateLineQuantity(context.Background(), UpdateLineQuantityRequest{
		DocumentID: "DOC1",
		LineID:     "line9",
		Quantity:   4,
	})
	if err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if gotPath != "/api/documents/DOC1/lines/line9/quantity" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if !resp.Warehouse {
		t.Fatalf("response not decoded: %+v", resp)
	}
}

func TestFetchLicenseStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(LicenseStatus{Licensed: true, MaxDevices: 10})
	})

	status, err := client.FetchLicenseStatus(context.Background())
	if err != nil {
		t.Fatalf("fetch license: %v", err)
	}
	if !status.Licensed || status.MaxDevices != 10 {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(&Error{Status: http.StatusNotFound}) {
		t.Fatal("404 must be not found")
	}
	if IsNotFound(&Error{Status: http.StatusConflict}) {
		t.Fatal("409 must not be not found")
	}
	if IsNotFound(errors.New("other")) {
		t.Fatal("plain error must not be not found")
	}
}
