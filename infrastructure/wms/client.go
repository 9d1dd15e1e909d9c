package wms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// MsgPackageAlreadyCounted is the backend error string that gets a dedicated
// user-facing translation in the scan flow.
const MsgPackageAlreadyCounted = "Package is already counted in another bin location"

// Error is a non-2xx backend response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("wms backend returned status %d", e.Status)
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var wmsErr *Error
	return errors.As(err, &wmsErr) && wmsErr.Status == http.StatusNotFound
}

// Client talks JSON over HTTP to the warehouse backend that owns items,
// packages, documents and licensing.
type Client struct {
	BaseURL    string
	APIKey     string
	httpClient *http.Client
}

// NewClient creates a backend client with a shared request timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ResolveItemBarcode resolves scanned text against the item master. In code
// mode the text is matched against item codes instead of barcodes.
func (c *Client) ResolveItemBarcode(ctx context.Context, barcode string, codeMode bool) ([]CandidateItem, error) {
	endpoint := fmt.Sprintf("%s/api/items/resolve?barcode=%s&codeMode=%t",
		c.BaseURL, url.QueryEscape(barcode), codeMode)

	var items []CandidateItem
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ResolvePackageByBarcode looks up a package, optionally with its location
// history. A backend 404 is returned as (nil, nil): not found is an expected
// outcome, not a transport failure.
func (c *Client) ResolvePackageByBarcode(ctx context.Context, req ResolvePackageRequest) (*PackageDetail, error) {
	endpoint := c.BaseURL + "/api/packages/resolve"

	var detail PackageDetail
	if err := c.do(ctx, http.MethodPost, endpoint, req, &detail); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &detail, nil
}

// AddItemToDocument creates a document line for a resolved item.
func (c *Client) AddItemToDocument(ctx context.Context, req AddItemRequest) (*AddItemResponse, error) {
	endpoint := fmt.Sprintf("%s/api/documents/%s/lines", c.BaseURL, url.PathEscape(req.DocumentID))

	var resp AddItemResponse
	if err := c.do(ctx, http.MethodPost, endpoint, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateLine applies comment or cancellation edits to a line.
func (c *Client) UpdateLine(ctx context.Context, req UpdateLineRequest) (*UpdateLineResponse, error) {
	endpoint := fmt.Sprintf("%s/api/documents/%s/lines/%s",
		c.BaseURL, url.PathEscape(req.DocumentID), url.PathEscape(req.LineID))

	var resp UpdateLineResponse
	if err := c.do(ctx, http.MethodPatch, endpoint, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateLineQuantity changes a line quantity through the dedicated endpoint.
func (c *Client) UpdateLineQuantity(ctx context.Context, req UpdateLineQuantityRequest) (*UpdateLineQuantityResponse, error) {
	endpoint := fmt.Sprintf("%s/api/documents/%s/lines/%s/quantity",
		c.BaseURL, url.PathEscape(req.DocumentID), url.PathEscape(req.LineID))

	var resp UpdateLineQuantityResponse
	if err := c.do(ctx, http.MethodPost, endpoint, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchLicenseStatus retrieves the backend licensing decision.
func (c *Client) FetchLicenseStatus(ctx context.Context) (*LicenseStatus, error) {
	var status LicenseStatus
	if err := c.do(ctx, http.MethodGet, c.BaseURL+"/api/license", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("wms request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode wms response: %w", err)
	}
	return nil
}

// readErrorMessage extracts the backend error string, accepting either a JSON
// error envelope or a plain text body.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Error.Message != "" {
			return envelope.Error.Message
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	return string(bytes.TrimSpace(raw))
}
