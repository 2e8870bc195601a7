// Package client talks to the collaborator backend that owns the terminal
// registry, the lokasi/area/item catalogs, geofence verification and
// inspection persistence.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"p9e.in/bib/models"
)

// ErrSubmitUnavailable is returned when both single-item submission endpoints
// answer with a non-success status.
var ErrSubmitUnavailable = errors.New("submission endpoint unavailable")

// APIError is a non-success backend response. Detail carries the backend's
// "detail" or "message" body field, and stays empty when the body held
// neither; Error falls back to the HTTP status line then.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Client is an HTTP client for the backend API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the given base URL. Every call is bounded by the
// given timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Terminals lists the terminal registry.
func (c *Client) Terminals(ctx context.Context) ([]models.Terminal, error) {
	var out []models.Terminal
	if err := c.getJSON(ctx, "/api/terminals", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Terminal fetches one terminal with its form schema.
func (c *Client) Terminal(ctx context.Context, id int64) (models.TerminalDetail, error) {
	var out models.TerminalDetail
	err := c.getJSON(ctx, fmt.Sprintf("/api/terminals/%d", id), &out)
	return out, err
}

// TerminalOptions fetches backend-sourced option lists for the named fields.
func (c *Client) TerminalOptions(ctx context.Context, id int64, fields []string) (map[string][]models.FieldOption, error) {
	params := url.Values{}
	for _, f := range fields {
		params.Add("field", f)
	}
	var out map[string][]models.FieldOption
	path := fmt.Sprintf("/api/terminals/%d/options?%s", id, params.Encode())
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string][]models.FieldOption{}
	}
	return out, nil
}

// LokasiList fetches the lokasi master list.
func (c *Client) LokasiList(ctx context.Context) ([]models.Lokasi, error) {
	var out []models.Lokasi
	if err := c.getJSON(ctx, "/api/lokasi", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Areas lists the areas of a lokasi.
func (c *Client) Areas(ctx context.Context, lokasiID int64) ([]models.Area, error) {
	var out []models.Area
	if err := c.getJSON(ctx, fmt.Sprintf("/api/lokasi/%d/areas", lokasiID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LokasiItems lists every item under a lokasi, for schemas without an Area field.
func (c *Client) LokasiItems(ctx context.Context, lokasiID int64) ([]models.Item, error) {
	var out []models.Item
	if err := c.getJSON(ctx, fmt.Sprintf("/api/lokasi/%d/items", lokasiID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AreaItems lists the items of an area.
func (c *Client) AreaItems(ctx context.Context, areaID int64) ([]models.Item, error) {
	var out []models.Item
	if err := c.getJSON(ctx, fmt.Sprintf("/api/area/%d/items", areaID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// VerifyLocation asks the backend whether the point is inside the geofence.
func (c *Client) VerifyLocation(ctx context.Context, req models.VerifyRequest) (models.VerifyResult, error) {
	var out models.VerifyResult
	err := c.postJSON(ctx, "/api/verify-location", req, &out)
	return out, err
}

// singleSubmitPaths is the ordered attempt list for single-item submission.
// The second path exists for older backend deployments; this is endpoint
// compatibility, not a retry policy.
var singleSubmitPaths = []string{"/api/inspections", "/api/inspections/submit"}

// SubmitInspection posts a single-item inspection, falling through the attempt
// list on non-success statuses. A transport failure aborts immediately; only
// when every endpoint answers non-success is ErrSubmitUnavailable returned.
// The created row is decoded best-effort; a success with an undecodable body
// still counts as accepted.
func (c *Client) SubmitInspection(ctx context.Context, p models.InspectionPayload) (*models.InspectionResult, error) {
	for _, path := range singleSubmitPaths {
		status, body, err := c.post(ctx, path, p)
		if err != nil {
			return nil, err
		}
		if status >= 200 && status < 300 {
			var created models.InspectionResult
			if jsonErr := json.Unmarshal(body, &created); jsonErr == nil {
				return &created, nil
			}
			return nil, nil
		}
	}
	return nil, ErrSubmitUnavailable
}

// SubmitBulk posts a checklist batch. No fallback path exists for bulk mode.
func (c *Client) SubmitBulk(ctx context.Context, p models.BulkInspectionPayload) (models.BulkResult, error) {
	var out models.BulkResult
	err := c.postJSON(ctx, "/api/inspections/bulk-normalized", p, &out)
	return out, err
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// post sends a JSON body and reports the status code and response body
// without treating non-success as an error. Used by the ordered submission
// attempt list.
func (c *Client) post(ctx context.Context, path string, body any) (int, []byte, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return 0, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	return resp.StatusCode, respBody, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	return nil
}

// apiError extracts the backend's error detail. Bodies are expected as JSON
// with an optional detail or message field; anything else leaves Detail empty
// so callers can tell a real backend message from a bare status.
func apiError(resp *http.Response) error {
	var envelope struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	detail := ""
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
		if envelope.Detail != "" {
			detail = envelope.Detail
		} else if envelope.Message != "" {
			detail = envelope.Message
		}
	}
	return &APIError{StatusCode: resp.StatusCode, Detail: detail}
}
