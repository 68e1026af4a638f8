package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/alfredjeanlab/gantry/internal/model"
)

// HTTPClient implements GantryClient using the gantry HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Run lifecycle ---

func (c *HTTPClient) CreateRun(ctx context.Context, req *CreateRunRequest) (*model.Run, error) {
	var run model.Run
	if err := c.doJSON(ctx, http.MethodPost, "/v1/runs", req, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (c *HTTPClient) GetRun(ctx context.Context, id string) (*model.Run, error) {
	var run model.Run
	if err := c.doJSON(ctx, http.MethodGet, "/v1/runs/"+url.PathEscape(id), nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (c *HTTPClient) ListRuns(ctx context.Context, req *ListRunsRequest) (*ListRunsResponse, error) {
	q := url.Values{}
	if req.Workflow != "" {
		q.Set("workflow", req.Workflow)
	}
	if len(req.Trigger) > 0 {
		q.Set("trigger", strings.Join(req.Trigger, ","))
	}
	if len(req.Conclusion) > 0 {
		q.Set("conclusion", strings.Join(req.Conclusion, ","))
	}
	if req.Ref != "" {
		q.Set("ref", req.Ref)
	}
	if req.Sort != "" {
		q.Set("sort", req.Sort)
	}
	if req.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", req.Limit))
	}
	if req.Offset > 0 {
		q.Set("offset", fmt.Sprintf("%d", req.Offset))
	}

	path := "/v1/runs"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListRunsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) DeleteRun(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/runs/"+url.PathEscape(id), nil, nil)
}

// --- Outcomes ---

func (c *HTTPClient) ReportOutcome(ctx context.Context, runID string, outcome *model.JobOutcome) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/runs/"+url.PathEscape(runID)+"/outcomes", outcome, nil)
}

func (c *HTTPClient) GetOutcomes(ctx context.Context, runID string) ([]*model.JobOutcome, error) {
	var resp struct {
		Outcomes []*model.JobOutcome `json:"outcomes"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/runs/"+url.PathEscape(runID)+"/outcomes", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Outcomes, nil
}

// --- Conclusion ---

func (c *HTTPClient) ConcludeRun(ctx context.Context, runID string, req *ConcludeRunRequest) (*ConcludeRunResponse, error) {
	if req == nil {
		req = &ConcludeRunRequest{}
	}
	var resp ConcludeRunResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/runs/"+url.PathEscape(runID)+"/conclude", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Events ---

func (c *HTTPClient) GetEvents(ctx context.Context, runID string) ([]*model.RunEvent, error) {
	var resp struct {
		Events []*model.RunEvent `json:"events"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/runs/"+url.PathEscape(runID)+"/events", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for DELETE/204 responses).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content -- success with no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

var _ GantryClient = (*HTTPClient)(nil)
