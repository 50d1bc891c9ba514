// API service for making raw HTTP requests to the ytmusicapi proxy
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// APIService provides methods for making raw HTTP requests to the proxy.
type APIService struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIService creates a new API service instance for the proxy.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = defaultYTBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (a *APIService) do(ctx context.Context, method, path string, body io.Reader) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.do(ctx, http.MethodPost, path, bytes.NewReader(data))
}

// UploadJSON uploads JSON data to the specified path.
func (a *APIService) UploadJSON(ctx context.Context, path string, jsonData []byte) (*APIResponse, error) {
	if !json.Valid(jsonData) {
		return nil, fmt.Errorf("upload to %s: body is not valid JSON", path)
	}
	return a.Post(ctx, path, jsonData)
}

// Health checks that the proxy is reachable.
func (a *APIService) Health(ctx context.Context) error {
	resp, err := a.Get(ctx, "/health")
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &StatusError{Service: "proxy", Status: resp.StatusCode}
	}
	return nil
}

// SetupBrowser sends raw request headers to the proxy, which writes browser.json for ytmusicapi.
//
// Calls POST /api/setup/browser and returns the path the proxy wrote.
func (a *APIService) SetupBrowser(ctx context.Context, headersRaw, filepath string) (string, error) {
	body, err := json.Marshal(map[string]string{"headers_raw": headersRaw, "filepath": filepath})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := a.Post(ctx, "/api/setup/browser", body)
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", &StatusError{Service: "proxy", Status: resp.StatusCode, Detail: strings.TrimSpace(string(resp.Body))}
	}

	var out struct {
		Filepath string `json:"filepath"`
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil || out.Filepath == "" {
		return filepath, nil
	}
	return out.Filepath, nil
}
