// Package client talks to a running worldstream server over its HTTP API.
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
	"time"

	"github.com/VoidMesh/worldstream/internal/api"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Client is a thin JSON client for the /api/v1 routes.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the server at baseURL (for example http://localhost:8080).
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *Client) Viewer(ctx context.Context) (api.ViewerResponse, error) {
	var out api.ViewerResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/viewer", nil, &out)
	return out, err
}

// MoveViewer places the viewer at the given chunk. A locked region comes
// back as an *APIError with status 423.
func (c *Client) MoveViewer(ctx context.Context, chunkX, chunkY int) (api.MoveViewerResponse, error) {
	var out api.MoveViewerResponse
	err := c.do(ctx, http.MethodPut, "/api/v1/viewer", api.MoveViewerRequest{ChunkX: &chunkX, ChunkY: &chunkY}, &out)
	return out, err
}

func (c *Client) Chunks(ctx context.Context) (api.ChunkListResponse, error) {
	var out api.ChunkListResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/chunks", nil, &out)
	return out, err
}

func (c *Client) Chunk(ctx context.Context, chunkX, chunkY int) (api.ChunkDetail, error) {
	var out api.ChunkDetail
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/chunks/%d/%d", chunkX, chunkY), nil, &out)
	return out, err
}

func (c *Client) Stats(ctx context.Context) (api.StatsResponse, error) {
	var out api.StatsResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/stats", nil, &out)
	return out, err
}

func (c *Client) Regions(ctx context.Context) (api.RegionListResponse, error) {
	var out api.RegionListResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/regions", nil, &out)
	return out, err
}

func (c *Client) UnlockRegion(ctx context.Context, region string) (api.RegionResponse, error) {
	var out api.RegionResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/regions/"+url.PathEscape(region)+"/unlock", nil, &out)
	return out, err
}

func (c *Client) LockRegion(ctx context.Context, region string) (api.RegionResponse, error) {
	var out api.RegionResponse
	err := c.do(ctx, http.MethodDelete, "/api/v1/regions/"+url.PathEscape(region)+"/unlock", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Message == "" {
			return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return &APIError{Status: resp.StatusCode, Message: apiErr.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
