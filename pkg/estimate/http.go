package estimate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	EstimatePath = "/api/estimate-territory"
	HealthPath   = "/health"
)

// Health is the status document served by the estimation service.
type Health struct {
	Status        string `json:"status"`
	KatagoRunning bool   `json:"katagoRunning"`
}

// HTTPClient talks to an estimation service over HTTP.
type HTTPClient struct {
	base   string
	client *http.Client
}

// NewHTTPClient returns a client for the service at baseURL. A nil client
// uses one with a five second timeout.
func NewHTTPClient(baseURL string, client *http.Client) *HTTPClient {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPClient{base: strings.TrimRight(baseURL, "/"), client: client}
}

// Estimate posts req. Any transport or decoding failure yields the zero
// estimate together with the error.
func (c *HTTPClient) Estimate(ctx context.Context, req Request) (Territories, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Territories{}, fmt.Errorf("encode estimate request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+EstimatePath, bytes.NewReader(body))
	if err != nil {
		return Territories{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Territories{}, fmt.Errorf("estimate request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Territories{}, fmt.Errorf("estimate request: unexpected status %s", resp.Status)
	}
	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Territories{}, fmt.Errorf("decode estimate response: %w", err)
	}
	t := out.Territories
	if t.Black < 0 || t.White < 0 || t.Dame < 0 {
		return Territories{}, fmt.Errorf("decode estimate response: negative territory %+v", t)
	}
	return t, nil
}

// Health reads the service status.
func (c *HTTPClient) Health(ctx context.Context) (Health, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+HealthPath, nil)
	if err != nil {
		return Health{}, err
	}
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Health{}, fmt.Errorf("health request: %w", err)
	}
	defer resp.Body.Close()
	var h Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return Health{}, fmt.Errorf("decode health: %w", err)
	}
	return h, nil
}
