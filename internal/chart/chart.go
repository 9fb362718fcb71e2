// Package chart talks to the external reporting service that renders
// aggregated report data into a PNG.
package chart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dimasprakoso/catatduit/internal/report"
)

const renderPath = "/charts/generate"

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Render posts the aggregate to the reporting service and returns PNG bytes.
func (c *Client) Render(ctx context.Context, agg report.Aggregated) ([]byte, error) {
	body, err := json.Marshal(agg)
	if err != nil {
		return nil, fmt.Errorf("encode chart payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+renderPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chart request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call reporting service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("reporting service returned %d: %s", resp.StatusCode, snippet)
	}

	png, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read chart response: %w", err)
	}
	if len(png) == 0 {
		return nil, fmt.Errorf("reporting service returned empty body")
	}
	return png, nil
}
