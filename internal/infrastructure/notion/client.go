// Package notion talks to the Notion API, which backs both the
// meal-planning database and the shopping audit log.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ewelina-dziedzic/grocery-shopping/internal/domain"
)

const apiVersion = "2022-06-28"

// Client is a thin authenticated wrapper over the Notion API shared by
// the meal planner and the audit log.
type Client struct {
	httpClient *http.Client
	baseURL    string
	secret     string
}

// NewClient creates a new Notion API client.
func NewClient(baseURL, secret string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
		secret:  secret,
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secret)
	req.Header.Set("Notion-Version", apiVersion)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotionAPIFailure, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrNotionAPIFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s %s: status %d, body: %s",
			domain.ErrNotionAPIFailure, method, path, resp.StatusCode, data)
	}
	return data, nil
}
