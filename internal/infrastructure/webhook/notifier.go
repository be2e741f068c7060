// Package webhook posts run status updates to a configured webhook,
// which fans them out to the household chat.
package webhook

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Notifier posts plain-text status messages to one webhook URL.
type Notifier struct {
	httpClient *http.Client
	url        string
}

// NewNotifier creates a notifier for the given webhook URL.
func NewNotifier(url string) *Notifier {
	return &Notifier{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		url: url,
	}
}

// UpdateStatus delivers one status message.
func (n *Notifier) UpdateStatus(ctx context.Context, message string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status webhook returned %d, body: %s", resp.StatusCode, body)
	}
	return nil
}
