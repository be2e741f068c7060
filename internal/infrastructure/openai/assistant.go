package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/ewelina-dziedzic/grocery-shopping/internal/domain"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultPollTimeout  = 2 * time.Minute
)

// terminalStatuses are run states the poll loop stops on; anything else
// means the run is still working.
var terminalStatuses = map[string]bool{
	"completed":       true,
	"failed":          true,
	"cancelled":       true,
	"expired":         true,
	"incomplete":      true,
	"requires_action": true,
}

// Config holds the assistant client configuration. The assistant itself
// (system prompt, response format) is configured provider-side and
// referenced by AssistantID.
type Config struct {
	APIKey       string
	AssistantID  string
	BaseURL      string
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// Client talks to the OpenAI Assistants API. One conversation is one
// thread; Run creates a run on it and polls until a terminal state.
type Client struct {
	httpClient   *http.Client
	apiKey       string
	assistantID  string
	baseURL      string
	pollInterval time.Duration
	pollTimeout  time.Duration

	mu      sync.Mutex
	lastRun map[string]string // thread id -> most recent run id
}

// NewClient creates a new assistant client.
func NewClient(config Config) *Client {
	pollInterval := config.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	pollTimeout := config.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		apiKey:       config.APIKey,
		assistantID:  config.AssistantID,
		baseURL:      config.BaseURL,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
		lastRun:      make(map[string]string),
	}
}

// CreateConversation starts a thread seeded with the user prompt.
func (c *Client) CreateConversation(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	var thread struct {
		ID string `json:"id"`
	}
	if err := c.call(ctx, http.MethodPost, "/v1/threads", payload, &thread); err != nil {
		return "", err
	}
	return thread.ID, nil
}

// runState is the provider's view of a run.
type runState struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	LastError *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"last_error"`
}

// Run starts the configured assistant on the conversation and polls
// until the run reaches a terminal state or the poll deadline passes.
func (c *Client) Run(ctx context.Context, conversationID string) (domain.RunOutcome, error) {
	payload := map[string]string{"assistant_id": c.assistantID}

	var state runState
	path := fmt.Sprintf("/v1/threads/%s/runs", conversationID)
	if err := c.call(ctx, http.MethodPost, path, payload, &state); err != nil {
		return domain.RunOutcome{}, err
	}

	c.mu.Lock()
	c.lastRun[conversationID] = state.ID
	c.mu.Unlock()

	deadline := time.Now().Add(c.pollTimeout)
	for !terminalStatuses[state.Status] {
		if time.Now().After(deadline) {
			return domain.RunOutcome{}, fmt.Errorf("%w: run %s still %s after %s",
				domain.ErrAssistantTimeout, state.ID, state.Status, c.pollTimeout)
		}

		select {
		case <-ctx.Done():
			return domain.RunOutcome{}, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		path := fmt.Sprintf("/v1/threads/%s/runs/%s", conversationID, state.ID)
		if err := c.call(ctx, http.MethodGet, path, nil, &state); err != nil {
			return domain.RunOutcome{}, err
		}
	}

	outcome := domain.RunOutcome{Status: state.Status}
	if state.LastError != nil {
		outcome.LastError = fmt.Sprintf("%s: %s", state.LastError.Code, state.LastError.Message)
	}
	return outcome, nil
}

// ListMessages returns the response messages of the conversation's most
// recent run, newest first, with their text content blocks in order.
func (c *Client) ListMessages(ctx context.Context, conversationID string) ([]domain.AssistantMessage, error) {
	c.mu.Lock()
	runID := c.lastRun[conversationID]
	c.mu.Unlock()

	path := fmt.Sprintf("/v1/threads/%s/messages", conversationID)
	if runID != "" {
		path += "?run_id=" + runID
	}

	var response struct {
		Data []struct {
			Content []struct {
				Type string `json:"type"`
				Text struct {
					Value string `json:"value"`
				} `json:"text"`
			} `json:"content"`
		} `json:"data"`
	}
	if err := c.call(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, err
	}

	messages := make([]domain.AssistantMessage, 0, len(response.Data))
	for _, message := range response.Data {
		var content []string
		for _, block := range message.Content {
			if block.Type == "text" {
				content = append(content, block.Text.Value)
			}
		}
		messages = append(messages, domain.AssistantMessage{Content: content})
	}
	return messages, nil
}

// call executes one API request and decodes the JSON response into out.
func (c *Client) call(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to serialize payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("OpenAI-Beta", "assistants=v2")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("assistant API request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("assistant API request failed: reading body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("[OPENAI] %s %s -> %d: %s", method, path, resp.StatusCode, data)
		return fmt.Errorf("assistant API request failed: %s %s: status %d", method, path, resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode assistant response: %w", err)
	}
	return nil
}
