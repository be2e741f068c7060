package todoist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ewelina-dziedzic/grocery-shopping/internal/domain"
)

// localPrefix marks tasks bought elsewhere (farmer's market, bakery);
// they never go to the online store.
const localPrefix = "local"

// quantityPattern matches the "<N>x <name>" task naming convention.
var quantityPattern = regexp.MustCompile(`^([0-9]+)x (.*)$`)

// Client handles communication with the Todoist REST API for one
// project, which acts as the ad-hoc grocery list.
type Client struct {
	httpClient *http.Client
	baseURL    string
	secret     string
	projectID  string
}

// NewClient creates a new task list client.
func NewClient(baseURL, secret, projectID string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:   baseURL,
		secret:    secret,
		projectID: projectID,
	}
}

type task struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Get returns the project's open tasks as grocery items. Tasks named
// "<N>x <name>" carry a quantity; anything else defaults to one. Tasks
// with the local prefix are excluded entirely.
func (c *Client) Get(ctx context.Context) ([]domain.GroceryItem, error) {
	reqURL := fmt.Sprintf("%s/tasks?project_id=%s", c.baseURL, url.QueryEscape(c.projectID))
	body, err := c.do(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	var tasks []task
	if err := json.Unmarshal(body, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}

	var items []domain.GroceryItem
	for _, t := range tasks {
		item, ok := parseTask(t)
		if !ok {
			continue
		}
		items = append(items, item)
	}

	log.Printf("[TODOIST] %d grocery items on the list", len(items))
	return items, nil
}

// parseTask turns one task into a grocery item; ok is false for tasks
// not meant for store fulfillment.
func parseTask(t task) (domain.GroceryItem, bool) {
	if strings.HasPrefix(t.Content, localPrefix) {
		return domain.GroceryItem{}, false
	}

	if match := quantityPattern.FindStringSubmatch(t.Content); match != nil {
		quantity, err := strconv.Atoi(match[1])
		if err == nil {
			return domain.GroceryItem{Name: match[2], Quantity: quantity, TaskID: t.ID}, true
		}
	}
	return domain.GroceryItem{Name: t.Content, Quantity: 1, TaskID: t.ID}, true
}

// Add creates a task for one meal-plan ingredient. Single-unit items
// keep their plain name and carry the store link as the description.
func (c *Client) Add(ctx context.Context, item domain.ShoppingListItem, dueDate string) error {
	payload := map[string]any{
		"content":    fmt.Sprintf("%dx %s", item.Quantity, item.Name),
		"due_string": dueDate,
	}
	if item.Quantity == 1 {
		payload["content"] = item.Name
		payload["description"] = item.StoreLink
	}

	reqURL := fmt.Sprintf("%s/tasks?project_id=%s", c.baseURL, url.QueryEscape(c.projectID))
	_, err := c.do(ctx, http.MethodPost, reqURL, payload)
	return err
}

// Complete closes the tasks behind the bought grocery items.
func (c *Client) Complete(ctx context.Context, items []domain.GroceryItem) error {
	for _, item := range items {
		reqURL := fmt.Sprintf("%s/tasks/%s/close", c.baseURL, item.TaskID)
		if _, err := c.do(ctx, http.MethodPost, reqURL, nil); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, reqURL string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secret)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTaskAPIFailure, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrTaskAPIFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s %s: status %d, body: %s",
			domain.ErrTaskAPIFailure, method, reqURL, resp.StatusCode, data)
	}
	return data, nil
}
