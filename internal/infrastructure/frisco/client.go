package frisco

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ewelina-dziedzic/grocery-shopping/internal/domain"
	"golang.org/x/time/rate"
)

// searchPageSize is how many results one store search returns; the
// assistant sees every available one of them.
const searchPageSize = 50

// Client handles communication with the Frisco e-grocery API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	feedURL     string
	username    string
	password    string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new store client. baseURL is the commerce API
// root; feedURL is the public bulk feed endpoint.
func NewClient(baseURL, feedURL, username, password string) *Client {
	// The store throttles aggressively; stay well under its limits.
	limiter := rate.NewLimiter(rate.Limit(2), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     baseURL,
		feedURL:     feedURL,
		username:    username,
		password:    password,
		rateLimiter: limiter,
	}
}

// SetDebug enables verbose request logging.
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Session is an authenticated store session bound to one user account.
type Session struct {
	client        *Client
	userID        string
	authorization string
}

// Login exchanges the configured credentials for an access token.
func (c *Client) Login(ctx context.Context) (*Session, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", c.username)
	form.Set("password", c.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/connect/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// The token endpoint rejects requests without the storefront referer.
	req.Header.Set("referer", "https://www.frisco.pl/")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var token struct {
		UserID      string `json:"user_id"`
		TokenType   string `json:"token_type"`
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	log.Printf("[FRISCO] logged in as user %s", token.UserID)
	return &Session{
		client:        c,
		userID:        token.UserID,
		authorization: fmt.Sprintf("%s %s", token.TokenType, token.AccessToken),
	}, nil
}

// Search queries the store catalog for productName. Each result carries
// the availability flag and the nested product/price structure.
func (s *Session) Search(ctx context.Context, productName string) ([]domain.SearchResult, error) {
	params := url.Values{}
	params.Set("purpose", "Listing")
	params.Set("pageIndex", "1")
	params.Set("search", productName)
	params.Set("includeFacets", "true")
	params.Set("deliveryMethod", "Van")
	params.Set("pageSize", fmt.Sprintf("%d", searchPageSize))
	params.Set("language", "pl")
	params.Set("disableAutocorrect", "false")

	reqURL := fmt.Sprintf("%s/api/v1/users/%s/offer/products/query?%s", s.client.baseURL, s.userID, params.Encode())
	body, err := s.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var response struct {
		Products []domain.SearchResult `json:"products"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	s.client.debugLog("search %q: %d results", productName, len(response.Products))
	return response.Products, nil
}

// ClearCart removes every product from the cart.
func (s *Session) ClearCart(ctx context.Context) error {
	reqURL := fmt.Sprintf("%s/api/v1/users/%s/cart/products", s.client.baseURL, s.userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	s.authorize(req)
	_, err = s.client.do(req)
	return err
}

// AddToCart puts quantity units of productID into the cart.
func (s *Session) AddToCart(ctx context.Context, productID string, quantity int) error {
	payload := map[string]any{
		"products": []map[string]any{
			{"productId": productID, "quantity": quantity},
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to serialize cart payload: %w", err)
	}

	reqURL := fmt.Sprintf("%s/api/v1/users/%s/cart", s.client.baseURL, s.userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, reqURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorize(req)
	_, err = s.client.do(req)
	return err
}

// DownloadFeed fetches the store-wide public product feed and maps it by
// product id. The feed is large; callers fetch it once per run.
func (c *Client) DownloadFeed(ctx context.Context) (domain.ProductFeed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var response struct {
		Products []struct {
			ProductID   string `json:"productId"`
			ContentData struct {
				Components string `json:"components"`
			} `json:"contentData"`
		} `json:"products"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode feed: %w", err)
	}

	feed := make(domain.ProductFeed, len(response.Products))
	for _, product := range response.Products {
		feed[product.ProductID] = domain.ProductContent{Components: product.ContentData.Components}
	}

	log.Printf("[FRISCO] feed downloaded: %d products", len(feed))
	return feed, nil
}

// get executes an authorized GET and returns the response body.
func (s *Session) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	s.authorize(req)
	return s.client.do(req)
}

// post executes an authorized JSON POST and returns the response body.
func (s *Session) post(ctx context.Context, reqURL string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorize(req)
	return s.client.do(req)
}

func (s *Session) authorize(req *http.Request) {
	req.Header.Set("Authorization", s.authorization)
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
}

// do waits for the rate limiter, executes the request and returns the
// body of a 2xx response; any other status is a store API failure.
func (c *Client) do(req *http.Request) ([]byte, error) {
	if err := c.rateLimiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreAPIFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrStoreAPIFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s %s: status %d, body: %s",
			domain.ErrStoreAPIFailure, req.Method, req.URL.Path, resp.StatusCode, body)
	}
	return body, nil
}

func (c *Client) debugLog(format string, args ...any) {
	if c.debug {
		log.Printf("[FRISCO] "+format, args...)
	}
}
