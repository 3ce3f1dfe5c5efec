// Package apiclient is a Go client for the catalog HTTP API. It keeps the
// session token in a TokenStore and forgets it as soon as the server rejects it.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Skotchmaster/catalog/internal/models"
)

var (
	ErrSessionExpired = errors.New("session expired, log in again")
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrAdminOnly      = errors.New("admin access required")
	ErrInvalidPrice   = errors.New("price must be a number")
)

// APIError is a non-2xx answer other than a rejected session.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
	now        func() time.Time
}

func NewClient(baseURL string, tokens TokenStore) *Client {
	if tokens == nil {
		tokens = NewMemoryTokenStore()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		tokens: tokens,
		now:    time.Now,
	}
}

func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	body := map[string]string{"username": username, "password": password}

	var sess Session
	if err := c.do(ctx, http.MethodPost, "/login", body, "", &sess); err != nil {
		return nil, err
	}
	if err := c.tokens.Save(&sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return &sess, nil
}

func (c *Client) Logout() error {
	return c.tokens.Clear()
}

// RequireSession returns the stored session, or ErrNotLoggedIn when there is
// none. A session past its expiry is dropped and reported as ErrSessionExpired.
func (c *Client) RequireSession() (*Session, error) {
	sess, err := c.tokens.Load()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil || sess.Token == "" {
		return nil, ErrNotLoggedIn
	}
	if !sess.ExpiresAt.IsZero() && !c.now().Before(sess.ExpiresAt) {
		_ = c.tokens.Clear()
		return nil, ErrSessionExpired
	}
	return sess, nil
}

func (c *Client) RequireAdmin() (*Session, error) {
	sess, err := c.RequireSession()
	if err != nil {
		return nil, err
	}
	if sess.User.Role != models.RoleAdmin {
		return nil, ErrAdminOnly
	}
	return sess, nil
}

func (c *Client) Me(ctx context.Context) (*models.Identity, error) {
	sess, err := c.RequireSession()
	if err != nil {
		return nil, err
	}
	var id models.Identity
	if err := c.do(ctx, http.MethodGet, "/me", nil, sess.Token, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

func (c *Client) Products(ctx context.Context, search string) ([]models.Product, error) {
	sess, err := c.RequireSession()
	if err != nil {
		return nil, err
	}
	path := "/products"
	if s := strings.TrimSpace(search); s != "" {
		path += "?" + url.Values{"search": {s}}.Encode()
	}
	var items []models.Product
	if err := c.do(ctx, http.MethodGet, path, nil, sess.Token, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateProduct parses priceText before anything is sent.
func (c *Client) CreateProduct(ctx context.Context, name, priceText, description string) (*models.Product, error) {
	sess, err := c.RequireAdmin()
	if err != nil {
		return nil, err
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(priceText), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPrice, priceText)
	}

	body := map[string]any{"name": name, "price": price}
	if description != "" {
		body["description"] = description
	}

	var p models.Product
	if err := c.do(ctx, http.MethodPost, "/products", body, sess.Token, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, token string, out any) error {
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var eb struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&eb) == nil {
			apiErr.Message = eb.Error
		}
		// A rejected token ends the session; a failed login is only a bad password.
		if token != "" && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			if cerr := c.tokens.Clear(); cerr != nil {
				return errors.Join(ErrSessionExpired, apiErr, cerr)
			}
			return errors.Join(ErrSessionExpired, apiErr)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
