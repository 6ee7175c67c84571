// Package api is the device-side client for the account/listing HTTP
// service. Auth rides on the cookie pair the server sets at login, so
// the client keeps a cookie jar for the session lifetime.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/projboard/projboard/internal/domain/entity"
)

var (
	// ErrRemoteUnavailable covers transport failures and 5xx answers;
	// callers fall back to the local cache when they see it.
	ErrRemoteUnavailable = errors.New("remote service unavailable")
	// ErrInvalidCredentials is a 401 from login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateEmail is a 409 from register.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrNotFound is a 404.
	ErrNotFound = errors.New("not found")
	// ErrNotOwner is a 403 from deleting someone else's listing.
	ErrNotOwner = errors.New("not the listing owner")
	// ErrUnauthorized is a 401 on an authenticated endpoint.
	ErrUnauthorized = errors.New("not signed in")
)

// envelope mirrors the server's uniform JSON response.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Client calls the remote account/listing service.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for baseURL (e.g. "https://api.projboard.dev").
func New(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}
}

// Profile is the account body the server returns.
type Profile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	AvatarURL string `json:"avatar_url"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if err := statusError(resp.StatusCode); err != nil {
		return err
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			// A garbled body means the remote is not usable either.
			return fmt.Errorf("%w: decode response: %v", ErrRemoteUnavailable, err)
		}
	}
	return nil
}

func statusError(code int) error {
	switch {
	case code < 400:
		return nil
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code == http.StatusForbidden:
		return ErrNotOwner
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusConflict:
		return ErrDuplicateEmail
	case code >= 500:
		return fmt.Errorf("%w: status %d", ErrRemoteUnavailable, code)
	default:
		return fmt.Errorf("request failed: status %d", code)
	}
}

// Register creates an account on the server.
func (c *Client) Register(ctx context.Context, name, email, password, phone string) (*Profile, error) {
	var env envelope[Profile]
	err := c.do(ctx, http.MethodPost, "/api/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
		"phone":    phone,
	}, &env)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// Login authenticates and stores the session cookies in the jar. A 401
// here means bad credentials, not a missing session.
func (c *Client) Login(ctx context.Context, email, password string) (*Profile, error) {
	var env envelope[struct {
		User Profile `json:"user"`
	}]
	err := c.do(ctx, http.MethodPost, "/api/login", map[string]string{
		"email":    email,
		"password": password,
	}, &env)
	if errors.Is(err, ErrUnauthorized) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	return &env.Data.User, nil
}

// Logout revokes the server session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/logout", nil, nil)
}

// FetchListings loads the feed, already filtered and sorted server-side.
func (c *Client) FetchListings(ctx context.Context, search, sort string) ([]entity.Listing, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if sort != "" {
		q.Set("sort", sort)
	}
	path := "/api/listings"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var env envelope[[]entity.Listing]
	if err := c.do(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// CreateListing posts a new listing. Price is the pt-BR formatted
// string as typed; the server parses it.
func (c *Client) CreateListing(ctx context.Context, title, description, price, partySize string) (*entity.Listing, error) {
	var env envelope[entity.Listing]
	err := c.do(ctx, http.MethodPost, "/api/listings", map[string]string{
		"title":       title,
		"description": description,
		"price":       price,
		"party_size":  partySize,
	}, &env)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// DeleteListing removes a listing the signed-in account owns.
func (c *Client) DeleteListing(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/listings/"+url.PathEscape(id), nil, nil)
}
