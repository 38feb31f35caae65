// Package client is a typed HTTP client for the recipes API.
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

	"github.com/cookingbylea/recipes/backend/internal/gallery"
	"github.com/cookingbylea/recipes/backend/internal/model"
	"github.com/cookingbylea/recipes/backend/internal/types"
)

// APIError is returned for every non-2xx response
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned %d", e.Status)
	}
	return fmt.Sprintf("api returned %d: %s", e.Status, e.Message)
}

// Client talks to one API base URL, e.g. "https://recipes.example.com/api"
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New creates a client. A nil httpClient gets a 30 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// WithToken returns a copy of the client that sends an admin bearer token
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

func (c *Client) ListRecipes(ctx context.Context) ([]model.Recipe, error) {
	var recipes []model.Recipe
	if err := c.do(ctx, http.MethodGet, "/recipes", nil, "", &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

func (c *Client) GetRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := c.do(ctx, http.MethodGet, "/recipes/"+url.PathEscape(id), nil, "", &recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (c *Client) CreateRecipe(ctx context.Context, payload Payload) (*model.Recipe, error) {
	body, contentType, err := payload.Encode()
	if err != nil {
		return nil, err
	}
	var recipe model.Recipe
	if err := c.do(ctx, http.MethodPost, "/recipes", body, contentType, &recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (c *Client) UpdateRecipe(ctx context.Context, id string, payload Payload) (*model.Recipe, error) {
	body, contentType, err := payload.Encode()
	if err != nil {
		return nil, err
	}
	var recipe model.Recipe
	if err := c.do(ctx, http.MethodPut, "/recipes/"+url.PathEscape(id), body, contentType, &recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (c *Client) DeleteRecipe(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/recipes/"+url.PathEscape(id), nil, "", nil)
}

// Gallery fetches one server-side filtered page
func (c *Client) Gallery(ctx context.Context, state gallery.State) (*gallery.Page, error) {
	path := "/gallery"
	if query := state.Values().Encode(); query != "" {
		path += "?" + query
	}
	var page gallery.Page
	if err := c.do(ctx, http.MethodGet, path, nil, "", &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Login exchanges the admin password for a token
func (c *Client) Login(ctx context.Context, password string) (string, error) {
	raw, err := json.Marshal(types.LoginRequest{Password: password})
	if err != nil {
		return "", err
	}
	var resp types.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", bytes.NewReader(raw), "application/json", &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var errBody struct {
			Error string `json:"error"`
		}
		if raw, err := io.ReadAll(resp.Body); err == nil && json.Unmarshal(raw, &errBody) == nil {
			apiErr.Message = errBody.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
