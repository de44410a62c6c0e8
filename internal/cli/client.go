package cli

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

	"github.com/google/uuid"
)

// Client talks to the watchlist API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	// trace receives one line per request and response when non-nil
	trace io.Writer
}

// NewClient creates a client for the server at baseURL, sending token when set
func NewClient(baseURL, token string, trace io.Writer) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		trace: trace,
	}
}

// API error codes the CLI reacts to
const (
	codeUnauthorized  = "UNAUTHORIZED"
	codeMovieNotFound = "MOVIE_NOT_FOUND"
)

// APIError is an error body returned by the watchlist API
type APIError struct {
	Status    int    `json:"-"`
	RequestID string `json:"-"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

type errorBody struct {
	Error APIError `json:"error"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s (%s)", e.Message, e.Code)
	switch e.Code {
	case codeUnauthorized:
		msg += `; log in again with "watchlist auth login"`
	case codeMovieNotFound:
		msg += `; "watchlist movies list" shows your movie ids`
	}
	return msg
}

// Account endpoints

func (c *Client) Health(ctx context.Context) (*HealthResult, error) {
	var result HealthResult
	if err := c.do(ctx, http.MethodGet, "/health", nil, &result); err != nil {
		return nil, err
	}
	result.Server = c.baseURL
	return &result, nil
}

func (c *Client) Register(ctx context.Context, username, password string) (*RegisterResult, error) {
	var result RegisterResult
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var result LoginResult
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Me(ctx context.Context) (*UserResult, error) {
	var result UserResult
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteAccount(ctx context.Context) (*UserResult, error) {
	var result UserResult
	if err := c.do(ctx, http.MethodDelete, "/auth/me", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Watchlist endpoints

// NewMovie is the body of an add request; empty optional fields are left to server defaults
type NewMovie struct {
	Title    string `json:"title"`
	Language string `json:"language,omitempty"`
	Overview string `json:"overview,omitempty"`
	Watched  bool   `json:"watched,omitempty"`
}

func (c *Client) AddMovie(ctx context.Context, movie NewMovie) (*MovieResult, error) {
	var result MovieResult
	if err := c.do(ctx, http.MethodPost, "/movies", movie, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListMovies lists the watchlist; status is "", "watched" or "unwatched"
func (c *Client) ListMovies(ctx context.Context, status string) (*MoviesResult, error) {
	path := "/movies"
	if status != "" {
		path += "?" + url.Values{"status": {status}}.Encode()
	}
	var result MoviesResult
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetMovie(ctx context.Context, id string) (*MovieResult, error) {
	var result MovieResult
	if err := c.do(ctx, http.MethodGet, moviePath(id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateMovie sends only the fields present in patch
func (c *Client) UpdateMovie(ctx context.Context, id string, patch map[string]any) (*MovieResult, error) {
	var result MovieResult
	if err := c.do(ctx, http.MethodPatch, moviePath(id), patch, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteMovie(ctx context.Context, id string) (*MovieResult, error) {
	var result MovieResult
	if err := c.do(ctx, http.MethodDelete, moviePath(id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func moviePath(id string) string {
	return "/movies/" + url.PathEscape(id)
}

// do sends one JSON request, tagging it with a fresh X-Request-ID so failures can be
// matched to server log lines
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.tracef("-> %s %s [%s]", method, path, requestID)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("watchlist server at %s unreachable: %w", c.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.tracef("<- %d %s (%d bytes)", resp.StatusCode, path, len(respBody))

	if resp.StatusCode >= 400 {
		var eb errorBody
		if err := json.Unmarshal(respBody, &eb); err == nil && eb.Error.Code != "" {
			eb.Error.Status = resp.StatusCode
			eb.Error.RequestID = requestID
			return &eb.Error
		}
		return fmt.Errorf("unexpected HTTP %d from %s %s: %s", resp.StatusCode, method, path, strings.TrimSpace(string(respBody)))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

func (c *Client) tracef(format string, args ...any) {
	if c.trace != nil {
		fmt.Fprintf(c.trace, format+"\n", args...)
	}
}
