// Package clinic is the typed client for the clinic administration REST API.
// Each resource (patients, doctors, users, roles, floors, offices, bookings,
// medical histories, chatbot prompts) exposes list/get/create/update and
// activation operations; list responses are normalized from the backend's
// assorted envelope shapes into one canonical page shape.
package clinic

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

	"github.com/rs/zerolog"
)

const maxResponseBytes = 4 << 20 // 4 MiB

// TokenSource supplies the bearer token attached to authenticated requests.
type TokenSource interface {
	Token() (string, error)
}

// TokenFunc adapts a plain function to a TokenSource.
type TokenFunc func() (string, error)

func (f TokenFunc) Token() (string, error) { return f() }

// StaticToken is a TokenSource for a fixed token.
func StaticToken(token string) TokenSource {
	return TokenFunc(func() (string, error) { return token, nil })
}

// Client talks to the clinic API. The zero value is not usable; construct
// with New.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	log        zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenSource sets the bearer-token source for authenticated calls.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger sets the request logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a Client rooted at baseURL (e.g. "https://clinic.example.com/api").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// response is the raw outcome of a request after status handling.
type response struct {
	status      int
	contentType string
	body        []byte
}

func (r *response) isJSON() bool {
	return strings.Contains(r.contentType, "application/json")
}

// do issues one HTTP request and applies the shared error policy: transport
// failures and non-2xx statuses both surface as errors carrying the fallback
// message when the body gives nothing better.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any, fallback string) (*response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, &APIError{Message: fallback}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("resolve auth token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return nil, &APIError{Message: fallback}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: fallback}
	}

	out := &response{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        data,
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fallback
		if out.isJSON() || len(out.body) > 0 {
			msg = extractErrorMessage(out.body, out.contentType, fallback)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	return out, nil
}

// listResource fetches and normalizes a filtered list endpoint.
func listResource[T any](ctx context.Context, c *Client, path string, f Filter, fallback string, mapItem func(json.RawMessage) (T, error)) (*ListPage[T], error) {
	resp, err := c.do(ctx, http.MethodGet, path, f.Encode(), nil, fallback)
	if err != nil {
		return nil, err
	}

	var env listEnvelope
	if resp.isJSON() {
		env = decodeListEnvelope(resp.body)
	}
	items := make([]T, 0, len(env.items))
	for _, raw := range env.items {
		item, err := mapItem(raw)
		if err != nil {
			// A malformed row is dropped rather than failing the page.
			c.log.Warn().Err(err).Str("path", path).Msg("skipping unmappable list item")
			continue
		}
		items = append(items, item)
	}
	return resolvePage(env, items, f), nil
}

// requestEntity issues a mutation or single-entity fetch and maps the
// unwrapped entity payload.
func requestEntity[T any](ctx context.Context, c *Client, method, path string, payload any, fallback string, mapItem func(json.RawMessage) (T, error)) (*T, error) {
	resp, err := c.do(ctx, method, path, nil, payload, fallback)
	if err != nil {
		return nil, err
	}
	raw, err := decodeEntityEnvelope(resp.body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	item, err := mapItem(raw)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return &item, nil
}

// DeleteResult is the normalized outcome of a DELETE call.
type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// deleteResource issues a DELETE, tolerating plain-text success bodies by
// synthesizing a success result around the text.
func deleteResource(ctx context.Context, c *Client, path, fallback string) (*DeleteResult, error) {
	resp, err := c.do(ctx, http.MethodDelete, path, nil, nil, fallback)
	if err != nil {
		return nil, err
	}
	if resp.isJSON() && len(bytes.TrimSpace(resp.body)) > 0 {
		var res DeleteResult
		if err := json.Unmarshal(resp.body, &res); err == nil {
			if !res.Success && res.Message == "" {
				res.Success = true
			}
			return &res, nil
		}
	}
	return &DeleteResult{Success: true, Message: strings.TrimSpace(string(resp.body))}, nil
}
