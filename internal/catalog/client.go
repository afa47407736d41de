// Package catalog is a thin HTTP accessor for the remote GIF catalog.
// It exposes the "random", "latest page" and "top page" endpoints.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gifapp/internal/model"
)

const (
	// DefaultBaseURL is the public catalog the application talks to.
	DefaultBaseURL = "https://developerslife.ru/"

	defaultTimeout = 15 * time.Second
	maxErrorBody   = 512
)

// ErrEmptyResult is returned when the catalog answers with an item that has no id.
var ErrEmptyResult = errors.New("catalog returned an empty item")

// StatusError reports a non-2xx answer from the catalog.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("catalog request %s failed: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("catalog request %s failed: HTTP %d: %s", e.URL, e.StatusCode, e.Body)
}

// Client talks to the catalog service.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a catalog client rooted at baseURL.
// An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid catalog url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  "gifapp",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the catalog root the client is bound to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Random fetches a single random gif.
func (c *Client) Random(ctx context.Context) (model.Gif, error) {
	var g model.Gif
	if err := c.getJSON(ctx, "random", &g); err != nil {
		return model.Gif{}, err
	}
	if g.ID == "" {
		return model.Gif{}, ErrEmptyResult
	}
	return g, nil
}

// Latest fetches one page of the most recent gifs. Pages start at 0.
func (c *Client) Latest(ctx context.Context, page int) (model.GifResponse, error) {
	return c.page(ctx, "latest", page)
}

// Top fetches one page of the best rated gifs. Pages start at 0.
func (c *Client) Top(ctx context.Context, page int) (model.GifResponse, error) {
	return c.page(ctx, "top", page)
}

func (c *Client) page(ctx context.Context, section string, page int) (model.GifResponse, error) {
	if page < 0 {
		return model.GifResponse{}, fmt.Errorf("page must not be negative, got %d", page)
	}
	var resp model.GifResponse
	if err := c.getJSON(ctx, section+"/"+strconv.Itoa(page), &resp); err != nil {
		return model.GifResponse{}, err
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	ref := &url.URL{Path: endpoint, RawQuery: url.Values{"json": {"true"}}.Encode()}
	target := c.baseURL.ResolveReference(ref).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", target, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{URL: target, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", target, err)
	}
	return nil
}
