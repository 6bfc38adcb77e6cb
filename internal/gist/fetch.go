package gist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/go-gistembed/internal/gisturi"
)

// DefaultBaseURL is the public gist host.
const DefaultBaseURL = "https://gist.github.com"

// MaxBodySize limits how much of a response body is read (8 MiB).
const MaxBodySize = 8 << 20

// Resource is the JSON representation served by <host>/<owner>/<id>.json.
type Resource struct {
	Description string   `json:"description"`
	Public      bool     `json:"public"`
	CreatedAt   string   `json:"created_at"`
	Files       []string `json:"files"`
	Owner       string   `json:"owner"`
	Div         string   `json:"div"`        // rendered markup
	Stylesheet  string   `json:"stylesheet"` // URL of the stylesheet the markup expects
}

// Fetcher retrieves the remote representation of a gist.
type Fetcher interface {
	Fetch(ctx context.Context, loc gisturi.Locator) (*Resource, error)
}

// HTTPFetcher fetches gists over HTTP. One GET per call, no retries.
type HTTPFetcher struct {
	client    *http.Client
	baseURL   string
	userAgent string
	logger    *zap.Logger
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithClient sets the HTTP client. The default is http.DefaultClient.
func WithClient(c *http.Client) FetcherOption {
	return func(f *HTTPFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithBaseURL overrides the gist host (used by tests and mirrors).
func WithBaseURL(u string) FetcherOption {
	return func(f *HTTPFetcher) {
		if u != "" {
			f.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) FetcherOption {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// WithFetchLogger sets the logger for request tracing.
func WithFetchLogger(l *zap.Logger) FetcherOption {
	return func(f *HTTPFetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewHTTPFetcher creates an HTTPFetcher targeting DefaultBaseURL.
func NewHTTPFetcher(opts ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:  http.DefaultClient,
		baseURL: DefaultBaseURL,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// URL builds the request target for loc.
func (f *HTTPFetcher) URL(loc gisturi.Locator) string {
	target := f.baseURL + "/" + url.PathEscape(loc.Owner) + "/" + url.PathEscape(loc.ID) + ".json"
	if loc.HasFile() {
		target += "?file=" + url.QueryEscape(loc.File)
	}
	return target
}

// Fetch issues a GET for loc and decodes the response.
// Non-200 statuses are returned as *ResponseError.
func (f *HTTPFetcher) Fetch(ctx context.Context, loc gisturi.Locator) (*Resource, error) {
	target := f.URL(loc)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", target, err)
	}
	req.Header.Set("Accept", "application/json")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	f.logger.Debug("Fetching gist", zap.String("url", target))

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	f.logger.Debug("Gist response", zap.String("url", target), zap.Int("status", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(target, resp.StatusCode, resp.Status)
	}

	var res Resource
	if err := json.NewDecoder(io.LimitReader(resp.Body, MaxBodySize)).Decode(&res); err != nil {
		return nil, fmt.Errorf("%w from %s: %v", ErrInvalidResponse, target, err)
	}
	return &res, nil
}

// Compile-time interface check.
var _ Fetcher = (*HTTPFetcher)(nil)
