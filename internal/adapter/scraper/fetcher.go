package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/linkscribe/api-service/internal/domain/service"
)

// Fetcher defaults
const (
	DefaultTimeout      = 15 * time.Second
	DefaultMaxBodyBytes = int64(10 * 1024 * 1024)
	DefaultUserAgent    = "LinkScribe/1.0 (+https://github.com/linkscribe/api-service)"
)

// Page is a fetched HTTP response body
type Page struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// StatusError reports a non-2xx response. It matches service.ErrExtractionFailed.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unable to retrieve content from %s: status code %d", e.URL, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return service.ErrExtractionFailed
}

// Fetcher retrieves web pages over HTTP
type Fetcher struct {
	httpClient   *http.Client
	userAgent    string
	maxBodyBytes int64
	retry        RetryConfig
}

// Option configures a Fetcher
type Option func(*Fetcher)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = c
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodyBytes caps the response body size
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodyBytes = n
		}
	}
}

// WithRetry enables exponential backoff for transient failures
func WithRetry(cfg RetryConfig) Option {
	return func(f *Fetcher) {
		f.retry = cfg
	}
}

// NewFetcher creates a Fetcher whose requests time out after timeout
func NewFetcher(timeout time.Duration, opts ...Option) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	f := &Fetcher{
		httpClient:   &http.Client{Timeout: timeout},
		userAgent:    DefaultUserAgent,
		maxBodyBytes: DefaultMaxBodyBytes,
		retry:        DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch issues a GET for rawURL and returns the body of a 2xx response
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	var page *Page
	err := withRetry(ctx, f.retry, func() error {
		var fetchErr error
		page, fetchErr = f.fetchOnce(ctx, rawURL)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", service.ErrFetchFailed, ctxErr)
		}
		return nil, fmt.Errorf("%w: %w", service.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, f.maxBodyBytes))
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", service.ErrFetchFailed, err)
	}
	if int64(len(body)) > f.maxBodyBytes {
		return nil, fmt.Errorf("%w: response body exceeds %d bytes", service.ErrExtractionFailed, f.maxBodyBytes)
	}

	return &Page{
		URL:         rawURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// ValidateURL accepts absolute http and https URLs only
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %w", service.ErrInvalidURL, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", service.ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", service.ErrInvalidURL)
	}
	return nil
}
