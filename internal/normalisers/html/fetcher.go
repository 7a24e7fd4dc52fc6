package html

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/briefly/internal/core/ports/driven"
	"github.com/custodia-labs/briefly/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.WebFetcher = (*Fetcher)(nil)

// Default configuration values.
const (
	DefaultUserAgent         = "Mozilla/5.0 (compatible; briefly/1.0)"
	DefaultTimeout           = 15 * time.Second
	DefaultRequestsPerSecond = 2.0
	DefaultBurstSize         = 4

	// maxBodyBytes caps how much of a page is read.
	maxBodyBytes = 10 << 20
)

// Config holds configuration for the page fetcher.
type Config struct {
	// UserAgent is sent with every request (default: a generic browser-compatible string).
	UserAgent string

	// Timeout bounds each request, including reading the body (default: 15s).
	Timeout time.Duration

	// MaxChars truncates the extracted text; 0 keeps everything.
	MaxChars int

	// RequestsPerSecond is the sustained fetch rate (default: 2).
	RequestsPerSecond float64

	// BurstSize is the maximum burst size (default: 4).
	BurstSize int

	// Client overrides the HTTP client. Its Timeout is replaced by Timeout.
	Client *http.Client
}

// Fetcher downloads pages and returns their visible text.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	maxChars  int
}

// NewFetcher creates a new page fetcher.
func NewFetcher(cfg Config) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = DefaultBurstSize
	}

	client := &http.Client{}
	if cfg.Client != nil {
		c := *cfg.Client
		client = &c
	}
	client.Timeout = cfg.Timeout

	return &Fetcher{
		client:    client,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		userAgent: cfg.UserAgent,
		maxChars:  cfg.MaxChars,
	}
}

// Fetch downloads url and returns its visible text.
// Network errors, non-2xx statuses and timeouts are returned unchanged in
// meaning; no retry is attempted.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	text, err := Normalise(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}
	logger.Debug("fetched %s in %v (%d chars)", url, time.Since(start).Round(time.Millisecond), len(text))

	return truncate(text, f.maxChars), nil
}

// truncate keeps at most n characters of s; n <= 0 keeps everything.
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
