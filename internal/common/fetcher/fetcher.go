package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
)

// Fetcher retrieves raw documents from external sites
type Fetcher interface {
	// Fetch performs a single GET and returns the body of a 2xx response.
	// Any failure is returned as a *FetchError. No retries are made.
	Fetch(ctx context.Context, url string, timeout time.Duration) (string, error)
}

// FetchError is returned for network failures, timeouts and non-2xx responses
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether the fetch failed because a deadline passed
func (e *FetchError) IsTimeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// ErrUnexpectedStatus is wrapped by FetchError for non-2xx responses
var ErrUnexpectedStatus = errors.New("unexpected status")

// Config holds the outbound request settings
type Config struct {
	UserAgent string
	// Referer sent with every request, normally the job board's home page
	Referer      string
	ProxyURL     string
	RequestDelay time.Duration
}

// CollyFetcher implements Fetcher on top of Colly.
// A fresh collector is built per call so per-call timeouts stay isolated;
// the host limiter is shared to pace requests towards the same site.
type CollyFetcher struct {
	config  Config
	limiter *HostLimiter
}

// New creates a Colly-backed fetcher
func New(cfg Config) *CollyFetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	return &CollyFetcher{
		config:  cfg,
		limiter: NewHostLimiter(cfg.RequestDelay),
	}
}

func (f *CollyFetcher) Fetch(ctx context.Context, url string, timeout time.Duration) (string, error) {
	if err := f.limiter.WaitURL(ctx, url); err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("wait for rate limit: %w", err)}
	}

	c := colly.NewCollector(
		colly.UserAgent(f.config.UserAgent),
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
		colly.StdlibContext(ctx),
	)
	if timeout > 0 {
		c.SetRequestTimeout(timeout)
	}
	if f.config.ProxyURL != "" {
		if err := c.SetProxy(f.config.ProxyURL); err != nil {
			return "", &FetchError{URL: url, Err: fmt.Errorf("set proxy: %w", err)}
		}
	}

	var (
		body   []byte
		status int
	)

	c.OnRequest(func(r *colly.Request) {
		f.setHeaders(r.Headers)
	})

	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})

	if err := c.Visit(url); err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("visit: %w", err)}
	}

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return "", &FetchError{URL: url, StatusCode: status, Err: ErrUnexpectedStatus}
	}

	return string(body), nil
}

// setHeaders mimics an ordinary browser navigation.
// Accept-Encoding is left to the transport so compressed bodies get decoded.
func (f *CollyFetcher) setHeaders(h *http.Header) {
	h.Set("User-Agent", f.config.UserAgent)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7")
	h.Set("Accept-Language", "en-US,en;q=0.9,zh-HK;q=0.8,zh;q=0.7")
	h.Set("Cache-Control", "max-age=0")
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-Site", "same-origin")
	h.Set("Sec-Fetch-User", "?1")
	if f.config.Referer != "" {
		h.Set("Referer", f.config.Referer)
	}
}
