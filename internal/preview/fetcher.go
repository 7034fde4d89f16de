package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

const fetchUserAgent = "Mozilla/5.0 (compatible; ChainmeetPreview/1.0)"

// maxBodyBytes caps how much of a page is read for a preview.
const maxBodyBytes = 1 << 20

// hostLimiter keeps one token bucket per registrable domain so preview
// fetches of many pages on one site stay polite.
type hostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newHostLimiter(rps float64, burst int) *hostLimiter {
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &hostLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

func (l *hostLimiter) wait(ctx context.Context, host string) error {
	if host == "" {
		return nil
	}
	// Group subdomains under the registrable domain.
	if domain, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		host = domain
	}
	l.mu.Lock()
	limiter, ok := l.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[host] = limiter
	}
	l.mu.Unlock()
	return limiter.Wait(ctx)
}

// fetcher downloads preview pages with a per-domain rate limit.
type fetcher struct {
	client  *http.Client
	limiter *hostLimiter
}

func newFetcher(timeout time.Duration) *fetcher {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:        32,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     60 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &fetcher{
		client:  &http.Client{Timeout: timeout, Transport: transport},
		limiter: newHostLimiter(1.5, 2),
	}
}

func (f *fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	if f == nil {
		return nil, errors.New("fetcher is nil")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if err := f.limiter.wait(ctx, parsed.Hostname()); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", fetchUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("preview fetch status %d", resp.StatusCode)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "html") {
		return nil, fmt.Errorf("unsupported content type %q", contentType)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}
