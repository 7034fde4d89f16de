package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"chainmeet/backend/internal/metrics"
)

const defaultEndpoint = "https://nominatim.openstreetmap.org/search"
const defaultUserAgent = "ChainmeetGeocoder/1.0"

// Nominatim's usage policy allows at most one request per second.
const requestsPerSecond = 1

// Config represents config.
type Config struct {
	Endpoint string
	Language string
	Timeout  time.Duration
}

// Client is a forward-geocoding client for venue address lookup.
type Client struct {
	endpoint string
	language string
	client   *http.Client
	limiter  *rate.Limiter
}

// Result represents result.
type Result struct {
	DisplayName string  `json:"displayName"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

// nominatimItem represents nominatim item.
type nominatimItem struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// NewClient creates client.
func NewClient(cfg Config) *Client {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	language := strings.TrimSpace(cfg.Language)
	if language == "" {
		language = "en"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 6 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		language: language,
		client: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// Search handles internal search behavior.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if c == nil {
		return nil, fmt.Errorf("geocoder is not configured")
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, fmt.Errorf("query is empty")
	}
	if limit <= 0 {
		limit = 1
	}
	if limit > 5 {
		limit = 5
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	values := url.Values{}
	values.Set("q", q)
	values.Set("format", "jsonv2")
	values.Set("limit", strconv.Itoa(limit))
	values.Set("addressdetails", "1")
	values.Set("accept-language", c.language)

	reqURL := c.endpoint + "?" + values.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.GeocodeLookups.WithLabelValues("error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		metrics.GeocodeLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("geocoder status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload []nominatimItem
	if err := json.NewDecoder(io.LimitReader(resp.Body, 2<<20)).Decode(&payload); err != nil {
		metrics.GeocodeLookups.WithLabelValues("error").Inc()
		return nil, err
	}

	out := make([]Result, 0, len(payload))
	for _, item := range payload {
		lat, err := strconv.ParseFloat(strings.TrimSpace(item.Lat), 64)
		if err != nil {
			continue
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(item.Lon), 64)
		if err != nil {
			continue
		}
		out = append(out, Result{
			DisplayName: strings.TrimSpace(item.DisplayName),
			Lat:         lat,
			Lng:         lng,
		})
	}
	metrics.GeocodeLookups.WithLabelValues("ok").Inc()
	return out, nil
}
