package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Endpoint is the resolved chain target for one call. It is looked up per
// request so a hot-reloaded chain profile takes effect without a restart.
type Endpoint struct {
	RPCURL   string
	Contract string
}

// HTTPClient talks to a wallet/chain collaborator over its HTTP RPC bridge.
type HTTPClient struct {
	endpoint   func() Endpoint
	httpClient *http.Client
	logger     *slog.Logger
}

// APIError is a non-2xx response from the chain collaborator.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chain rpc status %d: %s", e.StatusCode, e.Body)
}

type queryRequest struct {
	Contract string `json:"contract"`
	Endpoint string `json:"endpoint"`
	Args     []any  `json:"args"`
}

type executeRequest struct {
	Contract       string `json:"contract"`
	Endpoint       string `json:"endpoint"`
	Args           []any  `json:"args"`
	Value          int64  `json:"value"`
	IdempotencyKey string `json:"idempotencyKey"`
}

// NewHTTPClient creates a chain client over the HTTP RPC bridge.
func NewHTTPClient(endpoint func() Endpoint, httpClient *http.Client, logger *slog.Logger) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPClient{
		endpoint:   endpoint,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Query performs a read-only contract call.
func (c *HTTPClient) Query(ctx context.Context, endpoint string, args []any) (QueryResult, error) {
	var out QueryResult
	target := c.endpoint()
	req := queryRequest{
		Contract: target.Contract,
		Endpoint: endpoint,
		Args:     args,
	}
	if err := c.post(ctx, target.RPCURL, "/contract/query", req, &out); err != nil {
		return QueryResult{}, err
	}
	return out, nil
}

// Execute submits a state-changing call. Every submission carries a fresh
// idempotency key so a retried HTTP request cannot double-apply.
func (c *HTTPClient) Execute(ctx context.Context, endpoint string, args []any, valueToAttach int64) (TxResult, error) {
	var out TxResult
	target := c.endpoint()
	req := executeRequest{
		Contract:       target.Contract,
		Endpoint:       endpoint,
		Args:           args,
		Value:          valueToAttach,
		IdempotencyKey: uuid.NewString(),
	}
	start := time.Now()
	if err := c.post(ctx, target.RPCURL, "/contract/execute", req, &out); err != nil {
		return TxResult{}, err
	}
	c.logger.Info("chain_execute",
		"endpoint", endpoint,
		"hash", out.Hash,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func (c *HTTPClient) post(ctx context.Context, baseURL, path string, payload any, out any) error {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return fmt.Errorf("chain rpc url is not configured")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(out)
}
