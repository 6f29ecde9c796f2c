// Package backend issues authenticated REST calls to the per-market parser
// services. Its error-signaling contract is dual-return: a 2xx response
// yields the decoded payload, any other status yields the raw response body
// as human-readable text that call sites show to the user verbatim. Only
// transport failures surface as errors.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"marketgate/internal/logger"
)

const maxErrorBody = 4 * 1024

// Client talks to one backend host; market prefixes namespace the paths.
type Client struct {
	host    string
	httpc   *http.Client
	timeout time.Duration
}

// New builds a client for the given host ("host:port", no scheme) with a
// bounded per-call timeout.
func New(host string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		host: strings.TrimSuffix(host, "/"),
		httpc: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		timeout: timeout,
	}
}

// Call performs one backend request. On 2xx it returns the raw payload and
// an empty error text; on any other status it returns the response body as
// plain text. Failed calls are never retried here: the failure surfaces
// immediately to the user.
func (c *Client) Call(ctx context.Context, verb, path, market, token string, body any, params url.Values) (json.RawMessage, string, error) {
	u := fmt.Sprintf("http://%s/%s/%s", c.host, market, path)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("backend: encode body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, verb, u, reqBody)
	if err != nil {
		return nil, "", fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		logger.Error(ctx, "backend", "backend.call",
			slog.String("verb", verb),
			slog.String("path", path),
			slog.String("market", market),
			slog.Duration("duration", logger.RoundMS(time.Since(start))),
			slog.String("err", err.Error()),
		)
		return nil, "", fmt.Errorf("backend: %s %s: %w", verb, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, "", fmt.Errorf("backend: read response: %w", err)
	}

	logger.Debug(ctx, "backend", "backend.call",
		slog.String("verb", verb),
		slog.String("path", path),
		slog.String("market", market),
		slog.Int("http_code", resp.StatusCode),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)

	if resp.StatusCode/100 != 2 {
		text := strings.TrimSpace(string(payload))
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		if text == "" {
			text = resp.Status
		}
		return nil, text, nil
	}
	return payload, "", nil
}

// AddItem registers a new parsing link with the market.
func (c *Client) AddItem(ctx context.Context, market, token, link string) (errText string, err error) {
	_, errText, err = c.Call(ctx, http.MethodPost, "parsing-items", market, token, Item{Link: link}, nil)
	return errText, err
}

// ListItems fetches the ordered parsing targets of the market.
func (c *Client) ListItems(ctx context.Context, market, token string) ([]Item, string, error) {
	payload, errText, err := c.Call(ctx, http.MethodGet, "parsing-items", market, token, nil, nil)
	if err != nil || errText != "" {
		return nil, errText, err
	}
	var items []Item
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, "", fmt.Errorf("backend: decode parsing-items: %w", err)
	}
	return items, "", nil
}

// DeleteItem removes a parsing target identified by its link.
func (c *Client) DeleteItem(ctx context.Context, market, token, link string) (*DeleteResult, string, error) {
	payload, errText, err := c.Call(ctx, http.MethodDelete, "parsing-items", market, token, Item{Link: link}, nil)
	if err != nil || errText != "" {
		return nil, errText, err
	}
	var res DeleteResult
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, "", fmt.Errorf("backend: decode delete result: %w", err)
	}
	return &res, "", nil
}

// SearchProducts runs a catalog text search against the market.
func (c *Client) SearchProducts(ctx context.Context, market, token, query string) ([]Product, string, error) {
	params := url.Values{"query": {query}}
	payload, errText, err := c.Call(ctx, http.MethodGet, "products/search", market, token, nil, params)
	if err != nil || errText != "" {
		return nil, errText, err
	}
	var products []Product
	if err := json.Unmarshal(payload, &products); err != nil {
		return nil, "", fmt.Errorf("backend: decode search result: %w", err)
	}
	return products, "", nil
}

// ProductsByURL fetches full parsed attributes for a product URL.
func (c *Client) ProductsByURL(ctx context.Context, market, token, productURL string) ([]Product, string, error) {
	params := url.Values{"product_urls": {productURL}}
	payload, errText, err := c.Call(ctx, http.MethodGet, "products/by_url", market, token, nil, params)
	if err != nil || errText != "" {
		return nil, errText, err
	}
	var products []Product
	if err := json.Unmarshal(payload, &products); err != nil {
		return nil, "", fmt.Errorf("backend: decode by_url result: %w", err)
	}
	return products, "", nil
}
