// Package api provides thin REST wrappers over the request gateway for the
// storefront and management console endpoints. Every call behaves like a
// normal HTTP exchange: non-2xx responses surface as classified errors, and
// authorization recovery is invisible at this layer.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/utafrali/ShopfrontGo/internal/session"
	"github.com/utafrali/ShopfrontGo/pkg/httpclient"
)

// Client holds the plumbing shared by all endpoint wrappers.
type Client struct {
	gw      session.Doer
	baseURL string
	logger  *slog.Logger
}

// NewClient creates the shared API client over the given gateway.
func NewClient(gw session.Doer, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		gw:      gw,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// get issues a GET through the gateway.
func (c *Client) get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path, query), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	return c.gw.Do(ctx, req)
}

// send issues a request with a JSON payload through the gateway. A nil
// payload produces an empty body.
func (c *Client) send(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, nil), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	return c.gw.Do(ctx, req)
}

// decodeJSON decodes a 2xx response body directly into T.
func decodeJSON[T any](resp *http.Response, operation string) (T, error) {
	var zero T
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return zero, httpclient.ParseResponseError(resp, operation)
	}

	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&v); err != nil {
		return zero, fmt.Errorf("%s: decode response: %w", operation, err)
	}
	return v, nil
}

// decodeData decodes a 2xx response whose payload sits under the standard
// data envelope.
func decodeData[T any](resp *http.Response, operation string) (T, error) {
	envelope, err := decodeJSON[struct {
		Data T `json:"data"`
	}](resp, operation)
	if err != nil {
		var zero T
		return zero, err
	}
	return envelope.Data, nil
}

// discard consumes and closes a response whose body carries nothing useful.
func discard(resp *http.Response, operation string) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, operation)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	_ = resp.Body.Close()
	return nil
}
