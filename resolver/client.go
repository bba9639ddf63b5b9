// Package resolver queries the externally deployed douyin resolution APIs.
// Both endpoints answer GET {base}/?url=<target> with a JSON envelope
// {code, message, data}; code 0 means success and data carries a
// consumer-specific payload.
package resolver

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// maxErrorBody bounds how much of a non-2xx response body is kept for diagnostics.
const maxErrorBody = 500

// envelope is the JSON wrapper both resolution APIs respond with.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client issues resolution requests against a base endpoint.
type Client struct {
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

// NewClient creates a resolution client. When insecureTLS is set, certificate
// verification is skipped on this client's transport only; the resolution
// endpoints are self-hosted and may present self-signed certificates.
func NewClient(insecureTLS bool, logger *zap.SugaredLogger) *Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: insecureTLS},
	}
	return &Client{
		// Per-call timeouts are applied through the request context, the
		// client itself carries none.
		httpClient: &http.Client{Transport: transport},
		logger:     logger,
	}
}

// Resolve queries base with target as the url parameter and returns the raw
// data payload of a successful envelope. Payload shape validation is the
// caller's responsibility; the single-work and catalog schemas differ.
func (c *Client) Resolve(ctx context.Context, base, target string, timeout time.Duration) (json.RawMessage, error) {
	apiURL := fmt.Sprintf("%s/?url=%s", base, url.QueryEscape(target))
	c.logger.Infof("requesting API: %s", apiURL)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, NewResolveErrorWithCause(ErrorConnection, "invalid request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewResolveErrorWithCause(ErrorConnection, "API connection failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewResolveErrorWithCause(ErrorConnection, "reading API response failed", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		re := NewResolveError(ErrorHTTPStatus, resp.Status)
		re.Status = resp.StatusCode
		re.Body = truncate(string(body), maxErrorBody)
		return nil, re
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, NewResolveErrorWithCause(ErrorParse, "malformed API response", err)
	}

	if env.Code != 0 {
		message := env.Message
		if message == "" {
			message = "unknown"
		}
		return nil, NewResolveError(ErrorAPI, message)
	}

	return env.Data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
