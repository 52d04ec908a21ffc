// Package rest provides the shared HTTP plumbing the repository services sit
// on.  It is deliberately thin: no retries, no caching – a retried transport
// belongs to the caller's http.Client, not here.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/CodeGandee/invokeai-go-client/tracing"
)

// Client is a minimal JSON-over-HTTP API client.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		Timeout:    30 * time.Second,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError wraps non-2xx responses, surfacing remote status and detail
// verbatim.
type APIError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// Do performs one request, encoding body as JSON when non-nil and decoding
// the response into out when non-nil.
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	// never assign to c here: one Client backs several repositories
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: c.Timeout}
	}
	url := strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	_, span := tracing.StartSpan(ctx, "rest.do", "CLIENT")
	span.WithAttributes(map[string]string{"http.method": method, "http.url": url})
	resp, err := httpClient.Do(req)
	if err != nil {
		tracing.EndSpan(span, err)
		return err
	}
	defer resp.Body.Close()
	span.SetStatusFromHTTPCode(resp.StatusCode)
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(b)}
		tracing.EndSpan(span, apiErr)
		return apiErr
	}
	tracing.EndSpan(span, nil)
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
