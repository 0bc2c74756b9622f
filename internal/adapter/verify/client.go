// Package verify calls the third-party bot-verification API
// (Turnstile-compatible siteverify endpoint).
package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mgoto/recipelog/internal/config"
)

// Client verifies challenge response tokens against the configured endpoint.
// Calls are synchronous with a short timeout; the admission pipeline treats
// any error as a failed verification (fail-closed).
type Client struct {
	endpoint string
	secret   string
	http     *http.Client
}

// NewClient creates a verification client from config.
func NewClient(cfg config.VerifyConfig) *Client {
	return &Client{
		endpoint: cfg.URL,
		secret:   cfg.Secret,
		http:     &http.Client{Timeout: cfg.Timeout},
	}
}

// siteverifyResponse is the subset of the API response we consume.
type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify posts the response token with the server secret and reports whether
// the API confirmed it. A reachable API answering success=false returns
// (false, nil); transport and decode failures return an error.
func (c *Client) Verify(ctx context.Context, responseToken string) (bool, error) {
	form := url.Values{
		"secret":   []string{c.secret},
		"response": []string{responseToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("verify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("verify: call API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("verify: API returned status %d", resp.StatusCode)
	}

	var body siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("verify: decode response: %w", err)
	}

	return body.Success, nil
}

// Timeout returns the configured HTTP timeout. Exposed for logging.
func (c *Client) Timeout() time.Duration {
	return c.http.Timeout
}
