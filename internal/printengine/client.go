// Package printengine talks to the print engine, the external service that
// turns a styled HTML page into a paginated PDF.
package printengine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// MaxArtifactBytes caps the size of a rendered artifact.
const MaxArtifactBytes = 64 << 20

// Client calls the print engine HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	stats      *Stats
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		stats: NewStats(time.Hour),
	}
}

type renderRequest struct {
	HTML     string `json:"html"`
	Filename string `json:"filename,omitempty"`
}

// Render sends a complete HTML page and returns the PDF bytes.
func (c *Client) Render(ctx context.Context, page, filename string) ([]byte, error) {
	body, err := json.Marshal(renderRequest{HTML: page, Filename: filename})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate-pdf", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/pdf")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.stats.RecordFailure()
		return nil, &RetryableError{Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, MaxArtifactBytes+1))
	if err != nil {
		c.stats.RecordFailure()
		return nil, &RetryableError{StatusCode: resp.StatusCode, Message: "read response: " + err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		c.stats.RecordFailure()
	} else {
		c.stats.Record(time.Since(start).Milliseconds())
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("print engine status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}
	if len(respBody) > MaxArtifactBytes {
		return nil, fmt.Errorf("print engine artifact exceeds %d bytes", MaxArtifactBytes)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/pdf") {
		return nil, fmt.Errorf("print engine returned %s, expected application/pdf", ct)
	}
	if !bytes.HasPrefix(respBody, []byte("%PDF-")) {
		return nil, errors.New("print engine returned a body that is not a PDF")
	}
	return respBody, nil
}

// Ping checks that the print engine answers.
func (c *Client) Ping(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("print engine unreachable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 500 {
		return fmt.Errorf("print engine status %d", resp.StatusCode)
	}
	return nil
}

// Stats returns the rolling window of round trips.
func (c *Client) Stats() *Stats {
	return c.stats
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// RetryableError indicates a transient failure that can be retried.
// StatusCode is zero for transport failures.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("retryable error (transport): %s", truncate(e.Message, 200))
	}
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
