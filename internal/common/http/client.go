// internal/common/http/client.go
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Client posts JSON with a bounded number of attempts. Transport errors
// and 5xx responses are retried after a linearly growing delay; any other
// status is final.
type Client struct {
	retrying *retryablehttp.Client
}

type attemptsKey struct{}

func NewClient(timeout time.Duration, maxAttempts int, retryDelay time.Duration) *Client {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{Timeout: timeout}
	rc.Logger = nil
	rc.RetryMax = maxAttempts - 1
	rc.RetryWaitMin = retryDelay
	rc.RetryWaitMax = retryDelay * time.Duration(maxAttempts)
	rc.Backoff = linearBackoff
	rc.CheckRetry = retryTransportAndServerErrors
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.RequestLogHook = countAttempt

	return &Client{retrying: rc}
}

// StatusError is returned for a non-2xx final response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// PostJSON returns the number of attempts made alongside the final error.
func (c *Client) PostJSON(ctx context.Context, url string, payload interface{}) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal payload: %w", err)
	}

	attempts := 0
	ctx = context.WithValue(ctx, attemptsKey{}, &attempts)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.retrying.Do(req)
	if err != nil {
		return attempts, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return attempts, nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return attempts, &StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
}

func countAttempt(_ retryablehttp.Logger, req *http.Request, _ int) {
	if n, ok := req.Context().Value(attemptsKey{}).(*int); ok {
		*n++
	}
}

// retryNumber is zero for the wait before the second attempt.
func linearBackoff(min, _ time.Duration, retryNumber int, _ *http.Response) time.Duration {
	return min * time.Duration(retryNumber+1)
}

func retryTransportAndServerErrors(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	return resp.StatusCode >= 500, nil
}
