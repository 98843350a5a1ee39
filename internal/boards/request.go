package boards

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/jobbot/internal/utils"
)

const (
	contentEncoding = "gzip"
	maxBodySize     = 8 << 20
)

// Item is a single undecoded element of a JSON array response.
type Item any

// StatusError is returned for non-200 responses.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status: %s", e.Status)
}

// GetItems fetches a JSON array and returns its elements undecoded.
func (c *Client) GetItems(ctx context.Context, rawURL string, q url.Values) ([]Item, error) {
	body, err := c.get(ctx, rawURL, q, "application/json")
	if err != nil {
		return nil, err
	}

	var items []Item
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}

	c.logger.Debug("got items", zap.String("url", rawURL), zap.Int("count", len(items)))

	return items, nil
}

// get performs a GET request, retrying rate limits, server errors and
// timeouts with exponential backoff.
func (c *Client) get(ctx context.Context, rawURL string, q url.Values, accept string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := c.RetryWait * time.Duration(1<<(attempt-1))
			c.logger.Debug("retrying request",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(lastErr),
			)
			if err := utils.WaitFor(ctx, wait); err != nil {
				return nil, err
			}
		}

		body, err := c.do(ctx, rawURL, q, accept)
		if err == nil {
			return body, nil
		}

		lastErr = err
		if !retryable(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *Client) do(ctx context.Context, rawURL string, q url.Values, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	req = c.setHeaders(req)
	req.Header.Set("Accept", accept)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	c.logger.Debug("make request", zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == contentEncoding {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}

	return io.ReadAll(io.LimitReader(reader, maxBodySize))
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)

	return req
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= http.StatusInternalServerError
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
