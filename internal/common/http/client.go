package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// maxBodyBytes caps upstream payloads read into memory.
const maxBodyBytes = 4 << 20

var ErrTimeout = errors.New("UPSTREAM_TIMEOUT")

// Client performs outbound calls with a bounded per-call timeout.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
	}
}

// NewClientWith uses a caller-supplied http.Client, e.g. an httptest server client.
func NewClientWith(hc *http.Client, timeout time.Duration) *Client {
	return &Client{httpClient: hc, timeout: timeout}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// Get issues a GET and returns the status code and body. A non-2xx status is
// not an error; callers decide how to treat it. Returned errors never carry
// the query string, which holds upstream credentials.
func (c *Client) Get(ctx context.Context, rawURL string) (int, []byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", unwrapURLError(err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return 0, nil, ErrTimeout
		}
		return 0, nil, fmt.Errorf("GET %s: %w", redact(req.URL), unwrapURLError(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return resp.StatusCode, nil, ErrTimeout
		}
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", unwrapURLError(err))
	}
	return resp.StatusCode, body, nil
}

// unwrapURLError drops the *url.Error wrapper, whose message embeds the full URL.
func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

func redact(u *url.URL) string {
	return u.Scheme + "://" + u.Host + u.Path
}
