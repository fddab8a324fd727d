package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/sensor-feed-dashboard/internal/pipeline"
)

// Client connects to the feed source over HTTP.
// It implements pipeline.Connector.
type Client struct {
	url         string
	httpClient  *http.Client
	readTimeout time.Duration
	clock       clockwork.Clock
	logger      *slog.Logger
}

// NewClient creates a feed client. connectTimeout bounds dialing and the wait
// for response headers; readTimeout, when positive, bounds the wait for each
// line once streaming.
func NewClient(url string, connectTimeout, readTimeout time.Duration, logger *slog.Logger) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: connectTimeout, KeepAlive: 30 * time.Second}).DialContext
	transport.ResponseHeaderTimeout = connectTimeout
	// Compressed event streams buffer on some proxies; ask for identity.
	transport.DisableCompression = true

	return &Client{
		url: url,
		// No Client.Timeout: it would cap the lifetime of the stream.
		httpClient:  &http.Client{Transport: transport},
		readTimeout: readTimeout,
		clock:       clockwork.NewRealClock(),
		logger:      logger,
	}
}

// Connect opens the long-lived feed response.
func (c *Client) Connect(ctx context.Context) (pipeline.LineReader, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", c.url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("connect %s: status %d: %s", c.url, resp.StatusCode, body)
	}

	c.logger.Info("feed connected", "url", c.url, "content_type", resp.Header.Get("Content-Type"))
	return NewStream(resp.Body, c.readTimeout, c.clock), nil
}
