package push

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

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultMaxRetries bounds redelivery of a single message on 5xx or transport errors.
const DefaultMaxRetries = 3

// Message is the JSON body posted to the webhook.
type Message struct {
	PetCode            string    `json:"petCode"`
	Title              string    `json:"title"`
	Body               string    `json:"body"`
	Tag                string    `json:"tag"`
	RequireInteraction bool      `json:"requireInteraction"`
	SentAt             time.Time `json:"sentAt"`
}

// Client posts notifications to a push webhook.
type Client struct {
	url        string
	httpClient *http.Client
	maxRetries uint64
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is wrapped for tracing.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithMaxRetries overrides DefaultMaxRetries.
func WithMaxRetries(n uint64) Option {
	return func(c *Client) { c.maxRetries = n }
}

// SendOption configures a single Send.
type SendOption func(*sendOptions)

type sendOptions struct {
	idempotencyKey string
}

// WithIdempotencyKey sets the Idempotency-Key header so retried deliveries are deduplicated.
func WithIdempotencyKey(key string) SendOption {
	return func(opts *sendOptions) {
		opts.idempotencyKey = strings.TrimSpace(key)
	}
}

// NewClient builds a webhook client for url.
func NewClient(url string, opts ...Option) (*Client, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("push webhook URL is required")
	}
	c := &Client{
		url:        url,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		maxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	traced := *c.httpClient
	traced.Transport = otelhttp.NewTransport(base)
	c.httpClient = &traced
	return c, nil
}

// Send posts msg, retrying transport failures and 5xx responses with exponential backoff.
// 4xx responses are permanent.
func (c *Client) Send(ctx context.Context, msg Message, optFns ...SendOption) error {
	if c == nil || c.httpClient == nil {
		return errors.New("push client not configured")
	}
	var opts sendOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode push message: %w", err)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	return backoff.Retry(func() error {
		return c.post(ctx, body, opts)
	}, policy)
}

func (c *Client) post(ctx context.Context, body []byte, opts sendOptions) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("build push request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if opts.idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", opts.idempotencyKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call push webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("push webhook error: %s", resp.Status)
	default:
		return backoff.Permanent(fmt.Errorf("push webhook rejected message: %s", resp.Status))
	}
}
