package signerhook

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// Client triggers the external signer's /aws/sqs webhook.
type Client struct {
	signerURL  string
	httpClient *http.Client
	logger     *log.Logger
}

// ClientOption is a functional option for configuring the client.
type ClientOption func(*Client)

// WithLogger sets a custom logger for the client.
func WithLogger(logger *log.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithHTTPClient overrides the underlying *http.Client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

// NewClient builds a signer-hook client for signerURL (the configured
// SIGNER_URL, without a trailing /aws/sqs).
func NewClient(signerURL string, opts ...ClientOption) *Client {
	c := &Client{
		signerURL:  strings.TrimSuffix(signerURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     log.New(log.Writer(), "[SignerHook] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Trigger POSTs an empty body to ${SIGNER_URL}/aws/sqs, resolving once the
// response has been read. Errors here are fatal to the calling user's run.
func (c *Client) Trigger(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.signerURL+"/aws/sqs", nil)
	if err != nil {
		return fmt.Errorf("signerhook: building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("trigger to %s failed: %v", c.signerURL, err)
		return fmt.Errorf("%w: %v", ErrSignerHTTPError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Printf("non-2xx response from %s: %d", c.signerURL, resp.StatusCode)
		return fmt.Errorf("%w: status %d", ErrSignerHTTPError, resp.StatusCode)
	}
	return nil
}
