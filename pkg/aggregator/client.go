package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rounduppay/core/pkg/config"
	"github.com/rounduppay/core/pkg/model"
	"github.com/rounduppay/core/pkg/money"
)

// Client is the aggregator HTTP client.
type Client struct {
	baseURL    string
	clientID   string
	secret     string
	httpClient *http.Client
	logger     *log.Logger
}

// ClientOption is a functional option for configuring the client.
type ClientOption func(*Client)

// WithLogger sets a custom logger for the client.
func WithLogger(logger *log.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithHTTPClient overrides the underlying *http.Client (tests inject a
// client pointed at an httptest.Server).
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

// baseURLByEnv maps PLAID_ENV to its aggregator host, mirroring the
// sandbox/development/production environment selection Plaid-shaped
// aggregators expose.
var baseURLByEnv = map[string]string{
	"sandbox":     "https://sandbox.plaid.com",
	"development": "https://development.plaid.com",
	"production":  "https://production.plaid.com",
}

// NewClient builds an aggregator client from configuration.
func NewClient(cfg *config.Config, opts ...ClientOption) *Client {
	baseURL, ok := baseURLByEnv[cfg.PlaidEnv]
	if !ok {
		baseURL = baseURLByEnv["sandbox"]
	}

	c := &Client{
		baseURL:    baseURL,
		clientID:   cfg.PlaidClientID,
		secret:     cfg.PlaidSecret,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     log.New(log.Writer(), "[Aggregator] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type connectGetOptions struct {
	GTE string `json:"gte"`
	LTE string `json:"lte,omitempty"`
}

type connectGetResponse struct {
	Transactions []rawTransactionDTO `json:"transactions"`
}

type rawTransactionDTO struct {
	ID      string  `json:"_id"`
	Amount  float64 `json:"amount"`
	Date    string  `json:"date"`
	Name    string  `json:"name"`
	Pending bool    `json:"pending"`
}

// GetTransactions posts to the aggregator's /connect/get with the given
// access token and date range, and returns the raw transactions it
// reports. A non-200 response aborts this user per the spec and is
// reported as ErrAggregatorHTTPError.
func (c *Client) GetTransactions(ctx context.Context, accessToken, gte, lte string) ([]model.RawTransaction, error) {
	optionsJSON, err := json.Marshal(connectGetOptions{GTE: gte, LTE: lte})
	if err != nil {
		return nil, fmt.Errorf("aggregator: marshaling options: %w", err)
	}

	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("secret", c.secret)
	form.Set("access_token", accessToken)
	form.Set("options", string(optionsJSON))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/connect/get", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("aggregator: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("request to %s failed: %v", c.baseURL, err)
		return nil, fmt.Errorf("%w: %v", ErrAggregatorHTTPError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("aggregator: reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Printf("non-200 response from %s: %d %s", c.baseURL, resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: status %d", ErrAggregatorHTTPError, resp.StatusCode)
	}

	var parsed connectGetResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("aggregator: parsing response: %w", err)
	}

	out := make([]model.RawTransaction, 0, len(parsed.Transactions))
	for _, dto := range parsed.Transactions {
		amount, err := money.FromFloat(dto.Amount)
		if err != nil {
			c.logger.Printf("dropping transaction %s with non-finite amount", dto.ID)
			continue
		}
		out = append(out, model.RawTransaction{
			ID:      dto.ID,
			Amount:  amount,
			Date:    dto.Date,
			Name:    dto.Name,
			Pending: dto.Pending,
		})
	}
	return out, nil
}
