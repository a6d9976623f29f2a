// Package warera provides a client for the WarEra item trading price endpoint.
package warera

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public WarEra API host.
const DefaultBaseURL = "https://api2.warera.io"

const pricesPath = "/trpc/itemTrading.getPrices"

// Client defines the WarEra price operations.
type Client interface {
	// GetPrices fetches the current unit price of every traded item.
	GetPrices(ctx context.Context) (*PricesResponse, error)
}

// PricesResponse is the tRPC envelope returned by itemTrading.getPrices.
type PricesResponse struct {
	Result PricesResult `json:"result"`
}

// PricesResult wraps the price map. A nil value is a JSON null price.
type PricesResult struct {
	Data map[string]*float64 `json:"data"`
}

// StatusError is returned when the endpoint answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("warera: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Option configures the WarEra client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout sets the overall request timeout. A value <= 0 keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *httpClient) {
		c.userAgent = ua
	}
}

// WithRatePerMinute caps outgoing requests. A value <= 0 disables limiting.
func WithRatePerMinute(perMinute float64) Option {
	return func(c *httpClient) {
		if perMinute > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perMinute/60), 1)
		} else {
			c.limiter = nil
		}
	}
}

type httpClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
}

// NewClient creates a new WarEra client. Requests are limited to 30 per
// minute unless overridden.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:   DefaultBaseURL,
		userAgent: "market-history/1.0",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(30.0/60), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wait blocks until the rate limiter allows one event, or ctx is cancelled.
func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *httpClient) GetPrices(ctx context.Context) (*PricesResponse, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "warera: rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pricesPath, nil)
	if err != nil {
		return nil, eris.Wrap(err, "warera: create request")
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "warera: request failed")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "warera: read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result PricesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "warera: unmarshal response")
	}
	if result.Result.Data == nil {
		return nil, eris.New("warera: response has no result.data")
	}

	return &result, nil
}
