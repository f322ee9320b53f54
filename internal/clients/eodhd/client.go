// Package eodhd provides a client for the EODHD market data API
package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
)

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultExchange  = "NSE"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// flexFloat64 handles JSON values that may be either a number or a string
// (the real-time endpoint returns "NA" for halted tickers).
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "NA" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// realTimeQuote is the wire shape of the real-time price endpoint.
type realTimeQuote struct {
	Code      string      `json:"code"`
	Close     flexFloat64 `json:"close"`
	Timestamp int64       `json:"timestamp"`
}

// Client implements the PriceFeed interface against the EODHD API.
type Client struct {
	baseURL    string
	apiKey     string
	exchange   string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithExchange sets the default exchange suffix appended to bare symbols.
func WithExchange(exchange string) ClientOption {
	return func(c *Client) {
		c.exchange = exchange
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new EODHD client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		apiKey:   apiKey,
		exchange: DefaultExchange,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("eodhd %s: %d %s", e.Endpoint, e.StatusCode, e.Message)
}

// Ticker returns the full EODHD-format ticker for a symbol, appending the
// configured exchange suffix when the symbol has none (e.g. "INFY" → "INFY.NSE").
func (c *Client) Ticker(symbol string) string {
	if strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + "." + c.exchange
}

// GetRealTimeQuote fetches the current price for a single symbol.
func (c *Client) GetRealTimeQuote(ctx context.Context, symbol string) (float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	endpoint := fmt.Sprintf("%s/real-time/%s", c.baseURL, url.PathEscape(c.Ticker(symbol)))
	reqURL := fmt.Sprintf("%s?api_token=%s&fmt=json", endpoint, url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch quote for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   "/real-time",
		}
	}

	var quote realTimeQuote
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return 0, fmt.Errorf("decode quote for %s: %w", symbol, err)
	}

	return float64(quote.Close), nil
}

// GetQuotes fetches current prices for the given symbols. Symbols that fail
// to quote (HTTP error, timeout, zero/absent price) are omitted from the
// result; downstream stages treat absence as "price unavailable". The map
// is complete before it is returned; no partial view is ever observed.
func (c *Client) GetQuotes(ctx context.Context, symbols []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(symbols))

	for _, symbol := range symbols {
		price, err := c.GetRealTimeQuote(ctx, symbol)
		if err != nil {
			if ctx.Err() != nil {
				// Whole-feed cancellation: return what we have so far;
				// remaining symbols are simply unavailable.
				c.logger.Warn().Err(ctx.Err()).Msg("Price fetch cancelled")
				return prices, nil
			}
			c.logger.Warn().Err(err).Str("symbol", symbol).Msg("Price unavailable")
			continue
		}
		if price <= 0 {
			c.logger.Warn().Str("symbol", symbol).Msg("Feed returned non-positive price, treating as unavailable")
			continue
		}
		prices[symbol] = price
		c.logger.Debug().Str("symbol", symbol).Str("price", strconv.FormatFloat(price, 'f', 2, 64)).Msg("Quote fetched")
	}

	c.logger.Info().Int("requested", len(symbols)).Int("quoted", len(prices)).Msg("Price fetch complete")
	return prices, nil
}

// Ensure Client implements PriceFeed
var _ interfaces.PriceFeed = (*Client)(nil)
