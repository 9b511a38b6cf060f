// Package yahoo provides a client for the Yahoo Finance API
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/jdelorme/sillage/internal/common"
	"github.com/jdelorme/sillage/internal/interfaces"
	"github.com/jdelorme/sillage/internal/models"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second

	// ChartMonths is the trailing history requested from the chart
	// endpoint. 13 months guarantees a full year of lookbacks even when
	// the 12-month boundary lands on a market holiday.
	ChartMonths = 13

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Client implements ChartClient, FundamentalsClient and SearchClient
// against the Yahoo Finance endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	now        func() time.Time // injectable clock for testing
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
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

// WithClock sets the time source used for chart range calculation.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new Yahoo Finance client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an upstream API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Yahoo API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Yahoo API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// chartResponse mirrors the v8 chart payload. Close values arrive as JSON
// nulls on non-trading days, so they decode as nil pointers.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
				Currency           string   `json:"currency"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetChart retrieves ~13 months of daily price history for a symbol.
// The second return value is the provider's live reference price, or NaN
// when the payload omits it.
func (c *Client) GetChart(ctx context.Context, symbol string) (*models.PriceSeries, float64, error) {
	now := c.now()
	params := url.Values{}
	params.Set("period1", fmt.Sprintf("%d", now.AddDate(0, -ChartMonths, 0).Unix()))
	params.Set("period2", fmt.Sprintf("%d", now.Unix()))
	params.Set("interval", "1d")
	params.Set("events", "div")

	path := fmt.Sprintf("/v8/finance/chart/%s", url.PathEscape(symbol))

	var resp chartResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, 0, err
	}

	if resp.Chart.Error != nil {
		return nil, 0, &APIError{
			StatusCode: http.StatusOK,
			Message:    resp.Chart.Error.Description,
			Endpoint:   path,
		}
	}

	if len(resp.Chart.Result) == 0 {
		return nil, 0, fmt.Errorf("no chart data for %s", symbol)
	}
	result := resp.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, 0, fmt.Errorf("malformed chart payload for %s", symbol)
	}

	// Prefer adjusted closes when the payload carries them; they match
	// what the quote closes would be after split/dividend adjustment.
	closes := result.Indicators.Quote[0].Close
	if len(result.Indicators.AdjClose) > 0 && len(result.Indicators.AdjClose[0].AdjClose) == len(result.Timestamp) {
		closes = result.Indicators.AdjClose[0].AdjClose
	}
	if len(closes) != len(result.Timestamp) {
		return nil, 0, fmt.Errorf("malformed chart payload for %s: %d timestamps, %d closes",
			symbol, len(result.Timestamp), len(closes))
	}

	reference := math.NaN()
	if result.Meta.RegularMarketPrice != nil {
		reference = *result.Meta.RegularMarketPrice
	}

	series := &models.PriceSeries{
		Symbol:     symbol,
		Currency:   result.Meta.Currency,
		Timestamps: result.Timestamp,
		Closes:     closes,
	}

	return series, reference, nil
}

// rawValue is Yahoo's {"raw": 1.23, "fmt": "1.23"} wrapper. Only the raw
// number matters here; an empty object decodes as absent.
type rawValue struct {
	Raw *float64 `json:"raw"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			SummaryDetail struct {
				TrailingPE                 rawValue `json:"trailingPE"`
				Beta                       rawValue `json:"beta"`
				DividendRate               rawValue `json:"dividendRate"`
				TrailingAnnualDividendRate rawValue `json:"trailingAnnualDividendRate"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics struct {
				ForwardPE         rawValue `json:"forwardPE"`
				Beta              rawValue `json:"beta"`
				LastDividendValue rawValue `json:"lastDividendValue"`
			} `json:"defaultKeyStatistics"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// GetFundamentals retrieves the primary fundamentals payload from the
// quoteSummary endpoint.
func (c *Client) GetFundamentals(ctx context.Context, symbol string) (*models.PrimaryFundamentals, error) {
	params := url.Values{}
	params.Set("modules", "summaryDetail,defaultKeyStatistics")

	path := fmt.Sprintf("/v10/finance/quoteSummary/%s", url.PathEscape(symbol))

	var resp quoteSummaryResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	if resp.QuoteSummary.Error != nil {
		return nil, &APIError{
			StatusCode: http.StatusOK,
			Message:    resp.QuoteSummary.Error.Description,
			Endpoint:   path,
		}
	}

	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no fundamentals data for %s", symbol)
	}
	result := resp.QuoteSummary.Result[0]

	beta := result.SummaryDetail.Beta.Raw
	if beta == nil {
		beta = result.DefaultKeyStatistics.Beta.Raw
	}

	return &models.PrimaryFundamentals{
		TrailingPE:                 result.SummaryDetail.TrailingPE.Raw,
		ForwardPE:                  result.DefaultKeyStatistics.ForwardPE.Raw,
		Beta:                       beta,
		DividendRate:               result.SummaryDetail.DividendRate.Raw,
		TrailingAnnualDividendRate: result.SummaryDetail.TrailingAnnualDividendRate.Raw,
		LastDividendValue:          result.DefaultKeyStatistics.LastDividendValue.Raw,
	}, nil
}

type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		Exchange  string `json:"exchange"`
		ExchDisp  string `json:"exchDisp"`
		QuoteType string `json:"quoteType"`
	} `json:"quotes"`
}

// Search looks up equity symbols by free-text query. Non-equity quote
// types (ETFs, futures, currencies) are filtered out.
func (c *Client) Search(ctx context.Context, query string) ([]models.SymbolMatch, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("quotesCount", "8")
	params.Set("newsCount", "0")
	params.Set("listsCount", "0")

	var resp searchResponse
	if err := c.get(ctx, "/v1/finance/search", params, &resp); err != nil {
		return nil, err
	}

	matches := make([]models.SymbolMatch, 0, len(resp.Quotes))
	for _, q := range resp.Quotes {
		if q.QuoteType != "EQUITY" {
			continue
		}
		name := q.ShortName
		if name == "" {
			name = q.LongName
		}
		if name == "" {
			name = q.Symbol
		}
		matches = append(matches, models.SymbolMatch{
			Symbol:   q.Symbol,
			Name:     name,
			Exchange: q.Exchange,
			ExchDisp: q.ExchDisp,
		})
	}

	return matches, nil
}

// Ensure Client implements the client contracts
var (
	_ interfaces.ChartClient        = (*Client)(nil)
	_ interfaces.FundamentalsClient = (*Client)(nil)
	_ interfaces.SearchClient       = (*Client)(nil)
)
