// Package fmp provides a client for the Financial Modeling Prep API.
// It is the secondary fundamentals source; every lookup is best-effort
// and callers absorb all errors from it.
package fmp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/jdelorme/sillage/internal/common"
	"github.com/jdelorme/sillage/internal/interfaces"
	"github.com/jdelorme/sillage/internal/models"
)

const (
	DefaultBaseURL   = "https://financialmodelingprep.com/api/v3"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// ErrNotConfigured signals that no API key was provided. The service layer
// treats it the same as any other secondary-source failure.
var ErrNotConfigured = errors.New("fmp client not configured")

// Client implements ProfileClient against the FMP profile endpoint.
type Client struct {
	baseURL    string
	apiKey     string
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

// NewClient creates a new FMP client. apiKey may be empty, in which case
// every lookup returns ErrNotConfigured.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
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

// APIError represents an upstream API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("FMP API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// profileResponse is one entry of the /profile payload. The endpoint has
// shipped both "pe" and "peRatio" over time; both are decoded and the
// merge layer picks whichever is present.
type profileResponse struct {
	Symbol       string   `json:"symbol"`
	PE           *float64 `json:"pe"`
	PERatio      *float64 `json:"peRatio"`
	Beta         *float64 `json:"beta"`
	LastDiv      *float64 `json:"lastDiv"`
	LastDividend *float64 `json:"lastDividend"`
}

// GetProfile retrieves the secondary fundamentals payload for a symbol.
func (c *Client) GetProfile(ctx context.Context, symbol string) (*models.SecondaryFundamentals, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	path := fmt.Sprintf("/profile/%s", url.PathEscape(symbol))
	params := url.Values{}
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("FMP API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	var profiles []profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&profiles); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("no profile data for %s", symbol)
	}
	p := profiles[0]

	pe := p.PE
	if pe == nil {
		pe = p.PERatio
	}
	lastDiv := p.LastDiv
	if lastDiv == nil {
		lastDiv = p.LastDividend
	}

	return &models.SecondaryFundamentals{
		PE:           pe,
		Beta:         p.Beta,
		LastDividend: lastDiv,
	}, nil
}

// Ensure Client implements ProfileClient
var _ interfaces.ProfileClient = (*Client)(nil)
