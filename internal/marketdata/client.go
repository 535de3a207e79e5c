// Package marketdata fetches price, fundamental, earnings, news, and filing
// data from public providers (Yahoo Finance, Alpha Vantage, SEC EDGAR).
//
// Results are rendered to compact plain text for the model. Nothing is
// cached: every query fetches fresh data.
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jqian-ml/agent-finie/internal/validate"
)

const (
	defaultYahooBaseURL        = "https://query1.finance.yahoo.com"
	defaultAlphaVantageBaseURL = "https://www.alphavantage.co"
	defaultEDGARBaseURL        = "https://www.sec.gov"
	defaultEDGARDataBaseURL    = "https://data.sec.gov"

	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3

	// maxBodySize caps provider responses; EDGAR submission files run large.
	maxBodySize = 8 * 1024 * 1024
)

// Config customises a Client. Zero values fall back to defaults; base URLs
// are overridable so tests can point at local servers.
type Config struct {
	YahooBaseURL        string
	AlphaVantageBaseURL string
	AlphaVantageKey     string
	EDGARBaseURL        string
	EDGARDataBaseURL    string
	UserAgent           string
	Timeout             time.Duration
	MaxRetries          int
	HTTPClient          *http.Client
}

// Client is a shared HTTP front for all market-data providers.
type Client struct {
	yahooBase  string
	avBase     string
	avKey      string
	edgarBase  string
	edgarData  string
	userAgent  string
	maxRetries int
	httpClient *http.Client
	now        func() time.Time // injectable for news-window tests
}

// New returns a Client with defaults applied for any unset Config field.
func New(cfg Config) *Client {
	c := &Client{
		yahooBase:  cfg.YahooBaseURL,
		avBase:     cfg.AlphaVantageBaseURL,
		avKey:      cfg.AlphaVantageKey,
		edgarBase:  cfg.EDGARBaseURL,
		edgarData:  cfg.EDGARDataBaseURL,
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
		httpClient: cfg.HTTPClient,
		now:        time.Now,
	}
	if c.yahooBase == "" {
		c.yahooBase = defaultYahooBaseURL
	}
	if c.avBase == "" {
		c.avBase = defaultAlphaVantageBaseURL
	}
	if c.edgarBase == "" {
		c.edgarBase = defaultEDGARBaseURL
	}
	if c.edgarData == "" {
		c.edgarData = defaultEDGARDataBaseURL
	}
	if c.userAgent == "" {
		c.userAgent = "agent-finie/1.0 (finance research agent)"
	}
	if c.maxRetries <= 0 {
		c.maxRetries = defaultMaxRetries
	}
	if c.httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}
	return c
}

// httpStatusError carries a non-2xx status through the retry loop.
type httpStatusError struct {
	status int
	url    string
}

func (e httpStatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.status, e.url)
}

// getJSON fetches a URL with exponential-backoff retries. 429 and 5xx are
// retried; other 4xx stop immediately with a ToolError the model can read.
func (c *Client) getJSON(ctx context.Context, rawURL string) ([]byte, error) {
	op := func() ([]byte, error) {
		b, err := c.fetch(ctx, rawURL)
		var se httpStatusError
		if errors.As(err, &se) {
			switch {
			case se.status == http.StatusTooManyRequests || se.status >= 500:
				return nil, err // retryable
			case se.status == http.StatusNotFound:
				return nil, backoff.Permanent(error(validate.ToolError{
					Code:    "ERR_NOT_FOUND",
					Message: "no data at upstream endpoint; the ticker may be invalid or delisted",
				}))
			default:
				return nil, backoff.Permanent(error(validate.ToolError{
					Code:    "ERR_UPSTREAM",
					Message: se.Error(),
				}))
			}
		}
		return b, err
	}

	b, err := backoff.Retry(ctx, op, backoff.WithMaxTries(uint(c.maxRetries)))
	if err != nil {
		var se httpStatusError
		if errors.As(err, &se) && se.status == http.StatusTooManyRequests {
			return nil, validate.ToolError{
				Code:    "ERR_RATE_LIMITED",
				Message: "upstream rate limit; try again in a moment",
			}
		}
		return nil, err
	}
	return b, nil
}

// fetch performs a single GET attempt.
func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	// EDGAR rejects requests without a declared User-Agent; the other
	// providers just get the same one.
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpStatusError{status: resp.StatusCode, url: rawURL}
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(b) > maxBodySize {
		return nil, backoff.Permanent(error(validate.ToolError{
			Code:    "ERR_UPSTREAM",
			Message: "response exceeds size limit",
		}))
	}
	return b, nil
}
