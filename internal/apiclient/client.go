// Package apiclient reads the trading backend's JSON endpoints.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/trogers1052/stock-trader-dashboard/internal/models"
)

const (
	StocksPath  = "/stocks/"
	TradesPath  = "/trades/"
	SummaryPath = "/summary/"

	maxErrorBody = 512
)

// HTTPError is returned when the backend answers with a non-2xx status
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: status %d, body: %s", e.URL, e.StatusCode, e.Body)
}

// Client performs read-only requests against the trading API
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a new API client. A zero timeout keeps http.Client's default.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log.With().Str("component", "apiclient").Logger(),
	}
}

// BaseURL returns the configured API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a single GET against baseURL+path and returns the JSON body.
// Transport failures and non-2xx responses are returned as errors; nothing is retried.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug().Str("url", url).Msg("GET")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			URL:        url,
			Body:       truncate(string(bytes.TrimSpace(body)), maxErrorBody),
		}
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("failed to decode response from %s: invalid JSON", url)
	}

	return json.RawMessage(body), nil
}

// Stocks fetches the watchlist snapshots
func (c *Client) Stocks(ctx context.Context) ([]models.Stock, error) {
	payload, err := c.Get(ctx, StocksPath)
	if err != nil {
		return nil, err
	}
	return NormaliseList[models.Stock](payload)
}

// Trades fetches the trade history
func (c *Client) Trades(ctx context.Context) ([]models.Trade, error) {
	payload, err := c.Get(ctx, TradesPath)
	if err != nil {
		return nil, err
	}
	return NormaliseList[models.Trade](payload)
}

// Summary fetches the dashboard summary object. A JSON null body yields a nil
// summary, which the dashboard treats as no figures to show.
func (c *Client) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	payload, err := c.Get(ctx, SummaryPath)
	if err != nil {
		return nil, err
	}

	var summary *models.DashboardSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}
	return summary, nil
}

// Ping checks the API answers; the summary endpoint is the cheapest of the three
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Get(ctx, SummaryPath)
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
