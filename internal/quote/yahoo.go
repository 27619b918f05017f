package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/renatodellosso/Stockbot/internal/domain"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=quote_test -destination=mock_http_client_test.go -source=yahoo.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

const defaultBaseURL = "https://query1.finance.yahoo.com"

// YahooClient fetches regular-market prices from the Yahoo Finance quote
// endpoint.
type YahooClient struct {
	baseURL    string
	httpClient HTTPClient
}

// YahooClientOption is a configuration option for the Yahoo client.
type YahooClientOption func(*YahooClient)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) YahooClientOption {
	return func(c *YahooClient) { c.baseURL = baseURL }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(httpClient HTTPClient) YahooClientOption {
	return func(c *YahooClient) { c.httpClient = httpClient }
}

// NewYahooClient creates a quote source backed by Yahoo Finance. The
// default HTTP client carries its own timeout as a backstop; callers still
// bound each lookup with a context deadline.
func NewYahooClient(options ...YahooClientOption) *YahooClient {
	c := &YahooClient{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, option := range options {
		option(c)
	}
	return c
}

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol             string   `json:"symbol"`
			RegularMarketPrice *float64 `json:"regularMarketPrice"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"quoteResponse"`
}

func (c *YahooClient) Quote(ctx context.Context, symbol string) (Quote, error) {
	u := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", c.baseURL, url.QueryEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: build quote request: %v", domain.ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: quote %s: %v", domain.ErrUnavailable, symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Quote{Symbol: symbol}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("%w: quote %s: status %d", domain.ErrUnavailable, symbol, resp.StatusCode)
	}

	var body yahooQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Quote{}, fmt.Errorf("%w: decode quote %s: %v", domain.ErrUnavailable, symbol, err)
	}
	for _, r := range body.QuoteResponse.Result {
		if r.Symbol == symbol && r.RegularMarketPrice != nil {
			return Quote{
				Symbol: symbol,
				Price:  decimal.NewFromFloat(*r.RegularMarketPrice),
				Found:  true,
			}, nil
		}
	}
	return Quote{Symbol: symbol}, nil
}
