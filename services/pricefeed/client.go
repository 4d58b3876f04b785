package pricefeed

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CoinGecko simple-price endpoint constants
const (
	CoinGeckoBaseURL = "https://api.coingecko.com/api/v3/simple/price"
	AssetID          = "bitcoin"
	RequestTimeout   = 10 * time.Second
)

// Client fetches BTC prices from the CoinGecko public API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new price feed client
func NewClient() *Client {
	return &Client{
		baseURL: CoinGeckoBaseURL,
		httpClient: &http.Client{
			Timeout: RequestTimeout,
		},
	}
}

// NewClientWithBaseURL creates a client against a non-default endpoint.
// Used by tests to point at a local server.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

// simplePriceResponse represents the CoinGecko simple/price response,
// a JSON object keyed by asset name with a nested currency->price map.
type simplePriceResponse map[string]map[string]decimal.Decimal

// Fetch returns the current BTC price for every requested currency the
// upstream source recognizes; unrecognized codes are simply absent from
// the result. Failures of any kind (network, timeout, non-200 status,
// malformed body) are logged and yield an empty map, never an error:
// downstream treats an empty map as "nothing to persist this cycle".
func (c *Client) Fetch(ctx context.Context, currencies []string) map[string]decimal.Decimal {
	prices := map[string]decimal.Decimal{}
	if len(currencies) == 0 {
		return prices
	}

	lowered := make([]string, 0, len(currencies))
	for _, currency := range currencies {
		lowered = append(lowered, strings.ToLower(currency))
	}

	params := url.Values{}
	params.Set("ids", AssetID)
	params.Set("vs_currencies", strings.Join(lowered, ","))
	endpoint := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		log.Printf("Price API request build failed: %v", err)
		return prices
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("Price API request failed: %v", err)
		return prices
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Price API returned status %d", resp.StatusCode)
		return prices
	}

	var payload simplePriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.Printf("Price API response decode failed: %v", err)
		return prices
	}

	for currency, value := range payload[AssetID] {
		prices[strings.ToLower(currency)] = value
	}
	return prices
}
