// Package bazaar fetches commodity order-book prices from the bazaar
// upstream through the CORS relay chain.
package bazaar

import (
	"context"
	"encoding/json"
	"fmt"
)

// Fetcher retrieves a target URL, already unwrapped from any relay
// envelope. validate is applied to each attempt's payload so a bad
// payload fails over to the next route. Satisfied by *relay.Chain.
type Fetcher interface {
	Fetch(ctx context.Context, target string, validate func([]byte) error) ([]byte, error)
}

// Product is the per-item order-book summary: the best (first) buy and
// sell order prices. Either side may be absent for thin markets.
type Product struct {
	BuyOrderPrice  float64 `json:"buyOrderPrice"`
	SellOrderPrice float64 `json:"sellOrderPrice"`
	HasBuyOrder    bool    `json:"hasBuyOrder"`
	HasSellOrder   bool    `json:"hasSellOrder"`
}

type orderSummary struct {
	PricePerUnit float64 `json:"pricePerUnit"`
}

type upstreamResponse struct {
	Success  bool `json:"success"`
	Products map[string]struct {
		BuySummary  []orderSummary `json:"buy_summary"`
		SellSummary []orderSummary `json:"sell_summary"`
	} `json:"products"`
}

// Client decodes the single bulk bazaar endpoint.
type Client struct {
	url     string
	fetcher Fetcher
}

// NewClient builds a bazaar client over the relay chain.
func NewClient(url string, fetcher Fetcher) *Client {
	return &Client{url: url, fetcher: fetcher}
}

// FetchProducts retrieves the order-book summary for every tradeable
// item; only the first (best) entry of each summary array is used.
// A malformed payload or an upstream-reported failure flag rejects the
// attempt inside the fetcher, so the relay chain keeps trying its
// remaining routes instead of surfacing the bad payload.
func (c *Client) FetchProducts(ctx context.Context) (map[string]Product, error) {
	var resp upstreamResponse
	_, err := c.fetcher.Fetch(ctx, c.url, func(payload []byte) error {
		var decoded upstreamResponse
		if err := json.Unmarshal(payload, &decoded); err != nil {
			return fmt.Errorf("parsing bazaar response: %w", err)
		}
		if !decoded.Success {
			return fmt.Errorf("bazaar upstream reported failure")
		}
		resp = decoded
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetching bazaar: %w", err)
	}

	products := make(map[string]Product, len(resp.Products))
	for id, p := range resp.Products {
		var out Product
		if len(p.BuySummary) > 0 {
			out.BuyOrderPrice = p.BuySummary[0].PricePerUnit
			out.HasBuyOrder = true
		}
		if len(p.SellSummary) > 0 {
			out.SellOrderPrice = p.SellSummary[0].PricePerUnit
			out.HasSellOrder = true
		}
		products[id] = out
	}
	return products, nil
}
