// Package auction fetches per-item BIN listing prices from the auction
// data service. Unlike the bazaar upstream this service is reachable
// directly, so no relay chain is involved.
package auction

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrNoListings is returned when the upstream explicitly reports that no
// listings exist for an item. This is a confirmed absence, not a failure.
var ErrNoListings = errors.New("no listings for item")

// Listing is one active fixed-price ("buy it now") listing.
type Listing struct {
	UUID             string  `json:"uuid"`
	StartingBid      float64 `json:"startingBid"`
	HighestBidAmount float64 `json:"highestBidAmount"`
	Bin              bool    `json:"bin"`
}

// Price returns the listing's effective price.
func (l Listing) Price() float64 {
	if l.HighestBidAmount > l.StartingBid {
		return l.HighestBidAmount
	}
	return l.StartingBid
}

// PriceSummary is the by-tag aggregate the upstream offers as a cheaper
// fallback query.
type PriceSummary struct {
	Median float64 `json:"median"`
	Mean   float64 `json:"mean"`
}

// Client queries the auction data service, one item per request.
type Client struct {
	http *resty.Client
}

// NewClient builds an auction client for baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

// ActiveBINs returns the item's active BIN listings, cheapest first.
// An upstream 404 (and an empty listing array) means ErrNoListings.
func (c *Client) ActiveBINs(ctx context.Context, itemID string) ([]Listing, error) {
	var listings []Listing
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&listings).
		SetPathParam("tag", itemID).
		Get("/api/auctions/tag/{tag}/active/bin")
	if err != nil {
		return nil, fmt.Errorf("fetching BIN listings for %s: %w", itemID, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrNoListings
	}
	if resp.IsError() {
		return nil, fmt.Errorf("auction upstream HTTP %d for %s", resp.StatusCode(), itemID)
	}
	if len(listings) == 0 {
		return nil, ErrNoListings
	}
	return listings, nil
}

// PriceSummary returns the by-tag median/mean aggregate for an item.
func (c *Client) PriceSummary(ctx context.Context, itemID string) (PriceSummary, error) {
	var summary PriceSummary
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&summary).
		SetPathParam("tag", itemID).
		Get("/api/item/price/{tag}")
	if err != nil {
		return PriceSummary{}, fmt.Errorf("fetching price summary for %s: %w", itemID, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return PriceSummary{}, ErrNoListings
	}
	if resp.IsError() {
		return PriceSummary{}, fmt.Errorf("auction upstream HTTP %d for %s", resp.StatusCode(), itemID)
	}
	return summary, nil
}
