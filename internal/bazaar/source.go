package bazaar

import (
	"context"
	"log/slog"
	"time"

	"github.com/skyforge/skycalc/internal/cache"
	"github.com/skyforge/skycalc/internal/domain"
	"github.com/skyforge/skycalc/internal/ratelimit"
)

const snapshotKey = "bazaar:snapshot"

// Source serves per-item bazaar quotes from one cached bulk snapshot.
// A cache hit bypasses the relay chain entirely; a failed refresh never
// writes zeros into the cache.
type Source struct {
	client  *Client
	cache   *cache.Tiered
	limiter *ratelimit.Limiter
}

// NewSource builds the bazaar price source.
func NewSource(client *Client, c *cache.Tiered, limiter *ratelimit.Limiter) *Source {
	return &Source{client: client, cache: c, limiter: limiter}
}

// SellValue is the source's default, seller-oriented price: the best
// buy-order price (what other players currently pay), falling back to
// the best sell-order price when no buy order exists.
func (s *Source) SellValue(ctx context.Context, itemID string) domain.PriceResult {
	products, err := s.snapshot(ctx)
	if err != nil {
		return domain.Transient()
	}
	p, ok := products[itemID]
	switch {
	case !ok:
		return domain.NotFound()
	case p.HasBuyOrder:
		return domain.Ok(p.BuyOrderPrice)
	case p.HasSellOrder:
		return domain.Ok(p.SellOrderPrice)
	default:
		return domain.NotFound()
	}
}

// BuyCost is the explicit inverse side: the best sell-order price (what
// acquiring the item costs), falling back to the best buy-order price.
// Calculation engines pricing their inputs must use this, not SellValue.
func (s *Source) BuyCost(ctx context.Context, itemID string) domain.PriceResult {
	products, err := s.snapshot(ctx)
	if err != nil {
		return domain.Transient()
	}
	p, ok := products[itemID]
	switch {
	case !ok:
		return domain.NotFound()
	case p.HasSellOrder:
		return domain.Ok(p.SellOrderPrice)
	case p.HasBuyOrder:
		return domain.Ok(p.BuyOrderPrice)
	default:
		return domain.NotFound()
	}
}

// All returns a quote for every item in the current snapshot, keyed by
// item id. Used to warm caches and by the refresh command.
func (s *Source) All(ctx context.Context) (map[string]domain.PriceQuote, error) {
	products, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	quotes := make(map[string]domain.PriceQuote, len(products))
	for id, p := range products {
		amount := p.BuyOrderPrice
		if !p.HasBuyOrder {
			amount = p.SellOrderPrice
		}
		quotes[id] = domain.PriceQuote{
			ItemID:    id,
			Amount:    amount,
			Source:    domain.SourceBazaar,
			FetchedAt: now,
		}
	}
	return quotes, nil
}

func (s *Source) snapshot(ctx context.Context) (map[string]Product, error) {
	var cached map[string]Product
	if s.cache.GetJSON(ctx, snapshotKey, &cached) {
		return cached, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	products, err := s.client.FetchProducts(ctx)
	s.limiter.Done()
	if err != nil {
		slog.Warn("bazaar refresh failed, prices unavailable this cycle", "error", err)
		return nil, err
	}

	s.cache.SetJSON(ctx, snapshotKey, products)
	return products, nil
}
