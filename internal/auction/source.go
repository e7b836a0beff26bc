package auction

import (
	"context"
	"errors"

	"github.com/skyforge/skycalc/internal/cache"
	"github.com/skyforge/skycalc/internal/domain"
	"github.com/skyforge/skycalc/internal/ratelimit"
)

// ListingClient is the upstream subset the Source needs.
type ListingClient interface {
	ActiveBINs(ctx context.Context, itemID string) ([]Listing, error)
	PriceSummary(ctx context.Context, itemID string) (PriceSummary, error)
}

// cachedPrice is what the cache holds per item/variant: the amount plus
// the status that produced it, so a confirmed zero survives the round
// trip as NotFound rather than turning into a fake Ok(0).
type cachedPrice struct {
	Amount float64       `json:"amount"`
	Status domain.Status `json:"status"`
}

// Source serves lowest/average BIN prices with per-item caching.
//
// A confirmed "no listings" response is cached as zero for the expiry
// window: the absence of a market is itself informative and not worth
// re-asking upstream about. Transient failures are never cached; the
// next call retries.
type Source struct {
	client  ListingClient
	cache   *cache.Tiered
	limiter *ratelimit.Limiter
}

// NewSource builds the auction price source.
func NewSource(client ListingClient, c *cache.Tiered, limiter *ratelimit.Limiter) *Source {
	return &Source{client: client, cache: c, limiter: limiter}
}

// LowestBIN returns the cheapest active BIN price for the item. The
// upstream orders listings cheapest first; the first entry is the price.
func (s *Source) LowestBIN(ctx context.Context, itemID string) domain.PriceResult {
	return s.lookup(ctx, "auction:lowest:"+itemID, func() (float64, error) {
		listings, err := s.client.ActiveBINs(ctx, itemID)
		if err != nil {
			return 0, err
		}
		return listings[0].Price(), nil
	})
}

// AverageBIN returns the arithmetic mean over all active BIN listings.
// The naive mean is the observed upstream behavior; a trimmed mean would
// resist outliers but is a behavior change, not a bug fix.
func (s *Source) AverageBIN(ctx context.Context, itemID string) domain.PriceResult {
	return s.lookup(ctx, "auction:avg:"+itemID, func() (float64, error) {
		listings, err := s.client.ActiveBINs(ctx, itemID)
		if errors.Is(err, ErrNoListings) {
			return 0, err
		}
		if err != nil {
			// Cheaper by-tag aggregate as fallback when the listing
			// query fails outright.
			summary, sumErr := s.client.PriceSummary(ctx, itemID)
			if errors.Is(sumErr, ErrNoListings) {
				// The fallback confirmed the item has no market; report
				// that, not the listing query's transient failure.
				return 0, sumErr
			}
			if sumErr != nil {
				return 0, err
			}
			return summary.Mean, nil
		}
		var total float64
		for _, l := range listings {
			total += l.Price()
		}
		return total / float64(len(listings)), nil
	})
}

func (s *Source) lookup(ctx context.Context, key string, fetch func() (float64, error)) domain.PriceResult {
	var cached cachedPrice
	if s.cache.GetJSON(ctx, key, &cached) {
		return domain.PriceResult{Amount: cached.Amount, Status: cached.Status}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return domain.Transient()
	}
	amount, err := fetch()
	s.limiter.Done()

	switch {
	case errors.Is(err, ErrNoListings):
		s.cache.SetJSON(ctx, key, cachedPrice{Status: domain.StatusNotFound})
		return domain.NotFound()
	case err != nil:
		return domain.Transient()
	default:
		s.cache.SetJSON(ctx, key, cachedPrice{Amount: amount, Status: domain.StatusOK})
		return domain.Ok(amount)
	}
}
