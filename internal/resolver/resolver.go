// Package resolver composes the item catalog with both price sources
// behind one lookup contract.
package resolver

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	lop "github.com/samber/lo/parallel"

	"github.com/skyforge/skycalc/internal/domain"
)

// BazaarSource is the bazaar lookup subset the resolver needs.
type BazaarSource interface {
	SellValue(ctx context.Context, itemID string) domain.PriceResult
	BuyCost(ctx context.Context, itemID string) domain.PriceResult
}

// AuctionSource is the auction lookup subset the resolver needs.
type AuctionSource interface {
	LowestBIN(ctx context.Context, itemID string) domain.PriceResult
	AverageBIN(ctx context.Context, itemID string) domain.PriceResult
}

// Catalog resolves display names to item ids.
type Catalog interface {
	Resolve(displayName string) string
}

// Purger is a cache that can be cleared on demand.
type Purger interface {
	Clear(ctx context.Context)
}

// Request describes one price lookup.
type Request struct {
	// Name is the display name or item id to price.
	Name string `json:"name"`
	// Source selects the market; SourceCoins short-circuits to Literal.
	Source domain.Source `json:"source"`
	// Literal is the fixed cost returned unmodified for SourceCoins.
	Literal float64 `json:"literal,omitempty"`
	// Acquire prices the cost of obtaining the item (bazaar sell-order
	// side) instead of the default seller-oriented value.
	Acquire bool `json:"acquire,omitempty"`
	// Average requests the mean BIN instead of the lowest (auction only).
	Average bool `json:"average,omitempty"`
}

// Resolver is the unified price lookup. It never errors for expected
// absence: missing data comes back as a NotFound or Transient result and
// the zero amount, so callers can flag rather than crash.
type Resolver struct {
	catalog Catalog
	bazaar  BazaarSource
	auction AuctionSource
	caches  []Purger
}

// New builds a resolver. caches are the tiers Refresh purges.
func New(catalog Catalog, bazaar BazaarSource, auction AuctionSource, caches ...Purger) *Resolver {
	return &Resolver{catalog: catalog, bazaar: bazaar, auction: auction, caches: caches}
}

// Price resolves one request to a tagged result.
func (r *Resolver) Price(ctx context.Context, req Request) domain.PriceResult {
	switch req.Source {
	case domain.SourceCoins:
		// Fixed literal cost: no resolution, no lookup.
		return domain.Ok(req.Literal)
	case domain.SourceBazaar:
		id := r.catalog.Resolve(req.Name)
		if req.Acquire {
			return r.bazaar.BuyCost(ctx, id)
		}
		return r.bazaar.SellValue(ctx, id)
	case domain.SourceAuction:
		id := r.catalog.Resolve(req.Name)
		if req.Average {
			return r.auction.AverageBIN(ctx, id)
		}
		return r.auction.LowestBIN(ctx, id)
	default:
		slog.Warn("unknown price source", "source", req.Source, "name", req.Name)
		return domain.NotFound()
	}
}

// Amount is the presentation-facing variant: absence of any kind
// collapses to 0 so incomplete recipes render as deprioritized, not
// broken.
func (r *Resolver) Amount(ctx context.Context, req Request) float64 {
	return r.Price(ctx, req).Amount
}

// PriceAll resolves many requests concurrently and waits for all of
// them to settle. One item's failure never fails the batch; the result
// map preserves the name association.
func (r *Resolver) PriceAll(ctx context.Context, reqs []Request) map[string]domain.PriceResult {
	results := lop.Map(reqs, func(req Request, _ int) domain.PriceResult {
		return r.Price(ctx, req)
	})

	out := make(map[string]domain.PriceResult, len(reqs))
	for i, req := range reqs {
		out[req.Name] = results[i]
	}
	return out
}

// Refresh purges every cache tier and returns the new cycle id. Stale
// in-flight fetches may still complete and repopulate entries; that is
// acceptable, entries are keyed by content.
func (r *Resolver) Refresh(ctx context.Context) string {
	cycle := uuid.NewString()
	for _, c := range r.caches {
		c.Clear(ctx)
	}
	slog.Info("price caches cleared", "cycle", cycle)
	return cycle
}
