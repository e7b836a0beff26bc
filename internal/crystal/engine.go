// Package crystal compares the upgrade paths from flawed or fine
// gemstones to one perfect gemstone.
package crystal

import (
	"context"
	"fmt"
	"sort"

	"github.com/skyforge/skycalc/internal/domain"
	"github.com/skyforge/skycalc/internal/resolver"
)

// Fixed conversion ratios, expressed in normal-tier gems: 80 per flawed,
// 6400 per fine, 2,560,000 per perfect.
const (
	normalPerFlawed  = 80
	normalPerFine    = 6400
	normalPerPerfect = 2_560_000

	// FlawedPerPerfect is how many flawed gems one perfect costs (32,000).
	FlawedPerPerfect = normalPerPerfect / normalPerFlawed
	// FinePerPerfect is how many fine gems one perfect costs (400).
	FinePerPerfect = normalPerPerfect / normalPerFine
)

// Pricer resolves one item price. Satisfied by *resolver.Resolver.
type Pricer interface {
	Price(ctx context.Context, req resolver.Request) domain.PriceResult
}

// Result compares the two upgrade paths for one gemstone type.
type Result struct {
	Gemstone string `json:"gemstone"`
	// FlawedCost and FineCost are the full path costs to one perfect.
	FlawedCost float64 `json:"flawedCost"`
	FineCost   float64 `json:"fineCost"`
	// BestMethod is "flawed" or "fine"; empty when no path has a
	// positive cost.
	BestMethod string  `json:"bestMethod,omitempty"`
	BestCost   float64 `json:"bestCost"`
	// PerfectValue is the sale price of the finished perfect gem.
	PerfectValue float64 `json:"perfectValue"`
	// Profit is PerfectValue minus BestCost, deliberately unclamped so a
	// losing conversion shows as negative rather than zero.
	Profit     float64 `json:"profit"`
	Incomplete bool    `json:"incomplete"`
}

// Engine evaluates gemstone conversion paths against live prices.
type Engine struct {
	pricer Pricer
}

// New builds the engine.
func New(pricer Pricer) *Engine {
	return &Engine{pricer: pricer}
}

// Evaluate prices both paths for every gemstone type and picks the
// cheapest positive one. Flawed wins exact ties, keeping the choice
// deterministic rather than dependent on evaluation order.
func (e *Engine) Evaluate(ctx context.Context, gemstones []string) []Result {
	results := make([]Result, 0, len(gemstones))
	for _, g := range gemstones {
		results = append(results, e.evaluate(ctx, g))
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Incomplete != results[j].Incomplete {
			return !results[i].Incomplete
		}
		return results[i].Profit > results[j].Profit
	})
	return results
}

func (e *Engine) evaluate(ctx context.Context, gemstone string) Result {
	res := Result{Gemstone: gemstone}

	flawed := e.buy(ctx, "Flawed", gemstone)
	fine := e.buy(ctx, "Fine", gemstone)
	perfect := e.pricer.Price(ctx, resolver.Request{
		Name:   fmt.Sprintf("Perfect %s Gemstone", gemstone),
		Source: domain.SourceBazaar,
	})
	res.Incomplete = !flawed.Usable() || !fine.Usable() || !perfect.Usable()

	res.FlawedCost = flawed.Amount * FlawedPerPerfect
	res.FineCost = fine.Amount * FinePerPerfect
	res.PerfectValue = perfect.Amount

	switch {
	case res.FlawedCost > 0 && (res.FineCost <= 0 || res.FlawedCost <= res.FineCost):
		res.BestMethod, res.BestCost = "flawed", res.FlawedCost
	case res.FineCost > 0:
		res.BestMethod, res.BestCost = "fine", res.FineCost
	}
	res.Profit = res.PerfectValue - res.BestCost
	return res
}

func (e *Engine) buy(ctx context.Context, tier, gemstone string) domain.PriceResult {
	return e.pricer.Price(ctx, resolver.Request{
		Name:    fmt.Sprintf("%s %s Gemstone", tier, gemstone),
		Source:  domain.SourceBazaar,
		Acquire: true,
	})
}
