// Package corpse computes expected value and ROI for lootable corpses.
package corpse

import (
	"context"
	"sort"

	"github.com/skyforge/skycalc/internal/domain"
	"github.com/skyforge/skycalc/internal/resolver"
)

// Pricer resolves one item price. Satisfied by *resolver.Resolver.
type Pricer interface {
	Price(ctx context.Context, req resolver.Request) domain.PriceResult
}

// DropValue is one loot-table row with its contribution to the corpse's
// expected value.
type DropValue struct {
	Name string `json:"name"`
	// UnitPrice is the resolved sale price of one unit.
	UnitPrice float64 `json:"unitPrice"`
	// Chance is the row's weight share of the table.
	Chance float64 `json:"chance"`
	// ExpectedValue is the row's contribution per corpse opened.
	ExpectedValue float64 `json:"expectedValue"`
}

// Result is the evaluated economics of opening one corpse type.
type Result struct {
	Corpse        string      `json:"corpse"`
	KeyCost       float64     `json:"keyCost"`
	ExpectedValue float64     `json:"expectedValue"`
	Profit        float64     `json:"profit"`
	ROIPercent    float64     `json:"roiPercent"`
	Incomplete    bool        `json:"incomplete"`
	Drops         []DropValue `json:"drops"`
}

// Engine evaluates corpse loot tables against live prices.
type Engine struct {
	pricer Pricer
}

// New builds the engine.
func New(pricer Pricer) *Engine {
	return &Engine{pricer: pricer}
}

// Evaluate computes the expected value of opening one corpse of the
// given type: each weighted row contributes price x quantity x its
// weight share, summed and scaled by the rolls granted per corpse.
func (e *Engine) Evaluate(ctx context.Context, c domain.CorpseType) Result {
	res := Result{Corpse: c.Name}

	if c.KeyName != "" {
		key := e.pricer.Price(ctx, resolver.Request{
			Name:    c.KeyName,
			Source:  c.KeySource,
			Acquire: true,
		})
		if c.KeySource != domain.SourceCoins && !key.Resolved() {
			res.Incomplete = true
		}
		res.KeyCost = key.Amount
	}

	total := c.TotalWeight()
	var perRoll float64
	// Rows without an actual market price contribute zero and mark the
	// corpse incomplete so it ranks behind fully priced ones.
	for _, d := range c.Drops {
		price := e.pricer.Price(ctx, resolver.Request{Name: d.Name, Source: d.Source})
		if d.Source != domain.SourceCoins && !price.Resolved() {
			res.Incomplete = true
		}
		chance := domain.SafeDiv(d.Weight, total)
		ev := price.Amount * d.Quantity * chance
		perRoll += ev
		res.Drops = append(res.Drops, DropValue{
			Name:          d.Name,
			UnitPrice:     price.Amount,
			Chance:        chance,
			ExpectedValue: ev * c.RollsPerCorpse,
		})
	}

	res.ExpectedValue = perRoll * c.RollsPerCorpse
	res.Profit = res.ExpectedValue - res.KeyCost
	// The free corpse has no key; ROI against a zero cost is defined as 0.
	if res.KeyCost > 0 {
		res.ROIPercent = res.Profit / res.KeyCost * 100
	}
	return res
}

// EvaluateAll evaluates every corpse type, best ROI first.
func (e *Engine) EvaluateAll(ctx context.Context, corpses []domain.CorpseType) []Result {
	results := make([]Result, 0, len(corpses))
	for _, c := range corpses {
		results = append(results, e.Evaluate(ctx, c))
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Incomplete != results[j].Incomplete {
			return !results[i].Incomplete
		}
		return results[i].ROIPercent > results[j].ROIPercent
	})
	return results
}
