// Package forge evaluates forge recipes for profitability.
package forge

import (
	"context"
	"sort"

	lop "github.com/samber/lo/parallel"

	"github.com/skyforge/skycalc/internal/domain"
	"github.com/skyforge/skycalc/internal/resolver"
)

// Pricer resolves one ingredient price. Satisfied by *resolver.Resolver.
type Pricer interface {
	Price(ctx context.Context, req resolver.Request) domain.PriceResult
}

// Result is the evaluated economics of one recipe.
type Result struct {
	Recipe        string  `json:"recipe"`
	Category      string  `json:"category,omitempty"`
	OutputValue   float64 `json:"outputValue"`
	InputCost     float64 `json:"inputCost"`
	Profit        float64 `json:"profit"`
	DurationHours float64 `json:"durationHours"`
	ProfitPerHour float64 `json:"profitPerHour"`
	// Incomplete marks a recipe where at least one market price did not
	// resolve. The numbers are computed with zeros in those slots and the
	// row sorts last.
	Incomplete bool `json:"incomplete"`
}

// Engine evaluates a fixed recipe table against live prices.
type Engine struct {
	pricer  Pricer
	recipes []domain.ForgeRecipe
}

// New builds the engine over the loaded recipe table.
func New(pricer Pricer, recipes []domain.ForgeRecipe) *Engine {
	return &Engine{pricer: pricer, recipes: recipes}
}

// Evaluate prices every recipe concurrently and returns results sorted
// by profit per hour, best first, incomplete rows last.
func (e *Engine) Evaluate(ctx context.Context) []Result {
	results := lop.Map(e.recipes, func(r domain.ForgeRecipe, _ int) Result {
		return e.evaluate(ctx, r)
	})

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Incomplete != results[j].Incomplete {
			return !results[i].Incomplete
		}
		return results[i].ProfitPerHour > results[j].ProfitPerHour
	})
	return results
}

func (e *Engine) evaluate(ctx context.Context, r domain.ForgeRecipe) Result {
	res := Result{
		Recipe:        r.Name,
		Category:      r.Category,
		DurationHours: r.Duration.TotalHours(),
	}

	// Inputs are priced on the acquisition side, the output on the sale
	// side, mirroring a player buying materials and selling the product.
	// A market component without an actual price (failed lookup or a
	// confirmed zero) marks the row incomplete; fixed coin costs cannot.
	for _, in := range r.Inputs {
		price := e.pricer.Price(ctx, resolver.Request{
			Name:    in.Name,
			Source:  in.Source,
			Literal: in.Literal,
			Acquire: true,
		})
		if in.Source != domain.SourceCoins && !price.Resolved() {
			res.Incomplete = true
		}
		res.InputCost += price.Amount * in.Qty
	}

	// The recipe's sell location, when declared, overrides the output
	// ingredient's own source.
	outSource := r.Output.Source
	if r.SellLocation != "" {
		outSource = r.SellLocation
	}
	out := e.pricer.Price(ctx, resolver.Request{
		Name:    r.Output.Name,
		Source:  outSource,
		Literal: r.Output.Literal,
	})
	if outSource != domain.SourceCoins && !out.Resolved() {
		res.Incomplete = true
	}
	res.OutputValue = out.Amount * outputQty(r.Output)

	res.Profit = res.OutputValue - res.InputCost
	if res.DurationHours > 0 {
		res.ProfitPerHour = res.Profit / res.DurationHours
	}
	return res
}

// outputQty defaults a missing output quantity to one unit.
func outputQty(out domain.Ingredient) float64 {
	if out.Qty == 0 {
		return 1
	}
	return out.Qty
}
