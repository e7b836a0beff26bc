// Package export renders calculator results into spreadsheet reports.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/skyforge/skycalc/internal/corpse"
	"github.com/skyforge/skycalc/internal/crystal"
	"github.com/skyforge/skycalc/internal/domain"
	"github.com/skyforge/skycalc/internal/forge"
	"github.com/skyforge/skycalc/internal/gamedata"
)

// Report is one full evaluation of every calculator.
type Report struct {
	GeneratedAt time.Time
	Forge       []forge.Result
	Corpses     []corpse.Result
	Crystals    []crystal.Result
}

// ReportWriter writes a report to a spreadsheet destination.
type ReportWriter interface {
	Write(ctx context.Context, report Report) error
}

// Service runs every engine and delegates writing to a ReportWriter.
type Service struct {
	forge    *forge.Engine
	corpses  *corpse.Engine
	crystals *crystal.Engine
	tables   gamedata.Tables
	writer   ReportWriter
}

// NewService creates a new export Service.
func NewService(forgeEngine *forge.Engine, corpseEngine *corpse.Engine, crystalEngine *crystal.Engine, tables gamedata.Tables, writer ReportWriter) *Service {
	return &Service{
		forge:    forgeEngine,
		corpses:  corpseEngine,
		crystals: crystalEngine,
		tables:   tables,
		writer:   writer,
	}
}

// Export evaluates all calculators against live prices and writes the
// report.
func (s *Service) Export(ctx context.Context) error {
	report := Report{
		GeneratedAt: time.Now().UTC(),
		Forge:       s.forge.Evaluate(ctx),
		Corpses:     s.corpses.EvaluateAll(ctx, s.tables.Corpses),
		Crystals:    s.crystals.Evaluate(ctx, s.tables.Gemstones),
	}
	if err := s.writer.Write(ctx, report); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// forgeHeader, corpseHeader and crystalHeader are shared by both writers
// so the XLSX and Sheets reports stay column-compatible.
var (
	forgeHeader   = []any{"Recipe", "Category", "Output Value", "Input Cost", "Profit", "Duration (h)", "Profit/h", "Incomplete"}
	corpseHeader  = []any{"Corpse", "Key Cost", "Expected Value", "Profit", "ROI %", "Incomplete"}
	crystalHeader = []any{"Gemstone", "Flawed Cost", "Fine Cost", "Best Method", "Best Cost", "Perfect Value", "Profit", "Incomplete"}
)

// Coin columns are rounded to display precision; the report is for
// humans, not further arithmetic.
func forgeRow(r forge.Result) []any {
	return []any{r.Recipe, r.Category, domain.RoundCoins(r.OutputValue), domain.RoundCoins(r.InputCost), domain.RoundCoins(r.Profit), r.DurationHours, domain.RoundCoins(r.ProfitPerHour), r.Incomplete}
}

func corpseRow(r corpse.Result) []any {
	return []any{r.Corpse, domain.RoundCoins(r.KeyCost), domain.RoundCoins(r.ExpectedValue), domain.RoundCoins(r.Profit), r.ROIPercent, r.Incomplete}
}

func crystalRow(r crystal.Result) []any {
	return []any{r.Gemstone, domain.RoundCoins(r.FlawedCost), domain.RoundCoins(r.FineCost), r.BestMethod, domain.RoundCoins(r.BestCost), domain.RoundCoins(r.PerfectValue), domain.RoundCoins(r.Profit), r.Incomplete}
}
