package export

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/skyforge/skycalc/internal/corpse"
	"github.com/skyforge/skycalc/internal/crystal"
	"github.com/skyforge/skycalc/internal/domain"
	"github.com/skyforge/skycalc/internal/forge"
	"github.com/skyforge/skycalc/internal/gamedata"
	"github.com/skyforge/skycalc/internal/resolver"
)

type capturingWriter struct {
	report Report
	calls  int
}

func (c *capturingWriter) Write(_ context.Context, report Report) error {
	c.report = report
	c.calls++
	return nil
}

type fixedPricer struct{}

func (fixedPricer) Price(_ context.Context, req resolver.Request) domain.PriceResult {
	if req.Source == domain.SourceCoins {
		return domain.Ok(req.Literal)
	}
	return domain.Ok(100)
}

func testTables() gamedata.Tables {
	return gamedata.Tables{
		ForgeRecipes: []domain.ForgeRecipe{{
			Name:     "Refined Thing",
			Output:   domain.Ingredient{Name: "Refined Thing", Source: domain.SourceBazaar},
			Inputs:   []domain.Ingredient{{Name: "Ore", Qty: 2, Source: domain.SourceBazaar}},
			Duration: domain.ForgeDuration{Hours: 1},
		}},
		Corpses: []domain.CorpseType{{
			Name:           "Umber",
			KeyName:        "Umber Key",
			KeySource:      domain.SourceAuction,
			RollsPerCorpse: 1,
			Drops:          []domain.Drop{{Name: "Loot", Quantity: 1, Weight: 1, Source: domain.SourceAuction}},
		}},
		Gemstones: []string{"Ruby"},
	}
}

func testService(w ReportWriter) *Service {
	p := fixedPricer{}
	tables := testTables()
	return NewService(forge.New(p, tables.ForgeRecipes), corpse.New(p), crystal.New(p), tables, w)
}

func TestExportEvaluatesAllCalculators(t *testing.T) {
	w := &capturingWriter{}
	if err := testService(w).Export(context.Background()); err != nil {
		t.Fatal(err)
	}
	if w.calls != 1 {
		t.Fatalf("writer called %d times", w.calls)
	}
	if len(w.report.Forge) != 1 || len(w.report.Corpses) != 1 || len(w.report.Crystals) != 1 {
		t.Errorf("report = %d forge / %d corpse / %d crystal rows, want 1 each",
			len(w.report.Forge), len(w.report.Corpses), len(w.report.Crystals))
	}
	if w.report.GeneratedAt.IsZero() {
		t.Error("GeneratedAt not set")
	}
}

func TestRowsRoundCoinColumns(t *testing.T) {
	row := forgeRow(forge.Result{
		Recipe:        "Refined Thing",
		OutputValue:   1234.56,
		InputCost:     1000.04,
		Profit:        234.52,
		ProfitPerHour: 156.3467,
	})
	if row[2] != 1234.6 || row[3] != 1000.0 || row[4] != 234.5 {
		t.Errorf("coin columns = %v/%v/%v, want 1234.6/1000/234.5", row[2], row[3], row[4])
	}
	if row[6] != 156.3 {
		t.Errorf("profit/h = %v, want 156.3", row[6])
	}

	crow := corpseRow(corpse.Result{Corpse: "Umber", KeyCost: 99.99, ExpectedValue: 150.05})
	if crow[1] != 100.0 || crow[2] != 150.1 {
		t.Errorf("corpse coin columns = %v/%v, want 100/150.1", crow[1], crow[2])
	}
}

func TestXLSXWriterProducesWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	svc := testService(NewXLSXWriter(path))
	if err := svc.Export(context.Background()); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	for _, sheet := range []string{"Forge", "Corpses", "Crystals"} {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			t.Errorf("sheet %s missing (idx %d, err %v)", sheet, idx, err)
		}
	}
	if got, _ := f.GetCellValue("Forge", "A1"); got != "Recipe" {
		t.Errorf("Forge!A1 = %q, want Recipe", got)
	}
	if got, _ := f.GetCellValue("Forge", "A2"); got != "Refined Thing" {
		t.Errorf("Forge!A2 = %q, want Refined Thing", got)
	}
	if got, _ := f.GetCellValue("Corpses", "A2"); got != "Umber" {
		t.Errorf("Corpses!A2 = %q, want Umber", got)
	}
}
