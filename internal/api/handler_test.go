package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/skyforge/skycalc/internal/catalog"
	"github.com/skyforge/skycalc/internal/corpse"
	"github.com/skyforge/skycalc/internal/crystal"
	"github.com/skyforge/skycalc/internal/domain"
	"github.com/skyforge/skycalc/internal/forge"
	"github.com/skyforge/skycalc/internal/gamedata"
	"github.com/skyforge/skycalc/internal/resolver"
)

type stubBazaar struct {
	sell    map[string]domain.PriceResult
	acquire map[string]domain.PriceResult
}

func (s *stubBazaar) SellValue(_ context.Context, id string) domain.PriceResult {
	if r, ok := s.sell[id]; ok {
		return r
	}
	return domain.NotFound()
}

func (s *stubBazaar) BuyCost(_ context.Context, id string) domain.PriceResult {
	if r, ok := s.acquire[id]; ok {
		return r
	}
	return domain.NotFound()
}

type stubAuction struct {
	lowest map[string]domain.PriceResult
}

func (s *stubAuction) LowestBIN(_ context.Context, id string) domain.PriceResult {
	if r, ok := s.lowest[id]; ok {
		return r
	}
	return domain.NotFound()
}

func (s *stubAuction) AverageBIN(_ context.Context, id string) domain.PriceResult {
	return s.LowestBIN(context.Background(), id)
}

func testServer() *http.Server {
	bz := &stubBazaar{
		sell: map[string]domain.PriceResult{
			"ENCHANTED_DIAMOND": domain.Ok(880),
			"REFINED_DIAMOND":   domain.Ok(500),
			"ENCHANTED_ICE":     domain.Ok(123.456),
		},
		acquire: map[string]domain.PriceResult{
			"ENCHANTED_DIAMOND": domain.Ok(905),
		},
	}
	ah := &stubAuction{lowest: map[string]domain.PriceResult{
		"UMBER_KEY":     domain.Ok(200),
		"GLACITE_JEWEL": domain.Ok(1000),
	}}
	cat := catalog.NewResolver([]domain.CatalogEntry{
		{Name: "Enchanted Diamond", ID: "ENCHANTED_DIAMOND"},
		{Name: "Enchanted Ice", ID: "ENCHANTED_ICE"},
		{Name: "Refined Diamond", ID: "REFINED_DIAMOND"},
		{Name: "Umber Key", ID: "UMBER_KEY"},
		{Name: "Glacite Jewel", ID: "GLACITE_JEWEL"},
	})
	prices := resolver.New(cat, bz, ah)

	tables := gamedata.Tables{
		ForgeRecipes: []domain.ForgeRecipe{{
			Name:     "Refined Diamond",
			Output:   domain.Ingredient{Name: "Refined Diamond", Source: domain.SourceBazaar},
			Inputs:   []domain.Ingredient{{Name: "Enchanted Diamond", Qty: 2, Source: domain.SourceBazaar}},
			Duration: domain.ForgeDuration{Hours: 8},
		}},
		Corpses: []domain.CorpseType{{
			Name:           "Umber",
			KeyName:        "Umber Key",
			KeySource:      domain.SourceAuction,
			RollsPerCorpse: 5,
			Drops: []domain.Drop{
				{Name: "Glacite Jewel", Quantity: 1, Weight: 10, Source: domain.SourceAuction},
				{Name: "Scrap", Quantity: 1, Weight: 90, Source: domain.SourceBazaar},
			},
		}},
		Gemstones: []string{"Ruby"},
	}

	h := NewHandler(prices,
		forge.New(prices, tables.ForgeRecipes),
		corpse.New(prices),
		crystal.New(prices),
		tables)
	return NewServer("0", h)
}

func do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	testServer().Handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
}

func TestGetPrice(t *testing.T) {
	rec := do(t, http.MethodGet, "/api/v1/price?name=Enchanted+Diamond&source=bazaar", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var got priceResponse
	decode(t, rec, &got)
	if got.Amount != 880 || got.Status != "ok" {
		t.Errorf("got %+v, want 880/ok", got)
	}
}

func TestGetPriceRoundsToDisplayPrecision(t *testing.T) {
	rec := do(t, http.MethodGet, "/api/v1/price?name=Enchanted+Ice&source=bazaar", "")
	var got priceResponse
	decode(t, rec, &got)
	if got.Amount != 123.5 {
		t.Errorf("Amount = %v, want 123.5", got.Amount)
	}
	if got.Display != "123.5" {
		t.Errorf("Display = %q, want 123.5", got.Display)
	}
}

func TestGetPriceAcquireSide(t *testing.T) {
	rec := do(t, http.MethodGet, "/api/v1/price?name=Enchanted+Diamond&source=bazaar&acquire=true", "")
	var got priceResponse
	decode(t, rec, &got)
	if got.Amount != 905 {
		t.Errorf("acquire amount = %v, want 905", got.Amount)
	}
}

func TestGetPriceMissingItemIsOkWithFlag(t *testing.T) {
	rec := do(t, http.MethodGet, "/api/v1/price?name=Nothing&source=auction", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, missing data is not an HTTP error", rec.Code)
	}
	var got priceResponse
	decode(t, rec, &got)
	if got.Status != "missing" || got.Amount != 0 {
		t.Errorf("got %+v, want 0/missing", got)
	}
}

func TestGetPriceRequiresName(t *testing.T) {
	if rec := do(t, http.MethodGet, "/api/v1/price", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestBulkPrices(t *testing.T) {
	body := `[
		{"name":"Enchanted Diamond","source":"bazaar"},
		{"name":"Umber Key","source":"auction"},
		{"name":"Nope","source":"auction"},
		{"name":"Fee","source":"coins","literal":25}
	]`
	rec := do(t, http.MethodPost, "/api/v1/prices", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var got map[string]priceResponse
	decode(t, rec, &got)
	if len(got) != 4 {
		t.Fatalf("got %d entries, want 4", len(got))
	}
	if got["Enchanted Diamond"].Amount != 880 || got["Umber Key"].Amount != 200 {
		t.Errorf("got %+v", got)
	}
	if got["Nope"].Status != "missing" {
		t.Errorf("Nope = %+v, want missing flag", got["Nope"])
	}
	if got["Fee"].Amount != 25 {
		t.Errorf("Fee = %+v, want literal 25", got["Fee"])
	}
}

func TestBulkPricesRejectsMalformedBody(t *testing.T) {
	if rec := do(t, http.MethodPost, "/api/v1/prices", `{"not":"an array"`); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRefreshReturnsCycleID(t *testing.T) {
	rec := do(t, http.MethodPost, "/api/v1/refresh", "")
	var got map[string]string
	decode(t, rec, &got)
	if got["cycle"] == "" {
		t.Errorf("got %+v, want non-empty cycle id", got)
	}
}

func TestGetForge(t *testing.T) {
	rec := do(t, http.MethodGet, "/api/v1/forge", "")
	var got []forge.Result
	decode(t, rec, &got)
	if len(got) != 1 {
		t.Fatalf("got %d results", len(got))
	}
	// Output 500, inputs 2 x 905 acquired on the buy side.
	if got[0].Profit != 500-1810 {
		t.Errorf("Profit = %v, want -1310", got[0].Profit)
	}
}

func TestGetCorpseByType(t *testing.T) {
	rec := do(t, http.MethodGet, "/api/v1/corpse/Umber", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var got corpse.Result
	decode(t, rec, &got)
	if got.ExpectedValue != 500 || got.ROIPercent != 150 {
		t.Errorf("got EV %v ROI %v, want 500/150", got.ExpectedValue, got.ROIPercent)
	}
}

func TestGetCorpseUnknownType(t *testing.T) {
	if rec := do(t, http.MethodGet, "/api/v1/corpse/Nonexistent", ""); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestListCorpses(t *testing.T) {
	rec := do(t, http.MethodGet, "/api/v1/corpse", "")
	var got []corpse.Result
	decode(t, rec, &got)
	if len(got) != 1 || got[0].Corpse != "Umber" {
		t.Errorf("got %+v", got)
	}
}

func TestGetCrystal(t *testing.T) {
	rec := do(t, http.MethodGet, "/api/v1/crystal", "")
	var got []crystal.Result
	decode(t, rec, &got)
	if len(got) != 1 || got[0].Gemstone != "Ruby" {
		t.Errorf("got %+v", got)
	}
}

func TestGetColdRes(t *testing.T) {
	rec := do(t, http.MethodGet, "/api/v1/coldres?resistance=50", "")
	var got map[string]float64
	decode(t, rec, &got)
	if got["totalSeconds"] != 750 {
		t.Errorf("totalSeconds = %v, want 750", got["totalSeconds"])
	}
}

func TestGetColdResRejectsBadInput(t *testing.T) {
	for _, q := range []string{"", "?resistance=abc", "?resistance=-5"} {
		if rec := do(t, http.MethodGet, "/api/v1/coldres"+q, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("coldres%s status = %d, want 400", q, rec.Code)
		}
	}
}
