package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/skyforge/skycalc/internal/coldres"
	"github.com/skyforge/skycalc/internal/corpse"
	"github.com/skyforge/skycalc/internal/crystal"
	"github.com/skyforge/skycalc/internal/domain"
	"github.com/skyforge/skycalc/internal/forge"
	"github.com/skyforge/skycalc/internal/gamedata"
	"github.com/skyforge/skycalc/internal/resolver"
)

// Handler provides the HTTP endpoints of the calculator API.
type Handler struct {
	prices   *resolver.Resolver
	forge    *forge.Engine
	corpses  *corpse.Engine
	crystals *crystal.Engine
	tables   gamedata.Tables
}

// NewHandler creates the API handler.
func NewHandler(prices *resolver.Resolver, forgeEngine *forge.Engine, corpseEngine *corpse.Engine, crystalEngine *crystal.Engine, tables gamedata.Tables) *Handler {
	return &Handler{
		prices:   prices,
		forge:    forgeEngine,
		corpses:  corpseEngine,
		crystals: crystalEngine,
		tables:   tables,
	}
}

// priceResponse is the wire shape of one resolved price. The status flag
// lets a renderer always show something: "missing" is a confirmed zero,
// "unavailable" means the lookup failed and may succeed on retry. Amounts
// are rounded to coin display precision at this edge; Display is the
// ready-to-render form.
type priceResponse struct {
	Name    string  `json:"name"`
	Amount  float64 `json:"amount"`
	Display string  `json:"display"`
	Status  string  `json:"status"`
}

func newPriceResponse(name string, res domain.PriceResult) priceResponse {
	return priceResponse{
		Name:    name,
		Amount:  domain.RoundCoins(res.Amount),
		Display: domain.FormatCoins(res.Amount),
		Status:  statusLabel(res.Status),
	}
}

func statusLabel(s domain.Status) string {
	switch s {
	case domain.StatusOK:
		return "ok"
	case domain.StatusNotFound:
		return "missing"
	default:
		return "unavailable"
	}
}

// GetPrice handles GET /api/v1/price.
func (h *Handler) GetPrice(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	req := resolver.Request{
		Name:    name,
		Source:  domain.Source(q.Get("source")),
		Acquire: q.Get("acquire") == "true",
		Average: q.Get("average") == "true",
	}
	if req.Source == "" {
		req.Source = domain.SourceBazaar
	}

	res := h.prices.Price(r.Context(), req)
	writeJSON(w, http.StatusOK, newPriceResponse(name, res))
}

// BulkPrices handles POST /api/v1/prices.
func (h *Handler) BulkPrices(w http.ResponseWriter, r *http.Request) {
	var reqs []resolver.Request
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body, expected a JSON array of price requests")
		return
	}
	if len(reqs) == 0 {
		writeJSON(w, http.StatusOK, map[string]priceResponse{})
		return
	}

	results := h.prices.PriceAll(r.Context(), reqs)

	out := make(map[string]priceResponse, len(results))
	for name, res := range results {
		out[name] = newPriceResponse(name, res)
	}
	writeJSON(w, http.StatusOK, out)
}

// Refresh handles POST /api/v1/refresh.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	cycle := h.prices.Refresh(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"cycle": cycle})
}

// GetForge handles GET /api/v1/forge.
func (h *Handler) GetForge(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.forge.Evaluate(r.Context()))
}

// ListCorpses handles GET /api/v1/corpse.
func (h *Handler) ListCorpses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.corpses.EvaluateAll(r.Context(), h.tables.Corpses))
}

// GetCorpse handles GET /api/v1/corpse/{type}.
func (h *Handler) GetCorpse(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("type")
	c, ok := h.tables.Corpse(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown corpse type")
		return
	}
	writeJSON(w, http.StatusOK, h.corpses.Evaluate(r.Context(), c))
}

// GetCrystal handles GET /api/v1/crystal.
func (h *Handler) GetCrystal(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.crystals.Evaluate(r.Context(), h.tables.Gemstones))
}

// GetColdRes handles GET /api/v1/coldres.
func (h *Handler) GetColdRes(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("resistance")
	resistance, err := strconv.ParseFloat(raw, 64)
	if err != nil || resistance < 0 {
		writeError(w, http.StatusBadRequest, "resistance must be a non-negative number")
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{
		"resistance":   resistance,
		"totalSeconds": coldres.TotalSeconds(resistance),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
