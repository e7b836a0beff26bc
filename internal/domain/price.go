package domain

import "time"

// Source identifies where a price for an item comes from.
type Source string

const (
	// SourceBazaar is the instant-match commodity order book.
	SourceBazaar Source = "bazaar"
	// SourceAuction is the listing-based market (lowest/average BIN).
	SourceAuction Source = "auction"
	// SourceCoins marks a fixed literal cost; no market lookup happens.
	SourceCoins Source = "coins"
)

// PriceQuote is a resolved price for one item from one source.
// Amount == 0 is a valid "no data" result, not an error: callers tell
// "unknown" from "confirmed zero" by the lookup failing vs succeeding.
type PriceQuote struct {
	ItemID    string    `json:"itemId"`
	Amount    float64   `json:"amount"`
	Source    Source    `json:"source"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Status discriminates the three outcomes of a price lookup.
type Status string

const (
	// StatusOK means the upstream returned a price.
	StatusOK Status = "ok"
	// StatusNotFound means the upstream confirmed there is no market for
	// the item. Cacheable; consumers treat the amount (always 0) as a
	// confirmed worthless price.
	StatusNotFound Status = "not_found"
	// StatusTransient means the lookup failed (network, proxy, parse).
	// Never cached; the next call must retry.
	StatusTransient Status = "transient"
)

// PriceResult is the tagged outcome of a single price lookup.
type PriceResult struct {
	Amount float64 `json:"amount"`
	Status Status  `json:"status"`
}

// Ok returns a successful result carrying amount.
func Ok(amount float64) PriceResult {
	return PriceResult{Amount: amount, Status: StatusOK}
}

// NotFound returns a confirmed-absent result. Its amount is always zero.
func NotFound() PriceResult {
	return PriceResult{Status: StatusNotFound}
}

// Transient returns a failed-lookup result. Its amount is always zero.
func Transient() PriceResult {
	return PriceResult{Status: StatusTransient}
}

// Usable reports whether the result carries data a calculation can use:
// a real price or a confirmed zero. Transient failures are not usable.
func (r PriceResult) Usable() bool {
	return r.Status == StatusOK || r.Status == StatusNotFound
}

// Resolved reports whether the lookup produced an actual market price.
// A confirmed zero is cacheable data, but a calculation depending on it
// is still working with a missing price and its row is deprioritized.
func (r PriceResult) Resolved() bool {
	return r.Status == StatusOK && r.Amount > 0
}
