package domain

// CatalogEntry maps a display name to the canonical item identifier the
// price sources understand. The catalog is loaded once per session and
// immutable afterwards.
type CatalogEntry struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}
