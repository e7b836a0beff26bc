package api

import (
	"net/http"
	"time"
)

// NewServer creates an HTTP server with all routes configured.
func NewServer(port string, handler *Handler) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/price", handler.GetPrice)
	mux.HandleFunc("POST /api/v1/prices", handler.BulkPrices)
	mux.HandleFunc("POST /api/v1/refresh", handler.Refresh)
	mux.HandleFunc("GET /api/v1/forge", handler.GetForge)
	mux.HandleFunc("GET /api/v1/corpse", handler.ListCorpses)
	mux.HandleFunc("GET /api/v1/corpse/{type}", handler.GetCorpse)
	mux.HandleFunc("GET /api/v1/crystal", handler.GetCrystal)
	mux.HandleFunc("GET /api/v1/coldres", handler.GetColdRes)

	return &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
