package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/skyforge/skycalc/internal/api"
	"github.com/skyforge/skycalc/internal/auction"
	"github.com/skyforge/skycalc/internal/bazaar"
	"github.com/skyforge/skycalc/internal/cache"
	"github.com/skyforge/skycalc/internal/catalog"
	"github.com/skyforge/skycalc/internal/config"
	"github.com/skyforge/skycalc/internal/corpse"
	"github.com/skyforge/skycalc/internal/crystal"
	"github.com/skyforge/skycalc/internal/export"
	"github.com/skyforge/skycalc/internal/forge"
	"github.com/skyforge/skycalc/internal/gamedata"
	"github.com/skyforge/skycalc/internal/ratelimit"
	"github.com/skyforge/skycalc/internal/relay"
	"github.com/skyforge/skycalc/internal/resolver"
)

//go:embed data/*.json
var dataFS embed.FS

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file", "error", err)
	}

	app := &cli.App{
		Name:  "skycalc",
		Usage: "Hypixel Skyblock economy calculators",
		Commands: []*cli.Command{
			serveCommand(),
			refreshCommand(),
			exportCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// services is the fully wired dependency graph shared by all commands.
type services struct {
	cfg      config.Config
	tables   gamedata.Tables
	prices   *resolver.Resolver
	forge    *forge.Engine
	corpses  *corpse.Engine
	crystals *crystal.Engine
}

func build(ctx context.Context) (*services, error) {
	cfg := config.Load()

	embedded, err := fs.Sub(dataFS, "data")
	if err != nil {
		return nil, fmt.Errorf("embedded game data: %w", err)
	}
	tables, err := gamedata.NewLoader([]string{cfg.DataDir, "static/data"}, embedded).Load()
	if err != nil {
		return nil, fmt.Errorf("loading game data: %w", err)
	}

	// The catalog runs in fallback-only mode when empty: every lookup
	// goes through the deterministic name synthesis.
	var cat *catalog.Resolver
	if len(tables.Catalog) == 0 {
		slog.Warn("item catalog is empty, resolving names by synthesis only")
		cat = catalog.Unloaded()
	} else {
		cat = catalog.NewResolver(tables.Catalog)
	}

	store, err := cache.Open(ctx, cfg.CacheURL)
	if err != nil {
		slog.Warn("persistent cache unavailable, running memory-only", "url", cfg.CacheURL, "error", err)
		store = cache.NoopStore{}
	}
	bazaarCache := cache.NewTiered(store, cfg.BazaarTTL)
	auctionCache := cache.NewTiered(store, cfg.AuctionTTL)

	relays, err := relay.FromNames(cfg.Relays)
	if err != nil {
		return nil, fmt.Errorf("configuring relays: %w", err)
	}
	chain := relay.NewChain(relays, cfg.FetchTimeout)

	bzSource := bazaar.NewSource(
		bazaar.NewClient(cfg.BazaarURL, chain),
		bazaarCache,
		ratelimit.New(cfg.BazaarMinGap),
	)
	ahSource := auction.NewSource(
		auction.NewClient(cfg.AuctionURL, cfg.FetchTimeout),
		auctionCache,
		ratelimit.New(cfg.AuctionMinGap),
	)

	prices := resolver.New(cat, bzSource, ahSource, bazaarCache, auctionCache)

	return &services{
		cfg:      cfg,
		tables:   tables,
		prices:   prices,
		forge:    forge.New(prices, tables.ForgeRecipes),
		corpses:  corpse.New(prices),
		crystals: crystal.New(prices),
	}, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the calculator HTTP API",
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, err := build(ctx)
			if err != nil {
				return err
			}

			handler := api.NewHandler(svc.prices, svc.forge, svc.corpses, svc.crystals, svc.tables)
			srv := api.NewServer(svc.cfg.HTTPPort, handler)

			go func() {
				slog.Info("HTTP server listening", "port", svc.cfg.HTTPPort)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					slog.Error("HTTP server error", "error", err)
					stop()
				}
			}()

			<-ctx.Done()
			slog.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("HTTP server shutdown: %w", err)
			}
			return nil
		},
	}
}

func refreshCommand() *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "invalidate all cached prices and warm the caches",
		Action: func(c *cli.Context) error {
			svc, err := build(c.Context)
			if err != nil {
				return err
			}
			cycle := svc.prices.Refresh(c.Context)

			// Warm fetch: resolving every forge ingredient pulls the full
			// bazaar snapshot and the auction items the recipes touch.
			var reqs []resolver.Request
			for _, r := range svc.tables.ForgeRecipes {
				reqs = append(reqs, resolver.Request{Name: r.Output.Name, Source: r.Output.Source})
				for _, in := range r.Inputs {
					reqs = append(reqs, resolver.Request{Name: in.Name, Source: in.Source, Literal: in.Literal, Acquire: true})
				}
			}
			results := svc.prices.PriceAll(c.Context, reqs)
			slog.Info("caches warmed", "cycle", cycle, "items", len(results))

			fmt.Fprintln(c.App.Writer, cycle)
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "evaluate all calculators and write a spreadsheet report",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "out",
				Usage: "XLSX output path",
				Value: "skycalc-report.xlsx",
			},
			&cli.BoolFlag{
				Name:  "sheets",
				Usage: "write to the configured Google spreadsheet instead of a local file",
			},
		},
		Action: func(c *cli.Context) error {
			svc, err := build(c.Context)
			if err != nil {
				return err
			}

			var writer export.ReportWriter
			if c.Bool("sheets") {
				if svc.cfg.SpreadsheetID == "" || svc.cfg.GoogleCredsRaw == "" {
					return errors.New("SHEETS_SPREADSHEET_ID and GOOGLE_CREDENTIALS_JSON are required for --sheets")
				}
				writer, err = export.NewSheetsWriter(c.Context, svc.cfg.SpreadsheetID, svc.cfg.GoogleCredsRaw)
				if err != nil {
					return err
				}
			} else {
				writer = export.NewXLSXWriter(c.String("out"))
			}

			exporter := export.NewService(svc.forge, svc.corpses, svc.crystals, svc.tables, writer)
			if err := exporter.Export(c.Context); err != nil {
				return err
			}
			slog.Info("report written")
			return nil
		},
	}
}
