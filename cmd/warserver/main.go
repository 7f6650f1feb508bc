// Command warserver runs the great-house war engine and its HTTP API.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/talgya/house-wars/internal/api"
	"github.com/talgya/house-wars/internal/battlefield"
	"github.com/talgya/house-wars/internal/config"
	"github.com/talgya/house-wars/internal/economy"
	"github.com/talgya/house-wars/internal/entropy"
	"github.com/talgya/house-wars/internal/faction"
	"github.com/talgya/house-wars/internal/persistence"
	"github.com/talgya/house-wars/internal/war"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("House Wars — battle resolution engine")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// ── Database ──────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.DBPath); dir != "." && dir != "" {
		os.MkdirAll(dir, 0755)
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	if err := db.Seed(faction.SeedHouses(), faction.SeedHoldings()); err != nil {
		slog.Error("failed to seed houses", "error", err)
		os.Exit(1)
	}

	houses, err := db.Factions()
	if err != nil {
		slog.Error("failed to load houses", "error", err)
		os.Exit(1)
	}
	for _, h := range houses {
		slog.Info("house ready",
			"name", h.Name,
			"region", h.Region,
			"soldiers", h.Soldiers,
			"treasury", h.Treasury,
			"trait", h.Trait,
		)
	}

	// ── Entropy ───────────────────────────────────────────────────────
	rng := entropy.NewClient(cfg.RandomOrgKey)
	if rng != nil {
		slog.Info("entropy source: random.org (crypto/rand fallback)")
	} else {
		slog.Info("entropy source: crypto/rand")
	}

	// ── Battlefield conditions ────────────────────────────────────────
	conditions := battlefield.New(cfg.WorldSeed)

	// ── War engine ────────────────────────────────────────────────────
	wars := war.NewService(db, rng, conditions)

	active, err := db.ActiveWars(0)
	if err != nil {
		slog.Error("failed to load active wars", "error", err)
		os.Exit(1)
	}
	slog.Info("war engine ready", "active_wars", len(active))

	// ── Economy ───────────────────────────────────────────────────────
	income := economy.NewTicker(db, time.Minute)
	income.Start()
	defer income.Stop()
	slog.Info("holding income accrual started", "interval", "1m")

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("WARSERVER_ADMIN_KEY not set — war command endpoints will be disabled")
	}

	apiServer := &api.Server{
		Wars:     wars,
		DB:       db,
		Port:     cfg.Port,
		AdminKey: cfg.AdminKey,
	}
	apiServer.Start()

	fmt.Printf("\n%d great houses stand ready; %d wars in progress.\n", len(houses), len(active))
	fmt.Printf("API: http://localhost:%d/api/v1/houses\n", cfg.Port)
	fmt.Println("Serving... (Ctrl+C to stop)")

	// ── Shutdown ──────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)
}
