// Command worldsim drives a deterministic planet-and-civilization
// simulation: it generates (or loads) a world, ticks tribes and countries
// forward year by year, and serves a read-only HTTP surface for an
// external renderer. See design doc Section 3.7.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/atlasforge/chronicle/internal/api"
	"github.com/atlasforge/chronicle/internal/config"
	"github.com/atlasforge/chronicle/internal/engine"
	"github.com/atlasforge/chronicle/internal/persistence"
	"github.com/atlasforge/chronicle/internal/simerr"
	"github.com/atlasforge/chronicle/internal/world"
)

// maxReseedAttempts bounds the auto-reseed loop spec §7 calls for when a
// generated world can't support the minimum tribe count: rather than
// hanging, worldsim tries a handful of derived seeds before giving up.
const maxReseedAttempts = 16

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	seedFlag := flag.Uint64("seed", 0, "world seed (0 = use config default)")
	ticksFlag := flag.Int("ticks", -1, "stop after this many ticks (-1 = use config default, 0 = run forever)")
	speedFlag := flag.Int("speed", -1, "starting tick speed 0-4 (-1 = use config default)")
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	dbPath := flag.String("db", "", "path to the SQLite archive (overrides config)")
	httpAddr := flag.String("http", "", "HTTP listen address (overrides config)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			slog.Error("config load failed", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *seedFlag != 0 {
		cfg.Seed = uint32(*seedFlag)
	}
	if *ticksFlag != -1 {
		cfg.Ticks = *ticksFlag
	}
	if *speedFlag != -1 {
		cfg.Speed = *speedFlag
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if adminKey := os.Getenv("CHRONICLE_ADMIN_TOKEN"); adminKey != "" {
		cfg.AdminToken = adminKey
	}
	if cfg.AdminToken == "" {
		slog.Warn("no admin token configured — POST /speed will be disabled")
	}

	sim, err := loadOrGenerate(cfg)
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		os.Exit(1)
	}
	sim.SetSpeed(engine.Speed(cfg.Speed))

	archive, err := persistence.OpenArchive(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open archive", "error", err)
		os.Exit(1)
	}
	defer archive.Close()

	server := api.NewServer(sim, cfg.AdminToken)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	go func() {
		if err := server.Start(ctx, cfg.HTTPAddr); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	fmt.Printf("Chronicle running: seed %d, %s souls across %d tribes and %d countries.\n",
		sim.Seed, humanize.Comma(int64(totalPopulation(sim))), len(sim.Tribes), len(sim.Countries))
	fmt.Printf("API: http://%s/status\n", cfg.HTTPAddr)
	fmt.Println("Ctrl+C to stop.")

	runLoop(ctx, sim, server, archive, cfg.Ticks)

	if err := saveState(sim, cfg.SavePath); err != nil {
		slog.Error("final save failed", "error", err)
	}
	fmt.Println("Simulation stopped. State saved to " + cfg.SavePath + ".")
}

// loadOrGenerate resumes from cfg.SavePath if a save exists there,
// otherwise generates a fresh world and initializes it, retrying with
// derived seeds if the world can't support the minimum tribe count.
func loadOrGenerate(cfg config.Config) (*engine.Simulation, error) {
	if raw, err := os.ReadFile(cfg.SavePath); err == nil {
		sim, err := persistence.Deserialize(raw)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", cfg.SavePath, err)
		}
		slog.Info("resumed from save", "path", cfg.SavePath, "year", sim.Year)
		return sim, nil
	}

	seed := cfg.Seed
	for attempt := 0; attempt < maxReseedAttempts; attempt++ {
		w, err := world.Generate(world.GenConfig{Seed: seed})
		if err != nil {
			return nil, fmt.Errorf("generate world: %w", err)
		}
		sim := engine.NewSimulation(seed, w)
		err = sim.Initialize()
		if err == nil {
			slog.Info("world generated", "seed", seed, "tribes", len(sim.Tribes))
			return sim, nil
		}
		if !errors.Is(err, simerr.ErrWorldUninhabitable) {
			return nil, fmt.Errorf("initialize: %w", err)
		}
		slog.Warn("world uninhabitable, reseeding", "seed", seed, "attempt", attempt+1)
		seed = seed*2654435761 + uint32(attempt) + 1
	}
	return nil, fmt.Errorf("no habitable world found in %d attempts starting from seed %d", maxReseedAttempts, cfg.Seed)
}

// runLoop ticks sim forward at its configured speed, broadcasting newly
// emitted events to the stream server, until ctx is cancelled or maxTicks
// is reached (0 means run forever).
func runLoop(ctx context.Context, sim *engine.Simulation, server *api.Server, archive *persistence.Archive, maxTicks int) {
	cursor := engine.Cursor(0)
	archiveCursor := engine.Cursor(0)
	ticked := 0
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if sim.Halted {
				slog.Error("simulation halted", "error", sim.HaltError)
				return
			}
			if !sim.ShouldTick(nowMs()) {
				continue
			}
			if err := sim.Tick(); err != nil {
				slog.Error("tick failed", "error", err)
				return
			}
			ticked++

			var events []engine.Event
			events, cursor = sim.Events.Since(cursor)
			for _, e := range events {
				server.BroadcastEvent(e)
			}

			if sim.Year%50 == 0 {
				if err := archive.SaveSnapshot(sim, nowMs()); err != nil {
					slog.Error("snapshot failed", "error", err)
				}
				toArchive, nextArchiveCursor := sim.Events.Since(archiveCursor)
				if err := archive.AppendEvents(toArchive); err != nil {
					slog.Error("event archive failed", "error", err)
				} else {
					archiveCursor = nextArchiveCursor
				}
			}

			if maxTicks > 0 && ticked >= maxTicks {
				return
			}
		}
	}
}

func saveState(sim *engine.Simulation, path string) error {
	data, err := persistence.Serialize(sim)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func totalPopulation(sim *engine.Simulation) int {
	return sim.GetState().TotalPopulation
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}
