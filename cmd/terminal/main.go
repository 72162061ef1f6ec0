package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zappabad/wipeout/internal/account"
	"github.com/zappabad/wipeout/internal/config"
	"github.com/zappabad/wipeout/internal/engine"
	"github.com/zappabad/wipeout/tui"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	seed := flag.Int64("seed", 0, "RNG seed; 0 means time-seeded")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *seed != 0 {
		cfg.Game.Seed = *seed
	}
	if cfg.Game.Seed == 0 {
		cfg.Game.Seed = time.Now().UnixNano()
	}

	var store account.Store
	store, err = account.NewSQLiteStore(cfg.Storage.DSN)
	if err != nil {
		// A broken save file should not keep the player out of the game.
		log.Printf("open account store: %v; progress will not be saved", err)
		store = account.NewMemoryStore()
	}
	defer store.Close()

	rng := rand.New(rand.NewSource(cfg.Game.Seed))
	eng := engine.New(cfg.Engine(), store, rng, time.Now())
	defer eng.Close()

	// Handle interrupt signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	eng.Start()

	// The engine owns no timer; this loop is the one writer of time.
	tick := cfg.Engine().TickInterval
	go func() {
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				eng.Advance(tick)
			}
		}
	}()

	p := tea.NewProgram(tui.NewModel(eng), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
