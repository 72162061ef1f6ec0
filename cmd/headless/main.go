package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/zappabad/wipeout/internal/account"
	"github.com/zappabad/wipeout/internal/engine"
)

// roundResult is one settled round of the simulation.
type roundResult struct {
	round    int
	balance  float64
	pnl      float64
	bankrupt bool
}

// Runs the engine without a UI: a buy-and-hold bot per round, useful
// for eyeballing the economy and for long soak runs.
func main() {
	ticks := flag.Int("ticks", 20000, "number of ticks to simulate")
	seed := flag.Int64("seed", 1, "RNG seed")
	dsn := flag.String("dsn", "", "SQLite path; empty keeps everything in memory")
	buyQty := flag.Float64("buy", 20, "quantity bought at each round start; 0 disables trading")
	leverage := flag.Int("leverage", 5, "leverage used by the bot")
	flag.Parse()

	var store account.Store = account.NewMemoryStore()
	if *dsn != "" {
		s, err := account.NewSQLiteStore(*dsn)
		if err != nil {
			log.Fatalf("open account store: %v", err)
		}
		store = s
	}
	defer store.Close()

	cfg := engine.DefaultConfig()
	rng := rand.New(rand.NewSource(*seed))
	eng := engine.New(cfg, store, rng, time.Unix(0, 0).UTC())
	defer eng.Close()

	eng.SetLeverage(*leverage)
	eng.Start()

	var results []roundResult
	prev := eng.Snapshot()
	if prev.Phase == engine.PhaseActive && *buyQty > 0 {
		eng.Buy(*buyQty)
	}

	for i := 0; i < *ticks; i++ {
		eng.Advance(cfg.TickInterval)
		snap := eng.Snapshot()

		// A round just settled.
		if prev.Phase == engine.PhaseActive && snap.Phase != engine.PhaseActive {
			results = append(results, roundResult{
				round:    prev.RoundNumber,
				balance:  snap.Balance,
				pnl:      snap.LastRoundPnl,
				bankrupt: snap.Phase == engine.PhaseBankrupt,
			})
			if snap.Phase == engine.PhaseBankrupt {
				break
			}
		}
		// A new round just opened.
		if prev.Phase != engine.PhaseActive && snap.Phase == engine.PhaseActive && *buyQty > 0 {
			eng.Buy(*buyQty)
		}
		prev = snap
	}

	printSummary(results, eng.Snapshot())
}

func printSummary(results []roundResult, final engine.Snapshot) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Round", "End balance", "PnL", "Outcome")

	for _, r := range results {
		outcome := "settled"
		if r.bankrupt {
			outcome = "BANKRUPT"
		}
		table.Append(
			fmt.Sprintf("%d", r.round),
			fmt.Sprintf("$%.2f", r.balance),
			fmt.Sprintf("%+.2f", r.pnl),
			outcome,
		)
	}
	table.Render()

	fmt.Printf("\nFinal balance: $%.2f  all-time high: $%.2f  bankruptcies: %d\n",
		final.Balance, final.AllTimeHigh, final.BankruptCount)
}
