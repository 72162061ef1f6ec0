package engine_test

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/zappabad/wipeout/internal/account"
	"github.com/zappabad/wipeout/internal/engine"
	"github.com/zappabad/wipeout/internal/feed"
)

// fixedSource returns the same draw forever. 0.2 yields a steadily
// falling price with no market events; 0.8 a steadily rising one.
type fixedSource struct{ v float64 }

func (s fixedSource) Float64() float64 { return s.v }
func (s fixedSource) Intn(n int) int   { return 0 }

const tick = 250 * time.Millisecond

func shortConfig() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.RoundDuration = 5 * time.Second // 20 ticks
	cfg.TickInterval = tick
	cfg.RestartDelay = 2 * time.Second
	cfg.Rescue.AdDuration = time.Second
	return cfg
}

func newEngine(t *testing.T, cfg engine.Config, rng fixedSource) (*engine.Engine, *account.MemoryStore) {
	t.Helper()
	store := account.NewMemoryStore()
	e := engine.New(cfg, store, rng, time.Unix(0, 0))
	t.Cleanup(e.Close)
	return e, store
}

func advance(e *engine.Engine, ticks int) {
	for i := 0; i < ticks; i++ {
		e.Advance(tick)
	}
}

func lastMessage(e *engine.Engine) string {
	items := e.News(1)
	if len(items) == 0 {
		return ""
	}
	return items[0].Message
}

func TestStartOpensFirstRound(t *testing.T) {
	e, _ := newEngine(t, shortConfig(), fixedSource{0.5})
	e.Start()

	snap := e.Snapshot()
	if snap.Phase != engine.PhaseActive {
		t.Fatalf("phase = %v, want %v", snap.Phase, engine.PhaseActive)
	}
	if snap.RoundNumber != 1 {
		t.Errorf("round number = %d, want 1", snap.RoundNumber)
	}
	if snap.RoundID == "" {
		t.Error("round id is empty")
	}
	if snap.Price != 100 {
		t.Errorf("opening price = %v, want 100", snap.Price)
	}
	if snap.Cash != 10000 {
		t.Errorf("opening cash = %v, want 10000", snap.Cash)
	}
}

func TestBuySellRoundTrip(t *testing.T) {
	e, _ := newEngine(t, shortConfig(), fixedSource{0.5})
	e.Start()

	e.Buy(10)
	snap := e.Snapshot()
	if snap.PositionSize != 10 {
		t.Fatalf("position = %v, want 10", snap.PositionSize)
	}
	if math.Abs(snap.AvgEntryPrice-100.08) > 1e-9 {
		t.Errorf("avg entry = %v, want 100.08", snap.AvgEntryPrice)
	}

	e.Sell(10)
	snap = e.Snapshot()
	if snap.PositionSize != 0 {
		t.Errorf("position after sell = %v, want 0", snap.PositionSize)
	}
	// Slippage and two fees guarantee a loss at an unchanged price.
	if snap.Cash >= 10000 {
		t.Errorf("cash after round trip = %v, want < 10000", snap.Cash)
	}
}

func TestTradingRejectionsPostToFeed(t *testing.T) {
	e, _ := newEngine(t, shortConfig(), fixedSource{0.5})
	e.Start()

	e.Sell(5)
	if got := lastMessage(e); got != "Nothing to sell." {
		t.Errorf("sell while flat: last message = %q", got)
	}

	e.Buy(1e9)
	if got := lastMessage(e); got != "Not enough cash to buy." {
		t.Errorf("oversized buy: last message = %q", got)
	}

	e.Buy(-1)
	if got := lastMessage(e); got != "Buy quantity must be positive." {
		t.Errorf("negative buy: last message = %q", got)
	}
}

func TestLiquidationWipesRoundButRoundContinues(t *testing.T) {
	e, _ := newEngine(t, shortConfig(), fixedSource{0.2})
	e.Start()
	e.SetLeverage(50)
	e.Buy(80)

	// The falling path crosses zero equity within a handful of ticks.
	liquidated := false
	for i := 0; i < 15; i++ {
		e.Advance(tick)
		if e.Snapshot().Liquidated {
			liquidated = true
			break
		}
	}
	if !liquidated {
		t.Fatal("position never liquidated on a falling path")
	}

	snap := e.Snapshot()
	if snap.Phase != engine.PhaseActive {
		t.Errorf("phase after liquidation = %v, want %v", snap.Phase, engine.PhaseActive)
	}
	if snap.Cash != 0 || snap.PositionSize != 0 {
		t.Errorf("cash/position after liquidation = %v/%v, want 0/0", snap.Cash, snap.PositionSize)
	}

	e.Buy(1)
	if got := lastMessage(e); got != "Trading is disabled." {
		t.Errorf("buy after liquidation: last message = %q", got)
	}
	e.Sell(1)
	if got := lastMessage(e); got != "Trading is disabled." {
		t.Errorf("sell after liquidation: last message = %q", got)
	}
}

func TestBankruptcyAtSettlementStopsTheGame(t *testing.T) {
	e, store := newEngine(t, shortConfig(), fixedSource{0.2})
	e.Start()
	e.SetLeverage(50)
	e.Buy(80)

	advance(e, 25) // through liquidation and past the round end

	snap := e.Snapshot()
	if snap.Phase != engine.PhaseBankrupt {
		t.Fatalf("phase = %v, want %v", snap.Phase, engine.PhaseBankrupt)
	}
	if snap.Balance != 0 {
		t.Errorf("balance = %v, want 0", snap.Balance)
	}
	if snap.BankruptCount != 1 {
		t.Errorf("bankrupt count = %d, want 1", snap.BankruptCount)
	}
	if snap.LastRoundPnl != -10000 {
		t.Errorf("last round pnl = %v, want -10000", snap.LastRoundPnl)
	}
	if !store.Saved() {
		t.Error("bankruptcy was not persisted")
	}

	// No auto-restart: time passing does not revive a bankrupt account.
	advance(e, 40)
	if got := e.Snapshot(); got.Phase != engine.PhaseBankrupt || got.RoundNumber != 1 {
		t.Errorf("after waiting: phase = %v round = %d, want bankrupt round 1", got.Phase, got.RoundNumber)
	}
}

func TestSettlementAndRestart(t *testing.T) {
	e, store := newEngine(t, shortConfig(), fixedSource{0.8})
	e.Start()
	e.Buy(10)

	advance(e, 20) // to the end of the round

	snap := e.Snapshot()
	if snap.Phase != engine.PhaseIdle {
		t.Fatalf("phase = %v, want %v", snap.Phase, engine.PhaseIdle)
	}
	if snap.PositionSize != 0 {
		t.Errorf("position was not force-closed: %v", snap.PositionSize)
	}
	if snap.Balance <= 10000 {
		t.Errorf("balance on a rising path = %v, want > 10000", snap.Balance)
	}
	if snap.LastRoundPnl <= 0 {
		t.Errorf("last round pnl = %v, want > 0", snap.LastRoundPnl)
	}
	if snap.AllTimeHigh != snap.Balance {
		t.Errorf("all-time high = %v, want %v", snap.AllTimeHigh, snap.Balance)
	}
	if snap.NextRoundIn <= 0 {
		t.Error("no next-round countdown while idle")
	}
	if !store.Saved() {
		t.Error("settlement was not persisted")
	}

	advance(e, 8) // restart delay of 2s at 250ms ticks

	snap = e.Snapshot()
	if snap.Phase != engine.PhaseActive {
		t.Fatalf("phase after restart delay = %v, want %v", snap.Phase, engine.PhaseActive)
	}
	if snap.RoundNumber != 2 {
		t.Errorf("round number = %d, want 2", snap.RoundNumber)
	}
	if snap.Price != 100 {
		t.Errorf("new round opening price = %v, want 100", snap.Price)
	}
}

func TestLeverageCarriesAcrossRounds(t *testing.T) {
	e, _ := newEngine(t, shortConfig(), fixedSource{0.8})
	e.Start()
	e.SetLeverage(10)

	e.Buy(5)
	e.SetLeverage(20)
	if got := lastMessage(e); got != "Close your position before changing leverage." {
		t.Errorf("leverage change with open position: last message = %q", got)
	}
	if got := e.Snapshot().Leverage; got != 10 {
		t.Errorf("leverage after rejected change = %d, want 10", got)
	}

	e.PanicSell()
	e.SetLeverage(20)
	if got := e.Snapshot().Leverage; got != 20 {
		t.Errorf("leverage after flat change = %d, want 20", got)
	}

	advance(e, 28) // settle and restart
	snap := e.Snapshot()
	if snap.Phase != engine.PhaseActive || snap.RoundNumber != 2 {
		t.Fatalf("phase = %v round = %d, want active round 2", snap.Phase, snap.RoundNumber)
	}
	if snap.Leverage != 20 {
		t.Errorf("carried leverage = %d, want 20", snap.Leverage)
	}
}

func TestRescueRevivesBankruptAccount(t *testing.T) {
	cfg := shortConfig()
	e, _ := newEngine(t, cfg, fixedSource{0.2})
	e.Start()
	e.SetLeverage(50)
	e.Buy(80)
	advance(e, 25)
	if got := e.Snapshot().Phase; got != engine.PhaseBankrupt {
		t.Fatalf("setup: phase = %v, want bankrupt", got)
	}

	e.RequestRescue()
	snap := e.Snapshot()
	if !snap.RescuePending {
		t.Fatal("rescue not pending after request")
	}

	e.Advance(cfg.Rescue.AdDuration)
	snap = e.Snapshot()
	if snap.RescuePending {
		t.Error("rescue still pending after ad duration")
	}
	if snap.Phase != engine.PhaseActive {
		t.Fatalf("phase after rescue = %v, want active", snap.Phase)
	}
	if snap.RoundNumber != 2 {
		t.Errorf("round number after rescue = %d, want 2", snap.RoundNumber)
	}
	if snap.Cash != cfg.Rescue.Amount {
		t.Errorf("cash after rescue = %v, want %v", snap.Cash, cfg.Rescue.Amount)
	}
	if snap.RescueCooldown <= 0 {
		t.Error("no rescue cooldown after use")
	}

	// A second request inside the cooldown window is rejected.
	e.RequestRescue()
	if got := lastMessage(e); !strings.HasPrefix(got, "Ad Rescue on cooldown") {
		t.Errorf("rescue during cooldown: last message = %q", got)
	}
}

func TestRescueDailyLimit(t *testing.T) {
	cfg := shortConfig()
	cfg.Rescue.Cooldown = tick
	cfg.Rescue.DailyLimit = 1
	cfg.Rescue.ResetAfter = 24 * time.Hour
	e, _ := newEngine(t, cfg, fixedSource{0.2})
	e.Start()
	e.SetLeverage(50)
	e.Buy(80)
	advance(e, 25)

	e.RequestRescue()
	e.Advance(cfg.Rescue.AdDuration)

	// Burn the restored round back down to bankruptcy.
	e.Buy(15)
	advance(e, 25)
	if got := e.Snapshot().Phase; got != engine.PhaseBankrupt {
		t.Fatalf("setup: phase = %v, want bankrupt", got)
	}

	e.RequestRescue()
	if got := lastMessage(e); got != "Ad Rescue daily limit reached." {
		t.Errorf("rescue past daily limit: last message = %q", got)
	}
}

func TestDuplicateRescueRequestRejected(t *testing.T) {
	e, _ := newEngine(t, shortConfig(), fixedSource{0.2})
	e.Start()
	e.SetLeverage(50)
	e.Buy(80)
	advance(e, 25)

	e.RequestRescue()
	e.RequestRescue()
	if got := lastMessage(e); got != "An ad is already playing." {
		t.Errorf("duplicate rescue request: last message = %q", got)
	}
}

func TestSnapshotStreamDeliversAndDropsOnOverflow(t *testing.T) {
	cfg := shortConfig()
	cfg.SnapshotBuffer = 4
	e, _ := newEngine(t, cfg, fixedSource{0.5})
	e.Start()

	select {
	case snap := <-e.Snapshots():
		if snap.Phase != engine.PhaseActive {
			t.Errorf("streamed phase = %v, want active", snap.Phase)
		}
	default:
		t.Fatal("no snapshot published by Start")
	}

	advance(e, 10) // overruns the 4-slot buffer without a reader
	if e.DroppedSnapshots() == 0 {
		t.Error("expected dropped snapshots with no reader")
	}
}

func TestPriceStaysInsideBandAllRound(t *testing.T) {
	e, _ := newEngine(t, shortConfig(), fixedSource{0.2})
	e.Start()
	for i := 0; i < 20; i++ {
		e.Advance(tick)
		if p := e.Snapshot().Price; p < 50 || p > 150 {
			t.Fatalf("tick %d: price %v outside [50, 150]", i, p)
		}
	}
}

func TestCandlesAccumulateDuringRound(t *testing.T) {
	cfg := shortConfig()
	cfg.Candles.Interval = time.Second
	e, _ := newEngine(t, cfg, fixedSource{0.5})
	e.Start()

	advance(e, 12) // three full one-second windows plus change
	snap := e.Snapshot()
	if len(snap.Candles) < 3 {
		t.Fatalf("candles = %d, want at least 3", len(snap.Candles))
	}
	for i, c := range snap.Candles {
		if c.High < c.Low || c.Open < c.Low || c.Open > c.High || c.Close < c.Low || c.Close > c.High {
			t.Errorf("candle %d violates OHLC ordering: %+v", i, c)
		}
	}
}

func TestSavedAccountSurvivesRestart(t *testing.T) {
	store := account.NewMemoryStore()
	saved := account.Defaults()
	saved.Balance = 7777
	saved.RoundNumber = 4
	if err := store.Save(context.Background(), saved); err != nil {
		t.Fatal(err)
	}

	e := engine.New(shortConfig(), store, fixedSource{0.5}, time.Unix(0, 0))
	defer e.Close()
	e.Start()

	snap := e.Snapshot()
	if snap.Balance != 7777 {
		t.Errorf("balance = %v, want 7777", snap.Balance)
	}
	if snap.RoundNumber != 5 {
		t.Errorf("round number = %d, want 5", snap.RoundNumber)
	}
	if snap.Cash != 7777 {
		t.Errorf("round opened with cash %v, want 7777", snap.Cash)
	}
}

func TestFeedRecordsRoundLifecycle(t *testing.T) {
	e, _ := newEngine(t, shortConfig(), fixedSource{0.8})
	e.Start()
	e.Buy(10)
	advance(e, 20)

	var sawStart, sawForceSell, sawEnd bool
	for _, item := range e.News(40) {
		switch {
		case item.Message == "New round started! Good luck!":
			sawStart = true
			if item.Category != feed.CategorySystem {
				t.Errorf("round start category = %v, want system", item.Category)
			}
		case strings.HasPrefix(item.Message, "Round over: force-sold"):
			sawForceSell = true
		case strings.HasPrefix(item.Message, "Round ended. Final cash:"):
			sawEnd = true
		}
	}
	if !sawStart || !sawForceSell || !sawEnd {
		t.Errorf("lifecycle messages missing: start=%v forceSell=%v end=%v", sawStart, sawForceSell, sawEnd)
	}
}
