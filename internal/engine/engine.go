package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/zappabad/wipeout/internal/account"
	"github.com/zappabad/wipeout/internal/candle"
	"github.com/zappabad/wipeout/internal/feed"
	"github.com/zappabad/wipeout/internal/ledger"
	"github.com/zappabad/wipeout/internal/price"
)

// Engine runs the whole game: it owns the account, the active round,
// and every subsystem that mutates them. There is exactly one writer;
// the host drives time by calling Advance at its own cadence and all
// trading commands apply atomically between ticks.
type Engine struct {
	mu  sync.Mutex
	cfg Config

	store account.Store
	feed  *feed.Feed

	proc   *price.Process
	regime *price.Regime
	agg    *candle.Aggregator
	book   *ledger.Ledger // nil outside a round

	acct     account.Account
	phase    Phase
	leverage int // carried across rounds

	roundID    string
	roundStart time.Time
	liquidated bool

	now       time.Time
	restartAt time.Time // zero when no restart is scheduled

	rescuePending     bool
	rescueRequestedAt time.Time
	rescueAt          time.Time

	snapshots        chan Snapshot
	droppedSnapshots atomic.Int64
	closed           bool
	closeOnce        sync.Once
}

// New creates an Engine positioned at start on its synthetic clock and
// loads the account from the store. No round is running until Start.
func New(cfg Config, store account.Store, rng price.Source, start time.Time) *Engine {
	def := DefaultConfig()
	if cfg.RoundDuration <= 0 {
		cfg.RoundDuration = def.RoundDuration
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.RestartDelay <= 0 {
		cfg.RestartDelay = def.RestartDelay
	}
	if cfg.FeedCapacity <= 0 {
		cfg.FeedCapacity = def.FeedCapacity
	}
	if cfg.SnapshotBuffer <= 0 {
		cfg.SnapshotBuffer = def.SnapshotBuffer
	}
	if cfg.Rescue.Amount <= 0 {
		cfg.Rescue = def.Rescue
	}

	acct, err := store.Load(context.Background())
	if err != nil {
		// Unreadable state is treated as a fresh account.
		acct = account.Defaults()
	}

	e := &Engine{
		cfg:       cfg,
		store:     store,
		feed:      feed.NewFeed(cfg.FeedCapacity),
		proc:      price.NewProcess(cfg.Price, rng),
		regime:    price.NewRegime(cfg.Regime, rng),
		agg:       candle.NewAggregator(cfg.Candles),
		acct:      acct,
		leverage:  1,
		now:       start,
		snapshots: make(chan Snapshot, cfg.SnapshotBuffer),
	}
	return e
}

// Start begins the first round (or lands directly in the bankrupt state
// when the saved account is already wiped out).
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.startRound()
	e.publish()
}

// Advance moves the engine clock forward by dt and performs at most one
// tick of work. The host owns the real timer; tests call Advance in a
// loop with synthetic time.
func (e *Engine) Advance(dt time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.now = e.now.Add(dt)

	if e.rescuePending && !e.now.Before(e.rescueAt) {
		e.completeRescue()
	}

	switch e.phase {
	case PhaseIdle:
		if !e.restartAt.IsZero() && !e.now.Before(e.restartAt) {
			e.startRound()
		}
	case PhaseActive:
		e.tick()
	}

	e.publish()
}

// tick performs one round step: price, regime, liquidation, candles, in
// that order. Liquidation and the candle both see the tick's new price.
func (e *Engine) tick() {
	elapsed := e.now.Sub(e.roundStart)
	if elapsed >= e.cfg.RoundDuration {
		e.endRound()
		return
	}

	mark := e.proc.Step(e.regime.Adjustment())

	started, ended := e.regime.Step()
	if started != nil {
		e.feed.Postf(e.now, feed.CategoryEvent, "*** %s STARTED ***", started.Name)
	}
	if ended != nil {
		e.feed.Postf(e.now, feed.CategorySystem, "The %s has ended.", ended.Name)
	}

	if !e.liquidated {
		e.checkLiquidation(mark)
	}

	e.agg.Update(elapsed, mark)
}

func (e *Engine) startRound() {
	e.restartAt = time.Time{}

	if e.acct.Balance <= 0 && e.acct.BankruptCount > 0 {
		e.phase = PhaseBankrupt
		return
	}

	e.acct.RoundNumber++
	e.roundID = uuid.NewString()
	e.roundStart = e.now
	e.liquidated = false
	e.book = ledger.New(e.cfg.Ledger, e.acct.Balance, e.leverage)
	e.proc.Reset()
	e.regime.Reset()
	e.agg.Reset()
	e.phase = PhaseActive

	e.feed.Post(e.now, feed.CategorySystem, "New round started! Good luck!")
}

func (e *Engine) endRound() {
	// Force-close whatever is still open at the current price. After an
	// in-round liquidation the position is already zero.
	if e.book.Size() > 0 {
		if fill, err := e.book.Sell(e.proc.Current(), e.book.Size()); err == nil {
			e.feed.Postf(e.now, feed.CategorySell, "Round over: force-sold %.4f @ $%.2f", fill.Quantity, fill.Price)
		}
	}

	final := e.book.Cash()
	e.acct.LastRoundPnl = final - e.acct.Balance
	e.acct.Balance = final
	if e.acct.Balance > e.acct.AllTimeHigh {
		e.acct.AllTimeHigh = e.acct.Balance
	}
	e.book = nil

	if e.acct.Balance <= 0 {
		e.acct.Balance = 0
		e.acct.BankruptCount++
		e.phase = PhaseBankrupt
		e.persist()
		e.feed.Post(e.now, feed.CategoryError, "Account bankrupt. Watch an ad to get back in the game.")
		return
	}

	e.persist()
	e.feed.Postf(e.now, feed.CategorySystem, "Round ended. Final cash: $%.2f. Next round starts soon.", final)
	e.phase = PhaseIdle
	e.restartAt = e.now.Add(e.cfg.RestartDelay)
}

// checkLiquidation wipes the round when equity goes non-positive with a
// position open. The margin is lost outright; the round keeps ticking
// but trading stays blocked until settlement.
func (e *Engine) checkLiquidation(mark float64) {
	if e.book.Size() <= 0 {
		return
	}
	if e.book.Equity(mark) > 0 {
		return
	}
	e.book.Wipe()
	e.liquidated = true
	e.feed.Post(e.now, feed.CategoryError, "!!! POSITION LIQUIDATED !!!")
}

func (e *Engine) tradable() bool {
	return e.phase == PhaseActive && !e.liquidated
}

// Buy opens or adds to the position at the current price plus slippage.
// Invalid requests leave state untouched and post an error notice.
func (e *Engine) Buy(qty float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.tradable() {
		e.feed.Post(e.now, feed.CategoryError, "Trading is disabled.")
		e.publish()
		return
	}

	fill, err := e.book.Buy(e.proc.Current(), qty)
	switch {
	case errors.Is(err, ledger.ErrInsufficientCash):
		e.feed.Post(e.now, feed.CategoryError, "Not enough cash to buy.")
	case errors.Is(err, ledger.ErrInvalidQuantity):
		e.feed.Post(e.now, feed.CategoryError, "Buy quantity must be positive.")
	case err != nil:
		e.feed.Postf(e.now, feed.CategoryError, "Buy rejected: %v", err)
	default:
		e.feed.Postf(e.now, feed.CategoryBuy, "Bought %.4f @ $%.2f", fill.Quantity, fill.Price)
		e.checkLiquidation(e.proc.Current())
	}
	e.publish()
}

// Sell closes up to qty of the position at the current price minus
// slippage.
func (e *Engine) Sell(qty float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sellLocked(qty)
	e.publish()
}

// PanicSell dumps the whole position at once.
func (e *Engine) PanicSell() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.book != nil {
		e.sellLocked(e.book.Size())
	} else {
		e.sellLocked(0)
	}
	e.publish()
}

func (e *Engine) sellLocked(qty float64) {
	if !e.tradable() {
		e.feed.Post(e.now, feed.CategoryError, "Trading is disabled.")
		return
	}

	fill, err := e.book.Sell(e.proc.Current(), qty)
	switch {
	case errors.Is(err, ledger.ErrNoPosition):
		e.feed.Post(e.now, feed.CategoryError, "Nothing to sell.")
	case errors.Is(err, ledger.ErrInvalidQuantity):
		e.feed.Post(e.now, feed.CategoryError, "Sell quantity must be positive.")
	case err != nil:
		e.feed.Postf(e.now, feed.CategoryError, "Sell rejected: %v", err)
	default:
		e.feed.Postf(e.now, feed.CategorySell, "Sold %.4f @ $%.2f", fill.Quantity, fill.Price)
		e.checkLiquidation(e.proc.Current())
	}
}

// SetLeverage changes the leverage used for new fills. With a position
// open the request is rejected; between rounds it just updates the
// carried value.
func (e *Engine) SetLeverage(v int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if v < 1 {
		e.feed.Post(e.now, feed.CategoryError, "Leverage must be at least 1x.")
		e.publish()
		return
	}
	if e.book != nil {
		if err := e.book.SetLeverage(v); err != nil {
			e.feed.Post(e.now, feed.CategoryError, "Close your position before changing leverage.")
			e.publish()
			return
		}
	}
	e.leverage = v
	e.feed.Postf(e.now, feed.CategorySystem, "Leverage set to %dx.", v)
	e.publish()
}

// RequestRescue starts the ad-rescue flow: after the ad delay elapses
// on the engine clock, the rescue amount lands on the account and a new
// round starts. Cooldown and the rolling daily cap are checked up
// front.
func (e *Engine) RequestRescue() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rescuePending {
		e.feed.Post(e.now, feed.CategoryError, "An ad is already playing.")
		e.publish()
		return
	}

	r := &e.acct.Rescue
	if !r.LastUsedAt.IsZero() {
		if left := r.LastUsedAt.Add(e.cfg.Rescue.Cooldown).Sub(e.now); left > 0 {
			e.feed.Postf(e.now, feed.CategoryError, "Ad Rescue on cooldown for %ds", int(left.Seconds())+1)
			e.publish()
			return
		}
		if e.now.Sub(r.LastUsedAt) > e.cfg.Rescue.ResetAfter {
			r.Count = 0
		}
	}
	if r.Count >= e.cfg.Rescue.DailyLimit {
		e.feed.Post(e.now, feed.CategoryError, "Ad Rescue daily limit reached.")
		e.publish()
		return
	}

	e.rescuePending = true
	e.rescueRequestedAt = e.now
	e.rescueAt = e.now.Add(e.cfg.Rescue.AdDuration)
	e.feed.Post(e.now, feed.CategorySystem, "Ad playing... hold tight.")
	e.publish()
}

func (e *Engine) completeRescue() {
	e.rescuePending = false
	e.acct.Balance += e.cfg.Rescue.Amount
	e.acct.Rescue.LastUsedAt = e.rescueRequestedAt
	e.acct.Rescue.Count++
	e.persist()
	e.feed.Postf(e.now, feed.CategorySystem, "Ad Rescue successful! +$%.0f", e.cfg.Rescue.Amount)
	e.startRound()
}

func (e *Engine) persist() {
	if err := e.store.Save(context.Background(), e.acct); err != nil {
		e.feed.Post(e.now, feed.CategoryError, "Failed to save progress.")
	}
}

// Snapshot returns the current read model.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Snapshots is a drop-on-overflow stream of read models, one per
// Advance or command. Closed by Close.
func (e *Engine) Snapshots() <-chan Snapshot {
	return e.snapshots
}

// DroppedSnapshots returns the count of snapshots dropped on overflow.
func (e *Engine) DroppedSnapshots() int64 {
	return e.droppedSnapshots.Load()
}

// News returns the last n feed items in chronological order.
func (e *Engine) News(n int) []feed.Item {
	return e.feed.Latest(n)
}

// Close stops snapshot delivery. The account was already persisted at
// the last round boundary; mid-round state is deliberately not saved.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		close(e.snapshots)
		e.mu.Unlock()
	})
}

func (e *Engine) publish() {
	if e.closed {
		return
	}
	snap := e.snapshotLocked()
	select {
	case e.snapshots <- snap:
	default:
		e.droppedSnapshots.Add(1)
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	s := Snapshot{
		Phase:         e.phase,
		RoundID:       e.roundID,
		RoundNumber:   e.acct.RoundNumber,
		Leverage:      e.leverage,
		Price:         e.proc.Current(),
		Liquidated:    e.liquidated,
		Balance:       e.acct.Balance,
		AllTimeHigh:   e.acct.AllTimeHigh,
		BankruptCount: e.acct.BankruptCount,
		LastRoundPnl:  e.acct.LastRoundPnl,
		RescuePending: e.rescuePending,
	}

	if e.book != nil {
		mark := e.proc.Current()
		s.Cash = e.book.Cash()
		s.PositionSize = e.book.Size()
		s.AvgEntryPrice = e.book.AvgEntry()
		s.UnrealizedPnl = e.book.UnrealizedPnl(mark)
		s.MarginUsed = e.book.MarginUsed()
		if s.MarginUsed > 0 {
			s.PnlPercent = s.UnrealizedPnl / s.MarginUsed * 100
		}
	}

	if e.phase == PhaseActive {
		if remaining := e.cfg.RoundDuration - e.now.Sub(e.roundStart); remaining > 0 {
			s.Remaining = remaining
		}
		s.Candles = e.agg.Candles()
		if active := e.regime.Active(); active != nil {
			s.ActiveEvent = active.Spec.Name
		}
	}

	if last := e.acct.Rescue.LastUsedAt; !last.IsZero() {
		if left := last.Add(e.cfg.Rescue.Cooldown).Sub(e.now); left > 0 {
			s.RescueCooldown = left
		}
	}
	if e.rescuePending && e.cfg.Rescue.AdDuration > 0 {
		frac := float64(e.now.Sub(e.rescueRequestedAt)) / float64(e.cfg.Rescue.AdDuration)
		if frac < 0 {
			frac = 0
		}
		if frac > 1 {
			frac = 1
		}
		s.RescueProgress = frac
	}
	if e.phase == PhaseIdle && !e.restartAt.IsZero() {
		if in := e.restartAt.Sub(e.now); in > 0 {
			s.NextRoundIn = in
		}
	}

	return s
}
