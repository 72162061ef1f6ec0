package engine

import (
	"time"

	"github.com/zappabad/wipeout/internal/candle"
)

// Phase is the engine's lifecycle state.
type Phase int

const (
	// PhaseIdle: no round running; a restart may be pending.
	PhaseIdle Phase = iota
	// PhaseActive: a round is ticking.
	PhaseActive
	// PhaseBankrupt: the account is wiped out and waits for a rescue.
	PhaseBankrupt
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseActive:
		return "active"
	case PhaseBankrupt:
		return "bankrupt"
	default:
		return "unknown"
	}
}

// Snapshot is the read-only state emitted to the UI every tick.
type Snapshot struct {
	Phase Phase

	// Round
	RoundID       string
	RoundNumber   int
	Leverage      int
	Price         float64
	Cash          float64
	PositionSize  float64
	AvgEntryPrice float64
	UnrealizedPnl float64
	PnlPercent    float64 // unrealized P&L as a percent of margin used
	MarginUsed    float64
	Remaining     time.Duration
	Liquidated    bool
	ActiveEvent   string
	Candles       []candle.Candle

	// Account
	Balance       float64
	AllTimeHigh   float64
	BankruptCount int
	LastRoundPnl  float64

	// Rescue / restart
	RescueCooldown time.Duration
	RescuePending  bool
	RescueProgress float64 // 0..1 while an ad is playing
	NextRoundIn    time.Duration
}
