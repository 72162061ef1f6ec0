package engine

import (
	"time"

	"github.com/zappabad/wipeout/internal/candle"
	"github.com/zappabad/wipeout/internal/ledger"
	"github.com/zappabad/wipeout/internal/price"
)

// RescueConfig governs the ad-rescue cash injection.
type RescueConfig struct {
	// Amount credited to the account when a rescue completes.
	Amount float64
	// Cooldown is the minimum gap between rescues.
	Cooldown time.Duration
	// DailyLimit caps rescues per rolling day.
	DailyLimit int
	// ResetAfter is how long since the last use before the daily
	// counter resets.
	ResetAfter time.Duration
	// AdDuration is the opaque delay between requesting a rescue and
	// the cash arriving.
	AdDuration time.Duration
}

// Config holds configuration for the engine.
type Config struct {
	// RoundDuration is the fixed length of one round.
	RoundDuration time.Duration
	// TickInterval is the cadence the host is expected to call Advance
	// at; the engine itself owns no timer.
	TickInterval time.Duration
	// RestartDelay is the pause between a settled round and the next.
	RestartDelay time.Duration
	// FeedCapacity bounds the notification feed.
	FeedCapacity int
	// SnapshotBuffer is the size of the snapshot channel.
	SnapshotBuffer int

	Price   price.Config
	Regime  price.RegimeConfig
	Ledger  ledger.Config
	Candles candle.Config
	Rescue  RescueConfig
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		RoundDuration:  5 * time.Minute,
		TickInterval:   250 * time.Millisecond,
		RestartDelay:   2 * time.Second,
		FeedCapacity:   40,
		SnapshotBuffer: 256,
		Price:          price.DefaultConfig(),
		Regime:         price.DefaultRegimeConfig(),
		Ledger:         ledger.DefaultConfig(),
		Candles:        candle.DefaultConfig(),
		Rescue: RescueConfig{
			Amount:     2000,
			Cooldown:   60 * time.Second,
			DailyLimit: 10,
			ResetAfter: 24 * time.Hour,
			AdDuration: 3 * time.Second,
		},
	}
}
