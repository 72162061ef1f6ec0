package account

import "time"

// Rescue tracks usage of the ad-rescue cash injection.
type Rescue struct {
	Count      int
	LastUsedAt time.Time // zero value means never used
}

// Account is the single record that survives across rounds: balance,
// high-water mark, bankruptcy tally, and rescue bookkeeping. It is owned
// by the engine and mutated only at round boundaries or when a rescue
// completes.
type Account struct {
	Balance       float64
	AllTimeHigh   float64
	BankruptCount int
	LastRoundPnl  float64
	Rescue        Rescue
	RoundNumber   int
}

// Defaults returns a fresh account.
func Defaults() Account {
	return Account{
		Balance:     10000,
		AllTimeHigh: 10000,
	}
}
