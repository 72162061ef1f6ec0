package ledger

import "errors"

var (
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrInsufficientCash = errors.New("not enough cash")
	ErrNoPosition       = errors.New("no position to sell")
	ErrPositionOpen     = errors.New("position open")
	ErrInvalidLeverage  = errors.New("leverage must be at least 1")
)

// Config holds the trading cost model.
type Config struct {
	// Slippage is the fractional premium a buyer pays (and discount a
	// seller accepts) relative to the mark price.
	Slippage float64
	// FeeRate is charged on notional for every fill.
	FeeRate float64
	// DustEpsilon is the position size below which a remainder snaps to
	// exactly zero after a sell.
	DustEpsilon float64
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Slippage:    0.0008,
		FeeRate:     0.0015,
		DustEpsilon: 1e-6,
	}
}

// Fill reports the priced result of a buy or sell.
type Fill struct {
	Quantity    float64
	Price       float64
	Notional    float64
	Fee         float64
	Margin      float64 // margin locked (buy) or released (sell)
	RealizedPnl float64 // sells only
}

// Ledger owns one round's cash, position, and leverage. All fills are
// immediate at the mark price adjusted for slippage; margin is
// notional/leverage and unrealized P&L scales with leverage.
type Ledger struct {
	cfg      Config
	cash     float64
	size     float64
	avgEntry float64
	leverage int
}

// New creates a Ledger holding the round's opening cash.
func New(cfg Config, cash float64, leverage int) *Ledger {
	def := DefaultConfig()
	if cfg.Slippage <= 0 {
		cfg.Slippage = def.Slippage
	}
	if cfg.FeeRate <= 0 {
		cfg.FeeRate = def.FeeRate
	}
	if cfg.DustEpsilon <= 0 {
		cfg.DustEpsilon = def.DustEpsilon
	}
	if leverage < 1 {
		leverage = 1
	}
	return &Ledger{cfg: cfg, cash: cash, leverage: leverage}
}

func (l *Ledger) Cash() float64     { return l.cash }
func (l *Ledger) Size() float64     { return l.size }
func (l *Ledger) AvgEntry() float64 { return l.avgEntry }
func (l *Ledger) Leverage() int     { return l.leverage }

// Buy opens or adds to the position at mark*(1+slippage). The fill
// consumes margin plus fee from cash and moves the average entry to the
// notional-weighted mean of the old and new fills.
func (l *Ledger) Buy(mark, qty float64) (Fill, error) {
	if qty <= 0 {
		return Fill{}, ErrInvalidQuantity
	}
	fillPrice := mark * (1 + l.cfg.Slippage)
	notional := qty * fillPrice
	margin := notional / float64(l.leverage)
	fee := notional * l.cfg.FeeRate
	if l.cash < margin+fee {
		return Fill{}, ErrInsufficientCash
	}

	l.cash -= margin + fee
	oldQty := l.size
	l.avgEntry = (l.avgEntry*oldQty + fillPrice*qty) / (oldQty + qty)
	l.size += qty

	return Fill{Quantity: qty, Price: fillPrice, Notional: notional, Fee: fee, Margin: margin}, nil
}

// Sell closes up to qty of the position at mark*(1-slippage), releasing
// margin and realizing leveraged P&L net of the fee. Quantities beyond
// the held size are clamped.
func (l *Ledger) Sell(mark, qty float64) (Fill, error) {
	if qty <= 0 {
		return Fill{}, ErrInvalidQuantity
	}
	if l.size <= 0 {
		return Fill{}, ErrNoPosition
	}
	if qty > l.size {
		qty = l.size
	}

	fillPrice := mark * (1 - l.cfg.Slippage)
	notional := qty * fillPrice
	fee := notional * l.cfg.FeeRate
	pnl := qty * (fillPrice - l.avgEntry) * float64(l.leverage)
	margin := qty * l.avgEntry / float64(l.leverage)

	l.cash += margin + pnl - fee
	l.size -= qty
	if l.size < l.cfg.DustEpsilon {
		l.size = 0
		l.avgEntry = 0
	}

	return Fill{Quantity: qty, Price: fillPrice, Notional: notional, Fee: fee, Margin: margin, RealizedPnl: pnl}, nil
}

// UnrealizedPnl is zero with no open position.
func (l *Ledger) UnrealizedPnl(mark float64) float64 {
	if l.size <= 0 {
		return 0
	}
	return l.size * (mark - l.avgEntry) * float64(l.leverage)
}

// MarginUsed returns the margin locked by the open position.
func (l *Ledger) MarginUsed() float64 {
	if l.size <= 0 {
		return 0
	}
	return l.size * l.avgEntry / float64(l.leverage)
}

// Equity is cash plus unrealized P&L at the mark price.
func (l *Ledger) Equity(mark float64) float64 {
	return l.cash + l.UnrealizedPnl(mark)
}

// SetLeverage changes leverage, which is only legal while flat:
// retroactively changing the risk on an open trade is rejected.
func (l *Ledger) SetLeverage(v int) error {
	if v < 1 {
		return ErrInvalidLeverage
	}
	if l.size > 0 {
		return ErrPositionOpen
	}
	l.leverage = v
	return nil
}

// Wipe models liquidation: the margin is lost in full rather than sold
// at a fill price, and the position disappears with it.
func (l *Ledger) Wipe() {
	l.cash = 0
	l.size = 0
	l.avgEntry = 0
}
