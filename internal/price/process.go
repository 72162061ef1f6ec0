package price

// Source is the randomness required by the price model. *math/rand.Rand
// satisfies it; tests can substitute a scripted source to make paths
// deterministic.
type Source interface {
	Float64() float64
	Intn(n int) int
}

// Config holds configuration for the price process.
type Config struct {
	// StartPrice is the price every round opens at.
	StartPrice float64
	// MinPrice and MaxPrice bound the price for the whole round.
	MinPrice float64
	MaxPrice float64
	// BaseVolatility is the half-width of the uniform per-tick return.
	BaseVolatility float64
	// DriftRange is the width of the uniform interval the per-round
	// drift is drawn from, centered on zero.
	DriftRange float64
	// ReversionBand is the deviation from StartPrice (as a fraction)
	// beyond which corrective drift kicks in.
	ReversionBand float64
	// ReversionStrength scales the corrective drift per unit of excess
	// deviation beyond the band.
	ReversionStrength float64
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		StartPrice:        100,
		MinPrice:          50,
		MaxPrice:          150,
		BaseVolatility:    0.006,
		DriftRange:        0.0004,
		ReversionBand:     0.45,
		ReversionStrength: 0.02,
	}
}

// Adjustment is the regime overlay applied to a single step.
type Adjustment struct {
	DriftBoost    float64
	VolMultiplier float64
}

// NoAdjustment leaves the base model untouched.
var NoAdjustment = Adjustment{VolMultiplier: 1}

// Process generates one price sample per tick from a drift/volatility
// model clamped to [MinPrice, MaxPrice]. It owns no clock; the caller
// decides what a tick is.
type Process struct {
	cfg     Config
	rng     Source
	drift   float64
	current float64
}

// NewProcess creates a Process and draws the first round's drift.
func NewProcess(cfg Config, rng Source) *Process {
	def := DefaultConfig()
	if cfg.StartPrice <= 0 {
		cfg.StartPrice = def.StartPrice
	}
	if cfg.MinPrice <= 0 {
		cfg.MinPrice = def.MinPrice
	}
	if cfg.MaxPrice <= cfg.MinPrice {
		cfg.MaxPrice = def.MaxPrice
	}
	if cfg.BaseVolatility <= 0 {
		cfg.BaseVolatility = def.BaseVolatility
	}

	p := &Process{cfg: cfg, rng: rng}
	p.Reset()
	return p
}

// Reset returns the price to StartPrice and draws a fresh round drift.
func (p *Process) Reset() {
	p.current = p.cfg.StartPrice
	p.drift = (p.rng.Float64() - 0.5) * p.cfg.DriftRange
}

// Current returns the latest price sample.
func (p *Process) Current() float64 { return p.current }

// Drift returns the fixed drift drawn for this round.
func (p *Process) Drift() float64 { return p.drift }

// Step advances the price by one tick under the given regime adjustment
// and returns the new price. The result always stays inside the round's
// price band.
func (p *Process) Step(adj Adjustment) float64 {
	vol := p.cfg.BaseVolatility
	drift := p.drift
	if adj.VolMultiplier > 0 {
		vol *= adj.VolMultiplier
	}
	drift += adj.DriftBoost

	// Pull back toward the band center once the path strays too far
	// from the start price, so the hard clamp is rarely reached.
	proximity := (p.current - p.cfg.StartPrice) / p.cfg.StartPrice
	if proximity > p.cfg.ReversionBand {
		drift -= (proximity - p.cfg.ReversionBand) * p.cfg.ReversionStrength
	}
	if proximity < -p.cfg.ReversionBand {
		drift += (-p.cfg.ReversionBand - proximity) * p.cfg.ReversionStrength
	}

	delta := (p.rng.Float64()-0.5)*2*vol + drift
	next := p.current * (1 + delta)
	if next < p.cfg.MinPrice {
		next = p.cfg.MinPrice
	}
	if next > p.cfg.MaxPrice {
		next = p.cfg.MaxPrice
	}
	p.current = next
	return next
}
