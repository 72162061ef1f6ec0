package price

// EventSpec describes one entry in the market event catalog.
type EventSpec struct {
	Name          string
	DriftBoost    float64
	VolMultiplier float64
	// Duration in ticks is drawn uniformly from [MinTicks, MaxTicks).
	MinTicks int
	MaxTicks int
}

// DefaultCatalog returns the fixed set of market events.
func DefaultCatalog() []EventSpec {
	return []EventSpec{
		{Name: "Whale Pump", DriftBoost: 0.0005, VolMultiplier: 1.8, MinTicks: 12, MaxTicks: 25},
		{Name: "Rug Fear Dump", DriftBoost: -0.0006, VolMultiplier: 2.2, MinTicks: 12, MaxTicks: 25},
		{Name: "Exchange Lag", DriftBoost: 0, VolMultiplier: 4.0, MinTicks: 8, MaxTicks: 15},
		{Name: "Influencer FOMO", DriftBoost: 0.0008, VolMultiplier: 2.5, MinTicks: 15, MaxTicks: 30},
		{Name: "Liquidation Cascade", DriftBoost: -0.0009, VolMultiplier: 3.5, MinTicks: 10, MaxTicks: 20},
	}
}

// RegimeConfig holds configuration for the event regime.
type RegimeConfig struct {
	// Catalog is the set of events that may activate.
	Catalog []EventSpec
	// ActivationProb is the per-tick chance of starting an event while
	// none is active.
	ActivationProb float64
}

// DefaultRegimeConfig returns a RegimeConfig with reasonable defaults.
func DefaultRegimeConfig() RegimeConfig {
	return RegimeConfig{
		Catalog:        DefaultCatalog(),
		ActivationProb: 0.015,
	}
}

// ActiveEvent is the currently running event, if any.
type ActiveEvent struct {
	Spec      EventSpec
	TicksLeft int
}

// Regime is a regime-switching overlay on the price process. At most one
// event runs at a time; activation attempts are skipped while one is
// active so regime changes stay legible instead of compounding.
type Regime struct {
	cfg    RegimeConfig
	rng    Source
	active *ActiveEvent
}

// NewRegime creates a Regime with no active event.
func NewRegime(cfg RegimeConfig, rng Source) *Regime {
	if len(cfg.Catalog) == 0 {
		cfg.Catalog = DefaultCatalog()
	}
	if cfg.ActivationProb <= 0 {
		cfg.ActivationProb = DefaultRegimeConfig().ActivationProb
	}
	return &Regime{cfg: cfg, rng: rng}
}

// Adjustment returns the overlay the active event applies to the next
// price step, or NoAdjustment when none is running.
func (r *Regime) Adjustment() Adjustment {
	if r.active == nil {
		return NoAdjustment
	}
	return Adjustment{
		DriftBoost:    r.active.Spec.DriftBoost,
		VolMultiplier: r.active.Spec.VolMultiplier,
	}
}

// Step advances the regime by one tick. It either burns down the active
// event (reporting it in ended once it expires) or rolls for a new one
// (reporting it in started).
func (r *Regime) Step() (started, ended *EventSpec) {
	if r.active != nil {
		r.active.TicksLeft--
		if r.active.TicksLeft <= 0 {
			spec := r.active.Spec
			r.active = nil
			return nil, &spec
		}
		return nil, nil
	}

	if r.rng.Float64() < r.cfg.ActivationProb {
		spec := r.cfg.Catalog[r.rng.Intn(len(r.cfg.Catalog))]
		ticks := spec.MinTicks
		if span := spec.MaxTicks - spec.MinTicks; span > 0 {
			ticks += r.rng.Intn(span)
		}
		if ticks < 1 {
			ticks = 1
		}
		r.active = &ActiveEvent{Spec: spec, TicksLeft: ticks}
		return &spec, nil
	}
	return nil, nil
}

// Active returns a copy of the running event, or nil.
func (r *Regime) Active() *ActiveEvent {
	if r.active == nil {
		return nil
	}
	cp := *r.active
	return &cp
}

// Reset clears any active event at a round boundary.
func (r *Regime) Reset() { r.active = nil }
