package candle

import "time"

// Candle is one OHLC record. Start is the bucket key as an offset from
// the round start.
type Candle struct {
	Start time.Duration
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// Config holds configuration for the aggregator.
type Config struct {
	// Interval is the fixed width of each bucket.
	Interval time.Duration
	// MaxCandles caps the completed series; oldest candles are evicted
	// first so long sessions stay bounded.
	MaxCandles int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Interval:   15 * time.Second,
		MaxCandles: 100,
	}
}

// Aggregator buckets price samples into fixed-width time windows and
// maintains a bounded series of completed candles plus the one still
// being built.
type Aggregator struct {
	cfg       Config
	open      *Candle
	completed []Candle
}

// NewAggregator creates an empty Aggregator.
func NewAggregator(cfg Config) *Aggregator {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.MaxCandles <= 0 {
		cfg.MaxCandles = def.MaxCandles
	}
	return &Aggregator{cfg: cfg}
}

// Update folds one price sample into the series. If the sample opens a
// new bucket, the previous bucket is finalized and returned; otherwise
// nil.
func (a *Aggregator) Update(elapsed time.Duration, price float64) *Candle {
	bucket := elapsed.Truncate(a.cfg.Interval)

	if a.open != nil && a.open.Start == bucket {
		if price > a.open.High {
			a.open.High = price
		}
		if price < a.open.Low {
			a.open.Low = price
		}
		a.open.Close = price
		return nil
	}

	var done *Candle
	if a.open != nil {
		finished := *a.open
		a.completed = append(a.completed, finished)
		if len(a.completed) > a.cfg.MaxCandles {
			a.completed = a.completed[len(a.completed)-a.cfg.MaxCandles:]
		}
		done = &finished
	}
	a.open = &Candle{Start: bucket, Open: price, High: price, Low: price, Close: price}
	return done
}

// Candles returns the completed series plus the in-progress candle, as
// a copy safe to hand to a renderer.
func (a *Aggregator) Candles() []Candle {
	out := make([]Candle, len(a.completed), len(a.completed)+1)
	copy(out, a.completed)
	if a.open != nil {
		out = append(out, *a.open)
	}
	return out
}

// Completed returns only the finalized candles.
func (a *Aggregator) Completed() []Candle {
	out := make([]Candle, len(a.completed))
	copy(out, a.completed)
	return out
}

// Reset drops all state at a round boundary.
func (a *Aggregator) Reset() {
	a.open = nil
	a.completed = nil
}
