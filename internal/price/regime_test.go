package price

import (
	"testing"
)

func TestRegimeActivatesFromCatalog(t *testing.T) {
	src := &scriptSource{
		floats: []float64{0.5, 0.014}, // skip one tick, then activate
		ints:   []int{2, 3},           // catalog index, duration offset
	}
	r := NewRegime(DefaultRegimeConfig(), src)

	started, ended := r.Step()
	if started != nil || ended != nil {
		t.Fatal("no event should start on a high draw")
	}
	if r.Active() != nil {
		t.Fatal("expected no active event")
	}

	started, ended = r.Step()
	if ended != nil {
		t.Fatal("nothing to end yet")
	}
	if started == nil {
		t.Fatal("expected an event to start")
	}
	if started.Name != "Exchange Lag" {
		t.Errorf("expected catalog entry 2 (Exchange Lag), got %q", started.Name)
	}

	active := r.Active()
	if active == nil {
		t.Fatal("expected an active event")
	}
	if active.TicksLeft != 8+3 {
		t.Errorf("expected duration 11 ticks, got %d", active.TicksLeft)
	}

	adj := r.Adjustment()
	if adj.VolMultiplier != 4.0 || adj.DriftBoost != 0 {
		t.Errorf("unexpected adjustment %+v", adj)
	}
}

func TestRegimeEventsAreMutuallyExclusive(t *testing.T) {
	// Every draw would activate, but while an event runs the regime must
	// not even roll for a new one.
	src := &scriptSource{floats: []float64{0}, ints: []int{0, 0}}
	for i := 0; i < 100; i++ {
		src.floats = append(src.floats, 0)
	}
	r := NewRegime(DefaultRegimeConfig(), src)

	started, _ := r.Step()
	if started == nil {
		t.Fatal("expected activation")
	}
	duration := r.Active().TicksLeft

	for i := 0; i < duration-1; i++ {
		s, e := r.Step()
		if s != nil {
			t.Fatalf("second event started while one was active (tick %d)", i)
		}
		if e != nil {
			t.Fatalf("event ended early (tick %d)", i)
		}
	}

	_, ended := r.Step()
	if ended == nil {
		t.Fatal("expected the event to end after its duration")
	}
	if r.Active() != nil {
		t.Error("expected no active event after expiry")
	}
}

func TestRegimeDurationWithinCatalogRange(t *testing.T) {
	for idx, spec := range DefaultCatalog() {
		for offset := 0; offset < 40; offset++ {
			src := &scriptSource{floats: []float64{0}, ints: []int{idx, offset}}
			r := NewRegime(DefaultRegimeConfig(), src)

			started, _ := r.Step()
			if started == nil {
				t.Fatal("expected activation")
			}
			got := r.Active().TicksLeft
			if got < spec.MinTicks || got >= spec.MaxTicks {
				t.Errorf("%s: duration %d outside [%d, %d)", spec.Name, got, spec.MinTicks, spec.MaxTicks)
			}
		}
	}
}

func TestRegimeResetClearsActiveEvent(t *testing.T) {
	src := &scriptSource{floats: []float64{0}, ints: []int{0, 0}}
	r := NewRegime(DefaultRegimeConfig(), src)

	if started, _ := r.Step(); started == nil {
		t.Fatal("expected activation")
	}
	r.Reset()
	if r.Active() != nil {
		t.Error("reset must clear the active event")
	}
	if adj := r.Adjustment(); adj != NoAdjustment {
		t.Errorf("expected NoAdjustment after reset, got %+v", adj)
	}
}
