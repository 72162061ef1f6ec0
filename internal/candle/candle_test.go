package candle

import (
	"testing"
	"time"
)

func msec(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func TestThreeWindowsProduceThreeCompletedCandles(t *testing.T) {
	cfg := Config{Interval: time.Second, MaxCandles: 100}
	a := NewAggregator(cfg)

	// Four interval-widths of ticks; the fourth bucket stays open.
	prices := map[int]float64{0: 100, 1: 101, 2: 99, 3: 102}
	for elapsed := 0; elapsed < 4000; elapsed += 250 {
		a.Update(msec(elapsed), prices[elapsed/1000])
	}

	done := a.Completed()
	if len(done) != 3 {
		t.Fatalf("expected 3 completed candles, got %d", len(done))
	}
	for i, c := range done {
		want := prices[i]
		if c.Open != want {
			t.Errorf("candle %d: expected open %v (first price in window), got %v", i, want, c.Open)
		}
		if c.Close != want {
			t.Errorf("candle %d: expected close %v (last price in window), got %v", i, want, c.Close)
		}
		if c.Start != time.Duration(i)*time.Second {
			t.Errorf("candle %d: expected bucket start %v, got %v", i, time.Duration(i)*time.Second, c.Start)
		}
	}
}

func TestHighLowCloseTrackWithinBucket(t *testing.T) {
	a := NewAggregator(Config{Interval: time.Second, MaxCandles: 10})

	a.Update(msec(0), 100)
	a.Update(msec(250), 104)
	a.Update(msec(500), 97)
	a.Update(msec(750), 101)

	candles := a.Candles()
	if len(candles) != 1 {
		t.Fatalf("expected 1 open candle, got %d", len(candles))
	}
	c := candles[0]
	if c.Open != 100 || c.High != 104 || c.Low != 97 || c.Close != 101 {
		t.Errorf("unexpected OHLC: %+v", c)
	}
}

func TestUpdateReturnsCompletedCandleAtBucketBoundary(t *testing.T) {
	a := NewAggregator(Config{Interval: time.Second, MaxCandles: 10})

	if done := a.Update(msec(0), 100); done != nil {
		t.Error("first tick must not complete a candle")
	}
	if done := a.Update(msec(500), 105); done != nil {
		t.Error("same bucket must not complete a candle")
	}

	done := a.Update(msec(1000), 103)
	if done == nil {
		t.Fatal("crossing the boundary must complete the open candle")
	}
	if done.Open != 100 || done.Close != 105 {
		t.Errorf("unexpected completed candle: %+v", done)
	}
}

func TestOldestCandleEvictedAtCap(t *testing.T) {
	a := NewAggregator(Config{Interval: time.Second, MaxCandles: 3})

	for i := 0; i < 6; i++ {
		a.Update(time.Duration(i)*time.Second, float64(100+i))
	}

	done := a.Completed()
	if len(done) != 3 {
		t.Fatalf("expected capped length 3, got %d", len(done))
	}
	if done[0].Open != 102 {
		t.Errorf("expected oldest surviving candle to open at 102, got %v", done[0].Open)
	}
}

func TestResetDropsAllState(t *testing.T) {
	a := NewAggregator(DefaultConfig())
	a.Update(0, 100)
	a.Update(20*time.Second, 105)

	a.Reset()
	if len(a.Candles()) != 0 {
		t.Errorf("expected empty series after reset, got %d", len(a.Candles()))
	}
}
