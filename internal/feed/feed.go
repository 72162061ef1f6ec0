package feed

import (
	"fmt"
	"sync"
	"time"
)

// Category classifies a feed entry for display.
type Category int

const (
	CategoryInfo Category = iota
	CategoryBuy
	CategorySell
	CategoryError
	CategorySystem
	CategoryEvent
)

func (c Category) String() string {
	switch c {
	case CategoryInfo:
		return "info"
	case CategoryBuy:
		return "buy"
	case CategorySell:
		return "sell"
	case CategoryError:
		return "error"
	case CategorySystem:
		return "system"
	case CategoryEvent:
		return "event"
	default:
		return "unknown"
	}
}

// Item is one entry in the notification feed.
type Item struct {
	Time     time.Time
	Category Category
	Message  string
}

// Feed maintains a bounded ring buffer of notifications. The engine is
// the sole producer; the UI reads it.
type Feed struct {
	mu    sync.RWMutex
	buf   []Item
	size  int
	start int
	count int
}

// NewFeed creates a Feed with the given capacity.
func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = 40
	}
	return &Feed{
		buf:  make([]Item, capacity),
		size: capacity,
	}
}

// Post appends an entry, evicting the oldest once full.
func (f *Feed) Post(t time.Time, cat Category, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	item := Item{Time: t, Category: cat, Message: msg}
	if f.count < f.size {
		f.buf[(f.start+f.count)%f.size] = item
		f.count++
		return
	}
	f.buf[f.start] = item
	f.start = (f.start + 1) % f.size
}

// Postf is Post with fmt.Sprintf formatting.
func (f *Feed) Postf(t time.Time, cat Category, format string, args ...any) {
	f.Post(t, cat, fmt.Sprintf(format, args...))
}

// Latest returns the last n items in chronological order (oldest first).
// Returns a copy (not internal references).
func (f *Feed) Latest(n int) []Item {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if n <= 0 || f.count == 0 {
		return nil
	}
	if n > f.count {
		n = f.count
	}

	out := make([]Item, n)
	first := (f.start + (f.count - n)) % f.size
	for i := 0; i < n; i++ {
		out[i] = f.buf[(first+i)%f.size]
	}
	return out
}

// Count returns the number of items currently held.
func (f *Feed) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.count
}
