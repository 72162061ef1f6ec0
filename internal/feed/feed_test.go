package feed

import (
	"fmt"
	"testing"
	"time"
)

func TestLatestReturnsChronologicalOrder(t *testing.T) {
	f := NewFeed(10)
	base := time.Unix(0, 0)

	f.Post(base, CategoryInfo, "first")
	f.Post(base.Add(time.Second), CategoryBuy, "second")
	f.Post(base.Add(2*time.Second), CategorySell, "third")

	items := f.Latest(3)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].Message != "first" || items[2].Message != "third" {
		t.Errorf("unexpected order: %q ... %q", items[0].Message, items[2].Message)
	}
	if items[1].Category != CategoryBuy {
		t.Errorf("expected buy category, got %v", items[1].Category)
	}
}

func TestOldestEntriesDropAtCapacity(t *testing.T) {
	f := NewFeed(40)
	base := time.Unix(0, 0)

	for i := 0; i < 45; i++ {
		f.Postf(base.Add(time.Duration(i)*time.Second), CategoryInfo, "msg %d", i)
	}

	if f.Count() != 40 {
		t.Fatalf("expected count 40, got %d", f.Count())
	}
	items := f.Latest(40)
	if items[0].Message != "msg 5" {
		t.Errorf("expected oldest surviving entry 'msg 5', got %q", items[0].Message)
	}
	if items[39].Message != "msg 44" {
		t.Errorf("expected newest entry 'msg 44', got %q", items[39].Message)
	}
}

func TestLatestWithFewerItemsThanAsked(t *testing.T) {
	f := NewFeed(40)
	f.Post(time.Unix(0, 0), CategorySystem, "only one")

	items := f.Latest(40)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Message != "only one" {
		t.Errorf("unexpected item %q", items[0].Message)
	}
	if f.Latest(0) != nil {
		t.Error("Latest(0) must return nil")
	}
}

func TestCategoryStrings(t *testing.T) {
	cases := map[Category]string{
		CategoryInfo:   "info",
		CategoryBuy:    "buy",
		CategorySell:   "sell",
		CategoryError:  "error",
		CategorySystem: "system",
		CategoryEvent:  "event",
	}
	for cat, want := range cases {
		if got := fmt.Sprint(cat); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}
