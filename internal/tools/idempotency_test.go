package tools_test

import (
	"testing"
	"time"

	"github.com/foyerhq/foyer/internal/tools"
)

func TestIdempotencyDuplicateWithinTTL(t *testing.T) {
	g := tools.NewIdempotencyGuard(5 * time.Minute)

	if _, dup := g.Lookup("k1"); dup {
		t.Fatal("fresh key should not be a duplicate")
	}

	want := tools.Result{Success: true, Data: "first outcome"}
	g.Record("k1", want)

	got, dup := g.Lookup("k1")
	if !dup {
		t.Fatal("recorded key should be a duplicate")
	}
	if got.Data != "first outcome" {
		t.Errorf("duplicate should return the prior outcome, got %v", got.Data)
	}
}

func TestIdempotencyExpiry(t *testing.T) {
	g := tools.NewIdempotencyGuard(5 * time.Minute)
	now := time.Now()
	g.SetClock(func() time.Time { return now })

	g.Record("k1", tools.Result{Success: true})

	// Just inside the TTL.
	now = now.Add(4 * time.Minute)
	if _, dup := g.Lookup("k1"); !dup {
		t.Error("key should still be a duplicate inside the TTL")
	}

	// Past the TTL, lazily evicted.
	now = now.Add(2 * time.Minute)
	if _, dup := g.Lookup("k1"); dup {
		t.Error("key should expire after the TTL")
	}
}

func TestIdempotencyEmptyKeyIgnored(t *testing.T) {
	g := tools.NewIdempotencyGuard(0)
	g.Record("", tools.Result{Success: true})
	if _, dup := g.Lookup(""); dup {
		t.Error("empty key must never be a duplicate")
	}
}

func TestIdempotencyAmortizedSweep(t *testing.T) {
	g := tools.NewIdempotencyGuard(5 * time.Minute)
	now := time.Now()
	g.SetClock(func() time.Time { return now })

	// Fill past the sweep threshold with entries that immediately expire.
	for i := 0; i < 1100; i++ {
		g.Record(string(rune('a'))+time.Duration(i).String(), tools.Result{Success: true})
	}
	now = now.Add(10 * time.Minute)
	g.Record("trigger", tools.Result{Success: true})

	// All stale entries are gone; only entries recorded "now" survive.
	if _, dup := g.Lookup("trigger"); !dup {
		t.Error("fresh entry should survive the sweep")
	}
	if _, dup := g.Lookup("a1ns"); dup {
		t.Error("stale entry should have been swept")
	}
}
