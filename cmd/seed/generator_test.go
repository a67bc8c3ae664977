package main

import (
	"reflect"
	"testing"
	"time"

	"villarent/internal/app/ingest"
)

func seedWindow() (time.Time, time.Time) {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
}

func TestGenerateIsDeterministicAndBounded(t *testing.T) {
	from, to := seedWindow()
	opts := generatorOptions{Villas: 5, From: from, To: to, Seed: 42}
	a, err := generate(opts)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, _ := generate(opts)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed must produce the same snapshot")
	}
	if len(a.Villas) != 5 || len(a.Calendar) != 50 {
		t.Fatalf("expected 5 villas and 50 rows, got %d and %d", len(a.Villas), len(a.Calendar))
	}
	if a.Villas[0].Location != "Lonavala" || a.Villas[3].Location != "Goa" {
		t.Fatalf("unexpected locations %+v", a.Villas)
	}
	if a.Calendar[0].Date != "2025-01-01" || a.Calendar[9].Date != "2025-01-10" {
		t.Fatalf("unexpected calendar window %s..%s", a.Calendar[0].Date, a.Calendar[9].Date)
	}
	for _, e := range a.Calendar {
		if e.Rate < minRate || e.Rate > maxRate {
			t.Fatalf("rate out of range: %+v", e)
		}
		if _, err := e.Entry(); err != nil {
			t.Fatalf("generated row invalid: %v", err)
		}
	}
}

func TestGenerateRejectsBadInput(t *testing.T) {
	from, to := seedWindow()
	if _, err := generate(generatorOptions{Villas: 0, From: from, To: to}); err == nil {
		t.Fatal("expected error for zero villas")
	}
	if _, err := generate(generatorOptions{Villas: 1, From: to, To: from}); err == nil {
		t.Fatal("expected error for reversed window")
	}
}

func TestEventsForBatchesPerVilla(t *testing.T) {
	from, to := seedWindow()
	snap, _ := generate(generatorOptions{Villas: 2, From: from, To: to, Seed: 1})
	events := eventsFor(snap, 4, from)
	// per villa: 1 villa event + ceil(10/4)=3 calendar events
	if len(events) != 8 {
		t.Fatalf("expected 8 events, got %d", len(events))
	}
	if events[0].Type != ingest.VillaUpserted || events[1].Type != ingest.CalendarUpserted || len(events[3].Entries) != 2 {
		t.Fatalf("unexpected event layout %+v", events[:4])
	}
	if villaKey(events[5]) != "villa-002" {
		t.Fatalf("unexpected key %s", villaKey(events[5]))
	}
}
