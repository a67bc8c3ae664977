package main

import (
	"fmt"
	"math/rand"
	"time"

	"villarent/internal/app/ingest"
	"villarent/internal/domain/shared/daterange"
)

var seedLocations = []string{"Goa", "Lonavala", "Alibaug", "Coorg"}

const (
	minRate          = 30000
	maxRate          = 50000
	availabilityOdds = 0.75
)

type generatorOptions struct {
	Villas    int
	From, To  time.Time
	Seed      int64
	BasePrice int64
}

// generate builds Villas villas with one calendar row per day in [From, To].
// Both bounds are inclusive.
func generate(opts generatorOptions) (ingest.Snapshot, error) {
	if opts.Villas <= 0 {
		return ingest.Snapshot{}, fmt.Errorf("villa count must be positive, got %d", opts.Villas)
	}
	from, to := daterange.Day(opts.From), daterange.Day(opts.To)
	if to.Before(from) {
		return ingest.Snapshot{}, fmt.Errorf("calendar end %s is before start %s", daterange.Key(to), daterange.Key(from))
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	days := int(to.Sub(from).Hours()/24) + 1

	snap := ingest.Snapshot{
		Villas:   make([]ingest.VillaRecord, 0, opts.Villas),
		Calendar: make([]ingest.EntryRecord, 0, opts.Villas*days),
	}
	for i := 1; i <= opts.Villas; i++ {
		id := fmt.Sprintf("villa-%03d", i)
		snap.Villas = append(snap.Villas, ingest.VillaRecord{
			ID:        id,
			Name:      fmt.Sprintf("Villa %d", i),
			Location:  seedLocations[i%len(seedLocations)],
			BasePrice: opts.BasePrice,
		})
		for d := 0; d < days; d++ {
			snap.Calendar = append(snap.Calendar, ingest.EntryRecord{
				VillaID:     id,
				Date:        daterange.Key(from.AddDate(0, 0, d)),
				IsAvailable: rng.Float64() < availabilityOdds,
				Rate:        int64(minRate + rng.Intn(maxRate-minRate+1)),
			})
		}
	}
	return snap, nil
}

// eventsFor splits snap into one villa event per villa followed by its calendar in batches.
func eventsFor(snap ingest.Snapshot, batch int, now time.Time) []ingest.Event {
	if batch <= 0 {
		batch = 500
	}
	byVilla := make(map[string][]ingest.EntryRecord, len(snap.Villas))
	for _, e := range snap.Calendar {
		byVilla[e.VillaID] = append(byVilla[e.VillaID], e)
	}
	var out []ingest.Event
	for _, v := range snap.Villas {
		out = append(out, ingest.NewVillaEvent(v, now))
		rows := byVilla[v.ID]
		for start := 0; start < len(rows); start += batch {
			end := min(start+batch, len(rows))
			out = append(out, ingest.NewCalendarEvent(rows[start:end], now))
		}
	}
	return out
}
