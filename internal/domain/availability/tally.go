package availability

import (
	"villarent/internal/domain/calendar"
	"villarent/internal/domain/shared/money"
	"villarent/internal/domain/villas"
)

// Tally accumulates calendar rows of a single villa over a requested range.
type Tally struct {
	NightsMatched int
	Subtotal      money.Amount
	Available     bool
}

// Bookable reports whether every requested night has an available row.
func (t Tally) Bookable(nights int) bool {
	return t.Available && t.NightsMatched == nights
}

// Tallies groups per-villa tallies, remembering first-seen order.
type Tallies struct {
	order []villas.VillaID
	byID  map[villas.VillaID]*Tally
}

// Aggregate folds rows into per-villa tallies. Each row contributes exactly one night.
func Aggregate(rows []calendar.Entry) *Tallies {
	t := &Tallies{byID: make(map[villas.VillaID]*Tally)}
	for _, row := range rows {
		t.Add(row)
	}
	return t
}

// Add folds a single row. Availability, once cleared, stays cleared.
func (t *Tallies) Add(row calendar.Entry) {
	tally, ok := t.byID[row.VillaID]
	if !ok {
		tally = &Tally{Available: true}
		t.byID[row.VillaID] = tally
		t.order = append(t.order, row.VillaID)
	}
	if !row.Available {
		tally.Available = false
	}
	tally.NightsMatched++
	tally.Subtotal = tally.Subtotal.Add(row.Rate)
}

// Get returns the tally of a villa.
func (t *Tallies) Get(id villas.VillaID) (Tally, bool) {
	tally, ok := t.byID[id]
	if !ok {
		return Tally{}, false
	}
	return *tally, true
}

// Len reports the number of distinct villas seen.
func (t *Tallies) Len() int {
	return len(t.order)
}

// Bookable lists villas with an available row for every one of the requested nights.
func (t *Tallies) Bookable(nights int) []villas.VillaID {
	out := make([]villas.VillaID, 0, len(t.order))
	for _, id := range t.order {
		if t.byID[id].Bookable(nights) {
			out = append(out, id)
		}
	}
	return out
}
