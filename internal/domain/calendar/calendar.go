package calendar

import (
	"context"
	"errors"
	"time"

	"villarent/internal/domain/shared/daterange"
	"villarent/internal/domain/shared/money"
	"villarent/internal/domain/villas"
)

var (
	ErrVillaRequired = errors.New("calendar: villa id is required")
	ErrDateRequired  = errors.New("calendar: date is required")
	ErrNegativeRate  = errors.New("calendar: rate must be non-negative")
)

// Entry is the rate and availability of one villa on one calendar day.
// The store holds at most one entry per (villa, date).
type Entry struct {
	VillaID   villas.VillaID
	Date      time.Time
	Available bool
	Rate      money.Amount
}

// Key returns the YYYY-MM-DD form of the entry date.
func (e Entry) Key() string {
	return daterange.Key(e.Date)
}

// NewEntry validates an entry and truncates its date to UTC midnight.
func NewEntry(villaID villas.VillaID, date time.Time, available bool, rate money.Amount) (Entry, error) {
	if villaID == "" {
		return Entry{}, ErrVillaRequired
	}
	if date.IsZero() {
		return Entry{}, ErrDateRequired
	}
	if rate.IsNegative() {
		return Entry{}, ErrNegativeRate
	}
	return Entry{VillaID: villaID, Date: daterange.Day(date), Available: available, Rate: rate}, nil
}

// Repository returns entries with dates inside the half-open range.
// An empty villa id queries every villa.
type Repository interface {
	InRange(ctx context.Context, r daterange.DateRange, villa villas.VillaID) ([]Entry, error)
}

// Writer is used by seeding and ingestion only. Entries replace any existing row for the same day.
type Writer interface {
	Upsert(ctx context.Context, entries []Entry) error
}

// Index keys entries by calendar day. Later duplicates win.
func Index(entries []Entry) map[string]Entry {
	out := make(map[string]Entry, len(entries))
	for _, entry := range entries {
		out[entry.Key()] = entry
	}
	return out
}
