package memory

import (
	"context"
	"sort"
	"sync"

	domaincalendar "villarent/internal/domain/calendar"
	"villarent/internal/domain/shared/daterange"
	domainvillas "villarent/internal/domain/villas"
)

// VillaRepository is an in-memory villa store. Reads return villas in insertion order.
type VillaRepository struct {
	mu    sync.RWMutex
	order []domainvillas.VillaID
	items map[domainvillas.VillaID]*domainvillas.Villa
}

// NewVillaRepository builds an empty repository.
func NewVillaRepository() *VillaRepository {
	return &VillaRepository{
		items: make(map[domainvillas.VillaID]*domainvillas.Villa),
	}
}

// ByID returns a villa or ErrVillaNotFound.
func (r *VillaRepository) ByID(ctx context.Context, id domainvillas.VillaID) (*domainvillas.Villa, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	villa, ok := r.items[id]
	if !ok {
		return nil, domainvillas.ErrVillaNotFound
	}
	clone := *villa
	return &clone, nil
}

// List returns every villa matching filter.
func (r *VillaRepository) List(ctx context.Context, filter domainvillas.Filter) ([]*domainvillas.Villa, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainvillas.Villa, 0, len(r.order))
	for _, id := range r.order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if villa := r.items[id]; filter.Matches(villa) {
			clone := *villa
			out = append(out, &clone)
		}
	}
	return out, nil
}

// ByIDs returns the villas among ids matching filter. Unknown ids are skipped.
func (r *VillaRepository) ByIDs(ctx context.Context, ids []domainvillas.VillaID, filter domainvillas.Filter) ([]*domainvillas.Villa, error) {
	wanted := make(map[domainvillas.VillaID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainvillas.Villa, 0, len(ids))
	for _, id := range r.order {
		if _, ok := wanted[id]; !ok {
			continue
		}
		if villa := r.items[id]; filter.Matches(villa) {
			clone := *villa
			out = append(out, &clone)
		}
	}
	return out, nil
}

// Upsert stores or replaces a villa, keeping its original position.
func (r *VillaRepository) Upsert(ctx context.Context, villa *domainvillas.Villa) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[villa.ID]; !ok {
		r.order = append(r.order, villa.ID)
	}
	clone := *villa
	r.items[villa.ID] = &clone
	return nil
}

// CalendarRepository keeps one entry per (villa, day).
type CalendarRepository struct {
	mu     sync.RWMutex
	order  []domainvillas.VillaID
	byDays map[domainvillas.VillaID]map[string]domaincalendar.Entry
}

// NewCalendarRepository returns an empty calendar store.
func NewCalendarRepository() *CalendarRepository {
	return &CalendarRepository{
		byDays: make(map[domainvillas.VillaID]map[string]domaincalendar.Entry),
	}
}

// InRange returns entries dated inside r, grouped by villa and ordered by date.
func (r *CalendarRepository) InRange(ctx context.Context, dr daterange.DateRange, villa domainvillas.VillaID) ([]domaincalendar.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.order
	if villa != "" {
		ids = []domainvillas.VillaID{villa}
	}
	var out []domaincalendar.Entry
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		days, ok := r.byDays[id]
		if !ok {
			continue
		}
		start := len(out)
		for _, entry := range days {
			if dr.ContainsDate(entry.Date) {
				out = append(out, entry)
			}
		}
		chunk := out[start:]
		sort.Slice(chunk, func(i, j int) bool { return chunk[i].Date.Before(chunk[j].Date) })
	}
	return out, nil
}

// Upsert writes entries, replacing any row of the same villa and day.
func (r *CalendarRepository) Upsert(ctx context.Context, entries []domaincalendar.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range entries {
		entry.Date = daterange.Day(entry.Date)
		days, ok := r.byDays[entry.VillaID]
		if !ok {
			days = make(map[string]domaincalendar.Entry)
			r.byDays[entry.VillaID] = days
			r.order = append(r.order, entry.VillaID)
		}
		days[entry.Key()] = entry
	}
	return nil
}

var (
	_ domainvillas.Repository   = (*VillaRepository)(nil)
	_ domainvillas.Writer       = (*VillaRepository)(nil)
	_ domaincalendar.Repository = (*CalendarRepository)(nil)
	_ domaincalendar.Writer     = (*CalendarRepository)(nil)
)
