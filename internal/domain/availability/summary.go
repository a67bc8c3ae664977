package availability

import (
	"sort"
	"strings"

	"villarent/internal/domain/shared/money"
	"villarent/internal/domain/villas"
)

// SortField names a summary attribute usable for ordering.
type SortField string

const (
	SortByAvgPrice SortField = "avg_price_per_night"
	SortBySubtotal SortField = "subtotal"
	SortByNights   SortField = "nights"
	SortByName     SortField = "name"
	SortByLocation SortField = "location"
	SortByID       SortField = "id"
)

// SortOrder is asc or desc.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Valid reports whether f is a known field.
func (f SortField) Valid() bool {
	switch f {
	case SortByAvgPrice, SortBySubtotal, SortByNights, SortByName, SortByLocation, SortByID:
		return true
	}
	return false
}

// Summary is one villa row of an availability listing. Nights and Subtotal are
// nil when no dates were requested.
type Summary struct {
	VillaID          villas.VillaID
	Name             string
	Location         string
	Nights           *int
	Subtotal         *money.Amount
	AvgPricePerNight money.Amount
}

// DatedSummary builds the summary of a villa that is bookable for the range.
func DatedSummary(v *villas.Villa, nights int, tally Tally) Summary {
	n := nights
	subtotal := tally.Subtotal
	return Summary{
		VillaID:          v.ID,
		Name:             v.Name,
		Location:         v.Location,
		Nights:           &n,
		Subtotal:         &subtotal,
		AvgPricePerNight: subtotal.Average(nights),
	}
}

// UndatedSummary uses the base price as the price signal.
func UndatedSummary(v *villas.Villa) Summary {
	return Summary{
		VillaID:          v.ID,
		Name:             v.Name,
		Location:         v.Location,
		AvgPricePerNight: v.BasePrice,
	}
}

// Sort orders summaries in place, keeping the relative order of equal values.
// Missing numeric values compare as zero.
func Sort(items []Summary, field SortField, order SortOrder) {
	desc := order == OrderDesc
	sort.SliceStable(items, func(i, j int) bool {
		c := compare(items[i], items[j], field)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compare(a, b Summary, field SortField) int {
	switch field {
	case SortByName:
		return strings.Compare(a.Name, b.Name)
	case SortByLocation:
		return strings.Compare(a.Location, b.Location)
	case SortByID:
		return strings.Compare(string(a.VillaID), string(b.VillaID))
	}
	x, y := numeric(a, field), numeric(b, field)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func numeric(s Summary, field SortField) int64 {
	switch field {
	case SortByNights:
		if s.Nights == nil {
			return 0
		}
		return int64(*s.Nights)
	case SortBySubtotal:
		if s.Subtotal == nil {
			return 0
		}
		return s.Subtotal.Int64()
	case SortByAvgPrice:
		return s.AvgPricePerNight.Int64()
	}
	return 0
}

// Paginate returns the 1-based page of at most limit items.
func Paginate(items []Summary, page, limit int) []Summary {
	if page < 1 || limit < 1 {
		return []Summary{}
	}
	total := len(items)
	if page-1 > total/limit {
		return []Summary{}
	}
	start := (page - 1) * limit
	if start >= total {
		return []Summary{}
	}
	end := start + limit
	if end > total {
		end = total
	}
	return items[start:end]
}
