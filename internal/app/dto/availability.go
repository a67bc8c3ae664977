package dto

import (
	"villarent/internal/domain/availability"
)

// AvailabilityPage is the paginated villa availability listing.
type AvailabilityPage struct {
	Meta PageMeta       `json:"meta"`
	Data []VillaSummary `json:"data"`
}

// PageMeta describes pagination. Total counts every matching villa, not the page.
type PageMeta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// VillaSummary is one listing row. Nights and Subtotal are null for undated requests.
type VillaSummary struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Location         string `json:"location"`
	Nights           *int   `json:"nights"`
	Subtotal         *int64 `json:"subtotal"`
	AvgPricePerNight int64  `json:"avg_price_per_night"`
}

// MapAvailabilityPage builds the response for one page of summaries.
func MapAvailabilityPage(page []availability.Summary, pageNum, limit, total int) AvailabilityPage {
	data := make([]VillaSummary, 0, len(page))
	for _, s := range page {
		data = append(data, MapVillaSummary(s))
	}
	return AvailabilityPage{
		Meta: PageMeta{Page: pageNum, Limit: limit, Total: total},
		Data: data,
	}
}

// MapVillaSummary copies a domain summary into its wire form.
func MapVillaSummary(s availability.Summary) VillaSummary {
	out := VillaSummary{
		ID:               string(s.VillaID),
		Name:             s.Name,
		Location:         s.Location,
		AvgPricePerNight: s.AvgPricePerNight.Int64(),
	}
	if s.Nights != nil {
		n := *s.Nights
		out.Nights = &n
	}
	if s.Subtotal != nil {
		v := s.Subtotal.Int64()
		out.Subtotal = &v
	}
	return out
}
