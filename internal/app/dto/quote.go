package dto

import (
	"villarent/internal/domain/pricing"
	"villarent/internal/domain/villas"
)

// Quote is the priced itinerary of one villa stay.
type Quote struct {
	Villa            VillaRef    `json:"villa"`
	CheckIn          string      `json:"check_in"`
	CheckOut         string      `json:"check_out"`
	Nights           int         `json:"nights"`
	IsAvailable      bool        `json:"is_available"`
	NightlyBreakdown []NightRate `json:"nightly_breakdown"`
	Subtotal         int64       `json:"subtotal"`
	GSTRate          float64     `json:"gst_rate"`
	GST              int64       `json:"gst"`
	Total            int64       `json:"total"`
}

type VillaRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

type NightRate struct {
	Date        string `json:"date"`
	Rate        int64  `json:"rate"`
	IsAvailable bool   `json:"is_available"`
}

// MapQuote echoes the raw check-in/check-out input alongside the breakdown.
func MapQuote(villa *villas.Villa, checkIn, checkOut string, b pricing.Breakdown) Quote {
	nightly := make([]NightRate, 0, len(b.Nightly))
	for _, n := range b.Nightly {
		nightly = append(nightly, NightRate{Date: n.Date, Rate: n.Rate.Int64(), IsAvailable: n.Available})
	}
	return Quote{
		Villa: VillaRef{
			ID:       string(villa.ID),
			Name:     villa.Name,
			Location: villa.Location,
		},
		CheckIn:          checkIn,
		CheckOut:         checkOut,
		Nights:           b.Nights,
		IsAvailable:      b.Available,
		NightlyBreakdown: nightly,
		Subtotal:         b.Subtotal.Int64(),
		GSTRate:          b.TaxRate,
		GST:              b.GST.Int64(),
		Total:            b.Total.Int64(),
	}
}
