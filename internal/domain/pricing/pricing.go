package pricing

import (
	"errors"

	"villarent/internal/domain/calendar"
	"villarent/internal/domain/shared/daterange"
	"villarent/internal/domain/shared/money"
	"villarent/internal/domain/villas"
)

// GSTRate is the tax applied to fully available stays.
const GSTRate = 0.18

var (
	ErrVillaRequired = errors.New("pricing: villa is required")
	ErrNegativeTax   = errors.New("pricing: tax rate must be non-negative")
)

// NightRate is the price and availability of one night of a quote.
type NightRate struct {
	Date      string
	Rate      money.Amount
	Available bool
}

// Breakdown is the priced itinerary of a stay. Subtotal, GST and Total are
// zero unless every night is available; Nightly always lists raw rates.
type Breakdown struct {
	Nights    int
	Available bool
	Nightly   []NightRate
	Subtotal  money.Amount
	TaxRate   float64
	GST       money.Amount
	Total     money.Amount
}

// Calculator prices stays from calendar rows with base-price fallback.
type Calculator struct {
	TaxRate float64
}

// NewCalculator returns a calculator using GSTRate.
func NewCalculator() Calculator {
	return Calculator{TaxRate: GSTRate}
}

// Quote walks every night of r. A missing row means the night is not
// overridden: it stays available and is billed at the villa base price.
func (c Calculator) Quote(villa *villas.Villa, r daterange.DateRange, entries []calendar.Entry) (Breakdown, error) {
	if villa == nil {
		return Breakdown{}, ErrVillaRequired
	}
	if err := r.Validate(); err != nil {
		return Breakdown{}, err
	}
	if c.TaxRate < 0 {
		return Breakdown{}, ErrNegativeTax
	}
	byDay := calendar.Index(entries)
	days := r.Days()
	out := Breakdown{
		Nights:    len(days),
		Available: true,
		Nightly:   make([]NightRate, 0, len(days)),
		TaxRate:   c.TaxRate,
	}
	var subtotal money.Amount
	for _, day := range days {
		key := daterange.Key(day)
		night := NightRate{Date: key, Rate: villa.BasePrice, Available: true}
		if entry, ok := byDay[key]; ok {
			night.Rate = entry.Rate
			night.Available = entry.Available
			if !entry.Available {
				out.Available = false
			}
		}
		subtotal = subtotal.Add(night.Rate)
		out.Nightly = append(out.Nightly, night)
	}
	if out.Available {
		out.Subtotal = subtotal
		out.GST = subtotal.ApplyRate(c.TaxRate)
		out.Total = subtotal.Add(out.GST)
	}
	return out, nil
}
