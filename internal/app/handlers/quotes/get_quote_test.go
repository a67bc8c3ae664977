package quotes

import (
	"context"
	"errors"
	"testing"
	"time"

	"villarent/internal/app/apperr"
	domaincalendar "villarent/internal/domain/calendar"
	"villarent/internal/domain/pricing"
	"villarent/internal/domain/shared/money"
	domainvillas "villarent/internal/domain/villas"
	"villarent/internal/infra/storage/memory"
)

func newHandler(t *testing.T, entries ...domaincalendar.Entry) *GetQuoteHandler {
	t.Helper()
	villaRepo := memory.NewVillaRepository()
	calRepo := memory.NewCalendarRepository()
	ctx := context.Background()
	if err := villaRepo.Upsert(ctx, &domainvillas.Villa{ID: "v1", Name: "Villa 1", Location: "Goa", BasePrice: 1000}); err != nil {
		t.Fatalf("upsert villa: %v", err)
	}
	if err := calRepo.Upsert(ctx, entries); err != nil {
		t.Fatalf("upsert calendar: %v", err)
	}
	return &GetQuoteHandler{UoWFactory: memory.Factory{VillasRepo: villaRepo, CalendarRepo: calRepo}}
}

func night(day int, available bool, rate int64) domaincalendar.Entry {
	return domaincalendar.Entry{
		VillaID:   "v1",
		Date:      time.Date(2025, time.February, day, 0, 0, 0, 0, time.UTC),
		Available: available,
		Rate:      money.Amount(rate),
	}
}

func TestQuoteAvailableStay(t *testing.T) {
	h := newHandler(t, night(1, true, 100), night(2, true, 200), night(3, true, 300))
	q, err := h.Handle(context.Background(), GetQuoteQuery{VillaID: "v1", CheckIn: "2025-02-01", CheckOut: "2025-02-04"})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !q.IsAvailable || q.Nights != 3 || q.Subtotal != 600 || q.GST != 108 || q.Total != 708 || q.GSTRate != 0.18 {
		t.Fatalf("unexpected quote %+v", q)
	}
	if q.Villa.ID != "v1" || q.Villa.Name != "Villa 1" || q.Villa.Location != "Goa" {
		t.Fatalf("unexpected villa %+v", q.Villa)
	}
	if q.CheckIn != "2025-02-01" || q.CheckOut != "2025-02-04" {
		t.Fatalf("raw dates must be echoed, got %s %s", q.CheckIn, q.CheckOut)
	}
}

func TestQuoteUnavailableNight(t *testing.T) {
	h := newHandler(t, night(1, true, 100), night(2, false, 200), night(3, true, 300))
	q, err := h.Handle(context.Background(), GetQuoteQuery{VillaID: "v1", CheckIn: "2025-02-01", CheckOut: "2025-02-04"})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if q.IsAvailable || q.Subtotal != 0 || q.GST != 0 || q.Total != 0 {
		t.Fatalf("expected zeroed unavailable quote, got %+v", q)
	}
	if len(q.NightlyBreakdown) != 3 || q.NightlyBreakdown[1].Rate != 200 || q.NightlyBreakdown[1].IsAvailable {
		t.Fatalf("unexpected breakdown %+v", q.NightlyBreakdown)
	}
}

func TestQuoteGapUsesBasePrice(t *testing.T) {
	h := newHandler(t, night(1, true, 100))
	q, err := h.Handle(context.Background(), GetQuoteQuery{VillaID: "v1", CheckIn: "2025-02-01", CheckOut: "2025-02-03"})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	gap := q.NightlyBreakdown[1]
	if gap.Date != "2025-02-02" || gap.Rate != 1000 || !gap.IsAvailable {
		t.Fatalf("unexpected gap night %+v", gap)
	}
	if !q.IsAvailable || q.Subtotal != 1100 {
		t.Fatalf("unexpected quote %+v", q)
	}
}

func TestQuoteCustomTaxRate(t *testing.T) {
	h := newHandler(t, night(1, true, 1000))
	h.Calculator = &pricing.Calculator{TaxRate: 0.12}
	q, err := h.Handle(context.Background(), GetQuoteQuery{VillaID: "v1", CheckIn: "2025-02-01", CheckOut: "2025-02-02"})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if q.GST != 120 || q.Total != 1120 || q.GSTRate != 0.12 {
		t.Fatalf("unexpected quote %+v", q)
	}
}

func TestQuoteErrors(t *testing.T) {
	h := newHandler(t)
	cases := []struct {
		name  string
		query GetQuoteQuery
		kind  error
		msg   string
	}{
		{"missing dates", GetQuoteQuery{VillaID: "v1", CheckIn: "2025-02-01"}, apperr.ErrInvalidRequest, MsgDatesRequired},
		{"bad date", GetQuoteQuery{VillaID: "v1", CheckIn: "soon", CheckOut: "2025-02-02"}, apperr.ErrInvalidRequest, "invalid date format"},
		{"reversed", GetQuoteQuery{VillaID: "v1", CheckIn: "2025-02-03", CheckOut: "2025-02-02"}, apperr.ErrInvalidRequest, "check_out must be after check_in"},
		{"reversed for unknown villa", GetQuoteQuery{VillaID: "nope", CheckIn: "2025-02-03", CheckOut: "2025-02-03"}, apperr.ErrInvalidRequest, "check_out must be after check_in"},
		{"unknown villa", GetQuoteQuery{VillaID: "nope", CheckIn: "2025-02-01", CheckOut: "2025-02-02"}, apperr.ErrNotFound, MsgVillaNotFound},
		{"empty villa", GetQuoteQuery{CheckIn: "2025-02-01", CheckOut: "2025-02-02"}, apperr.ErrNotFound, MsgVillaNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.Handle(context.Background(), tc.query)
			if !errors.Is(err, tc.kind) || err.Error() != tc.msg {
				t.Fatalf("got %v, want %v %q", err, tc.kind, tc.msg)
			}
		})
	}
}
