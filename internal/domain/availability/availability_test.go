package availability

import (
	"testing"
	"time"

	"villarent/internal/domain/calendar"
	"villarent/internal/domain/shared/money"
	"villarent/internal/domain/villas"
)

func entry(villa string, day int, available bool, rate int64) calendar.Entry {
	return calendar.Entry{
		VillaID:   villas.VillaID(villa),
		Date:      time.Date(2025, time.March, day, 0, 0, 0, 0, time.UTC),
		Available: available,
		Rate:      money.Amount(rate),
	}
}

func TestAggregateSelectsFullyAvailableVillas(t *testing.T) {
	rows := []calendar.Entry{
		entry("full", 1, true, 100),
		entry("partial", 1, true, 100),
		entry("missing", 1, true, 100),
		entry("full", 2, true, 200),
		entry("partial", 2, false, 200),
		entry("full", 3, true, 300),
		entry("partial", 3, true, 300),
		entry("missing", 3, true, 300),
	}
	tallies := Aggregate(rows)
	if tallies.Len() != 3 {
		t.Fatalf("expected 3 villas, got %d", tallies.Len())
	}
	got := tallies.Bookable(3)
	if len(got) != 1 || got[0] != "full" {
		t.Fatalf("expected only full villa, got %v", got)
	}
	full, _ := tallies.Get("full")
	if full.Subtotal != 600 || full.NightsMatched != 3 || !full.Available {
		t.Fatalf("unexpected full tally %+v", full)
	}
	partial, _ := tallies.Get("partial")
	if partial.Available {
		t.Fatal("partial villa should be flagged unavailable")
	}
	missing, _ := tallies.Get("missing")
	if missing.NightsMatched != 2 || !missing.Available {
		t.Fatalf("unexpected missing tally %+v", missing)
	}
}

func TestAvailabilityStaysClearedAfterUnavailableRow(t *testing.T) {
	tallies := Aggregate([]calendar.Entry{
		entry("v", 1, false, 10),
		entry("v", 2, true, 10),
		entry("v", 3, true, 10),
	})
	tally, ok := tallies.Get("v")
	if !ok || tally.Available || tally.Bookable(3) {
		t.Fatalf("expected cleared availability, got %+v", tally)
	}
}

func TestDatedSummaryRoundsAverage(t *testing.T) {
	v := &villas.Villa{ID: "v1", Name: "Villa 1", Location: "Goa", BasePrice: 999}
	s := DatedSummary(v, 3, Tally{NightsMatched: 3, Subtotal: 100, Available: true})
	if s.AvgPricePerNight != 33 {
		t.Fatalf("expected avg 33, got %d", s.AvgPricePerNight)
	}
	if s.Nights == nil || *s.Nights != 3 || s.Subtotal == nil || *s.Subtotal != 100 {
		t.Fatalf("unexpected summary %+v", s)
	}
	u := UndatedSummary(v)
	if u.Nights != nil || u.Subtotal != nil || u.AvgPricePerNight != 999 {
		t.Fatalf("unexpected undated summary %+v", u)
	}
}

func ptrInt(v int) *int { return &v }

func ptrAmount(v int64) *money.Amount {
	a := money.Amount(v)
	return &a
}

func ids(items []Summary) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, string(item.VillaID))
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSortIsStableInBothDirections(t *testing.T) {
	base := []Summary{
		{VillaID: "a", Name: "C", Nights: ptrInt(2), Subtotal: ptrAmount(300), AvgPricePerNight: 150},
		{VillaID: "b", Name: "A", Nights: ptrInt(2), Subtotal: ptrAmount(100), AvgPricePerNight: 50},
		{VillaID: "c", Name: "B", Nights: ptrInt(2), Subtotal: ptrAmount(300), AvgPricePerNight: 150},
		{VillaID: "d", Name: "D", AvgPricePerNight: 0},
	}
	cases := []struct {
		field SortField
		order SortOrder
		want  []string
	}{
		{SortByAvgPrice, OrderAsc, []string{"d", "b", "a", "c"}},
		{SortByAvgPrice, OrderDesc, []string{"a", "c", "b", "d"}},
		{SortBySubtotal, OrderAsc, []string{"d", "b", "a", "c"}},
		{SortBySubtotal, OrderDesc, []string{"a", "c", "b", "d"}},
		{SortByNights, OrderAsc, []string{"d", "a", "b", "c"}},
		{SortByNights, OrderDesc, []string{"a", "b", "c", "d"}},
		{SortByName, OrderAsc, []string{"b", "c", "a", "d"}},
		{SortByName, OrderDesc, []string{"d", "a", "c", "b"}},
	}
	for _, tc := range cases {
		t.Run(string(tc.field)+"_"+string(tc.order), func(t *testing.T) {
			items := append([]Summary(nil), base...)
			Sort(items, tc.field, tc.order)
			if got := ids(items); !equal(got, tc.want) {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestPaginate(t *testing.T) {
	items := make([]Summary, 0, 25)
	for i := 0; i < 25; i++ {
		items = append(items, Summary{VillaID: villas.VillaID(rune('a' + i))})
	}
	cases := []struct {
		page, limit, want int
	}{
		{1, 10, 10},
		{3, 10, 5},
		{4, 10, 0},
		{1, 100, 25},
		{1 << 40, 10, 0},
		{0, 10, 0},
	}
	for _, tc := range cases {
		got := Paginate(items, tc.page, tc.limit)
		if len(got) != tc.want {
			t.Errorf("page %d limit %d: got %d items want %d", tc.page, tc.limit, len(got), tc.want)
		}
	}
	second := Paginate(items, 2, 10)
	if second[0].VillaID != items[10].VillaID {
		t.Fatalf("page 2 should start at item 10, got %s", second[0].VillaID)
	}
}

func TestSortFieldValid(t *testing.T) {
	if !SortByAvgPrice.Valid() || !SortByLocation.Valid() {
		t.Fatal("known fields must be valid")
	}
	if SortField("rating").Valid() {
		t.Fatal("unknown field must be invalid")
	}
}
