package villas

import (
	"errors"
	"testing"
)

func TestNewVillaValidates(t *testing.T) {
	cases := []struct {
		name   string
		params CreateVillaParams
		err    error
	}{
		{"missing id", CreateVillaParams{Name: "A", Location: "Goa"}, ErrIDRequired},
		{"missing name", CreateVillaParams{ID: "v", Name: " ", Location: "Goa"}, ErrNameRequired},
		{"missing location", CreateVillaParams{ID: "v", Name: "A"}, ErrLocationRequired},
		{"negative price", CreateVillaParams{ID: "v", Name: "A", Location: "Goa", BasePrice: -1}, ErrBasePrice},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewVilla(tc.params); !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
		})
	}
	v, err := NewVilla(CreateVillaParams{ID: "v", Name: " Villa 1 ", Location: " Goa "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Name != "Villa 1" || v.Location != "Goa" || v.CreatedAt.IsZero() {
		t.Fatalf("unexpected villa %+v", v)
	}
}

func TestFilterMatches(t *testing.T) {
	v := &Villa{ID: "v", Location: "Goa"}
	if !(Filter{}).Matches(v) || !(Filter{Location: "Goa"}).Matches(v) {
		t.Fatal("expected match")
	}
	if (Filter{Location: "Coorg"}).Matches(v) || (Filter{}).Matches(nil) {
		t.Fatal("unexpected match")
	}
}
