package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"villarent/internal/app/uow"
	domainvillas "villarent/internal/domain/villas"
)

func TestLocationFilter(t *testing.T) {
	q := locationFilter(bson.M{}, domainvillas.Filter{})
	if len(q) != 0 {
		t.Fatalf("empty filter must not constrain location: %v", q)
	}
	q = locationFilter(bson.M{"_id": "v1"}, domainvillas.Filter{Location: "Goa"})
	if q["location"] != "Goa" || q["_id"] != "v1" {
		t.Fatalf("unexpected query %v", q)
	}
}

func TestCalendarDocumentTruncatesDate(t *testing.T) {
	doc := calendarDocument{
		VillaID:   "v1",
		Date:      time.Date(2025, 2, 3, 18, 30, 0, 0, time.FixedZone("IST", 5*3600+1800)),
		Available: true,
		Rate:      4200,
	}
	e := doc.toEntry()
	if e.Key() != "2025-02-03" || e.Date.Location() != time.UTC || e.Rate.Int64() != 4200 {
		t.Fatalf("unexpected entry %+v", e)
	}
}

func TestVillaDocumentRoundTrip(t *testing.T) {
	doc := villaDocument{ID: "v1", Name: "Casa", Location: "Goa", BasePrice: 30000}
	v := doc.toVilla()
	if v.ID != "v1" || v.BasePrice.Int64() != 30000 || v.Location != "Goa" {
		t.Fatalf("unexpected villa %+v", v)
	}
}

func TestFactoryRequiresDatabase(t *testing.T) {
	if _, err := (Factory{}).Begin(context.Background(), uow.TxOptions{ReadOnly: true}); !errors.Is(err, ErrUnitOfWorkNotConfigured) {
		t.Fatalf("expected ErrUnitOfWorkNotConfigured, got %v", err)
	}
}
