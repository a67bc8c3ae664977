package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	domaincalendar "villarent/internal/domain/calendar"
	"villarent/internal/domain/shared/daterange"
	"villarent/internal/domain/shared/money"
	domainvillas "villarent/internal/domain/villas"
)

// EventType names an ingestion event.
type EventType string

const (
	VillaUpserted    EventType = "villa.upserted"
	CalendarUpserted EventType = "calendar.upserted"
)

// Event is the wire form published on the calendar topic.
type Event struct {
	ID         string        `json:"id"`
	Type       EventType     `json:"type"`
	OccurredAt time.Time     `json:"occurred_at"`
	Villa      *VillaRecord  `json:"villa,omitempty"`
	Entries    []EntryRecord `json:"entries,omitempty"`
}

// VillaRecord is the wire form of a villa.
type VillaRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	BasePrice int64  `json:"base_price,omitempty"`
}

// EntryRecord is the wire form of one calendar row.
type EntryRecord struct {
	VillaID     string `json:"villa_id"`
	Date        string `json:"date"`
	IsAvailable bool   `json:"is_available"`
	Rate        int64  `json:"rate"`
}

// Snapshot is a full export of villas and their calendars, used for fixtures.
type Snapshot struct {
	Villas   []VillaRecord `json:"villas"`
	Calendar []EntryRecord `json:"calendar"`
}

// NewVillaEvent wraps a villa record into an event with a fresh id.
func NewVillaEvent(v VillaRecord, now time.Time) Event {
	rec := v
	return Event{ID: uuid.NewString(), Type: VillaUpserted, OccurredAt: now.UTC(), Villa: &rec}
}

// NewCalendarEvent wraps calendar rows into an event with a fresh id.
func NewCalendarEvent(entries []EntryRecord, now time.Time) Event {
	return Event{ID: uuid.NewString(), Type: CalendarUpserted, OccurredAt: now.UTC(), Entries: append([]EntryRecord(nil), entries...)}
}

// FromVilla converts a domain villa to its record.
func FromVilla(v *domainvillas.Villa) VillaRecord {
	return VillaRecord{ID: string(v.ID), Name: v.Name, Location: v.Location, BasePrice: v.BasePrice.Int64()}
}

// FromEntry converts a domain entry to its record.
func FromEntry(e domaincalendar.Entry) EntryRecord {
	return EntryRecord{VillaID: string(e.VillaID), Date: e.Key(), IsAvailable: e.Available, Rate: e.Rate.Int64()}
}

// Villa validates the record and builds the domain villa.
func (r VillaRecord) Villa(now time.Time) (*domainvillas.Villa, error) {
	return domainvillas.NewVilla(domainvillas.CreateVillaParams{
		ID:        domainvillas.VillaID(r.ID),
		Name:      r.Name,
		Location:  r.Location,
		BasePrice: money.Amount(r.BasePrice),
		Now:       now,
	})
}

// Entry validates the record and builds the domain entry.
func (r EntryRecord) Entry() (domaincalendar.Entry, error) {
	date, err := daterange.ParseDay(r.Date)
	if err != nil {
		return domaincalendar.Entry{}, fmt.Errorf("entry %s/%s: %w", r.VillaID, r.Date, err)
	}
	return domaincalendar.NewEntry(domainvillas.VillaID(r.VillaID), date, r.IsAvailable, money.Amount(r.Rate))
}

// DecodeSnapshot reads a JSON snapshot.
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// EncodeSnapshot writes snap as indented JSON.
func EncodeSnapshot(w io.Writer, snap Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}
