package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domaincalendar "villarent/internal/domain/calendar"
	domainvillas "villarent/internal/domain/villas"
)

var (
	ErrWritersMissing = errors.New("ingest: villa and calendar writers are required")
	ErrUnknownEvent   = errors.New("ingest: unknown event type")
	ErrEmptyEvent     = errors.New("ingest: event carries no payload")
)

// Inbox deduplicates events by id. Seen records the id and reports whether it
// was already recorded; Forget removes it so a failed event can be retried.
type Inbox interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

// Invalidator drops cached query results after the store changes.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Handler applies villa and calendar writes coming from seeding or the event stream.
type Handler struct {
	Villas   domainvillas.Writer
	Calendar domaincalendar.Writer
	Inbox    Inbox
	Cache    Invalidator
	Logger   *slog.Logger
	Now      func() time.Time
}

// Stats counts records written by one apply.
type Stats struct {
	Villas  int
	Entries int
}

// HandleMessage decodes and applies one event payload. Malformed or invalid
// events are logged and dropped; store failures are returned so the message
// is redelivered.
func (h *Handler) HandleMessage(ctx context.Context, payload []byte) error {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		h.log().Warn("ingest: dropping malformed event", "error", err)
		return nil
	}
	if ev.ID != "" && h.Inbox != nil {
		seen, err := h.Inbox.Seen(ctx, ev.ID)
		if err != nil {
			return fmt.Errorf("ingest: inbox: %w", err)
		}
		if seen {
			h.log().Debug("ingest: duplicate event skipped", "event_id", ev.ID)
			return nil
		}
	}
	stats, err := h.apply(ctx, ev)
	if err != nil {
		var invalid invalidRecordError
		if errors.As(err, &invalid) || errors.Is(err, ErrUnknownEvent) || errors.Is(err, ErrEmptyEvent) {
			h.log().Warn("ingest: dropping invalid event", "event_id", ev.ID, "type", ev.Type, "error", err)
			return nil
		}
		if ev.ID != "" && h.Inbox != nil {
			if ferr := h.Inbox.Forget(ctx, ev.ID); ferr != nil {
				h.log().Error("ingest: inbox forget failed", "event_id", ev.ID, "error", ferr)
			}
		}
		if stats.Villas+stats.Entries > 0 {
			_ = h.invalidate(ctx)
		}
		return err
	}
	h.log().Info("ingest: event applied", "event_id", ev.ID, "type", ev.Type, "villas", stats.Villas, "entries", stats.Entries)
	return h.invalidate(ctx)
}

// ApplySnapshot writes every villa and calendar row of snap.
func (h *Handler) ApplySnapshot(ctx context.Context, snap Snapshot) (Stats, error) {
	if err := h.ready(); err != nil {
		return Stats{}, err
	}
	var stats Stats
	for _, rec := range snap.Villas {
		if err := h.upsertVilla(ctx, rec); err != nil {
			return stats, err
		}
		stats.Villas++
	}
	n, err := h.upsertEntries(ctx, snap.Calendar)
	stats.Entries += n
	if err != nil {
		if stats.Villas+stats.Entries > 0 {
			_ = h.invalidate(ctx)
		}
		return stats, err
	}
	return stats, h.invalidate(ctx)
}

func (h *Handler) apply(ctx context.Context, ev Event) (Stats, error) {
	if err := h.ready(); err != nil {
		return Stats{}, err
	}
	switch ev.Type {
	case VillaUpserted:
		if ev.Villa == nil {
			return Stats{}, ErrEmptyEvent
		}
		if err := h.upsertVilla(ctx, *ev.Villa); err != nil {
			return Stats{}, err
		}
		return Stats{Villas: 1}, nil
	case CalendarUpserted:
		if len(ev.Entries) == 0 {
			return Stats{}, ErrEmptyEvent
		}
		n, err := h.upsertEntries(ctx, ev.Entries)
		return Stats{Entries: n}, err
	default:
		return Stats{}, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
}

func (h *Handler) upsertVilla(ctx context.Context, rec VillaRecord) error {
	villa, err := rec.Villa(h.now())
	if err != nil {
		return invalidRecordError{err}
	}
	if err := h.Villas.Upsert(ctx, villa); err != nil {
		return fmt.Errorf("ingest: upsert villa %s: %w", villa.ID, err)
	}
	return nil
}

const entryBatchSize = 500

// upsertEntries converts every record before the first write, so an invalid
// record leaves the store untouched.
func (h *Handler) upsertEntries(ctx context.Context, recs []EntryRecord) (int, error) {
	entries := make([]domaincalendar.Entry, 0, len(recs))
	for _, rec := range recs {
		entry, err := rec.Entry()
		if err != nil {
			return 0, invalidRecordError{err}
		}
		entries = append(entries, entry)
	}
	written := 0
	for start := 0; start < len(entries); start += entryBatchSize {
		batch := entries[start:min(start+entryBatchSize, len(entries))]
		if err := h.Calendar.Upsert(ctx, batch); err != nil {
			return written, fmt.Errorf("ingest: upsert calendar: %w", err)
		}
		written += len(batch)
	}
	return written, nil
}

func (h *Handler) ready() error {
	if h.Villas == nil || h.Calendar == nil {
		return ErrWritersMissing
	}
	return nil
}

func (h *Handler) invalidate(ctx context.Context) error {
	if h.Cache == nil {
		return nil
	}
	if err := h.Cache.Invalidate(ctx); err != nil {
		h.log().Warn("ingest: cache invalidation failed", "error", err)
	}
	return nil
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) log() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type invalidRecordError struct{ err error }

func (e invalidRecordError) Error() string { return "ingest: invalid record: " + e.err.Error() }
func (e invalidRecordError) Unwrap() error { return e.err }
