package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"villarent/internal/app/dto"
	"villarent/internal/app/handlers/support"
	"villarent/internal/app/queries"
	"villarent/internal/app/uow"
	"villarent/internal/app/validation"
	domainavailability "villarent/internal/domain/availability"
	"villarent/internal/domain/shared/daterange"
	"villarent/internal/domain/villas"
)

const listVillasKey = "availability.villas"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	DefaultSort  = string(domainavailability.SortByAvgPrice)
	DefaultOrder = string(domainavailability.OrderAsc)
)

var listVillasMessages = map[string]string{
	"Page":  "page must be a positive integer",
	"Limit": fmt.Sprintf("limit must be between 1 and %d", MaxLimit),
	"Sort":  "invalid sort field",
	"Order": "order must be asc or desc",
}

// ListVillasQuery lists villas bookable for every night of an optional stay.
// Zero Page/Limit and empty Sort/Order take their defaults. Dates apply only
// when both are present.
type ListVillasQuery struct {
	CheckIn  string
	CheckOut string
	Location string
	Page     int    `validate:"gte=1"`
	Limit    int    `validate:"gte=1,lte=100"`
	Sort     string `validate:"oneof=avg_price_per_night subtotal nights name location id"`
	Order    string `validate:"oneof=asc desc"`
}

func (q ListVillasQuery) Key() string { return listVillasKey }

// Normalized fills defaults and trims free-text input.
func (q ListVillasQuery) Normalized() ListVillasQuery {
	n := q
	n.CheckIn = strings.TrimSpace(n.CheckIn)
	n.CheckOut = strings.TrimSpace(n.CheckOut)
	n.Location = strings.TrimSpace(n.Location)
	if n.Page == 0 {
		n.Page = DefaultPage
	}
	if n.Limit == 0 {
		n.Limit = DefaultLimit
	}
	n.Sort = strings.TrimSpace(n.Sort)
	if n.Sort == "" {
		n.Sort = DefaultSort
	}
	n.Order = strings.ToLower(strings.TrimSpace(n.Order))
	if n.Order == "" {
		n.Order = DefaultOrder
	}
	return n
}

// HasDates reports whether both stay bounds were supplied.
func (q ListVillasQuery) HasDates() bool {
	return strings.TrimSpace(q.CheckIn) != "" && strings.TrimSpace(q.CheckOut) != ""
}

// Validate checks a normalized query and returns its stay, if any.
func (q ListVillasQuery) Validate() (daterange.DateRange, bool, error) {
	if q.HasDates() {
		r, err := support.ParseStay(q.CheckIn, q.CheckOut)
		if err != nil {
			return daterange.DateRange{}, false, err
		}
		if err := validation.Struct(q, listVillasMessages); err != nil {
			return daterange.DateRange{}, false, err
		}
		return r, true, nil
	}
	if err := validation.Struct(q, listVillasMessages); err != nil {
		return daterange.DateRange{}, false, err
	}
	return daterange.DateRange{}, false, nil
}

// CacheKey identifies the normalized query.
func (q ListVillasQuery) CacheKey() string {
	n := q.Normalized()
	if !n.HasDates() {
		n.CheckIn, n.CheckOut = "", ""
	}
	return strings.Join([]string{
		n.CheckIn, n.CheckOut, n.Location,
		fmt.Sprint(n.Page), fmt.Sprint(n.Limit), n.Sort, n.Order,
	}, "|")
}

func (q ListVillasQuery) DecodeResult(data []byte) (any, error) {
	var page dto.AvailabilityPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, err
	}
	return page, nil
}

// ListVillasHandler aggregates calendar rows into a sorted, paginated listing.
type ListVillasHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListVillasHandler) Handle(ctx context.Context, q ListVillasQuery) (dto.AvailabilityPage, error) {
	q = q.Normalized()
	stay, dated, err := q.Validate()
	if err != nil {
		return dto.AvailabilityPage{}, err
	}

	filter := villas.Filter{Location: q.Location}
	summaries, err := support.Read(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) ([]domainavailability.Summary, error) {
		if dated {
			return datedSummaries(ctx, unit, stay, filter)
		}
		return undatedSummaries(ctx, unit, filter)
	})
	if err != nil {
		return dto.AvailabilityPage{}, err
	}

	domainavailability.Sort(summaries, domainavailability.SortField(q.Sort), domainavailability.SortOrder(q.Order))
	page := domainavailability.Paginate(summaries, q.Page, q.Limit)
	return dto.MapAvailabilityPage(page, q.Page, q.Limit, len(summaries)), nil
}

func datedSummaries(ctx context.Context, unit uow.UnitOfWork, stay daterange.DateRange, filter villas.Filter) ([]domainavailability.Summary, error) {
	rows, err := unit.Calendar().InRange(ctx, stay, "")
	if err != nil {
		return nil, fmt.Errorf("load calendar: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	nights := stay.Nights()
	tallies := domainavailability.Aggregate(rows)
	ids := tallies.Bookable(nights)
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := unit.Villas().ByIDs(ctx, ids, filter)
	if err != nil {
		return nil, fmt.Errorf("load villas: %w", err)
	}
	out := make([]domainavailability.Summary, 0, len(found))
	for _, v := range found {
		tally, ok := tallies.Get(v.ID)
		if !ok {
			continue
		}
		out = append(out, domainavailability.DatedSummary(v, nights, tally))
	}
	return out, nil
}

func undatedSummaries(ctx context.Context, unit uow.UnitOfWork, filter villas.Filter) ([]domainavailability.Summary, error) {
	found, err := unit.Villas().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load villas: %w", err)
	}
	out := make([]domainavailability.Summary, 0, len(found))
	for _, v := range found {
		out = append(out, domainavailability.UndatedSummary(v))
	}
	return out, nil
}

var _ queries.Handler[ListVillasQuery, dto.AvailabilityPage] = (*ListVillasHandler)(nil)
