package villas

import (
	"context"
	"errors"
	"strings"
	"time"

	"villarent/internal/domain/shared/money"
)

var (
	ErrVillaNotFound    = errors.New("villas: villa not found")
	ErrIDRequired       = errors.New("villas: id is required")
	ErrNameRequired     = errors.New("villas: name is required")
	ErrLocationRequired = errors.New("villas: location is required")
	ErrBasePrice        = errors.New("villas: base price must be non-negative")
)

type VillaID string

// Villa is a rentable property. BasePrice of zero means no fallback rate is set.
type Villa struct {
	ID        VillaID
	Name      string
	Location  string
	BasePrice money.Amount
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filter narrows villa lookups. An empty Location matches every villa.
type Filter struct {
	Location string
}

// Matches reports whether v satisfies the filter.
func (f Filter) Matches(v *Villa) bool {
	if v == nil {
		return false
	}
	if f.Location == "" {
		return true
	}
	return v.Location == f.Location
}

// Repository is the read side used by availability and quote queries.
type Repository interface {
	ByID(ctx context.Context, id VillaID) (*Villa, error)
	List(ctx context.Context, filter Filter) ([]*Villa, error)
	ByIDs(ctx context.Context, ids []VillaID, filter Filter) ([]*Villa, error)
}

// Writer is used by seeding and ingestion only.
type Writer interface {
	Upsert(ctx context.Context, villa *Villa) error
}

type CreateVillaParams struct {
	ID        VillaID
	Name      string
	Location  string
	BasePrice money.Amount
	Now       time.Time
}

func NewVilla(params CreateVillaParams) (*Villa, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	location := strings.TrimSpace(params.Location)
	if location == "" {
		return nil, ErrLocationRequired
	}
	if params.BasePrice.IsNegative() {
		return nil, ErrBasePrice
	}
	now := params.Now.UTC()
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return &Villa{
		ID:        params.ID,
		Name:      name,
		Location:  location,
		BasePrice: params.BasePrice,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
