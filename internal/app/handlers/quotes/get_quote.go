package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"villarent/internal/app/apperr"
	"villarent/internal/app/dto"
	"villarent/internal/app/handlers/support"
	"villarent/internal/app/queries"
	"villarent/internal/app/uow"
	"villarent/internal/domain/pricing"
	"villarent/internal/domain/villas"
)

const getQuoteKey = "quotes.villa"

const (
	MsgDatesRequired = "check_in and check_out are required"
	MsgVillaNotFound = "villa not found"
)

// GetQuoteQuery prices a stay at one villa.
type GetQuoteQuery struct {
	VillaID  string
	CheckIn  string
	CheckOut string
}

func (q GetQuoteQuery) Key() string { return getQuoteKey }

func (q GetQuoteQuery) CacheKey() string {
	return strings.Join([]string{q.VillaID, q.CheckIn, q.CheckOut}, "|")
}

func (q GetQuoteQuery) DecodeResult(data []byte) (any, error) {
	var quote dto.Quote
	if err := json.Unmarshal(data, &quote); err != nil {
		return nil, err
	}
	return quote, nil
}

// GetQuoteHandler builds the nightly breakdown, GST and total of a stay.
type GetQuoteHandler struct {
	UoWFactory uow.UoWFactory
	// Calculator defaults to pricing.NewCalculator when nil.
	Calculator *pricing.Calculator
}

func (h *GetQuoteHandler) Handle(ctx context.Context, q GetQuoteQuery) (dto.Quote, error) {
	if strings.TrimSpace(q.CheckIn) == "" || strings.TrimSpace(q.CheckOut) == "" {
		return dto.Quote{}, apperr.Invalid(MsgDatesRequired)
	}
	stay, err := support.ParseStay(q.CheckIn, q.CheckOut)
	if err != nil {
		return dto.Quote{}, err
	}
	villaID := villas.VillaID(strings.TrimSpace(q.VillaID))
	if villaID == "" {
		return dto.Quote{}, apperr.NotFound(MsgVillaNotFound)
	}

	return support.Read(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) (dto.Quote, error) {
		villa, err := unit.Villas().ByID(ctx, villaID)
		if err != nil {
			if errors.Is(err, villas.ErrVillaNotFound) {
				return dto.Quote{}, apperr.NotFound(MsgVillaNotFound)
			}
			return dto.Quote{}, fmt.Errorf("load villa: %w", err)
		}
		entries, err := unit.Calendar().InRange(ctx, stay, villa.ID)
		if err != nil {
			return dto.Quote{}, fmt.Errorf("load calendar: %w", err)
		}
		breakdown, err := h.calculator().Quote(villa, stay, entries)
		if err != nil {
			return dto.Quote{}, fmt.Errorf("price stay: %w", err)
		}
		return dto.MapQuote(villa, q.CheckIn, q.CheckOut, breakdown), nil
	})
}

func (h *GetQuoteHandler) calculator() pricing.Calculator {
	if h.Calculator != nil {
		return *h.Calculator
	}
	return pricing.NewCalculator()
}

var _ queries.Handler[GetQuoteQuery, dto.Quote] = (*GetQuoteHandler)(nil)
