package support

import (
	"errors"
	"fmt"

	"villarent/internal/app/apperr"
	"villarent/internal/domain/shared/daterange"
)

const (
	MsgInvalidDate  = "invalid date format"
	MsgInvalidRange = "check_out must be after check_in"
)

// ParseStay parses a check-in/check-out pair into a range of at least one night.
func ParseStay(checkIn, checkOut string) (daterange.DateRange, error) {
	r, err := daterange.Parse(checkIn, checkOut)
	switch {
	case err == nil:
		return r, nil
	case errors.Is(err, daterange.ErrInvalidDate):
		return daterange.DateRange{}, apperr.Invalid(MsgInvalidDate)
	case errors.Is(err, daterange.ErrInvalidRange):
		return daterange.DateRange{}, apperr.Invalid(MsgInvalidRange)
	default:
		return daterange.DateRange{}, fmt.Errorf("parse stay: %w", err)
	}
}
