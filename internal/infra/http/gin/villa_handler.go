package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"villarent/internal/app/apperr"
	"villarent/internal/app/dto"
	availabilityapp "villarent/internal/app/handlers/availability"
	quotesapp "villarent/internal/app/handlers/quotes"
	"villarent/internal/app/queries"
)

const (
	msgPageInteger  = "page must be a positive integer"
	msgLimitInteger = "limit must be a positive integer"
)

// VillaHandler wires availability and quote queries to HTTP.
type VillaHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

// Availability responds with a sorted page of villas bookable for the stay.
func (h VillaHandler) Availability(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorBody{Error: "unavailable", Message: "availability handler unavailable"})
		return
	}
	page, ok := parseOptionalInt(c.Query("page"))
	if !ok {
		writeError(c, apperr.Invalid(msgPageInteger))
		return
	}
	limit, ok := parseOptionalInt(c.Query("limit"))
	if !ok {
		writeError(c, apperr.Invalid(msgLimitInteger))
		return
	}
	query := availabilityapp.ListVillasQuery{
		CheckIn:  c.Query("check_in"),
		CheckOut: c.Query("check_out"),
		Location: c.Query("location"),
		Page:     page,
		Limit:    limit,
		Sort:     c.Query("sort"),
		Order:    c.Query("order"),
	}
	result, err := queries.Ask[availabilityapp.ListVillasQuery, dto.AvailabilityPage](c.Request.Context(), h.Queries, query)
	if err != nil {
		h.logFailure(c, err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Quote responds with the priced stay at one villa.
func (h VillaHandler) Quote(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorBody{Error: "unavailable", Message: "quote handler unavailable"})
		return
	}
	query := quotesapp.GetQuoteQuery{
		VillaID:  c.Param("villaId"),
		CheckIn:  c.Query("check_in"),
		CheckOut: c.Query("check_out"),
	}
	result, err := queries.Ask[quotesapp.GetQuoteQuery, dto.Quote](c.Request.Context(), h.Queries, query)
	if err != nil {
		h.logFailure(c, err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h VillaHandler) logFailure(c *gin.Context, err error) {
	if h.Logger == nil || apperr.KindOf(err) != "" {
		return
	}
	h.Logger.Error("villa query failed", "path", c.FullPath(), "error", err)
}

var _ VillaHTTP = VillaHandler{}

// parseOptionalInt returns 0 for an absent value so the query applies its default.
func parseOptionalInt(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, false
	}
	return v, true
}
