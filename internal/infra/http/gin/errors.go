package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"villarent/internal/app/apperr"
)

var errRouteNotFound = apperr.NotFound("route not found")

// ErrorBody is the JSON shape of every failed response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func statusOf(err error) (int, ErrorBody) {
	switch apperr.KindOf(err) {
	case apperr.KindInvalidRequest:
		return http.StatusBadRequest, ErrorBody{Error: string(apperr.KindInvalidRequest), Message: err.Error()}
	case apperr.KindNotFound:
		return http.StatusNotFound, ErrorBody{Error: string(apperr.KindNotFound), Message: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorBody{Error: "internal_error", Message: "internal server error"}
	}
}

func writeError(c *gin.Context, err error) {
	status, body := statusOf(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		slog.Default().ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, body)
}
