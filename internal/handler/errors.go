package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mtlprog/pageserve/internal/domain"
)

// mapServeError maps file errors to an HTTP status and a client-facing message.
func mapServeError(err error) (status int, message string) {
	switch {
	case errors.Is(err, domain.ErrFileNotFound):
		return http.StatusNotFound, "404 page not found"
	case errors.Is(err, domain.ErrFileUnreadable):
		return http.StatusInternalServerError, "internal server error"
	default:
		slog.Error("unmapped error returned to client",
			"error", err,
			"error_type", fmt.Sprintf("%T", err),
		)
		return http.StatusInternalServerError, "internal server error"
	}
}
