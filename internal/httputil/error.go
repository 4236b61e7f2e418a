package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/creature-cup/internal/worldcup"
)

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	WriteError(w, http.StatusInternalServerError, "Internal Server Error")
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	WriteError(w, http.StatusBadRequest, msg)
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	WriteError(w, http.StatusNotFound, msg)
}

func Conflict(w http.ResponseWriter, msg string, err error) {
	slog.Warn("conflict", "message", msg, "error", err)
	WriteError(w, http.StatusConflict, msg)
}

// Error maps the domain sentinel errors to a response. Anything unrecognised
// is logged and reported as a 500 with msg as the log message.
func Error(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, worldcup.ErrInvalidFilter), errors.Is(err, worldcup.ErrInvalidRanking):
		BadRequest(w, err.Error(), err)
	case errors.Is(err, worldcup.ErrNotFound):
		NotFound(w, err.Error(), err)
	case errors.Is(err, worldcup.ErrConflict):
		Conflict(w, err.Error(), err)
	case errors.Is(err, worldcup.ErrStatisticsContention):
		slog.Warn("statistics contention", "message", msg, "error", err)
		WriteError(w, http.StatusServiceUnavailable, "Statistics are busy, try again")
	default:
		InternalServerError(w, msg, err)
	}
}
