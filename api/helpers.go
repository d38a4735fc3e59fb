package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"log/slog"

	"github.com/marcuslopes-design/Projeto-Vistoria/pkg/storage"
)

// package-level logger used by middleware and helpers; can be set via SetLogger from caller
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger installs a logger for the api package. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

type errorResponse struct {
	Message string `json:"message"`
}

// writeError translates a domain error into its HTTP status. Unrecognized
// errors are logged and surfaced as a 500 without the internal detail.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrValidation):
		writeJSON(w, errorResponse{Message: err.Error()}, http.StatusBadRequest)
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, errorResponse{Message: err.Error()}, http.StatusNotFound)
	case errors.Is(err, storage.ErrConflict):
		writeJSON(w, errorResponse{Message: err.Error()}, http.StatusConflict)
	case errors.Is(err, storage.ErrReadOnly), errors.Is(err, storage.ErrNotReady):
		writeJSON(w, errorResponse{Message: err.Error()}, http.StatusServiceUnavailable)
	default:
		logger.Error("internal error", slog.Any("err", err))
		writeJSON(w, errorResponse{Message: "Error writing to database."}, http.StatusInternalServerError)
	}
}
