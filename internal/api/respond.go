package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"fantasy-pricing-lab/internal/jobs"
	"fantasy-pricing-lab/internal/lookup"
	"fantasy-pricing-lab/internal/storage"
	"fantasy-pricing-lab/internal/valuation"
)

// errorResponse is the body of every non-2xx answer.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondErr maps package sentinels to HTTP statuses.
func respondErr(w http.ResponseWriter, err error) {
	var cfgErr *valuation.ConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: cfgErr.Field})
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, jobs.ErrJobNotFound),
		errors.Is(err, lookup.ErrNoMatch):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrDuplicateKey):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, storage.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, jobs.ErrQueueFull), errors.Is(err, jobs.ErrStopped):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
