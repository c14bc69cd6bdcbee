package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/mpsdeal/internal/inventory"
	"github.com/Simplici0/mpsdeal/internal/projects"
	"github.com/Simplici0/mpsdeal/internal/quotes"
	"github.com/Simplici0/mpsdeal/internal/validation"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, msg string, details any) {
	writeJSON(w, status, errorResponse{Error: msg, Details: details})
}

// fail maps a domain error onto its HTTP status.
func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var cfgErr *validation.ConfigError
	switch {
	case errors.As(err, &cfgErr):
		writeError(w, http.StatusUnprocessableEntity, cfgErr.Error(), map[string]string{"field": cfgErr.Field})
	case errors.Is(err, validation.ErrPrerequisite):
		writeError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, inventory.ErrInUse):
		writeError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, inventory.ErrNotFound), errors.Is(err, projects.ErrNotFound), errors.Is(err, quotes.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	default:
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal error", nil)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id", nil)
		return 0, false
	}
	return id, true
}
