package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tucredito/tu-credito-api-go/internal/domain"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Detail: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// idParam parses the {id} URL parameter.
func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// parseListParams reads the generic list controls from the query string.
func parseListParams(r *http.Request) domain.ListParams {
	q := r.URL.Query()
	p := domain.ListParams{
		Search:   q.Get("search"),
		Ordering: q.Get("ordering"),
		Page:     1,
		PageSize: domain.DefaultPageSize,
	}
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Page = n
		}
	}
	if v := q.Get("page_size"); v != "" {
		// Oversized values are capped, not ignored.
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.PageSize = n
		}
	}
	p.Normalize()
	return p
}

// splitList splits a comma-separated filter value, dropping empty items.
func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// splitIDList splits a comma-separated list of numeric ids. A non-numeric
// item yields a field error instead of being ignored.
func splitIDList(field, v string, fe domain.FieldErrors) []int64 {
	var out []int64
	for _, item := range splitList(v) {
		id, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			fe.Add(field, "Enter a number.")
			continue
		}
		out = append(out, id)
	}
	return out
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var fieldValidation *domain.ErrFieldValidation
	var protected *domain.ErrProtected
	var conflict *domain.ErrConflict
	var unauthorized *domain.ErrUnauthorized

	switch {
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, "Not found.")
	case errors.As(err, &fieldValidation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, fieldValidation.Fields)
	case errors.As(err, &protected):
		logger.Debug("protected delete", zap.String("error", err.Error()))
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &conflict):
		logger.Debug("conflict", zap.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, domain.FieldErrors{"name": {err.Error()}})
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
