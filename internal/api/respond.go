package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"praktyka/internal/auth"
	"praktyka/internal/models"
	"praktyka/internal/service"
	"praktyka/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

type validationResponse struct {
	Errors models.ValidationErrors `json:"errors"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// respondError maps domain errors onto the HTTP status space. Unknown
// errors become a 500 whose detail is suppressed outside development.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs models.ValidationErrors
	switch {
	case errors.As(err, &fieldErrs):
		respondJSON(w, http.StatusBadRequest, validationResponse{Errors: fieldErrs})

	case errors.Is(err, auth.ErrInvalidCredentials):
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: auth.ErrInvalidCredentials.Error()})

	case errors.Is(err, auth.ErrInvalidDigest):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: auth.ErrInvalidDigest.Error()})

	case errors.Is(err, auth.ErrEmailExists):
		respondJSON(w, http.StatusConflict, errorResponse{Error: auth.ErrEmailExists.Error()})

	case errors.Is(err, storage.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "Not found"})

	case errors.Is(err, storage.ErrDuplicate):
		respondJSON(w, http.StatusConflict, errorResponse{Error: "A record with these unique fields already exists"})

	case errors.Is(err, storage.ErrReferenced):
		respondJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrNoCredentials),
		errors.Is(err, service.ErrEmployerNotSynced),
		errors.Is(err, service.ErrNoPositions):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrExternal):
		respondJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})

	default:
		s.logger.Error("Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		message := "Internal server error"
		if s.development {
			message = err.Error()
		}
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: message})
	}
}

// decodeJSON reads the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return models.ValidationErrors{{Field: "body", Message: "invalid JSON: " + err.Error()}}
	}
	return nil
}
