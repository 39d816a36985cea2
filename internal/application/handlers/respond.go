package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ersonp/campaign-core/internal/domain/ports"
	"github.com/ersonp/campaign-core/internal/domain/schema"
	"github.com/ersonp/campaign-core/internal/domain/services"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

const internalErrorMessage = "internal server error"

type errorResponse struct {
	Error  string              `json:"error"`
	Fields []schema.FieldError `json:"fields,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// respondJSON writes payload as JSON with the given status.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// respondError writes {"error": message}.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondFailure maps a service error onto the HTTP error taxonomy.
// Unexpected errors are logged and reported without detail.
func respondFailure(w http.ResponseWriter, r *http.Request, err error) {
	var verr *schema.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, services.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, services.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrForbidden):
		respondError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, ports.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, ports.ErrConflict):
		respondError(w, http.StatusConflict, "username already taken")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		respondError(w, http.StatusInternalServerError, internalErrorMessage)
	}
}

// readBody reads a bounded request body. Failures are validation errors on
// the body field.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, schema.Invalid("body", "is too large")
		}
		return nil, schema.Invalid("body", "could not be read")
	}
	return body, nil
}
