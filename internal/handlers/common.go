package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"travel-discovery-backend/internal/baas"
	"travel-discovery-backend/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error    string             `json:"error"`
	Advisory *services.Advisory `json:"advisory,omitempty"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondJSON sends body as JSON with the given status
func respondJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// decodeBody decodes and validates a JSON request body. It writes the 400
// response itself and reports whether the handler may continue.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		respondError(w, validationMessage(err), http.StatusBadRequest)
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email address", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		case "datetime":
			msgs = append(msgs, fmt.Sprintf("%s must be a date in YYYY-MM-DD form", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}

// statusFor maps service errors to an HTTP status and a client-safe message.
// Unknown errors become 500 with fallback.
func statusFor(err error, fallback string) (int, string) {
	var ce *services.ConnectivityError
	switch {
	case errors.As(err, &ce):
		return http.StatusServiceUnavailable, ce.Message
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, services.ErrInvalidDate),
		errors.Is(err, services.ErrUnsupportedContentType):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrEmailInUse),
		errors.Is(err, baas.ErrRevisionConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, services.ErrForeignPhoto):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, services.ErrNoSession),
		errors.Is(err, services.ErrDestinationNotFound),
		errors.Is(err, services.ErrItineraryItemNotFound):
		return http.StatusNotFound, err.Error()
	case baas.IsUnavailable(err):
		return http.StatusServiceUnavailable, fallback
	default:
		return http.StatusInternalServerError, fallback
	}
}

// respondServiceError writes the response for a failed service call
func respondServiceError(w http.ResponseWriter, err error, fallback string) {
	status, message := statusFor(err, fallback)
	respondError(w, message, status)
}

// respondWriteError is respondServiceError for failed profile writes, which
// also carry an advisory
func respondWriteError(w http.ResponseWriter, err error, advisory *services.Advisory, fallback string) {
	status, message := statusFor(err, fallback)
	respondJSON(w, status, ErrorResponse{Error: message, Advisory: advisory})
}
