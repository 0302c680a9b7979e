package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/stellarnova/limitd/internal/domain"
)

// WriteJSON writes a JSON response with the given status code and data.
// Sets Content-Type to application/json before writing the status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data) // Write error intentionally ignored in response helper
}

// errorResponse is the standard error response format.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a standard error response with the given status
// code, error code, and human-readable message.
func WriteError(w http.ResponseWriter, status int, errorCode, message string) {
	WriteJSON(w, status, errorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// ParseJSON decodes the request body as JSON into v.
// It validates that the Content-Type header is application/json and
// returns an error for missing/incorrect content type or malformed JSON.
func ParseJSON(r *http.Request, v any) error {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(ct, "application/json") {
		return fmt.Errorf("Request body must be valid JSON with Content-Type: application/json")
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("Request body must be valid JSON with Content-Type: application/json")
	}

	return nil
}

// writeDomainError maps domain errors to HTTP responses. Every endpoint
// shares one mapping: the sentinel's text doubles as the error code.
func writeDomainError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	status := http.StatusInternalServerError
	code := "internal_error"

	switch {
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrWebhookNotFound),
		errors.Is(err, domain.ErrContextNotFound):
		status = http.StatusNotFound
		code = err.Error()
	case errors.Is(err, domain.ErrNotOwner),
		errors.Is(err, domain.ErrNotExecutor):
		status = http.StatusForbidden
		code = err.Error()
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrOrderExpired),
		errors.Is(err, domain.ErrPriceNotMet),
		errors.Is(err, domain.ErrDuplicateExecution),
		errors.Is(err, domain.ErrSlippageViolation),
		errors.Is(err, domain.ErrInsufficientBalance):
		status = http.StatusConflict
		code = err.Error()
	case errors.Is(err, domain.ErrAssetNotAllowed),
		errors.Is(err, domain.ErrSlippageTooHigh),
		errors.Is(err, domain.ErrFeeTooHigh):
		status = http.StatusBadRequest
		code = err.Error()
	case errors.Is(err, domain.ErrPaused):
		status = http.StatusServiceUnavailable
		code = err.Error()
	case errors.Is(err, domain.ErrDispatchFailed):
		status = http.StatusBadGateway
		code = "dispatch_failed"
	}

	if status == http.StatusInternalServerError {
		WriteError(w, status, code, "An unexpected error occurred")
		return
	}
	WriteError(w, status, code, err.Error())
}
