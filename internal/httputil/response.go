package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/redmonkez12/go-tasks-api/internal/validation"
)

// Machine-readable error codes carried next to the human-readable message.
const (
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeConflict           = "CONFLICT"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeMissingAuth        = "AUTHORIZATION_REQUIRED"
	CodeInvalidToken       = "AUTHORIZATION_INVALID"
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidStatus      = "INVALID_STATUS"
	CodeInternalError      = "INTERNAL_ERROR"
)

const maxBodyBytes = 1 << 20

// Envelope is the shape of every JSON response.
type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Code    string            `json:"code,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// RespondSuccess wraps data in a successful envelope.
func RespondSuccess(w http.ResponseWriter, message string, data any, statusCode int) {
	RespondJSON(w, Envelope{Success: true, Message: message, Data: data}, statusCode)
}

// RespondError sends a failed envelope with the given message and status code.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, Envelope{Success: false, Message: message}, statusCode)
}

// RespondErrorWithCode sends a failed envelope with a machine-readable error code.
func RespondErrorWithCode(w http.ResponseWriter, message string, code string, statusCode int) {
	RespondJSON(w, Envelope{Success: false, Message: message, Code: code}, statusCode)
}

// RespondValidationErrors sends a 400 with per-field messages.
func RespondValidationErrors(w http.ResponseWriter, fieldErrors map[string]string) {
	RespondJSON(w, Envelope{
		Success: false,
		Message: "Validation failed",
		Code:    CodeValidationFailed,
		Errors:  fieldErrors,
	}, http.StatusBadRequest)
}

// RespondInternalError hides err from the caller.
func RespondInternalError(w http.ResponseWriter) {
	RespondErrorWithCode(w, "Internal server error", CodeInternalError, http.StatusInternalServerError)
}

// DecodeJSON reads a single JSON object from the request body into dst.
// An empty body decodes to the zero value when allowEmpty is set.
func DecodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	if r.Body == nil {
		if allowEmpty {
			return nil
		}
		return errors.New("request body is empty")
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			if allowEmpty {
				return nil
			}
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}

	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}

	return nil
}

// Normalizer is implemented by request bodies that clean up their fields
// (trimming, case folding) before validation.
type Normalizer interface {
	Normalize()
}

// Bind decodes the request body into dst and validates it. On failure it
// writes a 400 envelope and returns false.
func Bind(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	if err := DecodeJSON(r, dst, allowEmpty); err != nil {
		RespondErrorWithCode(w, "Invalid request body", CodeInvalidRequestBody, http.StatusBadRequest)
		return false
	}
	if n, ok := dst.(Normalizer); ok {
		n.Normalize()
	}
	if fieldErrors := validation.Struct(dst); fieldErrors != nil {
		RespondValidationErrors(w, fieldErrors)
		return false
	}
	return true
}

// BearerToken extracts the credential from an "Authorization: Bearer <token>"
// header value. ok is false when the header is missing or malformed.
func BearerToken(header string) (token string, ok bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token = strings.TrimSpace(header[len(prefix):])
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
