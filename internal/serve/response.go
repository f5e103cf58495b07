// Package serve provides the HTTP admin API for jobdesk serve: response
// envelopes, request validation and the port file a console uses to find a
// running server.
package serve

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/marcus/jobdesk/internal/db"
	"github.com/marcus/jobdesk/internal/host"
	"github.com/marcus/jobdesk/internal/models"
	"github.com/marcus/jobdesk/internal/workflow"
)

// ============================================================================
// Response Envelope
// ============================================================================

// Envelope is the standard response wrapper for all API responses.
// Success: {"ok": true, "data": {...}}
// Error:   {"ok": false, "error": {"code": "...", "message": "...", "details": ...}}
type Envelope struct {
	OK    bool          `json:"ok"`
	Data  interface{}   `json:"data,omitempty"`
	Error *ErrorPayload `json:"error,omitempty"`
}

// ErrorPayload holds structured error information.
type ErrorPayload struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// FieldError describes a single validation failure on a request field.
type FieldError struct {
	Field    string      `json:"field"`
	Rule     string      `json:"rule"`
	Value    interface{} `json:"value,omitempty"`
	Expected interface{} `json:"expected,omitempty"`
	Message  string      `json:"message"`
}

// Standard error codes mapped to HTTP status codes.
const (
	ErrValidation    = "validation_error" // 400
	ErrNotFound      = "not_found"        // 404
	ErrConflict      = "conflict"         // 409
	ErrUnprocessable = "unprocessable"    // 422
	ErrInternal      = "internal"         // 500
)

// WriteSuccess writes a JSON success envelope with the given data and status.
func WriteSuccess(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Envelope{OK: true, Data: data}); err != nil {
		slog.Error("write success response", "err", err)
	}
}

// WriteError writes a JSON error envelope.
func WriteError(w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Envelope{
		OK: false,
		Error: &ErrorPayload{
			Code:    code,
			Message: message,
		},
	}); err != nil {
		slog.Error("write error response", "err", err)
	}
}

// WriteValidation writes a 400 validation_error response with field-level details.
func WriteValidation(w http.ResponseWriter, fields []FieldError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	if err := json.NewEncoder(w).Encode(Envelope{
		OK: false,
		Error: &ErrorPayload{
			Code:    ErrValidation,
			Message: "Validation failed",
			Details: fields,
		},
	}); err != nil {
		slog.Error("write validation response", "err", err)
	}
}

// writeSourceError maps a Source failure to a status code. Transitions the
// table forbids are conflicts; blocked guards are unprocessable. Unknown
// failures are logged and reported without detail.
func writeSourceError(w http.ResponseWriter, err error) {
	var (
		terr *workflow.TransitionError
		verr *workflow.ValidationError
	)
	switch {
	case errors.Is(err, db.ErrNotFound):
		WriteError(w, ErrNotFound, "record not found", http.StatusNotFound)
	case errors.Is(err, db.ErrInvalidQuery):
		WriteError(w, ErrValidation, rootMessage(err), http.StatusBadRequest)
	case errors.As(err, &terr):
		WriteError(w, ErrConflict, terr.Error(), http.StatusConflict)
	case errors.As(err, &verr):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		reasons := make([]string, 0, len(verr.Errors))
		for _, e := range verr.Errors {
			var gerr *workflow.GuardError
			if errors.As(e, &gerr) {
				reasons = append(reasons, gerr.Reason)
			} else {
				reasons = append(reasons, e.Error())
			}
		}
		if encErr := json.NewEncoder(w).Encode(Envelope{
			OK: false,
			Error: &ErrorPayload{
				Code:    ErrUnprocessable,
				Message: strings.Join(reasons, "; "),
				Details: reasons,
			},
		}); encErr != nil {
			slog.Error("write guard response", "err", encErr)
		}
	default:
		slog.Error("source", "err", err)
		WriteError(w, ErrInternal, "internal server error", http.StatusInternalServerError)
	}
}

// rootMessage strips the wrapping context off err for client display.
func rootMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, db.ErrInvalidQuery.Error()+": "); i >= 0 {
		return msg[i+len(db.ErrInvalidQuery.Error())+2:]
	}
	return msg
}

// ============================================================================
// Request Bodies
// ============================================================================

// maxFieldLength caps free-text field values in an update.
const maxFieldLength = 20000

// ValidateUpdate checks an update body against r's editable fields.
func ValidateUpdate(r models.Resource, body *host.UpdateRequest) []FieldError {
	var errs []FieldError
	if len(body.Fields) == 0 {
		return append(errs, FieldError{
			Field:   "fields",
			Rule:    "required",
			Message: "fields must name at least one field",
		})
	}

	for key, value := range body.Fields {
		f, ok := models.LookupField(r, key)
		switch {
		case !ok:
			errs = append(errs, FieldError{
				Field:   key,
				Rule:    "unknown",
				Message: fmt.Sprintf("%s have no field %q", r, key),
			})
		case !f.Editable:
			errs = append(errs, FieldError{
				Field:   key,
				Rule:    "read_only",
				Message: fmt.Sprintf("%s is read-only", key),
			})
		case f.Kind != models.FieldMarkdown && strings.TrimSpace(value) == "":
			errs = append(errs, FieldError{
				Field:   key,
				Rule:    "required",
				Message: fmt.Sprintf("%s must not be empty", key),
			})
		case utf8.RuneCountInString(value) > maxFieldLength:
			errs = append(errs, FieldError{
				Field:    key,
				Rule:     "max_length",
				Expected: maxFieldLength,
				Message:  fmt.Sprintf("%s must be at most %d characters", key, maxFieldLength),
			})
		}
	}
	return errs
}

// ValidateStatus checks a status body against r's vocabulary.
func ValidateStatus(r models.Resource, body *host.StatusRequest) []FieldError {
	if !r.HasStatus() {
		return []FieldError{{
			Field:   "status",
			Rule:    "unsupported",
			Message: fmt.Sprintf("%s have no status", r),
		}}
	}
	if !models.IsValidStatus(r, models.Status(body.Status)) {
		allowed := models.StatusesFor(r)
		names := make([]string, len(allowed))
		for i, s := range allowed {
			names[i] = string(s)
		}
		return []FieldError{{
			Field:    "status",
			Rule:     "enum",
			Value:    body.Status,
			Expected: names,
			Message:  fmt.Sprintf("status must be one of %s", strings.Join(names, ", ")),
		}}
	}
	return nil
}

// ValidatePagination checks list paging parameters. Zero means the default.
func ValidatePagination(q models.ListQuery) []FieldError {
	var errs []FieldError
	if q.Limit > db.MaxPageLimit {
		errs = append(errs, FieldError{
			Field:    "limit",
			Rule:     "range",
			Value:    q.Limit,
			Expected: fmt.Sprintf("1-%d", db.MaxPageLimit),
			Message:  fmt.Sprintf("limit must be between 1 and %d, got %d", db.MaxPageLimit, q.Limit),
		})
	}
	return errs
}
