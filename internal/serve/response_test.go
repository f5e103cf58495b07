package serve

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/marcus/jobdesk/internal/db"
	"github.com/marcus/jobdesk/internal/host"
	"github.com/marcus/jobdesk/internal/models"
	"github.com/marcus/jobdesk/internal/workflow"
)

func TestEnvelopes(t *testing.T) {
	tests := []struct {
		name       string
		write      func(http.ResponseWriter)
		wantStatus int
		wantOK     bool
		wantCode   string
		wantKeys   []string
		absentKey  string
	}{
		{
			name:       "success",
			write:      func(w http.ResponseWriter) { WriteSuccess(w, map[string]string{"id": "us-0001"}, http.StatusCreated) },
			wantStatus: http.StatusCreated,
			wantOK:     true,
			wantKeys:   []string{"ok", "data"},
			absentKey:  "error",
		},
		{
			name:       "error",
			write:      func(w http.ResponseWriter) { WriteError(w, ErrNotFound, "user not found: us-9999", http.StatusNotFound) },
			wantStatus: http.StatusNotFound,
			wantCode:   ErrNotFound,
			wantKeys:   []string{"ok", "error"},
			absentKey:  "data",
		},
		{
			name: "validation",
			write: func(w http.ResponseWriter) {
				WriteValidation(w, []FieldError{
					{Field: "name", Rule: "required", Message: "name must not be empty"},
					{Field: "password", Rule: "unknown", Message: `users have no field "password"`},
				})
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrValidation,
			wantKeys:   []string{"ok", "error"},
			absentKey:  "data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}

			var raw map[string]json.RawMessage
			if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			for _, k := range tt.wantKeys {
				if _, ok := raw[k]; !ok {
					t.Errorf("missing key %q in %s", k, w.Body.String())
				}
			}
			if _, ok := raw[tt.absentKey]; ok {
				t.Errorf("unexpected key %q in %s", tt.absentKey, w.Body.String())
			}

			var env Envelope
			if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if env.OK != tt.wantOK {
				t.Errorf("ok = %v, want %v", env.OK, tt.wantOK)
			}
			if tt.wantCode != "" && (env.Error == nil || env.Error.Code != tt.wantCode) {
				t.Errorf("error = %+v, want code %s", env.Error, tt.wantCode)
			}
		})
	}
}

func TestWriteValidationDetails(t *testing.T) {
	w := httptest.NewRecorder()
	WriteValidation(w, []FieldError{{Field: "content", Rule: "max_length", Expected: maxFieldLength, Message: "too long"}})

	var env struct {
		Error struct {
			Details []FieldError `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(env.Error.Details) != 1 || env.Error.Details[0].Field != "content" || env.Error.Details[0].Rule != "max_length" {
		t.Errorf("details = %+v", env.Error.Details)
	}
}

func TestWriteSourceError(t *testing.T) {
	guardFailure := &workflow.ValidationError{}
	guardFailure.Add(&workflow.GuardError{GuardName: "OpenPostGuard", Reason: "job post is closed"})

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			"not found",
			&host.ActionError{Action: "delete", Err: fmt.Errorf("users us-9: %w", db.ErrNotFound)},
			http.StatusNotFound, ErrNotFound, "record not found",
		},
		{
			"invalid query",
			&host.FetchError{Err: fmt.Errorf("%w: cannot sort users by \"x\"", db.ErrInvalidQuery)},
			http.StatusBadRequest, ErrValidation, `cannot sort users by "x"`,
		},
		{
			"transition",
			&host.ActionError{Err: &workflow.TransitionError{Resource: models.ResourceCompanies, From: "approved", To: "approving", Reason: "transition not allowed"}},
			http.StatusConflict, ErrConflict, "cannot move companies from approved to approving: transition not allowed",
		},
		{
			"guard",
			&host.ActionError{Err: guardFailure},
			http.StatusUnprocessableEntity, ErrUnprocessable, "job post is closed",
		},
		{
			"unknown",
			errors.New("disk I/O error"),
			http.StatusInternalServerError, ErrInternal, "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeSourceError(w, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var env Envelope
			if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if env.OK || env.Error == nil {
				t.Fatalf("envelope = %+v, want error", env)
			}
			if env.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", env.Error.Code, tt.wantCode)
			}
			if env.Error.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", env.Error.Message, tt.wantMessage)
			}
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	tests := []struct {
		name      string
		resource  models.Resource
		fields    map[string]string
		wantRules []string
	}{
		{"valid", models.ResourceUsers, map[string]string{"name": "Kim", "phone": "010"}, nil},
		{"empty body", models.ResourceUsers, nil, []string{"required"}},
		{"unknown field", models.ResourceUsers, map[string]string{"password": "x"}, []string{"unknown"}},
		{"read only", models.ResourceCompanies, map[string]string{"status": "approved"}, []string{"read_only"}},
		{"blank text", models.ResourceUsers, map[string]string{"name": "  "}, []string{"required"}},
		{"blank markdown allowed", models.ResourceNotices, map[string]string{"content": ""}, nil},
		{"too long", models.ResourceNotices, map[string]string{"content": strings.Repeat("a", maxFieldLength+1)}, []string{"max_length"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateUpdate(tt.resource, &host.UpdateRequest{Fields: tt.fields})
			if len(errs) != len(tt.wantRules) {
				t.Fatalf("errors = %+v, want rules %v", errs, tt.wantRules)
			}
			for i, rule := range tt.wantRules {
				if errs[i].Rule != rule {
					t.Errorf("errs[%d].Rule = %q, want %q", i, errs[i].Rule, rule)
				}
			}
		})
	}
}

func TestValidateStatus(t *testing.T) {
	tests := []struct {
		name     string
		resource models.Resource
		status   string
		wantRule string
	}{
		{"valid", models.ResourceCompanies, "approved", ""},
		{"wrong vocabulary", models.ResourceJobPosts, "approved", "enum"},
		{"empty", models.ResourceApplications, "", "enum"},
		{"no status", models.ResourceUsers, "approved", "unsupported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateStatus(tt.resource, &host.StatusRequest{Status: tt.status})
			if tt.wantRule == "" {
				if len(errs) != 0 {
					t.Errorf("errors = %+v, want none", errs)
				}
				return
			}
			if len(errs) != 1 || errs[0].Rule != tt.wantRule {
				t.Errorf("errors = %+v, want one %q", errs, tt.wantRule)
			}
		})
	}
}

func TestValidatePagination(t *testing.T) {
	tests := []struct {
		limit   int
		wantErr bool
	}{
		{0, false},
		{1, false},
		{db.MaxPageLimit, false},
		{db.MaxPageLimit + 1, true},
	}
	for _, tt := range tests {
		errs := ValidatePagination(models.ListQuery{Limit: tt.limit})
		if (len(errs) > 0) != tt.wantErr {
			t.Errorf("limit %d: errors = %+v, wantErr %v", tt.limit, errs, tt.wantErr)
		}
	}
}
