package host

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/marcus/jobdesk/internal/models"
	"github.com/marcus/jobdesk/internal/workflow"
)

// APIPrefix is the path every admin endpoint lives under.
const APIPrefix = "/api/admin"

// filterPrefix marks filter parameters in a list query string: f.status=open.
const filterPrefix = "f."

// StatusRequest is the body of PATCH {resource}/{id}/status.
type StatusRequest struct {
	Status string `json:"status"`
	Force  bool   `json:"force,omitempty"`
}

// StatusResponse is the data of a successful status change.
type StatusResponse struct {
	Record   *models.Record `json:"record"`
	Warnings []WarningDTO   `json:"warnings"`
}

// UpdateRequest is the body of PUT {resource}/{id}.
type UpdateRequest struct {
	Fields map[string]string `json:"fields"`
}

// WarningDTO is a guard that failed without blocking a status change.
type WarningDTO struct {
	Guard   string `json:"guard"`
	Message string `json:"message"`
}

// DeleteResponse is the data of a successful delete.
type DeleteResponse struct {
	Deleted string `json:"deleted"`
}

// WarningsToDTO converts guard results for the wire. The result is never nil.
func WarningsToDTO(results []workflow.GuardResult) []WarningDTO {
	out := make([]WarningDTO, 0, len(results))
	for _, r := range results {
		out = append(out, WarningDTO{Guard: r.Guard, Message: r.Message})
	}
	return out
}

func warningsFromDTO(dtos []WarningDTO) []workflow.GuardResult {
	if len(dtos) == 0 {
		return nil
	}
	out := make([]workflow.GuardResult, len(dtos))
	for i, d := range dtos {
		out[i] = workflow.GuardResult{Guard: d.Guard, Message: d.Message}
	}
	return out
}

// EncodeListQuery renders q as URL query parameters. Zero values are left
// out.
func EncodeListQuery(q models.ListQuery) url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.SortKey != "" {
		v.Set("sort", q.SortKey)
		if q.Desc {
			v.Set("desc", "true")
		}
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	for key, value := range q.Filters {
		if value != "" {
			v.Set(filterPrefix+key, value)
		}
	}
	return v
}

// DecodeListQuery parses list parameters. Malformed numbers are an error;
// unknown parameters are ignored.
func DecodeListQuery(v url.Values) (models.ListQuery, error) {
	q := models.ListQuery{
		Search:  v.Get("search"),
		SortKey: v.Get("sort"),
	}
	if s := v.Get("desc"); s != "" {
		desc, err := strconv.ParseBool(s)
		if err != nil {
			return q, fmt.Errorf("desc: %q is not a boolean", s)
		}
		q.Desc = desc
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"page", &q.Page}, {"limit", &q.Limit}} {
		s := v.Get(p.name)
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return q, fmt.Errorf("%s: %q is not a non-negative integer", p.name, s)
		}
		*p.dst = n
	}
	for key, values := range v {
		name, ok := strings.CutPrefix(key, filterPrefix)
		if !ok || name == "" || len(values) == 0 {
			continue
		}
		if q.Filters == nil {
			q.Filters = make(map[string]string)
		}
		q.Filters[name] = values[0]
	}
	return q, nil
}
