// Package models defines the admin resources, their fields and status
// vocabularies, and the records exchanged between stores, the HTTP API and
// the console.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Resource names one admin collection. The value doubles as its URL segment.
type Resource string

const (
	ResourceUsers        Resource = "users"
	ResourceCompanies    Resource = "companies"
	ResourceJobPosts     Resource = "job-posts"
	ResourceApplications Resource = "applications"
	ResourceReviews      Resource = "reviews"
	ResourceNotices      Resource = "notices"
)

// AllResources returns every resource in sidebar order.
func AllResources() []Resource {
	return []Resource{
		ResourceUsers,
		ResourceCompanies,
		ResourceJobPosts,
		ResourceApplications,
		ResourceReviews,
		ResourceNotices,
	}
}

var resourceAliases = map[string]Resource{
	"user":        ResourceUsers,
	"company":     ResourceCompanies,
	"job-post":    ResourceJobPosts,
	"jobposts":    ResourceJobPosts,
	"job_posts":   ResourceJobPosts,
	"posts":       ResourceJobPosts,
	"application": ResourceApplications,
	"apps":        ResourceApplications,
	"review":      ResourceReviews,
	"notice":      ResourceNotices,
}

// ParseResource resolves a resource name or one of its aliases.
func ParseResource(s string) (Resource, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, r := range AllResources() {
		if string(r) == s {
			return r, nil
		}
	}
	if r, ok := resourceAliases[s]; ok {
		return r, nil
	}
	return "", fmt.Errorf("unknown resource %q", s)
}

// Title is the display name of the resource.
func (r Resource) Title() string {
	switch r {
	case ResourceUsers:
		return "Users"
	case ResourceCompanies:
		return "Companies"
	case ResourceJobPosts:
		return "Job Posts"
	case ResourceApplications:
		return "Applications"
	case ResourceReviews:
		return "Reviews"
	case ResourceNotices:
		return "Notices"
	default:
		return string(r)
	}
}

// Table is the backing table, used for deletes and status updates.
func (r Resource) Table() string {
	return strings.ReplaceAll(string(r), "-", "_")
}

// View is the read model listing queries run against. It flattens the
// foreign keys each list shows by name.
func (r Resource) View() string {
	return r.Table() + "_view"
}

// HasStatus reports whether records of r carry a status.
func (r Resource) HasStatus() bool {
	return len(StatusesFor(r)) > 0
}

// Status is a lifecycle status of a company, job post or application.
type Status string

const (
	StatusApproving Status = "approving"
	StatusApproved  Status = "approved"
	StatusHidden    Status = "hidden"
	StatusDenied    Status = "denied"
	StatusOpen      Status = "open"
	StatusClosed    Status = "closed"
)

// StatusesFor returns the statuses valid for r, in display order.
func StatusesFor(r Resource) []Status {
	switch r {
	case ResourceCompanies:
		return []Status{StatusApproving, StatusApproved, StatusHidden}
	case ResourceJobPosts:
		return []Status{StatusOpen, StatusClosed}
	case ResourceApplications:
		return []Status{StatusApproving, StatusApproved, StatusDenied}
	default:
		return nil
	}
}

// IsValidStatus reports whether s belongs to r's vocabulary.
func IsValidStatus(r Resource, s Status) bool {
	for _, v := range StatusesFor(r) {
		if v == s {
			return true
		}
	}
	return false
}

// Label is the human-readable status name.
func (s Status) Label() string {
	switch s {
	case StatusApproving:
		return "Pending"
	case StatusApproved:
		return "Approved"
	case StatusHidden:
		return "Hidden"
	case StatusDenied:
		return "Denied"
	case StatusOpen:
		return "Open"
	case StatusClosed:
		return "Closed"
	default:
		return string(s)
	}
}

// Record is one row of a resource. Fields holds scalar values keyed by field
// key; times are carried as RFC 3339 strings on the wire.
type Record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// String returns the field value formatted as text, or "" when absent.
func (r Record) String(key string) string {
	v, ok := r.Fields[key]
	if !ok || v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

// Status returns the record's status field.
func (r Record) Status() Status {
	return Status(r.String("status"))
}

// ListQuery is the parameter set of a list request. The store applies it;
// the grid only passes it through.
type ListQuery struct {
	Search  string
	SortKey string
	Desc    bool
	Filters map[string]string
	Page    int
	Limit   int
}

// Page is one page of records plus the total matching count.
type Page struct {
	Rows  []Record `json:"rows"`
	Total int      `json:"total"`
}

// Stats holds the dashboard counters.
type Stats struct {
	Counts           map[Resource]int `json:"counts"`
	PendingCompanies int              `json:"pending_companies"`
}
