package workflow

import (
	"time"

	"github.com/marcus/jobdesk/internal/models"
)

// CompanyApprovedGuard blocks reopening a job post whose company is not
// approved.
type CompanyApprovedGuard struct{}

func (g *CompanyApprovedGuard) Name() string {
	return "CompanyApprovedGuard"
}

func (g *CompanyApprovedGuard) Check(ctx *TransitionContext) GuardResult {
	if ctx.ToStatus != models.StatusOpen || ctx.Record == nil {
		return GuardResult{Passed: true}
	}

	// Older rows may not carry the company status at all
	status := models.Status(ctx.Record.String("company_status"))
	if status == "" || status == models.StatusApproved {
		return GuardResult{Passed: true}
	}

	return GuardResult{
		Passed:  false,
		Message: "company is " + status.Label() + ", not approved",
	}
}

// ExpiredPostGuard blocks reopening a job post whose due date has passed.
type ExpiredPostGuard struct{}

func (g *ExpiredPostGuard) Name() string {
	return "ExpiredPostGuard"
}

func (g *ExpiredPostGuard) Check(ctx *TransitionContext) GuardResult {
	if ctx.ToStatus != models.StatusOpen || ctx.Record == nil {
		return GuardResult{Passed: true}
	}

	due, ok := parseDate(ctx.Record.String("due_date"))
	if !ok {
		return GuardResult{Passed: true}
	}
	now := ctx.Now
	if now.IsZero() {
		now = time.Now()
	}
	// Due dates are inclusive
	if !now.After(due.Add(24 * time.Hour)) {
		return GuardResult{Passed: true}
	}

	return GuardResult{
		Passed:  false,
		Message: "due date " + due.Format("2006-01-02") + " has passed",
	}
}

// OpenPostGuard blocks approving an application to a closed job post.
type OpenPostGuard struct{}

func (g *OpenPostGuard) Name() string {
	return "OpenPostGuard"
}

func (g *OpenPostGuard) Check(ctx *TransitionContext) GuardResult {
	if ctx.ToStatus != models.StatusApproved || ctx.Record == nil {
		return GuardResult{Passed: true}
	}
	if models.Status(ctx.Record.String("post_status")) != models.StatusClosed {
		return GuardResult{Passed: true}
	}

	return GuardResult{
		Passed:  false,
		Message: "job post is closed",
	}
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, t.Location()), true
		}
	}
	return time.Time{}, false
}
