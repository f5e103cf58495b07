package workflow

import (
	"github.com/marcus/jobdesk/internal/models"
)

// AllTransitions returns all valid status transitions for every resource
// that has a status.
func AllTransitions() []*Transition {
	companies := models.ResourceCompanies
	posts := models.ResourceJobPosts
	apps := models.ResourceApplications

	return []*Transition{
		// Companies: registrations wait for approval; admins can hide any
		// company and bring it back.
		{Resource: companies, From: models.StatusApproving, To: models.StatusApproved},
		{Resource: companies, From: models.StatusApproving, To: models.StatusHidden},
		{Resource: companies, From: models.StatusApproved, To: models.StatusHidden},
		{Resource: companies, From: models.StatusHidden, To: models.StatusApproving},
		{Resource: companies, From: models.StatusHidden, To: models.StatusApproved},

		// Job posts
		{Resource: posts, From: models.StatusOpen, To: models.StatusClosed},
		{Resource: posts, From: models.StatusClosed, To: models.StatusOpen, Guards: []Guard{&CompanyApprovedGuard{}, &ExpiredPostGuard{}}},

		// Applications
		{Resource: apps, From: models.StatusApproving, To: models.StatusApproved, Guards: []Guard{&OpenPostGuard{}}},
		{Resource: apps, From: models.StatusApproving, To: models.StatusDenied},
		{Resource: apps, From: models.StatusApproved, To: models.StatusDenied},
		{Resource: apps, From: models.StatusDenied, To: models.StatusApproved, Guards: []Guard{&OpenPostGuard{}}},
	}
}

// TransitionName returns a human-readable name for the transition
func TransitionName(from, to models.Status) string {
	switch {
	case to == models.StatusApproved:
		return "approve"
	case to == models.StatusHidden:
		return "hide"
	case from == models.StatusHidden && to == models.StatusApproving:
		return "unhide"
	case to == models.StatusDenied:
		return "deny"
	case to == models.StatusClosed:
		return "close"
	case from == models.StatusClosed && to == models.StatusOpen:
		return "reopen"
	default:
		return string(from) + " → " + string(to)
	}
}

// GetTransitionsFrom returns all possible targets from a given status
func GetTransitionsFrom(r models.Resource, status models.Status) []models.Status {
	var targets []models.Status
	for _, t := range AllTransitions() {
		if t.Resource == r && t.From == status {
			targets = append(targets, t.To)
		}
	}
	return targets
}

// GetTransitionsTo returns all statuses that can transition to the given status
func GetTransitionsTo(r models.Resource, status models.Status) []models.Status {
	var sources []models.Status
	for _, t := range AllTransitions() {
		if t.Resource == r && t.To == status {
			sources = append(sources, t.From)
		}
	}
	return sources
}
