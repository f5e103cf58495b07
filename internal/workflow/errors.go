package workflow

import (
	"fmt"
	"strings"

	"github.com/marcus/jobdesk/internal/models"
)

// TransitionError is a status change the machine has no edge for.
type TransitionError struct {
	Resource models.Resource
	From     models.Status
	To       models.Status
	Reason   string
	ID       string
}

func (e *TransitionError) Error() string {
	subject := string(e.Resource)
	if e.ID != "" {
		subject += " " + e.ID
	}
	return fmt.Sprintf("cannot move %s from %s to %s: %s", subject, e.From, e.To, e.Reason)
}

// GuardError is a single guard that blocked a transition.
type GuardError struct {
	GuardName string
	Reason    string
	ID        string
}

func (e *GuardError) Error() string {
	var b strings.Builder
	b.WriteString("guard ")
	b.WriteString(e.GuardName)
	b.WriteString(" failed")
	if e.ID != "" {
		b.WriteString(" for ")
		b.WriteString(e.ID)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

// ValidationError collects every guard that blocked one transition.
type ValidationError struct {
	Errors []error
}

func (e *ValidationError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no validation errors"
	case 1:
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d validation errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() []error { return e.Errors }

func (e *ValidationError) Add(err error) {
	e.Errors = append(e.Errors, err)
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}
