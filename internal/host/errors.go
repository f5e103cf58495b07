package host

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/marcus/jobdesk/internal/db"
	"github.com/marcus/jobdesk/internal/grid"
	"github.com/marcus/jobdesk/internal/models"
	"github.com/marcus/jobdesk/internal/workflow"
)

// FetchError is a failed list or get. The user sees UserMessage; the full
// error goes to the log.
type FetchError struct {
	Resource models.Resource
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ActionError is a failed mutation of one record.
type ActionError struct {
	Action   string
	Resource models.Resource
	ID       string
	Err      error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s %s %s: %v", e.Action, e.Resource, e.ID, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

// StatusError is a non-2xx response from the admin API.
type StatusError struct {
	Code    int
	Kind    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("http %d", e.Code)
}

// UserMessage turns err into text fit for an alert. Server-supplied messages
// are kept for client errors; everything else gets a fixed sentence.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusBadRequest:
			return orDefault(se.Message, "The request was invalid. Check the input and try again.")
		case http.StatusUnauthorized:
			return "You are not signed in or your session has expired."
		case http.StatusForbidden:
			return "You do not have permission to do that."
		case http.StatusNotFound:
			return orDefault(se.Message, "The requested record could not be found.")
		case http.StatusConflict:
			return orDefault(se.Message, "The request conflicts with the current state.")
		case http.StatusUnprocessableEntity:
			return orDefault(se.Message, "The input could not be processed. Check it and try again.")
		case http.StatusInternalServerError:
			return "The server ran into a problem. Try again in a moment."
		default:
			return orDefault(se.Message, "Something went wrong. Try again.")
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "The request timed out. Try again."
	}
	var (
		uerr *url.Error
		nerr net.Error
	)
	if errors.As(err, &uerr) || errors.As(err, &nerr) {
		return "Could not reach the server. Check the connection."
	}

	if errors.Is(err, db.ErrNotFound) {
		return "The requested record could not be found."
	}
	var verr *workflow.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	var terr *workflow.TransitionError
	if errors.As(err, &terr) {
		return fmt.Sprintf("%s cannot move from %s to %s.", terr.Resource.Title(), terr.From.Label(), terr.To.Label())
	}
	var xerr *grid.ExportError
	if errors.As(err, &xerr) {
		return "Export failed: " + xerr.Err.Error()
	}

	var inner error = err
	for {
		next := errors.Unwrap(inner)
		if next == nil {
			break
		}
		inner = next
	}
	return orDefault(inner.Error(), "Something went wrong. Try again.")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func isLocalNotFound(err error) bool {
	return errors.Is(err, db.ErrNotFound)
}
