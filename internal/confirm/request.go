package confirm

import "errors"

// Kind selects between a one-button alert and a two-button confirmation.
type Kind int

const (
	KindAlert Kind = iota
	KindConfirm
)

func (k Kind) String() string {
	if k == KindConfirm {
		return "confirm"
	}
	return "alert"
}

// Severity drives the dialog's color and icon.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

var (
	// ErrBusy is returned when a confirmation is requested while another
	// dialog is open.
	ErrBusy = errors.New("another dialog is already open")

	// ErrCancelled is the rejected outcome of a cancelled confirmation.
	ErrCancelled = errors.New("cancelled by user")
)

// Request describes one dialog.
type Request struct {
	Kind        Kind
	Title       string
	Message     string
	ConfirmText string
	CancelText  string
	Severity    Severity
	Destructive bool

	// Action runs when a confirmation is accepted.
	Action Action

	// OnClose runs after an alert is acknowledged.
	OnClose func()

	// OnResolved runs after a confirmation's action succeeded.
	OnResolved func()

	// OnCancel runs when a confirmation is dismissed without confirming.
	OnCancel func()
}

// Alert builds an alert request.
func Alert(title, message string, severity Severity) Request {
	return Request{Kind: KindAlert, Title: title, Message: message, Severity: severity}
}

// Confirm builds a confirmation request around action.
func Confirm(title, message string, action Action) Request {
	return Request{Kind: KindConfirm, Title: title, Message: message, Action: action}
}

// withDefaults fills in the labels and severity a caller left empty.
func (r Request) withDefaults() Request {
	if r.ConfirmText == "" {
		r.ConfirmText = "OK"
	}
	switch r.Kind {
	case KindConfirm:
		if r.Title == "" {
			r.Title = "Confirm"
		}
		if r.CancelText == "" {
			r.CancelText = "Cancel"
		}
		if r.Severity == "" {
			r.Severity = SeverityWarning
		}
	default:
		if r.Title == "" {
			r.Title = "Notice"
		}
		if r.Severity == "" {
			r.Severity = SeverityInfo
		}
	}
	return r
}

// Action is the work behind a confirmation.
type Action func() Result

// Result is the outcome of an Action. It is either settled already or
// deferred until Wait returns.
type Result struct {
	err  error
	wait func() error
}

// Done is an immediately settled result; a nil err means success.
func Done(err error) Result {
	return Result{err: err}
}

// Deferred is a result that settles when wait returns.
func Deferred(wait func() error) Result {
	return Result{wait: wait}
}

// Sync adapts a plain synchronous function to an Action.
func Sync(fn func() error) Action {
	return func() Result { return Done(fn()) }
}

// Async adapts a blocking function to a deferred Action.
func Async(fn func() error) Action {
	return func() Result { return Deferred(fn) }
}

// IsDeferred reports whether the result still has to be waited on.
func (r Result) IsDeferred() bool { return r.wait != nil }

// Wait blocks until the result settles and returns its error.
func (r Result) Wait() error {
	if r.wait != nil {
		return r.wait()
	}
	return r.err
}
