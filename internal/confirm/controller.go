package confirm

import (
	"log/slog"
	"sync"
)

// Session is the dialog currently shown.
type Session struct {
	ID         uint64
	Request    Request
	Processing bool
	Err        error
}

// Pending is a confirmation whose action is still running. The caller runs
// Wait off the event loop and hands the result to Controller.Settle.
type Pending struct {
	id     uint64
	result Result
}

// Settled carries a finished deferred action back to its controller.
type Settled struct {
	ID  uint64
	Err error
}

// Wait blocks until the action settles.
func (p *Pending) Wait() Settled {
	return Settled{ID: p.id, Err: p.result.Wait()}
}

// Controller owns at most one open dialog. Alerts requested while a dialog is
// open wait in a FIFO queue; confirmations are rejected with ErrBusy.
type Controller struct {
	mu      sync.Mutex
	state   State
	session *Session
	queue   []Request
	nextID  uint64
	lastErr error

	logger       *slog.Logger
	onError      func(error)
	onTransition func(from, to State)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for failed actions and rejected requests.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithErrorHandler is called with every failed confirmation action.
func WithErrorHandler(fn func(error)) Option {
	return func(c *Controller) { c.onError = fn }
}

// WithTransitionHook observes every lifecycle transition. The hook runs with
// the controller locked and must not call back into it.
func WithTransitionHook(fn func(from, to State)) Option {
	return func(c *Controller) { c.onTransition = fn }
}

// NewLocal returns a controller owned by a single screen.
func NewLocal(opts ...Option) *Controller {
	c := &Controller{logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	defaultMu  sync.Mutex
	defaultCtl *Controller
)

// Default returns the process-wide controller, creating it on first use.
func Default() *Controller {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultCtl == nil {
		defaultCtl = NewLocal()
	}
	return defaultCtl
}

// SetDefault replaces the process-wide controller. A nil c resets it.
func SetDefault(c *Controller) {
	defaultMu.Lock()
	defaultCtl = c
	defaultMu.Unlock()
}

// Open shows req, dispatching on its kind. A rejected confirmation is
// logged; callers that need the outcome use OpenConfirm.
func (c *Controller) Open(req Request) {
	if req.Kind == KindConfirm {
		if err := c.OpenConfirm(req); err != nil {
			c.logger.Warn("confirm rejected", "title", req.Title, "err", err)
		}
		return
	}
	c.OpenAlert(req)
}

// OpenAlert shows an alert, or queues it behind the open dialog.
func (c *Controller) OpenAlert(req Request) {
	req.Kind = KindAlert
	req = req.withDefaults()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		c.queue = append(c.queue, req)
		return
	}
	c.activate(req)
}

// OpenConfirm shows a confirmation. It fails with ErrBusy while another
// dialog is open.
func (c *Controller) OpenConfirm(req Request) error {
	req.Kind = KindConfirm
	req = req.withDefaults()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return ErrBusy
	}
	c.activate(req)
	return nil
}

// activate opens req. c.mu must be held and no session may be open.
func (c *Controller) activate(req Request) {
	c.nextID++
	c.move(StateRequested)
	c.session = &Session{ID: c.nextID, Request: req}
	c.move(StateOpen)
}

// Confirm accepts the open confirmation and runs its action. Synchronous
// results settle before Confirm returns; deferred results return a Pending
// that must be waited on and passed to Settle. Confirm is a no-op unless a
// confirmation is open and not already processing.
func (c *Controller) Confirm() *Pending {
	c.mu.Lock()
	if c.session == nil || c.state != StateOpen || c.session.Request.Kind != KindConfirm {
		c.mu.Unlock()
		return nil
	}
	c.move(StateConfirming)
	c.session.Processing = true
	c.session.Err = nil
	id := c.session.ID
	action := c.session.Request.Action
	c.mu.Unlock()

	if action == nil {
		c.finish(id, nil)
		return nil
	}

	result := action()
	if !result.IsDeferred() {
		c.finish(id, result.Wait())
		return nil
	}
	return &Pending{id: id, result: result}
}

// Settle records the outcome of a deferred action. Outcomes for sessions
// that are no longer confirming are ignored.
func (c *Controller) Settle(s Settled) {
	c.finish(s.ID, s.Err)
}

func (c *Controller) finish(id uint64, err error) {
	c.mu.Lock()
	if c.session == nil || c.session.ID != id || c.state != StateConfirming {
		c.mu.Unlock()
		return
	}

	if err != nil {
		c.move(StateFailed)
		c.move(StateOpen)
		c.session.Processing = false
		c.session.Err = err
		c.lastErr = err
		title := c.session.Request.Title
		onError := c.onError
		c.mu.Unlock()

		c.logger.Error("confirm action failed", "title", title, "err", err)
		if onError != nil {
			onError(err)
		}
		return
	}

	c.move(StateResolved)
	req := c.session.Request
	c.close()
	c.mu.Unlock()

	if req.OnResolved != nil {
		req.OnResolved()
	}
}

// Cancel dismisses the open dialog without running its action. It returns
// false while an action is in flight or when nothing is open. Cancelling an
// alert acknowledges it.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	if c.session == nil || c.state != StateOpen {
		c.mu.Unlock()
		return false
	}
	req := c.session.Request
	c.close()
	c.mu.Unlock()

	if req.Kind == KindAlert {
		if req.OnClose != nil {
			req.OnClose()
		}
		return true
	}
	if req.OnCancel != nil {
		req.OnCancel()
	}
	return true
}

// Acknowledge closes an open alert and runs its OnClose callback.
func (c *Controller) Acknowledge() bool {
	c.mu.Lock()
	if c.session == nil || c.state != StateOpen || c.session.Request.Kind != KindAlert {
		c.mu.Unlock()
		return false
	}
	req := c.session.Request
	c.close()
	c.mu.Unlock()

	if req.OnClose != nil {
		req.OnClose()
	}
	return true
}

// close ends the session and promotes the next queued alert. c.mu must be
// held.
func (c *Controller) close() {
	c.move(StateClosed)
	c.session = nil
	c.move(StateIdle)
	if len(c.queue) > 0 {
		next := c.queue[0]
		c.queue = c.queue[1:]
		c.activate(next)
	}
}

func (c *Controller) move(to State) {
	from := c.state
	if !IsValidTransition(from, to) {
		c.logger.Error("dialog state", "err", &TransitionError{From: from, To: to})
		return
	}
	c.state = to
	if c.onTransition != nil {
		c.onTransition(from, to)
	}
}

// Session returns a copy of the open session.
func (c *Controller) Session() (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Processing reports whether a confirmation action is in flight.
func (c *Controller) Processing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil && c.session.Processing
}

// Dismissible reports whether cancel and close affordances are enabled.
func (c *Controller) Dismissible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil && c.state == StateOpen
}

// Queued returns the number of alerts waiting behind the open dialog.
func (c *Controller) Queued() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// LastError returns the most recent action failure.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}
