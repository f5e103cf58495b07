// Package workflow validates status changes of admin resources: which
// transitions exist for each resource and which guards must pass before
// they are applied.
package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/marcus/jobdesk/internal/models"
)

// Mode controls how guard failures are treated.
type Mode int

const (
	// ModeLiberal checks only that the transition exists.
	ModeLiberal Mode = iota
	// ModeAdvisory runs guards and reports failures without blocking.
	ModeAdvisory
	// ModeStrict blocks a transition when any guard fails.
	ModeStrict
)

func (m Mode) String() string {
	switch m {
	case ModeLiberal:
		return "liberal"
	case ModeAdvisory:
		return "advisory"
	case ModeStrict:
		return "strict"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode parses a mode name; the empty string is strict.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return ModeStrict, nil
	case "advisory":
		return ModeAdvisory, nil
	case "liberal":
		return ModeLiberal, nil
	}
	return ModeStrict, fmt.Errorf("unknown workflow mode %q", s)
}

// Transition is one allowed status change of a resource.
type Transition struct {
	Resource models.Resource
	From     models.Status
	To       models.Status
	Guards   []Guard
}

// TransitionContext carries what guards need to judge a status change.
type TransitionContext struct {
	Resource   models.Resource
	Record     *models.Record
	FromStatus models.Status
	ToStatus   models.Status
	Force      bool
	Now        time.Time
}

func (c *TransitionContext) id() string {
	if c.Record == nil {
		return ""
	}
	return c.Record.ID
}

// Guard is a precondition on a transition.
type Guard interface {
	Name() string
	Check(ctx *TransitionContext) GuardResult
}

// GuardResult is the outcome of one guard.
type GuardResult struct {
	Guard   string
	Passed  bool
	Message string
}

// Machine validates transitions against the transition table.
type Machine struct {
	mode        Mode
	transitions map[models.Resource]map[models.Status]map[models.Status]*Transition
}

// NewMachine builds a machine over AllTransitions.
func NewMachine(mode Mode) *Machine {
	m := &Machine{
		mode:        mode,
		transitions: make(map[models.Resource]map[models.Status]map[models.Status]*Transition),
	}
	for _, t := range AllTransitions() {
		byFrom, ok := m.transitions[t.Resource]
		if !ok {
			byFrom = make(map[models.Status]map[models.Status]*Transition)
			m.transitions[t.Resource] = byFrom
		}
		if byFrom[t.From] == nil {
			byFrom[t.From] = make(map[models.Status]*Transition)
		}
		byFrom[t.From][t.To] = t
	}
	return m
}

// DefaultMachine enforces guards.
func DefaultMachine() *Machine { return NewMachine(ModeStrict) }

// AdvisoryMachine reports guard failures without blocking.
func AdvisoryMachine() *Machine { return NewMachine(ModeAdvisory) }

// LiberalMachine ignores guards.
func LiberalMachine() *Machine { return NewMachine(ModeLiberal) }

// Mode returns the machine's enforcement mode.
func (m *Machine) Mode() Mode { return m.mode }

// IsValidTransition reports whether r may move from → to, ignoring guards.
func (m *Machine) IsValidTransition(r models.Resource, from, to models.Status) bool {
	return m.lookup(r, from, to) != nil
}

func (m *Machine) lookup(r models.Resource, from, to models.Status) *Transition {
	byFrom := m.transitions[r]
	if byFrom == nil {
		return nil
	}
	return byFrom[from][to]
}

// Validate checks ctx against the table and, outside liberal mode, the
// transition's guards. Failed guard results are returned in advisory mode;
// in strict mode they become a ValidationError unless ctx.Force is set.
func (m *Machine) Validate(ctx *TransitionContext) ([]GuardResult, error) {
	if !models.IsValidStatus(ctx.Resource, ctx.ToStatus) {
		return nil, &TransitionError{
			Resource: ctx.Resource, From: ctx.FromStatus, To: ctx.ToStatus, ID: ctx.id(),
			Reason: "unknown status",
		}
	}
	if ctx.FromStatus == ctx.ToStatus {
		return nil, nil
	}

	t := m.lookup(ctx.Resource, ctx.FromStatus, ctx.ToStatus)
	if t == nil {
		return nil, &TransitionError{
			Resource: ctx.Resource, From: ctx.FromStatus, To: ctx.ToStatus, ID: ctx.id(),
			Reason: "transition not allowed",
		}
	}
	if m.mode == ModeLiberal {
		return nil, nil
	}

	var failed []GuardResult
	for _, g := range t.Guards {
		res := g.Check(ctx)
		res.Guard = g.Name()
		if !res.Passed {
			failed = append(failed, res)
		}
	}
	if len(failed) == 0 || m.mode == ModeAdvisory || ctx.Force {
		return failed, nil
	}

	verr := &ValidationError{}
	for _, res := range failed {
		verr.Add(&GuardError{GuardName: res.Guard, Reason: res.Message, ID: ctx.id()})
	}
	return failed, verr
}
