package db

import (
	"context"
	"fmt"
	"time"

	"github.com/marcus/jobdesk/internal/models"
	"github.com/marcus/jobdesk/internal/workflow"
)

// StatusOptions controls how a status change is validated.
type StatusOptions struct {
	// Machine validates the change; nil means workflow.DefaultMachine.
	Machine *workflow.Machine
	Force   bool
	Now     time.Time
}

// SetStatus moves a record to status after validating the transition. It
// returns the guard results that failed without blocking the change.
func (db *DB) SetStatus(ctx context.Context, r models.Resource, id string, to models.Status, opts StatusOptions) ([]workflow.GuardResult, error) {
	if !r.HasStatus() {
		return nil, fmt.Errorf("%w: %s have no status", ErrInvalidQuery, r)
	}
	rec, err := db.Get(ctx, r, id)
	if err != nil {
		return nil, err
	}

	machine := opts.Machine
	if machine == nil {
		machine = workflow.DefaultMachine()
	}
	warnings, err := machine.Validate(&workflow.TransitionContext{
		Resource:   r,
		Record:     rec,
		FromStatus: rec.Status(),
		ToStatus:   to,
		Force:      opts.Force,
		Now:        opts.Now,
	})
	if err != nil {
		return warnings, err
	}
	if rec.Status() == to {
		return warnings, nil
	}

	res, err := db.conn.ExecContext(ctx,
		"UPDATE "+r.Table()+" SET status = ? WHERE id = ?", string(to), id)
	if err != nil {
		return warnings, fmt.Errorf("set %s %s status: %w", r, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return warnings, fmt.Errorf("%s %s: %w", r, id, ErrNotFound)
	}
	return warnings, nil
}
