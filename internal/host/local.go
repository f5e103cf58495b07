package host

import (
	"context"
	"log/slog"
	"time"

	"github.com/marcus/jobdesk/internal/db"
	"github.com/marcus/jobdesk/internal/models"
	"github.com/marcus/jobdesk/internal/workflow"
)

// Local is a Source backed by the project's sqlite store.
type Local struct {
	db      *db.DB
	machine *workflow.Machine
	logger  *slog.Logger
	now     func() time.Time
}

// NewLocal wraps database. A nil machine means workflow.DefaultMachine.
func NewLocal(database *db.DB, machine *workflow.Machine, logger *slog.Logger) *Local {
	if machine == nil {
		machine = workflow.DefaultMachine()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Local{db: database, machine: machine, logger: logger, now: time.Now}
}

func (l *Local) List(ctx context.Context, r models.Resource, q models.ListQuery) (models.Page, error) {
	page, err := l.db.List(ctx, r, q)
	if err != nil {
		return models.Page{}, &FetchError{Resource: r, Err: err}
	}
	return page, nil
}

func (l *Local) Get(ctx context.Context, r models.Resource, id string) (*models.Record, error) {
	rec, err := l.db.Get(ctx, r, id)
	if err != nil {
		return nil, &FetchError{Resource: r, Err: err}
	}
	return rec, nil
}

func (l *Local) Delete(ctx context.Context, r models.Resource, id string) error {
	if err := l.db.Delete(ctx, r, id); err != nil {
		return &ActionError{Action: "delete", Resource: r, ID: id, Err: err}
	}
	l.logger.Info("deleted", "resource", r, "id", id)
	return nil
}

func (l *Local) SetStatus(ctx context.Context, r models.Resource, id string, to models.Status, force bool) ([]workflow.GuardResult, error) {
	warnings, err := l.db.SetStatus(ctx, r, id, to, db.StatusOptions{
		Machine: l.machine,
		Force:   force,
		Now:     l.now(),
	})
	for _, w := range warnings {
		l.logger.Warn("guard failed", "resource", r, "id", id, "guard", w.Guard, "reason", w.Message)
	}
	if err != nil {
		return warnings, &ActionError{Action: "status", Resource: r, ID: id, Err: err}
	}
	l.logger.Info("status changed", "resource", r, "id", id, "status", to)
	return warnings, nil
}

func (l *Local) Update(ctx context.Context, r models.Resource, id string, values map[string]string) error {
	if err := l.db.Update(ctx, r, id, values); err != nil {
		return &ActionError{Action: "update", Resource: r, ID: id, Err: err}
	}
	return nil
}

func (l *Local) Stats(ctx context.Context) (models.Stats, error) {
	stats, err := l.db.Stats(ctx)
	if err != nil {
		return models.Stats{}, &FetchError{Resource: "stats", Err: err}
	}
	return stats, nil
}
