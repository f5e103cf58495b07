// Package host supplies the admin console with data. A Source fetches and
// mutates resources; Local reads the sqlite store, Remote talks to a running
// `jobdesk serve`, and Memory serves an in-process snapshot.
package host

import (
	"context"

	"github.com/marcus/jobdesk/internal/grid"
	"github.com/marcus/jobdesk/internal/models"
	"github.com/marcus/jobdesk/internal/workflow"
)

// Source is where the console gets its rows.
type Source interface {
	List(ctx context.Context, r models.Resource, q models.ListQuery) (models.Page, error)
	Get(ctx context.Context, r models.Resource, id string) (*models.Record, error)
	Delete(ctx context.Context, r models.Resource, id string) error

	// SetStatus returns guard failures that did not block the change.
	SetStatus(ctx context.Context, r models.Resource, id string, to models.Status, force bool) ([]workflow.GuardResult, error)

	Update(ctx context.Context, r models.Resource, id string, values map[string]string) error
	Stats(ctx context.Context) (models.Stats, error)
}

var (
	_ Source = (*Local)(nil)
	_ Source = (*Remote)(nil)
	_ Source = (*Memory)(nil)
)

// ListQuery converts the grid's browsing state into a store query.
func ListQuery(q grid.Query) models.ListQuery {
	lq := models.ListQuery{
		Search:  q.Search,
		SortKey: q.Sort.Key,
		Desc:    q.Sort.Key != "" && q.Sort.Direction == grid.Desc,
		Page:    q.Page,
		Limit:   q.Size,
	}
	if len(q.Filters) > 0 {
		lq.Filters = make(map[string]string, len(q.Filters))
		for k, v := range q.Filters {
			lq.Filters[k] = v
		}
	}
	return lq
}

// Rows converts records to grid rows.
func Rows(records []models.Record) []grid.Row {
	rows := make([]grid.Row, len(records))
	for i, rec := range records {
		rows[i] = grid.Row{ID: rec.ID, Fields: rec.Fields}
	}
	return rows
}

// Record converts a grid row back to a record.
func Record(row grid.Row) models.Record {
	return models.Record{ID: row.ID, Fields: row.Fields}
}

// Columns returns the grid columns of r's visible fields.
func Columns(r models.Resource) []grid.ColumnSpec {
	var cols []grid.ColumnSpec
	for _, f := range models.Fields(r) {
		if f.Hidden {
			continue
		}
		col := grid.ColumnSpec{
			Key:        f.Key,
			Label:      f.Label,
			Sortable:   f.Sortable,
			Filterable: f.Filterable,
			Display:    grid.Text(),
		}
		switch f.Kind {
		case models.FieldStatus:
			col.Display = grid.BadgeOf(StatusBadges(r))
		case models.FieldTime:
			col.Display = grid.Date("2006-01-02")
		}
		cols = append(cols, col)
	}
	return cols
}

// StatusBadges labels and colors every status of r.
func StatusBadges(r models.Resource) map[string]grid.Badge {
	badges := make(map[string]grid.Badge)
	for _, s := range models.StatusesFor(r) {
		badges[string(s)] = grid.Badge{Label: s.Label(), Tone: statusTone(s)}
	}
	return badges
}

func statusTone(s models.Status) grid.Tone {
	switch s {
	case models.StatusApproved, models.StatusOpen:
		return grid.ToneSuccess
	case models.StatusApproving:
		return grid.ToneWarning
	case models.StatusDenied:
		return grid.ToneDanger
	case models.StatusHidden, models.StatusClosed:
		return grid.ToneNeutral
	default:
		return grid.ToneInfo
	}
}
