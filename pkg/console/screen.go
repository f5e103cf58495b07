package console

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/jobdesk/internal/confirm"
	"github.com/marcus/jobdesk/internal/grid"
	"github.com/marcus/jobdesk/internal/host"
	"github.com/marcus/jobdesk/internal/models"
)

// fetchedMsg carries one list response back to its screen.
type fetchedMsg struct {
	resource models.Resource
	token    uint64
	page     models.Page
	err      error
}

// mutatedMsg reports that a screen changed data, so counters need a refresh.
type mutatedMsg struct{}

type openDetailMsg struct {
	resource models.Resource
	row      grid.Row
}

type openEditMsg struct {
	resource models.Resource
	row      grid.Row
}

// Screen is the console page of one resource. It owns the rows: the grid
// reports intents, the screen turns them into fetches and mutations against
// the source and feeds the results back with SetData.
type Screen struct {
	resource models.Resource
	src      host.Source
	grid     *grid.Grid
	dialogs  *confirm.Controller
	seq      grid.Sequencer
	policy   string
	timeout  time.Duration
	logger   *slog.Logger

	loading bool
	loaded  bool
	err     error
	cursor  int
	col     int

	// commands queued by grid callbacks, drained by the model after each
	// update
	pending []tea.Cmd
}

type screenConfig struct {
	resource  models.Resource
	src       host.Source
	dialogs   *confirm.Controller
	policy    string
	pageSize  int
	pageSizes []int
	buttons   int
	exportDir string
	timeout   time.Duration
	logger    *slog.Logger
}

func newScreen(cfg screenConfig) *Screen {
	s := &Screen{
		resource: cfg.resource,
		src:      cfg.src,
		dialogs:  cfg.dialogs,
		policy:   cfg.policy,
		timeout:  cfg.timeout,
		logger:   cfg.logger.With("resource", string(cfg.resource)),
	}
	s.grid = grid.New(grid.Config{
		Columns: host.Columns(cfg.resource),
		Options: grid.Options{
			Title:       cfg.resource.Title(),
			Selectable:  true,
			Searchable:  true,
			Exportable:  true,
			Paginated:   true,
			RowsPerPage: cfg.pageSize,
			PageSizes:   cfg.pageSizes,
			MaxButtons:  cfg.buttons,
		},
		Callbacks: grid.Callbacks{
			OnSearch:     func(string, int, int) { s.refetch() },
			OnSort:       func(grid.SortState) { s.refetch() },
			OnFilter:     func(grid.FilterState) { s.refetch() },
			OnPageChange: func(int, int) { s.refetch() },
			OnDelete:     s.delete,
			OnStatus:     s.setStatus,
			OnEdit:       func(row grid.Row) { s.emit(openEditMsg{resource: s.resource, row: row}) },
			OnView:       func(row grid.Row) { s.emit(openDetailMsg{resource: s.resource, row: row}) },
			OnRowClick:   func(row grid.Row) { s.emit(openDetailMsg{resource: s.resource, row: row}) },
			OnChanged:    s.applyChange,
			OnError:      s.reportError,
		},
		Dialogs:    cfg.dialogs,
		Downloader: grid.DirDownloader{Dir: cfg.exportDir},
		Logger:     s.logger,
	})
	return s
}

func (s *Screen) queue(cmd tea.Cmd) {
	if cmd != nil {
		s.pending = append(s.pending, cmd)
	}
}

func (s *Screen) emit(msg tea.Msg) {
	s.queue(func() tea.Msg { return msg })
}

func (s *Screen) drain() []tea.Cmd {
	cmds := s.pending
	s.pending = nil
	return cmds
}

func (s *Screen) refetch() {
	s.queue(s.fetch())
}

// fetch issues a list request for the grid's full query. Only the response
// to the latest request is applied.
func (s *Screen) fetch() tea.Cmd {
	token := s.seq.Next()
	s.loading = true

	src, r, timeout := s.src, s.resource, s.timeout
	q := host.ListQuery(s.grid.Query())
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		page, err := src.List(ctx, r, q)
		return fetchedMsg{resource: r, token: token, page: page, err: err}
	}
}

// applyFetch installs a list response. Responses to superseded requests are
// dropped.
func (s *Screen) applyFetch(msg fetchedMsg) {
	if !s.seq.Current(msg.token) {
		s.logger.Debug("stale list response dropped", "token", msg.token)
		return
	}
	s.loading = false
	if msg.err != nil {
		s.err = msg.err
		s.logger.Error("list failed", "err", msg.err)
		s.dialogs.OpenAlert(confirm.Alert("Load failed", host.UserMessage(msg.err), confirm.SeverityError))
		return
	}
	s.err = nil
	s.loaded = true

	requested := s.grid.Pagination().CurrentPage
	s.grid.SetData(host.Rows(msg.page.Rows), msg.page.Total)
	if s.grid.Pagination().CurrentPage != requested {
		// the page vanished, e.g. after deleting the last rows on it
		s.refetch()
	}
	s.clampCursor()
}

func (s *Screen) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// delete and setStatus run inside confirmation actions, off the event loop.
func (s *Screen) delete(id string) error {
	ctx, cancel := s.context()
	defer cancel()
	return s.src.Delete(ctx, s.resource, id)
}

func (s *Screen) setStatus(id, status string) error {
	ctx, cancel := s.context()
	defer cancel()
	warnings, err := s.src.SetStatus(ctx, s.resource, id, models.Status(status), false)
	for _, w := range warnings {
		s.logger.Warn("status guard", "id", id, "guard", w.Guard, "message", w.Message)
	}
	return err
}

// applyChange updates the rows after a successful mutation, either by
// refetching or by patching the visible rows in place.
func (s *Screen) applyChange(c grid.Change) {
	s.emit(mutatedMsg{})
	if s.policy != models.UpdateOptimistic {
		s.refetch()
		return
	}

	rows := s.grid.Rows()
	total := s.grid.Pagination().TotalItems
	switch c.Kind {
	case grid.ChangeDeleted:
		gone := make(map[string]bool, len(c.IDs))
		for _, id := range c.IDs {
			gone[id] = true
		}
		kept := make([]grid.Row, 0, len(rows))
		for _, r := range rows {
			if !gone[r.ID] {
				kept = append(kept, r)
			}
		}
		total -= len(rows) - len(kept)
		rows = kept
	case grid.ChangeStatus:
		rows = slices.Clone(rows)
		for i, r := range rows {
			if slices.Contains(c.IDs, r.ID) {
				fields := maps.Clone(r.Fields)
				fields["status"] = c.Status
				rows[i] = grid.Row{ID: r.ID, Fields: fields}
			}
		}
	}
	requested := s.grid.Pagination().CurrentPage
	s.grid.SetData(rows, total)
	if (len(rows) == 0 && total > 0) || s.grid.Pagination().CurrentPage != requested {
		// the visible page emptied; load whatever is there now
		s.refetch()
	}
	s.clampCursor()
}

// patchRow replaces the fields of one visible row after an edit.
func (s *Screen) patchRow(id string, values map[string]string) {
	rows := slices.Clone(s.grid.Rows())
	for i, r := range rows {
		if r.ID != id {
			continue
		}
		fields := maps.Clone(r.Fields)
		for k, v := range values {
			fields[k] = v
		}
		rows[i] = grid.Row{ID: id, Fields: fields}
	}
	s.grid.SetData(rows, s.grid.Pagination().TotalItems)
}

func (s *Screen) reportError(err error) {
	s.dialogs.OpenAlert(confirm.Alert("Delete failed", host.UserMessage(err), confirm.SeverityError))
}

func (s *Screen) clampCursor() {
	n := len(s.grid.Rows())
	s.cursor = max(0, min(s.cursor, n-1))
}

func (s *Screen) moveCursor(delta int) {
	s.cursor += delta
	s.clampCursor()
}

func (s *Screen) moveColumn(delta int) {
	n := len(s.grid.Columns())
	if n == 0 {
		return
	}
	s.col = ((s.col+delta)%n + n) % n
}

// focusedColumn is the column sort and filter keys act on.
func (s *Screen) focusedColumn() (grid.ColumnSpec, bool) {
	cols := s.grid.Columns()
	if s.col < 0 || s.col >= len(cols) {
		return grid.ColumnSpec{}, false
	}
	return cols[s.col], true
}

func (s *Screen) currentRow() (grid.Row, bool) {
	rows := s.grid.Rows()
	if s.cursor < 0 || s.cursor >= len(rows) {
		return grid.Row{}, false
	}
	return rows[s.cursor], true
}

func (s *Screen) rowIndex(id string) int {
	return slices.IndexFunc(s.grid.Rows(), func(r grid.Row) bool { return r.ID == id })
}
