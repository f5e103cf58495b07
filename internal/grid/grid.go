package grid

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/marcus/jobdesk/internal/confirm"
	"golang.org/x/sync/errgroup"
)

// DefaultPageSizes are the page sizes offered when Options leaves them empty.
var DefaultPageSizes = []int{10, 20, 50, 100}

// DefaultBulkConcurrency bounds concurrent deletes during a bulk delete.
const DefaultBulkConcurrency = 4

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortState is the active sort. Direction is meaningful only when Key is set.
type SortState struct {
	Key       string
	Direction Direction
}

// FilterState maps a column key to its filter text. Missing or empty entries
// mean no filter on that column.
type FilterState map[string]string

func (f FilterState) clone() FilterState {
	out := make(FilterState, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Query is every parameter a host needs to fetch the page the grid shows.
type Query struct {
	Search  string
	Sort    SortState
	Filters FilterState
	Page    int
	Size    int
}

// Target tells Click where inside a row the click landed.
type Target int

const (
	TargetRow Target = iota
	TargetAction
)

// ChangeKind identifies a mutation that went through the grid.
type ChangeKind int

const (
	ChangeDeleted ChangeKind = iota
	ChangeStatus
)

// Change describes a successful mutation so the host can refetch or patch
// its rows.
type Change struct {
	Kind   ChangeKind
	IDs    []string
	Status string
}

// RowError is a mutation failure for one row.
type RowError struct {
	ID  string
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %s: %v", e.ID, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Options are the affordance flags and paging defaults of a grid.
type Options struct {
	Title      string
	Selectable bool
	Searchable bool
	Exportable bool
	Paginated  bool

	RowsPerPage     int
	PageSizes       []int
	MaxButtons      int
	BulkConcurrency int
}

// Callbacks connect a grid to its host. Every callback is optional; an
// intent whose callback is missing still updates local state.
type Callbacks struct {
	OnSearch     func(term string, page, size int)
	OnSort       func(SortState)
	OnFilter     func(FilterState)
	OnPageChange func(page, size int)

	// OnExport replaces the built-in CSV download.
	OnExport func(columns []ColumnSpec, rows []Row) error

	// OnDelete and OnStatus perform mutations. They may be called from a
	// goroutine other than the one driving the grid, and OnDelete may be
	// called concurrently during a bulk delete.
	OnDelete func(id string) error
	OnStatus func(id, status string) error

	OnEdit     func(Row)
	OnView     func(Row)
	OnRowClick func(Row)

	// OnChanged runs after a confirmed mutation succeeded.
	OnChanged func(Change)

	// OnError receives failures that have no dialog left to show them.
	OnError func(error)
}

// Config assembles a Grid.
type Config struct {
	Columns    []ColumnSpec
	Options    Options
	Callbacks  Callbacks
	Dialogs    confirm.Opener
	Downloader Downloader
	Logger     *slog.Logger
}

// Grid holds the transient browsing state of one table: search, sort,
// filters, selection and paging. The host owns the rows; the grid renders
// what it is given and reports intents back through Callbacks.
//
// A Grid is not safe for concurrent use. It is driven from one goroutine.
type Grid struct {
	columns []ColumnSpec
	opts    Options
	cb      Callbacks

	dialogs    confirm.Opener
	downloader Downloader
	logger     *slog.Logger

	rows     []Row
	search   string
	sort     SortState
	filters  FilterState
	selected map[string]struct{}
	page     Pagination
}

// New returns an empty grid.
func New(cfg Config) *Grid {
	opts := cfg.Options
	if len(opts.PageSizes) == 0 {
		opts.PageSizes = DefaultPageSizes
	}
	if opts.RowsPerPage <= 0 {
		opts.RowsPerPage = opts.PageSizes[0]
	}
	if opts.MaxButtons <= 0 {
		opts.MaxButtons = DefaultMaxButtons
	}
	if opts.BulkConcurrency <= 0 {
		opts.BulkConcurrency = DefaultBulkConcurrency
	}
	if opts.Title == "" {
		opts.Title = "export"
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	downloader := cfg.Downloader
	if downloader == nil {
		downloader = DirDownloader{Dir: "."}
	}

	return &Grid{
		columns:    cfg.Columns,
		opts:       opts,
		cb:         cfg.Callbacks,
		dialogs:    confirm.Use(cfg.Dialogs),
		downloader: downloader,
		logger:     logger,
		filters:    FilterState{},
		selected:   map[string]struct{}{},
		page:       Pagination{CurrentPage: 1, RowsPerPage: opts.RowsPerPage},
	}
}

// SetData replaces the visible rows. A negative total means the rows are the
// whole dataset. Selection is pruned to the new rows and the current page is
// clamped to the new page count.
func (g *Grid) SetData(rows []Row, total int) {
	if total < 0 {
		total = len(rows)
	}
	g.rows = rows
	g.page.TotalItems = total
	g.page = g.page.Clamp()

	visible := g.visibleIDs()
	for id := range g.selected {
		if _, ok := visible[id]; !ok {
			delete(g.selected, id)
		}
	}
}

// Restore sets the browsing state without notifying the host, for example
// when a screen is reopened with a saved query.
func (g *Grid) Restore(q Query) {
	g.search = q.Search
	g.sort = q.Sort
	g.filters = q.Filters.clone()
	if q.Size > 0 {
		g.page.RowsPerPage = q.Size
	}
	if q.Page > 0 {
		g.page.CurrentPage = q.Page
	}
}

// Search sets the search term and returns to the first page.
func (g *Grid) Search(term string) {
	if !g.opts.Searchable {
		return
	}
	g.search = term
	g.page.CurrentPage = 1
	if g.cb.OnSearch != nil {
		g.cb.OnSearch(term, 1, g.page.RowsPerPage)
	}
}

// Sort sorts by key, flipping the direction when key is already the sort
// key. Unknown and non-sortable columns are ignored.
func (g *Grid) Sort(key string) {
	col, ok := g.Column(key)
	if !ok || !col.Sortable {
		return
	}
	if g.sort.Key == key {
		if g.sort.Direction == Asc {
			g.sort.Direction = Desc
		} else {
			g.sort.Direction = Asc
		}
	} else {
		g.sort = SortState{Key: key, Direction: Asc}
	}
	if g.cb.OnSort != nil {
		g.cb.OnSort(g.sort)
	}
}

// Filter sets the filter text for key; an empty value clears it. Unknown and
// non-filterable columns are ignored.
func (g *Grid) Filter(key, value string) {
	col, ok := g.Column(key)
	if !ok || !col.Filterable {
		return
	}
	if value == "" {
		delete(g.filters, key)
	} else {
		g.filters[key] = value
	}
	g.page.CurrentPage = 1
	if g.cb.OnFilter != nil {
		g.cb.OnFilter(g.filters.clone())
	}
}

// SelectRow toggles the selection of a visible row.
func (g *Grid) SelectRow(id string) {
	if !g.opts.Selectable {
		return
	}
	if _, visible := g.visibleIDs()[id]; !visible {
		return
	}
	if _, ok := g.selected[id]; ok {
		delete(g.selected, id)
		return
	}
	g.selected[id] = struct{}{}
}

// SelectAll selects every visible row, or clears the selection when every
// visible row is already selected.
func (g *Grid) SelectAll() {
	if !g.opts.Selectable || len(g.rows) == 0 {
		return
	}
	if g.AllSelected() {
		clear(g.selected)
		return
	}
	for _, r := range g.rows {
		g.selected[r.ID] = struct{}{}
	}
}

// ClearSelection empties the selection.
func (g *Grid) ClearSelection() {
	clear(g.selected)
}

// ChangePage moves to page, clamped to the valid range. Nothing is reported
// when the clamped page is the current one.
func (g *Grid) ChangePage(page int) {
	if !g.opts.Paginated {
		return
	}
	page = ClampPage(page, g.page.PageCount())
	if page == g.page.CurrentPage {
		return
	}
	g.page.CurrentPage = page
	if g.cb.OnPageChange != nil {
		g.cb.OnPageChange(page, g.page.RowsPerPage)
	}
}

// ChangePageSize sets the rows per page and returns to the first page.
func (g *Grid) ChangePageSize(size int) {
	if !g.opts.Paginated || size <= 0 {
		return
	}
	g.page.RowsPerPage = size
	g.page.CurrentPage = 1
	if g.cb.OnPageChange != nil {
		g.cb.OnPageChange(1, size)
	}
}

// CyclePageSize switches to the next offered page size.
func (g *Grid) CyclePageSize() {
	sizes := g.opts.PageSizes
	next := sizes[0]
	for i, s := range sizes {
		if s == g.page.RowsPerPage && i+1 < len(sizes) {
			next = sizes[i+1]
			break
		}
	}
	g.ChangePageSize(next)
}

// NextPage, PrevPage, FirstPage and LastPage request a page change. Moves
// past either end are ignored.
func (g *Grid) NextPage()  { g.ChangePage(g.page.CurrentPage + 1) }
func (g *Grid) PrevPage()  { g.ChangePage(g.page.CurrentPage - 1) }
func (g *Grid) FirstPage() { g.ChangePage(1) }
func (g *Grid) LastPage()  { g.ChangePage(g.page.PageCount()) }

// ExportCSV exports the rendered rows. A host exporter takes precedence;
// otherwise the rows are encoded and handed to the Downloader. Failures are
// shown in an error alert and returned.
func (g *Grid) ExportCSV(now time.Time) (string, error) {
	if !g.opts.Exportable {
		return "", nil
	}

	if g.cb.OnExport != nil {
		if err := g.cb.OnExport(g.columns, g.rows); err != nil {
			return "", g.exportFailed(&ExportError{Err: err})
		}
		return "", nil
	}

	name := ExportFilename(g.opts.Title, now)
	data := EncodeCSV(g.columns, g.rows)
	path, err := g.downloader.Save(name, CSVMimeType, []byte(data))
	if err != nil {
		return "", g.exportFailed(&ExportError{Filename: name, Err: err})
	}
	g.dialogs.Open(confirm.Alert("Export complete",
		fmt.Sprintf("Saved %d rows to %s", len(g.rows), path), confirm.SeveritySuccess))
	return path, nil
}

func (g *Grid) exportFailed(err *ExportError) error {
	g.logger.Error("csv export", "err", err)
	g.dialogs.Open(confirm.Alert("Export failed", err.Error(), confirm.SeverityError))
	return err
}

// BulkDelete asks to delete every selected row. Once confirmed, OnDelete is
// called exactly once per selected id; a failing id does not stop the
// others. Failures are reported through OnError and the selection is cleared
// either way.
func (g *Grid) BulkDelete() {
	if !g.opts.Selectable || len(g.selected) == 0 || g.cb.OnDelete == nil {
		return
	}
	ids := g.Selected()

	var (
		mu     sync.Mutex
		failed []error
		done   []string
	)
	action := confirm.Async(func() error {
		eg := new(errgroup.Group)
		eg.SetLimit(g.opts.BulkConcurrency)
		for _, id := range ids {
			eg.Go(func() error {
				err := g.cb.OnDelete(id)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failed = append(failed, &RowError{ID: id, Err: err})
				} else {
					done = append(done, id)
				}
				return nil
			})
		}
		return eg.Wait()
	})

	noun := "rows"
	if len(ids) == 1 {
		noun = "row"
	}
	g.dialogs.Open(confirm.Request{
		Kind:        confirm.KindConfirm,
		Title:       "Delete selected",
		Message:     fmt.Sprintf("Delete %d selected %s? This cannot be undone.", len(ids), noun),
		ConfirmText: "Delete",
		Severity:    confirm.SeverityError,
		Destructive: true,
		Action:      action,
		OnResolved: func() {
			g.ClearSelection()
			for _, err := range failed {
				g.reportRowError(err)
			}
			if len(done) > 0 {
				g.changed(Change{Kind: ChangeDeleted, IDs: done})
			}
		},
	})
}

// DeleteRow asks to delete one row, naming it by its label. A failed delete
// keeps the dialog open with the error.
func (g *Grid) DeleteRow(row Row) {
	if g.cb.OnDelete == nil {
		return
	}
	id := row.ID
	g.dialogs.Open(confirm.Request{
		Kind:        confirm.KindConfirm,
		Title:       "Delete",
		Message:     fmt.Sprintf("Delete %q? This cannot be undone.", row.Label()),
		ConfirmText: "Delete",
		Severity:    confirm.SeverityError,
		Destructive: true,
		Action: confirm.Async(func() error {
			if err := g.cb.OnDelete(id); err != nil {
				return &RowError{ID: id, Err: err}
			}
			return nil
		}),
		OnResolved: func() {
			delete(g.selected, id)
			g.changed(Change{Kind: ChangeDeleted, IDs: []string{id}})
		},
	})
}

// ChangeStatus asks to move row to status. label is the human-readable
// status name shown in the dialog.
func (g *Grid) ChangeStatus(row Row, status, label string) {
	if g.cb.OnStatus == nil {
		return
	}
	if label == "" {
		label = status
	}
	id := row.ID
	g.dialogs.Open(confirm.Request{
		Kind:        confirm.KindConfirm,
		Title:       "Change status",
		Message:     fmt.Sprintf("Change %q to %s?", row.Label(), label),
		ConfirmText: "Change",
		Action: confirm.Async(func() error {
			if err := g.cb.OnStatus(id, status); err != nil {
				return &RowError{ID: id, Err: err}
			}
			return nil
		}),
		OnResolved: func() {
			g.changed(Change{Kind: ChangeStatus, IDs: []string{id}, Status: status})
		},
	})
}

// EditRow asks the host to open its editor for row.
func (g *Grid) EditRow(row Row) {
	if g.cb.OnEdit != nil {
		g.cb.OnEdit(row)
	}
}

// ViewRow asks the host to show the detail of row.
func (g *Grid) ViewRow(row Row) {
	if g.cb.OnView != nil {
		g.cb.OnView(row)
	}
}

// Click handles a click on row. Clicks on action controls never reach
// OnRowClick.
func (g *Grid) Click(row Row, target Target) {
	if target != TargetRow {
		return
	}
	if g.cb.OnRowClick != nil {
		g.cb.OnRowClick(row)
	}
}

func (g *Grid) changed(c Change) {
	if g.cb.OnChanged != nil {
		g.cb.OnChanged(c)
	}
}

func (g *Grid) reportRowError(err error) {
	var id string
	if re, ok := err.(*RowError); ok {
		id = re.ID
	}
	g.logger.Error("delete failed", "id", id, "err", err)
	if g.cb.OnError != nil {
		g.cb.OnError(err)
	}
}

// Query returns the full browsing state.
func (g *Grid) Query() Query {
	return Query{
		Search:  g.search,
		Sort:    g.sort,
		Filters: g.filters.clone(),
		Page:    g.page.CurrentPage,
		Size:    g.page.RowsPerPage,
	}
}

// The accessors below expose grid state to renderers. Rows is the page last
// passed to SetData.
func (g *Grid) Columns() []ColumnSpec  { return g.columns }
func (g *Grid) Rows() []Row            { return g.rows }
func (g *Grid) Options() Options       { return g.opts }
func (g *Grid) Pagination() Pagination { return g.page }
func (g *Grid) SortState() SortState   { return g.sort }
func (g *Grid) SearchTerm() string     { return g.search }

// PageWindow returns the page buttons to render.
func (g *Grid) PageWindow() []int {
	if !g.opts.Paginated {
		return nil
	}
	return g.page.Window(g.opts.MaxButtons)
}

// Filters returns a copy of the filter state.
func (g *Grid) Filters() FilterState { return g.filters.clone() }

// Column looks up a column by key.
func (g *Grid) Column(key string) (ColumnSpec, bool) {
	for _, c := range g.columns {
		if c.Key == key {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// Cells renders row in column order.
func (g *Grid) Cells(row Row) []Cell {
	cells := make([]Cell, len(g.columns))
	for i, c := range g.columns {
		cells[i] = c.Cell(row)
	}
	return cells
}

// IsSelected reports whether id is selected.
func (g *Grid) IsSelected(id string) bool {
	_, ok := g.selected[id]
	return ok
}

// Selected returns the selected ids in row order.
func (g *Grid) Selected() []string {
	ids := make([]string, 0, len(g.selected))
	for _, r := range g.rows {
		if _, ok := g.selected[r.ID]; ok {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// AllSelected reports whether every visible row is selected.
func (g *Grid) AllSelected() bool {
	if len(g.rows) == 0 {
		return false
	}
	for _, r := range g.rows {
		if _, ok := g.selected[r.ID]; !ok {
			return false
		}
	}
	return true
}

func (g *Grid) visibleIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(g.rows))
	for _, r := range g.rows {
		ids[r.ID] = struct{}{}
	}
	return ids
}
