package grid

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/marcus/jobdesk/internal/confirm"
)

var testColumns = []ColumnSpec{
	{Key: "name", Label: "Name", Sortable: true, Filterable: true},
	{Key: "email", Label: "Email", Sortable: true},
	{Key: "phone", Label: "Phone"},
}

func testRows(n int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = Row{ID: fmt.Sprint(i + 1), Fields: map[string]any{"name": fmt.Sprintf("user %d", i+1)}}
	}
	return rows
}

// settle drives a controller the way the console does: confirm, wait for a
// deferred action, and hand its outcome back.
func settle(c *confirm.Controller) {
	if p := c.Confirm(); p != nil {
		c.Settle(p.Wait())
	}
}

func newTestGrid(cb Callbacks, dialogs confirm.Opener) *Grid {
	g := New(Config{
		Columns: testColumns,
		Options: Options{
			Title:      "Users",
			Selectable: true,
			Searchable: true,
			Exportable: true,
			Paginated:  true,
		},
		Callbacks: cb,
		Dialogs:   dialogs,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return g
}

func newController() *confirm.Controller {
	return confirm.NewLocal(confirm.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestSearch_ResetsPage(t *testing.T) {
	var got []any
	g := newTestGrid(Callbacks{OnSearch: func(term string, page, size int) { got = []any{term, page, size} }}, newController())
	g.SetData(testRows(10), 120)
	g.ChangePage(7)

	g.Search("kim")
	if !reflect.DeepEqual(got, []any{"kim", 1, 10}) {
		t.Errorf("OnSearch args = %v", got)
	}
	if g.Pagination().CurrentPage != 1 {
		t.Errorf("page = %d, want 1", g.Pagination().CurrentPage)
	}
	if g.Query().Search != "kim" {
		t.Errorf("Query().Search = %q", g.Query().Search)
	}
}

func TestSearch_DisabledIsNoop(t *testing.T) {
	called := false
	g := New(Config{Columns: testColumns, Callbacks: Callbacks{OnSearch: func(string, int, int) { called = true }}, Dialogs: newController()})
	g.Search("x")
	if called || g.SearchTerm() != "" {
		t.Error("search should be a no-op when not searchable")
	}
}

func TestSort_Toggles(t *testing.T) {
	var calls []SortState
	g := newTestGrid(Callbacks{OnSort: func(s SortState) { calls = append(calls, s) }}, newController())

	g.Sort("name")
	g.Sort("name")
	g.Sort("name")
	g.Sort("email")

	want := []SortState{
		{Key: "name", Direction: Asc},
		{Key: "name", Direction: Desc},
		{Key: "name", Direction: Asc},
		{Key: "email", Direction: Asc},
	}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("sort calls = %v, want %v", calls, want)
	}
}

func TestSort_IgnoresNonSortable(t *testing.T) {
	calls := 0
	g := newTestGrid(Callbacks{OnSort: func(SortState) { calls++ }}, newController())
	g.Sort("phone")
	g.Sort("nope")
	if calls != 0 {
		t.Errorf("OnSort called %d times", calls)
	}
	if g.SortState().Key != "" {
		t.Errorf("sort key = %q, want empty", g.SortState().Key)
	}
}

func TestFilter(t *testing.T) {
	var last FilterState
	g := newTestGrid(Callbacks{OnFilter: func(f FilterState) { last = f }}, newController())
	g.SetData(testRows(10), 50)
	g.ChangePage(3)

	g.Filter("name", "kim")
	if last["name"] != "kim" || g.Pagination().CurrentPage != 1 {
		t.Errorf("filter = %v page = %d", last, g.Pagination().CurrentPage)
	}

	last["name"] = "mutated"
	if g.Filters()["name"] != "kim" {
		t.Error("host received the grid's own map")
	}

	g.Filter("email", "x")
	if _, ok := g.Filters()["email"]; ok {
		t.Error("non-filterable column accepted a filter")
	}

	g.Filter("name", "")
	if len(last) != 0 {
		t.Errorf("empty value should clear the filter, got %v", last)
	}
}

func TestSelectAll_Toggles(t *testing.T) {
	g := newTestGrid(Callbacks{}, newController())
	g.SetData(testRows(7), -1)

	g.SelectAll()
	if n := len(g.Selected()); n != 7 {
		t.Errorf("after first SelectAll: %d selected, want 7", n)
	}
	g.SelectAll()
	if n := len(g.Selected()); n != 0 {
		t.Errorf("after second SelectAll: %d selected, want 0", n)
	}

	g.SelectRow("2")
	g.SelectAll()
	if n := len(g.Selected()); n != 7 {
		t.Errorf("partial selection + SelectAll: %d selected, want 7", n)
	}
}

func TestSelectRow(t *testing.T) {
	g := newTestGrid(Callbacks{}, newController())
	g.SetData(testRows(3), -1)

	g.SelectRow("2")
	g.SelectRow("99")
	if !reflect.DeepEqual(g.Selected(), []string{"2"}) {
		t.Errorf("Selected() = %v", g.Selected())
	}
	g.SelectRow("2")
	if len(g.Selected()) != 0 {
		t.Errorf("toggle off failed: %v", g.Selected())
	}
}

func TestSetData_PrunesSelection(t *testing.T) {
	g := newTestGrid(Callbacks{}, newController())
	g.SetData(testRows(5), -1)
	g.SelectAll()

	g.SetData(testRows(2), -1)
	if !reflect.DeepEqual(g.Selected(), []string{"1", "2"}) {
		t.Errorf("Selected() = %v, want [1 2]", g.Selected())
	}
	if g.IsSelected("4") {
		t.Error("row 4 is no longer visible but still selected")
	}
}

func TestChangePage(t *testing.T) {
	var pages [][2]int
	g := newTestGrid(Callbacks{OnPageChange: func(p, s int) { pages = append(pages, [2]int{p, s}) }}, newController())
	g.SetData(testRows(10), 47)

	g.ChangePage(3)
	g.ChangePage(99)
	g.ChangePage(5)
	g.ChangePage(-2)
	g.ChangePageSize(20)
	g.ChangePageSize(0)
	g.LastPage()

	want := [][2]int{{3, 10}, {5, 10}, {1, 10}, {1, 20}, {3, 20}}
	if !reflect.DeepEqual(pages, want) {
		t.Errorf("page changes = %v, want %v", pages, want)
	}
}

func TestPageWindow(t *testing.T) {
	g := newTestGrid(Callbacks{}, newController())
	g.SetData(testRows(10), 120)
	g.ChangePage(7)
	if got := g.PageWindow(); !reflect.DeepEqual(got, []int{5, 6, 7, 8, 9}) {
		t.Errorf("PageWindow() = %v", got)
	}
}

func TestCyclePageSize(t *testing.T) {
	g := newTestGrid(Callbacks{}, newController())
	for _, want := range []int{20, 50, 100, 10} {
		g.CyclePageSize()
		if got := g.Pagination().RowsPerPage; got != want {
			t.Errorf("RowsPerPage = %d, want %d", got, want)
		}
	}
}

func TestBulkDelete(t *testing.T) {
	dialogs := newController()
	var (
		mu      sync.Mutex
		deleted = map[string]int{}
		errs    []error
		changes []Change
	)
	g := newTestGrid(Callbacks{
		OnDelete: func(id string) error {
			mu.Lock()
			deleted[id]++
			mu.Unlock()
			if id == "2" {
				return errors.New("in use")
			}
			return nil
		},
		OnError:   func(err error) { errs = append(errs, err) },
		OnChanged: func(c Change) { changes = append(changes, c) },
	}, dialogs)
	g.SetData(testRows(5), -1)
	g.SelectRow("1")
	g.SelectRow("2")
	g.SelectRow("3")

	g.BulkDelete()

	s, ok := dialogs.Session()
	if !ok {
		t.Fatal("BulkDelete did not open a dialog")
	}
	if !strings.Contains(s.Request.Message, "3") {
		t.Errorf("message %q does not state the count", s.Request.Message)
	}
	if !s.Request.Destructive {
		t.Error("bulk delete dialog should be destructive")
	}
	if len(deleted) != 0 {
		t.Fatal("deletes ran before confirmation")
	}

	settle(dialogs)

	for _, id := range []string{"1", "2", "3"} {
		if deleted[id] != 1 {
			t.Errorf("id %s deleted %d times, want 1", id, deleted[id])
		}
	}
	if len(deleted) != 3 {
		t.Errorf("deleted %v, want exactly the selection", deleted)
	}
	if len(g.Selected()) != 0 {
		t.Errorf("selection not cleared: %v", g.Selected())
	}
	if len(errs) != 1 {
		t.Fatalf("errors reported = %v, want one", errs)
	}
	var re *RowError
	if !errors.As(errs[0], &re) || re.ID != "2" {
		t.Errorf("reported error = %v, want RowError for id 2", errs[0])
	}
	if len(changes) != 1 || len(changes[0].IDs) != 2 {
		t.Errorf("changes = %+v, want one change with the two deleted ids", changes)
	}
}

func TestBulkDelete_EmptySelectionIsNoop(t *testing.T) {
	dialogs := newController()
	g := newTestGrid(Callbacks{OnDelete: func(string) error { return nil }}, dialogs)
	g.SetData(testRows(3), -1)
	g.BulkDelete()
	if _, ok := dialogs.Session(); ok {
		t.Error("dialog opened for an empty selection")
	}
}

func TestBulkDelete_Cancel(t *testing.T) {
	dialogs := newController()
	calls := 0
	g := newTestGrid(Callbacks{OnDelete: func(string) error { calls++; return nil }}, dialogs)
	g.SetData(testRows(3), -1)
	g.SelectAll()
	g.BulkDelete()
	dialogs.Cancel()

	if calls != 0 {
		t.Errorf("OnDelete called %d times after cancel", calls)
	}
	if len(g.Selected()) != 3 {
		t.Error("cancel should keep the selection")
	}
}

func TestDeleteRow(t *testing.T) {
	dialogs := newController()
	fail := true
	var changes []Change
	g := newTestGrid(Callbacks{
		OnDelete: func(id string) error {
			if fail {
				return errors.New("conflict")
			}
			return nil
		},
		OnChanged: func(c Change) { changes = append(changes, c) },
	}, dialogs)
	rows := []Row{{ID: "c-9", Fields: map[string]any{"title": "Backend engineer"}}}
	g.SetData(rows, -1)

	g.DeleteRow(rows[0])
	s, _ := dialogs.Session()
	if !strings.Contains(s.Request.Message, "Backend engineer") {
		t.Errorf("message %q does not name the row", s.Request.Message)
	}

	settle(dialogs)
	s, ok := dialogs.Session()
	if !ok || s.Err == nil {
		t.Fatal("failed delete should keep the dialog open with its error")
	}
	if len(changes) != 0 {
		t.Error("OnChanged ran for a failed delete")
	}

	fail = false
	settle(dialogs)
	if _, ok := dialogs.Session(); ok {
		t.Error("dialog should close after a successful retry")
	}
	if len(changes) != 1 || changes[0].IDs[0] != "c-9" {
		t.Errorf("changes = %+v", changes)
	}
}

func TestChangeStatus(t *testing.T) {
	dialogs := newController()
	var got []string
	var changes []Change
	g := newTestGrid(Callbacks{
		OnStatus:  func(id, status string) error { got = []string{id, status}; return nil },
		OnChanged: func(c Change) { changes = append(changes, c) },
	}, dialogs)
	row := Row{ID: "4", Fields: map[string]any{"name": "Acme"}}

	g.ChangeStatus(row, "approved", "Approved")
	s, _ := dialogs.Session()
	if s.Request.Destructive {
		t.Error("status change should not be destructive")
	}
	if !strings.Contains(s.Request.Message, "Approved") {
		t.Errorf("message = %q", s.Request.Message)
	}

	settle(dialogs)
	if !reflect.DeepEqual(got, []string{"4", "approved"}) {
		t.Errorf("OnStatus args = %v", got)
	}
	if len(changes) != 1 || changes[0].Kind != ChangeStatus || changes[0].Status != "approved" {
		t.Errorf("changes = %+v", changes)
	}
}

func TestClick_ActionDoesNotPropagate(t *testing.T) {
	clicks, views := 0, 0
	g := newTestGrid(Callbacks{
		OnRowClick: func(Row) { clicks++ },
		OnView:     func(Row) { views++ },
	}, newController())
	row := testRows(1)[0]

	g.Click(row, TargetAction)
	g.ViewRow(row)
	if clicks != 0 || views != 1 {
		t.Errorf("clicks=%d views=%d, want 0/1", clicks, views)
	}
	g.Click(row, TargetRow)
	if clicks != 1 {
		t.Errorf("clicks = %d, want 1", clicks)
	}
}

type memDownloader struct {
	name string
	mime string
	data string
	err  error
}

func (m *memDownloader) Save(name, mime string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.name, m.mime, m.data = name, mime, string(data)
	return "/tmp/" + name, nil
}

func TestExportCSV_Local(t *testing.T) {
	dl := &memDownloader{}
	dialogs := newController()
	g := New(Config{
		Columns:    testColumns[:1],
		Options:    Options{Title: "All Users", Exportable: true, Paginated: true},
		Dialogs:    dialogs,
		Downloader: dl,
	})
	g.SetData(testRows(2), 40)

	path, err := g.ExportCSV(time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	if dl.name != "all-users-2026-10-17.csv" || path != "/tmp/all-users-2026-10-17.csv" {
		t.Errorf("name = %q path = %q", dl.name, path)
	}
	if dl.mime != CSVMimeType {
		t.Errorf("mime = %q", dl.mime)
	}
	if dl.data != "Name\nuser 1\nuser 2" {
		t.Errorf("data = %q", dl.data)
	}
}

func TestExportCSV_FailureAlerts(t *testing.T) {
	dialogs := newController()
	g := New(Config{
		Columns:    testColumns,
		Options:    Options{Exportable: true},
		Dialogs:    dialogs,
		Downloader: &memDownloader{err: errors.New("read-only")},
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	_, err := g.ExportCSV(time.Now())
	var exportErr *ExportError
	if !errors.As(err, &exportErr) {
		t.Fatalf("err = %v, want ExportError", err)
	}
	s, ok := dialogs.Session()
	if !ok || s.Request.Severity != confirm.SeverityError {
		t.Errorf("expected an error alert, got %+v", s.Request)
	}
}

func TestExportCSV_HostExporter(t *testing.T) {
	var gotRows int
	dl := &memDownloader{}
	g := New(Config{
		Columns:    testColumns,
		Options:    Options{Exportable: true},
		Callbacks:  Callbacks{OnExport: func(cols []ColumnSpec, rows []Row) error { gotRows = len(rows); return nil }},
		Dialogs:    newController(),
		Downloader: dl,
	})
	g.SetData(testRows(4), -1)

	if _, err := g.ExportCSV(time.Now()); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	if gotRows != 4 || dl.name != "" {
		t.Errorf("host exporter rows = %d, downloader used = %v", gotRows, dl.name != "")
	}
}

func TestQuery(t *testing.T) {
	g := newTestGrid(Callbacks{}, newController())
	g.SetData(testRows(10), 100)
	g.Search("a")
	g.Sort("email")
	g.Filter("name", "b")
	g.ChangePage(4)

	want := Query{
		Search:  "a",
		Sort:    SortState{Key: "email", Direction: Asc},
		Filters: FilterState{"name": "b"},
		Page:    4,
		Size:    10,
	}
	if got := g.Query(); !reflect.DeepEqual(got, want) {
		t.Errorf("Query() = %+v, want %+v", got, want)
	}
}
