package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/jobdesk/internal/grid"
	"github.com/marcus/jobdesk/internal/host"
	"github.com/marcus/jobdesk/internal/models"
	"github.com/marcus/jobdesk/internal/output"
	"github.com/marcus/jobdesk/pkg/console/modal"
)

// Hit region ids and prefixes of the main view.
const (
	regionTab       = "tab:"
	regionSort      = "sort:"
	regionRow       = "row:"
	regionCheck     = "check:"
	regionAction    = "act:"
	regionPage      = "page:"
	regionSelectAll = "selectall"
	regionPageSize  = "pagesize"
	regionExport    = "export"
	regionBulk      = "bulkdelete"
)

const (
	checkWidth = 3
	// lines around the table: header, tabs, toolbar, blank, column header,
	// blank, pager, status line
	chromeLines = 8
)

// rowAction is an inline control at the end of each row.
type rowAction struct {
	name  string
	label string
}

func rowActions(r models.Resource) []rowAction {
	actions := []rowAction{{"view", "view"}}
	if len(models.EditableFields(r)) > 0 {
		actions = append(actions, rowAction{"edit", "edit"})
	}
	if r.HasStatus() {
		actions = append(actions, rowAction{"status", "status"})
	}
	return append(actions, rowAction{"delete", "del"})
}

func actionsWidth(actions []rowAction) int {
	w := 0
	for i, a := range actions {
		if i > 0 {
			w++
		}
		w += len(a.label)
	}
	return w
}

// lineWriter assembles one screen line left to right, registering hit
// regions at the current column.
type lineWriter struct {
	m *Model
	y int
	b strings.Builder
	x int
}

func (w *lineWriter) text(s string) {
	w.b.WriteString(s)
	w.x += ansi.StringWidth(s)
}

func (w *lineWriter) region(id, s string) {
	width := ansi.StringWidth(s)
	w.m.mouse.HitMap.AddRect(id, w.x, w.y, width, 1, nil)
	w.text(s)
}

func (w *lineWriter) pad(width int) {
	if width > 0 {
		w.text(strings.Repeat(" ", width))
	}
}

func (w *lineWriter) String() string { return w.b.String() }

// View renders the console and records the frame's hit regions.
func (m *Model) View() string {
	m.mouse.Clear()
	if m.Width == 0 {
		return "Loading…"
	}

	var view string
	if m.detail != nil {
		view = m.renderDetail()
	} else {
		view = m.renderMain()
	}

	if m.form != nil {
		box := formBoxStyle.Width(m.formWidth() + 4).Render(
			titleStyle.Render("Edit "+m.form.label) + "\n\n" + m.form.form.View())
		x := max(0, (m.Width-lipgloss.Width(box))/2)
		y := max(0, (m.Height-lipgloss.Height(box))/2)
		view = modal.Overlay(view, box, x, y)
	}
	if m.picker != nil {
		view = m.overlayModal(view, m.picker.modal)
	}
	if m.dialog.sync(m.dialogs(), m) {
		view = m.overlayModal(view, m.dialog.modal)
	}
	return view
}

func (m *Model) overlayModal(view string, md *modal.Modal) string {
	box := md.Render(m.Width, m.Height, m.mouse)
	x, y := md.Origin()
	return modal.Overlay(view, box, x, y)
}

func (m *Model) renderMain() string {
	s := m.screen()
	var lines []string

	lines = append(lines, m.renderHeader(s))
	lines = append(lines, m.renderTabs(len(lines)))
	lines = append(lines, m.renderToolbar(s, len(lines)))
	lines = append(lines, "")
	lines = append(lines, m.renderTable(s, len(lines))...)
	lines = append(lines, "")
	lines = append(lines, m.renderPager(s, len(lines)))
	lines = append(lines, m.renderStatusLine(s))
	lines = append(lines, m.help.View(m.keys))

	return strings.Join(lines, "\n")
}

func (m *Model) renderHeader(s *Screen) string {
	line := titleStyle.Render("jobdesk")
	if m.stats.Counts != nil {
		line += "  " + mutedStyle.Render(fmt.Sprintf("%d companies pending approval", m.stats.PendingCompanies))
	}
	if m.statsErr != nil {
		line += "  " + errorStyle.Render("stats unavailable")
	}
	if s.loading {
		line += "  " + m.spinner.View()
	}
	return line
}

func (m *Model) renderTabs(y int) string {
	w := &lineWriter{m: m, y: y}
	for i, r := range m.resources {
		label := r.Title()
		if n, ok := m.stats.Counts[r]; ok {
			label += " " + strconv.Itoa(n)
		}
		style := tabStyle
		if i == m.active {
			style = activeTabStyle
		}
		w.region(regionTab+string(r), style.Render(label))
	}
	return w.String()
}

func (m *Model) renderToolbar(s *Screen, y int) string {
	if m.mode != inputNone {
		return m.input.View()
	}
	g := s.grid
	w := &lineWriter{m: m, y: y}

	var parts []string
	if term := g.SearchTerm(); term != "" {
		parts = append(parts, "search: "+term)
	}
	for _, col := range g.Columns() {
		if v := g.Filters()[col.Key]; v != "" {
			parts = append(parts, col.Label+"="+v)
		}
	}
	if st := g.SortState(); st.Key != "" {
		if col, ok := g.Column(st.Key); ok {
			parts = append(parts, "sort: "+col.Label+" "+sortArrow(st.Direction))
		}
	}
	if n := len(g.Selected()); n > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	}
	if len(parts) == 0 {
		parts = append(parts, "/ to search")
	}
	w.text(mutedStyle.Render(strings.Join(parts, " · ")))
	w.text("  ")
	w.region(regionExport, actionStyle.Render("[export]"))
	if n := len(g.Selected()); n > 0 {
		w.text(" ")
		w.region(regionBulk, errorStyle.Render(fmt.Sprintf("[delete %d]", n)))
	}
	return w.String()
}

func sortArrow(d grid.Direction) string {
	if d == grid.Desc {
		return "↓"
	}
	return "↑"
}

// tableLayout holds the column widths of the current frame.
type tableLayout struct {
	idWidth int
	widths  []int
	actions []rowAction
}

func (m *Model) layoutTable(s *Screen) tableLayout {
	cols := s.grid.Columns()
	rows := s.grid.Rows()
	sort := s.grid.SortState()

	l := tableLayout{idWidth: 2, actions: rowActions(s.resource)}
	l.widths = make([]int, len(cols))
	for i, c := range cols {
		label := c.Label
		if sort.Key == c.Key {
			label += " " + sortArrow(sort.Direction)
		}
		l.widths[i] = ansi.StringWidth(label)
	}
	for _, row := range rows {
		l.idWidth = max(l.idWidth, ansi.StringWidth(row.ID))
		for i, c := range cols {
			l.widths[i] = max(l.widths[i], ansi.StringWidth(c.Cell(row).Text))
		}
	}

	used := checkWidth + output.ColumnGap + l.idWidth + output.ColumnGap +
		output.ColumnGap + actionsWidth(l.actions)
	output.FitWidths(l.widths, m.Width-used)
	return l
}

func (m *Model) renderTable(s *Screen, y int) []string {
	g := s.grid
	switch {
	case s.err != nil && !s.loaded:
		return []string{errorStyle.Render("error: "+host.UserMessage(s.err)) + mutedStyle.Render("  (r to retry)")}
	case !s.loaded:
		return []string{m.spinner.View() + " Loading " + s.resource.Title() + "…"}
	}

	l := m.layoutTable(s)
	cols := g.Columns()
	sort := g.SortState()
	gap := strings.Repeat(" ", output.ColumnGap)

	// header
	w := &lineWriter{m: m, y: y}
	check := "[ ]"
	if g.AllSelected() {
		check = "[x]"
	}
	w.region(regionSelectAll, headerStyle.Render(check))
	w.text(gap)
	w.text(headerStyle.Render("ID"))
	w.pad(l.idWidth - 2)
	for i, c := range cols {
		w.text(gap)
		label := c.Label
		if sort.Key == c.Key {
			label += " " + sortArrow(sort.Direction)
		}
		label = ansi.Truncate(label, l.widths[i], "…")
		style := headerStyle
		if i == s.col {
			style = focusedHeaderStyle
		}
		if c.Sortable {
			w.region(regionSort+c.Key, style.Render(label))
		} else {
			w.text(style.Render(label))
		}
		w.pad(l.widths[i] - ansi.StringWidth(label))
	}
	lines := []string{w.String()}

	rows := g.Rows()
	if len(rows) == 0 {
		msg := "No records"
		if g.SearchTerm() != "" || len(g.Filters()) > 0 {
			msg = "No records match"
		}
		return append(lines, mutedStyle.Render(msg))
	}

	avail := max(1, m.Height-chromeLines-lipgloss.Height(m.help.View(m.keys)))
	start := 0
	if s.cursor >= avail {
		start = s.cursor - avail + 1
	}
	end := min(len(rows), start+avail)

	for i := start; i < end; i++ {
		lines = append(lines, m.renderRow(s, l, rows[i], i == s.cursor, y+len(lines)))
	}
	return lines
}

func (m *Model) renderRow(s *Screen, l tableLayout, row grid.Row, cursor bool, y int) string {
	g := s.grid
	gap := strings.Repeat(" ", output.ColumnGap)
	selected := g.IsSelected(row.ID)

	// the row region goes first so the controls on it win
	m.mouse.HitMap.AddRect(regionRow+row.ID, 0, y, m.Width, 1, nil)

	w := &lineWriter{m: m, y: y}
	check := "[ ]"
	if selected {
		check = "[x]"
	}
	w.region(regionCheck+row.ID, check)
	w.text(gap)

	id := row.ID
	if selected {
		id = selectedRowStyle.Render(id)
	}
	w.text(id)
	w.pad(l.idWidth - ansi.StringWidth(row.ID))

	for i, cell := range g.Cells(row) {
		w.text(gap)
		text := ansi.Truncate(cell.Text, l.widths[i], "…")
		w.text(cellStyle(cell).Render(text))
		w.pad(l.widths[i] - ansi.StringWidth(text))
	}

	w.text(gap)
	for i, a := range l.actions {
		if i > 0 {
			w.text(" ")
		}
		w.region(regionAction+a.name+":"+row.ID, actionStyle.Render(a.label))
	}

	line := w.String()
	if cursor {
		line = cursorRowStyle.Render(line)
	}
	return line
}

func (m *Model) renderPager(s *Screen, y int) string {
	g := s.grid
	p := g.Pagination()
	w := &lineWriter{m: m, y: y}

	if p.TotalItems == 0 {
		w.text(mutedStyle.Render("0 records"))
	} else {
		w.text(mutedStyle.Render(fmt.Sprintf("%d-%d of %d", p.FirstItem(), p.LastItem(), p.TotalItems)))
	}

	if pages := g.PageWindow(); len(pages) > 1 {
		w.text("  ")
		if p.HasPrev() {
			w.region(regionPage+"prev", pageStyle.Render("‹"))
			w.text(" ")
		}
		for _, n := range pages {
			label := " " + strconv.Itoa(n) + " "
			style := pageStyle
			if n == p.CurrentPage {
				style = currentPageStyle
			}
			w.region(regionPage+strconv.Itoa(n), style.Render(label))
		}
		if p.HasNext() {
			w.text(" ")
			w.region(regionPage+"next", pageStyle.Render("›"))
		}
	}

	w.text("  ")
	w.region(regionPageSize, mutedStyle.Render(fmt.Sprintf("%d / page", p.RowsPerPage)))
	return w.String()
}

func (m *Model) renderStatusLine(s *Screen) string {
	switch {
	case s.err != nil && s.loaded:
		return errorStyle.Render("refresh failed: " + host.UserMessage(s.err))
	case m.flash != "":
		return mutedStyle.Render(m.flash)
	}
	return ""
}

func (m *Model) detailHeight() int {
	return max(1, m.Height-3)
}

func (m *Model) renderDetail() string {
	d := m.detail
	header := titleStyle.Render(d.resource.Title()) + mutedStyle.Render(" › "+d.id)
	footer := mutedStyle.Render("esc back · e edit · y copy · ↑/↓ scroll")

	var body []string
	switch {
	case d.err != nil:
		body = []string{errorStyle.Render("error: " + host.UserMessage(d.err))}
	case d.record == nil:
		body = []string{m.spinner.View() + " Loading…"}
	default:
		all := d.render(max(20, m.Width-4))
		h := m.detailHeight()
		d.scroll(0, h)
		end := min(len(all), d.offset+h)
		body = all[d.offset:end]
	}

	lines := append([]string{header}, body...)
	for len(lines) < m.Height-1 {
		lines = append(lines, "")
	}
	if m.flash != "" {
		footer = mutedStyle.Render(m.flash)
	}
	return strings.Join(append(lines, footer), "\n")
}
