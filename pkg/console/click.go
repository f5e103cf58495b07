package console

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/jobdesk/internal/grid"
	"github.com/marcus/jobdesk/internal/models"
	"github.com/marcus/jobdesk/pkg/console/mouse"
)

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if ctl := m.dialogs(); m.dialog.sync(ctl, m) {
		return dialogAction(ctl, m.dialog.modal.HandleMouse(msg, m.mouse))
	}
	if m.form != nil {
		return nil
	}
	if m.picker != nil {
		m.pickerAction(m.picker.modal.HandleMouse(msg, m.mouse))
		return nil
	}

	action := m.mouse.HandleMouse(msg)
	if m.detail != nil {
		switch action.Type {
		case mouse.ActionScrollUp:
			m.detail.scroll(-3, m.detailHeight())
		case mouse.ActionScrollDown:
			m.detail.scroll(3, m.detailHeight())
		}
		return nil
	}

	s := m.screen()
	switch action.Type {
	case mouse.ActionScrollUp:
		s.moveCursor(-1)
		return nil
	case mouse.ActionScrollDown:
		s.moveCursor(1)
		return nil
	case mouse.ActionScrollLeft:
		s.grid.PrevPage()
		return nil
	case mouse.ActionScrollRight:
		s.grid.NextPage()
		return nil
	case mouse.ActionClick:
	default:
		return nil
	}
	if action.Region == nil {
		return nil
	}
	m.flash = ""
	return m.click(s, action.Region.ID, action.IsDoubleClick)
}

// click dispatches a click on one of the main view's regions.
func (m *Model) click(s *Screen, id string, double bool) tea.Cmd {
	g := s.grid
	switch {
	case strings.HasPrefix(id, regionTab):
		r := models.Resource(strings.TrimPrefix(id, regionTab))
		for i, res := range m.resources {
			if res == r {
				return m.switchTab(i)
			}
		}
	case strings.HasPrefix(id, regionSort):
		key := strings.TrimPrefix(id, regionSort)
		for i, c := range g.Columns() {
			if c.Key == key {
				s.col = i
			}
		}
		g.Sort(key)
	case id == regionSelectAll:
		g.SelectAll()
	case id == regionExport:
		_, _ = g.ExportCSV(m.now())
	case id == regionBulk:
		g.BulkDelete()
	case id == regionPageSize:
		g.CyclePageSize()
	case strings.HasPrefix(id, regionPage):
		switch page := strings.TrimPrefix(id, regionPage); page {
		case "prev":
			g.PrevPage()
		case "next":
			g.NextPage()
		default:
			if n, err := strconv.Atoi(page); err == nil {
				g.ChangePage(n)
			}
		}
	case strings.HasPrefix(id, regionCheck):
		g.SelectRow(strings.TrimPrefix(id, regionCheck))
	case strings.HasPrefix(id, regionAction):
		name, rowID, ok := strings.Cut(strings.TrimPrefix(id, regionAction), ":")
		if !ok {
			return nil
		}
		i := s.rowIndex(rowID)
		if i < 0 {
			return nil
		}
		s.cursor = i
		row := g.Rows()[i]
		g.Click(row, grid.TargetAction)
		m.rowAction(s, name, row)
	case strings.HasPrefix(id, regionRow):
		i := s.rowIndex(strings.TrimPrefix(id, regionRow))
		if i < 0 {
			return nil
		}
		s.cursor = i
		if double {
			g.Click(g.Rows()[i], grid.TargetRow)
		}
	}
	return nil
}

func (m *Model) rowAction(s *Screen, name string, row grid.Row) {
	switch name {
	case "view":
		s.grid.ViewRow(row)
	case "edit":
		s.grid.EditRow(row)
	case "status":
		m.openPicker(s, row)
	case "delete":
		s.grid.DeleteRow(row)
	}
}
