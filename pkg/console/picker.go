package console

import (
	"slices"

	"github.com/marcus/jobdesk/internal/grid"
	"github.com/marcus/jobdesk/internal/models"
	"github.com/marcus/jobdesk/internal/workflow"
	"github.com/marcus/jobdesk/pkg/console/modal"
)

const pickerListID = "status"

// statusPicker offers the statuses a row can move to. Choosing one hands off
// to the grid's confirmed status change.
type statusPicker struct {
	screen  *Screen
	row     grid.Row
	targets []models.Status
	idx     int
	modal   *modal.Modal
}

func (m *Model) openPicker(s *Screen, row grid.Row) {
	if !s.resource.HasStatus() {
		m.flash = s.resource.Title() + " have no status"
		return
	}
	from := rowStatus(row)
	targets := workflow.GetTransitionsFrom(s.resource, from)
	if len(targets) == 0 {
		m.flash = "no transitions from " + from.Label()
		return
	}

	p := &statusPicker{screen: s, row: row, targets: targets}
	items := make([]modal.ListItem, len(targets))
	for i, to := range targets {
		items[i] = modal.ListItem{ID: string(to), Label: to.Label(), Hint: workflow.TransitionName(from, to)}
	}
	p.modal = modal.New("Change status of "+row.Label(),
		modal.WithWidth(48),
		modal.WithHints(true),
		modal.WithPrimaryAction(pickerListID)).
		AddSection(modal.StyledText("Currently "+from.Label(), modal.MutedText)).
		AddSection(modal.Spacer()).
		AddSection(modal.List(pickerListID, items, &p.idx)).
		AddSection(modal.Spacer()).
		AddSection(modal.Buttons(modal.Btn(" Cancel ", modal.ActionCancel)))
	m.picker = p
}

func rowStatus(row grid.Row) models.Status {
	v, _ := row.Value("status")
	return models.Status(grid.FormatValue(v))
}

// pickerAction applies an action returned by the picker modal.
func (m *Model) pickerAction(action string) {
	p := m.picker
	switch action {
	case "":
		return
	case modal.ActionCancel:
		m.picker = nil
		return
	}
	to := models.Status(action)
	if !slices.Contains(p.targets, to) {
		return
	}
	m.picker = nil
	p.screen.grid.ChangeStatus(p.row, string(to), to.Label())
}
