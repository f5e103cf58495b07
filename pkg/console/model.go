// Package console is the interactive admin console: one paginated grid per
// resource with search, sort, filters, bulk selection, CSV export and
// confirmed mutations.
package console

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/marcus/jobdesk/internal/config"
	"github.com/marcus/jobdesk/internal/confirm"
	"github.com/marcus/jobdesk/internal/grid"
	"github.com/marcus/jobdesk/internal/host"
	"github.com/marcus/jobdesk/internal/models"
	"github.com/marcus/jobdesk/pkg/console/mouse"
)

const defaultTimeout = 10 * time.Second

// Options configure a console Model.
type Options struct {
	Source  host.Source
	Config  models.Config
	BaseDir string
	Logger  *slog.Logger

	// Resource is the tab shown first. Empty means the last resource saved in
	// the project config, then the first resource.
	Resource models.Resource

	// Dialogs is the shared dialog controller used with the global modal
	// scope. Nil means confirm.Default().
	Dialogs *confirm.Controller

	Timeout time.Duration
	Now     func() time.Time
}

type inputMode int

const (
	inputNone inputMode = iota
	inputSearch
	inputFilter
)

type statsMsg struct {
	stats models.Stats
	err   error
}

type copiedMsg struct {
	id  string
	err error
}

// Model is the bubbletea model of the console.
type Model struct {
	src     host.Source
	cfg     models.Config
	baseDir string
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time

	resources []models.Resource
	screens   map[models.Resource]*Screen
	active    int

	stats    models.Stats
	statsErr error

	Width, Height int

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	input   textinput.Model
	mode    inputMode
	// column key edited in inputFilter mode
	filterKey string

	mouse  *mouse.Handler
	dialog dialogView
	picker *statusPicker
	detail *detailView
	form   *editForm

	flash string
}

// NewModel builds the console with one screen per resource.
func NewModel(opts Options) *Model {
	cfg := opts.Config.WithDefaults()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	shared := opts.Dialogs
	if shared == nil {
		shared = confirm.Default()
	}

	m := &Model{
		src:       opts.Source,
		cfg:       cfg,
		baseDir:   opts.BaseDir,
		logger:    logger,
		timeout:   timeout,
		now:       now,
		resources: models.AllResources(),
		screens:   make(map[models.Resource]*Screen),
		keys:      keys,
		help:      help.New(),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		input:     textinput.New(),
		mouse:     mouse.NewHandler(),
	}
	m.input.Prompt = "/ "
	m.input.CharLimit = 100

	for _, r := range m.resources {
		dialogs := shared
		if cfg.ModalScope == models.ModalLocal {
			dialogs = confirm.NewLocal(confirm.WithLogger(logger.With("resource", string(r))))
		}
		m.screens[r] = newScreen(screenConfig{
			resource:  r,
			src:       opts.Source,
			dialogs:   dialogs,
			policy:    cfg.UpdatePolicy,
			pageSize:  cfg.PageSize,
			pageSizes: cfg.PageSizes,
			buttons:   cfg.MaxPageButtons,
			exportDir: cfg.ExportDir,
			timeout:   timeout,
			logger:    logger,
		})
	}

	start := opts.Resource
	if start == "" {
		start = models.Resource(cfg.LastResource)
	}
	if i := slices.Index(m.resources, start); i >= 0 {
		m.active = i
	}
	return m
}

func (m *Model) screen() *Screen {
	return m.screens[m.resources[m.active]]
}

// Resource returns the resource of the active tab.
func (m *Model) Resource() models.Resource {
	return m.resources[m.active]
}

func (m *Model) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.timeout)
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.screen().fetch(), m.fetchStats(), m.spinner.Tick)
}

func (m *Model) fetchStats() tea.Cmd {
	src, timeout := m.src, m.context
	return func() tea.Msg {
		ctx, cancel := timeout()
		defer cancel()
		stats, err := src.Stats(ctx)
		return statsMsg{stats: stats, err: err}
	}
}

// Update handles one message, then collects the commands the screens queued
// while handling it.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.update(msg)}
	for _, r := range m.resources {
		cmds = append(cmds, m.screens[r].drain()...)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.help.Width = msg.Width
		if m.form != nil {
			m.form.form = m.form.form.WithWidth(m.formWidth())
		}
		return nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd

	case fetchedMsg:
		if s, ok := m.screens[msg.resource]; ok {
			s.applyFetch(msg)
		}
		return nil

	case settledMsg:
		msg.ctl.Settle(msg.settled)
		return nil

	case statsMsg:
		m.statsErr = msg.err
		if msg.err != nil {
			m.logger.Error("stats failed", "err", msg.err)
		} else {
			m.stats = msg.stats
		}
		return nil

	case mutatedMsg:
		return m.fetchStats()

	case openDetailMsg:
		m.detail = newDetailView(msg.resource, msg.row.ID)
		return loadDetail(m.src, msg.resource, msg.row.ID, m.context)

	case detailLoadedMsg:
		if m.detail != nil && m.detail.apply(msg) && msg.err != nil {
			m.logger.Error("load record", "id", msg.id, "err", msg.err)
		}
		return nil

	case openEditMsg:
		return m.openForm(msg.resource, msg.row)

	case savedMsg:
		return m.applySaved(msg)

	case copiedMsg:
		if msg.err != nil {
			m.logger.Warn("copy to clipboard", "id", msg.id, "err", msg.err)
			m.flash = "copy failed: " + msg.err.Error()
		} else {
			m.flash = "copied " + msg.id
		}
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	// huh runs its own commands while a form is open
	if m.form != nil {
		return m.updateForm(msg)
	}
	return nil
}

func (m *Model) dialogs() *confirm.Controller {
	return m.screen().dialogs
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}
	m.flash = ""

	if ctl := m.dialogs(); m.dialog.sync(ctl, m) {
		action, cmd := m.dialog.modal.HandleKey(msg)
		return tea.Batch(cmd, dialogAction(ctl, action))
	}
	if m.form != nil {
		if msg.String() == "esc" {
			m.form = nil
			return nil
		}
		return m.updateForm(msg)
	}
	if m.picker != nil {
		action, cmd := m.picker.modal.HandleKey(msg)
		m.pickerAction(action)
		return cmd
	}
	if m.detail != nil {
		return m.detailKey(msg)
	}
	if m.mode != inputNone {
		return m.inputKey(msg)
	}
	return m.browseKey(msg)
}

func (m *Model) quit() tea.Cmd {
	if m.baseDir != "" {
		if err := config.SetLastResource(m.baseDir, m.Resource()); err != nil {
			m.logger.Warn("save last resource", "err", err)
		}
	}
	return tea.Quit
}

func (m *Model) switchTab(i int) tea.Cmd {
	n := len(m.resources)
	m.active = ((i % n) + n) % n
	m.mode = inputNone
	m.input.Blur()
	s := m.screen()
	if s.loaded || s.loading {
		return nil
	}
	return s.fetch()
}

func (m *Model) browseKey(msg tea.KeyMsg) tea.Cmd {
	s := m.screen()
	g := s.grid
	row, hasRow := s.currentRow()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab(m.active + 1)
	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab(m.active - 1)
	case key.Matches(msg, m.keys.Up):
		s.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		s.moveCursor(1)
	case key.Matches(msg, m.keys.ColLeft):
		s.moveColumn(-1)
	case key.Matches(msg, m.keys.ColRight):
		s.moveColumn(1)
	case key.Matches(msg, m.keys.NextPage):
		g.NextPage()
	case key.Matches(msg, m.keys.PrevPage):
		g.PrevPage()
	case key.Matches(msg, m.keys.FirstPage):
		g.FirstPage()
	case key.Matches(msg, m.keys.LastPage):
		g.LastPage()
	case key.Matches(msg, m.keys.PageSize):
		g.CyclePageSize()
	case key.Matches(msg, m.keys.Search):
		m.mode = inputSearch
		m.input.Prompt = "/ "
		m.input.Placeholder = "search " + s.resource.Title()
		m.input.SetValue(g.SearchTerm())
		return m.input.Focus()
	case key.Matches(msg, m.keys.Filter):
		col, ok := s.focusedColumn()
		if !ok || !col.Filterable {
			m.flash = "column cannot be filtered"
			return nil
		}
		m.mode = inputFilter
		m.filterKey = col.Key
		m.input.Prompt = col.Label + " = "
		m.input.Placeholder = ""
		m.input.SetValue(g.Filters()[col.Key])
		return m.input.Focus()
	case key.Matches(msg, m.keys.Sort):
		if col, ok := s.focusedColumn(); ok {
			g.Sort(col.Key)
		}
	case key.Matches(msg, m.keys.Select):
		if hasRow {
			g.SelectRow(row.ID)
		}
	case key.Matches(msg, m.keys.SelectAll):
		g.SelectAll()
	case key.Matches(msg, m.keys.Refresh):
		return tea.Batch(s.fetch(), m.fetchStats())
	case key.Matches(msg, m.keys.View):
		if hasRow {
			g.ViewRow(row)
		}
	case key.Matches(msg, m.keys.Edit):
		if hasRow {
			g.EditRow(row)
		}
	case key.Matches(msg, m.keys.Status):
		if hasRow {
			m.openPicker(s, row)
		}
	case key.Matches(msg, m.keys.Delete):
		if hasRow {
			g.DeleteRow(row)
		}
	case key.Matches(msg, m.keys.BulkDelete):
		g.BulkDelete()
	case key.Matches(msg, m.keys.Export):
		// failures are already shown in an alert
		_, _ = g.ExportCSV(m.now())
	case key.Matches(msg, m.keys.Copy):
		if hasRow {
			return m.copyRecord(s.resource, row)
		}
	}
	return nil
}

func (m *Model) inputKey(msg tea.KeyMsg) tea.Cmd {
	g := m.screen().grid
	switch msg.String() {
	case "esc":
		m.mode = inputNone
		m.input.Blur()
		return nil
	case "enter":
		value := m.input.Value()
		mode := m.mode
		m.mode = inputNone
		m.input.Blur()
		if mode == inputSearch {
			g.Search(value)
		} else {
			g.Filter(m.filterKey, value)
		}
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) detailKey(msg tea.KeyMsg) tea.Cmd {
	visible := m.detailHeight()
	switch {
	case msg.String() == "esc", key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.View):
		m.detail = nil
	case key.Matches(msg, m.keys.Up):
		m.detail.scroll(-1, visible)
	case key.Matches(msg, m.keys.Down):
		m.detail.scroll(1, visible)
	case key.Matches(msg, m.keys.NextPage):
		m.detail.scroll(visible, visible)
	case key.Matches(msg, m.keys.PrevPage):
		m.detail.scroll(-visible, visible)
	case key.Matches(msg, m.keys.Edit):
		d := m.detail
		if d.record == nil {
			return nil
		}
		m.detail = nil
		return m.openForm(d.resource, grid.Row{ID: d.record.ID, Fields: d.record.Fields})
	case key.Matches(msg, m.keys.Copy):
		if d := m.detail; d.record != nil {
			return m.copyRecord(d.resource, grid.Row{ID: d.record.ID, Fields: d.record.Fields})
		}
	}
	return nil
}

func (m *Model) copyRecord(r models.Resource, row grid.Row) tea.Cmd {
	rec := host.Record(row)
	text := formatRecordMarkdown(r, &rec)
	return func() tea.Msg {
		return copiedMsg{id: row.ID, err: copyToClipboard(text)}
	}
}

func (m *Model) formWidth() int {
	return max(40, min(80, m.Width-8))
}

func (m *Model) openForm(r models.Resource, row grid.Row) tea.Cmd {
	f := newEditForm(r, row, m.formWidth())
	if f == nil {
		m.flash = r.Title() + " cannot be edited"
		return nil
	}
	m.detail = nil
	m.form = f
	return f.form.Init()
}

func (m *Model) updateForm(msg tea.Msg) tea.Cmd {
	f := m.form
	cmd := f.update(msg)
	switch f.form.State {
	case huh.StateCompleted:
		m.form = nil
		changes := f.changes()
		if len(changes) == 0 {
			return nil
		}
		return saveRecord(m.src, f.resource, f.id, changes, m.context)
	case huh.StateAborted:
		m.form = nil
		return nil
	}
	return cmd
}

func (m *Model) applySaved(msg savedMsg) tea.Cmd {
	s, ok := m.screens[msg.resource]
	if !ok {
		return nil
	}
	if msg.err != nil {
		m.logger.Error("update failed", "id", msg.id, "err", msg.err)
		s.dialogs.OpenAlert(confirm.Alert("Save failed", host.UserMessage(msg.err), confirm.SeverityError))
		return nil
	}
	m.logger.Info("record updated", "resource", string(msg.resource), "id", msg.id)
	if s.policy == models.UpdateOptimistic {
		s.patchRow(msg.id, msg.values)
		return nil
	}
	return s.fetch()
}
