package console

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/marcus/jobdesk/internal/host"
	"github.com/marcus/jobdesk/internal/models"
)

type detailLoadedMsg struct {
	resource models.Resource
	id       string
	record   *models.Record
	err      error
}

// detailView shows one record rendered as markdown.
type detailView struct {
	resource models.Resource
	id       string
	record   *models.Record
	err      error

	// rendered output cached per width
	lines  []string
	width  int
	offset int
}

func newDetailView(r models.Resource, id string) *detailView {
	return &detailView{resource: r, id: id}
}

func loadDetail(src host.Source, r models.Resource, id string, timeout timeoutFunc) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := timeout()
		defer cancel()
		rec, err := src.Get(ctx, r, id)
		return detailLoadedMsg{resource: r, id: id, record: rec, err: err}
	}
}

type timeoutFunc func() (context.Context, context.CancelFunc)

func (d *detailView) apply(msg detailLoadedMsg) bool {
	if msg.resource != d.resource || msg.id != d.id {
		return false
	}
	d.record, d.err = msg.record, msg.err
	d.lines = nil
	return true
}

// render returns the rendered record, wrapping at width. Glamour failures
// fall back to the raw markdown.
func (d *detailView) render(width int) []string {
	if d.record == nil {
		return nil
	}
	if d.lines != nil && d.width == width {
		return d.lines
	}
	md := formatRecordMarkdown(d.resource, d.record)
	out := md
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		if s, err := tr.Render(md); err == nil {
			out = s
		}
	}
	d.lines = strings.Split(strings.TrimRight(out, "\n"), "\n")
	d.width = width
	return d.lines
}

func (d *detailView) scroll(delta, visible int) {
	d.offset = max(0, min(d.offset+delta, len(d.lines)-visible))
}
