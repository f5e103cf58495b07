package console

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/marcus/jobdesk/internal/grid"
	"github.com/marcus/jobdesk/internal/host"
	"github.com/marcus/jobdesk/internal/models"
)

type savedMsg struct {
	resource models.Resource
	id       string
	values   map[string]string
	err      error
}

// editForm edits the editable fields of one record.
type editForm struct {
	resource models.Resource
	id       string
	label    string
	form     *huh.Form
	values   map[string]*string
	original map[string]string
}

func required(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(label + " is required")
		}
		return nil
	}
}

// newEditForm returns nil when r has nothing to edit.
func newEditForm(r models.Resource, row grid.Row, width int) *editForm {
	fields := models.EditableFields(r)
	if len(fields) == 0 {
		return nil
	}
	rec := host.Record(row)

	f := &editForm{
		resource: r,
		id:       row.ID,
		label:    row.Label(),
		values:   make(map[string]*string, len(fields)),
		original: make(map[string]string, len(fields)),
	}
	var inputs []huh.Field
	for _, field := range fields {
		v := rec.String(field.Key)
		f.original[field.Key] = v
		f.values[field.Key] = &v

		if field.Kind == models.FieldMarkdown {
			inputs = append(inputs, huh.NewText().
				Key(field.Key).
				Title(field.Label).
				Lines(6).
				Value(f.values[field.Key]))
			continue
		}
		inputs = append(inputs, huh.NewInput().
			Key(field.Key).
			Title(field.Label).
			CharLimit(200).
			Validate(required(field.Label)).
			Value(f.values[field.Key]))
	}

	f.form = huh.NewForm(huh.NewGroup(inputs...)).
		WithWidth(width).
		WithShowHelp(true)
	return f
}

// changes returns the fields whose value differs from the loaded record.
func (f *editForm) changes() map[string]string {
	out := make(map[string]string)
	for k, v := range f.values {
		if *v != f.original[k] {
			out[k] = strings.TrimRight(*v, "\n")
		}
	}
	return out
}

func (f *editForm) update(msg tea.Msg) tea.Cmd {
	m, cmd := f.form.Update(msg)
	if form, ok := m.(*huh.Form); ok {
		f.form = form
	}
	return cmd
}

func saveRecord(src host.Source, r models.Resource, id string, values map[string]string, timeout timeoutFunc) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := timeout()
		defer cancel()
		err := src.Update(ctx, r, id, values)
		return savedMsg{resource: r, id: id, values: values, err: err}
	}
}
