package grid

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Placeholder is rendered for a row that has no value for a column.
const Placeholder = "—"

// Row is one record supplied by the host. The grid never interprets Fields
// except through a column's Display.
type Row struct {
	ID     string
	Fields map[string]any
}

// Value returns the raw field value and whether it is present.
func (r Row) Value(key string) (any, bool) {
	if r.Fields == nil {
		return nil, false
	}
	v, ok := r.Fields[key]
	if ok && v == nil {
		return nil, false
	}
	return v, ok
}

// Label returns a human-readable name for the row: the name field, then the
// title field, then the id.
func (r Row) Label() string {
	for _, key := range []string{"name", "title"} {
		if v, ok := r.Value(key); ok {
			if s := strings.TrimSpace(FormatValue(v)); s != "" {
				return s
			}
		}
	}
	return r.ID
}

// DisplayKind tags how a column turns a raw value into a cell.
type DisplayKind int

const (
	DisplayText DisplayKind = iota
	DisplayBadge
	DisplayDate
	DisplayCustom
)

// Tone is the visual emphasis of a badge cell.
type Tone string

const (
	ToneNeutral Tone = "neutral"
	ToneInfo    Tone = "info"
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
)

// Badge maps one raw value to a label and tone.
type Badge struct {
	Label string
	Tone  Tone
}

// Display describes how a column renders its values.
type Display struct {
	Kind DisplayKind

	// Badges is used by DisplayBadge, keyed by the formatted raw value.
	Badges map[string]Badge

	// Layout is used by DisplayDate; defaults to 2006-01-02.
	Layout string

	// Format is used by DisplayCustom.
	Format func(value any, row Row) string
}

// Text, BadgeOf, Date and Custom build Display values.
func Text() Display { return Display{Kind: DisplayText} }

func BadgeOf(badges map[string]Badge) Display {
	return Display{Kind: DisplayBadge, Badges: badges}
}

func Date(layout string) Display { return Display{Kind: DisplayDate, Layout: layout} }

func Custom(format func(value any, row Row) string) Display {
	return Display{Kind: DisplayCustom, Format: format}
}

// ColumnSpec declares one grid column. Keys are unique within a grid.
type ColumnSpec struct {
	Key         string
	Label       string
	Sortable    bool
	Filterable  bool
	Display     Display
	Placeholder string
}

// Cell is a rendered, display-ready value.
type Cell struct {
	Kind  DisplayKind
	Text  string
	Tone  Tone
	Empty bool
}

// Cell renders the column's value for row. It never fails: missing values
// become the placeholder and unknown badge values render as neutral text.
func (c ColumnSpec) Cell(row Row) Cell {
	placeholder := c.Placeholder
	if placeholder == "" {
		placeholder = Placeholder
	}
	v, ok := row.Value(c.Key)
	if !ok {
		return Cell{Kind: c.Display.Kind, Text: placeholder, Empty: true}
	}

	switch c.Display.Kind {
	case DisplayBadge:
		raw := FormatValue(v)
		if b, found := c.Display.Badges[raw]; found {
			return Cell{Kind: DisplayBadge, Text: b.Label, Tone: b.Tone}
		}
		return Cell{Kind: DisplayBadge, Text: raw, Tone: ToneNeutral}
	case DisplayDate:
		layout := c.Display.Layout
		if layout == "" {
			layout = "2006-01-02"
		}
		if t, ok := asTime(v); ok {
			return Cell{Kind: DisplayDate, Text: t.Format(layout)}
		}
		return Cell{Kind: DisplayDate, Text: FormatValue(v)}
	case DisplayCustom:
		if c.Display.Format != nil {
			return Cell{Kind: DisplayCustom, Text: c.Display.Format(v, row)}
		}
	}
	return Cell{Kind: DisplayText, Text: FormatValue(v)}
}

// FormatValue turns a raw scalar into its plain string form. This is the form
// used for CSV export and for filter matching.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func asTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, !x.IsZero()
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, x); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
