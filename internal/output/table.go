package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/jobdesk/internal/grid"
)

const (
	minColumnWidth = 4
	ColumnGap      = 2
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	toneStyles  = map[grid.Tone]lipgloss.Style{
		grid.ToneSuccess: successStyle,
		grid.ToneWarning: warningStyle,
		grid.ToneDanger:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		grid.ToneInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		grid.ToneNeutral: mutedStyle,
	}
)

// RenderTable lays rows out under columns, fitting the table into width
// terminal cells. An ID column always comes first. A width of 0 disables
// fitting.
func RenderTable(columns []grid.ColumnSpec, rows []grid.Row, width int) string {
	headers := make([]string, 0, len(columns)+1)
	headers = append(headers, "ID")
	for _, c := range columns {
		headers = append(headers, c.Label)
	}

	cells := make([][]grid.Cell, len(rows))
	for i, row := range rows {
		line := make([]grid.Cell, 0, len(columns)+1)
		line = append(line, grid.Cell{Kind: grid.DisplayText, Text: row.ID})
		for _, c := range columns {
			line = append(line, c.Cell(row))
		}
		cells[i] = line
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = ansi.StringWidth(h)
	}
	for _, line := range cells {
		for i, c := range line {
			widths[i] = max(widths[i], ansi.StringWidth(c.Text))
		}
	}
	if width > 0 {
		FitWidths(widths, width)
	}

	var b strings.Builder
	for i, h := range headers {
		writeCell(&b, headerStyle.Render(ansi.Truncate(h, widths[i], "…")), widths[i], i == len(headers)-1)
	}
	b.WriteString("\n")
	for _, line := range cells {
		for i, c := range line {
			text := ansi.Truncate(c.Text, widths[i], "…")
			if c.Kind == grid.DisplayBadge {
				if st, ok := toneStyles[c.Tone]; ok {
					text = st.Render(text)
				}
			} else if c.Empty {
				text = mutedStyle.Render(text)
			}
			writeCell(&b, text, widths[i], i == len(line)-1)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeCell(b *strings.Builder, text string, width int, last bool) {
	b.WriteString(text)
	if last {
		return
	}
	pad := width - ansi.StringWidth(text) + ColumnGap
	if pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
}

// FitWidths shrinks the widest columns until a row of widths separated by
// ColumnGap fits total. Columns never shrink below four cells.
func FitWidths(widths []int, total int) {
	sum := func() int {
		n := ColumnGap * (len(widths) - 1)
		for _, w := range widths {
			n += w
		}
		return n
	}
	for sum() > total {
		widest := 0
		for i, w := range widths {
			if w > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColumnWidth {
			return
		}
		widths[widest]--
	}
}

// RenderPager renders the pagination line: the item range, then the page
// window with the current page bracketed.
func RenderPager(p grid.Pagination, maxButtons int) string {
	p = p.Clamp()
	if p.TotalItems == 0 {
		return "No records"
	}
	summary := fmt.Sprintf("%d-%d of %d", p.FirstItem(), p.LastItem(), p.TotalItems)
	pages := p.Window(maxButtons)
	if len(pages) <= 1 {
		return summary
	}

	parts := make([]string, 0, len(pages)+2)
	if p.HasPrev() {
		parts = append(parts, "‹")
	}
	for _, n := range pages {
		label := strconv.Itoa(n)
		if n == p.CurrentPage {
			label = headerStyle.Render("[" + label + "]")
		}
		parts = append(parts, label)
	}
	if p.HasNext() {
		parts = append(parts, "›")
	}
	return summary + "  " + strings.Join(parts, " ")
}
