package modal

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/cellbuf"
)

type textSection struct {
	text  string
	style lipgloss.Style
}

// Text is static text wrapped to the content width.
func Text(s string) Section {
	return textSection{text: s, style: Body}
}

// StyledText is Text rendered with style.
func StyledText(s string, style lipgloss.Style) Section {
	return textSection{text: s, style: style}
}

func (s textSection) Render(contentWidth int, _, _ string) RenderedSection {
	wrapped := cellbuf.Wrap(s.text, contentWidth, "")
	lines := strings.Split(wrapped, "\n")
	for i, l := range lines {
		lines[i] = s.style.Render(l)
	}
	return RenderedSection{Content: strings.Join(lines, "\n")}
}

func (textSection) Update(tea.Msg, string) (string, tea.Cmd) { return "", nil }

type spacerSection struct{}

// Spacer is one blank line.
func Spacer() Section { return spacerSection{} }

func (spacerSection) Render(int, string, string) RenderedSection {
	return RenderedSection{Content: " "}
}

func (spacerSection) Update(tea.Msg, string) (string, tea.Cmd) { return "", nil }

// ButtonDef is one button of a Buttons row.
type ButtonDef struct {
	Label    string
	ID       string
	danger   bool
	disabled bool
}

// ButtonOption configures a button.
type ButtonOption func(*ButtonDef)

// BtnDanger styles the button as destructive when focused.
func BtnDanger() ButtonOption {
	return func(b *ButtonDef) { b.danger = true }
}

// BtnDisabled greys the button out and removes it from focus and clicks.
func BtnDisabled(disabled bool) ButtonOption {
	return func(b *ButtonDef) { b.disabled = disabled }
}

func Btn(label, id string, opts ...ButtonOption) ButtonDef {
	b := ButtonDef{Label: label, ID: id}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

type buttonsSection struct {
	buttons []ButtonDef
}

// Buttons is a row of buttons. Activating one returns its id as the action.
func Buttons(btns ...ButtonDef) Section {
	return buttonsSection{buttons: btns}
}

func (s buttonsSection) Render(_ int, focusID, hoverID string) RenderedSection {
	var (
		parts      []string
		focusables []FocusableInfo
		x          int
	)
	for i, b := range s.buttons {
		if i > 0 {
			parts = append(parts, " ")
			x++
		}
		style := Button
		switch {
		case b.disabled:
			style = ButtonDisabled
		case b.ID == focusID && b.danger:
			style = ButtonDangerFocused
		case b.ID == focusID:
			style = ButtonFocused
		case b.ID == hoverID:
			style = ButtonHover
		}
		rendered := style.Render(b.Label)
		w := lipgloss.Width(rendered)
		if !b.disabled {
			focusables = append(focusables, FocusableInfo{ID: b.ID, Action: b.ID, OffsetX: x, Width: w, Height: 1})
		}
		parts = append(parts, rendered)
		x += w
	}
	return RenderedSection{Content: strings.Join(parts, ""), Focusables: focusables}
}

func (buttonsSection) Update(tea.Msg, string) (string, tea.Cmd) { return "", nil }

type customSection struct {
	render func(contentWidth int) string
	update func(msg tea.Msg) (string, tea.Cmd)
}

// Custom renders arbitrary content. update may be nil.
func Custom(render func(contentWidth int) string, update func(msg tea.Msg) (string, tea.Cmd)) Section {
	return customSection{render: render, update: update}
}

func (s customSection) Render(contentWidth int, _, _ string) RenderedSection {
	return RenderedSection{Content: s.render(contentWidth)}
}

func (s customSection) Update(msg tea.Msg, _ string) (string, tea.Cmd) {
	if s.update == nil {
		return "", nil
	}
	return s.update(msg)
}

type whenSection struct {
	cond    func() bool
	section Section
}

// When shows section only while cond holds.
func When(cond func() bool, section Section) Section {
	return whenSection{cond: cond, section: section}
}

func (s whenSection) Render(contentWidth int, focusID, hoverID string) RenderedSection {
	if !s.cond() {
		return RenderedSection{}
	}
	return s.section.Render(contentWidth, focusID, hoverID)
}

func (s whenSection) Update(msg tea.Msg, focusID string) (string, tea.Cmd) {
	if !s.cond() {
		return "", nil
	}
	return s.section.Update(msg, focusID)
}
