package modal

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/jobdesk/pkg/console/mouse"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func confirmModal() *Modal {
	return New("Delete", WithVariant(VariantDanger), WithPrimaryAction("confirm")).
		AddSection(Text("Delete \"Northwind\"? This cannot be undone.")).
		AddSection(Spacer()).
		AddSection(Buttons(
			Btn(" Delete ", "confirm", BtnDanger()),
			Btn(" Cancel ", "cancel"),
		))
}

func TestHandleKey_FocusAndSelect(t *testing.T) {
	m := confirmModal()

	if action, _ := m.HandleKey(key("enter")); action != "confirm" {
		t.Fatalf("enter on primary = %q, want confirm", action)
	}

	m.HandleKey(key("tab"))
	if got := m.FocusedID(); got != "cancel" {
		t.Fatalf("focus after tab = %q, want cancel", got)
	}
	if action, _ := m.HandleKey(key("enter")); action != "cancel" {
		t.Errorf("enter on cancel = %q", action)
	}

	m.HandleKey(key("tab"))
	if got := m.FocusedID(); got != "confirm" {
		t.Errorf("tab wraps to %q, want confirm", got)
	}
	m.HandleKey(key("shift+tab"))
	if got := m.FocusedID(); got != "cancel" {
		t.Errorf("shift+tab = %q, want cancel", got)
	}

	if action, _ := m.HandleKey(key("esc")); action != ActionCancel {
		t.Errorf("esc = %q", action)
	}
}

func TestDisabledButtons(t *testing.T) {
	m := New("Deleting").
		AddSection(Buttons(
			Btn(" Delete ", "confirm", BtnDisabled(true)),
			Btn(" Cancel ", "cancel", BtnDisabled(true)),
		))
	if action, _ := m.HandleKey(key("enter")); action != "" {
		t.Errorf("enter with disabled buttons = %q", action)
	}
	if m.FocusedID() != "" {
		t.Errorf("disabled buttons took focus: %q", m.FocusedID())
	}
}

func TestRender_RegionsMatchButtons(t *testing.T) {
	m := confirmModal()
	h := mouse.NewHandler()

	box := m.Render(100, 30, h)
	x, y := m.Origin()
	lines := strings.Split(box, "\n")

	var cancel *mouse.Region
	for _, r := range h.HitMap.Regions() {
		if r.ID == "cancel" {
			r := r
			cancel = &r
		}
	}
	if cancel == nil {
		t.Fatal("cancel region not registered")
	}
	row := lines[cancel.Rect.Y-y]
	if !strings.Contains(row, "Cancel") {
		t.Errorf("cancel region row %d does not hold the button: %q", cancel.Rect.Y-y, row)
	}
	if cancel.Rect.X < x || cancel.Rect.X+cancel.Rect.W > x+m.width {
		t.Errorf("cancel region %+v outside box at x=%d", cancel.Rect, x)
	}

	click := tea.MouseMsg{X: cancel.Rect.X + 1, Y: cancel.Rect.Y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	if action := m.HandleMouse(click, h); action != "cancel" {
		t.Errorf("click on cancel = %q", action)
	}

	backdrop := tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	if action := m.HandleMouse(backdrop, h); action != "" {
		t.Errorf("backdrop click without close option = %q", action)
	}
}

func TestList(t *testing.T) {
	selected := 0
	items := []ListItem{
		{ID: "approved", Label: "Approved"},
		{ID: "hidden", Label: "Hidden"},
		{ID: "denied", Label: "Denied"},
	}
	m := New("Change status").
		AddSection(List("status", items, &selected, WithMaxVisible(2))).
		AddSection(Buttons(Btn(" Cancel ", "cancel")))

	h := mouse.NewHandler()
	box := m.Render(80, 24, h)
	if !strings.Contains(box, "more below") {
		t.Errorf("expected scroll indicator:\n%s", box)
	}
	if m.FocusedID() != "status" {
		t.Fatalf("focus = %q, want the list", m.FocusedID())
	}

	m.HandleKey(key("down"))
	m.HandleKey(key("down"))
	if selected != 2 {
		t.Errorf("selected = %d, want 2", selected)
	}
	if action, _ := m.HandleKey(key("enter")); action != "denied" {
		t.Errorf("enter = %q, want denied", action)
	}

	m.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	if selected != 0 {
		t.Errorf("after a: selected = %d, want 0 (wrapped to Approved)", selected)
	}
	m.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'H'}})
	if selected != 1 {
		t.Errorf("after H: selected = %d, want 1", selected)
	}
	m.HandleKey(key("down"))

	h.Clear()
	m.Render(80, 24, h)
	var hidden *mouse.Region
	for _, r := range h.HitMap.Regions() {
		if r.ID == "status:hidden" {
			r := r
			hidden = &r
		}
	}
	if hidden == nil {
		t.Fatal("item region not registered")
	}
	click := tea.MouseMsg{X: hidden.Rect.X, Y: hidden.Rect.Y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	if action := m.HandleMouse(click, h); action != "hidden" {
		t.Errorf("click on item = %q, want hidden", action)
	}
}

func TestOverlay(t *testing.T) {
	bg := strings.Join([]string{
		"0123456789",
		"abcdefghij",
		"ABCDEFGHIJ",
	}, "\n")

	got := Overlay(bg, "XX\nYY", 3, 1)
	want := strings.Join([]string{
		"0123456789",
		"abcXXfghij",
		"ABCYYFGHIJ",
	}, "\n")
	if got != want {
		t.Errorf("Overlay =\n%s\nwant\n%s", got, want)
	}

	short := Overlay("ab", "ZZ", 4, 0)
	if short != "ab  ZZ" {
		t.Errorf("Overlay past line end = %q", short)
	}
}
