package modal

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/jobdesk/pkg/console/mouse"
)

// Variant selects the frame color.
type Variant int

const (
	VariantDefault Variant = iota
	VariantDanger
	VariantWarning
	VariantInfo
	VariantSuccess
)

// Region ids registered besides the sections' own.
const (
	BackdropID = "modal:backdrop"
	BodyID     = "modal:body"
)

// ActionCancel is returned for Esc and for backdrop clicks when enabled.
const ActionCancel = "cancel"

const (
	defaultWidth = 50
	// border (1) + horizontal padding (2) on each side
	frameX = 3
	// border (1) + vertical padding (1)
	frameY = 2
)

// FocusableInfo is a region a section exposes, relative to its own top-left
// corner. Passive regions are clickable but skipped by Tab.
type FocusableInfo struct {
	ID      string
	Action  string
	Passive bool

	OffsetX, OffsetY int
	Width, Height    int
}

// RenderedSection is one section's output.
type RenderedSection struct {
	Content    string
	Focusables []FocusableInfo
}

// Section is one block of modal content.
type Section interface {
	Render(contentWidth int, focusID, hoverID string) RenderedSection
	Update(msg tea.Msg, focusID string) (string, tea.Cmd)
}

// Option configures a Modal.
type Option func(*Modal)

func WithWidth(w int) Option {
	return func(m *Modal) {
		if w > frameX*2 {
			m.width = w
		}
	}
}

func WithVariant(v Variant) Option {
	return func(m *Modal) { m.variant = v }
}

// WithHints shows the key hints line under the content.
func WithHints(show bool) Option {
	return func(m *Modal) { m.showHints = show }
}

// WithPrimaryAction is returned for Enter when no section claims the key,
// and its region takes initial focus.
func WithPrimaryAction(id string) Option {
	return func(m *Modal) { m.primaryAction = id }
}

func WithCloseOnBackdropClick(close bool) Option {
	return func(m *Modal) { m.closeOnBackdrop = close }
}

// Modal is a centered dialog built from sections. Hit regions are measured
// from the rendered output, so they always match what is on screen.
type Modal struct {
	title           string
	width           int
	variant         Variant
	showHints       bool
	primaryAction   string
	closeOnBackdrop bool
	sections        []Section

	focusIDs []string
	order    []string
	regions  map[string]FocusableInfo
	focusIdx int
	focusSet bool
	hoverID  string

	x, y int
}

func New(title string, opts ...Option) *Modal {
	m := &Modal{title: title, width: defaultWidth}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Modal) AddSection(s Section) *Modal {
	m.sections = append(m.sections, s)
	m.focusIDs = nil
	return m
}

func (m *Modal) contentWidth() int {
	return m.width - frameX*2
}

// layout renders the content block and records every region relative to the
// content's top-left corner.
func (m *Modal) layout() string {
	focusID := m.FocusedID()

	var lines []string
	if m.title != "" {
		lines = append(lines, ModalTitle.Render(ansi.Truncate(m.title, m.contentWidth(), "…")), "")
	}
	y := len(lines)

	m.focusIDs = m.focusIDs[:0]
	m.order = m.order[:0]
	m.regions = make(map[string]FocusableInfo)
	for _, s := range m.sections {
		rs := s.Render(m.contentWidth(), focusID, m.hoverID)
		if rs.Content == "" {
			continue
		}
		for _, f := range rs.Focusables {
			f.OffsetY += y
			m.regions[f.ID] = f
			m.order = append(m.order, f.ID)
			if !f.Passive {
				m.focusIDs = append(m.focusIDs, f.ID)
			}
		}
		lines = append(lines, rs.Content)
		y += lipgloss.Height(rs.Content)
	}
	if m.showHints {
		lines = append(lines, "", MutedText.Render("tab focus · enter select · esc close"))
	}

	if !m.focusSet {
		m.focusSet = true
		for i, id := range m.focusIDs {
			if id == m.primaryAction {
				m.focusIdx = i
			}
		}
	}
	if m.focusIdx >= len(m.focusIDs) {
		m.focusIdx = 0
	}
	return strings.Join(lines, "\n")
}

// Render draws the modal for a screen of the given size and registers its hit
// regions with handler, which may be nil. The result is the dialog box alone;
// Overlay places it on the background at Origin.
func (m *Modal) Render(screenW, screenH int, handler *mouse.Handler) string {
	if !m.focusSet {
		// first pass discovers the focusables
		m.layout()
	}
	content := m.layout()

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor(m.variant)).
		Padding(1, 2).
		Width(m.width - 2).
		Render(content)

	w, h := lipgloss.Width(box), lipgloss.Height(box)
	m.x = max(0, (screenW-w)/2)
	m.y = max(0, (screenH-h)/2)

	if handler != nil {
		handler.HitMap.AddRect(BackdropID, 0, 0, screenW, screenH, nil)
		handler.HitMap.AddRect(BodyID, m.x, m.y, w, h, nil)
		for _, id := range m.order {
			f := m.regions[id]
			handler.HitMap.AddRect(id, m.x+frameX+f.OffsetX, m.y+frameY+f.OffsetY, f.Width, f.Height, nil)
		}
	}
	return box
}

// Origin is where the last Render placed the box.
func (m *Modal) Origin() (int, int) {
	return m.x, m.y
}

// FocusedID returns the id of the focused region.
func (m *Modal) FocusedID() string {
	if m.focusIdx < 0 || m.focusIdx >= len(m.focusIDs) {
		return ""
	}
	return m.focusIDs[m.focusIdx]
}

// Focus moves focus to id when it is focusable.
func (m *Modal) Focus(id string) {
	for i, f := range m.focusIDs {
		if f == id {
			m.focusIdx = i
			m.focusSet = true
			return
		}
	}
}

func (m *Modal) cycle(delta int) {
	n := len(m.focusIDs)
	if n == 0 {
		return
	}
	m.focusIdx = ((m.focusIdx+delta)%n + n) % n
	m.focusSet = true
}

// HandleKey processes a key press and returns the chosen action, if any.
func (m *Modal) HandleKey(msg tea.KeyMsg) (string, tea.Cmd) {
	if m.regions == nil {
		m.layout()
	}

	switch msg.String() {
	case "tab", "right":
		m.cycle(1)
		return "", nil
	case "shift+tab", "left":
		m.cycle(-1)
		return "", nil
	case "esc":
		return ActionCancel, nil
	case "enter", " ":
		if f, ok := m.regions[m.FocusedID()]; ok && f.Action != "" {
			return f.Action, nil
		}
	}

	for _, s := range m.sections {
		if action, cmd := s.Update(msg, m.FocusedID()); action != "" || cmd != nil {
			return action, cmd
		}
	}
	if msg.String() == "enter" && m.primaryAction != "" {
		return m.primaryAction, nil
	}
	return "", nil
}

// HandleMouse resolves a mouse event against the regions registered by the
// last Render and returns the chosen action, if any.
func (m *Modal) HandleMouse(msg tea.MouseMsg, handler *mouse.Handler) string {
	action := handler.HandleMouse(msg)
	var id string
	if action.Region != nil {
		id = action.Region.ID
	}

	switch action.Type {
	case mouse.ActionHover:
		m.hoverID = ""
		if _, ok := m.regions[id]; ok {
			m.hoverID = id
		}
	case mouse.ActionClick:
		if id == BackdropID && m.closeOnBackdrop {
			return ActionCancel
		}
		if f, ok := m.regions[id]; ok {
			m.Focus(id)
			return f.Action
		}
	}
	return ""
}

// Overlay draws box over background with its top-left corner at (x, y).
func Overlay(background, box string, x, y int) string {
	bg := strings.Split(background, "\n")
	fg := strings.Split(box, "\n")
	fgW := lipgloss.Width(box)

	for len(bg) < y+len(fg) {
		bg = append(bg, "")
	}
	for i, line := range fg {
		row := bg[y+i]
		if w := ansi.StringWidth(row); w < x {
			row += strings.Repeat(" ", x-w)
		}
		left := ansi.Cut(row, 0, x)
		right := ansi.TruncateLeft(row, x+fgW, "")
		if w := ansi.StringWidth(line); w < fgW {
			line += strings.Repeat(" ", fgW-w)
		}
		bg[y+i] = left + line + right
	}
	return strings.Join(bg, "\n")
}
