package modal

import (
	"strings"
	"unicode"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// ListItem is one choice in a List section. Choosing it returns ID as the
// modal action.
type ListItem struct {
	ID    string
	Label string
	Hint  string
}

type ListOption func(*listSection)

type listSection struct {
	id      string
	items   []ListItem
	cursor  *int
	visible int
	offset  int
}

// List is a scrollable single-choice list. The cursor index belongs to the
// caller so it survives rebuilding the modal; nil means no cursor.
func List(id string, items []ListItem, cursor *int, opts ...ListOption) Section {
	s := &listSection{id: id, items: items, cursor: cursor, visible: 5}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithMaxVisible limits how many items show before the list scrolls.
func WithMaxVisible(n int) ListOption {
	return func(s *listSection) {
		if n > 0 {
			s.visible = n
		}
	}
}

func (s *listSection) selected() int {
	if s.cursor == nil {
		return 0
	}
	return *s.cursor
}

// scrollTo moves the window so that idx is inside it and returns the number
// of rows shown.
func (s *listSection) scrollTo(idx int) int {
	n := min(s.visible, len(s.items))
	switch {
	case idx < s.offset:
		s.offset = idx
	case idx >= s.offset+n:
		s.offset = idx - n + 1
	}
	s.offset = max(0, min(s.offset, len(s.items)-n))
	return n
}

func (s *listSection) Render(contentWidth int, focusID, hoverID string) RenderedSection {
	if len(s.items) == 0 {
		return RenderedSection{Content: MutedText.Render("(nothing to choose)")}
	}

	n := s.scrollTo(s.selected())
	focused := focusID == s.id

	var lines []string
	// the whole list is a single tab stop under the per-item click regions
	focusables := []FocusableInfo{{ID: s.id, Width: contentWidth}}

	if s.offset > 0 {
		lines = append(lines, MutedText.Render("↑ more above"))
	}
	for idx := s.offset; idx < s.offset+n; idx++ {
		item := s.items[idx]
		region := s.id + ":" + item.ID
		current := s.cursor != nil && *s.cursor == idx

		style, marker := ListItemNormal, "  "
		if current {
			marker = ListCursor.Render("> ")
			style = ListItemSelected
			if focused {
				style = ListItemFocused
			}
		} else if region == hoverID {
			style = ListItemSelected
		}

		text := item.Label
		if item.Hint != "" {
			text += "  " + MutedText.Render(item.Hint)
		}
		focusables = append(focusables, FocusableInfo{
			ID: region, Action: item.ID, Passive: true,
			OffsetY: len(lines), Width: contentWidth, Height: 1,
		})
		lines = append(lines, marker+style.Render(ansi.Truncate(text, contentWidth-2, "…")))
	}
	if s.offset+n < len(s.items) {
		lines = append(lines, MutedText.Render("↓ more below"))
	}
	focusables[0].Height = len(lines)

	return RenderedSection{Content: strings.Join(lines, "\n"), Focusables: focusables}
}

func (s *listSection) Update(msg tea.Msg, focusID string) (string, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || focusID != s.id || s.cursor == nil || len(s.items) == 0 {
		return "", nil
	}

	last := len(s.items) - 1
	switch k := key.String(); k {
	case "up", "k":
		*s.cursor = max(0, *s.cursor-1)
	case "down", "j":
		*s.cursor = min(last, *s.cursor+1)
	case "home", "g":
		*s.cursor = 0
	case "end", "G":
		*s.cursor = last
	case "enter":
		if *s.cursor >= 0 && *s.cursor <= last {
			return s.items[*s.cursor].ID, nil
		}
	default:
		if key.Type == tea.KeyRunes && len(key.Runes) == 1 {
			s.jump(key.Runes[0])
		}
	}
	return "", nil
}

// jump moves the cursor to the next item whose label starts with r,
// wrapping around.
func (s *listSection) jump(r rune) {
	r = unicode.ToLower(r)
	for step := 1; step <= len(s.items); step++ {
		idx := (*s.cursor + step) % len(s.items)
		first, _ := utf8.DecodeRuneInString(s.items[idx].Label)
		if unicode.ToLower(first) == r {
			*s.cursor = idx
			return
		}
	}
}
