// Package mouse maps terminal mouse events onto rectangular hit regions
// registered while a frame is rendered.
package mouse

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DoubleClickThreshold is the longest gap between two clicks on the same
// region that still counts as a double click.
const DoubleClickThreshold = 400 * time.Millisecond

// Rect is a screen rectangle; W and H are exclusive.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Region is a named clickable area with optional payload.
type Region struct {
	ID   string
	Rect Rect
	Data any
}

// HitMap holds the regions of the current frame. Regions added later sit on
// top of earlier ones.
type HitMap struct {
	regions []Region
}

func NewHitMap() *HitMap {
	return &HitMap{}
}

// AddRect registers a region.
func (h *HitMap) AddRect(id string, x, y, w, hgt int, data any) {
	h.regions = append(h.regions, Region{ID: id, Rect: Rect{X: x, Y: y, W: w, H: hgt}, Data: data})
}

// Test returns the topmost region containing (x, y), or nil.
func (h *HitMap) Test(x, y int) *Region {
	for i := len(h.regions) - 1; i >= 0; i-- {
		if h.regions[i].Rect.Contains(x, y) {
			r := h.regions[i]
			return &r
		}
	}
	return nil
}

func (h *HitMap) Clear() {
	h.regions = h.regions[:0]
}

func (h *HitMap) Regions() []Region {
	return h.regions
}

// ActionType classifies a mouse event.
type ActionType int

const (
	ActionNone ActionType = iota
	ActionClick
	ActionHover
	ActionScrollUp
	ActionScrollDown
	ActionScrollLeft
	ActionScrollRight
)

// Action is a mouse event resolved against the hit map.
type Action struct {
	Type          ActionType
	Region        *Region
	X, Y          int
	IsDoubleClick bool
}

// ClickResult is the outcome of a click.
type ClickResult struct {
	Region        *Region
	IsDoubleClick bool
}

// Handler resolves mouse events and tracks double clicks.
type Handler struct {
	HitMap *HitMap

	now             func() time.Time
	lastClickAt     time.Time
	lastClickRegion string
}

func NewHandler() *Handler {
	return &Handler{HitMap: NewHitMap(), now: time.Now}
}

// HandleClick resolves a left click. A second click on the same region within
// DoubleClickThreshold is a double click; a third starts over.
func (h *Handler) HandleClick(x, y int) ClickResult {
	region := h.HitMap.Test(x, y)
	now := h.now()

	var id string
	if region != nil {
		id = region.ID
	}
	double := id != "" && id == h.lastClickRegion && now.Sub(h.lastClickAt) <= DoubleClickThreshold
	if double {
		h.lastClickRegion = ""
		h.lastClickAt = time.Time{}
	} else {
		h.lastClickRegion = id
		h.lastClickAt = now
	}
	return ClickResult{Region: region, IsDoubleClick: double}
}

// HandleMouse resolves a bubbletea mouse event.
func (h *Handler) HandleMouse(msg tea.MouseMsg) Action {
	a := Action{X: msg.X, Y: msg.Y}

	switch msg.Action {
	case tea.MouseActionMotion:
		a.Type = ActionHover
		a.Region = h.HitMap.Test(msg.X, msg.Y)
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			res := h.HandleClick(msg.X, msg.Y)
			a.Type = ActionClick
			a.Region = res.Region
			a.IsDoubleClick = res.IsDoubleClick
		case tea.MouseButtonWheelUp:
			a.Type = ActionScrollUp
			if msg.Shift {
				a.Type = ActionScrollLeft
			}
		case tea.MouseButtonWheelDown:
			a.Type = ActionScrollDown
			if msg.Shift {
				a.Type = ActionScrollRight
			}
		case tea.MouseButtonWheelLeft:
			a.Type = ActionScrollLeft
		case tea.MouseButtonWheelRight:
			a.Type = ActionScrollRight
		}
		if a.Type != ActionClick {
			a.Region = h.HitMap.Test(msg.X, msg.Y)
		}
	}
	return a
}

// Clear drops every region, ready for the next frame.
func (h *Handler) Clear() {
	h.HitMap.Clear()
}
