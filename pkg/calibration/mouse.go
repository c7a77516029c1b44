// Package calibration turns mouse input on a live frame into regions of
// interest and boundary distances, and renders the matching overlay.
package calibration

import (
	"image"

	"github.com/animlab/animutils/pkg/roi"
	"github.com/animlab/animutils/pkg/types"
)

// MouseState records the pointer history of one drawing session. Each window
// owns its own MouseState; nothing is shared between sessions.
type MouseState struct {
	Pos     image.Point
	Points  []image.Point
	Down    *image.Point
	Up      *image.Point
	Rect    *types.ROI
	Drawing bool
}

// Move records the current pointer position
func (m *MouseState) Move(x, y int) {
	m.Pos = image.Pt(x, y)
	m.Drawing = true
}

// Press records a button press and starts a new rectangle
func (m *MouseState) Press(x, y int) {
	p := image.Pt(x, y)
	m.Pos = p
	m.Down = &p
	m.Up = nil
	m.Points = append(m.Points, p)
	m.Drawing = true
}

// Release records a button release and closes the rectangle started by the
// last press. A release with no open press is ignored, including a second
// release after a completed drag.
func (m *MouseState) Release(x, y int) {
	p := image.Pt(x, y)
	m.Pos = p
	if m.Down == nil {
		return
	}
	m.Up = &p
	r := roi.Normalize(types.ROI{TopLeft: *m.Down, BottomRight: p})
	m.Rect = &r
	m.Down = nil
	m.Drawing = true
}

// Pending returns the rectangle being dragged, from the press to the pointer
func (m *MouseState) Pending() (types.ROI, bool) {
	if m.Down == nil {
		return types.ROI{}, false
	}
	return roi.Normalize(types.ROI{TopLeft: *m.Down, BottomRight: m.Pos}), true
}

// Cursor returns the pointer position as a geometry point
func (m *MouseState) Cursor() types.Point {
	return types.Pt(float64(m.Pos.X), float64(m.Pos.Y))
}

// Reset clears the session
func (m *MouseState) Reset() {
	*m = MouseState{}
}
