package calibration

import (
	"fmt"
	"image"
	"image/color"

	"github.com/animlab/animutils/pkg/geometry"
	"github.com/animlab/animutils/pkg/processing"
	"github.com/animlab/animutils/pkg/roi"
	"github.com/animlab/animutils/pkg/types"
)

// Calibration is the state drawn over a frame while setting up a recording:
// the chosen region, the arena boundaries and the pointer.
type Calibration struct {
	ROI        *types.ROI
	Boundaries []types.Segment
	Cursor     *types.Point
	// SnapDistance is how close, in pixels, the cursor must be to a boundary to count as on it
	SnapDistance float64
}

// Styles holds the strokes used by Render
type Styles struct {
	ROI             processing.Style
	Boundary        processing.Style
	Cursor          processing.Style
	Nearest         processing.Style
	CrosshairRadius float64
	ShowDistance    bool
}

// DefaultStyles returns red regions, white boundaries and a green nearest-point guide
func DefaultStyles() Styles {
	return Styles{
		ROI:             processing.Style{Color: color.NRGBA{255, 0, 0, 255}, Width: 2},
		Boundary:        processing.Style{Color: color.NRGBA{255, 255, 255, 255}, Width: 2},
		Cursor:          processing.Style{Color: color.NRGBA{255, 255, 255, 255}, Width: 1},
		Nearest:         processing.Style{Color: color.NRGBA{0, 255, 0, 255}, Width: 1, Dashed: true},
		CrosshairRadius: 5,
		ShowDistance:    true,
	}
}

// FromMouse builds a calibration from a mouse session, preferring the
// rectangle being dragged over the last completed one.
func FromMouse(m *MouseState, boundaries []types.Segment) Calibration {
	c := Calibration{Boundaries: boundaries}
	if r, ok := m.Pending(); ok {
		c.ROI = &r
	} else if m.Rect != nil {
		r := *m.Rect
		c.ROI = &r
	}
	cur := m.Cursor()
	c.Cursor = &cur
	return c
}

// NearestBoundary returns the boundary closest to p. The index is -1 when
// there are no usable boundaries.
func (c Calibration) NearestBoundary(p types.Point) (int, geometry.SegmentDistance, error) {
	return geometry.NearestSegment(p, c.Boundaries)
}

// OnBoundary reports whether p lies within SnapDistance of a boundary and which one
func (c Calibration) OnBoundary(p types.Point) (int, bool, error) {
	idx, d, err := c.NearestBoundary(p)
	if err != nil || idx < 0 {
		return idx, false, err
	}
	return idx, d.Distance <= c.SnapDistance, nil
}

// Zoom converts the calibration ROI, clamped to res, into a camera zoom
func (c Calibration) Zoom(res types.Resolution) (types.Zoom, error) {
	if c.ROI == nil {
		return types.FullZoom, nil
	}
	r := roi.CheckROI(roi.Normalize(*c.ROI), res)
	return roi.ROIToZoom(r, res)
}

// Render draws the calibration over img
func (c Calibration) Render(img image.Image, st Styles) (*image.RGBA, error) {
	o := processing.NewOverlay(img)
	defer o.Close()

	for _, b := range c.Boundaries {
		if err := o.Segment(b, st.Boundary); err != nil {
			return nil, err
		}
	}
	if c.ROI != nil {
		if err := o.ROI(*c.ROI, st.ROI); err != nil {
			return nil, err
		}
	}
	if c.Cursor != nil {
		if err := c.renderCursor(o, *c.Cursor, st); err != nil {
			return nil, err
		}
	}
	return o.Image(), nil
}

func (c Calibration) renderCursor(o *processing.Overlay, cur types.Point, st Styles) error {
	if err := o.Crosshair(cur, st.CrosshairRadius, st.Cursor); err != nil {
		return err
	}
	idx, d, err := c.NearestBoundary(cur)
	if err != nil {
		return fmt.Errorf("nearest boundary: %w", err)
	}
	if idx < 0 {
		return nil
	}
	if d.Distance > 0 {
		if err := o.Segment(types.Seg(cur, d.Nearest), st.Nearest); err != nil {
			return err
		}
	}
	if st.ShowDistance {
		at := image.Pt(int(cur.X)+int(st.CrosshairRadius)+2, int(cur.Y)+int(st.CrosshairRadius)+2)
		o.Text(fmt.Sprintf("%.1f px", d.Distance), at, st.Nearest.Color, color.NRGBA{0, 0, 0, 160})
	}
	return nil
}
