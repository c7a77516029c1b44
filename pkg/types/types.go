package types

import "image"

// Point is a 2D coordinate in pixel or normalized space
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Segment is a finite line segment between two distinct endpoints
type Segment struct {
	A Point `json:"a"`
	B Point `json:"b"`
}

// Seg is shorthand for a segment from a to b
func Seg(a, b Point) Segment {
	return Segment{A: a, B: b}
}

// Resolution is a frame size in pixels
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Valid reports whether both dimensions are positive
func (r Resolution) Valid() bool {
	return r.Width > 0 && r.Height > 0
}

// ROI is a pixel-space rectangle given by its top-left and bottom-right corners
type ROI struct {
	TopLeft     image.Point `json:"top_left"`
	BottomRight image.Point `json:"bottom_right"`
}

// NewROI builds an ROI from corner coordinates
func NewROI(x1, y1, x2, y2 int) ROI {
	return ROI{TopLeft: image.Pt(x1, y1), BottomRight: image.Pt(x2, y2)}
}

// Rect returns the ROI as an image.Rectangle
func (r ROI) Rect() image.Rectangle {
	return image.Rectangle{Min: r.TopLeft, Max: r.BottomRight}
}

// Dx returns the ROI width
func (r ROI) Dx() int {
	return r.BottomRight.X - r.TopLeft.X
}

// Dy returns the ROI height
func (r ROI) Dy() int {
	return r.BottomRight.Y - r.TopLeft.Y
}

// Zoom is a rectangle expressed as fractions of a frame resolution, in the
// x, y, w, h order expected by the camera's zoom setting
type Zoom struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// FullZoom covers the whole frame
var FullZoom = Zoom{X: 0, Y: 0, W: 1, H: 1}

// Detection is the region a vision model located in a frame
type Detection struct {
	Label       string   `json:"label"`
	Confidence  float64  `json:"confidence"`
	Box         Zoom     `json:"box"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}
