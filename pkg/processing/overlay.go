package processing

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/gogpu/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/animlab/animutils/pkg/types"
)

// Style controls how overlay shapes are stroked
type Style struct {
	Color  color.Color
	Width  float64
	Dashed bool
}

// DefaultStyle is a 2px solid red stroke
var DefaultStyle = Style{Color: color.NRGBA{255, 0, 0, 255}, Width: 2}

type label struct {
	text string
	at   image.Point
	col  color.Color
	bg   color.Color
}

// Overlay draws calibration marks on top of a frame. It is not safe for
// concurrent use.
type Overlay struct {
	dc     *gg.Context
	labels []label
}

// NewOverlay starts an overlay on a copy of img
func NewOverlay(img image.Image) *Overlay {
	return &Overlay{dc: gg.NewContextForImage(img)}
}

func (o *Overlay) apply(st Style) {
	if st.Color == nil {
		st.Color = DefaultStyle.Color
	}
	if st.Width <= 0 {
		st.Width = DefaultStyle.Width
	}
	o.dc.SetColor(st.Color)
	o.dc.SetLineWidth(st.Width)
	if st.Dashed {
		o.dc.SetDash(4*st.Width, 3*st.Width)
	} else {
		o.dc.SetDash()
	}
}

// ROI outlines a region of interest
func (o *Overlay) ROI(r types.ROI, st Style) error {
	o.apply(st)
	rect := r.Rect().Canon()
	o.dc.DrawRectangle(float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Dx()), float64(rect.Dy()))
	if err := o.dc.Stroke(); err != nil {
		return fmt.Errorf("draw roi: %w", err)
	}
	return nil
}

// Segment draws a line segment
func (o *Overlay) Segment(s types.Segment, st Style) error {
	o.apply(st)
	o.dc.DrawLine(s.A.X, s.A.Y, s.B.X, s.B.Y)
	if err := o.dc.Stroke(); err != nil {
		return fmt.Errorf("draw segment: %w", err)
	}
	return nil
}

// Crosshair draws a small plus centred on p
func (o *Overlay) Crosshair(p types.Point, radius float64, st Style) error {
	o.apply(st)
	o.dc.DrawLine(p.X-radius, p.Y, p.X+radius, p.Y)
	o.dc.DrawLine(p.X, p.Y-radius, p.X, p.Y+radius)
	if err := o.dc.Stroke(); err != nil {
		return fmt.Errorf("draw crosshair: %w", err)
	}
	return nil
}

// Diagonals draws both frame diagonals, used to centre the camera over an arena
func (o *Overlay) Diagonals(st Style) error {
	w, h := float64(o.dc.Width()), float64(o.dc.Height())
	if err := o.Segment(types.Seg(types.Pt(0, 0), types.Pt(w, h)), st); err != nil {
		return err
	}
	return o.Segment(types.Seg(types.Pt(w, 0), types.Pt(0, h)), st)
}

// Center draws a dashed horizontal and vertical line through the frame centre
func (o *Overlay) Center(st Style) error {
	w, h := float64(o.dc.Width()), float64(o.dc.Height())
	st.Dashed = true
	if err := o.Segment(types.Seg(types.Pt(w/2, 0), types.Pt(w/2, h)), st); err != nil {
		return err
	}
	return o.Segment(types.Seg(types.Pt(0, h/2), types.Pt(w, h/2)), st)
}

// Marker draws concentric circles alternating between two colours
func (o *Overlay) Marker(p types.Point, minR, maxR, step float64, c1, c2 color.Color) error {
	if step <= 0 {
		step = 1
	}
	i := 0
	for r := maxR; r >= minR; r -= step {
		col := c1
		if i%2 == 1 {
			col = c2
		}
		o.dc.SetColor(col)
		o.dc.DrawCircle(p.X, p.Y, r)
		if err := o.dc.Fill(); err != nil {
			return fmt.Errorf("draw marker: %w", err)
		}
		i++
	}
	return nil
}

// Trajectory draws a track through points with a semi-transparent stroke
// that widens from the first point to the last. Segments touching a
// non-finite point are skipped, so NaN marks a lost detection.
func (o *Overlay) Trajectory(points []types.Point, minW, maxW, opacity float64, col color.Color) error {
	if minW < 0 || maxW <= 0 || opacity < 0 || opacity > 1 {
		return fmt.Errorf("%w: trajectory width %v..%v, opacity %v", types.ErrInvalidInput, minW, maxW, opacity)
	}
	if len(points) < 2 {
		return nil
	}
	if col == nil {
		col = DefaultStyle.Color
	}

	layer := gg.NewContext(o.dc.Width(), o.dc.Height())
	defer layer.Close()
	layer.SetColor(col)
	layer.SetLineCap(gg.LineCapRound)

	widths := trajectoryWidths(len(points), minW, maxW)
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		if !a.IsFinite() || !b.IsFinite() || widths[i] <= 0 {
			continue
		}
		layer.SetLineWidth(widths[i])
		layer.DrawLine(a.X, a.Y, b.X, b.Y)
		if err := layer.Stroke(); err != nil {
			return fmt.Errorf("draw trajectory: %w", err)
		}
	}
	_ = layer.FlushGPU()

	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(opacity * 255))})
	return o.blend(layer.Image(), image.Point{}, mask)
}

// trajectoryWidths spreads n widths from minW to maxW on a quartic curve so
// that older track segments thin out quickly.
func trajectoryWidths(n int, minW, maxW float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		w := minW
		if n > 1 {
			w += (maxW - minW) * float64(i) / float64(n-1)
		}
		out[i] = math.Pow(w/maxW, 4) * maxW
	}
	return out
}

// Composite alpha-blends img onto the frame with its top-left corner at
// offset. Parts falling outside the frame are clipped.
func (o *Overlay) Composite(img image.Image, offset image.Point) error {
	return o.blend(img, offset, nil)
}

// blend draws src over the current frame through mask and restarts the
// drawing context on the result.
func (o *Overlay) blend(src image.Image, at image.Point, mask image.Image) error {
	_ = o.dc.FlushGPU()
	frame := o.dc.Image()
	dst, ok := frame.(*image.RGBA)
	if !ok {
		dst = image.NewRGBA(frame.Bounds())
		draw.Draw(dst, dst.Bounds(), frame, frame.Bounds().Min, draw.Src)
	}

	sb := src.Bounds()
	r := image.Rectangle{Min: at, Max: at.Add(sb.Size())}.Add(dst.Bounds().Min)
	draw.DrawMask(dst, r, src, sb.Min, mask, image.Point{}, draw.Over)

	if err := o.dc.Close(); err != nil {
		return fmt.Errorf("blend: %w", err)
	}
	o.dc = gg.NewContextForImage(dst)
	return nil
}

// Text queues a label with its top-left corner at p; bg may be nil.
// Labels are drawn last, above everything else.
func (o *Overlay) Text(text string, p image.Point, col, bg color.Color) {
	if col == nil {
		col = color.White
	}
	o.labels = append(o.labels, label{text: text, at: p, col: col, bg: bg})
}

// Image renders the overlay
func (o *Overlay) Image() *image.RGBA {
	_ = o.dc.FlushGPU()
	img := o.dc.Image()
	out, ok := img.(*image.RGBA)
	if !ok {
		out = image.NewRGBA(img.Bounds())
		draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	}
	for _, l := range o.labels {
		drawText(out, l)
	}
	return out
}

// Close releases the drawing context
func (o *Overlay) Close() error {
	return o.dc.Close()
}

const textMargin = 3

func drawText(dst draw.Image, l label) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(l.col), Face: face}
	width := d.MeasureString(l.text).Ceil()
	m := face.Metrics()

	if l.bg != nil {
		box := image.Rect(l.at.X, l.at.Y,
			l.at.X+width+2*textMargin, l.at.Y+m.Height.Ceil()+2*textMargin)
		draw.Draw(dst, box, image.NewUniform(l.bg), image.Point{}, draw.Over)
	}
	d.Dot = fixed.P(l.at.X+textMargin, l.at.Y+textMargin+m.Ascent.Ceil())
	d.DrawString(l.text)
}
