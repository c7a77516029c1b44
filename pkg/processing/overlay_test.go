package processing

import (
	"errors"
	"image"
	"image/color"
	"math"
	"slices"
	"testing"

	"github.com/animlab/animutils/pkg/types"
)

func blackFrame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

func isRed(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r>>8 > 200 && g>>8 < 60 && b>>8 < 60
}

func isBlack(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r>>8 < 10 && g>>8 < 10 && b>>8 < 10
}

func TestOverlayROI(t *testing.T) {
	src := blackFrame(100, 100)
	o := NewOverlay(src)
	defer o.Close()

	red := Style{Color: color.NRGBA{255, 0, 0, 255}, Width: 4}
	if err := o.ROI(types.NewROI(20, 20, 80, 80), red); err != nil {
		t.Fatalf("ROI failed: %v", err)
	}
	out := o.Image()

	if out.Bounds() != src.Bounds() {
		t.Fatalf("overlay size %v, want %v", out.Bounds(), src.Bounds())
	}
	for _, p := range []image.Point{{50, 20}, {20, 50}, {79, 50}, {50, 79}} {
		if !isRed(out.At(p.X, p.Y)) {
			t.Errorf("expected red edge at %v, got %v", p, out.At(p.X, p.Y))
		}
	}
	if !isBlack(out.At(50, 50)) {
		t.Errorf("expected untouched interior, got %v", out.At(50, 50))
	}
	if !isBlack(src.At(50, 20)) {
		t.Error("source image was modified")
	}
}

func TestOverlaySegmentAndCrosshair(t *testing.T) {
	o := NewOverlay(blackFrame(60, 60))
	defer o.Close()

	st := Style{Color: color.NRGBA{255, 0, 0, 255}, Width: 4}
	if err := o.Segment(types.Seg(types.Pt(0, 10), types.Pt(60, 10)), st); err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	if err := o.Crosshair(types.Pt(30, 40), 8, st); err != nil {
		t.Fatalf("Crosshair failed: %v", err)
	}
	out := o.Image()
	if !isRed(out.At(30, 10)) {
		t.Errorf("expected segment pixel, got %v", out.At(30, 10))
	}
	if !isRed(out.At(25, 40)) || !isRed(out.At(30, 35)) {
		t.Error("expected crosshair arms")
	}
	if !isBlack(out.At(20, 30)) {
		t.Errorf("expected background away from crosshair, got %v", out.At(20, 30))
	}
}

func TestOverlayGuides(t *testing.T) {
	o := NewOverlay(blackFrame(40, 40))
	defer o.Close()

	st := Style{Color: color.NRGBA{255, 0, 0, 255}, Width: 3}
	if err := o.Diagonals(st); err != nil {
		t.Fatalf("Diagonals failed: %v", err)
	}
	if err := o.Center(st); err != nil {
		t.Fatalf("Center failed: %v", err)
	}
	if err := o.Marker(types.Pt(10, 30), 2, 6, 2, color.Black, color.White); err != nil {
		t.Fatalf("Marker failed: %v", err)
	}
	out := o.Image()
	if !isRed(out.At(30, 30)) {
		t.Errorf("expected diagonal through (30,30), got %v", out.At(30, 30))
	}
}

func TestOverlayText(t *testing.T) {
	o := NewOverlay(blackFrame(80, 30))
	defer o.Close()

	o.Text("12.5 px", image.Pt(2, 2), color.White, nil)
	out := o.Image()

	lit := 0
	for y := 0; y < 30; y++ {
		for x := 0; x < 80; x++ {
			if !isBlack(out.At(x, y)) {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("expected label pixels")
	}
}

func TestOverlayTrajectory(t *testing.T) {
	o := NewOverlay(blackFrame(40, 20))
	defer o.Close()

	track := []types.Point{types.Pt(5, 10), types.Pt(35, 10)}
	if err := o.Trajectory(track, 4, 4, 0.5, color.NRGBA{255, 0, 0, 255}); err != nil {
		t.Fatalf("Trajectory failed: %v", err)
	}
	out := o.Image()

	r, g, _, _ := out.At(20, 10).RGBA()
	if r>>8 < 110 || r>>8 > 145 || g>>8 > 10 {
		t.Errorf("track pixel = (%d,%d), want half-blended red", r>>8, g>>8)
	}
	if !isBlack(out.At(20, 2)) {
		t.Error("pixel away from the track should stay black")
	}
}

func TestOverlayTrajectorySkipsLostPoints(t *testing.T) {
	o := NewOverlay(blackFrame(40, 20))
	defer o.Close()

	nan := math.NaN()
	track := []types.Point{types.Pt(5, 10), types.Pt(nan, nan), types.Pt(35, 10)}
	if err := o.Trajectory(track, 4, 4, 1, color.NRGBA{255, 0, 0, 255}); err != nil {
		t.Fatalf("Trajectory failed: %v", err)
	}
	if !isBlack(o.Image().At(20, 10)) {
		t.Error("segments touching a NaN point should not be drawn")
	}
}

func TestOverlayTrajectoryInvalid(t *testing.T) {
	o := NewOverlay(blackFrame(10, 10))
	defer o.Close()

	track := []types.Point{types.Pt(0, 0), types.Pt(5, 5)}
	for _, tc := range []struct{ minW, maxW, opacity float64 }{
		{1, 0, 0.5},
		{-1, 4, 0.5},
		{1, 4, 1.5},
	} {
		err := o.Trajectory(track, tc.minW, tc.maxW, tc.opacity, nil)
		if !errors.Is(err, types.ErrInvalidInput) {
			t.Errorf("Trajectory(%v) = %v, want ErrInvalidInput", tc, err)
		}
	}
}

func TestTrajectoryWidths(t *testing.T) {
	w := trajectoryWidths(3, 8, 13)
	if len(w) != 3 || w[2] != 13 {
		t.Fatalf("widths = %v", w)
	}
	if !(w[0] < w[1] && w[1] < w[2]) || w[0] >= 8 {
		t.Errorf("widths should rise from below minW to maxW, got %v", w)
	}
}

func TestOverlayComposite(t *testing.T) {
	o := NewOverlay(blackFrame(20, 20))
	defer o.Close()

	patch := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			patch.SetNRGBA(x, y, color.NRGBA{0, 0, 255, 255})
		}
	}
	patch.SetNRGBA(3, 3, color.NRGBA{0, 0, 255, 0})

	if err := o.Composite(patch, image.Pt(10, 10)); err != nil {
		t.Fatalf("Composite failed: %v", err)
	}
	// clipped at the frame edge
	if err := o.Composite(patch, image.Pt(18, 0)); err != nil {
		t.Fatalf("Composite failed: %v", err)
	}
	out := o.Image()

	for _, p := range []image.Point{{10, 10}, {12, 11}, {19, 1}} {
		if _, _, b, _ := out.At(p.X, p.Y).RGBA(); b>>8 < 240 {
			t.Errorf("pixel %v not blue", p)
		}
	}
	for _, p := range []image.Point{{9, 9}, {13, 13}, {14, 10}} {
		if !isBlack(out.At(p.X, p.Y)) {
			t.Errorf("pixel %v should stay black", p)
		}
	}
}

func TestSpacedColors(t *testing.T) {
	if SpacedColors(0) != nil {
		t.Error("expected nil for zero colours")
	}
	cols := SpacedColors(3)
	want := []color.NRGBA{{72, 73, 255, 255}, {144, 147, 254, 255}, {216, 221, 253, 255}}
	if !slices.Equal(cols, want) {
		t.Errorf("SpacedColors(3) = %v, want %v", cols, want)
	}
	for _, n := range []int{1, 7, 40} {
		if got := len(SpacedColors(n)); got != n {
			t.Errorf("len(SpacedColors(%d)) = %d", n, got)
		}
	}
}
