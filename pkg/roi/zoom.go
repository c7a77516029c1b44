// Package roi converts between pixel regions of interest and the
// resolution-normalized zoom rectangles used by the camera.
package roi

import (
	"fmt"
	"image"
	"math"

	"github.com/animlab/animutils/pkg/types"
)

// MinPixel is the lowest coordinate CheckROI keeps; pixel 0 is reserved
const MinPixel = 1

// ZoomPrecision is the number of decimals ROIToZoom rounds to
const ZoomPrecision = 2

// slack is a relative tolerance of a few ulps. It absorbs representation
// error in products such as 0.29*100 = 28.999999999999996 without moving
// values that are genuinely below an integer or above 1.
const slack = 4 * 0x1p-52

// ZoomToROI converts a zoom rectangle to pixel corners for the given resolution
func ZoomToROI(z types.Zoom, res types.Resolution) (types.ROI, error) {
	if !res.Valid() {
		return types.ROI{}, fmt.Errorf("%w: resolution %dx%d", types.ErrInvalidROI, res.Width, res.Height)
	}
	for _, v := range []float64{z.X, z.Y, z.W, z.H} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return types.ROI{}, fmt.Errorf("%w: zoom %+v", types.ErrInvalidInput, z)
		}
	}
	if z.W < 0 || z.H < 0 {
		return types.ROI{}, fmt.Errorf("%w: negative size in zoom %+v", types.ErrOutOfRange, z)
	}
	for _, v := range []float64{z.X, z.Y, z.X + z.W, z.Y + z.H} {
		if v < -slack || v > 1+slack {
			return types.ROI{}, fmt.Errorf("%w: zoom %+v", types.ErrOutOfRange, z)
		}
	}

	w, h := float64(res.Width), float64(res.Height)
	return types.ROI{
		TopLeft:     image.Pt(toPixel(z.X, w), toPixel(z.Y, h)),
		BottomRight: image.Pt(toPixel(z.X+z.W, w), toPixel(z.Y+z.H, h)),
	}, nil
}

// ROIToZoom converts pixel corners to a zoom rectangle rounded to ZoomPrecision decimals
func ROIToZoom(r types.ROI, res types.Resolution) (types.Zoom, error) {
	if !res.Valid() {
		return types.Zoom{}, fmt.Errorf("%w: resolution %dx%d", types.ErrInvalidROI, res.Width, res.Height)
	}
	x1, y1 := r.TopLeft.X, r.TopLeft.Y
	x2, y2 := r.BottomRight.X, r.BottomRight.Y
	if x1 < 0 || x1 > x2 || x2 > res.Width || y1 < 0 || y1 > y2 || y2 > res.Height {
		return types.Zoom{}, fmt.Errorf("%w: %v outside %dx%d", types.ErrInvalidROI, r.Rect(), res.Width, res.Height)
	}

	w, h := float64(res.Width), float64(res.Height)
	return types.Zoom{
		X: round(float64(x1) / w),
		Y: round(float64(y1) / h),
		W: round(float64(x2-x1) / w),
		H: round(float64(y2-y1) / h),
	}, nil
}

// CheckROI clamps every corner coordinate into [MinPixel, resolution]
func CheckROI(r types.ROI, res types.Resolution) types.ROI {
	return types.ROI{
		TopLeft: image.Pt(
			clamp(r.TopLeft.X, MinPixel, res.Width),
			clamp(r.TopLeft.Y, MinPixel, res.Height),
		),
		BottomRight: image.Pt(
			clamp(r.BottomRight.X, MinPixel, res.Width),
			clamp(r.BottomRight.Y, MinPixel, res.Height),
		),
	}
}

// Normalize orders the corners so that TopLeft is above and left of BottomRight,
// as needed for rectangles dragged from any corner.
func Normalize(r types.ROI) types.ROI {
	rect := r.Rect().Canon()
	return types.ROI{TopLeft: rect.Min, BottomRight: rect.Max}
}

func toPixel(frac, size float64) int {
	v := frac * size
	if r := math.Round(v); math.Abs(v-r) <= slack*math.Max(1, r) {
		v = r
	}
	v = math.Floor(v)
	return int(math.Max(0, math.Min(v, size)))
}

func round(v float64) float64 {
	pow := math.Pow(10, ZoomPrecision)
	return math.Round(v*pow) / pow
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
