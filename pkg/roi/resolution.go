package roi

import (
	"github.com/animlab/animutils/pkg/geometry"
	"github.com/animlab/animutils/pkg/types"
)

// PiCamResolution rounds a resolution to the nearest size the Raspberry Pi
// camera records natively: width a multiple of 32, height a multiple of 16.
func PiCamResolution(res types.Resolution) types.Resolution {
	return types.Resolution{
		Width:  geometry.CloseNr(res.Width, 32),
		Height: geometry.CloseNr(res.Height, 16),
	}
}

// FixVidShape returns the letterbox offsets needed to fit frames of
// resolution src into dst without distortion.
func FixVidShape(src, dst types.Resolution) (xmin, ymin int) {
	if !src.Valid() || !dst.Valid() {
		return 0, 0
	}
	xmult := float64(dst.Width) / float64(src.Width)
	ymult := float64(dst.Height) / float64(src.Height)
	switch {
	case xmult > ymult:
		xmin = int((float64(dst.Width) - float64(src.Width)*ymult) / 2)
	case ymult > xmult:
		ymin = int((float64(dst.Height) - float64(src.Height)*xmult) / 2)
	}
	return xmin, ymin
}

// NewDims scales a resolution by resize, truncating to whole pixels
func NewDims(res types.Resolution, resize float64) types.Resolution {
	return types.Resolution{
		Width:  int(float64(res.Width) * resize),
		Height: int(float64(res.Height) * resize),
	}
}
