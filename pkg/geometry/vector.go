package geometry

import (
	"fmt"
	"math"

	"github.com/animlab/animutils/pkg/types"
)

// PointsToVec returns the vector from p1 to p2. With flip set the y axis is
// inverted so that image coordinates (y growing downwards) point north.
func PointsToVec(p1, p2 types.Point, flip bool) types.Point {
	v := p2.Sub(p1)
	if flip {
		v.Y = -v.Y
	}
	return v
}

// AngleToVec converts a compass angle in degrees (0 is north, clockwise
// positive) to a unit vector rounded to 3 decimals.
func AngleToVec(deg float64) types.Point {
	rad := deg * math.Pi / 180
	return types.Point{X: roundTo(math.Sin(rad), 3), Y: roundTo(math.Cos(rad), 3)}
}

// VecToAngle returns the compass angle of v in degrees within [-180, 180],
// rounded to 2 decimals.
func VecToAngle(v types.Point) float64 {
	return roundTo(math.Atan2(v.X, v.Y)*180/math.Pi, 2)
}

// PointsToAngle returns the compass angle of the vector from p1 to p2
func PointsToAngle(p1, p2 types.Point, flip bool) float64 {
	return VecToAngle(PointsToVec(p1, p2, flip))
}

// PointsToDist returns the Euclidean distance between two points
func PointsToDist(p1, p2 types.Point) (float64, error) {
	if !p1.IsFinite() || !p2.IsFinite() {
		return 0, fmt.Errorf("%w: %v to %v", types.ErrInvalidInput, p1, p2)
	}
	return p1.Distance(p2), nil
}

func roundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
