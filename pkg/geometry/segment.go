// Package geometry holds the point and segment arithmetic used by the
// calibration overlays. All functions are pure and safe for concurrent use.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/animlab/animutils/pkg/types"
)

// SegmentDistance describes where a point sits relative to a segment
type SegmentDistance struct {
	// Projection is the orthogonal projection onto the infinite line through the segment
	Projection types.Point
	// Perpendicular is the distance from the point to Projection
	Perpendicular float64
	// OnSegment reports whether Projection lies between the endpoints, inclusive
	OnSegment bool
	// EndpointDistance is the distance to the nearer endpoint
	EndpointDistance float64
	// Distance is the minimum distance to the finite segment
	Distance float64
	// Nearest is the closest point on the finite segment
	Nearest types.Point
}

// DistToSegment computes the distance from p to segment s and the closest
// point on it. If the projection of p falls outside the segment the nearer
// endpoint is used instead.
func DistToSegment(p types.Point, s types.Segment) (SegmentDistance, error) {
	if !p.IsFinite() || !s.A.IsFinite() || !s.B.IsFinite() {
		return SegmentDistance{}, fmt.Errorf("%w: point %v, segment %v", types.ErrInvalidInput, p, s)
	}
	if s.A == s.B {
		return SegmentDistance{}, fmt.Errorf("%w: endpoints both at %v", types.ErrDegenerateSegment, s.A)
	}

	u := s.B.Sub(s.A)
	ap := p.Sub(s.A)
	length := u.Length()
	if !u.IsFinite() || !ap.IsFinite() || math.IsInf(length, 0) {
		return SegmentDistance{}, fmt.Errorf("%w: point %v, segment %v overflows", types.ErrInvalidInput, p, s)
	}

	// unit direction; t runs from 0 at A to length at B
	n := types.Point{X: u.X / length, Y: u.Y / length}
	t := ap.Dot(n)

	var proj types.Point
	switch {
	case p == s.A || t == 0:
		t, proj = 0, s.A
	case p == s.B || t == length:
		t, proj = length, s.B
	default:
		proj = s.A.Add(n.Mul(t))
	}

	distA := p.Distance(s.A)
	distB := p.Distance(s.B)

	d := SegmentDistance{
		Projection:       proj,
		Perpendicular:    math.Abs(n.Cross(ap)),
		OnSegment:        t >= 0 && t <= length,
		EndpointDistance: math.Min(distA, distB),
	}

	if d.OnSegment {
		d.Distance = math.Min(d.Perpendicular, d.EndpointDistance)
		d.Nearest = proj
		return d, nil
	}

	d.Distance = d.EndpointDistance
	if distA <= distB {
		d.Nearest = s.A
	} else {
		d.Nearest = s.B
	}
	return d, nil
}

// NearestSegment returns the index of the segment closest to p together with
// its distance details. Degenerate segments are skipped; it returns -1 when
// no segment qualifies.
func NearestSegment(p types.Point, segments []types.Segment) (int, SegmentDistance, error) {
	best := -1
	var bestDist SegmentDistance
	for i, s := range segments {
		d, err := DistToSegment(p, s)
		if err != nil {
			if errors.Is(err, types.ErrDegenerateSegment) {
				continue
			}
			return -1, SegmentDistance{}, err
		}
		if best < 0 || d.Distance < bestDist.Distance {
			best, bestDist = i, d
		}
	}
	return best, bestDist, nil
}
