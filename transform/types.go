// Package transform estimates two-view epipolar geometry and triangulates points seen by several
// cameras.
package transform

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// HomogeneousPoint is a 3D point in homogeneous coordinates, defined up to scale.
type HomogeneousPoint struct {
	X, Y, Z, W float64
}

// NewHomogeneousPoint lifts a euclidean point to homogeneous coordinates.
func NewHomogeneousPoint(pt r3.Vector) HomogeneousPoint {
	return HomogeneousPoint{pt.X, pt.Y, pt.Z, 1}
}

// Euclidean divides through by W. A point with W == 0 lies at infinity and has no euclidean
// representation.
func (p HomogeneousPoint) Euclidean() (r3.Vector, error) {
	if p.W == 0 || math.IsNaN(p.W) {
		return r3.Vector{}, newNumericError("point (%v, %v, %v, %v) is at infinity", p.X, p.Y, p.Z, p.W)
	}
	return r3.Vector{X: p.X / p.W, Y: p.Y / p.W, Z: p.Z / p.W}, nil
}

// Slice returns the coordinates as a 4 element slice.
func (p HomogeneousPoint) Slice() []float64 {
	return []float64{p.X, p.Y, p.Z, p.W}
}

// Convert2DPointsToHomogeneousPoints converts image coordinates to homogeneous coordinates.
func Convert2DPointsToHomogeneousPoints(pts []r2.Point) []r3.Vector {
	ptsHomogeneous := make([]r3.Vector, len(pts))
	for i, pt := range pts {
		ptsHomogeneous[i] = r3.Vector{
			X: pt.X,
			Y: pt.Y,
			Z: 1,
		}
	}
	return ptsHomogeneous
}
