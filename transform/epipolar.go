package transform

import (
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"
)

// EpipolarTestFunc reports whether p1 lies within threshold pixels of the epipolar line f*p0.
type EpipolarTestFunc func(p0, p1 r2.Point, f mat.Matrix, threshold float64) bool

// EpipolarDistance returns the distance in pixels from p1 to the epipolar line f*p0. It is +Inf
// when the line is degenerate.
func EpipolarDistance(p0, p1 r2.Point, f mat.Matrix) float64 {
	a := f.At(0, 0)*p0.X + f.At(0, 1)*p0.Y + f.At(0, 2)
	b := f.At(1, 0)*p0.X + f.At(1, 1)*p0.Y + f.At(1, 2)
	c := f.At(2, 0)*p0.X + f.At(2, 1)*p0.Y + f.At(2, 2)
	norm := math.Hypot(a, b)
	if norm == 0 {
		return math.Inf(1)
	}
	return math.Abs(a*p1.X+b*p1.Y+c) / norm
}

// EpipolarTest is the default EpipolarTestFunc.
func EpipolarTest(p0, p1 r2.Point, f mat.Matrix, threshold float64) bool {
	return EpipolarDistance(p0, p1, f) < threshold
}

// SymmetricEpipolarDistance returns the larger of the distance from p1 to f*p0 and the distance
// from p0 to f^T*p1.
func SymmetricEpipolarDistance(p0, p1 r2.Point, f mat.Matrix) float64 {
	return math.Max(EpipolarDistance(p0, p1, f), EpipolarDistance(p1, p0, f.T()))
}
