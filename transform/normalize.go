package transform

import (
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"
)

// NormalizeTransform computes the similarity transform that moves the centroid of pts to the origin
// and scales them so the root mean square distance to the origin is sqrt(2), as described in
// Multiple View Geometry, Alg 4.2.
func NormalizeTransform(pts []r2.Point) (*mat.Dense, error) {
	nPoints := len(pts)
	if nPoints == 0 {
		return nil, newInputError("cannot normalize an empty point set")
	}
	// compute centroid of points
	mu := r2.Point{}
	for _, pt := range pts {
		mu = mu.Add(pt)
	}
	mu = mu.Mul(1. / float64(nPoints))

	// mean squared distance to the centroid
	s2 := 0.
	for _, pt := range pts {
		d := pt.Sub(mu)
		s2 += d.Dot(d)
	}
	s2 /= float64(nPoints)
	if s2 == 0 || math.IsNaN(s2) || math.IsInf(s2, 0) {
		return nil, newNumericError("cannot normalize %d points with mean squared spread %v", nPoints, s2)
	}

	scale := math.Sqrt(2 / s2)
	return mat.NewDense(3, 3, []float64{
		scale, 0, -scale * mu.X,
		0, scale, -scale * mu.Y,
		0, 0, 1,
	}), nil
}

// TransformPoint applies the 3x3 homogeneous transform t to pt.
func TransformPoint(pt r2.Point, t mat.Matrix) (r2.Point, error) {
	x := t.At(0, 0)*pt.X + t.At(0, 1)*pt.Y + t.At(0, 2)
	y := t.At(1, 0)*pt.X + t.At(1, 1)*pt.Y + t.At(1, 2)
	w := t.At(2, 0)*pt.X + t.At(2, 1)*pt.Y + t.At(2, 2)
	if w == 0 {
		return r2.Point{}, newNumericError("point (%v, %v) maps to infinity", pt.X, pt.Y)
	}
	return r2.Point{X: x / w, Y: y / w}, nil
}

// TransformPoints applies the 3x3 homogeneous transform t to every point of pts.
func TransformPoints(pts []r2.Point, t mat.Matrix) ([]r2.Point, error) {
	if err := checkDims("transform", t, 3, 3); err != nil {
		return nil, err
	}
	out := make([]r2.Point, len(pts))
	for i, pt := range pts {
		var err error
		if out[i], err = TransformPoint(pt, t); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// NormalizePoints computes the normalizing transform of pts and applies it.
func NormalizePoints(pts []r2.Point) ([]r2.Point, *mat.Dense, error) {
	t, err := NormalizeTransform(pts)
	if err != nil {
		return nil, nil, err
	}
	normalized, err := TransformPoints(pts, t)
	if err != nil {
		return nil, nil, err
	}
	return normalized, t, nil
}

// CheckNormalized verifies that pts are centered on the origin and that their mean squared
// distance to the origin is 2, both within tol.
func CheckNormalized(pts []r2.Point, tol float64) error {
	if len(pts) == 0 {
		return newInputError("cannot check an empty point set")
	}
	center := r2.Point{}
	msd := 0.
	for _, pt := range pts {
		center = center.Add(pt)
		msd += pt.Dot(pt)
	}
	n := float64(len(pts))
	center = center.Mul(1 / n)
	msd /= n
	if math.Abs(center.X) > tol || math.Abs(center.Y) > tol {
		return newNumericError("normalized centroid is (%v, %v), expected the origin", center.X, center.Y)
	}
	if math.Abs(msd-2) > tol {
		return newNumericError("normalized mean squared distance is %v, expected 2", msd)
	}
	return nil
}
