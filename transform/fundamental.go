package transform

import (
	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/twoview/linalg"
)

// MinimalSampleSize is the number of correspondences the linear 8-point algorithm needs.
const MinimalSampleSize = 8

// FundamentalFromCorrespondences solves the homogeneous linear system of the 8-point algorithm
// (Multiple View Geometry, 11.1) for pts0 and pts1 and projects the solution onto the rank 2
// matrices. The points should be normalized beforehand for the system to be well conditioned.
// Degenerate configurations are not detected: whatever null vector the decomposition yields is
// returned.
func FundamentalFromCorrespondences(d linalg.Decomposer, pts0, pts1 []r2.Point) (*mat.Dense, error) {
	if len(pts0) != len(pts1) {
		return nil, newInputError("correspondence sets have different lengths (%d != %d)", len(pts0), len(pts1))
	}
	if len(pts0) < MinimalSampleSize {
		return nil, newInputError("need at least %d correspondences, got %d", MinimalSampleSize, len(pts0))
	}

	a := mat.NewDense(len(pts0), 9, nil)
	for i := range pts0 {
		v0, v1 := pts0[i], pts1[i]
		a.SetRow(i, []float64{
			v1.X * v0.X, v1.X * v0.Y, v1.X,
			v1.Y * v0.X, v1.Y * v0.Y, v1.Y,
			v0.X, v0.Y, 1,
		})
	}

	nullSpace, err := linalg.NullVector(d, a)
	if err != nil {
		return nil, err
	}
	// reshape row-major into F
	return EnforceRank2(d, mat.NewDense(3, 3, nullSpace))
}

// EnforceRank2 returns the rank 2 matrix closest to f in Frobenius norm by zeroing its smallest
// singular value.
func EnforceRank2(d linalg.Decomposer, f mat.Matrix) (*mat.Dense, error) {
	if err := checkDims("fundamental matrix", f, 3, 3); err != nil {
		return nil, err
	}
	svd, err := d.Decompose(f)
	if err != nil {
		return nil, err
	}
	s := mat.NewDiagDense(3, []float64{svd.Values[0], svd.Values[1], 0})
	return linalg.Mul3(svd.U, s, svd.V.T()), nil
}

// ComposeFundamentalMatrix builds the fundamental matrix relating two cameras directly from their
// 3x4 projection matrices (Multiple View Geometry, 17.3). Entry (j, i) is the determinant of the
// two rows of p0 other than i stacked on the two rows of p1 other than j. The rows are taken in
// cyclic order, which carries the sign of each term.
func ComposeFundamentalMatrix(p0, p1 mat.Matrix) (*mat.Dense, error) {
	if err := checkDims("projection0", p0, 3, 4); err != nil {
		return nil, err
	}
	if err := checkDims("projection1", p1, 3, 4); err != nil {
		return nil, err
	}
	f := mat.NewDense(3, 3, nil)
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			a1 := mat.Row(nil, (i+1)%3, p0)
			a2 := mat.Row(nil, (i+2)%3, p0)
			b1 := mat.Row(nil, (j+1)%3, p1)
			b2 := mat.Row(nil, (j+2)%3, p1)
			f.Set(j, i, det4(a1, a2, b1, b2))
		}
	}
	return f, nil
}

// det4 is the determinant of the 4x4 matrix with rows a, b, c, d, expanded along the 2x2 minors
// of the first two rows.
func det4(a, b, c, d []float64) float64 {
	minor := func(u, v []float64, i, j int) float64 {
		return u[i]*v[j] - u[j]*v[i]
	}
	return minor(a, b, 0, 1)*minor(c, d, 2, 3) -
		minor(a, b, 0, 2)*minor(c, d, 1, 3) +
		minor(a, b, 0, 3)*minor(c, d, 1, 2) +
		minor(a, b, 1, 2)*minor(c, d, 0, 3) -
		minor(a, b, 1, 3)*minor(c, d, 0, 2) +
		minor(a, b, 2, 3)*minor(c, d, 0, 1)
}
