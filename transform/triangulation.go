package transform

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/twoview/linalg"
)

// TriangulatePoint finds the homogeneous 3D point that best explains the observations, one per
// camera, with the linear method of Multiple View Geometry, 12.2. Observations are homogeneous
// image points. The result is defined up to scale; callers must check it is not at infinity before
// converting it with Euclidean.
func TriangulatePoint(projections []mat.Matrix, observations []r3.Vector) (HomogeneousPoint, error) {
	return TriangulatePointWithDecomposer(linalg.GonumDecomposer{}, projections, observations)
}

// TriangulatePointWithDecomposer is TriangulatePoint with a caller supplied SVD.
func TriangulatePointWithDecomposer(d linalg.Decomposer, projections []mat.Matrix, observations []r3.Vector) (HomogeneousPoint, error) {
	if len(projections) != len(observations) {
		return HomogeneousPoint{}, newInputError("got %d projections for %d observations", len(projections), len(observations))
	}
	if len(projections) < 2 {
		return HomogeneousPoint{}, newInputError("need at least 2 views to triangulate, got %d", len(projections))
	}

	a := mat.NewDense(2*len(projections), 4, nil)
	for i, p := range projections {
		if err := checkDims("projection", p, 3, 4); err != nil {
			return HomogeneousPoint{}, err
		}
		obs := observations[i]
		if obs.Z == 0 {
			return HomogeneousPoint{}, newNumericError("observation %d is at infinity", i)
		}
		x, y := obs.X/obs.Z, obs.Y/obs.Z
		// x (cross) PX = 0 gives two independent equations per view
		for col := 0; col < 4; col++ {
			a.Set(2*i, col, x*p.At(2, col)-p.At(0, col))
			a.Set(2*i+1, col, y*p.At(2, col)-p.At(1, col))
		}
	}

	sol, err := linalg.NullVector(d, a)
	if err != nil {
		return HomogeneousPoint{}, err
	}
	return HomogeneousPoint{sol[0], sol[1], sol[2], sol[3]}, nil
}
