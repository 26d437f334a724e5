package transform

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/twoview/linalg"
)

func TestTriangulatePointTwoViews(t *testing.T) {
	s := newScene(t, 25, 20)
	projections := []mat.Matrix{s.p0, s.p1}
	for i, world := range s.world {
		obs := Convert2DPointsToHomogeneousPoints(s.pts0[i : i+1])
		obs = append(obs, Convert2DPointsToHomogeneousPoints(s.pts1[i:i+1])...)
		hp, err := TriangulatePoint(projections, obs)
		test.That(t, err, test.ShouldBeNil)
		pt, err := hp.Euclidean()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, pt.Sub(world).Norm(), test.ShouldBeLessThan, 1e-6)
	}
}

func TestTriangulatePointThreeViews(t *testing.T) {
	s := newScene(t, 10, 21)
	p2, err := ProjectionMatrix(s.k, rotationXY(-0.1, 0.15), r3.Vector{X: 0.8, Y: -0.3, Z: 0.1})
	test.That(t, err, test.ShouldBeNil)
	projections := []mat.Matrix{s.p0, s.p1, p2}

	for i, world := range s.world {
		px2, err := Project(p2, world)
		test.That(t, err, test.ShouldBeNil)
		// observations scaled by arbitrary nonzero w
		obs := []r3.Vector{
			{X: s.pts0[i].X, Y: s.pts0[i].Y, Z: 1},
			{X: 2 * s.pts1[i].X, Y: 2 * s.pts1[i].Y, Z: 2},
			{X: -0.5 * px2.X, Y: -0.5 * px2.Y, Z: -0.5},
		}
		hp, err := TriangulatePoint(projections, obs)
		test.That(t, err, test.ShouldBeNil)
		pt, err := hp.Euclidean()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, pt.Sub(world).Norm(), test.ShouldBeLessThan, 1e-6)
	}
}

func TestTriangulatePointIsUnitVector(t *testing.T) {
	s := newScene(t, 1, 22)
	obs := Convert2DPointsToHomogeneousPoints(append(s.pts0[:1:1], s.pts1[0]))
	hp, err := TriangulatePoint([]mat.Matrix{s.p0, s.p1}, obs)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, floats4Norm(hp.Slice()), test.ShouldAlmostEqual, 1, 1e-9)
}

func floats4Norm(v []float64) float64 {
	sum := 0.
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func TestTriangulatePointErrors(t *testing.T) {
	s := newScene(t, 1, 23)
	obs := Convert2DPointsToHomogeneousPoints(append(s.pts0[:1:1], s.pts1[0]))

	_, err := TriangulatePoint([]mat.Matrix{s.p0}, obs[:1])
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)

	_, err = TriangulatePoint([]mat.Matrix{s.p0, s.p1}, obs[:1])
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)

	_, err = TriangulatePoint([]mat.Matrix{s.p0, linalg.Eye(3)}, obs)
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)

	_, err = TriangulatePoint([]mat.Matrix{s.p0, s.p1}, []r3.Vector{obs[0], {X: 1, Y: 2}})
	test.That(t, errors.Is(err, ErrNumeric), test.ShouldBeTrue)

	_, err = TriangulatePointWithDecomposer(failingDecomposer{}, []mat.Matrix{s.p0, s.p1}, obs)
	test.That(t, errors.Is(err, linalg.ErrFactorizationFailed), test.ShouldBeTrue)
}

func TestHomogeneousPointEuclidean(t *testing.T) {
	pt, err := HomogeneousPoint{2, 4, 6, 2}.Euclidean()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pt, test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 3})

	lifted := NewHomogeneousPoint(r3.Vector{X: 1, Y: 2, Z: 3})
	test.That(t, lifted.Slice(), test.ShouldResemble, []float64{1, 2, 3, 1})

	_, err = HomogeneousPoint{1, 2, 3, 0}.Euclidean()
	test.That(t, errors.Is(err, ErrNumeric), test.ShouldBeTrue)
	_, err = HomogeneousPoint{1, 2, 3, math.NaN()}.Euclidean()
	test.That(t, errors.Is(err, ErrNumeric), test.ShouldBeTrue)
}
