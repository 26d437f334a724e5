package transform

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/twoview/linalg"
)

var testIntrinsics = PinholeCameraIntrinsics{
	Width:  640,
	Height: 480,
	Fx:     800,
	Fy:     810,
	Ppx:    320,
	Ppy:    240,
}

// rotationXY rotates by ay around the y axis then by ax around the x axis.
func rotationXY(ax, ay float64) *mat.Dense {
	rx := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, math.Cos(ax), -math.Sin(ax),
		0, math.Sin(ax), math.Cos(ax),
	})
	ry := mat.NewDense(3, 3, []float64{
		math.Cos(ay), 0, math.Sin(ay),
		0, 1, 0,
		-math.Sin(ay), 0, math.Cos(ay),
	})
	var r mat.Dense
	r.Mul(rx, ry)
	return &r
}

// scene is a set of world points seen by two cameras, the first at the origin.
type scene struct {
	k           *mat.Dense
	rotation    *mat.Dense
	translation r3.Vector
	p0, p1      *mat.Dense
	world       []r3.Vector
	pts0, pts1  []r2.Point
}

func newScene(t *testing.T, n int, seed int64) *scene {
	t.Helper()
	rnd := rand.New(rand.NewSource(seed))
	s := &scene{
		k:           testIntrinsics.GetCameraMatrix(),
		rotation:    rotationXY(0.05, -0.2),
		translation: r3.Vector{X: -1, Y: 0.1, Z: 0.2},
	}
	var err error
	s.p0, err = ProjectionMatrix(s.k, linalg.Eye(3), r3.Vector{})
	test.That(t, err, test.ShouldBeNil)
	s.p1, err = ProjectionMatrix(s.k, s.rotation, s.translation)
	test.That(t, err, test.ShouldBeNil)

	for i := 0; i < n; i++ {
		pt := r3.Vector{
			X: rnd.Float64()*4 - 2,
			Y: rnd.Float64()*3 - 1.5,
			Z: rnd.Float64()*4 + 4,
		}
		px0, err := Project(s.p0, pt)
		test.That(t, err, test.ShouldBeNil)
		px1, err := Project(s.p1, pt)
		test.That(t, err, test.ShouldBeNil)
		s.world = append(s.world, pt)
		s.pts0 = append(s.pts0, px0)
		s.pts1 = append(s.pts1, px1)
	}
	return s
}

// withOutliers appends m correspondences with independent random coordinates in the image.
func (s *scene) withOutliers(m int, seed int64) ([]r2.Point, []r2.Point) {
	rnd := rand.New(rand.NewSource(seed))
	pts0 := append([]r2.Point{}, s.pts0...)
	pts1 := append([]r2.Point{}, s.pts1...)
	for i := 0; i < m; i++ {
		pts0 = append(pts0, r2.Point{X: rnd.Float64() * 640, Y: rnd.Float64() * 480})
		pts1 = append(pts1, r2.Point{X: rnd.Float64() * 640, Y: rnd.Float64() * 480})
	}
	return pts0, pts1
}

func (s *scene) groundTruthF(t *testing.T) *mat.Dense {
	t.Helper()
	f, err := ComposeFundamentalMatrix(s.p0, s.p1)
	test.That(t, err, test.ShouldBeNil)
	return f
}

// upToScaleDistance is the Frobenius distance between a and b after scaling both to unit norm.
func upToScaleDistance(a, b mat.Matrix) float64 {
	var diff mat.Dense
	diff.Sub(linalg.FrobeniusNormalized(a), linalg.FrobeniusNormalized(b))
	return mat.Norm(&diff, 2)
}
