package transform

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/twoview/linalg"
)

// CamPose stores the 3x4 pose matrix as well as the 3D Rotation and Translation matrices.
type CamPose struct {
	PoseMat     *mat.Dense
	Rotation    *mat.Dense
	Translation r3.Vector
}

// NewCamPoseFromMat creates a pointer to a Camera pose from a 3x4 pose dense matrix.
func NewCamPoseFromMat(pose *mat.Dense) *CamPose {
	return &CamPose{
		PoseMat:     pose,
		Rotation:    mat.DenseCopyOf(pose.Slice(0, 3, 0, 3)),
		Translation: r3.Vector{X: pose.At(0, 3), Y: pose.At(1, 3), Z: pose.At(2, 3)},
	}
}

// EssentialFromFundamental returns the essential matrix K1^T F K0 of the fundamental matrix f, with
// its singular values projected to (1, 1, 0).
func EssentialFromFundamental(d linalg.Decomposer, k0, k1, f mat.Matrix) (*mat.Dense, error) {
	if err := checkDims("k0", k0, 3, 3); err != nil {
		return nil, err
	}
	if err := checkDims("k1", k1, 3, 3); err != nil {
		return nil, err
	}
	if err := checkDims("fundamental matrix", f, 3, 3); err != nil {
		return nil, err
	}
	ess := linalg.Mul3(k1.T(), f, k0)
	svd, err := d.Decompose(ess)
	if err != nil {
		return nil, err
	}
	s := mat.NewDiagDense(3, []float64{1, 1, 0})
	return linalg.Mul3(svd.U, s, svd.V.T()), nil
}

// DecomposeEssentialMatrix decomposes the Essential matrix into 2 possible 3D rotations and a
// unit 3D translation known up to sign.
func DecomposeEssentialMatrix(d linalg.Decomposer, essMat mat.Matrix) (*mat.Dense, *mat.Dense, r3.Vector, error) {
	svd, err := d.Decompose(essMat)
	if err != nil {
		return nil, nil, r3.Vector{}, err
	}
	u, vt := svd.U, svd.VT()
	// check determinant sign of U and V
	if mat.Det(u) < 0 {
		u.Scale(-1, u)
	}
	if mat.Det(vt) < 0 {
		vt.Scale(-1, vt)
	}
	w := mat.NewDense(3, 3, []float64{
		0, 1, 0,
		-1, 0, 0,
		0, 0, 1,
	})
	// UWV^T and UW^TV^T
	rot1 := linalg.Mul3(u, w, vt)
	rot2 := linalg.Mul3(u, w.T(), vt)
	t := r3.Vector{X: u.At(0, 2), Y: u.At(1, 2), Z: u.At(2, 2)}
	return rot1, rot2, t, nil
}

// adjustPoseSign flips the pose when its rotation part is a reflection.
func adjustPoseSign(pose *mat.Dense) *mat.Dense {
	if mat.Det(pose.Slice(0, 3, 0, 3)) < 0 {
		pose.Scale(-1, pose)
	}
	return pose
}

// CandidatePoses computes the 4 [R | t] poses compatible with the essential matrix.
func CandidatePoses(d linalg.Decomposer, essMat mat.Matrix) ([]*mat.Dense, error) {
	rot1, rot2, t, err := DecomposeEssentialMatrix(d, essMat)
	if err != nil {
		return nil, err
	}
	tCol := mat.NewDense(3, 1, []float64{t.X, t.Y, t.Z})
	var tOpp mat.Dense
	tOpp.Scale(-1, tCol)

	poses := make([]*mat.Dense, 0, 4)
	for _, pair := range []struct {
		rot   *mat.Dense
		trans *mat.Dense
	}{{rot1, tCol}, {rot1, &tOpp}, {rot2, tCol}, {rot2, &tOpp}} {
		var pose mat.Dense
		pose.Augment(pair.rot, pair.trans)
		poses = append(poses, adjustPoseSign(&pose))
	}
	return poses, nil
}

// countPositiveDepth triangulates every correspondence with the first camera at the origin and the
// second at pose, and counts the points lying in front of both cameras.
func countPositiveDepth(d linalg.Decomposer, pose, k0, k1 mat.Matrix, pts0, pts1 []r2.Point) (int, error) {
	p0, err := ProjectionMatrix(k0, linalg.Eye(3), r3.Vector{})
	if err != nil {
		return 0, err
	}
	var p1 mat.Dense
	p1.Mul(k1, pose)
	row3 := r3.Vector{X: pose.At(2, 0), Y: pose.At(2, 1), Z: pose.At(2, 2)}
	tz := pose.At(2, 3)

	projections := []mat.Matrix{p0, &p1}
	nPositive := 0
	for i := range pts0 {
		obs := Convert2DPointsToHomogeneousPoints([]r2.Point{pts0[i], pts1[i]})
		hp, err := TriangulatePointWithDecomposer(d, projections, obs)
		if err != nil {
			return 0, err
		}
		pt, err := hp.Euclidean()
		if err != nil {
			// at infinity, in front of neither camera
			continue
		}
		if pt.Z > 0 && row3.Dot(pt)+tz > 0 {
			nPositive++
		}
	}
	return nPositive, nil
}

// RecoverPose estimates the pose of the second camera relative to the first from the fundamental
// matrix relating them, their intrinsics and inlying correspondences. Of the four poses compatible
// with the essential matrix it keeps the one that puts the most triangulated points in front of both
// cameras. The translation is known up to scale.
func RecoverPose(d linalg.Decomposer, f, k0, k1 mat.Matrix, pts0, pts1 []r2.Point) (*CamPose, error) {
	if len(pts0) != len(pts1) {
		return nil, newInputError("correspondence sets have different lengths (%d != %d)", len(pts0), len(pts1))
	}
	if len(pts0) == 0 {
		return nil, newInputError("need at least one correspondence to recover a pose")
	}
	essMat, err := EssentialFromFundamental(d, k0, k1, f)
	if err != nil {
		return nil, err
	}
	poses, err := CandidatePoses(d, essMat)
	if err != nil {
		return nil, err
	}
	best, bestCount := -1, 0
	for i, pose := range poses {
		n, err := countPositiveDepth(d, pose, k0, k1, pts0, pts1)
		if err != nil {
			return nil, err
		}
		if n > bestCount {
			best, bestCount = i, n
		}
	}
	if best < 0 {
		return nil, newNumericError("no candidate pose puts any point in front of both cameras")
	}
	return NewCamPoseFromMat(poses[best]), nil
}
