// Package linalg holds the dense linear algebra capabilities the geometry code is built on.
package linalg

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrFactorizationFailed is returned when a decomposition does not converge.
var ErrFactorizationFailed = errors.New("failed to factorize matrix")

// SVD stores the factors of a singular value decomposition A = U * diag(Values) * V^T.
// Values are sorted in descending order. U is m x m and V is n x n.
type SVD struct {
	U      *mat.Dense
	Values []float64
	V      *mat.Dense
}

// S returns the singular values as an m x n rectangular diagonal matrix.
func (s *SVD) S() *mat.Dense {
	m, _ := s.U.Dims()
	n, _ := s.V.Dims()
	sigma := mat.NewDense(m, n, nil)
	for i, v := range s.Values {
		sigma.Set(i, i, v)
	}
	return sigma
}

// VT returns the transpose of V.
func (s *SVD) VT() *mat.Dense {
	return Transpose(s.V)
}

// A Decomposer computes a full singular value decomposition.
type Decomposer interface {
	Decompose(a mat.Matrix) (*SVD, error)
}

// GonumDecomposer decomposes matrices with gonum's LAPACK backed SVD.
type GonumDecomposer struct{}

// Decompose performs a full SVD of a.
func (GonumDecomposer) Decompose(a mat.Matrix) (*SVD, error) {
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDFull); !ok {
		r, c := a.Dims()
		return nil, errors.Wrapf(ErrFactorizationFailed, "%dx%d", r, c)
	}
	u, v := &mat.Dense{}, &mat.Dense{}
	svd.UTo(u)
	svd.VTo(v)
	return &SVD{U: u, Values: svd.Values(nil), V: v}, nil
}

// NullVector returns the right singular vector of a associated with its smallest singular value,
// i.e. the last column of the full V. For a with fewer rows than columns this is a vector of the
// exact null space.
func NullVector(d Decomposer, a mat.Matrix) ([]float64, error) {
	svd, err := d.Decompose(a)
	if err != nil {
		return nil, err
	}
	_, n := svd.V.Dims()
	return mat.Col(nil, n-1, svd.V), nil
}
