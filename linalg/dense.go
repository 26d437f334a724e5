package linalg

import "gonum.org/v1/gonum/mat"

// Transpose returns a new dense copy of the transpose of m.
func Transpose(m mat.Matrix) *mat.Dense {
	return mat.DenseCopyOf(m.T())
}

// Eye creates an identity matrix of size nxn.
func Eye(n int) *mat.Dense {
	if n <= 0 {
		return nil
	}
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// Mul3 returns a * b * c.
func Mul3(a, b, c mat.Matrix) *mat.Dense {
	var ab, abc mat.Dense
	ab.Mul(a, b)
	abc.Mul(&ab, c)
	return &abc
}

// FrobeniusNormalized returns a copy of m scaled to unit Frobenius norm. The sign is chosen so that
// the entry of largest magnitude is positive, which makes matrices defined up to scale comparable.
func FrobeniusNormalized(m mat.Matrix) *mat.Dense {
	out := mat.DenseCopyOf(m)
	norm := mat.Norm(out, 2)
	if norm == 0 {
		return out
	}
	r, c := out.Dims()
	largest := 0.
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := out.At(i, j); v*v > largest*largest {
				largest = v
			}
		}
	}
	if largest < 0 {
		norm = -norm
	}
	out.Scale(1/norm, out)
	return out
}
