package estimator

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"goreg/domain/core"
)

// svdTol is the singular-value cutoff below which a direction is treated as
// null space when forming a pseudoinverse.
const svdTol = 1e-12

// pseudoInverse computes the Moore-Penrose pseudoinverse of a through a thin
// SVD, zeroing reciprocal singular values below svdTol.
func pseudoInverse(a mat.Matrix) (*mat.Dense, error) {
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, fmt.Errorf("%w: SVD failed to factorize", core.ErrSingular)
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	vals := svd.Values(nil)

	sigmaInv := mat.NewDense(len(vals), len(vals), nil)
	for i, s := range vals {
		if s > svdTol {
			sigmaInv.Set(i, i, 1/s)
		}
	}

	var tmp, pinv mat.Dense
	tmp.Mul(&v, sigmaInv)
	pinv.Mul(&tmp, u.T())
	return &pinv, nil
}

// PseudoInverse computes the Moore-Penrose pseudoinverse. The specification
// tests use it on covariance differences that need not be positive definite.
func PseudoInverse(a mat.Matrix) (*mat.Dense, error) {
	return pseudoInverse(a)
}

// invertOrPseudo inverts a square matrix, falling back to the pseudoinverse
// when the matrix is singular or badly conditioned.
func invertOrPseudo(a *mat.Dense) (*mat.Dense, error) {
	var inv mat.Dense
	if err := inv.Inverse(a); err == nil {
		return &inv, nil
	}
	return pseudoInverse(a)
}

// subMatrix extracts the rows and columns of a square matrix given by idx.
func subMatrix(a *mat.Dense, idx []int) *mat.Dense {
	out := mat.NewDense(len(idx), len(idx), nil)
	for i, ri := range idx {
		for j, cj := range idx {
			out.Set(i, j, a.At(ri, cj))
		}
	}
	return out
}

// quadForm computes v' A v.
func quadForm(v []float64, a *mat.Dense) float64 {
	total := 0.0
	for i := range v {
		for j := range v {
			total += v[i] * a.At(i, j) * v[j]
		}
	}
	return total
}
