package coord

import (
	"math"
	"testing"
)

func matrixClose(a, b Matrix33, tol float64) bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(a[i][j]-b[i][j]) > tol {
				return false
			}
		}
	}
	return true
}

func TestMatrixIdentityMulVec(t *testing.T) {
	v := NewVector3d(1, 2, 3)
	if got := Identity33().MulVec(v); got != v {
		t.Errorf("Identity33().MulVec(v) = %v, want %v", got, v)
	}
}

func TestMatrixMulAssociativity(t *testing.T) {
	a := Matrix33{{1, 2, 0}, {0, 1, 3}, {4, 0, 1}}
	b := Matrix33{{2, 0, 1}, {1, 1, 0}, {0, 3, 1}}
	c := Matrix33{{1, 1, 1}, {0, 2, 0}, {3, 0, 2}}

	left := a.Mul(b).Mul(c)
	right := a.Mul(b.Mul(c))
	if !matrixClose(left, right, 1e-9) {
		t.Errorf("matrix multiplication not associative:\n%v\nvs\n%v", left, right)
	}
}

func TestMatrixTransposeInvolution(t *testing.T) {
	m := Matrix33{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	if got := m.Transpose().Transpose(); got != m {
		t.Errorf("double transpose = %v, want %v", got, m)
	}
}

func TestMatrixInverse(t *testing.T) {
	m := Matrix33{{2, 0, 0}, {0, 3, 0}, {0, 0, 4}}
	inv, err := m.Inverse()
	if err != nil {
		t.Fatalf("Inverse returned error: %v", err)
	}
	if !matrixClose(m.Mul(inv), Identity33(), 1e-9) {
		t.Errorf("m * inverse(m) != identity, got %v", m.Mul(inv))
	}
}

func TestMatrixInverseSingular(t *testing.T) {
	m := Matrix33{{1, 2, 3}, {2, 4, 6}, {0, 1, 1}}
	if _, err := m.Inverse(); err == nil {
		t.Errorf("expected error inverting singular matrix")
	}
}
