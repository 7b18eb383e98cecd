package coord

import "fmt"

// Matrix33 is a 3x3 real matrix stored in row-major order.
type Matrix33 [3][3]float64

// Identity33 returns the 3x3 identity matrix.
func Identity33() Matrix33 {
	return Matrix33{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// MulVec multiplies m by the column vector v.
func (m Matrix33) MulVec(v Vector3d) Vector3d {
	return Vector3d{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// Mul multiplies m by n, returning m*n.
func (m Matrix33) Mul(n Matrix33) Matrix33 {
	var r Matrix33
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			sum := 0.0
			for k := 0; k < 3; k++ {
				sum += m[i][k] * n[k][j]
			}
			r[i][j] = sum
		}
	}
	return r
}

// Transpose returns the transpose of m.
func (m Matrix33) Transpose() Matrix33 {
	var r Matrix33
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[j][i] = m[i][j]
		}
	}
	return r
}

func (m Matrix33) det() float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// Inverse returns the inverse of m by the adjugate/determinant method.
// It returns an error if m is singular.
func (m Matrix33) Inverse() (Matrix33, error) {
	d := m.det()
	if d == 0 {
		return Matrix33{}, fmt.Errorf("coord: matrix is singular, cannot invert")
	}
	invD := 1.0 / d
	var r Matrix33
	r[0][0] = (m[1][1]*m[2][2] - m[1][2]*m[2][1]) * invD
	r[0][1] = (m[0][2]*m[2][1] - m[0][1]*m[2][2]) * invD
	r[0][2] = (m[0][1]*m[1][2] - m[0][2]*m[1][1]) * invD
	r[1][0] = (m[1][2]*m[2][0] - m[1][0]*m[2][2]) * invD
	r[1][1] = (m[0][0]*m[2][2] - m[0][2]*m[2][0]) * invD
	r[1][2] = (m[0][2]*m[1][0] - m[0][0]*m[1][2]) * invD
	r[2][0] = (m[1][0]*m[2][1] - m[1][1]*m[2][0]) * invD
	r[2][1] = (m[0][1]*m[2][0] - m[0][0]*m[2][1]) * invD
	r[2][2] = (m[0][0]*m[1][1] - m[0][1]*m[1][0]) * invD
	return r, nil
}

// RowsFromVectors builds a Matrix33 whose rows are a, b, c.
func RowsFromVectors(a, b, c Vector3d) Matrix33 {
	return Matrix33{
		{a[0], a[1], a[2]},
		{b[0], b[1], b[2]},
		{c[0], c[1], c[2]},
	}
}
