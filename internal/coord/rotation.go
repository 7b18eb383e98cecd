package coord

// RotationMatrix is an orthonormal Matrix33 whose columns are a local
// orthonormal triad expressed in the parent (global) frame. Applying
// it to a vector's local components yields the vector's parent-frame
// components; its transpose rotates the other way.
type RotationMatrix Matrix33

// NewRotationMatrix builds a RotationMatrix from an ordered local
// triad (x, y, z), each given as a unit vector expressed in the
// parent frame. The triad is expected to be orthonormal; neither this
// constructor nor CoordinateSystem verifies it (IsOrthonormal does).
func NewRotationMatrix(localX, localY, localZ Vector3d) RotationMatrix {
	return RotationMatrix{
		{localX[0], localY[0], localZ[0]},
		{localX[1], localY[1], localZ[1]},
		{localX[2], localY[2], localZ[2]},
	}
}

// IdentityRotation is the rotation matrix that leaves every frame
// unchanged.
func IdentityRotation() RotationMatrix {
	return RotationMatrix(Identity33())
}

// Transpose returns the inverse rotation, since a RotationMatrix is
// orthonormal.
func (r RotationMatrix) Transpose() RotationMatrix {
	return RotationMatrix(Matrix33(r).Transpose())
}

// ToParent maps a vector's local components into the parent frame.
func (r RotationMatrix) ToParent(v Vector3d) Vector3d {
	return Matrix33(r).MulVec(v)
}

// ToLocal maps a vector's parent-frame components into the local
// frame.
func (r RotationMatrix) ToLocal(v Vector3d) Vector3d {
	return Matrix33(r.Transpose()).MulVec(v)
}

// IsOrthonormal reports whether r's columns form an orthonormal triad
// within tol.
func (r RotationMatrix) IsOrthonormal(tol float64) bool {
	cols := [3]Vector3d{
		{r[0][0], r[1][0], r[2][0]},
		{r[0][1], r[1][1], r[2][1]},
		{r[0][2], r[1][2], r[2][2]},
	}
	for i := 0; i < 3; i++ {
		if abs(cols[i].Magnitude()-1.0) > tol {
			return false
		}
		for j := i + 1; j < 3; j++ {
			if abs(cols[i].Dot(cols[j])) > tol {
				return false
			}
		}
	}
	return true
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
