package coord

// Stress is a symmetric 3x3 stress tensor, stored as its six
// independent components plus the name of the frame it is currently
// expressed in. The frame tag is informational only; every operation
// that changes frame returns a new Stress with the tag updated by the
// caller.
type Stress struct {
	XX, YY, ZZ float64
	XY, XZ, YZ float64
	Frame      string
}

// ZeroStress is the additive identity, with no frame assigned.
var ZeroStress = Stress{}

// ToMatrix33 expands the six independent components into a full
// symmetric 3x3 matrix.
func (s Stress) ToMatrix33() Matrix33 {
	return Matrix33{
		{s.XX, s.XY, s.XZ},
		{s.XY, s.YY, s.YZ},
		{s.XZ, s.YZ, s.ZZ},
	}
}

// StressFromMatrix33 builds a Stress from the symmetric part of m,
// tagged with the given frame name.
func StressFromMatrix33(m Matrix33, frame string) Stress {
	return Stress{
		XX: m[0][0], YY: m[1][1], ZZ: m[2][2],
		XY: 0.5 * (m[0][1] + m[1][0]),
		XZ: 0.5 * (m[0][2] + m[2][0]),
		YZ: 0.5 * (m[1][2] + m[2][1]),
		Frame: frame,
	}
}

func (s Stress) Add(o Stress) Stress {
	return Stress{
		XX: s.XX + o.XX, YY: s.YY + o.YY, ZZ: s.ZZ + o.ZZ,
		XY: s.XY + o.XY, XZ: s.XZ + o.XZ, YZ: s.YZ + o.YZ,
		Frame: s.Frame,
	}
}

func (s Stress) Scale(c float64) Stress {
	return Stress{
		XX: s.XX * c, YY: s.YY * c, ZZ: s.ZZ * c,
		XY: s.XY * c, XZ: s.XZ * c, YZ: s.YZ * c,
		Frame: s.Frame,
	}
}

// MulVec returns sigma * b, treating the tensor as a linear map.
func (s Stress) MulVec(b Vector3d) Vector3d {
	return s.ToMatrix33().MulVec(b)
}

// RotateToParent applies R*sigma*R^T, where R is a rotation matrix
// taking local coordinates to the parent frame.
func (s Stress) RotateToParent(r RotationMatrix, parentFrame string) Stress {
	m := Matrix33(r).Mul(s.ToMatrix33()).Mul(Matrix33(r).Transpose())
	return StressFromMatrix33(m, parentFrame)
}

// RotateToLocal applies R^T*sigma*R, the inverse of RotateToParent.
func (s Stress) RotateToLocal(r RotationMatrix, localFrame string) Stress {
	rt := Matrix33(r).Transpose()
	m := rt.Mul(s.ToMatrix33()).Mul(Matrix33(r))
	return StressFromMatrix33(m, localFrame)
}
