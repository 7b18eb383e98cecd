package defect

import (
	"math"

	"github.com/san-kum/ddsim/internal/coord"
)

// glideTolerance bounds how far b.n may drift from zero and still be
// accepted as a glide dislocation.
const glideTolerance = 1e-9

// Dislocation is the Dislocation variant of Defect: a line defect
// confined to glide on its slip plane.
type Dislocation struct {
	Burgers Vector3d
	Line    Vector3d
	BMag    float64
	Mobile  bool

	// TauC overrides the simulation-wide default critical resolved
	// shear stress for this dislocation. Zero means "use the default".
	TauC float64

	// Rotation carries the dislocation's local frame (x along b-hat,
	// y along the plane normal, z along xi-hat) expressed in the
	// owning slip plane's frame.
	Rotation coord.RotationMatrix

	TotalStress  coord.Stress
	TotalForce   Vector3d
	Velocity     Vector3d
	StressHist   []coord.Stress
	ForceHist    []Vector3d
	VelocityHist []Vector3d
}

// Vector3d is an alias so callers of this package don't need to
// import coord separately for the common case.
type Vector3d = coord.Vector3d

// NewDislocation builds a mobile or pinned dislocation with burgers
// and line vectors expressed in the owning slip plane's frame, and
// derives its local rotation matrix from (b, n). It rejects a Burgers
// vector that is not confined to the glide plane, and a non-unit line
// vector.
func NewDislocation(burgers, line Vector3d, bmag float64, mobile bool, planeNormal Vector3d) (*Dislocation, error) {
	if math.Abs(burgers.Dot(planeNormal)) > glideTolerance {
		return nil, ErrGeometryInvalid
	}
	lineUnit := line.Unit()
	if math.Abs(lineUnit.Magnitude()-1.0) > 1e-6 {
		return nil, ErrGeometryInvalid
	}
	d := &Dislocation{
		Burgers: burgers,
		Line:    lineUnit,
		BMag:    bmag,
		Mobile:  mobile,
	}
	d.Rotation = d.calculateRotationMatrix(planeNormal)
	return d, nil
}

// calculateRotationMatrix builds the local triad (b-hat, n-hat,
// xi-hat) expressed in the plane frame, per the field-point
// convention in stressFieldLocal.
func (d *Dislocation) calculateRotationMatrix(planeNormal Vector3d) coord.RotationMatrix {
	bHat := d.Burgers.Unit()
	nHat := planeNormal.Unit()
	xiHat := d.Line.Unit()
	return coord.NewRotationMatrix(bHat, nHat, xiHat)
}

// SetTotalStress records the stress for the current iteration and
// appends it to the history.
func (d *Dislocation) SetTotalStress(s coord.Stress) {
	d.TotalStress = s
	d.StressHist = append(d.StressHist, s)
}

// SetTotalForce records the force for the current iteration and
// appends it to the history.
func (d *Dislocation) SetTotalForce(f Vector3d) {
	d.TotalForce = f
	d.ForceHist = append(d.ForceHist, f)
}

// SetVelocity records the velocity for the current iteration and
// appends it to the history. A pinned dislocation is always recorded
// with zero velocity regardless of v.
func (d *Dislocation) SetVelocity(v Vector3d) {
	if !d.Mobile {
		v = coord.ZeroVector3d
	}
	d.Velocity = v
	d.VelocityHist = append(d.VelocityHist, v)
}

// StressAtIteration returns the stress recorded at step i, or the
// zero tensor if i is out of range.
func (d *Dislocation) StressAtIteration(i int) coord.Stress {
	if i < 0 || i >= len(d.StressHist) {
		return coord.ZeroStress
	}
	return d.StressHist[i]
}

// ForceAtIteration returns the force recorded at step i, or the zero
// vector if i is out of range.
func (d *Dislocation) ForceAtIteration(i int) Vector3d {
	if i < 0 || i >= len(d.ForceHist) {
		return coord.ZeroVector3d
	}
	return d.ForceHist[i]
}

// VelocityAtIteration returns the velocity recorded at step i, or the
// zero vector if i is out of range.
func (d *Dislocation) VelocityAtIteration(i int) Vector3d {
	if i < 0 || i >= len(d.VelocityHist) {
		return coord.ZeroVector3d
	}
	return d.VelocityHist[i]
}

// stressFieldLocal is the analytic edge-dislocation stress at p,
// where p is expressed in the dislocation's local frame (x along
// b-hat, y along n-hat, z along xi-hat). At r=0 it returns the zero
// tensor: self-stress is excluded from superposition.
func (d *Dislocation) stressFieldLocal(p Vector3d, mu, nu float64) coord.Stress {
	x, y := p.X(), p.Y()
	r2 := x*x + y*y
	if r2 == 0 {
		return coord.ZeroStress
	}
	r4 := r2 * r2
	k := mu * d.BMag / (2 * math.Pi * (1 - nu))

	sxx := -k * y * (3*x*x + y*y) / r4
	syy := k * y * (x*x - y*y) / r4
	sxy := k * x * (x*x - y*y) / r4
	szz := nu * (sxx + syy)

	return coord.Stress{XX: sxx, YY: syy, ZZ: szz, XY: sxy, Frame: "dislocation-local"}
}

// StressField returns the stress this dislocation induces at a point
// p given as a displacement from the dislocation's position, both
// expressed in the enclosing slip plane's frame. The result is
// rotated back up into the plane frame.
func (d *Dislocation) StressField(p Vector3d, mu, nu float64) coord.Stress {
	local := d.Rotation.ToLocal(p)
	sigmaLocal := d.stressFieldLocal(local, mu, nu)
	return sigmaLocal.RotateToParent(d.Rotation, "plane")
}

// ForcePeachKoehler computes the glide force on the dislocation given
// the total stress sigma at its position, expressed in the slip
// plane's frame, and the critical resolved shear stress tauC. The
// resolved shear stress is sigma's xy component after rotation into
// the dislocation's local frame; below tauC the force is zero.
func (d *Dislocation) ForcePeachKoehler(sigma coord.Stress, tauC float64) Vector3d {
	local := sigma.RotateToLocal(d.Rotation, "dislocation-local")
	if math.Abs(local.XY) < tauC {
		return coord.ZeroVector3d
	}
	return sigma.MulVec(d.Burgers).Cross(d.Line)
}
