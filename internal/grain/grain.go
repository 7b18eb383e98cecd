// Package grain models a single crystallite: its boundary polygon,
// crystallographic orientation, and the slip systems it hosts.
package grain

import (
	"math"

	"github.com/san-kum/ddsim/internal/coord"
	"github.com/san-kum/ddsim/internal/slipsystem"
)

// Grain is one crystallite of a polycrystal.
type Grain struct {
	Boundary    []coord.Vector3d
	Orientation coord.Vector3d
	Frame       *coord.CoordinateSystem
	SlipSystems []*slipsystem.SlipSystem
}

// New builds a grain nested under parent, with the boundary polygon
// and orientation as loaded from the tessellation and orientations
// files. The grain's basis is derived from the orientation's Euler
// angles by rotating about z then the rotated x, matching the
// convention used to build the coordinate chain scenario.
func New(boundary []coord.Vector3d, orientation coord.Vector3d, parent *coord.CoordinateSystem) *Grain {
	origin := centroid(boundary)
	basis := basisFromEulerZX(orientation)
	frame := coord.NewCoordinateSystem("grain", origin, basis, parent)
	return &Grain{
		Boundary:    boundary,
		Orientation: orientation,
		Frame:       frame,
	}
}

// AddSlipSystem appends a slip system owned by this grain.
func (g *Grain) AddSlipSystem(s *slipsystem.SlipSystem) {
	g.SlipSystems = append(g.SlipSystems, s)
}

// PropagateAppliedStress rotates the polycrystal-local applied stress
// down into every slip system, and transitively every slip plane, in
// this grain.
func (g *Grain) PropagateAppliedStress(polycrystalLocal coord.Stress) {
	grainLocal := g.Frame.TensorToLocal(polycrystalLocal)
	for _, s := range g.SlipSystems {
		s.PropagateAppliedStress(grainLocal)
	}
}

// centroid returns the arithmetic mean of a closed polygon's vertices,
// used as the grain's frame origin when none is specified explicitly.
func centroid(pts []coord.Vector3d) coord.Vector3d {
	if len(pts) == 0 {
		return coord.ZeroVector3d
	}
	sum := coord.ZeroVector3d
	for _, p := range pts {
		sum = sum.Add(p)
	}
	return sum.Scale(1.0 / float64(len(pts)))
}

// basisFromEulerZX builds an orthonormal triad by rotating the
// standard axes by orientation.X() about z, then by orientation.Y()
// about the rotated x. orientation.Z() is reserved for future
// lattice-rotation refresh and currently unused, matching the source
// file's three-component orientation vector with only two angles
// exercised by the 2-D formulation.
func basisFromEulerZX(orientation coord.Vector3d) coord.RotationMatrix {
	thetaZ := orientation.X()
	thetaX := orientation.Y()

	cz, sz := math.Cos(thetaZ), math.Sin(thetaZ)
	rz := coord.NewRotationMatrix(
		coord.NewVector3d(cz, sz, 0),
		coord.NewVector3d(-sz, cz, 0),
		coord.NewVector3d(0, 0, 1),
	)

	cx, sx := math.Cos(thetaX), math.Sin(thetaX)
	localXAfterZ := rz.ToParent(coord.NewVector3d(1, 0, 0))
	localYAfterZ := rz.ToParent(coord.NewVector3d(0, cx, sx))
	localZAfterZ := rz.ToParent(coord.NewVector3d(0, -sx, cx))

	return coord.NewRotationMatrix(localXAfterZ, localYAfterZ, localZAfterZ)
}
