// Package slipsystem groups the slip planes that share a common slip
// direction and normal within a grain.
package slipsystem

import (
	"github.com/san-kum/ddsim/internal/coord"
	"github.com/san-kum/ddsim/internal/slipplane"
)

// SlipSystem is a family of parallel slip planes.
type SlipSystem struct {
	Direction coord.Vector3d
	Normal    coord.Vector3d
	Frame     *coord.CoordinateSystem
	Planes    []*slipplane.SlipPlane
}

// New builds a slip system nested under parent, with the given slip
// direction and normal expressed in the grain's local frame.
func New(direction, normal coord.Vector3d, parent *coord.CoordinateSystem) *SlipSystem {
	frame := coord.NewCoordinateSystem("slipsystem", coord.ZeroVector3d, coord.IdentityRotation(), parent)
	return &SlipSystem{
		Direction: direction.Unit(),
		Normal:    normal.Unit(),
		Frame:     frame,
		Planes:    nil,
	}
}

// AddPlane appends a plane owned by this slip system, nesting the
// plane's frame under the slip system's frame unless the caller has
// already assigned one.
func (s *SlipSystem) AddPlane(p *slipplane.SlipPlane) {
	if p.Frame == nil {
		p.Frame = coord.NewCoordinateSystem("slipplane", p.Origin, coord.IdentityRotation(), s.Frame)
	}
	s.Planes = append(s.Planes, p)
}

// PropagateAppliedStress rotates a grain-local applied stress down
// into every plane owned by this slip system.
func (s *SlipSystem) PropagateAppliedStress(grainLocal coord.Stress) {
	systemLocal := s.Frame.TensorToLocal(grainLocal)
	for _, p := range s.Planes {
		if p.Frame != nil {
			p.AppliedLocal = p.Frame.TensorToLocal(systemLocal)
		} else {
			p.AppliedLocal = systemLocal
		}
	}
}
