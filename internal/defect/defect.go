// Package defect implements the shared defect record and its two
// active variants, Dislocation and Source, that populate a slip
// plane.
package defect

import "github.com/san-kum/ddsim/internal/coord"

// Defect is the shared record for every entity that can sit on a slip
// plane's sorted list: free surfaces and grain boundaries (sentinels
// that bound the glide line), obstacles, dislocations and dislocation
// sources. Only the field matching Kind is populated.
type Defect struct {
	ID       int
	Position coord.Vector3d
	Kind     Kind

	Disloc *Dislocation
	Source *Source
}

// NewSentinel builds a FreeSurface or GrainBoundary defect at pos.
// Passing any other kind panics, since sentinels are the only bare
// kinds without a payload.
func NewSentinel(id int, pos coord.Vector3d, kind Kind) Defect {
	if kind != FreeSurface && kind != GrainBoundary {
		panic("defect: NewSentinel requires FreeSurface or GrainBoundary")
	}
	return Defect{ID: id, Position: pos, Kind: kind}
}

// NewObstacle builds an Obstacle defect at pos.
func NewObstacle(id int, pos coord.Vector3d) Defect {
	return Defect{ID: id, Position: pos, Kind: Obstacle}
}

// NewDislocationDefect wraps d as a defect at pos.
func NewDislocationDefect(id int, pos coord.Vector3d, d *Dislocation) Defect {
	return Defect{ID: id, Position: pos, Kind: DislocationKind, Disloc: d}
}

// NewSourceDefect wraps s as a defect at pos.
func NewSourceDefect(id int, pos coord.Vector3d, s *Source) Defect {
	return Defect{ID: id, Position: pos, Kind: SourceKind, Source: s}
}

// IsMobile reports whether the defect can be translated by Advance.
// Sentinels, obstacles and sources never move; a dislocation moves
// unless pinned.
func (d Defect) IsMobile() bool {
	return d.Kind == DislocationKind && d.Disloc != nil && d.Disloc.Mobile
}

// ImageStress is the pluggable contribution to the interaction stress
// contributed by boundary-like defects (free surfaces, grain
// boundaries). No kind currently overrides the zero default; the hook
// exists so a specialization can add image-charge terms without
// touching the summation loop in slipplane.
func (d Defect) ImageStress(at coord.Vector3d) coord.Stress {
	return coord.ZeroStress
}

// StressFieldAt returns the stress this defect contributes at a point
// p, both expressed in the slip plane's local frame. Only dislocations
// contribute a non-image stress field; every other kind contributes
// zero plus whatever ImageStress supplies.
func (d Defect) StressFieldAt(p coord.Vector3d, mu, nu float64) coord.Stress {
	s := d.ImageStress(p)
	if d.Kind == DislocationKind && d.Disloc != nil {
		s = d.Disloc.StressField(p.Sub(d.Position), mu, nu).Add(s)
	}
	return s
}
