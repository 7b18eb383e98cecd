package config

import "github.com/san-kum/ddsim/internal/coord"

// AppliedStressTensor builds the symmetric stress tensor from the
// six-component appliedStress record, tagged as expressed in the
// polycrystal's base frame.
func (p *Params) AppliedStressTensor() coord.Stress {
	a := p.AppliedStress
	return coord.Stress{XX: a[0], YY: a[1], ZZ: a[2], XY: a[3], XZ: a[4], YZ: a[5], Frame: "base"}
}
