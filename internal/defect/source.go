package defect

import (
	"math"
)

// Source is the DislocationSource variant of Defect: a Frank-Read
// source that integrates resolved shear stress over consecutive
// iterations and emits a dipole once its criterion is met.
type Source struct {
	Burgers Vector3d
	Line    Vector3d
	BMag    float64
	TauC    float64
	Nc      int
	LDipole float64

	Counter   int
	prevSign  int
}

// NewSource builds a source. It rejects a non-positive critical
// resolved shear stress or required iteration count at construction,
// matching the load-time SourceMisconfigured check.
func NewSource(burgers, line Vector3d, bmag, tauC float64, nc int, lDipole float64) (*Source, error) {
	if tauC <= 0 || nc <= 0 {
		return nil, ErrSourceMisconfigured
	}
	return &Source{
		Burgers: burgers,
		Line:    line.Unit(),
		BMag:    bmag,
		TauC:    tauC,
		Nc:      nc,
		LDipole: lDipole,
	}, nil
}

func signOf(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// Observe advances the source's counter given the resolved shear
// stress at its position for the current iteration. It returns true
// exactly when the counter has just reached Nc, at which point the
// counter is reset to zero and the caller should emit a dipole.
func (s *Source) Observe(resolvedShear float64) bool {
	if math.Abs(resolvedShear) < s.TauC {
		s.Counter = 0
		s.prevSign = 0
		return false
	}
	sign := signOf(resolvedShear)
	if sign == s.prevSign {
		s.Counter++
	} else {
		s.prevSign = sign
		s.Counter = 1
	}
	if s.Counter >= s.Nc {
		s.Counter = 0
		return true
	}
	return false
}

// DipoleEmission is the pair of dislocations produced by EmitDipole,
// each with its position in the enclosing slip plane's frame.
type DipoleEmission struct {
	PositionA    Vector3d
	DislocationA *Dislocation
	PositionB    Vector3d
	DislocationB *Dislocation
}

// EmitDipole builds two mobile dislocations of opposite Burgers
// vector, separated by LDipole along the Burgers direction and
// centred on centre.
func (s *Source) EmitDipole(centre Vector3d, planeNormal Vector3d) (DipoleEmission, error) {
	bHat := s.Burgers.Unit()
	half := bHat.Scale(s.LDipole / 2)

	dA, err := NewDislocation(s.Burgers, s.Line, s.BMag, true, planeNormal)
	if err != nil {
		return DipoleEmission{}, err
	}
	dB, err := NewDislocation(s.Burgers.Scale(-1), s.Line, s.BMag, true, planeNormal)
	if err != nil {
		return DipoleEmission{}, err
	}
	return DipoleEmission{
		PositionA:    centre.Sub(half),
		DislocationA: dA,
		PositionB:    centre.Add(half),
		DislocationB: dB,
	}, nil
}
