package slipplane

import (
	"math"
	"sort"

	"github.com/san-kum/ddsim/internal/coord"
	"github.com/san-kum/ddsim/internal/defect"
	"github.com/san-kum/ddsim/internal/dpar"
	"github.com/san-kum/ddsim/internal/rng"
)

// annihilationTolerance bounds how far b1+b2 may drift from zero and
// still count as an annihilating pair.
const annihilationTolerance = 1e-9

// nucleationJitterFraction scales a source's LDipole into the
// standard deviation of the Gaussian jitter applied to its emission
// centre, so nucleation position noise stays proportional to the
// dipole's own size.
const nucleationJitterFraction = 0.01

// stressSumChunk is the minimum number of defects per chunk before
// TotalStressAt bothers splitting the summation across goroutines.
const stressSumChunk = 64

// SourceEntry pairs a dislocation source with its fixed position on
// the plane, giving CheckSources a flat list to scan without walking
// the sorted Defects list. InsertDefect appends one automatically
// whenever a SourceKind defect is inserted, so the source is visible
// both here and, tagged, in Defects (for listing and output). Sources
// never move.
type SourceEntry struct {
	Position coord.Vector3d
	Source   *defect.Source
}

// SlipPlane is a single glide line: two sentinel extremities, a
// sorted interior of mobile and immobile defects, and the sources
// that can inject new dislocations onto it.
type SlipPlane struct {
	Extremity0 coord.Vector3d
	Extremity1 coord.Vector3d
	Normal     coord.Vector3d
	Origin     coord.Vector3d
	Direction  coord.Vector3d

	// Frame is the plane's own coordinate system, nested under its
	// slip system's frame. It is set by the orchestration layer that
	// builds the hierarchy; a nil Frame means the plane shares its
	// parent's orientation exactly.
	Frame *coord.CoordinateSystem

	// AppliedLocal is the externally applied stress, already rotated
	// into this plane's frame by the enclosing orchestrator.
	AppliedLocal coord.Stress

	Defects []defect.Defect
	Sources []SourceEntry

	DtChosen float64
}

// New builds a slip plane bounded by two sentinel defects at ext0 and
// ext1. It fails if the extremities coincide, since the glide
// direction would be undefined.
func New(ext0, ext1, normal, origin coord.Vector3d, sentinel0, sentinel1 defect.Kind, id0, id1 int) (*SlipPlane, error) {
	dir := ext1.Sub(ext0)
	if dir.IsZero() {
		return nil, ErrGeometryInvalid
	}
	sp := &SlipPlane{
		Extremity0: ext0,
		Extremity1: ext1,
		Normal:     normal.Unit(),
		Origin:     origin,
		Direction:  dir.Unit(),
	}
	sp.Defects = []defect.Defect{
		defect.NewSentinel(id0, ext0, sentinel0),
		defect.NewSentinel(id1, ext1, sentinel1),
	}
	return sp, nil
}

// signedPosition projects p onto the glide direction relative to the
// plane's origin, giving the scalar ordering key used to keep Defects
// sorted.
func (sp *SlipPlane) signedPosition(p coord.Vector3d) float64 {
	return p.Sub(sp.Origin).Dot(sp.Direction)
}

// InsertDefect inserts d into the sorted defect list by signed
// position, keeping the two extremity sentinels first and last. It
// fails if d's position lies outside the extremities.
func (sp *SlipPlane) InsertDefect(d defect.Defect) error {
	pos := sp.signedPosition(d.Position)
	lo := sp.signedPosition(sp.Extremity0)
	hi := sp.signedPosition(sp.Extremity1)
	if lo > hi {
		lo, hi = hi, lo
	}
	if pos < lo || pos > hi {
		return ErrOutsideExtremities
	}

	idx := sort.Search(len(sp.Defects), func(i int) bool {
		return sp.signedPosition(sp.Defects[i].Position) >= pos
	})
	sp.Defects = append(sp.Defects, defect.Defect{})
	copy(sp.Defects[idx+1:], sp.Defects[idx:])
	sp.Defects[idx] = d

	if d.Kind == defect.SourceKind && d.Source != nil {
		sp.Sources = append(sp.Sources, SourceEntry{Position: d.Position, Source: d.Source})
	}
	return nil
}

// TotalStressAt returns the stress experienced by Defects[i]: the
// applied stress plus the superposed field of every other defect on
// the plane. Self-interaction is skipped.
func (sp *SlipPlane) TotalStressAt(i int, mu, nu float64) coord.Stress {
	at := sp.Defects[i].Position
	n := len(sp.Defects)

	// Each worker writes only into its own disjoint sub-range of
	// contrib, so the final reduction below always sums in defect
	// index order regardless of how the range was chunked.
	contrib := make([]coord.Stress, n)
	dpar.For(n, stressSumChunk, func(start, end int) {
		for j := start; j < end; j++ {
			if j == i {
				continue
			}
			contrib[j] = sp.Defects[j].StressFieldAt(at, mu, nu)
		}
	})

	total := sp.AppliedLocal
	for _, c := range contrib {
		total = total.Add(c)
	}
	return total
}

// VelocityOf returns the glide velocity of Defects[i] under drag
// coefficient B, projected onto the slip direction. Non-dislocation
// kinds and pinned dislocations return the zero vector.
func (sp *SlipPlane) VelocityOf(i int, B float64) coord.Vector3d {
	d := sp.Defects[i]
	if d.Kind != defect.DislocationKind || d.Disloc == nil || !d.Disloc.Mobile {
		return coord.ZeroVector3d
	}
	speed := d.Disloc.TotalForce.Dot(sp.Direction) / B
	return sp.Direction.Scale(speed)
}

// velocityScalar returns a defect's signed velocity along the glide
// direction, used by IdealTimeIncrement and Advance.
func (sp *SlipPlane) velocityScalar(d defect.Defect) float64 {
	if d.Kind != defect.DislocationKind || d.Disloc == nil || !d.Disloc.Mobile {
		return 0
	}
	return d.Disloc.Velocity.Dot(sp.Direction)
}

// IdealTimeIncrement computes the largest time step such that no
// adjacent pair closes to within minDistance, bounded above by
// ceiling. A pair where either member is a sentinel (FreeSurface or
// GrainBoundary) is excluded from this constraint: sentinels bound
// the glide line but are not collision partners, and a dislocation
// must be free to close on and cross one so it can be destroyed on
// exit through a boundary in Advance.
func (sp *SlipPlane) IdealTimeIncrement(minDistance, ceiling float64) float64 {
	n := len(sp.Defects)
	if n < 2 {
		return ceiling
	}
	pairs := n - 1
	dts := make([]float64, pairs)
	for i := range dts {
		dts[i] = math.Inf(1)
	}

	dpar.For(pairs, 32, func(start, end int) {
		for i := start; i < end; i++ {
			a, b := sp.Defects[i], sp.Defects[i+1]
			if a.Kind.IsSentinel() || b.Kind.IsSentinel() {
				continue
			}
			xi := sp.signedPosition(a.Position)
			xj := sp.signedPosition(b.Position)
			vi := sp.velocityScalar(a)
			vj := sp.velocityScalar(b)
			vClose := vi - vj
			if vClose <= 0 {
				continue
			}
			dt := (xj - xi - minDistance) / vClose
			if dt < 0 {
				dt = 0
			}
			dts[i] = dt
		}
	})

	dt := ceiling
	for _, v := range dts {
		if v < dt {
			dt = v
		}
	}
	if dt < 0 {
		dt = 0
	}
	sp.DtChosen = dt
	return dt
}

// Advance translates every mobile defect by v*dt along the slip
// direction, re-sorts the list, and destroys any non-sentinel defect
// that has reached or crossed an extremity: it exits through the
// boundary. Sentinels themselves (Kind.IsSentinel()) are never
// removed, regardless of where the sort places them.
func (sp *SlipPlane) Advance(dt float64) {
	for i := range sp.Defects {
		v := sp.velocityScalar(sp.Defects[i])
		if v == 0 {
			continue
		}
		sp.Defects[i].Position = sp.Defects[i].Position.Add(sp.Direction.Scale(v * dt))
	}

	sort.SliceStable(sp.Defects, func(i, j int) bool {
		return sp.signedPosition(sp.Defects[i].Position) < sp.signedPosition(sp.Defects[j].Position)
	})

	lo := sp.signedPosition(sp.Extremity0)
	hi := sp.signedPosition(sp.Extremity1)
	if lo > hi {
		lo, hi = hi, lo
	}

	kept := sp.Defects[:0]
	for _, d := range sp.Defects {
		if d.Kind.IsSentinel() {
			kept = append(kept, d)
			continue
		}
		pos := sp.signedPosition(d.Position)
		if pos <= lo || pos >= hi {
			continue
		}
		kept = append(kept, d)
	}
	sp.Defects = kept
}

// CheckSources evaluates every source's resolved shear stress at its
// position and emits a dipole when its counter reaches Nc. nextID
// supplies unique identifiers for the two new defects. jitter, if
// non-nil, perturbs the emission centre along the slip direction by a
// Gaussian sample so repeated nucleation events don't all land on
// exactly the source's own position; passing nil reproduces the
// unperturbed centre. It returns the IDs of any dislocations emitted
// this call.
func (sp *SlipPlane) CheckSources(mu, nu float64, nextID func() int, jitter *rng.Source) ([]int, error) {
	var emitted []int
	for _, entry := range sp.Sources {
		var sum coord.Stress
		for _, d := range sp.Defects {
			sum = sum.Add(d.StressFieldAt(entry.Position, mu, nu))
		}
		resolved := sp.AppliedLocal.Add(sum).XY

		if !entry.Source.Observe(resolved) {
			continue
		}
		centre := entry.Position
		if jitter != nil {
			offset := jitter.NextGaussian(0, nucleationJitterFraction*entry.Source.LDipole)
			centre = centre.Add(sp.Direction.Scale(offset))
		}
		emission, err := entry.Source.EmitDipole(centre, sp.Normal)
		if err != nil {
			return emitted, err
		}
		idA, idB := nextID(), nextID()
		if err := sp.InsertDefect(defect.NewDislocationDefect(idA, emission.PositionA, emission.DislocationA)); err != nil {
			return emitted, err
		}
		if err := sp.InsertDefect(defect.NewDislocationDefect(idB, emission.PositionB, emission.DislocationB)); err != nil {
			return emitted, err
		}
		emitted = append(emitted, idA, idB)
	}
	return emitted, nil
}

// CheckLocalReactions scans adjacent pairs for annihilation (two
// dislocations whose Burgers vectors sum to zero within
// reactionRadius) and pinning (a mobile dislocation adjacent to an
// obstacle or grain boundary within reactionRadius). It returns the
// IDs of any dislocations removed by annihilation.
func (sp *SlipPlane) CheckLocalReactions(reactionRadius float64) []int {
	var removed []int
	remove := make(map[int]bool)

	for i := 0; i+1 < len(sp.Defects); i++ {
		a, b := sp.Defects[i], sp.Defects[i+1]
		dx := math.Abs(sp.signedPosition(a.Position) - sp.signedPosition(b.Position))
		if dx > reactionRadius {
			continue
		}

		if a.Kind == defect.DislocationKind && b.Kind == defect.DislocationKind &&
			a.Disloc.Burgers.Add(b.Disloc.Burgers).Magnitude() < annihilationTolerance {
			remove[a.ID] = true
			remove[b.ID] = true
			continue
		}

		if a.Kind == defect.DislocationKind && a.Disloc.Mobile && (b.Kind == defect.Obstacle || b.Kind == defect.GrainBoundary) {
			a.Disloc.Mobile = false
		}
		if b.Kind == defect.DislocationKind && b.Disloc.Mobile && (a.Kind == defect.Obstacle || a.Kind == defect.GrainBoundary) {
			b.Disloc.Mobile = false
		}
	}

	if len(remove) == 0 {
		return nil
	}
	kept := sp.Defects[:0]
	for _, d := range sp.Defects {
		if remove[d.ID] {
			removed = append(removed, d.ID)
			continue
		}
		kept = append(kept, d)
	}
	sp.Defects = kept
	return removed
}
