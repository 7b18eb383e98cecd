// Package polycrystal implements the top-level orchestrator: the root
// coordinate frame, the collection of grains, and the single per-step
// operation that walks the whole hierarchy in the deterministic order
// required for reproducible outcomes.
package polycrystal

import (
	"context"

	"github.com/san-kum/ddsim/internal/coord"
	"github.com/san-kum/ddsim/internal/defect"
	"github.com/san-kum/ddsim/internal/dpar"
	"github.com/san-kum/ddsim/internal/grain"
	"github.com/san-kum/ddsim/internal/rng"
	"github.com/san-kum/ddsim/internal/slipplane"
)

// Polycrystal is the root of the coordinate-frame hierarchy and the
// owner of the per-step orchestration.
type Polycrystal struct {
	Grains        []*grain.Grain
	AppliedStress coord.Stress // in the polycrystal's own (root) frame
	Frame         *coord.CoordinateSystem
	RNG           *rng.Source

	// DefaultTauC is the critical resolved shear stress used by any
	// dislocation that does not carry its own override.
	DefaultTauC float64

	StepIndex   int
	TimeElapsed float64
	TimeHistory []float64

	nextDefectID int
}

// New builds an empty polycrystal with a root coordinate frame and a
// Gaussian source seeded for reproducible source-emission noise.
func New(seed int64) *Polycrystal {
	return &Polycrystal{
		Frame: coord.NewRootCoordinateSystem("polycrystal"),
		RNG:   rng.New(seed),
	}
}

// AddGrain appends a grain owned by this polycrystal.
func (pc *Polycrystal) AddGrain(g *grain.Grain) {
	pc.Grains = append(pc.Grains, g)
}

// nextID hands out a fresh, unique defect identifier. It is not
// concurrency-safe; it is only called from the single-threaded
// source-emission phase of Step.
func (pc *Polycrystal) nextID() int {
	pc.nextDefectID++
	return pc.nextDefectID
}

// SetInitialDefectID sets the floor for freshly emitted defect IDs, to
// be called once after loading a structure file whose highest defect
// ID is known.
func (pc *Polycrystal) SetInitialDefectID(highest int) {
	pc.nextDefectID = highest
}

// allPlanes walks grains, slip systems and slip planes in insertion
// order, giving the deterministic iteration order the spec requires.
func (pc *Polycrystal) allPlanes() []*slipplane.SlipPlane {
	var planes []*slipplane.SlipPlane
	for _, g := range pc.Grains {
		for _, s := range g.SlipSystems {
			planes = append(planes, s.Planes...)
		}
	}
	return planes
}

// Step advances the whole simulation by one adaptive time increment,
// bounded above by dtMax. It performs, in order: applied-stress
// propagation, interaction stress and velocity computation, time-step
// selection, motion, source emission, local reactions, and history
// recording. If the time step collapses to zero, the step is aborted
// before motion: every defect keeps its pre-step position, the local
// reactions that would normally run last are run early instead to try
// to clear the too-close pair, and the returned error reports whether
// that succeeded.
func (pc *Polycrystal) Step(ctx context.Context, dtMax, B, minDistance, reactionRadius, mu, nu float64) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// 1. Applied-stress propagation.
	local := pc.Frame.TensorToLocal(pc.AppliedStress)
	for _, g := range pc.Grains {
		g.PropagateAppliedStress(local)
	}

	planes := pc.allPlanes()

	// 2. Interaction stress, force and velocity for every defect.
	for _, p := range planes {
		for i, d := range p.Defects {
			if d.Kind != defect.DislocationKind {
				continue
			}
			sigma := p.TotalStressAt(i, mu, nu)
			d.Disloc.SetTotalStress(sigma)
			force := d.Disloc.ForcePeachKoehler(sigma, pc.tauCFor(d.Disloc))
			d.Disloc.SetTotalForce(force)
			d.Disloc.SetVelocity(p.VelocityOf(i, B))
		}
	}

	// 3. Time-step selection: the third permitted parallel point.
	idealDt := func() float64 {
		increments := make([]float64, len(planes))
		dpar.For(len(planes), 4, func(start, end int) {
			for i := start; i < end; i++ {
				increments[i] = planes[i].IdealTimeIncrement(minDistance, dtMax)
			}
		})
		dt := dtMax
		for _, inc := range increments {
			if inc < dt {
				dt = inc
			}
		}
		return dt
	}

	dt := idealDt()
	if dt <= 0 {
		// The step is aborted with every defect left at its pre-step
		// position: motion (phase 4) never runs on this call. Run the
		// local-reaction pass now, ahead of schedule, so the pair
		// wedged inside minDistance gets annihilated or pinned instead
		// of wedging every future step the same way.
		for _, p := range planes {
			p.CheckLocalReactions(reactionRadius)
		}
		return &StepError{
			Step:      pc.StepIndex,
			Time:      pc.TimeElapsed,
			Message:   "time step collapsed to zero with a pair at or inside minDistance",
			Wrapped:   ErrTimeStepUnderflow,
			Recovered: idealDt() > 0,
		}
	}

	// 4. Motion.
	for _, p := range planes {
		p.Advance(dt)
	}

	// 5. Source emission.
	for _, p := range planes {
		if _, err := p.CheckSources(mu, nu, pc.nextID, pc.RNG); err != nil {
			return &StepError{Step: pc.StepIndex, Time: pc.TimeElapsed, Message: "source emission failed", Wrapped: err}
		}
	}

	// 6. Local reactions.
	for _, p := range planes {
		p.CheckLocalReactions(reactionRadius)
	}

	// 7. Recording.
	pc.TimeElapsed += dt
	pc.TimeHistory = append(pc.TimeHistory, pc.TimeElapsed)
	pc.StepIndex++

	return nil
}

// tauCFor returns d's own CRSS override if it has one, else the
// simulation-wide default.
func (pc *Polycrystal) tauCFor(d *defect.Dislocation) float64 {
	if d.TauC > 0 {
		return d.TauC
	}
	return pc.DefaultTauC
}
