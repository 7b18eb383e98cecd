package e2e

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ddsim/internal/coord"
	"github.com/san-kum/ddsim/internal/defect"
	"github.com/san-kum/ddsim/internal/grain"
	"github.com/san-kum/ddsim/internal/polycrystal"
	"github.com/san-kum/ddsim/internal/slipplane"
	"github.com/san-kum/ddsim/internal/slipsystem"
)

const (
	mu = 8e10
	nu = 0.3
)

// buildHierarchy wires a single grain, single slip system and single
// slip plane under a fresh polycrystal — the minimal hierarchy every
// literal scenario below exercises.
func buildHierarchy(ext0, ext1, normal, origin coord.Vector3d, tauC float64) (*polycrystal.Polycrystal, *slipplane.SlipPlane) {
	pc := polycrystal.New(1)
	pc.DefaultTauC = tauC

	g := grain.New([]coord.Vector3d{
		coord.NewVector3d(-1, -1, 0), coord.NewVector3d(1, -1, 0), coord.NewVector3d(0, 1, 0),
	}, coord.ZeroVector3d, pc.Frame)
	pc.AddGrain(g)

	sp, err := slipplane.New(ext0, ext1, normal, origin, defect.FreeSurface, defect.FreeSurface, 0, 1)
	Expect(err).NotTo(HaveOccurred())

	sys := slipsystem.New(sp.Direction, sp.Normal, g.Frame)
	sys.AddPlane(sp)
	g.AddSlipSystem(sys)
	pc.SetInitialDefectID(1)

	return pc, sp
}

var _ = Describe("single static dislocation", func() {
	It("leaves velocity and position unchanged under zero applied stress", func() {
		pc, sp := buildHierarchy(
			coord.NewVector3d(-1e-6, 0, 0), coord.NewVector3d(1e-6, 0, 0),
			coord.NewVector3d(0, 1, 0), coord.ZeroVector3d, 1e7,
		)
		d, err := defect.NewDislocation(coord.NewVector3d(2.5e-10, 0, 0), coord.NewVector3d(0, 0, 1), 2.5e-10, true, sp.Normal)
		Expect(err).NotTo(HaveOccurred())
		Expect(sp.InsertDefect(defect.NewDislocationDefect(2, coord.ZeroVector3d, d))).To(Succeed())

		before := sp.Defects[1].Position
		Expect(pc.Step(context.Background(), 1.0, 1.0, 1e-9, 1e-9, mu, nu)).To(Succeed())

		Expect(sp.Defects[1].Position).To(Equal(before))
		Expect(sp.Defects[1].Disloc.Velocity).To(Equal(coord.ZeroVector3d))
	})
})

var _ = Describe("threshold crossing", func() {
	It("moves at v = sigma_xy*|b|/B along the glide direction once the resolved stress exceeds tau_c", func() {
		tauC := 1e7
		pc, sp := buildHierarchy(
			coord.NewVector3d(-1e-6, 0, 0), coord.NewVector3d(1e-6, 0, 0),
			coord.NewVector3d(0, 1, 0), coord.ZeroVector3d, tauC,
		)
		pc.AppliedStress = coord.Stress{XY: 2 * tauC}

		bmag := 2.5e-10
		d, err := defect.NewDislocation(coord.NewVector3d(bmag, 0, 0), coord.NewVector3d(0, 0, 1), bmag, true, sp.Normal)
		Expect(err).NotTo(HaveOccurred())
		Expect(sp.InsertDefect(defect.NewDislocationDefect(2, coord.ZeroVector3d, d))).To(Succeed())

		// dtMax keeps v*dt (about 5e-9 m) well inside the 2e-6 m plane,
		// so the dislocation does not exit through a boundary.
		const B = 1.0
		Expect(pc.Step(context.Background(), 1e-6, B, 1e-9, 1e-9, mu, nu)).To(Succeed())

		wantSpeed := (2 * tauC) * bmag / B
		got := sp.Defects[1].Disloc.Velocity
		Expect(got.X()).To(BeNumerically("~", wantSpeed, wantSpeed*1e-9))
		Expect(sp.Defects[1].Position.X()).To(BeNumerically(">", 0))
	})
})

var _ = Describe("pair annihilation", func() {
	It("removes both dislocations when their Burgers vectors sum to zero within reactionRadius", func() {
		reactionRadius := 1e-9
		_, sp := buildHierarchy(
			coord.NewVector3d(-1e-6, 0, 0), coord.NewVector3d(1e-6, 0, 0),
			coord.NewVector3d(0, 1, 0), coord.ZeroVector3d, 1e7,
		)

		bmag := 2.5e-10
		dA, err := defect.NewDislocation(coord.NewVector3d(bmag, 0, 0), coord.NewVector3d(0, 0, 1), bmag, true, sp.Normal)
		Expect(err).NotTo(HaveOccurred())
		dB, err := defect.NewDislocation(coord.NewVector3d(-bmag, 0, 0), coord.NewVector3d(0, 0, 1), bmag, true, sp.Normal)
		Expect(err).NotTo(HaveOccurred())
		Expect(sp.InsertDefect(defect.NewDislocationDefect(2, coord.NewVector3d(-reactionRadius/2, 0, 0), dA))).To(Succeed())
		Expect(sp.InsertDefect(defect.NewDislocationDefect(3, coord.NewVector3d(reactionRadius/2, 0, 0), dB))).To(Succeed())
		Expect(sp.Defects).To(HaveLen(4))

		removed := sp.CheckLocalReactions(reactionRadius)
		Expect(removed).To(ConsistOf(2, 3))
		Expect(sp.Defects).To(HaveLen(2))
	})
})

var _ = Describe("source emission", func() {
	It("emits exactly one dipole on step N_c under a constant super-threshold stress", func() {
		tauC := 1e7
		nc := 5
		pc, sp := buildHierarchy(
			coord.NewVector3d(-1e-6, 0, 0), coord.NewVector3d(1e-6, 0, 0),
			coord.NewVector3d(0, 1, 0), coord.ZeroVector3d, tauC,
		)
		pc.AppliedStress = coord.Stress{XY: 2e7}

		src, err := defect.NewSource(coord.NewVector3d(2.5e-10, 0, 0), coord.NewVector3d(0, 0, 1), 2.5e-10, tauC, nc, 1e-8)
		Expect(err).NotTo(HaveOccurred())
		sp.Sources = append(sp.Sources, slipplane.SourceEntry{Position: coord.ZeroVector3d, Source: src})

		startCount := len(sp.Defects)
		for step := 1; step <= nc; step++ {
			Expect(pc.Step(context.Background(), 1e-6, 1.0, 1e-9, 1e-9, mu, nu)).To(Succeed())
			if step < nc {
				Expect(len(sp.Defects)).To(Equal(startCount), "no emission before step N_c")
			}
		}
		Expect(sp.Defects).To(HaveLen(startCount + 2))
		Expect(src.Counter).To(Equal(0))
	})
})

var _ = Describe("time step selection", func() {
	It("computes ideal_time_increment = 2*minDistance/closingSpeed", func() {
		minDistance := 1e-9
		_, sp := buildHierarchy(
			coord.NewVector3d(-1e-5, 0, 0), coord.NewVector3d(1e-5, 0, 0),
			coord.NewVector3d(0, 1, 0), coord.ZeroVector3d, 1e7,
		)
		bmag := 2.5e-10
		sep := 3 * minDistance
		dA, err := defect.NewDislocation(coord.NewVector3d(bmag, 0, 0), coord.NewVector3d(0, 0, 1), bmag, true, sp.Normal)
		Expect(err).NotTo(HaveOccurred())
		dB, err := defect.NewDislocation(coord.NewVector3d(-bmag, 0, 0), coord.NewVector3d(0, 0, 1), bmag, true, sp.Normal)
		Expect(err).NotTo(HaveOccurred())
		Expect(sp.InsertDefect(defect.NewDislocationDefect(2, coord.NewVector3d(-sep/2, 0, 0), dA))).To(Succeed())
		Expect(sp.InsertDefect(defect.NewDislocationDefect(3, coord.NewVector3d(sep/2, 0, 0), dB))).To(Succeed())

		// Force a closing speed of exactly 1 m/s without going through
		// the force law, matching the scenario's literal precondition.
		dA.SetVelocity(sp.Direction.Scale(0.5))
		dB.SetVelocity(sp.Direction.Scale(-0.5))

		dt := sp.IdealTimeIncrement(minDistance, 1.0)
		Expect(dt).To(BeNumerically("~", 2*minDistance/1.0, 1e-15))
	})
})

var _ = Describe("coordinate chain", func() {
	It("composes polycrystal, grain and slip-plane rotations when propagating an applied stress down to the slip plane", func() {
		pc := polycrystal.New(1)

		thetaZ := 30 * math.Pi / 180
		thetaX := 45 * math.Pi / 180
		g := grain.New([]coord.Vector3d{
			coord.NewVector3d(-1, -1, 0), coord.NewVector3d(1, -1, 0), coord.NewVector3d(0, 1, 0),
		}, coord.NewVector3d(thetaZ, thetaX, 0), pc.Frame)
		pc.AddGrain(g)

		sp, err := slipplane.New(
			coord.NewVector3d(-1e-6, 0, 0), coord.NewVector3d(1e-6, 0, 0),
			coord.NewVector3d(0, 1, 0), coord.ZeroVector3d,
			defect.FreeSurface, defect.FreeSurface, 0, 1,
		)
		Expect(err).NotTo(HaveOccurred())

		sys := slipsystem.New(sp.Direction, sp.Normal, g.Frame)
		// Give the plane its own 60-degree frame before AddPlane, since
		// AddPlane only assigns a default identity frame when none is
		// set yet.
		sp.Frame = coord.NewCoordinateSystem("slipplane", sp.Origin, rotateAboutZ(60*math.Pi/180), sys.Frame)
		sys.AddPlane(sp)
		g.AddSlipSystem(sys)
		pc.SetInitialDefectID(1)

		pc.AppliedStress = coord.Stress{XX: 1.0}
		Expect(pc.Step(context.Background(), 1.0, 1.0, 1e-9, 1e-9, mu, nu)).To(Succeed())

		// Independently walk the frame chain from the root down to the
		// plane and compare against what Step's cascading
		// PropagateAppliedStress calls produced.
		want := sp.Frame.TensorFromAncestor(pc.AppliedStress, pc.Frame)
		Expect(sp.AppliedLocal.XX).To(BeNumerically("~", want.XX, 1e-9))
		Expect(sp.AppliedLocal.XY).To(BeNumerically("~", want.XY, 1e-9))
		Expect(sp.AppliedLocal.YY).To(BeNumerically("~", want.YY, 1e-9))
	})
})

func rotateAboutZ(theta float64) coord.RotationMatrix {
	c, s := math.Cos(theta), math.Sin(theta)
	return coord.NewRotationMatrix(
		coord.NewVector3d(c, s, 0),
		coord.NewVector3d(-s, c, 0),
		coord.NewVector3d(0, 0, 1),
	)
}
