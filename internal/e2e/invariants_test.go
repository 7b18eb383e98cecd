package e2e

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ddsim/internal/coord"
	"github.com/san-kum/ddsim/internal/defect"
)

var _ = Describe("coordinate round trip", func() {
	It("recovers the applied stress after propagating down the hierarchy and rotating back up", func() {
		pc, sp := buildHierarchy(
			coord.NewVector3d(-1e-6, 0, 0), coord.NewVector3d(1e-6, 0, 0),
			coord.NewVector3d(0, 1, 0), coord.ZeroVector3d, 1e7,
		)
		pc.AppliedStress = coord.Stress{XX: 3, YY: -1, XY: 0.7}
		Expect(pc.Step(context.Background(), 1.0, 1.0, 1e-9, 1e-9, mu, nu)).To(Succeed())

		back := sp.Frame.TensorToRoot(sp.AppliedLocal)
		Expect(back.XX).To(BeNumerically("~", pc.AppliedStress.XX, 1e-9))
		Expect(back.YY).To(BeNumerically("~", pc.AppliedStress.YY, 1e-9))
		Expect(back.XY).To(BeNumerically("~", pc.AppliedStress.XY, 1e-9))
	})
})

var _ = Describe("stress superposition linearity", func() {
	It("sums each defect's individual contribution rather than some nonlinear combination", func() {
		_, sp := buildHierarchy(
			coord.NewVector3d(-1e-6, 0, 0), coord.NewVector3d(1e-6, 0, 0),
			coord.NewVector3d(0, 1, 0), coord.ZeroVector3d, 1e7,
		)
		bmag := 2.5e-10
		d1, err := defect.NewDislocation(coord.NewVector3d(bmag, 0, 0), coord.NewVector3d(0, 0, 1), bmag, true, sp.Normal)
		Expect(err).NotTo(HaveOccurred())
		d2, err := defect.NewDislocation(coord.NewVector3d(bmag, 0, 0), coord.NewVector3d(0, 0, 1), bmag, true, sp.Normal)
		Expect(err).NotTo(HaveOccurred())
		Expect(sp.InsertDefect(defect.NewDislocationDefect(2, coord.NewVector3d(-2e-9, 0, 0), d1))).To(Succeed())
		Expect(sp.InsertDefect(defect.NewDislocationDefect(3, coord.NewVector3d(2e-9, 0, 0), d2))).To(Succeed())
		Expect(sp.InsertDefect(defect.NewDislocationDefect(4, coord.ZeroVector3d,
			mustDislocation(coord.NewVector3d(bmag, 0, 0), coord.NewVector3d(0, 0, 1), bmag, sp.Normal)))).To(Succeed())

		const targetIdx = 2 // the dislocation planted at the origin
		total := sp.TotalStressAt(targetIdx, mu, nu)

		at := sp.Defects[targetIdx].Position
		var sum coord.Stress
		for i, def := range sp.Defects {
			if i == targetIdx {
				continue
			}
			sum = sum.Add(def.StressFieldAt(at, mu, nu))
		}
		Expect(total.XX).To(BeNumerically("~", sum.XX, 1e-6))
		Expect(total.XY).To(BeNumerically("~", sum.XY, 1e-6))
	})
})

var _ = Describe("glide invariant", func() {
	It("keeps every dislocation's velocity parallel to the slip direction", func() {
		pc, sp := buildHierarchy(
			coord.NewVector3d(-1e-6, 0, 0), coord.NewVector3d(1e-6, 0, 0),
			coord.NewVector3d(0, 1, 0), coord.ZeroVector3d, 1e7,
		)
		pc.AppliedStress = coord.Stress{XY: 5e7}
		d, err := defect.NewDislocation(coord.NewVector3d(2.5e-10, 0, 0), coord.NewVector3d(0, 0, 1), 2.5e-10, true, sp.Normal)
		Expect(err).NotTo(HaveOccurred())
		Expect(sp.InsertDefect(defect.NewDislocationDefect(2, coord.ZeroVector3d, d))).To(Succeed())

		// A small dtMax keeps the moving dislocation on the plane.
		Expect(pc.Step(context.Background(), 1e-6, 1.0, 1e-9, 1e-9, mu, nu)).To(Succeed())

		v := sp.Defects[1].Disloc.Velocity
		Expect(v.Dot(sp.Normal)).To(BeNumerically("~", 0, 1e-12))
	})
})

var _ = Describe("critical resolved shear stress threshold", func() {
	It("keeps a dislocation stationary while the resolved shear stress stays below tau_c", func() {
		tauC := 1e7
		pc, sp := buildHierarchy(
			coord.NewVector3d(-1e-6, 0, 0), coord.NewVector3d(1e-6, 0, 0),
			coord.NewVector3d(0, 1, 0), coord.ZeroVector3d, tauC,
		)
		pc.AppliedStress = coord.Stress{XY: tauC * 0.5}
		d, err := defect.NewDislocation(coord.NewVector3d(2.5e-10, 0, 0), coord.NewVector3d(0, 0, 1), 2.5e-10, true, sp.Normal)
		Expect(err).NotTo(HaveOccurred())
		Expect(sp.InsertDefect(defect.NewDislocationDefect(2, coord.ZeroVector3d, d))).To(Succeed())

		Expect(pc.Step(context.Background(), 1.0, 1.0, 1e-9, 1e-9, mu, nu)).To(Succeed())
		Expect(sp.Defects[1].Disloc.Velocity).To(Equal(coord.ZeroVector3d))
	})
})

var _ = Describe("pinning", func() {
	It("makes a mobile dislocation immobile once it lands within reactionRadius of an obstacle", func() {
		reactionRadius := 1e-9
		_, sp := buildHierarchy(
			coord.NewVector3d(-1e-6, 0, 0), coord.NewVector3d(1e-6, 0, 0),
			coord.NewVector3d(0, 1, 0), coord.ZeroVector3d, 1e7,
		)
		d, err := defect.NewDislocation(coord.NewVector3d(2.5e-10, 0, 0), coord.NewVector3d(0, 0, 1), 2.5e-10, true, sp.Normal)
		Expect(err).NotTo(HaveOccurred())
		Expect(sp.InsertDefect(defect.NewObstacle(2, coord.NewVector3d(1e-10, 0, 0)))).To(Succeed())
		Expect(sp.InsertDefect(defect.NewDislocationDefect(3, coord.ZeroVector3d, d))).To(Succeed())

		sp.CheckLocalReactions(reactionRadius)
		Expect(d.Mobile).To(BeFalse())
	})
})

var _ = Describe("annihilation symmetry", func() {
	It("removes the pair regardless of which Burgers sign appears first in the sorted list", func() {
		reactionRadius := 1e-9
		bmag := 2.5e-10

		for _, order := range []struct{ first, second float64 }{
			{bmag, -bmag},
			{-bmag, bmag},
		} {
			_, sp := buildHierarchy(
				coord.NewVector3d(-1e-6, 0, 0), coord.NewVector3d(1e-6, 0, 0),
				coord.NewVector3d(0, 1, 0), coord.ZeroVector3d, 1e7,
			)
			dA, err := defect.NewDislocation(coord.NewVector3d(order.first, 0, 0), coord.NewVector3d(0, 0, 1), bmag, true, sp.Normal)
			Expect(err).NotTo(HaveOccurred())
			dB, err := defect.NewDislocation(coord.NewVector3d(order.second, 0, 0), coord.NewVector3d(0, 0, 1), bmag, true, sp.Normal)
			Expect(err).NotTo(HaveOccurred())
			Expect(sp.InsertDefect(defect.NewDislocationDefect(2, coord.NewVector3d(-reactionRadius/2, 0, 0), dA))).To(Succeed())
			Expect(sp.InsertDefect(defect.NewDislocationDefect(3, coord.NewVector3d(reactionRadius/2, 0, 0), dB))).To(Succeed())

			removed := sp.CheckLocalReactions(reactionRadius)
			Expect(removed).To(ConsistOf(2, 3))
			Expect(sp.Defects).To(HaveLen(2))
		}
	})
})

var _ = Describe("dipole emission determinism", func() {
	It("always emits on the same call in a fixed sequence of resolved shear stresses", func() {
		tauC := 1e7
		nc := 3
		observeSequence := func() int {
			src, err := defect.NewSource(coord.NewVector3d(2.5e-10, 0, 0), coord.NewVector3d(0, 0, 1), 2.5e-10, tauC, nc, 1e-8)
			Expect(err).NotTo(HaveOccurred())
			for call := 1; ; call++ {
				if src.Observe(2 * tauC) {
					return call
				}
				if call > 10 {
					return -1
				}
			}
		}
		first := observeSequence()
		second := observeSequence()
		Expect(first).To(Equal(nc))
		Expect(second).To(Equal(first))
	})
})

func mustDislocation(burgers, line coord.Vector3d, bmag float64, normal coord.Vector3d) *defect.Dislocation {
	d, err := defect.NewDislocation(burgers, line, bmag, true, normal)
	Expect(err).NotTo(HaveOccurred())
	return d
}
