package world_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gearsim/internal/body"
	"github.com/san-kum/gearsim/internal/dynamo"
	"github.com/san-kum/gearsim/internal/joint"
	"github.com/san-kum/gearsim/internal/motionlink"
	"github.com/san-kum/gearsim/internal/world"
	"gonum.org/v1/gonum/spatial/r3"
)

type gearPair struct {
	w      *world.World
	ground body.Handle
	a, b   joint.Handle
	wa, wb body.Handle
}

// newGearPair builds two cubes hinged to the ground: A about z with a -2 rad/s
// motor, B about x with a -4 rad/s motor.
func newGearPair(opts ...world.Option) *gearPair {
	cfg := dynamo.DefaultConfig()
	cfg.Gravity = r3.Vec{}
	w, err := world.New(cfg, opts...)
	Expect(err).NotTo(HaveOccurred())

	g := &gearPair{w: w}
	g.ground = w.InsertBody(body.NewFixed())

	half := r3.Vec{X: 0.4, Y: 0.4, Z: 0.4}
	cubeA := body.NewCuboid(1, half)
	cubeA.Position = r3.Vec{Z: 2}
	g.wa = w.InsertBody(cubeA)
	cubeB := body.NewCuboid(1, half)
	cubeB.Position = r3.Vec{X: 2}
	g.wb = w.InsertBody(cubeB)

	g.a, err = w.InsertJoint(joint.NewRevolute(g.ground, g.wa, r3.Vec{Z: 1}).
		WithAnchors(r3.Vec{}, r3.Vec{Z: -2}).
		WithMotorVelocity(-2, 1000))
	Expect(err).NotTo(HaveOccurred())
	g.b, err = w.InsertJoint(joint.NewRevolute(g.ground, g.wb, r3.Vec{X: 1}).
		WithAnchors(r3.Vec{}, r3.Vec{X: -2}).
		WithMotorVelocity(-4, 1000))
	Expect(err).NotTo(HaveOccurred())
	return g
}

func (g *gearPair) velocity(h joint.Handle) float64 {
	v, ok := g.w.JointVelocity(h)
	Expect(ok).To(BeTrue())
	return v
}

func run(w *world.World, steps int) world.StepStats {
	var stats world.StepStats
	for i := 0; i < steps; i++ {
		var err error
		stats, err = w.Step()
		Expect(err).NotTo(HaveOccurred())
	}
	return stats
}

var _ = Describe("World", func() {
	Describe("motion links between motorised hinges", func() {
		var g *gearPair

		BeforeEach(func() {
			g = newGearPair()
		})

		It("runs each joint at its own motor speed when unlinked", func() {
			run(g.w, 60)
			Expect(g.velocity(g.a)).To(BeNumerically("~", -2, 1e-6))
			Expect(g.velocity(g.b)).To(BeNumerically("~", -4, 1e-6))
		})

		It("makes the linked joint follow the ratio over its own motor", func() {
			Expect(g.w.AttachMotionLink(g.b, g.a, 0.5, false)).To(Succeed())

			stats := run(g.w, 120)
			Expect(stats.LinkRows).To(Equal(1))
			Expect(stats.Dangling).To(BeZero())
			Expect(stats.LinkImpulse).To(BeNumerically(">", 0))

			Expect(g.velocity(g.a)).To(BeNumerically("~", -2, 1e-6))
			Expect(g.velocity(g.b)).To(BeNumerically("~", -1, 1e-6))

			res, ok := g.w.LinkResidual(g.b)
			Expect(ok).To(BeTrue())
			Expect(res).To(BeNumerically("~", 0, 1e-9))
		})

		It("flips the direction when reversed", func() {
			Expect(g.w.AttachMotionLink(g.b, g.a, 0.5, true)).To(Succeed())
			run(g.w, 120)
			Expect(g.velocity(g.b)).To(BeNumerically("~", 1, 1e-6))
		})

		It("solves the link and both hinges as one island", func() {
			Expect(g.w.AttachMotionLink(g.b, g.a, 0.5, false)).To(Succeed())
			stats := run(g.w, 1)
			Expect(stats.Islands).To(Equal(1))
			// 6 rows per motorised hinge plus the link
			Expect(stats.Rows).To(Equal(13))
		})

		It("releases the joint to its motor on detach", func() {
			Expect(g.w.AttachMotionLink(g.b, g.a, 0.5, false)).To(Succeed())
			run(g.w, 30)
			Expect(g.w.DetachMotionLink(g.b)).To(BeTrue())
			Expect(g.w.DetachMotionLink(g.b)).To(BeFalse())

			run(g.w, 60)
			Expect(g.velocity(g.b)).To(BeNumerically("~", -4, 1e-6))
		})

		Context("when attaching", func() {
			It("rejects a self link", func() {
				err := g.w.AttachMotionLink(g.a, g.a, 1, false)
				Expect(err).To(MatchError(motionlink.ErrSelfLink))
			})

			It("rejects zero, NaN and infinite ratios", func() {
				for _, r := range []float64{0, math.NaN(), math.Inf(1), math.Inf(-1)} {
					err := g.w.AttachMotionLink(g.a, g.b, r, false)
					Expect(err).To(MatchError(motionlink.ErrInvalidRatio), "ratio %v", r)
				}
			})

			It("rejects unknown joints", func() {
				Expect(g.w.RemoveJoint(g.a)).To(BeTrue())
				err := g.w.AttachMotionLink(g.b, g.a, 1, false)
				Expect(err).To(MatchError(motionlink.ErrUnknownJoint))
			})

			It("rejects a closing cycle by default", func() {
				Expect(g.w.AttachMotionLink(g.a, g.b, 1, false)).To(Succeed())
				err := g.w.AttachMotionLink(g.b, g.a, 1, false)
				Expect(err).To(MatchError(motionlink.ErrCycleDetected))

				var linkErr *motionlink.LinkError
				Expect(err).To(BeAssignableToTypeOf(linkErr))
				_, ok := g.w.QueryMotionLink(g.b)
				Expect(ok).To(BeFalse())
			})

			It("replaces an existing link wholesale", func() {
				Expect(g.w.AttachMotionLink(g.b, g.a, 0.5, false)).To(Succeed())
				Expect(g.w.AttachMotionLink(g.b, g.a, 2, true)).To(Succeed())

				d, ok := g.w.QueryMotionLink(g.b)
				Expect(ok).To(BeTrue())
				Expect(d).To(Equal(motionlink.Descriptor{Target: g.a, Ratio: 2, Reversed: true}))
			})
		})

		Context("when joints are removed", func() {
			BeforeEach(func() {
				Expect(g.w.AttachMotionLink(g.b, g.a, 0.5, false)).To(Succeed())
			})

			It("drops the link owned by a removed source", func() {
				Expect(g.w.RemoveJoint(g.b)).To(BeTrue())
				_, ok := g.w.QueryMotionLink(g.b)
				Expect(ok).To(BeFalse())
				Expect(g.w.Links().Len()).To(BeZero())
			})

			It("keeps a link whose target is gone and skips it while stepping", func() {
				Expect(g.w.RemoveJoint(g.a)).To(BeTrue())

				d, ok := g.w.QueryMotionLink(g.b)
				Expect(ok).To(BeTrue())
				Expect(d.Target).To(Equal(g.a))

				stats := run(g.w, 60)
				Expect(stats.LinkRows).To(BeZero())
				Expect(stats.Dangling).To(Equal(1))
				Expect(g.velocity(g.b)).To(BeNumerically("~", -4, 1e-6))
			})

			It("does not rebind a dangling link to a recycled joint slot", func() {
				Expect(g.w.RemoveJoint(g.a)).To(BeTrue())
				fresh, err := g.w.InsertJoint(joint.NewRevolute(g.ground, g.wa, r3.Vec{Z: 1}))
				Expect(err).NotTo(HaveOccurred())
				Expect(fresh).NotTo(Equal(g.a))

				stats := run(g.w, 1)
				Expect(stats.Dangling).To(Equal(1))
			})

			It("removes joints and links with their body", func() {
				Expect(g.w.RemoveBody(g.wb)).To(BeTrue())
				Expect(g.w.Joints().Contains(g.b)).To(BeFalse())
				Expect(g.w.Links().Len()).To(BeZero())
				Expect(g.w.Joints().Contains(g.a)).To(BeTrue())
			})
		})

		Context("with cycles permitted", func() {
			BeforeEach(func() {
				g = newGearPair(world.WithLinkConfig(motionlink.Config{AllowCycles: true}))
			})

			It("settles a two-joint loop on a common speed", func() {
				Expect(g.w.AttachMotionLink(g.a, g.b, 1, false)).To(Succeed())
				Expect(g.w.AttachMotionLink(g.b, g.a, 1, false)).To(Succeed())
				Expect(g.w.Links().Cycles()).To(HaveLen(1))

				run(g.w, 60)
				va, vb := g.velocity(g.a), g.velocity(g.b)
				Expect(math.IsNaN(va)).To(BeFalse())
				Expect(va).To(BeNumerically("~", vb, 1e-9))
			})
		})

		Context("with bidirectional links", func() {
			BeforeEach(func() {
				g = newGearPair(world.WithLinkConfig(motionlink.Config{Bidirectional: true}))
			})

			It("lets the linked joint's motor drag the target along", func() {
				Expect(g.w.AttachMotionLink(g.b, g.a, 0.5, false)).To(Succeed())
				run(g.w, 300)

				va := g.velocity(g.a)
				Expect(va).To(BeNumerically("<", -2.05))
				Expect(g.velocity(g.b)).To(BeNumerically("~", 0.5*va, 1e-9))
			})
		})
	})

	Describe("rack and pinion", func() {
		It("drives a slider from a hinge", func() {
			cfg := dynamo.DefaultConfig()
			cfg.Gravity = r3.Vec{}
			w, err := world.New(cfg)
			Expect(err).NotTo(HaveOccurred())

			ground := w.InsertBody(body.NewFixed())
			pinion := w.InsertBody(body.NewCuboid(1, r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}))
			rack := body.NewCuboid(1, r3.Vec{X: 1, Y: 0.1, Z: 0.1})
			rack.Position = r3.Vec{Y: -0.6}
			rackH := w.InsertBody(rack)

			hinge, err := w.InsertJoint(joint.NewRevolute(ground, pinion, r3.Vec{Z: 1}).WithMotorVelocity(-2, 1000))
			Expect(err).NotTo(HaveOccurred())
			slider, err := w.InsertJoint(joint.NewPrismatic(ground, rackH, r3.Vec{X: 1}).
				WithAnchors(r3.Vec{Y: -0.6}, r3.Vec{}))
			Expect(err).NotTo(HaveOccurred())

			Expect(w.AttachMotionLink(slider, hinge, 0.5, true)).To(Succeed())
			run(w, 60)

			v, ok := w.JointVelocity(slider)
			Expect(ok).To(BeTrue())
			Expect(v).To(BeNumerically("~", 1, 1e-6))
		})
	})

	Describe("construction", func() {
		It("rejects an invalid configuration", func() {
			cfg := dynamo.DefaultConfig()
			cfg.Dt = 0
			_, err := world.New(cfg)
			Expect(err).To(MatchError(dynamo.ErrParameterBounds))
		})

		It("rejects joints on a single or missing body", func() {
			w, err := world.New(dynamo.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())
			a := w.InsertBody(body.NewFixed())
			b := w.InsertBody(body.NewCuboid(1, r3.Vec{X: 1, Y: 1, Z: 1}))

			_, err = w.InsertJoint(joint.NewRevolute(a, a, r3.Vec{Z: 1}))
			Expect(err).To(MatchError(dynamo.ErrInvalidJoint))

			Expect(w.RemoveBody(b)).To(BeTrue())
			_, err = w.InsertJoint(joint.NewRevolute(a, b, r3.Vec{Z: 1}))
			Expect(err).To(MatchError(dynamo.ErrUnknownBody))
		})
	})

	Describe("stepping", func() {
		It("is reproducible across runs", func() {
			build := func() *gearPair {
				g := newGearPair()
				Expect(g.w.AttachMotionLink(g.b, g.a, 0.75, true)).To(Succeed())
				return g
			}
			g1, g2 := build(), build()
			run(g1.w, 90)
			run(g2.w, 90)

			for _, h := range []body.Handle{g1.wa, g1.wb} {
				b1, _ := g1.w.Body(h)
				b2, _ := g2.w.Body(h)
				Expect(*b1).To(Equal(*b2))
			}
			Expect(g1.w.Time()).To(Equal(g2.w.Time()))
			Expect(g1.w.StepCount()).To(Equal(90))
		})

		It("reports a simulation error when state blows up", func() {
			g := newGearPair()
			b, _ := g.w.Body(g.wa)
			b.LinVel = r3.Vec{X: math.Inf(1)}

			_, err := g.w.Step()
			Expect(err).To(MatchError(dynamo.ErrInvalidState))
			var simErr *dynamo.SimulationError
			Expect(err).To(BeAssignableToTypeOf(simErr))
		})
	})
})
