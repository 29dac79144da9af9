package sim_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/numeric"
	"github.com/san-kum/physlab/internal/params"
	"github.com/san-kum/physlab/internal/physics"
	"github.com/san-kum/physlab/internal/sim"
)

const frameInterval = 16 * time.Millisecond

var _ = Describe("Controller", func() {
	var (
		frames *sim.ManualFrames
		ctrl   *sim.Controller
		infos  []sim.FrameInfo
	)

	build := func(s dynamo.Simulation) {
		infos = nil
		ctrl = sim.NewController(s, frames, sim.WithObserver(sim.ObserverFunc(func(_ dynamo.Simulation, info sim.FrameInfo) {
			infos = append(infos, info)
		})))
	}

	BeforeEach(func() {
		frames = sim.NewManualFrames(time.Unix(0, 0))
		build(physics.NewPendulum(nil, nil))
	})

	It("starts Ready and idle", func() {
		Expect(ctrl.Status()).To(Equal(dynamo.StatusReady))
		Expect(ctrl.Scheduled()).To(BeFalse())
		Expect(frames.Pending()).To(Equal(0))
	})

	It("runs after launch and reports every frame", func() {
		Expect(ctrl.Launch()).To(Succeed())
		Expect(ctrl.Status()).To(Equal(dynamo.StatusRunning))
		Expect(ctrl.Simulation().Params().Locked()).To(BeTrue())

		for i := 0; i < 5; i++ {
			frames.Advance(frameInterval)
		}
		Expect(ctrl.Frame()).To(Equal(5))
		Expect(infos).To(HaveLen(5))
		Expect(infos[4].Frame).To(Equal(5))
		Expect(infos[4].Elapsed).To(BeNumerically("~", 5*0.016, 1e-12))
	})

	It("treats a second pause as a no-op", func() {
		Expect(ctrl.Start()).To(Succeed())
		frames.Advance(frameInterval)

		Expect(ctrl.Pause()).To(Succeed())
		once := ctrl.Simulation().Snapshot()
		Expect(ctrl.Pause()).To(Succeed())

		Expect(ctrl.Status()).To(Equal(dynamo.StatusPaused))
		Expect(ctrl.Simulation().Snapshot()).To(Equal(once))
		Expect(frames.Pending()).To(Equal(0))
		Expect(ctrl.Simulation().Params().Locked()).To(BeFalse())

		frames.Advance(time.Second)
		Expect(ctrl.Frame()).To(Equal(1))
	})

	It("treats a second reset as a no-op", func() {
		initial := ctrl.Simulation().Snapshot()
		Expect(ctrl.Launch()).To(Succeed())
		frames.Advance(frameInterval)
		frames.Advance(frameInterval)

		Expect(ctrl.Reset()).To(Succeed())
		once := ctrl.Simulation().Snapshot()
		Expect(ctrl.Reset()).To(Succeed())

		Expect(once).To(Equal(initial))
		Expect(ctrl.Simulation().Snapshot()).To(Equal(once))
		Expect(ctrl.Status()).To(Equal(dynamo.StatusReady))
		Expect(ctrl.Frame()).To(Equal(0))
		Expect(ctrl.Simulation().Elapsed()).To(BeZero())
	})

	It("cancels the pending tick on reset", func() {
		Expect(ctrl.Launch()).To(Succeed())
		Expect(frames.Pending()).To(Equal(1))
		Expect(ctrl.Reset()).To(Succeed())
		Expect(frames.Pending()).To(Equal(0))

		frames.Advance(frameInterval)
		Expect(infos).To(BeEmpty())
		Expect(ctrl.Simulation().Elapsed()).To(BeZero())
	})

	It("bounds the first dt after a long pause", func() {
		Expect(ctrl.Launch()).To(Succeed())
		frames.Advance(frameInterval)
		Expect(ctrl.Pause()).To(Succeed())

		frames.Sleep(10 * time.Minute)
		Expect(ctrl.Resume()).To(Succeed())
		frames.Advance(frameInterval)

		Expect(infos).To(HaveLen(2))
		Expect(infos[1].Dt).To(BeNumerically("<=", sim.DefaultMaxDt))
		Expect(infos[1].Dt).To(BeNumerically("~", 0.016, 1e-12))
	})

	It("toggles between running and paused", func() {
		Expect(ctrl.Toggle()).To(Succeed())
		Expect(ctrl.Status()).To(Equal(dynamo.StatusRunning))
		Expect(ctrl.Toggle()).To(Succeed())
		Expect(ctrl.Status()).To(Equal(dynamo.StatusPaused))
		Expect(ctrl.Toggle()).To(Succeed())
		Expect(ctrl.Status()).To(Equal(dynamo.StatusRunning))
	})

	Context("with a terminal condition", func() {
		BeforeEach(func() {
			build(physics.NewProjectile(map[string]float64{"speed": 5, "angle": 45}))
		})

		It("stops and stays stopped until reset", func() {
			Expect(ctrl.Launch()).To(Succeed())
			for i := 0; i < 200 && ctrl.Status() == dynamo.StatusRunning; i++ {
				frames.Advance(frameInterval)
			}
			Expect(ctrl.Status()).To(Equal(dynamo.StatusStopped))
			Expect(ctrl.Scheduled()).To(BeFalse())

			last := infos[len(infos)-1]
			Expect(last.Outcome.Stopped).To(BeTrue())
			Expect(last.Outcome.Events[0].Name).To(Equal("landed"))

			stoppedAt := ctrl.Frame()
			Expect(ctrl.Start()).To(Succeed())
			frames.Advance(frameInterval)
			Expect(ctrl.Frame()).To(Equal(stoppedAt))
			Expect(ctrl.Status()).To(Equal(dynamo.StatusStopped))

			Expect(ctrl.Reset()).To(Succeed())
			Expect(ctrl.Status()).To(Equal(dynamo.StatusReady))
		})

		It("can be launched again without a reset", func() {
			Expect(ctrl.Launch()).To(Succeed())
			for i := 0; i < 200 && ctrl.Status() == dynamo.StatusRunning; i++ {
				frames.Advance(frameInterval)
			}
			Expect(ctrl.Launch()).To(Succeed())
			Expect(ctrl.Status()).To(Equal(dynamo.StatusRunning))
			Expect(ctrl.Simulation().Elapsed()).To(BeZero())
		})
	})

	Describe("Close", func() {
		It("guarantees no tick after unmount", func() {
			Expect(ctrl.Launch()).To(Succeed())
			frames.Advance(frameInterval)
			ctrl.Close()
			ctrl.Close()

			Expect(ctrl.Closed()).To(BeTrue())
			Expect(frames.Pending()).To(Equal(0))
			frames.Advance(frameInterval)
			Expect(infos).To(HaveLen(1))
		})

		It("rejects later operations", func() {
			ctrl.Close()
			Expect(ctrl.Launch()).To(MatchError(dynamo.ErrClosed))
			Expect(ctrl.Start()).To(MatchError(dynamo.ErrClosed))
			Expect(ctrl.Pause()).To(MatchError(dynamo.ErrClosed))
			Expect(ctrl.Reset()).To(MatchError(dynamo.ErrClosed))
			_, err := ctrl.SetParam("angle", 10)
			Expect(err).To(MatchError(dynamo.ErrClosed))
		})
	})

	Describe("parameters", func() {
		It("rebuilds the initial condition while Ready", func() {
			v, err := ctrl.SetParam("angle", 45)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(45.0))
			Expect(ctrl.Simulation().Snapshot()[0]).To(BeNumerically("~", numeric.Rad(45), 1e-12))
		})

		It("clamps out-of-range input", func() {
			v, err := ctrl.SetParam("angle", 500)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(90.0))
		})

		It("locks setup parameters while running but not live ones", func() {
			Expect(ctrl.Launch()).To(Succeed())

			_, err := ctrl.SetParam("length", 2)
			Expect(err).To(MatchError(params.ErrParameterLocked))

			v, err := ctrl.SetParam("damping", 0.5)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(0.5))

			Expect(ctrl.Pause()).To(Succeed())
			_, err = ctrl.NudgeParam("length", 1)
			Expect(err).NotTo(HaveOccurred())
		})

		It("reports unknown names", func() {
			_, err := ctrl.SetParam("spin", 1)
			Expect(err).To(MatchError(params.ErrUnknownParameter))
		})
	})
})
