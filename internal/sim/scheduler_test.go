package sim_test

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/physlab/internal/sim"
)

var _ = Describe("Scheduler", func() {
	var (
		frames *sim.ManualFrames
		ticks  []float64
		sched  *sim.Scheduler
	)

	BeforeEach(func() {
		frames = sim.NewManualFrames(time.Unix(100, 0))
		ticks = nil
		sched = sim.NewScheduler(frames, 0.05, func(dt float64) { ticks = append(ticks, dt) })
	})

	It("keeps at most one request outstanding", func() {
		sched.Start()
		sched.Start()
		Expect(frames.Pending()).To(Equal(1))
		Expect(sched.Scheduled()).To(BeTrue())

		frames.Advance(10 * time.Millisecond)
		Expect(ticks).To(HaveLen(1))
		Expect(frames.Pending()).To(Equal(1))
	})

	It("reports the time since the previous frame", func() {
		sched.Start()
		frames.Advance(10 * time.Millisecond)
		frames.Advance(20 * time.Millisecond)
		Expect(ticks).To(HaveLen(2))
		Expect(ticks[0]).To(BeNumerically("~", 0.01, 1e-12))
		Expect(ticks[1]).To(BeNumerically("~", 0.02, 1e-12))
	})

	It("clamps a stalled frame", func() {
		sched.Start()
		frames.Advance(3 * time.Second)
		Expect(ticks).To(Equal([]float64{0.05}))
	})

	It("never fires a cancelled request", func() {
		sched.Start()
		sched.Cancel()
		sched.Cancel()
		Expect(frames.Pending()).To(Equal(0))
		Expect(sched.Scheduled()).To(BeFalse())

		frames.Advance(time.Second)
		Expect(ticks).To(BeEmpty())
	})

	It("measures the first frame after a restart from the restart", func() {
		sched.Start()
		frames.Advance(16 * time.Millisecond)
		sched.Cancel()

		frames.Sleep(time.Hour)
		sched.Start()
		frames.Advance(16 * time.Millisecond)

		Expect(ticks).To(HaveLen(2))
		Expect(ticks[1]).To(BeNumerically("~", 0.016, 1e-12))
	})

	It("stays idle when the tick cancels it", func() {
		var s *sim.Scheduler
		s = sim.NewScheduler(frames, 0, func(float64) { s.Cancel() })
		s.Start()
		Expect(frames.Advance(time.Millisecond)).To(Equal(1))
		Expect(frames.Pending()).To(Equal(0))
		Expect(s.MaxDt()).To(Equal(sim.DefaultMaxDt))
	})

	DescribeTable("ClampDt",
		func(dt, want float64) {
			Expect(sim.ClampDt(dt, 0.05)).To(Equal(want))
		},
		Entry("normal frame", 0.016, 0.016),
		Entry("stall", 2.0, 0.05),
		Entry("zero", 0.0, 0.0),
		Entry("clock went backwards", -0.5, 0.0),
		Entry("NaN", math.NaN(), 0.0),
		Entry("infinite", math.Inf(1), 0.05),
	)
})

var _ = Describe("ManualFrames", func() {
	It("defers requests made while firing to the next advance", func() {
		frames := sim.NewManualFrames(time.Unix(0, 0))
		calls := 0
		var again func(time.Time)
		again = func(time.Time) {
			calls++
			frames.Request(again)
		}
		frames.Request(again)

		Expect(frames.Advance(time.Millisecond)).To(Equal(1))
		Expect(frames.Advance(time.Millisecond)).To(Equal(1))
		Expect(calls).To(Equal(2))
	})

	It("skips a request cancelled by an earlier callback", func() {
		frames := sim.NewManualFrames(time.Unix(0, 0))
		var second sim.FrameID
		fired := []int{}
		frames.Request(func(time.Time) {
			fired = append(fired, 1)
			frames.Cancel(second)
		})
		second = frames.Request(func(time.Time) { fired = append(fired, 2) })

		frames.Advance(time.Millisecond)
		Expect(fired).To(Equal([]int{1}))
	})
})
