package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/physics"
	"github.com/san-kum/physlab/internal/sim"
)

func fastConfig(duration float64) sim.RunConfig {
	cfg := sim.DefaultRunConfig()
	cfg.Duration = duration
	return cfg
}

var _ = Describe("Run", func() {
	DescribeTable("rejects invalid configurations",
		func(mutate func(*sim.RunConfig)) {
			cfg := sim.DefaultRunConfig()
			mutate(&cfg)
			_, err := sim.Run(context.Background(), physics.NewPendulum(nil, nil), cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		},
		Entry("zero fps", func(c *sim.RunConfig) { c.FPS = 0 }),
		Entry("negative fps", func(c *sim.RunConfig) { c.FPS = -30 }),
		Entry("zero duration", func(c *sim.RunConfig) { c.Duration = 0 }),
		Entry("NaN duration", func(c *sim.RunConfig) { c.Duration = math.NaN() }),
		Entry("negative max dt", func(c *sim.RunConfig) { c.MaxDt = -1 }),
	)

	It("records one sample per frame plus the initial state", func() {
		res, err := sim.Run(context.Background(), physics.NewPendulum(nil, nil), fastConfig(1))
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Kind).To(Equal(dynamo.KindPendulum))
		Expect(res.Frames).To(Equal(60))
		Expect(res.Samples).To(HaveLen(61))
		Expect(res.Samples[0].Time).To(BeZero())
		Expect(res.Elapsed).To(BeNumerically("~", 1, 1e-6))
		Expect(res.Status).To(Equal(dynamo.StatusRunning))
		Expect(res.Labels).To(Equal([]string{"theta", "omega"}))
		Expect(res.Params).To(HaveKeyWithValue("angle", 30.0))
		Expect(res.Quantities()).To(ContainElement("energy"))
		Expect(res.Series("energy")).To(HaveLen(61))
	})

	It("samples every n-th frame", func() {
		cfg := fastConfig(1)
		cfg.Every = 10
		res, err := sim.Run(context.Background(), physics.NewPendulum(nil, nil), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Samples).To(HaveLen(7))
		Expect(res.Samples[6].Frame).To(Equal(60))
	})

	It("covers the whole duration when frames are clamped", func() {
		cfg := fastConfig(10)
		cfg.FPS = 10
		res, err := sim.Run(context.Background(), physics.NewPendulum(nil, nil), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Elapsed).To(BeNumerically("~", 10, 1e-6))
		Expect(res.Frames).To(Equal(200))
	})

	It("keeps sample times on the physics clock with a long max dt", func() {
		cfg := fastConfig(2)
		cfg.FPS = 5
		cfg.MaxDt = 0.2
		res, err := sim.Run(context.Background(), physics.NewFreeFall(map[string]float64{"height": 500}), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Frames).To(Equal(10))

		last, ok := res.Final()
		Expect(ok).To(BeTrue())
		Expect(last.Time).To(BeNumerically("~", 2, 1e-6))
		Expect(last.Derived.Value("time")).To(BeNumerically("~", last.Time, 1e-6))
	})

	It("ends early on a terminal condition", func() {
		res, err := sim.Run(context.Background(), physics.NewProjectile(nil), fastConfig(30))
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Status).To(Equal(dynamo.StatusStopped))
		Expect(res.Frames).To(BeNumerically("<", 30*60))
		Expect(res.Events).To(ContainElement(HaveField("Name", "landed")))

		last, ok := res.Final()
		Expect(ok).To(BeTrue())
		Expect(last.Frame).To(Equal(res.Frames))
		Expect(last.State[1]).To(BeZero())
	})

	It("returns the partial trace when cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		res, err := sim.Run(ctx, physics.NewPendulum(nil, nil), fastConfig(1))
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(res).NotTo(BeNil())
		Expect(res.Frames).To(Equal(0))
	})
})

var _ = Describe("Ensemble", func() {
	It("runs independent members and keeps their order", func() {
		e := sim.NewEnsemble(func(i int) (dynamo.Simulation, error) {
			return physics.NewGasBox(map[string]float64{"seed": float64(i), "count": 10}), nil
		}, 4)
		e.SetLimit(2)

		results, err := e.Run(context.Background(), fastConfig(0.5))
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(4))
		for i, res := range results {
			Expect(res.Params["seed"]).To(Equal(float64(i)))
			Expect(res.Frames).To(Equal(30))
		}
		Expect(results[0].Samples[0].State).NotTo(Equal(results[1].Samples[0].State))
	})

	It("fails when a member cannot be built", func() {
		boom := errors.New("no such simulation")
		e := sim.NewEnsemble(func(i int) (dynamo.Simulation, error) {
			if i == 2 {
				return nil, boom
			}
			return physics.NewPendulum(nil, nil), nil
		}, 3)

		_, err := e.Run(context.Background(), fastConfig(0.1))
		Expect(err).To(MatchError(boom))
	})

	It("needs at least one member", func() {
		_, err := sim.NewEnsemble(nil, 0).Run(context.Background(), fastConfig(1))
		Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
	})
})
