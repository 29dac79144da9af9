package storage_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/physics"
	"github.com/san-kum/physlab/internal/sim"
	"github.com/san-kum/physlab/internal/storage"
)

func run(s dynamo.Simulation, seconds float64) *sim.Result {
	cfg := sim.DefaultRunConfig()
	cfg.Duration = seconds
	cfg.Every = 5
	res, err := sim.Run(context.Background(), s, cfg)
	Expect(err).NotTo(HaveOccurred())
	return res
}

var _ = Describe("Store", func() {
	var (
		dir string
		st  *storage.Store
	)

	BeforeEach(func() {
		dir = filepath.Join(GinkgoT().TempDir(), "runs")
		st = storage.New(dir)
	})

	It("lists nothing before the first save", func() {
		runs, err := st.List()
		Expect(err).NotTo(HaveOccurred())
		Expect(runs).To(BeEmpty())

		_, err = st.Latest()
		Expect(err).To(MatchError(storage.ErrRunNotFound))
	})

	It("round-trips a run with events", func() {
		res := run(physics.NewProjectile(nil), 5)
		Expect(res.Status).To(Equal(dynamo.StatusStopped))

		id, err := st.Save(storage.RunMetadata{Sim: "projectile", FPS: 60, Duration: 5, Metrics: map[string]float64{"y_peak": 10.2}}, res)
		Expect(err).NotTo(HaveOccurred())
		for _, name := range []string{"metadata.json", "states.csv", "derived.csv", "events.csv"} {
			Expect(filepath.Join(dir, id, name)).To(BeAnExistingFile())
		}

		meta, got, err := st.LoadResult(id)
		Expect(err).NotTo(HaveOccurred())
		Expect(meta.ID).To(Equal(id))
		Expect(meta.Kind).To(Equal("projectile"))
		Expect(meta.Status).To(Equal("stopped"))
		Expect(meta.Metrics).To(HaveKeyWithValue("y_peak", 10.2))

		Expect(got.Kind).To(Equal(res.Kind))
		Expect(got.Status).To(Equal(res.Status))
		Expect(got.Frames).To(Equal(res.Frames))
		Expect(got.Labels).To(Equal(res.Labels))
		Expect(got.Params).To(Equal(res.Params))
		Expect(got.Samples).To(HaveLen(len(res.Samples)))
		for i, s := range res.Samples {
			Expect(got.Samples[i].Frame).To(Equal(s.Frame))
			Expect(got.Samples[i].Time).To(Equal(s.Time))
			Expect(got.Samples[i].State).To(Equal(s.State))
			Expect(got.Samples[i].Derived.Names()).To(Equal(s.Derived.Names()))
			for _, q := range s.Derived {
				Expect(got.Samples[i].Derived.Value(q.Name)).To(BeNumerically("~", q.Value, 1e-9))
			}
		}
		Expect(got.Events).To(HaveLen(1))
		Expect(got.Events[0].Name).To(Equal("landed"))
		Expect(got.Events[0].Detail).To(Equal(res.Events[0].Detail))
	})

	It("keeps an empty events file for runs without events", func() {
		id, err := st.Save(storage.RunMetadata{Sim: "pendulum"}, run(physics.NewPendulum(nil, nil), 1))
		Expect(err).NotTo(HaveOccurred())

		events, err := st.LoadEvents(id)
		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(BeEmpty())

		frames, times, states, err := st.LoadStates(id)
		Expect(err).NotTo(HaveOccurred())
		Expect(frames).To(HaveLen(13))
		Expect(times).To(HaveLen(13))
		Expect(states[0]).To(HaveLen(2))
	})

	It("gives each save its own directory and lists them in order", func() {
		res := run(physics.NewPendulum(nil, nil), 0.5)
		first, err := st.Save(storage.RunMetadata{Sim: "pendulum"}, res)
		Expect(err).NotTo(HaveOccurred())
		second, err := st.Save(storage.RunMetadata{Sim: "pendulum"}, res)
		Expect(err).NotTo(HaveOccurred())
		Expect(second).NotTo(Equal(first))

		runs, err := st.List()
		Expect(err).NotTo(HaveOccurred())
		Expect(runs).To(HaveLen(2))
		Expect(runs[0].ID).To(Equal(first))

		latest, err := st.Latest()
		Expect(err).NotTo(HaveOccurred())
		Expect(latest.ID).To(Equal(second))

		Expect(st.Delete(first)).To(Succeed())
		runs, _ = st.List()
		Expect(runs).To(HaveLen(1))
		Expect(st.Delete(first)).To(MatchError(storage.ErrRunNotFound))
	})

	It("skips directories without metadata", func() {
		Expect(os.MkdirAll(filepath.Join(dir, "junk"), 0755)).To(Succeed())
		runs, err := st.List()
		Expect(err).NotTo(HaveOccurred())
		Expect(runs).To(BeEmpty())

		_, err = st.Load("junk")
		Expect(err).To(MatchError(storage.ErrRunNotFound))
	})

	DescribeTable("removes the run directory when a write fails",
		func(file string) {
			res := run(physics.NewProjectile(nil), 5)
			restore := storage.FailWrites(file)
			defer restore()

			_, err := st.Save(storage.RunMetadata{Sim: "projectile"}, res)
			Expect(err).To(MatchError(storage.ErrWriteFailed))

			entries, err := os.ReadDir(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
			runs, err := st.List()
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(BeEmpty())
		},
		Entry("states", "states.csv"),
		Entry("derived", "derived.csv"),
		Entry("events", "events.csv"),
		Entry("metadata", "metadata.json"),
	)
})

var _ = Describe("StateHeader", func() {
	It("uses labels when they match the state width", func() {
		Expect(storage.StateHeader([]string{"theta", "omega"}, 2)).To(Equal([]string{"frame", "time", "theta", "omega"}))
	})

	It("falls back to indexed columns", func() {
		Expect(storage.StateHeader([]string{"theta"}, 3)).To(Equal([]string{"frame", "time", "x0", "x1", "x2"}))
	})
})

var _ = Describe("Export", func() {
	var (
		res  *sim.Result
		meta *storage.RunMetadata
	)

	BeforeEach(func() {
		res = run(physics.NewPendulum(nil, nil), 1)
		meta = &storage.RunMetadata{Sim: "pendulum", FPS: 60, Duration: 1}
	})

	It("writes JSON with series per quantity", func() {
		var buf bytes.Buffer
		Expect(storage.ExportJSON(&buf, meta, res)).To(Succeed())

		var data storage.ExportData
		Expect(json.Unmarshal(buf.Bytes(), &data)).To(Succeed())
		Expect(data.Sim).To(Equal("pendulum"))
		Expect(data.Kind).To(Equal("pendulum"))
		Expect(data.Steps).To(Equal(60))
		Expect(data.Times).To(HaveLen(len(res.Samples)))
		Expect(data.States).To(HaveLen(len(res.Samples)))
		Expect(data.Derived).To(HaveKey("energy"))
		Expect(data.Derived["energy"]).To(HaveLen(len(res.Samples)))
	})

	It("writes a wide CSV", func() {
		var buf bytes.Buffer
		Expect(storage.ExportCSV(&buf, res)).To(Succeed())

		records, err := csv.NewReader(&buf).ReadAll()
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(len(res.Samples) + 1))
		Expect(records[0][:4]).To(Equal([]string{"frame", "time", "theta", "omega"}))
		Expect(records[0]).To(HaveLen(4 + len(res.Quantities())))
	})

	It("writes nothing for an empty trace", func() {
		var buf bytes.Buffer
		Expect(storage.ExportCSV(&buf, &sim.Result{})).To(Succeed())
		Expect(buf.Len()).To(BeZero())
	})
})
