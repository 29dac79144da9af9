package metrics

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/physics"
	"github.com/san-kum/physlab/internal/sim"
)

func derived(name string, v float64) dynamo.Derived {
	var d dynamo.Derived
	d.Add(name, name, "", v)
	return d
}

func TestDrift(t *testing.T) {
	m := NewDrift("energy")
	for _, v := range []float64{2, 2.1, 1.8, 2} {
		m.Observe(derived("energy", v), 0)
	}
	if got := m.Value(); math.Abs(got-0.1) > 1e-12 {
		t.Errorf("drift = %v, want 0.1", got)
	}
	if m.Name() != "energy_drift" {
		t.Errorf("name = %q", m.Name())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
	m.Observe(derived("other", 5), 0)
	if m.Value() != 0 {
		t.Error("missing quantity should be ignored")
	}
}

func TestDriftFromZero(t *testing.T) {
	m := NewDrift("momentum")
	m.Observe(derived("momentum", 0), 0)
	m.Observe(derived("momentum", -0.5), 0)
	if m.Value() != 0.5 {
		t.Errorf("absolute drift = %v, want 0.5", m.Value())
	}
}

func TestPeakMeanStability(t *testing.T) {
	peak, mean, stab := NewPeak("x"), NewMean("x"), NewStability("x", 2)
	for _, v := range []float64{1, -3, 2, 0} {
		d := derived("x", v)
		peak.Observe(d, 0)
		mean.Observe(d, 0)
		stab.Observe(d, 0)
	}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"peak", peak.Value(), 3},
		{"mean", mean.Value(), 0},
		{"stability", stab.Value(), 0.75},
	}
	for _, tt := range tests {
		if math.Abs(tt.got-tt.want) > 1e-12 {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	if NewStability("x", 1).Value() != 1 {
		t.Error("stability without samples should be 1")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize("v", []float64{1, 2, 3, 4})
	if s.Min != 1 || s.Max != 4 || s.Mean != 2.5 || s.Final != 4 {
		t.Errorf("summary = %+v", s)
	}
	if math.Abs(s.StdDev-math.Sqrt(5.0/3)) > 1e-12 {
		t.Errorf("stddev = %v", s.StdDev)
	}

	if one := Summarize("v", []float64{7}); one.StdDev != 0 || one.Mean != 7 {
		t.Errorf("single sample summary = %+v", one)
	}
	if empty := Summarize("v", nil); empty != (Summary{Name: "v"}) {
		t.Errorf("empty summary = %+v", empty)
	}
}

func TestCorrelation(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	if c := Correlation(xs, []float64{2, 4, 6, 8}); math.Abs(c-1) > 1e-12 {
		t.Errorf("correlation = %v, want 1", c)
	}
	if c := Correlation(xs, []float64{5, 5, 5, 5}); c != 0 {
		t.Errorf("constant series correlation = %v, want 0", c)
	}
	if c := Correlation(xs, xs[:2]); c != 0 {
		t.Errorf("mismatched lengths = %v, want 0", c)
	}
}

func TestEvaluateRun(t *testing.T) {
	cfg := sim.DefaultRunConfig()
	cfg.Duration = 2
	res, err := sim.Run(context.Background(), physics.NewPendulum(nil, nil), cfg)
	if err != nil {
		t.Fatal(err)
	}

	got := Evaluate(res, Defaults(dynamo.KindPendulum)...)
	if d := got["energy_drift"]; d <= 0 || d > 0.02 {
		t.Errorf("energy drift = %v", d)
	}
	if got["omega_peak"] <= 0 {
		t.Error("pendulum never moved")
	}
	if n := len(SummarizeResult(res)); n != len(res.Quantities()) {
		t.Errorf("summaries = %d, want %d", n, len(res.Quantities()))
	}
}

func TestObserver(t *testing.T) {
	s := physics.NewPendulum(nil, nil)
	frames := sim.NewManualFrames(time.Unix(0, 0))
	peak := NewPeak("omega")
	ctrl := sim.NewController(s, frames, sim.WithObserver(Observer(peak)))
	if err := ctrl.Launch(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 60; i++ {
		frames.Advance(16 * time.Millisecond)
	}
	if peak.Value() <= 0 {
		t.Error("observer saw no motion")
	}
}

func TestEventCounter(t *testing.T) {
	cfg := sim.DefaultRunConfig()
	res, err := sim.Run(context.Background(), physics.NewProjectile(nil), cfg)
	if err != nil {
		t.Fatal(err)
	}
	c := CountEvents(res)
	if c.Count("landed") != 1 || c.Total() != 1 {
		t.Errorf("events = %v, total %d", c.Names(), c.Total())
	}

	c.OnFrame(nil, sim.FrameInfo{Outcome: dynamo.Outcome{Events: []dynamo.Event{
		{Name: "collision"}, {Name: "collision"},
	}}})
	if names := c.Names(); len(names) != 2 || names[0] != "collision" || c.Count("collision") != 2 {
		t.Errorf("names = %v", names)
	}
	c.Reset()
	if c.Total() != 0 {
		t.Error("reset kept counts")
	}
}
