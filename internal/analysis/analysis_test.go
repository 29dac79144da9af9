package analysis

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/physlab/internal/numeric"
	"github.com/san-kum/physlab/internal/physics"
	"github.com/san-kum/physlab/internal/sim"
)

func sine(freq, rate float64, n int) (ts, xs []float64) {
	for i := 0; i < n; i++ {
		t := float64(i) / rate
		ts = append(ts, t)
		xs = append(xs, 3+math.Sin(2*math.Pi*freq*t))
	}
	return ts, xs
}

func TestSpectrumFindsTone(t *testing.T) {
	_, xs := sine(5, 100, 200)
	if f := DominantFrequency(xs, 100); math.Abs(f-5) > 1e-9 {
		t.Errorf("dominant = %v Hz, want 5", f)
	}

	bins := Spectrum(xs, 100)
	if len(bins) != 101 {
		t.Fatalf("bins = %d, want 101", len(bins))
	}
	if a := bins[10].Amplitude; math.Abs(a-1) > 1e-9 {
		t.Errorf("amplitude at 5 Hz = %v, want 1", a)
	}
	if bins[0].Amplitude > 1e-9 {
		t.Errorf("mean not removed: DC = %v", bins[0].Amplitude)
	}

	top := TopBins(xs, 100, 3)
	if len(top) != 3 || math.Abs(top[0].Frequency-5) > 1e-9 {
		t.Errorf("top bins = %+v", top)
	}
}

func TestSpectrumDegenerate(t *testing.T) {
	if Spectrum([]float64{1, 2}, 60) != nil {
		t.Error("short series should have no spectrum")
	}
	if Spectrum(make([]float64, 16), 0) != nil {
		t.Error("zero sample rate should have no spectrum")
	}
	if DominantFrequency(nil, 60) != 0 {
		t.Error("empty series should have no dominant frequency")
	}
}

func TestCrossingsAndPeriod(t *testing.T) {
	ts, xs := sine(2, 200, 400)
	cs := Crossings(ts, xs, 3)
	if len(cs) != 3 {
		t.Fatalf("crossings = %v", cs)
	}
	for i, c := range cs {
		if want := 0.5 * float64(i+1); math.Abs(c-want) > 1e-3 {
			t.Errorf("crossing %d at %v, want %v", i, c, want)
		}
	}

	p, ok := Period(ts, xs, 3)
	if !ok || math.Abs(p-0.5) > 1e-3 {
		t.Errorf("period = %v, %v", p, ok)
	}
	if _, ok := Period(ts[:50], xs[:50], 3); ok {
		t.Error("a single crossing should not give a period")
	}
}

func runPendulum(t *testing.T, values map[string]float64, seconds float64) *sim.Result {
	t.Helper()
	cfg := sim.DefaultRunConfig()
	cfg.Duration = seconds
	res, err := sim.Run(context.Background(), physics.NewPendulum(nil, values), cfg)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestMeasuredPeriodGrowsWithAmplitude(t *testing.T) {
	for _, deg := range []float64{10, 60} {
		res := runPendulum(t, map[string]float64{"angle": deg, "substeps": 8}, 12)
		r := Analyze(res, "angle")
		want := physics.LargeAnglePeriod(1, 9.81, numeric.Rad(deg))
		if math.Abs(r.Period-want) > 0.01*want {
			t.Errorf("%v°: measured period %v, series %v", deg, r.Period, want)
		}
		if r.SampleRate < 59 || r.SampleRate > 61 {
			t.Errorf("sample rate = %v", r.SampleRate)
		}
	}
}

func TestPhasePortrait(t *testing.T) {
	res := runPendulum(t, nil, 2)
	p := PhasePortrait(res, "theta", "omega")
	if p == nil || len(p.Points) != len(res.Samples) {
		t.Fatalf("portrait = %+v", p)
	}
	if PhasePortrait(res, "theta", "spin") != nil {
		t.Error("unknown label should give nil")
	}

	plot := p.ASCII(40, 12)
	if lines := strings.Count(plot, "\n"); lines != 12 {
		t.Errorf("plot has %d lines", lines)
	}
	if !strings.Contains(plot, "•") {
		t.Error("plot has no points")
	}
	if (*Portrait)(nil).ASCII(10, 10) != "" {
		t.Error("nil portrait should plot nothing")
	}

	q := QuantityPortrait(res, "kinetic", "potential")
	if len(q.Points) != len(res.Samples) {
		t.Errorf("quantity portrait points = %d", len(q.Points))
	}
}

func TestAnalyzeAll(t *testing.T) {
	res := runPendulum(t, nil, 1)
	reports := AnalyzeAll(res)
	if len(reports) != len(res.Quantities()) {
		t.Fatalf("reports = %d", len(reports))
	}
	if reports[0].Name != "angle" {
		t.Errorf("first report = %q", reports[0].Name)
	}
}
