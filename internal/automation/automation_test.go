package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/params"
	"github.com/san-kum/physlab/internal/registry"
	"github.com/san-kum/physlab/internal/sim"
)

const scenarioYAML = `
name: tour
description: two quick runs
steps:
  - sim: pendulum
    preset: small
    duration: 1
  - sim: projectile
    duration: 5
    params:
      angle: 60
    save_as: lob
`

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tour.yaml")
	if err := os.WriteFile(path, []byte(scenarioYAML), 0644); err != nil {
		t.Fatal(err)
	}
	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "tour" || len(sc.Steps) != 2 {
		t.Fatalf("scenario = %+v", sc)
	}
	if sc.Steps[1].SaveAs != "lob" || sc.Steps[1].Params["angle"] != 60 {
		t.Errorf("step 2 = %+v", sc.Steps[1])
	}
}

func TestParseScenarioErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no steps", "name: empty\n"},
		{"missing sim", "steps:\n  - duration: 1\n"},
		{"negative duration", "steps:\n  - sim: pendulum\n    duration: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseScenario([]byte(tt.data)); !errors.Is(err, ErrInvalidScenario) {
				t.Errorf("err = %v, want ErrInvalidScenario", err)
			}
		})
	}
	if _, err := ParseScenario([]byte("steps: [")); err == nil {
		t.Error("expected yaml error")
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	results, err := RunScenario(context.Background(), sc, registry.New(), sim.DefaultRunConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}

	pend := results[0].Result
	if pend.Params["angle"] != 10 || pend.Frames != 60 {
		t.Errorf("pendulum run: angle %v, frames %d", pend.Params["angle"], pend.Frames)
	}
	proj := results[1].Result
	if proj.Status != dynamo.StatusStopped || proj.Params["angle"] != 60 {
		t.Errorf("projectile run: status %v, angle %v", proj.Status, proj.Params["angle"])
	}
}

func TestRunScenarioStopsAtFailure(t *testing.T) {
	sc := &Scenario{Steps: []ScenarioStep{
		{Sim: "pendulum", Duration: 0.5},
		{Sim: "warp-drive"},
		{Sim: "pendulum"},
	}}
	results, err := RunScenario(context.Background(), sc, registry.New(), sim.DefaultRunConfig())
	if !errors.Is(err, registry.ErrUnknownSimulation) {
		t.Errorf("err = %v", err)
	}
	if len(results) != 1 {
		t.Errorf("results = %d, want the one completed step", len(results))
	}

	sc = &Scenario{Steps: []ScenarioStep{{Sim: "pendulum", Preset: "nope"}}}
	if _, err := RunScenario(context.Background(), sc, registry.New(), sim.DefaultRunConfig()); !errors.Is(err, ErrInvalidScenario) {
		t.Errorf("unknown preset err = %v", err)
	}
}

func TestSweepPoints(t *testing.T) {
	tests := []struct {
		steps int
		want  []float64
	}{
		{0, nil},
		{1, []float64{10}},
		{3, []float64{10, 20, 30}},
	}
	for _, tt := range tests {
		got := (&ParameterSweep{Min: 10, Max: 30, Steps: tt.steps}).Points()
		if len(got) != len(tt.want) {
			t.Errorf("steps %d: %v", tt.steps, got)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("steps %d: %v", tt.steps, got)
			}
		}
	}
}

func TestRunSweep(t *testing.T) {
	sweep := &ParameterSweep{Sim: "projectile", Param: "angle", Min: 15, Max: 75, Steps: 5, Limit: 2}
	cfg := sim.DefaultRunConfig()
	cfg.Duration = 5
	results, err := RunSweep(context.Background(), sweep, registry.New(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 5 {
		t.Fatalf("results = %d", len(results))
	}
	for i, r := range results {
		if want := 15 + 15*float64(i); r.Value != want {
			t.Errorf("point %d value = %v, want %v", i, r.Value, want)
		}
		if r.Status != dynamo.StatusStopped || r.Events != 1 {
			t.Errorf("point %d: status %v, events %d", i, r.Status, r.Events)
		}
		if i > 0 && r.Metrics["y_peak"] <= results[i-1].Metrics["y_peak"] {
			t.Errorf("peak height should grow with angle: %v then %v", results[i-1].Metrics["y_peak"], r.Metrics["y_peak"])
		}
	}
}

func TestRunSweepErrors(t *testing.T) {
	reg := registry.New()
	cfg := sim.DefaultRunConfig()
	if _, err := RunSweep(context.Background(), &ParameterSweep{Sim: "pendulum", Param: "angle"}, reg, cfg); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("zero steps err = %v", err)
	}
	if _, err := RunSweep(context.Background(), &ParameterSweep{Sim: "pendulum", Param: "spin", Steps: 2}, reg, cfg); !errors.Is(err, params.ErrUnknownParameter) {
		t.Errorf("unknown param err = %v", err)
	}
	if _, err := RunSweep(context.Background(), &ParameterSweep{Sim: "nope", Param: "angle", Steps: 2}, reg, cfg); !errors.Is(err, registry.ErrUnknownSimulation) {
		t.Errorf("unknown sim err = %v", err)
	}
}

func TestRunMonteCarloDeterministic(t *testing.T) {
	mc := &MonteCarloConfig{
		Sim:    "pendulum",
		Jitter: map[string]float64{"angle": 10},
		Trials: 6,
		Seed:   7,
		Limit:  3,
	}
	cfg := sim.DefaultRunConfig()
	cfg.Duration = 1

	first, err := RunMonteCarlo(context.Background(), mc, registry.New(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := RunMonteCarlo(context.Background(), mc, registry.New(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	for i := range first {
		a, b := first[i].Values["angle"], second[i].Values["angle"]
		if a != b {
			t.Errorf("trial %d: angle %v vs %v", i, a, b)
		}
		if a < 20 || a > 40 {
			t.Errorf("trial %d: angle %v outside jitter", i, a)
		}
	}
	if stable, unstable := MonteCarloStats(first); stable != 6 || unstable != 0 {
		t.Errorf("stable %d, unstable %d", stable, unstable)
	}

	if _, err := RunMonteCarlo(context.Background(), &MonteCarloConfig{Sim: "pendulum"}, registry.New(), cfg); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("zero trials err = %v", err)
	}
}
