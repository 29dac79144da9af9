package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math/rand/v2"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/physlab/internal/config"
	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/metrics"
	"github.com/san-kum/physlab/internal/params"
	"github.com/san-kum/physlab/internal/registry"
	"github.com/san-kum/physlab/internal/sim"
)

var ErrInvalidScenario = errors.New("automation: invalid scenario")

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run in a scenario. Zero engine fields fall back
// to the run defaults.
type ScenarioStep struct {
	Sim        string             `yaml:"sim"`
	Integrator string             `yaml:"integrator"`
	Preset     string             `yaml:"preset"`
	Duration   float64            `yaml:"duration"`
	FPS        float64            `yaml:"fps"`
	Every      int                `yaml:"every"`
	Params     map[string]float64 `yaml:"params"`
	SaveAs     string             `yaml:"save_as"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%w: no steps", ErrInvalidScenario)
	}
	for i, step := range scenario.Steps {
		if step.Sim == "" {
			return nil, fmt.Errorf("%w: step %d has no sim", ErrInvalidScenario, i+1)
		}
		if step.Duration < 0 || step.FPS < 0 {
			return nil, fmt.Errorf("%w: step %d has a negative duration or fps", ErrInvalidScenario, i+1)
		}
	}
	return &scenario, nil
}

// Values merges the step's preset and explicit params.
func (s ScenarioStep) Values() (map[string]float64, error) {
	values := make(map[string]float64)
	if s.Preset != "" {
		p := config.GetPreset(s.Sim, s.Preset)
		if p == nil {
			return nil, fmt.Errorf("%w: unknown preset %s/%s", ErrInvalidScenario, s.Sim, s.Preset)
		}
		maps.Copy(values, p)
	}
	maps.Copy(values, s.Params)
	return values, nil
}

func (s ScenarioStep) runConfig(base sim.RunConfig) sim.RunConfig {
	if s.Duration > 0 {
		base.Duration = s.Duration
	}
	if s.FPS > 0 {
		base.FPS = s.FPS
	}
	if s.Every > 0 {
		base.Every = s.Every
	}
	return base
}

type StepResult struct {
	Step   ScenarioStep
	Result *sim.Result
}

// RunScenario executes all steps in order, stopping at the first failure.
func RunScenario(ctx context.Context, scenario *Scenario, reg *registry.Registry, base sim.RunConfig) ([]StepResult, error) {
	logger := base.Logger
	if logger == nil {
		logger = slog.Default()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Info("scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "sim", step.Sim)

		values, err := step.Values()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		s, err := reg.BuildWith(step.Sim, step.Integrator, values)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		res, err := sim.Run(ctx, s, step.runConfig(base))
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		results = append(results, StepResult{Step: step, Result: res})
	}
	return results, nil
}

// ParameterSweep runs one simulation across evenly spaced values of a
// single parameter
type ParameterSweep struct {
	Sim        string
	Integrator string
	Param      string
	Min        float64
	Max        float64
	Steps      int
	Values     map[string]float64
	Limit      int
}

// SweepResult holds the outcome of one sweep point
type SweepResult struct {
	Value   float64
	Status  dynamo.Status
	Elapsed float64
	Final   dynamo.State
	Events  int
	Metrics map[string]float64
}

// Points lists the requested parameter values, before clamping.
func (p *ParameterSweep) Points() []float64 {
	if p.Steps < 1 {
		return nil
	}
	if p.Steps == 1 {
		return []float64{p.Min}
	}
	step := (p.Max - p.Min) / float64(p.Steps-1)
	out := make([]float64, p.Steps)
	for i := range out {
		out[i] = p.Min + float64(i)*step
	}
	return out
}

// RunSweep executes a sweep concurrently. Results are in point order and
// report the value the parameter store actually held.
func RunSweep(ctx context.Context, sweep *ParameterSweep, reg *registry.Registry, cfg sim.RunConfig) ([]SweepResult, error) {
	points := sweep.Points()
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: sweep needs at least one step", dynamo.ErrInvalidConfig)
	}
	sample, err := reg.BuildWith(sweep.Sim, sweep.Integrator, sweep.Values)
	if err != nil {
		return nil, err
	}
	if _, ok := sample.Params().Spec(sweep.Param); !ok {
		return nil, fmt.Errorf("%w: %s has no %q", params.ErrUnknownParameter, sweep.Sim, sweep.Param)
	}

	factory := func(i int) (dynamo.Simulation, error) {
		values := maps.Clone(sweep.Values)
		if values == nil {
			values = make(map[string]float64)
		}
		values[sweep.Param] = points[i]
		return reg.BuildWith(sweep.Sim, sweep.Integrator, values)
	}
	ens := sim.NewEnsemble(factory, len(points))
	ens.SetLimit(sweep.Limit)
	runs, err := ens.Run(ctx, cfg)
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(runs))
	for i, res := range runs {
		results[i] = summarize(res, res.Params[sweep.Param])
	}
	return results, nil
}

func summarize(res *sim.Result, value float64) SweepResult {
	out := SweepResult{
		Value:   value,
		Status:  res.Status,
		Elapsed: res.Elapsed,
		Events:  len(res.Events),
		Metrics: metrics.Evaluate(res, metrics.Defaults(res.Kind)...),
	}
	if final, ok := res.Final(); ok {
		out.Final = final.State
	}
	return out
}

// MonteCarloConfig jitters parameters uniformly around their base values
type MonteCarloConfig struct {
	Sim        string
	Integrator string
	Values     map[string]float64
	// Jitter is the half-width of the uniform perturbation per parameter.
	Jitter map[string]float64
	Trials int
	Seed   uint64
	Limit  int
}

// MonteCarloResult holds one trial
type MonteCarloResult struct {
	TrialID int
	Values  map[string]float64
	Final   dynamo.State
	Stable  bool // state stayed finite and bounded
}

const stableBound = 1e6

// RunMonteCarlo executes trials with perturbed parameters. Perturbations are
// drawn up front from Seed, so results do not depend on scheduling.
func RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig, reg *registry.Registry, cfg sim.RunConfig) ([]MonteCarloResult, error) {
	if mc.Trials < 1 {
		return nil, fmt.Errorf("%w: monte carlo needs at least one trial", dynamo.ErrInvalidConfig)
	}
	sample, err := reg.BuildWith(mc.Sim, mc.Integrator, mc.Values)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(mc.Seed, mc.Seed^0x9e3779b97f4a7c15))
	names := make([]string, 0, len(mc.Jitter))
	for name := range mc.Jitter {
		names = append(names, name)
	}
	sort.Strings(names)

	trials := make([]map[string]float64, mc.Trials)
	for t := range trials {
		values := maps.Clone(mc.Values)
		if values == nil {
			values = make(map[string]float64)
		}
		for _, name := range names {
			values[name] = sample.Params().Get(name) + (rng.Float64()*2-1)*mc.Jitter[name]
		}
		trials[t] = values
	}

	cfg.ValidateState = false
	ens := sim.NewEnsemble(func(i int) (dynamo.Simulation, error) {
		return reg.BuildWith(mc.Sim, mc.Integrator, trials[i])
	}, mc.Trials)
	ens.SetLimit(mc.Limit)
	runs, err := ens.Run(ctx, cfg)
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(runs))
	for i, res := range runs {
		r := MonteCarloResult{TrialID: i, Values: res.Params, Stable: true}
		if final, ok := res.Final(); ok {
			r.Final = final.State
			r.Stable = final.State.IsValid() && final.State.Norm() < stableBound
		}
		results[i] = r
	}
	return results, nil
}

// MonteCarloStats counts stable and unstable trials
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
