// Package optim searches parameter grids of a catalog simulation for the
// values that minimise or maximise one outcome of a headless run.
package optim

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/metrics"
	"github.com/san-kum/physlab/internal/registry"
	"github.com/san-kum/physlab/internal/sim"
)

// ErrNoObjective is returned when no run produced the objective.
var ErrNoObjective = errors.New("optim: objective not produced by any run")

// Axis is one searched parameter and the values to try.
type Axis struct {
	Param  string
	Values []float64
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n < 1 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

type GridSearch struct {
	Sim        string
	Integrator string
	Axes       []Axis
	// Values are fixed overrides applied under every grid point.
	Values    map[string]float64
	Objective string
	Maximize  bool
	Limit     int
}

// Point is one evaluated grid point. Ok is false when the run did not
// produce the objective.
type Point struct {
	Values map[string]float64
	Score  float64
	Status dynamo.Status
	Ok     bool
}

type Result struct {
	Best   Point
	Points []Point
}

// Grid lists every combination of axis values, the first axis varying
// slowest.
func (g *GridSearch) Grid() []map[string]float64 {
	var out []map[string]float64
	g.expand(0, maps.Clone(g.Values), &out)
	return out
}

func (g *GridSearch) expand(depth int, current map[string]float64, out *[]map[string]float64) {
	if current == nil {
		current = make(map[string]float64)
	}
	if depth == len(g.Axes) {
		*out = append(*out, current)
		return
	}
	axis := g.Axes[depth]
	for _, v := range axis.Values {
		next := maps.Clone(current)
		next[axis.Param] = v
		g.expand(depth+1, next, out)
	}
}

// Search runs every grid point concurrently and picks the best score.
// Ties keep the earliest point.
func (g *GridSearch) Search(ctx context.Context, reg *registry.Registry, cfg sim.RunConfig) (*Result, error) {
	if g.Objective == "" {
		return nil, fmt.Errorf("%w: no objective", dynamo.ErrInvalidConfig)
	}
	for _, a := range g.Axes {
		if len(a.Values) == 0 {
			return nil, fmt.Errorf("%w: axis %s has no values", dynamo.ErrInvalidConfig, a.Param)
		}
	}
	grid := g.Grid()

	ens := sim.NewEnsemble(func(i int) (dynamo.Simulation, error) {
		return reg.BuildWith(g.Sim, g.Integrator, grid[i])
	}, len(grid))
	ens.SetLimit(g.Limit)
	runs, err := ens.Run(ctx, cfg)
	if err != nil {
		return nil, err
	}

	res := &Result{Points: make([]Point, len(runs))}
	found := false
	for i, run := range runs {
		score, ok := Objective(run, g.Objective)
		p := Point{Values: run.Params, Score: score, Status: run.Status, Ok: ok}
		res.Points[i] = p
		if !ok {
			continue
		}
		if !found || g.better(score, res.Best.Score) {
			res.Best = p
			found = true
		}
	}
	if !found {
		return res, fmt.Errorf("%w: %s", ErrNoObjective, g.Objective)
	}
	return res, nil
}

func (g *GridSearch) better(a, b float64) bool {
	if g.Maximize {
		return a > b
	}
	return a < b
}

// Objective reads name from a finished run: a default metric of the family
// (such as "energy_drift"), or else the final value of a derived quantity.
func Objective(res *sim.Result, name string) (float64, bool) {
	if v, ok := metrics.Evaluate(res, metrics.Defaults(res.Kind)...)[name]; ok {
		return v, finite(v)
	}
	final, ok := res.Final()
	if !ok {
		return 0, false
	}
	v, ok := final.Derived.Get(name)
	return v, ok && finite(v)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
