package registry

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/integrators"
	"github.com/san-kum/physlab/internal/physics"
)

var ErrUnknownSimulation = errors.New("registry: unknown simulation")

// Meta describes one catalog entry.
type Meta struct {
	ID          string
	Title       string
	Description string
	Category    string
}

// Builder constructs a fresh instance. integ is nil unless the caller asked
// for a specific integrator; families without an ODE ignore it.
type Builder func(integ dynamo.Integrator, values map[string]float64) dynamo.Simulation

// Entry is a thin configuration of one physics family.
type Entry struct {
	Meta
	Kind   dynamo.Kind
	Values map[string]float64
	Build  Builder
}

type Registry struct {
	entries map[string]Entry
	order   []string
}

func New() *Registry {
	r := &Registry{entries: make(map[string]Entry)}
	for _, e := range catalog() {
		r.Register(e)
	}
	return r
}

// Register adds or replaces an entry. Order of first registration is kept,
// and a replacement with no Category keeps the previous one.
func (r *Registry) Register(e Entry) {
	old, ok := r.entries[e.ID]
	switch {
	case !ok:
		r.order = append(r.order, e.ID)
	case e.Category == "":
		e.Category = old.Category
	}
	r.entries[e.ID] = e
}

func (r *Registry) Lookup(id string) (Entry, error) {
	e, ok := r.entries[id]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrUnknownSimulation, id)
	}
	return e, nil
}

// Build makes an instance of id with the entry's values, then values on top.
func (r *Registry) Build(id string, values map[string]float64) (dynamo.Simulation, error) {
	return r.BuildWith(id, "", values)
}

// BuildWith is Build with a named integrator; "" keeps the family default.
func (r *Registry) BuildWith(id, integrator string, values map[string]float64) (dynamo.Simulation, error) {
	e, err := r.Lookup(id)
	if err != nil {
		return nil, err
	}
	var integ dynamo.Integrator
	if integrator != "" {
		if integ, err = integrators.New(integrator); err != nil {
			return nil, err
		}
	}
	merged := maps.Clone(e.Values)
	if merged == nil {
		merged = make(map[string]float64, len(values))
	}
	maps.Copy(merged, values)
	return e.Build(integ, merged), nil
}

func (r *Registry) IDs() []string { return slices.Clone(r.order) }

func (r *Registry) List() []Meta {
	out := make([]Meta, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id].Meta)
	}
	return out
}

// Categories lists categories in first-seen order.
func (r *Registry) Categories() []string {
	var out []string
	for _, id := range r.order {
		if c := r.entries[id].Category; !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

func pendulum(integ dynamo.Integrator, v map[string]float64) dynamo.Simulation {
	return physics.NewPendulum(integ, v)
}

func plain[S, P any](build func(map[string]float64) *dynamo.Instance[S, P]) Builder {
	return func(_ dynamo.Integrator, v map[string]float64) dynamo.Simulation { return build(v) }
}
