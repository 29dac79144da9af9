package dynamo

import (
	"math"

	"github.com/san-kum/physlab/internal/params"
	"github.com/san-kum/physlab/internal/scene"
)

// Simulation is one mounted simulation as seen by a host.
type Simulation interface {
	Kind() Kind
	Size() (w, h float64)
	Params() *params.Store
	// Reset re-applies the initial condition from the current parameters.
	Reset()
	// Step advances by dt seconds. dt <= 0 leaves the state untouched.
	Step(dt float64) Outcome
	Derive() Derived
	Render() *scene.Frame
	Snapshot() State
	Labels() []string
	Elapsed() float64
}

// Model is the per-family contract. S is the physical state, P the typed
// parameter set decoded from a store. Step, Derive and Draw must not retain
// or mutate their inputs.
type Model[S, P any] interface {
	Kind() Kind
	Size() (w, h float64)
	Specs() []params.Spec
	Decode(s *params.Store) P
	Initial(p P) S
	Step(s S, p P, dt float64) (S, Outcome)
	Derive(s S, p P) Derived
	Draw(f *scene.Frame, s S, p P, d Derived, trail []scene.Point)
	Vector(s S) State
	Labels() []string
}

// Instance adapts a Model to the Simulation interface. Parameters are decoded
// from the store on every call, so a Set takes effect on the next step.
type Instance[S, P any] struct {
	model   Model[S, P]
	store   *params.Store
	state   S
	elapsed float64

	trail *scene.Trail
	trace func(S, P) (scene.Point, bool)
}

type Option[S, P any] func(*Instance[S, P])

// WithTrail records the point returned by at after every step, keeping at
// most capacity points.
func WithTrail[S, P any](capacity int, at func(S, P) (scene.Point, bool)) Option[S, P] {
	return func(in *Instance[S, P]) {
		in.trail = scene.NewTrail(capacity)
		in.trace = at
	}
}

// WithValues overrides parameter defaults before the first reset.
func WithValues[S, P any](values map[string]float64) Option[S, P] {
	return func(in *Instance[S, P]) {
		_ = in.store.Apply(values)
	}
}

func NewInstance[S, P any](m Model[S, P], opts ...Option[S, P]) *Instance[S, P] {
	in := &Instance[S, P]{
		model: m,
		store: params.NewStore(m.Specs()...),
	}
	for _, opt := range opts {
		opt(in)
	}
	in.Reset()
	return in
}

func (in *Instance[S, P]) Kind() Kind               { return in.model.Kind() }
func (in *Instance[S, P]) Size() (float64, float64) { return in.model.Size() }
func (in *Instance[S, P]) Params() *params.Store    { return in.store }
func (in *Instance[S, P]) Elapsed() float64         { return in.elapsed }
func (in *Instance[S, P]) Labels() []string         { return in.model.Labels() }
func (in *Instance[S, P]) Model() Model[S, P]       { return in.model }
func (in *Instance[S, P]) State() S                 { return in.state }
func (in *Instance[S, P]) Snapshot() State          { return in.model.Vector(in.state) }
func (in *Instance[S, P]) decode() P                { return in.model.Decode(in.store) }

// SetState replaces the physical state without touching elapsed time.
func (in *Instance[S, P]) SetState(s S) { in.state = s }

func (in *Instance[S, P]) Reset() {
	p := in.decode()
	in.state = in.model.Initial(p)
	in.elapsed = 0
	if in.trail != nil {
		in.trail.Clear()
		in.record(p)
	}
}

func (in *Instance[S, P]) Step(dt float64) Outcome {
	if !(dt > 0) || math.IsInf(dt, 1) {
		return Outcome{}
	}
	p := in.decode()
	next, out := in.model.Step(in.state, p, dt)
	in.state = next
	in.elapsed += dt
	if in.trail != nil {
		in.record(p)
	}
	return out
}

func (in *Instance[S, P]) Derive() Derived {
	return in.model.Derive(in.state, in.decode())
}

func (in *Instance[S, P]) Render() *scene.Frame {
	p := in.decode()
	w, h := in.model.Size()
	f := scene.NewFrame(w, h)
	var pts []scene.Point
	if in.trail != nil {
		pts = in.trail.Points()
	}
	in.model.Draw(f, in.state, p, in.model.Derive(in.state, p), pts)
	return f
}

// Trail returns the recorded trail points, oldest first.
func (in *Instance[S, P]) Trail() []scene.Point {
	if in.trail == nil {
		return nil
	}
	return in.trail.Points()
}

func (in *Instance[S, P]) record(p P) {
	if pt, ok := in.trace(in.state, p); ok {
		in.trail.Push(pt)
	}
}
