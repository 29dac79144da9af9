package dynamo

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/physlab/internal/numeric"
)

// State is a flat vector view of a physical state, used by integrators and traces.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// System is a first-order ODE dX/dt = f(X, t). Second-order systems lay the
// state out as [positions..., velocities...].
type System interface {
	Derive(x State, t float64) State
	Dim() int
}

type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(sys System, x State, t, dt float64) State
}

// Kind tags the physics family a simulation belongs to.
type Kind int

const (
	KindPendulum Kind = iota
	KindFreeFall
	KindProjectile
	KindCollision
	KindBalance
	KindFluid
	KindField
	KindRefraction
	KindInterference
	KindWave
)

var kindNames = [...]string{
	KindPendulum:     "pendulum",
	KindFreeFall:     "freefall",
	KindProjectile:   "projectile",
	KindCollision:    "collision",
	KindBalance:      "balance",
	KindFluid:        "fluid",
	KindField:        "field",
	KindRefraction:   "refraction",
	KindInterference: "interference",
	KindWave:         "wave",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown kind: %s", s)
}

// Status is the run status of one simulation instance.
type Status int

const (
	StatusReady Status = iota
	StatusRunning
	StatusPaused
	// StatusStopped is terminal until Reset.
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusStopped:
		return "stopped"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

func ParseStatus(s string) (Status, error) {
	for st := StatusReady; st <= StatusStopped; st++ {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown status: %s", s)
}

// Event is a notable physical occurrence during a step (landing, collision, hit).
type Event struct {
	Name   string
	Time   float64
	Detail string
}

// Outcome carries the side effects of one step.
type Outcome struct {
	Stopped bool
	Events  []Event
}

func (o *Outcome) Emit(name string, t float64, detail string) {
	o.Events = append(o.Events, Event{Name: name, Time: t, Detail: detail})
}

// Stop marks a terminal condition and records it as an event.
func (o *Outcome) Stop(name string, t float64, detail string) {
	o.Stopped = true
	o.Emit(name, t, detail)
}

// Merge folds other into o.
func (o *Outcome) Merge(other Outcome) {
	o.Stopped = o.Stopped || other.Stopped
	o.Events = append(o.Events, other.Events...)
}

// Quantity is one read-only derived value.
type Quantity struct {
	Name  string
	Label string
	Unit  string
	Value float64
}

func (q Quantity) String() string {
	return q.Label + ": " + numeric.Compact(q.Value, q.Unit)
}

// Derived is the ordered set of readouts for one frame.
type Derived []Quantity

// Add appends a quantity. Non-finite values are recorded as 0 so they never
// reach a renderer.
func (d *Derived) Add(name, label, unit string, v float64) {
	*d = append(*d, Quantity{Name: name, Label: label, Unit: unit, Value: numeric.Finite(v, 0)})
}

func (d Derived) Get(name string) (float64, bool) {
	for _, q := range d {
		if q.Name == name {
			return q.Value, true
		}
	}
	return 0, false
}

// Value returns the named quantity or 0.
func (d Derived) Value(name string) float64 {
	v, _ := d.Get(name)
	return v
}

func (d Derived) Names() []string {
	out := make([]string, len(d))
	for i, q := range d {
		out[i] = q.Name
	}
	return out
}

func (d Derived) Map() map[string]float64 {
	out := make(map[string]float64, len(d))
	for _, q := range d {
		out[q.Name] = q.Value
	}
	return out
}
