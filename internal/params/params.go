// Package params implements the tunable-parameter store shared by every
// simulation. Values are always kept inside their declared range: Set clamps,
// Get never fails.
package params

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/physlab/internal/numeric"
)

var (
	// ErrUnknownParameter is returned by Set for names the store does not declare.
	ErrUnknownParameter = errors.New("params: unknown parameter")

	// ErrParameterLocked is returned by Set for a non-live parameter while the
	// simulation is running.
	ErrParameterLocked = errors.New("params: parameter locked while running")
)

// Spec declares one tunable input.
type Spec struct {
	Name    string
	Label   string
	Unit    string
	Min     float64
	Max     float64
	Step    float64
	Default float64
	// Live parameters may change while the simulation runs; the new value is
	// picked up on the next step.
	Live bool
}

// Normalize clamps v into the parameter's range and snaps it to Step.
// Non-finite input falls back to the default.
func (s Spec) Normalize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = s.Default
	}
	v = numeric.Snap(v, s.Min, s.Step)
	return numeric.Clamp(v, s.Min, s.Max)
}

// Store holds the current value of each declared parameter.
type Store struct {
	specs  []Spec
	index  map[string]int
	values []float64
	locked bool
}

// NewStore builds a store with every parameter at its (normalized) default.
// Later specs with a duplicate name replace earlier ones.
func NewStore(specs ...Spec) *Store {
	s := &Store{index: make(map[string]int, len(specs))}
	for _, sp := range specs {
		if sp.Min > sp.Max {
			sp.Min, sp.Max = sp.Max, sp.Min
		}
		if i, ok := s.index[sp.Name]; ok {
			s.specs[i] = sp
			s.values[i] = sp.Normalize(sp.Default)
			continue
		}
		s.index[sp.Name] = len(s.specs)
		s.specs = append(s.specs, sp)
		s.values = append(s.values, sp.Normalize(sp.Default))
	}
	return s
}

// Get returns the stored value of name, or 0 if the name is not declared.
func (s *Store) Get(name string) float64 {
	i, ok := s.index[name]
	if !ok {
		return 0
	}
	return s.values[i]
}

// Int returns the stored value rounded to the nearest integer.
func (s *Store) Int(name string) int {
	return int(math.Round(s.Get(name)))
}

// Set clamps value into range and stores it, returning the stored value.
func (s *Store) Set(name string, value float64) (float64, error) {
	i, ok := s.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownParameter, name)
	}
	sp := s.specs[i]
	if s.locked && !sp.Live {
		return s.values[i], fmt.Errorf("%w: %s", ErrParameterLocked, name)
	}
	s.values[i] = sp.Normalize(value)
	return s.values[i], nil
}

// Nudge moves name by n steps (n may be negative).
func (s *Store) Nudge(name string, n int) (float64, error) {
	sp, ok := s.Spec(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownParameter, name)
	}
	step := sp.Step
	if step <= 0 {
		step = (sp.Max - sp.Min) / 100
	}
	return s.Set(name, s.Get(name)+float64(n)*step)
}

// Apply sets every value in overrides, skipping names the store does not declare.
// It returns the first lock error, if any.
func (s *Store) Apply(overrides map[string]float64) error {
	names := make([]string, 0, len(overrides))
	for k := range overrides {
		names = append(names, k)
	}
	sort.Strings(names)

	var firstErr error
	for _, name := range names {
		if _, ok := s.index[name]; !ok {
			continue
		}
		if _, err := s.Set(name, overrides[name]); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ResetDefaults restores every parameter to its default. Locking is ignored.
func (s *Store) ResetDefaults() {
	for i, sp := range s.specs {
		s.values[i] = sp.Normalize(sp.Default)
	}
}

func (s *Store) Spec(name string) (Spec, bool) {
	i, ok := s.index[name]
	if !ok {
		return Spec{}, false
	}
	return s.specs[i], true
}

// Specs returns the declared parameters in declaration order.
func (s *Store) Specs() []Spec {
	out := make([]Spec, len(s.specs))
	copy(out, s.specs)
	return out
}

func (s *Store) Names() []string {
	out := make([]string, len(s.specs))
	for i, sp := range s.specs {
		out[i] = sp.Name
	}
	return out
}

// Values returns a copy of the current values keyed by name.
func (s *Store) Values() map[string]float64 {
	out := make(map[string]float64, len(s.specs))
	for i, sp := range s.specs {
		out[sp.Name] = s.values[i]
	}
	return out
}

// Lock disables non-live parameters until Unlock.
func (s *Store) Lock()        { s.locked = true }
func (s *Store) Unlock()      { s.locked = false }
func (s *Store) Locked() bool { return s.locked }

// Clone returns an independent copy, unlocked.
func (s *Store) Clone() *Store {
	c := NewStore(s.specs...)
	copy(c.values, s.values)
	return c
}
