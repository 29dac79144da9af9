package integrators

import "github.com/san-kum/physlab/internal/dynamo"

// Euler is the explicit method: every component advances by its derivative
// at the start of the step, so positions use the pre-update velocity.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	dx := sys.Derive(x, t)
	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}

// SemiImplicitEuler updates velocities first and then moves positions with
// the new velocities. State layout is [q..., v...].
type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (s *SemiImplicitEuler) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	half := len(x) / 2
	dx := sys.Derive(x, t)
	result := make(dynamo.State, len(x))
	for i := 0; i < half; i++ {
		result[half+i] = x[half+i] + dt*dx[half+i]
		result[i] = x[i] + dt*result[half+i]
	}
	return result
}
