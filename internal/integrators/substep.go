package integrators

import (
	"fmt"
	"strings"

	"github.com/san-kum/physlab/internal/dynamo"
)

// SubStep advances x by dt using n equal steps of the wrapped integrator.
func SubStep(integ dynamo.Integrator, sys dynamo.System, x dynamo.State, t, dt float64, n int) dynamo.State {
	if n < 1 {
		n = 1
	}
	h := dt / float64(n)
	for i := 0; i < n; i++ {
		x = integ.Step(sys, x, t+float64(i)*h, h)
	}
	return x
}

// Names lists the integrators accepted by New.
func Names() []string {
	return []string{"euler", "semi-implicit", "verlet", "leapfrog", "rk4"}
}

func New(name string) (dynamo.Integrator, error) {
	switch strings.ToLower(name) {
	case "euler":
		return NewEuler(), nil
	case "semi-implicit", "symplectic-euler", "":
		return NewSemiImplicitEuler(), nil
	case "verlet":
		return NewVerlet(), nil
	case "leapfrog":
		return NewLeapfrog(), nil
	case "rk4":
		return NewRK4(), nil
	}
	return nil, fmt.Errorf("unknown integrator: %s", name)
}
