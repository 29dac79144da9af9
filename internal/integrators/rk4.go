package integrators

import "github.com/san-kum/physlab/internal/dynamo"

// RK4 is the classic fourth-order Runge-Kutta method. Stage buffers are
// reused between calls, so one RK4 must not be shared across goroutines.
type RK4 struct {
	k     [4]dynamo.State
	stage dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensure(n int) {
	if len(r.stage) == n {
		return
	}
	for i := range r.k {
		r.k[i] = make(dynamo.State, n)
	}
	r.stage = make(dynamo.State, n)
}

// eval stores f(x + h*prev, t) into r.k[i].
func (r *RK4) eval(sys dynamo.System, x dynamo.State, prev dynamo.State, h, t float64, i int) {
	if prev == nil {
		copy(r.k[i], sys.Derive(x, t))
		return
	}
	for j := range x {
		r.stage[j] = x[j] + h*prev[j]
	}
	copy(r.k[i], sys.Derive(r.stage, t))
}

func (r *RK4) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	r.ensure(n)

	r.eval(sys, x, nil, 0, t, 0)
	r.eval(sys, x, r.k[0], dt/2, t+dt/2, 1)
	r.eval(sys, x, r.k[1], dt/2, t+dt/2, 2)
	r.eval(sys, x, r.k[2], dt, t+dt, 3)

	result := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt/6*(r.k[0][i]+2*r.k[1][i]+2*r.k[2][i]+r.k[3][i])
	}
	return result
}
