// Package dynamo defines the contracts shared by every simulation.
//
// A physics family is written as a [Model]: a pure stepper over its own typed
// state and parameters, a pure [Derived] readout and a scene renderer. An
// [Instance] owns one mutable state for a model and exposes it to hosts as a
// [Simulation]:
//
//   - [Kind]: tagged physics family
//   - [Status]: Ready, Running, Paused or Stopped
//   - [Outcome]: terminal condition and events produced by one step
//   - [State], [System], [Integrator]: flat vector view for ODE families and traces
//
// # Example
//
//	sim := physics.NewPendulum(nil, map[string]float64{"angle": 30})
//	out := sim.Step(1.0 / 60)
//	frame := sim.Render()
//
// # Thread Safety
//
// Instances are NOT thread-safe. Each instance must be confined to one
// goroutine; independent instances may run in parallel.
package dynamo
