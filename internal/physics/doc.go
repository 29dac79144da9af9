// Package physics implements the simulation families.
//
// Each family is a [dynamo.Model]: a pure stepper over a small typed state,
// a [dynamo.Derived] readout and a scene renderer against a fixed logical
// canvas. Constructors such as [NewPendulum] wrap a model in a
// [dynamo.Instance] ready to be driven by a controller:
//
//   - [Pendulum]: nonlinear pendulum, sub-stepped semi-implicit Euler
//   - [FreeFall]: vertical drop with quadratic drag, explicit Euler
//   - [Projectile]: closed-form ballistic flight
//   - [Carts], [GasBox]: 1D and 2D elastic collisions
//   - [Balance]: torque balance beam
//   - [Fluid]: continuity through a narrowing pipe
//   - [Field]: electric field of point charges with an optional test charge
//   - [Snell]: refraction, total internal reflection and Fresnel reflectance
//   - [Interference]: double-slit hit accumulation
//   - [Wave]: superposition of two sinusoids
//
// Degenerate parameters never produce NaN or Inf; they resolve to sentinel
// values (zero velocity, no refraction, zero flight time).
package physics
