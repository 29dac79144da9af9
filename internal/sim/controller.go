package sim

import (
	"log/slog"

	"github.com/san-kum/physlab/internal/dynamo"
)

// FrameInfo describes one completed tick.
type FrameInfo struct {
	Frame   int
	Dt      float64
	Elapsed float64
	Status  dynamo.Status
	Outcome dynamo.Outcome
}

type Observer interface {
	OnFrame(sim dynamo.Simulation, info FrameInfo)
}

type ObserverFunc func(sim dynamo.Simulation, info FrameInfo)

func (f ObserverFunc) OnFrame(sim dynamo.Simulation, info FrameInfo) { f(sim, info) }

// Controller owns the run status of one simulation and drives it from a
// frame source. It is confined to the goroutine that owns the frame source.
type Controller struct {
	sim       dynamo.Simulation
	sched     *Scheduler
	status    dynamo.Status
	frame     int
	closed    bool
	observers []Observer
	logger    *slog.Logger
	maxDt     float64
}

type ControllerOption func(*Controller)

func WithLogger(l *slog.Logger) ControllerOption {
	return func(c *Controller) { c.logger = l }
}

func WithMaxDt(maxDt float64) ControllerOption {
	return func(c *Controller) { c.maxDt = maxDt }
}

func WithObserver(o Observer) ControllerOption {
	return func(c *Controller) { c.observers = append(c.observers, o) }
}

func NewController(sim dynamo.Simulation, frames Frames, opts ...ControllerOption) *Controller {
	c := &Controller{sim: sim, status: dynamo.StatusReady, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	c.sched = NewScheduler(frames, c.maxDt, c.tick)
	c.logger = c.logger.With("sim", sim.Kind().String())
	return c
}

func (c *Controller) Simulation() dynamo.Simulation { return c.sim }
func (c *Controller) Status() dynamo.Status         { return c.status }
func (c *Controller) Frame() int                    { return c.frame }
func (c *Controller) Scheduled() bool               { return c.sched.Scheduled() }
func (c *Controller) Closed() bool                  { return c.closed }
func (c *Controller) MaxDt() float64                { return c.sched.MaxDt() }

func (c *Controller) AddObserver(o Observer) { c.observers = append(c.observers, o) }

// Launch resets the simulation to its initial condition and starts running.
func (c *Controller) Launch() error {
	if c.closed {
		return dynamo.ErrClosed
	}
	c.sched.Cancel()
	c.sim.Reset()
	c.frame = 0
	c.setStatus(dynamo.StatusRunning)
	c.sched.Start()
	return nil
}

// Start launches a ready simulation or resumes a paused one.
func (c *Controller) Start() error {
	switch c.status {
	case dynamo.StatusReady:
		return c.Launch()
	case dynamo.StatusPaused:
		return c.Resume()
	}
	if c.closed {
		return dynamo.ErrClosed
	}
	return nil
}

// Pause stops the scheduler and keeps the state.
func (c *Controller) Pause() error {
	if c.closed {
		return dynamo.ErrClosed
	}
	if c.status != dynamo.StatusRunning {
		return nil
	}
	c.sched.Cancel()
	c.setStatus(dynamo.StatusPaused)
	return nil
}

func (c *Controller) Resume() error {
	if c.closed {
		return dynamo.ErrClosed
	}
	if c.status != dynamo.StatusPaused {
		return nil
	}
	c.setStatus(dynamo.StatusRunning)
	c.sched.Start()
	return nil
}

// Toggle pauses a running simulation and starts anything else.
func (c *Controller) Toggle() error {
	if c.status == dynamo.StatusRunning {
		return c.Pause()
	}
	return c.Start()
}

// Reset cancels any pending frame before restoring the initial condition,
// so no tick can land on the cleared state.
func (c *Controller) Reset() error {
	if c.closed {
		return dynamo.ErrClosed
	}
	c.sched.Cancel()
	c.sim.Reset()
	c.frame = 0
	c.setStatus(dynamo.StatusReady)
	return nil
}

// Close cancels the scheduler for good. Later calls return ErrClosed,
// except Close itself.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.sched.Cancel()
	c.closed = true
	c.logger.Debug("closed", "frame", c.frame)
}

// SetParam stores a clamped parameter value. While Ready the initial
// condition is rebuilt so the change is visible before launch.
func (c *Controller) SetParam(name string, value float64) (float64, error) {
	if c.closed {
		return 0, dynamo.ErrClosed
	}
	stored, err := c.sim.Params().Set(name, value)
	if err != nil {
		return stored, err
	}
	if c.status == dynamo.StatusReady {
		c.sim.Reset()
	}
	return stored, nil
}

// NudgeParam moves a parameter by n steps.
func (c *Controller) NudgeParam(name string, n int) (float64, error) {
	if c.closed {
		return 0, dynamo.ErrClosed
	}
	stored, err := c.sim.Params().Nudge(name, n)
	if err != nil {
		return stored, err
	}
	if c.status == dynamo.StatusReady {
		c.sim.Reset()
	}
	return stored, nil
}

func (c *Controller) setStatus(s dynamo.Status) {
	if s == c.status {
		return
	}
	c.logger.Debug("status", "from", c.status.String(), "to", s.String(), "frame", c.frame)
	c.status = s
	if s == dynamo.StatusRunning {
		c.sim.Params().Lock()
	} else {
		c.sim.Params().Unlock()
	}
}

func (c *Controller) tick(dt float64) {
	out := c.sim.Step(dt)
	c.frame++
	if out.Stopped {
		c.sched.Cancel()
		c.setStatus(dynamo.StatusStopped)
		for _, ev := range out.Events {
			c.logger.Info(ev.Name, "t", ev.Time, "detail", ev.Detail)
		}
	}

	info := FrameInfo{
		Frame:   c.frame,
		Dt:      dt,
		Elapsed: c.sim.Elapsed(),
		Status:  c.status,
		Outcome: out,
	}
	for _, o := range c.observers {
		o.OnFrame(c.sim, info)
	}
}
