package sim

import (
	"time"

	"github.com/san-kum/physlab/internal/dynamo"
)

// Sample is one recorded frame.
type Sample struct {
	Frame   int
	Time    float64
	State   dynamo.State
	Derived dynamo.Derived
}

// Result is the trace of one run.
type Result struct {
	Kind    dynamo.Kind
	Labels  []string
	Params  map[string]float64
	Samples []Sample
	Events  []dynamo.Event
	Status  dynamo.Status
	Frames  int
	Elapsed float64
	Wall    time.Duration
}

func (r *Result) Times() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Time
	}
	return out
}

func (r *Result) States() []dynamo.State {
	out := make([]dynamo.State, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.State
	}
	return out
}

// Series returns one derived quantity over the run, 0 where it is missing.
func (r *Result) Series(name string) []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Derived.Value(name)
	}
	return out
}

// Quantities lists the derived names of the first sample.
func (r *Result) Quantities() []string {
	if len(r.Samples) == 0 {
		return nil
	}
	return r.Samples[0].Derived.Names()
}

// Final returns the last sample, or false for an empty trace.
func (r *Result) Final() (Sample, bool) {
	if len(r.Samples) == 0 {
		return Sample{}, false
	}
	return r.Samples[len(r.Samples)-1], true
}

// Recorder is an observer that samples every Every-th frame plus every
// frame that stops the run. Every < 1 records each frame.
type Recorder struct {
	Every  int
	result *Result
}

func NewRecorder(sim dynamo.Simulation, every int) *Recorder {
	rec := &Recorder{Every: every}
	rec.Restart(sim)
	return rec
}

// Restart discards the trace and records the current state as frame 0.
func (r *Recorder) Restart(sim dynamo.Simulation) {
	r.result = &Result{
		Kind:   sim.Kind(),
		Labels: sim.Labels(),
		Params: sim.Params().Values(),
		Status: dynamo.StatusReady,
	}
	r.sample(sim, 0)
}

func (r *Recorder) Result() *Result { return r.result }

func (r *Recorder) OnFrame(sim dynamo.Simulation, info FrameInfo) {
	res := r.result
	res.Frames = info.Frame
	res.Elapsed = info.Elapsed
	res.Status = info.Status
	res.Events = append(res.Events, info.Outcome.Events...)

	every := max(r.Every, 1)
	if info.Frame%every == 0 || info.Outcome.Stopped {
		r.sample(sim, info.Frame)
	}
}

func (r *Recorder) sample(sim dynamo.Simulation, frame int) {
	r.result.Samples = append(r.result.Samples, Sample{
		Frame:   frame,
		Time:    sim.Elapsed(),
		State:   sim.Snapshot().Clone(),
		Derived: sim.Derive(),
	})
}
