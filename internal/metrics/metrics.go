package metrics

import (
	"math"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/sim"
)

// Metric reduces one derived quantity over a run to a single number.
type Metric interface {
	Name() string
	Observe(d dynamo.Derived, t float64)
	Value() float64
	Reset()
}

// Drift is the largest relative deviation of a quantity from its first
// observed value. A zero initial value falls back to absolute deviation.
type Drift struct {
	quantity string
	initial  float64
	maxDrift float64
	samples  int
}

func NewDrift(quantity string) *Drift { return &Drift{quantity: quantity} }

func (m *Drift) Name() string { return m.quantity + "_drift" }

func (m *Drift) Observe(d dynamo.Derived, _ float64) {
	v, ok := d.Get(m.quantity)
	if !ok {
		return
	}
	if m.samples == 0 {
		m.initial = v
	}
	m.samples++

	dev := math.Abs(v - m.initial)
	if m.initial != 0 {
		dev /= math.Abs(m.initial)
	}
	m.maxDrift = math.Max(m.maxDrift, dev)
}

func (m *Drift) Value() float64 { return m.maxDrift }

func (m *Drift) Reset() {
	m.initial = 0
	m.maxDrift = 0
	m.samples = 0
}

// Peak is the largest absolute value of a quantity.
type Peak struct {
	quantity string
	peak     float64
}

func NewPeak(quantity string) *Peak { return &Peak{quantity: quantity} }

func (m *Peak) Name() string { return m.quantity + "_peak" }

func (m *Peak) Observe(d dynamo.Derived, _ float64) {
	if v, ok := d.Get(m.quantity); ok {
		m.peak = math.Max(m.peak, math.Abs(v))
	}
}

func (m *Peak) Value() float64 { return m.peak }
func (m *Peak) Reset()         { m.peak = 0 }

// Mean is the sample mean of a quantity.
type Mean struct {
	quantity string
	sum      float64
	samples  int
}

func NewMean(quantity string) *Mean { return &Mean{quantity: quantity} }

func (m *Mean) Name() string { return m.quantity + "_mean" }

func (m *Mean) Observe(d dynamo.Derived, _ float64) {
	if v, ok := d.Get(m.quantity); ok {
		m.sum += v
		m.samples++
	}
}

func (m *Mean) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *Mean) Reset() {
	m.sum = 0
	m.samples = 0
}

// Stability is the fraction of samples whose quantity stays within
// ±threshold. With no samples it is 1.
type Stability struct {
	quantity   string
	threshold  float64
	violations int
	samples    int
}

func NewStability(quantity string, threshold float64) *Stability {
	return &Stability{quantity: quantity, threshold: threshold}
}

func (m *Stability) Name() string { return m.quantity + "_stability" }

func (m *Stability) Observe(d dynamo.Derived, _ float64) {
	v, ok := d.Get(m.quantity)
	if !ok {
		return
	}
	m.samples++
	if math.Abs(v) > m.threshold {
		m.violations++
	}
}

func (m *Stability) Value() float64 {
	if m.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(m.violations)/float64(m.samples)
}

func (m *Stability) Reset() {
	m.violations = 0
	m.samples = 0
}

// Observer feeds every frame's derived values to ms.
func Observer(ms ...Metric) sim.Observer {
	return sim.ObserverFunc(func(s dynamo.Simulation, info sim.FrameInfo) {
		d := s.Derive()
		for _, m := range ms {
			m.Observe(d, info.Elapsed)
		}
	})
}

// Evaluate replays the recorded samples through ms and returns their values
// by name.
func Evaluate(res *sim.Result, ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for _, s := range res.Samples {
			m.Observe(s.Derived, s.Time)
		}
		out[m.Name()] = m.Value()
	}
	return out
}

// Defaults picks the standard metrics for a simulation family.
func Defaults(kind dynamo.Kind) []Metric {
	switch kind {
	case dynamo.KindPendulum:
		return []Metric{NewDrift("energy"), NewPeak("omega")}
	case dynamo.KindFreeFall:
		return []Metric{NewPeak("velocity"), NewPeak("fraction")}
	case dynamo.KindProjectile:
		return []Metric{NewPeak("y"), NewPeak("speed")}
	case dynamo.KindCollision:
		return []Metric{NewDrift("kinetic"), NewDrift("momentum")}
	case dynamo.KindBalance:
		return []Metric{NewPeak("angle"), NewStability("angle", 1)}
	case dynamo.KindField:
		return []Metric{NewPeak("speed"), NewPeak("field")}
	case dynamo.KindInterference:
		return []Metric{NewPeak("peak")}
	case dynamo.KindWave:
		return []Metric{NewPeak("peak")}
	}
	return nil
}
