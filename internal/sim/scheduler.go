package sim

import (
	"math"
	"time"
)

// DefaultMaxDt bounds the step handed to a simulation after a stalled frame.
const DefaultMaxDt = 0.05

// ClampDt limits a measured frame interval to [0, maxDt]. NaN and negative
// intervals become 0.
func ClampDt(dt, maxDt float64) float64 {
	if !(dt > 0) {
		return 0
	}
	return math.Min(dt, maxDt)
}

// Scheduler is a self-rearming frame callback. It is either idle or has
// exactly one outstanding request on its frame source.
type Scheduler struct {
	frames Frames
	tick   func(dt float64)
	maxDt  float64

	active bool
	id     FrameID
	last   time.Time
}

// NewScheduler calls tick once per frame with the clamped time since the
// previous frame. maxDt <= 0 selects DefaultMaxDt.
func NewScheduler(frames Frames, maxDt float64, tick func(dt float64)) *Scheduler {
	if !(maxDt > 0) {
		maxDt = DefaultMaxDt
	}
	return &Scheduler{frames: frames, tick: tick, maxDt: maxDt}
}

func (s *Scheduler) Scheduled() bool { return s.active }
func (s *Scheduler) MaxDt() float64  { return s.maxDt }

// Start arms the scheduler and takes the current time as the reference for
// the first dt, so time spent idle is never reported. It is a no-op while
// already scheduled.
func (s *Scheduler) Start() {
	if s.active {
		return
	}
	s.active = true
	s.last = s.frames.Now()
	s.arm()
}

// Cancel withdraws the outstanding request. The pending callback will not
// run. Cancelling an idle scheduler does nothing.
func (s *Scheduler) Cancel() {
	if !s.active {
		return
	}
	s.active = false
	if s.id != 0 {
		s.frames.Cancel(s.id)
		s.id = 0
	}
}

func (s *Scheduler) arm() {
	var id FrameID
	id = s.frames.Request(func(now time.Time) { s.fire(id, now) })
	s.id = id
}

func (s *Scheduler) fire(id FrameID, now time.Time) {
	if !s.active || id != s.id {
		return
	}
	s.id = 0
	dt := ClampDt(now.Sub(s.last).Seconds(), s.maxDt)
	s.last = now
	s.tick(dt)
	// tick may have cancelled, or cancelled and restarted.
	if s.active && s.id == 0 {
		s.arm()
	}
}
