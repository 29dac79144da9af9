package sim

import "time"

// FrameID identifies one requested frame callback. Zero is never issued.
type FrameID uint64

// Frames is a source of display frames, the host's animation loop. A
// requested callback fires at most once; a cancelled one never fires.
type Frames interface {
	Now() time.Time
	Request(fn func(now time.Time)) FrameID
	Cancel(id FrameID)
}

type pendingFrame struct {
	id FrameID
	fn func(time.Time)
}

// ManualFrames is a deterministic frame source. Callbacks fire only when
// Advance is called, in request order.
type ManualFrames struct {
	now     time.Time
	last    FrameID
	pending []pendingFrame
}

func NewManualFrames(start time.Time) *ManualFrames {
	return &ManualFrames{now: start}
}

func (m *ManualFrames) Now() time.Time { return m.now }
func (m *ManualFrames) Pending() int   { return len(m.pending) }

func (m *ManualFrames) Request(fn func(time.Time)) FrameID {
	m.last++
	m.pending = append(m.pending, pendingFrame{id: m.last, fn: fn})
	return m.last
}

func (m *ManualFrames) Cancel(id FrameID) {
	for i, p := range m.pending {
		if p.id == id {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			return
		}
	}
}

// Sleep moves the clock without firing any frame.
func (m *ManualFrames) Sleep(d time.Duration) { m.now = m.now.Add(d) }

// Advance moves the clock by d, then fires every callback that was pending
// when it was called. Callbacks requested while firing wait for the next
// Advance. It returns the number of callbacks fired.
func (m *ManualFrames) Advance(d time.Duration) int {
	m.now = m.now.Add(d)
	due := make([]FrameID, len(m.pending))
	for i, p := range m.pending {
		due[i] = p.id
	}

	fired := 0
	for _, id := range due {
		fn, ok := m.take(id)
		if !ok {
			continue
		}
		fn(m.now)
		fired++
	}
	return fired
}

func (m *ManualFrames) take(id FrameID) (func(time.Time), bool) {
	for i, p := range m.pending {
		if p.id == id {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			return p.fn, true
		}
	}
	return nil, false
}
