package viz

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/physlab/internal/sim"
)

// FrameMsg is delivered by a tick requested through TeaFrames.
type FrameMsg struct {
	ID   sim.FrameID
	Time time.Time
}

// TeaFrames adapts Bubble Tea ticks into sim.Frames. Each Request queues a
// tick command tagged with its frame id; Deliver runs the callback only if
// that id is still pending, so ticks for cancelled requests are dropped.
// It must be used from the Bubble Tea update goroutine.
type TeaFrames struct {
	interval time.Duration
	now      func() time.Time
	next     sim.FrameID
	pending  map[sim.FrameID]func(time.Time)
	queued   []tea.Cmd
}

func NewTeaFrames(fps float64) *TeaFrames {
	if fps <= 0 {
		fps = 60
	}
	return &TeaFrames{
		interval: time.Duration(float64(time.Second) / fps),
		now:      time.Now,
		pending:  make(map[sim.FrameID]func(time.Time)),
	}
}

func (t *TeaFrames) Now() time.Time          { return t.now() }
func (t *TeaFrames) Interval() time.Duration { return t.interval }
func (t *TeaFrames) Pending() int            { return len(t.pending) }

func (t *TeaFrames) Request(fn func(time.Time)) sim.FrameID {
	t.next++
	id := t.next
	t.pending[id] = fn
	t.queued = append(t.queued, tea.Tick(t.interval, func(ts time.Time) tea.Msg {
		return FrameMsg{ID: id, Time: ts}
	}))
	return id
}

func (t *TeaFrames) Cancel(id sim.FrameID) { delete(t.pending, id) }

// Deliver runs the callback for msg and reports whether it was still pending.
func (t *TeaFrames) Deliver(msg FrameMsg) bool {
	fn, ok := t.pending[msg.ID]
	if !ok {
		return false
	}
	delete(t.pending, msg.ID)
	fn(msg.Time)
	return true
}

// Cmd drains the tick commands queued since the last call.
func (t *TeaFrames) Cmd() tea.Cmd {
	if len(t.queued) == 0 {
		return nil
	}
	cmds := t.queued
	t.queued = nil
	return tea.Batch(cmds...)
}
