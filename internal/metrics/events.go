package metrics

import (
	"sort"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/sim"
)

// EventCounter tallies step events by name. It is a sim.Observer.
type EventCounter struct {
	counts map[string]int
}

func NewEventCounter() *EventCounter { return &EventCounter{counts: make(map[string]int)} }

func (c *EventCounter) OnFrame(_ dynamo.Simulation, info sim.FrameInfo) {
	c.add(info.Outcome.Events)
}

func (c *EventCounter) add(events []dynamo.Event) {
	for _, e := range events {
		c.counts[e.Name]++
	}
}

func (c *EventCounter) Count(name string) int { return c.counts[name] }

func (c *EventCounter) Total() int {
	n := 0
	for _, v := range c.counts {
		n += v
	}
	return n
}

// Names lists the seen event names, sorted.
func (c *EventCounter) Names() []string {
	names := make([]string, 0, len(c.counts))
	for name := range c.counts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *EventCounter) Reset() { clear(c.counts) }

// CountEvents tallies the events of a recorded run.
func CountEvents(res *sim.Result) *EventCounter {
	c := NewEventCounter()
	c.add(res.Events)
	return c
}
