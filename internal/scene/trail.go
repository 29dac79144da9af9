package scene

// Trail is a fixed-capacity history of recent positions. Pushing onto a full
// trail drops the oldest point, so memory stays bounded however long a
// simulation runs.
type Trail struct {
	buf  []Point
	head int
	n    int
}

func NewTrail(capacity int) *Trail {
	if capacity < 1 {
		capacity = 1
	}
	return &Trail{buf: make([]Point, capacity)}
}

func (t *Trail) Push(p Point) {
	if !p.Finite() {
		return
	}
	t.buf[(t.head+t.n)%len(t.buf)] = p
	if t.n < len(t.buf) {
		t.n++
		return
	}
	t.head = (t.head + 1) % len(t.buf)
}

// Points returns the stored points oldest first.
func (t *Trail) Points() []Point {
	out := make([]Point, t.n)
	for i := 0; i < t.n; i++ {
		out[i] = t.buf[(t.head+i)%len(t.buf)]
	}
	return out
}

func (t *Trail) Len() int { return t.n }
func (t *Trail) Cap() int { return len(t.buf) }

func (t *Trail) Clear() {
	t.head, t.n = 0, 0
}
