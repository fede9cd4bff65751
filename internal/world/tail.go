package world

// Point is a position in world coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TailBuffer is a bounded FIFO of past positions. Pushing into a full buffer
// evicts the oldest point, so Len never exceeds Cap.
type TailBuffer struct {
	buf  []Point
	head int // index of the oldest point
	n    int
}

func NewTailBuffer(capacity int) TailBuffer {
	if capacity < 0 {
		capacity = 0
	}
	return TailBuffer{buf: make([]Point, capacity)}
}

func (t *TailBuffer) Len() int { return t.n }
func (t *TailBuffer) Cap() int { return len(t.buf) }

func (t *TailBuffer) Push(p Point) {
	c := len(t.buf)
	if c == 0 {
		return
	}
	if t.n < c {
		t.buf[(t.head+t.n)%c] = p
		t.n++
		return
	}
	t.buf[t.head] = p
	t.head = (t.head + 1) % c
}

// SetCapacity resizes the buffer, keeping the newest points.
func (t *TailBuffer) SetCapacity(capacity int) {
	if capacity < 0 {
		capacity = 0
	}
	if capacity == len(t.buf) {
		return
	}
	pts := t.Points()
	if len(pts) > capacity {
		pts = pts[len(pts)-capacity:]
	}
	buf := make([]Point, capacity)
	copy(buf, pts)
	t.buf = buf
	t.head = 0
	t.n = len(pts)
}

// Points returns a copy ordered oldest to newest.
func (t *TailBuffer) Points() []Point {
	out := make([]Point, t.n)
	c := len(t.buf)
	for i := 0; i < t.n; i++ {
		out[i] = t.buf[(t.head+i)%c]
	}
	return out
}

// Newest returns the most recently pushed point.
func (t *TailBuffer) Newest() (Point, bool) {
	if t.n == 0 {
		return Point{}, false
	}
	return t.buf[(t.head+t.n-1)%len(t.buf)], true
}

func (t *TailBuffer) Reset() {
	t.head = 0
	t.n = 0
}
