package layout

// State is the typographic state of one render pass. It is rebuilt at the
// start of every pass and never shared between passes.
type State struct {
	Font   string // concrete font ID
	Weight Weight
	Size   float64 // points
	Scale  float64
	Step   float64 // vertical distance between lines
	X, Y   float64
}

// LineBox holds the segments of the current visual line until a flush.
type LineBox struct {
	segments []Segment
}

func (lb *LineBox) Add(s Segment) {
	lb.segments = append(lb.segments, s)
}

func (lb *LineBox) Len() int {
	return len(lb.segments)
}

// Segments returns the pending segments. The slice is only valid until the
// next Reset.
func (lb *LineBox) Segments() []Segment {
	return lb.segments
}

func (lb *LineBox) Reset() {
	lb.segments = lb.segments[:0]
}
