package render

import (
	"fmt"
	"image/color"
	"io"
	"sync"

	"tagflow/pkg/layout"
)

// Call is one recorded DrawText.
type Call struct {
	Font  string
	Text  string
	X, Y  float64
	Scale float64
	Color color.RGBA
}

// Recorder keeps every draw call in order and draws nothing.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

func (r *Recorder) DrawText(fontID, s string, x, y, scale float64, c color.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{
		Font:  fontID,
		Text:  s,
		X:     x,
		Y:     y,
		Scale: scale,
		Color: color.RGBAModel.Convert(c).(color.RGBA),
	})
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// Dump writes one line per call.
func (r *Recorder) Dump(w io.Writer) error {
	for _, c := range r.Calls() {
		if _, err := fmt.Fprintf(w, "%-12s x=%7.2f y=%7.2f scale=%.3f %q\n", c.Font, c.X, c.Y, c.Scale, c.Text); err != nil {
			return err
		}
	}
	return nil
}

// Multi paints every run on each of its painters in order.
type Multi []layout.Painter

func (m Multi) DrawText(fontID, s string, x, y, scale float64, c color.Color) {
	for _, p := range m {
		p.DrawText(fontID, s, x, y, scale, c)
	}
}
