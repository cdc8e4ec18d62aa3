package layout

import (
	"image/color"
)

// Weight is the font weight carried by a segment. Only two values are
// produced by the tag table.
type Weight float64

const (
	WeightNormal Weight = 400
	WeightBold   Weight = 700
)

// Measurer is the text measurement side of the font subsystem. Failures are
// signalled by zero metrics or a returned error, never by panics.
type Measurer interface {
	// Measure returns the advance width of text in pixels at scale.
	Measure(fontID, text string, scale float64) float64
	// Ascent returns the font ascent in reference-size pixels.
	Ascent(fontID string) float64
	Descent(fontID string) float64
	LineSpace(fontID string) float64
	HasFont(fontID string) bool
	IsVariable(fontID string) bool
	SetWeight(fontID string, weight float64) error
}

// Painter draws one positioned run of text. y is the baseline.
type Painter interface {
	DrawText(fontID, text string, x, y, scale float64, c color.Color)
}

// Segment is a positioned word waiting in a line box or already emitted.
type Segment struct {
	Text   string
	X      float64
	Y      float64
	Scale  float64
	Color  color.RGBA
	Font   string
	Weight Weight
}

// Canvas describes the drawing surface for one render pass.
type Canvas struct {
	Width    float64
	Height   float64
	DPIScale float64
}

// Visible reports whether a run at y with the given line height overlaps
// the canvas vertically.
func (c Canvas) Visible(y, lineHeight float64) bool {
	return y > -lineHeight && y < c.Height+lineHeight
}

// Result is the output of a render pass.
type Result struct {
	Segments      []Segment
	Lines         int
	ContentHeight float64
}
