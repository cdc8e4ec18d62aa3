package layout

import (
	"image/color"

	"github.com/sirupsen/logrus"
)

// Font roles the tag table refers to.
const (
	RoleRegular = "regular"
	RoleItalic  = "italic"
)

// BaselineMode selects how a line's shared baseline is found at flush.
type BaselineMode int

const (
	// BaselineFirstSegment anchors the line on the ascent of its first
	// segment's font.
	BaselineFirstSegment BaselineMode = iota
	// BaselineMaxAscent anchors the line on the tallest font in it.
	BaselineMaxAscent
)

type Point struct {
	X, Y float64
}

// Config holds the typographic constants of the engine.
type Config struct {
	Origin           Point   // cursor start; Origin.X is the left margin
	BaseSize         float64 // points
	ReferenceGlyphPx float64 // pixel size the measurer reports at
	MinScale         float64
	HorizontalInset  float64 // right margin kept free of text
	LineHeightFactor float64
	BaselineFactor   float64
	DriftEpsilon     float64
	Color            color.RGBA
	Baseline         BaselineMode

	// Roles maps "regular" and "italic" to concrete font IDs.
	Roles map[string]string
}

// DefaultConfig returns the stock constants. Roles is left empty; the
// caller supplies the font mapping.
func DefaultConfig() Config {
	return Config{
		Origin:           Point{X: 50, Y: 20},
		BaseSize:         12,
		ReferenceGlyphPx: 48,
		MinScale:         0.2,
		HorizontalInset:  13,
		LineHeightFactor: 1.2,
		BaselineFactor:   1.25,
		DriftEpsilon:     0.5,
		Color:            color.RGBA{A: 0xff},
		Baseline:         BaselineFirstSegment,
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for font warnings.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) {
		e.log = l
	}
}
