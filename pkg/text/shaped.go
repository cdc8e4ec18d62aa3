package text

import (
	"bytes"
	"sync"

	"github.com/go-text/typesetting/di"
	gotext "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// ShapedMeasurer measures words with HarfBuzz shaping, so kerning and
// ligatures are reflected in the widths. Metrics, weights and font lookup
// are served by the embedded FontSet.
type ShapedMeasurer struct {
	*FontSet

	mu     sync.Mutex
	shaper shaping.HarfbuzzShaper
	parsed map[*instance]*gotext.Font
}

// NewShapedMeasurer wraps fs.
func NewShapedMeasurer(fs *FontSet) *ShapedMeasurer {
	return &ShapedMeasurer{
		FontSet: fs,
		parsed:  make(map[*instance]*gotext.Font),
	}
}

// Measure returns the shaped advance of text at scale. It falls back to the
// FontSet's unshaped advance when the font cannot be parsed for shaping.
func (m *ShapedMeasurer) Measure(id, text string, scale float64) float64 {
	m.FontSet.mu.Lock()
	inst, err := m.FontSet.activeLocked(id)
	m.FontSet.mu.Unlock()
	if err != nil {
		m.FontSet.log.WithField("font", id).Warn("measure: font not loaded")
		return 0
	}
	runes := []rune(measurable(text))
	if len(runes) == 0 {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	f, err := m.fontLocked(inst)
	if err != nil {
		m.FontSet.log.WithError(err).WithField("font", id).Warn("shaping unavailable, using plain advances")
		return m.FontSet.Measure(id, text, scale)
	}
	out := m.shaper.Shape(shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      gotext.NewFace(f),
		Size:      fixed.Int26_6(ReferenceSize * 64),
		Script:    language.LookupScript(runes[0]),
		Language:  language.NewLanguage("en"),
	})
	return fixedToFloat(out.Advance) * scale
}

func (m *ShapedMeasurer) fontLocked(inst *instance) (*gotext.Font, error) {
	if f, ok := m.parsed[inst]; ok {
		return f, nil
	}
	face, err := gotext.ParseTTF(bytes.NewReader(inst.data))
	if err != nil {
		return nil, err
	}
	m.parsed[inst] = face.Font
	return face.Font, nil
}
