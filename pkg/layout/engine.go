package layout

import (
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"tagflow/pkg/markup"
)

// ErrUnknownFont is returned by NewEngine when the regular role cannot be
// bound to a loaded font.
var ErrUnknownFont = errors.New("font role not available")

// Engine lays out a token sequence as wrapped, baseline-aligned lines.
// Render must not be called concurrently on one Engine.
type Engine struct {
	m   Measurer
	cfg Config
	log logrus.FieldLogger

	// pass state
	st      State
	line    LineBox
	canvas  Canvas
	painter Painter
	out     []Segment
	lines   int
	applied map[string]Weight // weight last set on each font in the measurer
	failed  map[fontWeight]bool
}

type fontWeight struct {
	font   string
	weight Weight
}

// NewEngine binds the engine to a measurer. Failing to bind the regular
// font role is the only fatal font error.
func NewEngine(m Measurer, cfg Config, opts ...Option) (*Engine, error) {
	e := &Engine{
		m:       m,
		cfg:     cfg,
		log:     logrus.StandardLogger(),
		applied: make(map[string]Weight),
		failed:  make(map[fontWeight]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	regular, ok := cfg.Roles[RoleRegular]
	if !ok || regular == "" {
		return nil, errors.Wrap(ErrUnknownFont, "no regular font role")
	}
	if !m.HasFont(regular) {
		return nil, errors.Wrapf(ErrUnknownFont, "regular font %q not loaded", regular)
	}
	if italic, ok := cfg.Roles[RoleItalic]; !ok || !m.HasFont(italic) {
		e.log.WithField("font", italic).Warn("italic role unavailable, italics will keep the current font")
	}
	e.log.WithField("font", regular).Debug("bound regular font")
	e.st.Font = regular
	e.applyWeight(regular, WeightNormal)
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Render lays out tokens on canvas and hands every flushed segment to p,
// which may be nil. The returned segments are in emission order.
func (e *Engine) Render(tokens []markup.Token, canvas Canvas, p Painter) Result {
	e.begin(canvas, p)
	for _, tok := range tokens {
		switch tok.Type {
		case markup.TokenText:
			e.flowText(tok.Text)
		case markup.TokenElement:
			e.applyTag(tok)
		}
	}
	e.flush()

	res := Result{Segments: e.out, Lines: e.lines}
	if e.lines > 0 {
		res.ContentHeight = e.st.Y + e.st.Step - e.cfg.Origin.Y
	}
	e.painter = nil
	e.out = nil
	return res
}

func (e *Engine) begin(canvas Canvas, p Painter) {
	e.canvas = canvas
	e.painter = p
	e.out = make([]Segment, 0)
	e.lines = 0
	e.line.Reset()
	e.applied = make(map[string]Weight)
	e.failed = make(map[fontWeight]bool)
	e.st = State{
		Font:   e.cfg.Roles[RoleRegular],
		Weight: WeightNormal,
		Size:   e.cfg.BaseSize,
		X:      e.cfg.Origin.X,
		Y:      e.cfg.Origin.Y,
	}
	e.resize()
	e.applyWeight(e.st.Font, e.st.Weight)
}

// resize derives scale and line step from the active size.
func (e *Engine) resize() {
	dpi := e.canvas.DPIScale
	if dpi <= 0 {
		dpi = 1
	}
	px := e.st.Size * dpi
	e.st.Scale = px / e.cfg.ReferenceGlyphPx
	if e.st.Scale < e.cfg.MinScale {
		e.st.Scale = e.cfg.MinScale
	}
	e.st.Step = px * e.cfg.LineHeightFactor
}

func (e *Engine) applyTag(tok markup.Token) {
	if markup.SkipList[tok.Name] {
		return
	}
	e.apply(EffectFor(tok.Name, tok.Closing))
}

func (e *Engine) apply(eff Effect) {
	prevFont, prevWeight := e.st.Font, e.st.Weight
	if eff.Role != "" {
		if id, ok := e.fontFor(eff.Role); ok {
			if eff.Reanchor && id != e.st.Font {
				e.st.Y += (e.m.Ascent(e.st.Font) - e.m.Ascent(id)) * e.st.Scale
			}
			e.st.Font = id
		}
	}
	if eff.Weight != 0 {
		e.st.Weight = eff.Weight
	}
	if eff.SetSize {
		if size := e.cfg.BaseSize + eff.SizeDelta; size != e.st.Size {
			e.st.Size = size
			e.resize()
		}
	}
	if eff.Flush {
		e.flush()
		e.st.Y += float64(eff.Advance) * e.st.Step
		e.st.X = e.cfg.Origin.X
	}
	if e.st.Font != prevFont || e.st.Weight != prevWeight {
		e.applyWeight(e.st.Font, e.st.Weight)
	}
}

func (e *Engine) fontFor(role string) (string, bool) {
	id, ok := e.cfg.Roles[role]
	if !ok || !e.m.HasFont(id) {
		e.log.WithFields(logrus.Fields{"role": role, "font": id}).Warn("font role unavailable, keeping current font")
		return "", false
	}
	return id, true
}

// applyWeight moves a variable font to w. Fonts without a weight axis are
// left alone. A failed change is logged once per pass and not retried.
func (e *Engine) applyWeight(font string, w Weight) {
	if cur, ok := e.applied[font]; ok && cur == w {
		return
	}
	key := fontWeight{font, w}
	if e.failed[key] {
		return
	}
	if !e.m.IsVariable(font) {
		e.applied[font] = w
		return
	}
	if err := e.m.SetWeight(font, float64(w)); err != nil {
		e.log.WithError(err).WithFields(logrus.Fields{"font": font, "weight": float64(w)}).Warn("setting font weight failed")
		e.failed[key] = true
		return
	}
	e.applied[font] = w
}

func (e *Engine) flowText(text string) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return
	}
	left := e.cfg.Origin.X
	right := e.canvas.Width - e.cfg.HorizontalInset
	space := e.measure(" ")
	for _, word := range words {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		if e.line.Len() == 0 && e.st.X > left+e.cfg.DriftEpsilon {
			e.st.X = left
		}
		w := e.measure(word)
		// A word wider than the line is still placed when the line is empty.
		if e.st.X+w > right && e.line.Len() > 0 {
			e.flush()
			e.st.Y += e.st.Step
			e.st.X = left
		}
		e.line.Add(Segment{
			Text:   word,
			X:      e.st.X,
			Y:      e.st.Y,
			Scale:  e.st.Scale,
			Color:  e.cfg.Color,
			Font:   e.st.Font,
			Weight: e.st.Weight,
		})
		e.st.X += w + space
	}
}

// measure treats negative or non-finite widths as zero.
func (e *Engine) measure(s string) float64 {
	w := e.m.Measure(e.st.Font, s, e.st.Scale)
	if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return 0
	}
	return w
}

// flush aligns the pending segments on one baseline and emits them.
func (e *Engine) flush() {
	if e.line.Len() == 0 {
		return
	}
	segs := e.line.Segments()
	baseline := e.st.Y + e.cfg.BaselineFactor*e.lineAscent(segs)
	for _, s := range segs {
		s.Y = baseline - e.m.Ascent(s.Font)
		e.emit(s)
	}
	e.lines++
	e.st.X = e.cfg.Origin.X
	e.line.Reset()
	e.applyWeight(e.st.Font, e.st.Weight)
}

func (e *Engine) lineAscent(segs []Segment) float64 {
	ascent := e.m.Ascent(segs[0].Font)
	if e.cfg.Baseline == BaselineMaxAscent {
		for _, s := range segs[1:] {
			ascent = math.Max(ascent, e.m.Ascent(s.Font))
		}
	}
	return ascent
}

func (e *Engine) emit(s Segment) {
	if e.painter != nil {
		e.applyWeight(s.Font, s.Weight)
		e.painter.DrawText(s.Font, s.Text, s.X, s.Y, s.Scale, s.Color)
	}
	e.out = append(e.out, s)
}
