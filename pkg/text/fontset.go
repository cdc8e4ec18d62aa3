package text

import (
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
)

// ReferenceSize is the pixel size glyphs are loaded at. Widths are scaled
// from it; Ascent, Descent and LineSpace are reported at it.
const ReferenceSize = 48.0

const (
	WeightNormal = 400.0
	WeightBold   = 700.0
)

var (
	ErrUnknownFont = errors.New("unknown font")
	ErrNotVariable = errors.New("font has a single weight")
)

type instance struct {
	weight float64
	data   []byte
	font   *truetype.Font
}

type family struct {
	instances []*instance // sorted by weight
	active    *instance
}

type faceKey struct {
	inst *instance
	size float64
}

// FontSet is the font and measurement service used by layout and the
// painters. A font ID names a family of weight instances; a family with
// more than one instance has a weight axis.
type FontSet struct {
	mu       sync.Mutex
	families map[string]*family
	faces    map[faceKey]font.Face
	dc       *gg.Context
	log      logrus.FieldLogger
}

// NewFontSet returns an empty font set.
func NewFontSet() *FontSet {
	return &FontSet{
		families: make(map[string]*family),
		faces:    make(map[faceKey]font.Face),
		dc:       gg.NewContext(1, 1),
		log:      logrus.StandardLogger(),
	}
}

// SetLogger replaces the logger used for measurement warnings.
func (fs *FontSet) SetLogger(l logrus.FieldLogger) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.log = l
}

// Add registers TrueType data as the given weight of font id. The first
// instance added becomes the active one.
func (fs *FontSet) Add(id string, weight float64, ttf []byte) error {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return errors.Wrapf(err, "parsing font %s (weight %.0f)", id, weight)
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fam, ok := fs.families[id]
	if !ok {
		fam = &family{}
		fs.families[id] = fam
	}
	inst := &instance{weight: weight, data: ttf, font: f}
	replaced := false
	for i, existing := range fam.instances {
		if existing.weight == weight {
			if fam.active == existing {
				fam.active = inst
			}
			fam.instances[i] = inst
			replaced = true
			break
		}
	}
	if !replaced {
		fam.instances = append(fam.instances, inst)
		sort.Slice(fam.instances, func(i, j int) bool {
			return fam.instances[i].weight < fam.instances[j].weight
		})
	}
	if fam.active == nil {
		fam.active = inst
	}
	return nil
}

// LoadFile reads a TrueType file from disk and registers it.
func (fs *FontSet) LoadFile(id string, weight float64, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "loading font %s", id)
	}
	return fs.Add(id, weight, data)
}

// Fonts lists the registered font IDs in sorted order.
func (fs *FontSet) Fonts() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	ids := make([]string, 0, len(fs.families))
	for id := range fs.families {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HasFont reports whether id is registered.
func (fs *FontSet) HasFont(id string) bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	_, ok := fs.families[id]
	return ok
}

// IsVariable reports whether id can change weight.
func (fs *FontSet) IsVariable(id string) bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fam, ok := fs.families[id]
	return ok && len(fam.instances) > 1
}

// SetWeight activates the instance of id closest to weight.
func (fs *FontSet) SetWeight(id string, weight float64) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fam, ok := fs.families[id]
	if !ok {
		return errors.Wrap(ErrUnknownFont, id)
	}
	if len(fam.instances) < 2 {
		return errors.Wrap(ErrNotVariable, id)
	}
	best := fam.instances[0]
	for _, inst := range fam.instances[1:] {
		if abs(inst.weight-weight) < abs(best.weight-weight) {
			best = inst
		}
	}
	fam.active = best
	return nil
}

// Weight returns the active weight of id, or 0 when id is unknown.
func (fs *FontSet) Weight(id string) float64 {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fam, ok := fs.families[id]; ok {
		return fam.active.weight
	}
	return 0
}

// Source returns the TrueType bytes and weight of the active instance of id.
func (fs *FontSet) Source(id string) ([]byte, float64, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	inst, err := fs.activeLocked(id)
	if err != nil {
		return nil, 0, err
	}
	return inst.data, inst.weight, nil
}

// Face returns a face for the active instance of id at px pixels.
func (fs *FontSet) Face(id string, px float64) (font.Face, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	inst, err := fs.activeLocked(id)
	if err != nil {
		return nil, err
	}
	return fs.faceLocked(inst, px), nil
}

// Measure returns the advance width of text in pixels at scale. Unknown
// fonts measure as 0.
func (fs *FontSet) Measure(id, text string, scale float64) float64 {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	inst, err := fs.activeLocked(id)
	if err != nil {
		fs.log.WithField("font", id).Warn("measure: font not loaded")
		return 0
	}
	fs.dc.SetFontFace(fs.faceLocked(inst, ReferenceSize))
	w, _ := fs.dc.MeasureString(measurable(text))
	return w * scale
}

// Ascent returns the distance from baseline to the top of the tallest glyph
// at ReferenceSize, or 0 for unknown fonts.
func (fs *FontSet) Ascent(id string) float64 {
	m, ok := fs.metrics(id)
	if !ok {
		return 0
	}
	return fixedToFloat(m.Ascent)
}

// Descent returns the distance below the baseline at ReferenceSize.
func (fs *FontSet) Descent(id string) float64 {
	m, ok := fs.metrics(id)
	if !ok {
		return 0
	}
	return fixedToFloat(m.Descent)
}

// LineSpace returns the recommended baseline-to-baseline distance at
// ReferenceSize.
func (fs *FontSet) LineSpace(id string) float64 {
	m, ok := fs.metrics(id)
	if !ok {
		return 0
	}
	return fixedToFloat(m.Height)
}

func (fs *FontSet) metrics(id string) (font.Metrics, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	inst, err := fs.activeLocked(id)
	if err != nil {
		fs.log.WithField("font", id).Warn("metrics: font not loaded")
		return font.Metrics{}, false
	}
	return fs.faceLocked(inst, ReferenceSize).Metrics(), true
}

func (fs *FontSet) activeLocked(id string) (*instance, error) {
	fam, ok := fs.families[id]
	if !ok {
		return nil, errors.Wrap(ErrUnknownFont, id)
	}
	return fam.active, nil
}

func (fs *FontSet) faceLocked(inst *instance, px float64) font.Face {
	key := faceKey{inst: inst, size: px}
	if face, ok := fs.faces[key]; ok {
		return face
	}
	face := truetype.NewFace(inst.font, &truetype.Options{
		Size:    px,
		DPI:     72, // points == pixels
		Hinting: font.HintingNone,
	})
	fs.faces[key] = face
	return face
}

// measurable expands tabs to eight spaces and drops other control
// characters, which have no advance.
func measurable(s string) string {
	if strings.IndexFunc(s, func(r rune) bool { return r < 32 }) < 0 {
		return s
	}
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r == '\t':
			sb.WriteString("        ")
		case r < 32:
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
