package text

import (
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// Font IDs of the embedded Go fonts.
const (
	GoRegular = "go-regular"
	GoItalic  = "go-italic"
	GoMono    = "go-mono"
)

// Font roles understood by the layout engine.
const (
	RoleRegular = "regular"
	RoleItalic  = "italic"
	RoleMono    = "mono"
)

// FontConfig holds paths to font files used for text measurement and rendering.
type FontConfig struct {
	Regular    string
	Bold       string
	Italic     string
	BoldItalic string
	Monospace  string
	MonoBold   string
}

// FontConfigFromDir returns a FontConfig for the files <base>-Regular.ttf,
// <base>-Bold.ttf, ... in dir.
func FontConfigFromDir(dir, base string) FontConfig {
	path := func(style string) string {
		return filepath.Join(dir, base+"-"+style+".ttf")
	}
	return FontConfig{
		Regular:    path("Regular"),
		Bold:       path("Bold"),
		Italic:     path("Italic"),
		BoldItalic: path("BoldItalic"),
		Monospace:  path("Mono"),
		MonoBold:   path("MonoBold"),
	}
}

// Load registers the configured files in fs under "<prefix>-regular",
// "<prefix>-italic" and "<prefix>-mono" and returns the role mapping for
// them. Only Regular is required; a missing optional file is skipped.
func (fc FontConfig) Load(fs *FontSet, prefix string) (map[string]string, error) {
	if fc.Regular == "" {
		return nil, errors.New("font config: regular font is required")
	}
	roles := map[string]string{}
	slots := []struct {
		role, path string
		weight     float64
	}{
		{RoleRegular, fc.Regular, WeightNormal},
		{RoleRegular, fc.Bold, WeightBold},
		{RoleItalic, fc.Italic, WeightNormal},
		{RoleItalic, fc.BoldItalic, WeightBold},
		{RoleMono, fc.Monospace, WeightNormal},
		{RoleMono, fc.MonoBold, WeightBold},
	}
	for _, s := range slots {
		if s.path == "" {
			continue
		}
		id := prefix + "-" + s.role
		if err := fs.LoadFile(id, s.weight, s.path); err != nil {
			if s.role == RoleRegular && s.weight == WeightNormal {
				return nil, err
			}
			fs.log.WithError(err).WithField("font", id).Warn("skipping optional font")
			continue
		}
		if _, ok := roles[s.role]; !ok {
			roles[s.role] = id
		}
	}
	if _, ok := roles[RoleItalic]; !ok {
		roles[RoleItalic] = roles[RoleRegular]
	}
	return roles, nil
}

// DefaultFontSet returns a FontSet holding the embedded Go fonts, each with
// a regular and a bold instance.
func DefaultFontSet() *FontSet {
	fs := NewFontSet()
	for _, f := range []struct {
		id     string
		weight float64
		data   []byte
	}{
		{GoRegular, WeightNormal, goregular.TTF},
		{GoRegular, WeightBold, gobold.TTF},
		{GoItalic, WeightNormal, goitalic.TTF},
		{GoItalic, WeightBold, gobolditalic.TTF},
		{GoMono, WeightNormal, gomono.TTF},
		{GoMono, WeightBold, gomonobold.TTF},
	} {
		if err := fs.Add(f.id, f.weight, f.data); err != nil {
			// The embedded fonts are known-good.
			panic(err)
		}
	}
	return fs
}

// DefaultRoles maps layout roles to the embedded Go fonts.
func DefaultRoles() map[string]string {
	return map[string]string{
		RoleRegular: GoRegular,
		RoleItalic:  GoItalic,
		RoleMono:    GoMono,
	}
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}
