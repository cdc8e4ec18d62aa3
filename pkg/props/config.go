package props

import (
	"image/color"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"tagflow/pkg/layout"
)

var namedColors = map[string]color.RGBA{
	"black":  {0, 0, 0, 255},
	"white":  {255, 255, 255, 255},
	"red":    {255, 0, 0, 255},
	"green":  {0, 128, 0, 255},
	"blue":   {0, 0, 255, 255},
	"gray":   {128, 128, 128, 255},
	"grey":   {128, 128, 128, 255},
	"navy":   {0, 0, 128, 255},
	"maroon": {128, 0, 0, 255},
	"purple": {128, 0, 128, 255},
	"teal":   {0, 128, 128, 255},
}

// ParseColor accepts #rgb, #rrggbb and a few color names.
func ParseColor(s string) (color.RGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, true
	}
	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, false
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}

// ParseLength parses "12", "12px" or "12pt".
func ParseLength(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimSuffix(s, "px"), "pt")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ApplyConfig copies the recognised properties into cfg. Unknown names are
// ignored. Values that do not parse leave the field unchanged and are
// reported together.
func ApplyConfig(cfg *layout.Config, p map[string]string) error {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)

	var bad []string
	for _, name := range names {
		if !applyOne(cfg, name, p[name]) {
			bad = append(bad, name+": "+p[name])
		}
	}
	if len(bad) > 0 {
		return errors.Errorf("invalid property values: %s", strings.Join(bad, ", "))
	}
	return nil
}

func applyOne(cfg *layout.Config, name, value string) bool {
	switch name {
	case "font-size":
		v, ok := ParseLength(value)
		if !ok || v <= 0 {
			return false
		}
		cfg.BaseSize = v
	case "margin-left":
		v, ok := ParseLength(value)
		if !ok {
			return false
		}
		cfg.Origin.X = v
	case "margin-top":
		v, ok := ParseLength(value)
		if !ok {
			return false
		}
		cfg.Origin.Y = v
	case "margin-right":
		v, ok := ParseLength(value)
		if !ok || v < 0 {
			return false
		}
		cfg.HorizontalInset = v
	case "color":
		c, ok := ParseColor(value)
		if !ok {
			return false
		}
		cfg.Color = c
	case "line-height":
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || v <= 0 {
			return false
		}
		cfg.LineHeightFactor = v
	case "baseline":
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "first":
			cfg.Baseline = layout.BaselineFirstSegment
		case "max":
			cfg.Baseline = layout.BaselineMaxAscent
		default:
			return false
		}
	}
	return true
}
