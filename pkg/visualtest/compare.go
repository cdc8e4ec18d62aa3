// Package visualtest compares rendered pages against reference images.
package visualtest

import (
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/pkg/errors"
)

// ErrSizeMismatch is returned when the two images differ in bounds.
var ErrSizeMismatch = errors.New("image dimensions differ")

// CompareResult contains the results of an image comparison
type CompareResult struct {
	Match           bool
	DifferentPixels int
	TotalPixels     int
	MaxDifference   int // max channel difference found, 0-255

	// Diff shows matching pixels in gray and differing ones in red. It is
	// only set when CompareOptions.Diff is true.
	Diff *image.RGBA
}

// DifferentPercent returns the share of differing pixels.
func (r *CompareResult) DifferentPercent() float64 {
	if r.TotalPixels == 0 {
		return 0
	}
	return float64(r.DifferentPixels) / float64(r.TotalPixels) * 100
}

// CompareOptions configures the image comparison
type CompareOptions struct {
	// Tolerance is the largest per-channel difference still counted as equal.
	Tolerance int

	// FuzzyRadius lets a pixel match any expected pixel within this radius,
	// which absorbs one or two pixel shifts of glyph edges.
	FuzzyRadius int

	// MaxDifferentPercent passes the comparison when at most this share of
	// pixels differ.
	MaxDifferentPercent float64

	Diff bool
}

func DefaultOptions() CompareOptions {
	return CompareOptions{Tolerance: 2}
}

// Compare compares two images pixel by pixel.
func Compare(actual, expected image.Image, opts CompareOptions) (*CompareResult, error) {
	bounds := actual.Bounds()
	if bounds != expected.Bounds() {
		return &CompareResult{}, errors.Wrapf(ErrSizeMismatch, "actual=%v, expected=%v", bounds, expected.Bounds())
	}

	result := &CompareResult{
		Match:       true,
		TotalPixels: bounds.Dx() * bounds.Dy(),
	}
	if opts.Diff {
		result.Diff = image.NewRGBA(bounds)
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			a := actual.At(x, y)
			diff := channelDiff(a, expected.At(x, y))
			if diff > result.MaxDifference {
				result.MaxDifference = diff
			}

			mark := gray(a)
			if diff > opts.Tolerance && !(opts.FuzzyRadius > 0 && fuzzyMatch(actual, expected, x, y, opts)) {
				result.Match = false
				result.DifferentPixels++
				mark = color.RGBA{255, 0, 0, 255}
			}
			if result.Diff != nil {
				result.Diff.Set(x, y, mark)
			}
		}
	}

	if !result.Match && opts.MaxDifferentPercent > 0 && result.DifferentPercent() <= opts.MaxDifferentPercent {
		result.Match = true
	}
	return result, nil
}

// CompareFile compares img against the PNG at path.
func CompareFile(img image.Image, path string, opts CompareOptions) (*CompareResult, error) {
	expected, err := LoadPNG(path)
	if err != nil {
		return nil, err
	}
	return Compare(img, expected, opts)
}

func LoadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open reference image")
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return img, nil
}

func SavePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create image")
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return errors.Wrapf(err, "encode %s", path)
	}
	return f.Close()
}

// fuzzyMatch checks if the actual pixel at (x, y) matches any expected pixel within radius
func fuzzyMatch(actual, expected image.Image, x, y int, opts CompareOptions) bool {
	bounds := actual.Bounds()
	a := actual.At(x, y)
	for dy := -opts.FuzzyRadius; dy <= opts.FuzzyRadius; dy++ {
		for dx := -opts.FuzzyRadius; dx <= opts.FuzzyRadius; dx++ {
			p := image.Pt(x+dx, y+dy)
			if !p.In(bounds) {
				continue
			}
			if channelDiff(a, expected.At(p.X, p.Y)) <= opts.Tolerance {
				return true
			}
		}
	}
	return false
}

// channelDiff returns the largest 8-bit channel difference of a and b.
func channelDiff(a, b color.Color) int {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return max(
		absInt(int(ar>>8)-int(br>>8)),
		absInt(int(ag>>8)-int(bg>>8)),
		absInt(int(ab>>8)-int(bb>>8)),
		absInt(int(aa>>8)-int(ba>>8)),
	)
}

func gray(c color.Color) color.RGBA {
	r, _, _, _ := c.RGBA()
	v := uint8(r >> 8)
	return color.RGBA{v, v, v, 255}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
