package render

import (
	"image"
	"image/color"
	"sync"

	"github.com/fogleman/gg"
	"github.com/sirupsen/logrus"

	"tagflow/pkg/layout"
	"tagflow/pkg/text"
)

// Raster paints segments into an RGBA image with gg.
type Raster struct {
	mu      sync.Mutex
	context *gg.Context
	fonts   *text.FontSet
	canvas  layout.Canvas
	log     logrus.FieldLogger

	drawn  int
	culled int
}

func NewRaster(width, height int, fonts *text.FontSet) *Raster {
	return newRaster(gg.NewContext(width, height), fonts)
}

// NewRasterForImage paints directly into img, which is shared with the
// caller.
func NewRasterForImage(img *image.RGBA, fonts *text.FontSet) *Raster {
	return newRaster(gg.NewContextForRGBA(img), fonts)
}

func newRaster(dc *gg.Context, fonts *text.FontSet) *Raster {
	r := &Raster{
		context: dc,
		fonts:   fonts,
		log:     logrus.StandardLogger(),
		canvas: layout.Canvas{
			Width:  float64(dc.Width()),
			Height: float64(dc.Height()),
		},
	}
	r.Clear()
	return r
}

func (r *Raster) SetLogger(l logrus.FieldLogger) {
	r.log = l
}

// Clear fills the image with white and resets the counters.
func (r *Raster) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.context.SetRGB(1, 1, 1)
	r.context.Clear()
	r.drawn, r.culled = 0, 0
}

// DrawText draws s with its baseline at y. Runs entirely above or below the
// image are counted and skipped.
func (r *Raster) DrawText(fontID, s string, x, y, scale float64, c color.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lineHeight := r.fonts.LineSpace(fontID) * scale
	if !r.canvas.Visible(y, lineHeight) {
		r.culled++
		return
	}
	face, err := r.fonts.Face(fontID, text.ReferenceSize*scale)
	if err != nil {
		r.log.WithError(err).WithField("font", fontID).Warn("raster: no face, skipping run")
		return
	}
	r.context.SetFontFace(face)
	r.context.SetColor(c)
	r.context.DrawString(s, x, y)
	r.drawn++
}

// Stats returns how many runs were drawn and culled since the last Clear.
func (r *Raster) Stats() (drawn, culled int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drawn, r.culled
}

func (r *Raster) Image() image.Image {
	return r.context.Image()
}

func (r *Raster) SavePNG(filename string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.context.SavePNG(filename)
}
